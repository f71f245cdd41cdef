package models

// SessionState is a step of the search-to-commit lifecycle.
type SessionState string

const (
	StateIdle       SessionState = "idle"
	StateSearching  SessionState = "searching"
	StateResults    SessionState = "results"
	StateSelected   SessionState = "selected"
	StateCommitting SessionState = "committing"
	StateError      SessionState = "error"
)

// SearchFields are the values of the address search form.
type SearchFields struct {
	PostCode    string `json:"postCode"`
	HouseNumber string `json:"houseNumber"`
}

// PersonFields are the values of the person form.
type PersonFields struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// SessionSnapshot is a read-only copy of an entry session.
type SessionSnapshot struct {
	ID            string       `json:"id"`
	State         SessionState `json:"state"`
	Loading       bool         `json:"loading"`
	Search        SearchFields `json:"search"`
	Person        PersonFields `json:"person"`
	Candidates    []Candidate  `json:"candidates"`
	SelectedID    string       `json:"selectedId,omitempty"`
	Error         string       `json:"error,omitempty"`
	LastCommitted *Address     `json:"lastCommitted,omitempty"`
	PersonExists  bool         `json:"personExists,omitempty"`
}
