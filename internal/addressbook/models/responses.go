package models

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// SearchResponse is the body of the search endpoint. Details is set on success,
// ErrorMessage on failure.
type SearchResponse struct {
	Status       string      `json:"status"`
	Details      []Candidate `json:"details,omitempty"`
	ErrorMessage string      `json:"errormessage,omitempty"`
}

// AddressBookResponse lists the collection in insertion order.
type AddressBookResponse struct {
	Addresses []Address `json:"addresses"`
	Count     int       `json:"count"`
	Loading   bool      `json:"loading"`
}

// GroupedResponse is the grouped-by-person projection.
type GroupedResponse struct {
	Groups  []PersonGroup `json:"groups"`
	Loading bool          `json:"loading"`
}
