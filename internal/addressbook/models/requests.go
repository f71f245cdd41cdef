package models

import "strings"

// SearchRequest is the body of POST /sessions/{id}/search.
type SearchRequest struct {
	PostCode    string `json:"postCode"`
	HouseNumber string `json:"houseNumber"`
}

// SelectRequest is the body of POST /sessions/{id}/select.
type SelectRequest struct {
	ID string `json:"id"`
}

// Normalize trims the candidate id.
func (r *SelectRequest) Normalize() {
	r.ID = strings.TrimSpace(r.ID)
}

// PersonRequest is the body of POST /sessions/{id}/person.
type PersonRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}
