package models

import "strings"

// Candidate is an unowned address returned by a lookup. ID only identifies the
// candidate within the result set it was returned in.
type Candidate struct {
	ID          string `json:"id"`
	Street      string `json:"street"`
	HouseNumber string `json:"houseNumber"`
	Postcode    string `json:"postcode"`
	City        string `json:"city"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

// Address is a committed address book entry: a candidate attached to a person.
//
// Invariants (enforced by the collection):
//   - FirstName and LastName are non-empty
//   - ID is unique within the collection
//   - no two entries share the normalized (first, last, street, city, postcode)
type Address struct {
	ID          string `json:"id"`
	Street      string `json:"street"`
	HouseNumber string `json:"houseNumber"`
	Postcode    string `json:"postcode"`
	City        string `json:"city"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Lat         string `json:"lat,omitempty"`
	Lon         string `json:"lon,omitempty"`
}

// HasPerson reports whether both name fields carry a value.
func (a Address) HasPerson() bool {
	return strings.TrimSpace(a.FirstName) != "" && strings.TrimSpace(a.LastName) != ""
}

// FullName is the display name used for grouping output and logs.
func (a Address) FullName() string {
	return a.FirstName + " " + a.LastName
}

// NewAddress personalizes a candidate. Names are stored trimmed.
func NewAddress(id string, c Candidate, firstName, lastName string) Address {
	return Address{
		ID:          id,
		Street:      c.Street,
		HouseNumber: c.HouseNumber,
		Postcode:    c.Postcode,
		City:        c.City,
		FirstName:   strings.TrimSpace(firstName),
		LastName:    strings.TrimSpace(lastName),
		Lat:         c.Lat,
		Lon:         c.Lon,
	}
}

// DuplicateResult is the outcome of checking a new entry against the collection.
type DuplicateResult struct {
	IsDuplicate   bool
	PersonExists  bool
	ExistingMatch *Address
}

// PersonGroup is one person's addresses in the grouped view.
type PersonGroup struct {
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Addresses []Address `json:"addresses"`
}

// ChangeKind names a collection mutation.
type ChangeKind string

const (
	ChangeAdded    ChangeKind = "added"
	ChangeRemoved  ChangeKind = "removed"
	ChangeReplaced ChangeKind = "replaced"
)

// Change describes one collection mutation. Snapshot is the full collection
// after the change, in insertion order.
type Change struct {
	Kind     ChangeKind
	Entry    *Address
	Snapshot []Address
}
