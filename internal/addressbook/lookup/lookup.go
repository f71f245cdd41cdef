// Package lookup finds candidate addresses for a postcode and house number.
package lookup

import (
	"context"
	"errors"

	"addressbook/internal/addressbook/models"
)

// ErrNoResults is returned when no region matches the query. A lookup never
// reports "nothing found" as an empty successful result.
var ErrNoResults = errors.New("no results found")

// Lookup resolves a postcode and house number into candidates.
type Lookup interface {
	Find(ctx context.Context, postcode, houseNumber string) ([]models.Candidate, error)
}

// Func adapts a function to Lookup.
type Func func(ctx context.Context, postcode, houseNumber string) ([]models.Candidate, error)

func (f Func) Find(ctx context.Context, postcode, houseNumber string) ([]models.Candidate, error) {
	return f(ctx, postcode, houseNumber)
}
