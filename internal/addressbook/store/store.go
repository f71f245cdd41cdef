// Package store persists the address book as one serialized document.
//
// Every backend stores the full collection as a JSON array and rewrites it
// wholesale on save; there is no incremental diffing.
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"addressbook/internal/addressbook/models"
)

// Gateway loads and saves the whole address book. Load returns
// sentinel.ErrNotFound (possibly wrapped) when nothing was saved yet.
type Gateway interface {
	Load(ctx context.Context) ([]models.Address, error)
	Save(ctx context.Context, addresses []models.Address) error
}

// Encode serializes the collection. A nil slice is written as an empty array.
func Encode(addresses []models.Address) ([]byte, error) {
	if addresses == nil {
		addresses = []models.Address{}
	}
	data, err := json.Marshal(addresses)
	if err != nil {
		return nil, fmt.Errorf("encode address book: %w", err)
	}
	return data, nil
}

// Decode parses a stored document.
func Decode(data []byte) ([]models.Address, error) {
	var addresses []models.Address
	if err := json.Unmarshal(data, &addresses); err != nil {
		return nil, fmt.Errorf("decode address book: %w", err)
	}
	if addresses == nil {
		addresses = []models.Address{}
	}
	return addresses, nil
}
