package store

import (
	"context"
	"sync"

	"addressbook/internal/addressbook/models"
	"addressbook/pkg/platform/sentinel"
)

// InMemory keeps the serialized document in process. It round-trips through
// JSON so it behaves like the durable backends.
type InMemory struct {
	mu   sync.RWMutex
	data []byte
}

func NewInMemory() *InMemory {
	return &InMemory{}
}

func (s *InMemory) Load(_ context.Context) ([]models.Address, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.data == nil {
		return nil, sentinel.ErrNotFound
	}
	return Decode(s.data)
}

func (s *InMemory) Save(_ context.Context, addresses []models.Address) error {
	data, err := Encode(addresses)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = data
	return nil
}
