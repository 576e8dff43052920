package store

import (
	"context"
	"slices"
	"sync"

	"github.com/abgdnv/inventory/internal/product"
)

// InMemory implements Backend by keeping the last saved snapshot in memory.
// SaveErr and LoadErr, when set, are returned instead of touching the snapshot.
type InMemory struct {
	mu       sync.RWMutex
	products []product.Product
	saved    bool
	saves    int

	SaveErr error
	LoadErr error
}

// NewInMemoryStore creates an empty InMemory backend.
func NewInMemoryStore() *InMemory {
	return &InMemory{}
}

// Load returns a copy of the last saved snapshot.
func (s *InMemory) Load(_ context.Context) ([]product.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.LoadErr != nil {
		return nil, s.LoadErr
	}
	if !s.saved {
		return nil, ErrNoData
	}
	return slices.Clone(s.products), nil
}

// Save replaces the snapshot with a copy of products.
func (s *InMemory) Save(_ context.Context, products []product.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.products = slices.Clone(products)
	s.saved = true
	s.saves++
	return nil
}

// Saves reports how many times Save succeeded.
func (s *InMemory) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

func (s *InMemory) Location() string {
	return "memory"
}
