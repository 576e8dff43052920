// Package store provides the backing stores that hold the serialized product collection.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/abgdnv/inventory/internal/product"
)

var (
	// ErrNoData reports an absent or zero-length store. It is the normal first-run case.
	ErrNoData = errors.New("no inventory data")
	// ErrMalformed reports a store that exists but cannot be decoded.
	ErrMalformed = errors.New("malformed inventory data")
)

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Backend is a single on-disk location holding the whole ordered product collection.
// It abstracts the underlying encoding, allowing for different implementations (e.g., flat file, SQLite).
type Backend interface {
	// Load reads back the collection written by the last successful Save, in order.
	// Returns ErrNoData if the store is absent or empty, ErrMalformed if it can't be decoded.
	Load(ctx context.Context) ([]product.Product, error)

	// Save replaces the stored collection with products.
	// A failed Save must not corrupt the previously saved collection.
	Save(ctx context.Context, products []product.Product) error

	// Location describes where the data lives, for logging.
	Location() string
}

// Open returns the Backend named by kind, rooted at path.
func Open(kind, path string) (Backend, error) {
	switch kind {
	case "", BackendFile:
		return NewFileBackend(path), nil
	case BackendSQLite:
		return NewSQLiteBackend(path), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", kind)
	}
}
