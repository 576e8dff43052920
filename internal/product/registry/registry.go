// Package registry owns the in-memory product collection and keeps it in sync with a backing store.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/abgdnv/inventory/internal/product"
	producterrors "github.com/abgdnv/inventory/internal/product/errors"
	"github.com/abgdnv/inventory/internal/product/store"
)

// Registry is the authoritative, insertion-ordered product collection.
//
// Every successful Add rewrites the whole collection to the backing store.
// Store failures are logged and never fatal: memory stays authoritative for
// the rest of the process even when the last write was lost.
type Registry struct {
	mu       sync.RWMutex
	products []product.Product
	index    map[string]int // normalized id -> position in products
	backend  store.Backend
	logger   *slog.Logger

	lastSaveErr error
}

// New creates a Registry over backend and restores its content.
// A missing, empty or unreadable store yields an empty registry; the cause is logged, not returned.
func New(ctx context.Context, backend store.Backend, logger *slog.Logger) *Registry {
	r := &Registry{
		products: make([]product.Product, 0),
		index:    make(map[string]int),
		backend:  backend,
		logger:   logger.With("component", "registry", "store", backend.Location()),
	}
	r.restore(ctx)
	return r
}

// Add appends p and persists the collection.
// Returns ErrDuplicateIdentifier, without touching state or store, if p's id is already present.
func (r *Registry) Add(ctx context.Context, p product.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := product.NormalizeID(p.ID())
	if _, exists := r.index[key]; exists {
		r.logger.WarnContext(ctx, "Product ID already exists", "ID", p.ID())
		return fmt.Errorf("product with ID '%s': %w", p.ID(), producterrors.ErrDuplicateIdentifier)
	}

	r.index[key] = len(r.products)
	r.products = append(r.products, p)

	// the add stands even when the write fails; persistLocked has already logged it
	_ = r.persistLocked(ctx)
	r.logger.InfoContext(ctx, "Product added", "ID", p.ID(), "Name", p.Name())
	return nil
}

// ListAll returns a copy of all products in insertion order.
func (r *Registry) ListAll(_ context.Context) []product.Product {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.products)
}

// FindByID returns the products whose id equals id ignoring case: none or exactly one.
func (r *Registry) FindByID(_ context.Context, id string) []product.Product {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pos, ok := r.index[product.NormalizeID(id)]
	if !ok {
		return []product.Product{}
	}
	return []product.Product{r.products[pos]}
}

// Len returns the number of products.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.products)
}

// Persist writes the whole collection to the backing store, overwriting it.
// A failure is logged and returned wrapped in ErrPersistenceWrite; memory is unaffected.
func (r *Registry) Persist(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.persistLocked(ctx)
}

// LastSaveErr returns the error of the most recent write to the backing store,
// wrapped in ErrPersistenceWrite, or nil if it succeeded or none happened yet.
func (r *Registry) LastSaveErr() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastSaveErr
}

// persistLocked expects the write lock, since it records the outcome.
func (r *Registry) persistLocked(ctx context.Context) error {
	if err := r.backend.Save(ctx, r.products); err != nil {
		r.logger.ErrorContext(ctx, "Error saving inventory", "error", err)
		r.lastSaveErr = fmt.Errorf("%w: %w", producterrors.ErrPersistenceWrite, err)
		return r.lastSaveErr
	}
	r.lastSaveErr = nil
	r.logger.DebugContext(ctx, "Inventory saved", "count", len(r.products))
	return nil
}

// restore replaces the in-memory state with the stored collection.
// Malformed data is discarded for the session and left on disk until the next successful write.
func (r *Registry) restore(ctx context.Context) {
	loaded, err := r.backend.Load(ctx)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNoData):
			r.logger.InfoContext(ctx, "No existing inventory data found, starting with an empty inventory")
		case errors.Is(err, store.ErrMalformed):
			r.logger.WarnContext(ctx, "Inventory data is malformed, starting with an empty inventory", "error", err)
		default:
			r.logger.WarnContext(ctx, "Error loading inventory, starting with an empty inventory",
				"error", fmt.Errorf("%w: %w", producterrors.ErrPersistenceRead, err))
		}
		return
	}

	for _, p := range loaded {
		key := product.NormalizeID(p.ID())
		if _, exists := r.index[key]; exists {
			r.logger.WarnContext(ctx, "Skipping duplicate product ID in stored inventory", "ID", p.ID())
			continue
		}
		r.index[key] = len(r.products)
		r.products = append(r.products, p)
	}
	r.logger.InfoContext(ctx, "Inventory loaded", "count", len(r.products))
}
