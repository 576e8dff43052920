package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/abgdnv/inventory/internal/product"
)

// FileBackend keeps the collection in a single file.
// Writes go to a temporary sibling that is renamed over the target, so a
// failed write leaves the previous file intact.
type FileBackend struct {
	path string
}

// NewFileBackend creates a FileBackend for path. The file is not touched until Load or Save.
func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

// Load reads and decodes the file.
func (b *FileBackend) Load(_ context.Context) ([]product.Product, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoData
		}
		return nil, fmt.Errorf("reading %s: %w", b.path, err)
	}
	if len(data) == 0 {
		return nil, ErrNoData
	}
	return decodeProducts(data)
}

// Save encodes products and atomically replaces the file.
func (b *FileBackend) Save(_ context.Context, products []product.Product) error {
	dir := filepath.Dir(b.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(b.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	// removes the temp file on any failure path; a no-op after a successful rename
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(encodeProducts(products)); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("syncing %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, b.path); err != nil {
		return fmt.Errorf("replacing %s: %w", b.path, err)
	}
	return nil
}

func (b *FileBackend) Location() string {
	return b.path
}
