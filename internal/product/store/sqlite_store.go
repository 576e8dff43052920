package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/abgdnv/inventory/internal/product"
	_ "github.com/ncruces/go-sqlite3/driver" // registers the "sqlite3" database/sql driver
	_ "github.com/ncruces/go-sqlite3/embed"  // embeds the SQLite wasm build
)

const sqliteDriver = "sqlite3"

const createProductsTable = `CREATE TABLE IF NOT EXISTS products (
	position INTEGER PRIMARY KEY,
	id       TEXT    NOT NULL,
	name     TEXT    NOT NULL,
	quantity INTEGER NOT NULL,
	price    REAL    NOT NULL
)`

// SQLiteBackend keeps the collection in a single SQLite database file.
// Every Save writes a whole new database and swaps it in.
type SQLiteBackend struct {
	path string
}

// NewSQLiteBackend creates a SQLiteBackend for path. The database is opened per call.
func NewSQLiteBackend(path string) *SQLiteBackend {
	return &SQLiteBackend{path: path}
}

// Load reads the products table ordered by insertion position.
// It never creates the database file.
func (b *SQLiteBackend) Load(ctx context.Context) ([]product.Product, error) {
	info, err := os.Stat(b.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoData
		}
		return nil, fmt.Errorf("stat %s: %w", b.path, err)
	}
	if info.Size() == 0 {
		return nil, ErrNoData
	}

	db, err := sql.Open(sqliteDriver, b.path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", b.path, err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `SELECT id, name, quantity, price FROM products ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	defer rows.Close()

	products := make([]product.Product, 0)
	for rows.Next() {
		var (
			id, name string
			quantity int
			price    float64
		)
		if err := rows.Scan(&id, &name, &quantity, &price); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		products = append(products, product.New(id, name, quantity, price))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return products, nil
}

// Save builds a fresh database holding products in a temporary sibling and renames it
// over the target. The previous file, even one that is not a database, is only replaced
// once the new one is complete.
func (b *SQLiteBackend) Save(ctx context.Context, products []product.Product) error {
	dir := filepath.Dir(b.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(b.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
		_ = os.Remove(tmpName + "-journal")
	}()
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmpName, err)
	}

	if err := writeDatabase(ctx, tmpName, products); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, b.path); err != nil {
		return fmt.Errorf("replacing %s: %w", b.path, err)
	}
	return nil
}

// writeDatabase fills the empty database at path. It is closed on return.
func writeDatabase(ctx context.Context, path string, products []product.Product) error {
	db, err := sql.Open(sqliteDriver, path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, createProductsTable); err != nil {
		return fmt.Errorf("creating products table: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO products (position, id, name, quantity, price) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, p := range products {
		if _, err := stmt.ExecContext(ctx, i, p.ID(), p.Name(), p.Quantity(), p.Price()); err != nil {
			return fmt.Errorf("inserting product %s: %w", p.ID(), err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing products: %w", err)
	}
	return nil
}

func (b *SQLiteBackend) Location() string {
	return b.path
}
