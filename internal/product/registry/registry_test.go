package registry

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/abgdnv/inventory/internal/product"
	producterrors "github.com/abgdnv/inventory/internal/product/errors"
	"github.com/abgdnv/inventory/internal/product/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func newTestLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func Test_Registry_AddDuplicateScenario(t *testing.T) {
	// given
	ctx := context.Background()
	backend := store.NewInMemoryStore()
	r := New(ctx, backend, newTestLogger(io.Discard))
	// when
	errFirst := r.Add(ctx, product.New("A1", "Widget", 10, 2.50))
	errSecond := r.Add(ctx, product.New("a1", "Other widget", 1, 1))
	// then
	require.NoError(t, errFirst)
	assert.ErrorIs(t, errSecond, producterrors.ErrDuplicateIdentifier)
	assert.Equal(t, []product.Product{product.New("A1", "Widget", 10, 2.50)}, r.ListAll(ctx))
	assert.Equal(t, 1, backend.Saves(), "a rejected add must not persist")
}

func Test_Registry_FindByID(t *testing.T) {
	ctx := context.Background()
	r := New(ctx, store.NewInMemoryStore(), newTestLogger(io.Discard))
	require.NoError(t, r.Add(ctx, product.New("Ab-1", "Widget", 10, 2.5)))
	require.NoError(t, r.Add(ctx, product.New("cd-2", "Gadget", 1, 3)))

	testCases := []struct {
		name     string
		id       string
		expected []product.Product
	}{
		{name: "exact case", id: "Ab-1", expected: []product.Product{product.New("Ab-1", "Widget", 10, 2.5)}},
		{name: "lower case", id: "ab-1", expected: []product.Product{product.New("Ab-1", "Widget", 10, 2.5)}},
		{name: "upper case", id: "CD-2", expected: []product.Product{product.New("cd-2", "Gadget", 1, 3)}},
		{name: "no match", id: "zz", expected: []product.Product{}},
		{name: "empty id", id: "", expected: []product.Product{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, r.FindByID(ctx, tc.id))
		})
	}
}

func Test_Registry_FindByIDOnEmptyRegistry(t *testing.T) {
	ctx := context.Background()
	r := New(ctx, store.NewInMemoryStore(), newTestLogger(io.Discard))

	found := r.FindByID(ctx, "Z9")

	assert.NotNil(t, found)
	assert.Empty(t, found)
}

func Test_Registry_ListAllIsDefensiveCopy(t *testing.T) {
	// given
	ctx := context.Background()
	r := New(ctx, store.NewInMemoryStore(), newTestLogger(io.Discard))
	require.NoError(t, r.Add(ctx, product.New("A1", "Widget", 10, 2.5)))
	// when
	list := r.ListAll(ctx)
	list[0].SetName("Tampered")
	list[0].SetID("B2")
	_ = append(list, product.New("C3", "Extra", 1, 1))
	found := r.FindByID(ctx, "A1")
	found[0].SetQuantity(99)
	// then
	assert.Equal(t, []product.Product{product.New("A1", "Widget", 10, 2.5)}, r.ListAll(ctx))
	assert.Empty(t, r.FindByID(ctx, "B2"))
}

func Test_Registry_PersistRoundTrip(t *testing.T) {
	for _, kind := range []string{store.BackendFile, store.BackendSQLite} {
		t.Run(kind, func(t *testing.T) {
			// given
			ctx := context.Background()
			path := filepath.Join(t.TempDir(), "inventory_data")
			backend, err := store.Open(kind, path)
			require.NoError(t, err)
			original := New(ctx, backend, newTestLogger(io.Discard))
			require.NoError(t, original.Add(ctx, product.New("A1", "Widget", 10, 2.5)))
			require.NoError(t, original.Add(ctx, product.New("B2", "Gadget", 0, 19.99)))
			require.NoError(t, original.Add(ctx, product.New("c3", "Sprocket", 7, 0.1)))
			require.NoError(t, original.Persist(ctx))
			// when
			reopened, err := store.Open(kind, path)
			require.NoError(t, err)
			restored := New(ctx, reopened, newTestLogger(io.Discard))
			// then
			assert.Equal(t, original.ListAll(ctx), restored.ListAll(ctx))
			assert.Len(t, restored.FindByID(ctx, "C3"), 1)
		})
	}
}

func Test_Registry_Restore(t *testing.T) {
	testCases := []struct {
		name        string
		content     []byte // nil means the file is not created
		expectedLog string
	}{
		{
			name:        "absent store",
			content:     nil,
			expectedLog: "No existing inventory data found",
		},
		{
			name:        "zero-length store",
			content:     []byte{},
			expectedLog: "No existing inventory data found",
		},
		{
			name:        "malformed store",
			content:     []byte("\xac\xed\x00\x05sr\x00\x13java.util.ArrayList"),
			expectedLog: "level=WARN msg=\"Inventory data is malformed",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			ctx := context.Background()
			path := filepath.Join(t.TempDir(), "inventory_data.dat")
			if tc.content != nil {
				require.NoError(t, os.WriteFile(path, tc.content, 0o644))
			}
			var logs bytes.Buffer
			// when
			r := New(ctx, store.NewFileBackend(path), newTestLogger(&logs))
			// then
			assert.Empty(t, r.ListAll(ctx))
			assert.Equal(t, 0, r.Len())
			assert.Contains(t, logs.String(), tc.expectedLog)
		})
	}
}

func Test_Registry_RestoreMalformedKeepsFileUntilNextWrite(t *testing.T) {
	// given
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "inventory_data.dat")
	garbage := []byte("not an inventory file")
	require.NoError(t, os.WriteFile(path, garbage, 0o644))
	// when
	r := New(ctx, store.NewFileBackend(path), newTestLogger(io.Discard))
	// then
	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, garbage, onDisk)

	require.NoError(t, r.Add(ctx, product.New("A1", "Widget", 10, 2.5)))
	restored := New(ctx, store.NewFileBackend(path), newTestLogger(io.Discard))
	assert.Equal(t, r.ListAll(ctx), restored.ListAll(ctx))
}

func Test_Registry_MalformedSQLiteRecoversOnNextAdd(t *testing.T) {
	// given
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "inventory_data.db")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("not a database ", 64)), 0o644))
	r := New(ctx, store.NewSQLiteBackend(path), newTestLogger(io.Discard))
	// when
	require.NoError(t, r.Add(ctx, product.New("A1", "Widget", 10, 2.5)))
	// then
	require.NoError(t, r.LastSaveErr())
	restored := New(ctx, store.NewSQLiteBackend(path), newTestLogger(io.Discard))
	assert.Equal(t, []product.Product{product.New("A1", "Widget", 10, 2.5)}, restored.ListAll(ctx))
}

func Test_Registry_RestoreReadFailure(t *testing.T) {
	ctx := context.Background()
	backend := store.NewInMemoryStore()
	backend.LoadErr = errors.New("disk on fire")
	var logs bytes.Buffer

	r := New(ctx, backend, newTestLogger(&logs))

	assert.Empty(t, r.ListAll(ctx))
	assert.Contains(t, logs.String(), "Error loading inventory")
	assert.Contains(t, logs.String(), "disk on fire")
}

func Test_Registry_RestoreSkipsStoredDuplicates(t *testing.T) {
	// given
	ctx := context.Background()
	backend := store.NewInMemoryStore()
	require.NoError(t, backend.Save(ctx, []product.Product{
		product.New("A1", "Widget", 10, 2.5),
		product.New("a1", "Shadow", 1, 1),
		product.New("B2", "Gadget", 2, 2),
	}))
	var logs bytes.Buffer
	// when
	r := New(ctx, backend, newTestLogger(&logs))
	// then
	assert.Equal(t, []product.Product{
		product.New("A1", "Widget", 10, 2.5),
		product.New("B2", "Gadget", 2, 2),
	}, r.ListAll(ctx))
	assert.Contains(t, logs.String(), "Skipping duplicate product ID")
}

func Test_Registry_PersistenceFailureIsNotFatal(t *testing.T) {
	// given
	ctx := context.Background()
	backend := store.NewInMemoryStore()
	backend.SaveErr = errors.New("read-only file system")
	var logs bytes.Buffer
	r := New(ctx, backend, newTestLogger(&logs))
	// when
	addErr := r.Add(ctx, product.New("A1", "Widget", 10, 2.5))
	persistErr := r.Persist(ctx)
	// then
	require.NoError(t, addErr)
	assert.ErrorIs(t, persistErr, producterrors.ErrPersistenceWrite)
	assert.Equal(t, []product.Product{product.New("A1", "Widget", 10, 2.5)}, r.ListAll(ctx))
	assert.Contains(t, logs.String(), "Error saving inventory")
	assert.Equal(t, 0, backend.Saves())
	assert.ErrorIs(t, r.LastSaveErr(), producterrors.ErrPersistenceWrite)
}

func Test_Registry_LastSaveErrClearsAfterSuccess(t *testing.T) {
	// given
	ctx := context.Background()
	backend := store.NewInMemoryStore()
	r := New(ctx, backend, newTestLogger(io.Discard))
	backend.SaveErr = errors.New("disk full")
	require.NoError(t, r.Add(ctx, product.New("A1", "Widget", 10, 2.5)))
	require.Error(t, r.LastSaveErr())
	// when
	backend.SaveErr = nil
	require.NoError(t, r.Add(ctx, product.New("B2", "Gadget", 1, 1)))
	// then
	assert.NoError(t, r.LastSaveErr())
	saved, err := backend.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, saved, 2)
}

func Test_Registry_InvalidUTF8IDsStayDistinct(t *testing.T) {
	// given
	ctx := context.Background()
	r := New(ctx, store.NewInMemoryStore(), newTestLogger(io.Discard))
	// when
	errFirst := r.Add(ctx, product.New("\xff", "First", 1, 1))
	errSecond := r.Add(ctx, product.New("\xfe", "Second", 2, 2))
	// then
	require.NoError(t, errFirst)
	require.NoError(t, errSecond)
	assert.Equal(t, []product.Product{product.New("\xfe", "Second", 2, 2)}, r.FindByID(ctx, "\xfe"))
	assert.Equal(t, []product.Product{product.New("\xff", "First", 1, 1)}, r.FindByID(ctx, "\xff"))
	assert.Equal(t, 2, r.Len())
}

func Test_Registry_AddPersistsWholeCollection(t *testing.T) {
	ctx := context.Background()
	backend := store.NewInMemoryStore()
	r := New(ctx, backend, newTestLogger(io.Discard))

	require.NoError(t, r.Add(ctx, product.New("A1", "Widget", 10, 2.5)))
	require.NoError(t, r.Add(ctx, product.New("B2", "Gadget", 1, 1)))

	saved, err := backend.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, r.ListAll(ctx), saved)
	assert.Equal(t, 2, backend.Saves())
}

// Test_Registry_AddProperty checks that, for any sequence of adds, the registry
// keeps exactly the first product per case-insensitive id, in insertion order.
func Test_Registry_AddProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		ctx := context.Background()
		backend := store.NewInMemoryStore()
		r := New(ctx, backend, newTestLogger(io.Discard))

		var expected []product.Product
		seen := make(map[string]bool)
		ids := rapid.SliceOf(rapid.StringMatching(`[aAbBcC][0-3]`)).Draw(rt, "ids")
		for i, id := range ids {
			p := product.New(id, "item", i, float64(i)/4)
			err := r.Add(ctx, p)

			key := strings.ToLower(id)
			if seen[key] {
				if !errors.Is(err, producterrors.ErrDuplicateIdentifier) {
					rt.Fatalf("add %q: expected duplicate error, got %v", id, err)
				}
				continue
			}
			if err != nil {
				rt.Fatalf("add %q: unexpected error %v", id, err)
			}
			seen[key] = true
			expected = append(expected, p)
		}

		got := r.ListAll(ctx)
		if len(got) != len(expected) {
			rt.Fatalf("expected %d products, got %d", len(expected), len(got))
		}
		for i := range expected {
			if got[i] != expected[i] {
				rt.Fatalf("position %d: expected %v, got %v", i, expected[i], got[i])
			}
			lower := r.FindByID(ctx, strings.ToLower(expected[i].ID()))
			upper := r.FindByID(ctx, strings.ToUpper(expected[i].ID()))
			if len(lower) != 1 || len(upper) != 1 || lower[0] != upper[0] {
				rt.Fatalf("find %q is not case-insensitive", expected[i].ID())
			}
		}
		if backend.Saves() != len(expected) {
			rt.Fatalf("expected %d saves, got %d", len(expected), backend.Saves())
		}
	})
}
