package store_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/semtab/linker/pkg/store"
	"github.com/semtab/linker/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTable(t *testing.T) *types.Table {
	t.Helper()
	tab, err := types.NewTable("tab-1", "Round1", [][]string{{"Paris", "France"}})
	require.NoError(t, err)
	tab.AnnotateCell(types.Cell{Row: 0, Col: 0}, types.NewEntity("http://dbpedia.org/resource/Paris"))
	return tab
}

func testKey() store.Key {
	return store.Key{DatasetID: "Round1", GeneratorID: "es-lookup", TableID: "tab-1"}
}

func TestKeyValidate(t *testing.T) {
	tests := []struct {
		name    string
		key     store.Key
		wantErr bool
	}{
		{"valid", store.Key{DatasetID: "Round1", GeneratorID: "gen", TableID: "tab"}, false},
		{"empty dataset", store.Key{GeneratorID: "gen", TableID: "tab"}, true},
		{"empty generator", store.Key{DatasetID: "ds", TableID: "tab"}, true},
		{"empty table", store.Key{DatasetID: "ds", GeneratorID: "gen"}, true},
		{"traversal", store.Key{DatasetID: "..", GeneratorID: "gen", TableID: "tab"}, true},
		{"separator", store.Key{DatasetID: "ds", GeneratorID: "a/b", TableID: "tab"}, true},
		{"backslash", store.Key{DatasetID: "ds", GeneratorID: "gen", TableID: `a\b`}, true},
		{"null byte", store.Key{DatasetID: "ds\x00", GeneratorID: "gen", TableID: "tab"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.key.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, store.ErrInvalidKey)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// storeForTest builds each backend under a temp directory.
func storesForTest(t *testing.T) map[string]store.Store {
	t.Helper()
	fs, err := store.NewFSStore(t.TempDir())
	require.NoError(t, err)

	bs, err := store.NewBadgerStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = bs.Close() })

	return map[string]store.Store{"fs": fs, "badger": bs}
}

func TestStoreRoundTrip(t *testing.T) {
	for name, s := range storesForTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			key := testKey()

			ok, err := s.Has(ctx, key)
			require.NoError(t, err)
			assert.False(t, ok)

			_, err = s.Get(ctx, key)
			assert.ErrorIs(t, err, store.ErrNotFound)

			require.NoError(t, s.Put(ctx, key, testTable(t)))

			ok, err = s.Has(ctx, key)
			require.NoError(t, err)
			assert.True(t, ok)

			got, err := s.Get(ctx, key)
			require.NoError(t, err)
			assert.Equal(t, "tab-1", got.ID())
			assert.Equal(t, "Round1", got.DatasetID())
			e, ok := got.Annotation(types.Cell{Row: 0, Col: 0})
			require.True(t, ok)
			assert.True(t, e.Equal(types.NewEntity("http://dbpedia.org/resource/paris")))
		})
	}
}

func TestStoreWriteOnce(t *testing.T) {
	for name, s := range storesForTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			key := testKey()

			require.NoError(t, s.Put(ctx, key, testTable(t)))
			err := s.Put(ctx, key, testTable(t))
			assert.ErrorIs(t, err, store.ErrAlreadyExists)
		})
	}
}

func TestStoreRejectsInvalidKeys(t *testing.T) {
	for name, s := range storesForTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			bad := store.Key{DatasetID: "../escape", GeneratorID: "gen", TableID: "tab"}

			_, err := s.Get(ctx, bad)
			assert.ErrorIs(t, err, store.ErrInvalidKey)
			assert.ErrorIs(t, s.Put(ctx, bad, testTable(t)), store.ErrInvalidKey)
			_, err = s.Has(ctx, bad)
			assert.ErrorIs(t, err, store.ErrInvalidKey)
		})
	}
}

func TestFSStoreLayout(t *testing.T) {
	dir := t.TempDir()
	s, err := store.NewFSStore(dir)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, s.Put(ctx, testKey(), testTable(t)))

	path := filepath.Join(dir, "annotations", "Round1", "es-lookup", "tab-1.json")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected artifact at %s: %v", path, err)
	}
	// no stray temp file
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "tab-1.json", entries[0].Name())
}

func TestFSStorePutConcurrentSingleWinner(t *testing.T) {
	s, err := store.NewFSStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	key := testKey()

	const writers = 8
	tab := testTable(t)
	errs := make([]error, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.Put(ctx, key, tab)
		}(i)
	}
	wg.Wait()

	var won, lost int
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		case errors.Is(err, store.ErrAlreadyExists):
			lost++
		default:
			t.Fatalf("unexpected put error: %v", err)
		}
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, writers-1, lost)

	path, err := s.Path(key)
	require.NoError(t, err)
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)

	got, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "tab-1", got.ID())
}

func TestFSStoreArtifactStableAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s1, err := store.NewFSStore(dir)
	require.NoError(t, err)
	require.NoError(t, s1.Put(ctx, testKey(), testTable(t)))

	// a second store over the same root sees the committed artifact
	s2, err := store.NewFSStore(dir)
	require.NoError(t, err)
	got, err := s2.Get(ctx, testKey())
	require.NoError(t, err)
	assert.Equal(t, "tab-1", got.ID())
}
