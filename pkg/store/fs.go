package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/semtab/linker/pkg/types"
)

// FSStore persists one JSON artifact per key under
// <root>/annotations/<dataset>/<generator>/<table>.json. Writes go through
// a temporary file followed by an exclusive link, so a crash mid-write
// never leaves a partial artifact behind: either the file exists and is
// complete, or it does not exist.
type FSStore struct {
	root string
}

// NewFSStore creates a filesystem store rooted at dir. If dir is empty,
// os.TempDir()/linker-annotations is used.
func NewFSStore(dir string) (*FSStore, error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "linker-annotations")
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create annotation directory: %w", err)
	}

	return &FSStore{root: dir}, nil
}

// Path returns the artifact path for a key.
// Returns an error if any key segment contains invalid characters or path
// traversal sequences.
func (s *FSStore) Path(key Key) (string, error) {
	if err := key.Validate(); err != nil {
		return "", err
	}

	fullPath := filepath.Join(s.root, "annotations", key.DatasetID, key.GeneratorID, key.TableID+".json")

	// Defense-in-depth: verify the resolved path stays inside the root.
	cleanRoot := filepath.Clean(s.root) + string(filepath.Separator)
	if !strings.HasPrefix(filepath.Clean(fullPath), cleanRoot) {
		return "", ErrInvalidKey
	}

	return fullPath, nil
}

// Get retrieves the artifact stored under key.
func (s *FSStore) Get(ctx context.Context, key Key) (*types.Table, error) {
	path, err := s.Path(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read annotation file: %w", err)
	}

	var table types.Table
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to unmarshal annotation file: %w", err)
	}

	return &table, nil
}

// Put stores an artifact under key, write-once.
func (s *FSStore) Put(ctx context.Context, key Key, table *types.Table) error {
	path, err := s.Path(key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create annotation directory: %w", err)
	}

	data, err := json.Marshal(table)
	if err != nil {
		return fmt.Errorf("failed to marshal annotated table: %w", err)
	}

	// Write to a uniquely named temporary file first, then commit it with
	// an exclusive link. The link fails for every writer but the first, so
	// concurrent Puts for the same key resolve to a single winner.
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("failed to create annotation temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write annotation file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close annotation temp file: %w", err)
	}

	if err := os.Link(tmp.Name(), path); err != nil {
		if os.IsExist(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("failed to commit annotation file: %w", err)
	}

	return nil
}

// Has reports whether an artifact exists under key.
func (s *FSStore) Has(ctx context.Context, key Key) (bool, error) {
	path, err := s.Path(key)
	if err != nil {
		return false, err
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat annotation file: %w", err)
	}
	return true, nil
}
