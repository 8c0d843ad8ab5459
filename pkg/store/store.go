// Package store persists annotated tables. Each artifact is addressed by
// the (dataset, generator, table) key and is write-once: presence of an
// entry is the commit marker, and annotators check for it before
// recomputing. Two backends are provided, a filesystem layout mirroring
// annotations/<dataset>/<generator>/<table> and an embedded Badger
// database.
package store

import (
	"context"
	"errors"
	"strings"

	"github.com/semtab/linker/pkg/types"
)

var (
	// ErrNotFound is returned by Get for a key with no stored artifact.
	ErrNotFound = errors.New("annotation not found")
	// ErrAlreadyExists is returned by Put when the key already has an
	// artifact. Entries are immutable once written.
	ErrAlreadyExists = errors.New("annotation already exists")
	// ErrInvalidKey is returned when a key segment is empty or contains
	// path traversal or invalid characters.
	ErrInvalidKey = errors.New("invalid annotation key")
)

// Key addresses one annotated-table artifact.
type Key struct {
	DatasetID   string
	GeneratorID string
	TableID     string
}

// String renders the key in its canonical path-like form.
func (k Key) String() string {
	return k.DatasetID + "/" + k.GeneratorID + "/" + k.TableID
}

// Validate checks that every segment is non-empty and safe for use in file
// paths: no separators, no traversal sequences, no null bytes.
func (k Key) Validate() error {
	for _, segment := range []string{k.DatasetID, k.GeneratorID, k.TableID} {
		if segment == "" {
			return ErrInvalidKey
		}
		if strings.Contains(segment, "..") {
			return ErrInvalidKey
		}
		if strings.ContainsAny(segment, `/\`) {
			return ErrInvalidKey
		}
		if strings.ContainsRune(segment, '\x00') {
			return ErrInvalidKey
		}
	}
	return nil
}

// Store is a write-once key-value store of annotated tables.
type Store interface {
	// Get retrieves the artifact stored under key, or ErrNotFound.
	Get(ctx context.Context, key Key) (*types.Table, error)

	// Put stores an artifact under key. Returns ErrAlreadyExists when an
	// artifact is already present; stored entries are never overwritten.
	Put(ctx context.Context, key Key, table *types.Table) error

	// Has reports whether an artifact exists under key.
	Has(ctx context.Context, key Key) (bool, error)
}
