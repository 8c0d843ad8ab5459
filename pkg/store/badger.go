package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/semtab/linker/pkg/types"
)

// BadgerStore persists artifacts in an embedded Badger database. The key
// is the canonical "dataset/generator/table" form. Badger transactions
// give the same write-once guarantee as the filesystem backend without
// one file per table, which matters for datasets with many small tables.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore opens (or creates) a Badger database at dir.
func NewBadgerStore(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger store: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// Get retrieves the artifact stored under key.
func (s *BadgerStore) Get(ctx context.Context, key Key) (*types.Table, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}

	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key.String()))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read annotation entry: %w", err)
	}

	var table types.Table
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to unmarshal annotation entry: %w", err)
	}
	return &table, nil
}

// Put stores an artifact under key, write-once.
func (s *BadgerStore) Put(ctx context.Context, key Key, table *types.Table) error {
	if err := key.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(table)
	if err != nil {
		return fmt.Errorf("failed to marshal annotated table: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		k := []byte(key.String())
		if _, err := txn.Get(k); err == nil {
			return ErrAlreadyExists
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return txn.Set(k, data)
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("failed to write annotation entry: %w", err)
	}
	return nil
}

// Has reports whether an artifact exists under key.
func (s *BadgerStore) Has(ctx context.Context, key Key) (bool, error) {
	if err := key.Validate(); err != nil {
		return false, err
	}

	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(key.String()))
		return err
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check annotation entry: %w", err)
	}
	return true, nil
}

// Close closes the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
