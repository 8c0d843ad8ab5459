package linker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/schollz/progressbar/v3"

	"github.com/semtab/linker/pkg/store"
	"github.com/semtab/linker/pkg/types"
	"github.com/semtab/linker/pkg/utils"
)

// Annotator links table cells to knowledge-graph entities using a candidate
// generator, persisting every finished table to a write-once store.
type Annotator struct {
	generator  Generator
	store      store.Store
	maxWorkers int
	logger     *slog.Logger
}

// NewAnnotator creates an Annotator. maxWorkers bounds dataset fan-out and
// must be positive; 1 means serial processing.
func NewAnnotator(generator Generator, st store.Store, maxWorkers int, logger *slog.Logger) (*Annotator, error) {
	if generator == nil {
		return nil, errors.New("generator is required")
	}
	if st == nil {
		return nil, errors.New("store is required")
	}
	if maxWorkers <= 0 {
		return nil, fmt.Errorf("maxWorkers must be positive, got %d", maxWorkers)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Annotator{
		generator:  generator,
		store:      st,
		maxWorkers: maxWorkers,
		logger:     logger,
	}, nil
}

// GeneratorID returns the identifier of the configured generator.
func (a *Annotator) GeneratorID() string {
	return a.generator.ID()
}

// AnnotateTable annotates a single table and returns the stored artifact.
//
// A table already present in the store is returned as-is without calling
// the generator. Otherwise the generator is asked once for the table's
// distinct search keys; the first candidate of each non-empty list
// annotates every cell sharing the key, empty lists leave their cells
// bare. The finished table is persisted and re-read from the store, so the
// caller always observes exactly what later runs will.
func (a *Annotator) AnnotateTable(ctx context.Context, table *types.Table) (*types.Table, error) {
	key := store.Key{
		DatasetID:   table.DatasetID(),
		GeneratorID: a.generator.ID(),
		TableID:     table.ID(),
	}

	cached, err := a.store.Has(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("checking store for %s: %w", key, err)
	}
	if cached {
		a.logger.Debug("table already annotated", "table", table.ID(), "dataset", table.DatasetID())
		return a.store.Get(ctx, key)
	}

	results, err := a.generator.Candidates(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("generating candidates for %s: %w", table.ID(), err)
	}

	keyCells := table.SearchKeyCells()
	var annotated int
	for _, kc := range results {
		if len(kc.Candidates) == 0 {
			continue
		}
		best := kc.Candidates[0].Entity
		for _, cell := range keyCells[kc.Key] {
			table.AnnotateCell(cell, best)
			annotated++
		}
	}

	if err := a.store.Put(ctx, key, table); err != nil {
		// a concurrent writer got there first; its artifact wins
		if errors.Is(err, store.ErrAlreadyExists) {
			return a.store.Get(ctx, key)
		}
		return nil, fmt.Errorf("persisting %s: %w", key, err)
	}

	a.logger.Info("table annotated and persisted",
		"table", table.ID(), "dataset", table.DatasetID(),
		"keys", len(results), "cells", annotated)
	return a.store.Get(ctx, key)
}

// AnnotateDataset annotates every table of a dataset.
//
// With maxWorkers of 1 tables are processed serially in iteration order
// behind a progress bar; otherwise they fan out over a bounded worker
// pool. Processing is best-effort: each table that fails to load or
// annotate contributes one error, and the remaining tables still run. The
// returned slices are independent; only successfully annotated tables
// appear in the first.
func (a *Annotator) AnnotateDataset(ctx context.Context, dataset Dataset) ([]*types.Table, []error) {
	a.logger.Info("annotating dataset",
		"dataset", dataset.Name(),
		"tables", dataset.TotalTables(),
		"generator", a.generator.ID(),
		"workers", a.maxWorkers)

	var tables []*types.Table
	var errs []error
	for table, err := range dataset.Tables() {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		tables = append(tables, table)
	}

	if a.maxWorkers == 1 {
		annotated, serialErrs := a.annotateSerial(ctx, tables)
		return annotated, append(errs, serialErrs...)
	}

	pool := utils.NewWorkerPool(a.maxWorkers, func(ctx context.Context, table *types.Table) (*types.Table, error) {
		return a.AnnotateTable(ctx, table)
	})
	results, poolErrs := pool.ProcessItems(ctx, tables)

	var annotated []*types.Table
	for i, result := range results {
		if poolErrs[i] != nil {
			errs = append(errs, fmt.Errorf("table %s: %w", tables[i].ID(), poolErrs[i]))
			continue
		}
		if result == nil {
			// The pool shut down before dispatching this table, which
			// happens when the context is cancelled mid-run.
			cause := ctx.Err()
			if cause == nil {
				cause = errors.New("table was not processed")
			}
			errs = append(errs, fmt.Errorf("table %s: %w", tables[i].ID(), cause))
			continue
		}
		annotated = append(annotated, result)
	}
	return annotated, errs
}

func (a *Annotator) annotateSerial(ctx context.Context, tables []*types.Table) ([]*types.Table, []error) {
	bar := progressbar.Default(int64(len(tables)), "annotating")

	var annotated []*types.Table
	var errs []error
	for _, table := range tables {
		result, err := a.AnnotateTable(ctx, table)
		if err != nil {
			errs = append(errs, fmt.Errorf("table %s: %w", table.ID(), err))
		} else {
			annotated = append(annotated, result)
		}
		bar.Add(1)
	}
	bar.Finish()
	return annotated, errs
}
