package linker

import (
	"context"
	"iter"

	"github.com/semtab/linker/pkg/types"
)

// Generator proposes entity candidates for the search keys of a table.
// Implementations live in pkg/generator; anything with a stable identifier
// and a per-table candidate lookup can serve.
type Generator interface {
	// ID identifies the generator in cache keys and artifacts. It must be
	// stable across runs: changing it invalidates every cached annotation.
	ID() string

	// Candidates returns one ordered candidate list (best-first) per
	// distinct search key of the table. Lists may be empty when the lookup
	// found nothing for a key.
	Candidates(ctx context.Context, table *types.Table) ([]types.KeyCandidates, error)
}

// Dataset is a named collection of tables that can be iterated multiple
// times. Iteration re-reads the underlying storage.
type Dataset interface {
	// Name identifies the dataset in cache keys and artifacts.
	Name() string

	// Tables yields the dataset's tables. A table that fails to load
	// yields a nil table with the error; iteration continues.
	Tables() iter.Seq2[*types.Table, error]

	// TotalTables reports how many tables the dataset holds.
	TotalTables() int
}
