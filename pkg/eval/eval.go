// Package eval scores annotated tables against their ground truth.
package eval

import (
	"github.com/semtab/linker/pkg/types"
)

// Result aggregates cell-annotation quality over one or more tables.
// Target counts the ground truth cells, Annotated how many of them carry
// an annotation, Correct how many annotations match a ground truth entity.
type Result struct {
	Target    int
	Annotated int
	Correct   int
}

// Precision is the fraction of annotated target cells linked correctly.
// Zero annotated cells give 0.
func (r Result) Precision() float64 {
	if r.Annotated == 0 {
		return 0
	}
	return float64(r.Correct) / float64(r.Annotated)
}

// Coverage is the fraction of target cells that received an annotation.
// Zero target cells give 0.
func (r Result) Coverage() float64 {
	if r.Target == 0 {
		return 0
	}
	return float64(r.Annotated) / float64(r.Target)
}

// Add folds another result into this one.
func (r Result) Add(other Result) Result {
	return Result{
		Target:    r.Target + other.Target,
		Annotated: r.Annotated + other.Annotated,
		Correct:   r.Correct + other.Correct,
	}
}

// ScoreTable compares a table's annotations against its cell ground truth.
// An annotation counts as correct when it equals any of the cell's ground
// truth entities under normalized comparison.
func ScoreTable(table *types.Table) Result {
	var r Result
	for _, cell := range table.GTCells() {
		r.Target++
		annotation, ok := table.Annotation(cell)
		if !ok {
			continue
		}
		r.Annotated++

		expected, _ := table.GTCellAnnotation(cell)
		for _, entity := range expected {
			if annotation.Equal(entity) {
				r.Correct++
				break
			}
		}
	}
	return r
}

// ScoreTables aggregates ScoreTable over many tables.
func ScoreTables(tables []*types.Table) Result {
	var r Result
	for _, table := range tables {
		r = r.Add(ScoreTable(table))
	}
	return r
}
