// Package export writes annotation runs to Parquet files for downstream
// analysis.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/parquet-go/parquet-go"

	"github.com/semtab/linker/pkg/types"
)

// AnnotationRecord is one exported cell annotation.
type AnnotationRecord struct {
	RunID     string    `parquet:"run_id"`
	Timestamp time.Time `parquet:"timestamp"`
	DatasetID string    `parquet:"dataset_id"`
	TableID   string    `parquet:"table_id"`
	Row       int       `parquet:"row_id"`
	Col       int       `parquet:"col_id"`
	Label     string    `parquet:"label"`
	EntityURI string    `parquet:"entity_uri"`
}

// Exporter flattens annotated tables into Parquet files, one file per run.
type Exporter struct {
	dir string
}

// NewExporter creates an exporter writing under dir.
func NewExporter(dir string) (*Exporter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating export dir: %w", err)
	}
	return &Exporter{dir: dir}, nil
}

// Export writes every annotation of the given tables to a new Parquet file
// and returns its path. Each call is one run with a fresh run id.
func (e *Exporter) Export(tables []*types.Table) (string, error) {
	runID := uuid.New().String()
	now := time.Now().UTC()

	var records []AnnotationRecord
	for _, table := range tables {
		for _, cell := range table.AnnotatedCells() {
			entity, _ := table.Annotation(cell)
			records = append(records, AnnotationRecord{
				RunID:     runID,
				Timestamp: now,
				DatasetID: table.DatasetID(),
				TableID:   table.ID(),
				Row:       cell.Row,
				Col:       cell.Col,
				Label:     table.CellValue(cell),
				EntityURI: entity.URI,
			})
		}
	}
	if len(records) == 0 {
		return "", fmt.Errorf("nothing to export")
	}

	path := filepath.Join(e.dir, fmt.Sprintf("annotations_%s_%s.parquet", now.Format("20060102T150405"), runID))
	if err := parquet.WriteFile(path, records); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}
