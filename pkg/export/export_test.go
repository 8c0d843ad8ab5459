package export

import (
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semtab/linker/pkg/types"
)

func annotatedTable(t *testing.T) *types.Table {
	t.Helper()
	table, err := types.NewTable("tab-1", "Round1", [][]string{
		{"Paris", "France"},
	})
	require.NoError(t, err)
	table.AnnotateCell(types.Cell{Row: 0, Col: 0}, types.Entity{URI: "http://dbpedia.org/resource/Paris"})
	table.AnnotateCell(types.Cell{Row: 0, Col: 1}, types.Entity{URI: "http://dbpedia.org/resource/France"})
	return table
}

func TestExporterRoundTrip(t *testing.T) {
	dir := t.TempDir()
	e, err := NewExporter(filepath.Join(dir, "exports"))
	require.NoError(t, err)

	path, err := e.Export([]*types.Table{annotatedTable(t)})
	require.NoError(t, err)
	assert.FileExists(t, path)

	records, err := parquet.ReadFile[AnnotationRecord](path)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "Round1", records[0].DatasetID)
	assert.Equal(t, "tab-1", records[0].TableID)
	assert.Equal(t, "Paris", records[0].Label)
	assert.Equal(t, "http://dbpedia.org/resource/Paris", records[0].EntityURI)
	assert.NotEmpty(t, records[0].RunID)

	// all records of one call share a run id
	assert.Equal(t, records[0].RunID, records[1].RunID)
}

func TestExporterDistinctRuns(t *testing.T) {
	e, err := NewExporter(t.TempDir())
	require.NoError(t, err)

	table := annotatedTable(t)
	first, err := e.Export([]*types.Table{table})
	require.NoError(t, err)
	second, err := e.Export([]*types.Table{table})
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	a, err := parquet.ReadFile[AnnotationRecord](first)
	require.NoError(t, err)
	b, err := parquet.ReadFile[AnnotationRecord](second)
	require.NoError(t, err)
	assert.NotEqual(t, a[0].RunID, b[0].RunID)
}

func TestExporterEmpty(t *testing.T) {
	e, err := NewExporter(t.TempDir())
	require.NoError(t, err)

	_, err = e.Export(nil)
	require.Error(t, err)
}
