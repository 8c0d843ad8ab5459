package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semtab/linker/pkg/types"
)

// writeFixture lays a small two-table benchmark out on disk.
func writeFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "tables"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "gt"), 0o755))

	write := func(path, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, path), []byte(content), 0o644))
	}

	write("tables/tab-1.csv", "Paris,France\nLyon,France\n")
	write("tables/tab-2.csv", "Rome,Italy\n")

	write("gt/CEA_Round1_gt.csv",
		"tab-1,0,0,http://dbpedia.org/resource/Paris\n"+
			"tab-1,0,1,http://dbpedia.org/resource/Lyon http://dbpedia.org/resource/Lyons\n"+
			"tab-2,0,0,http://dbpedia.org/resource/Rome\n")
	write("gt/CTA_Round1_gt.csv",
		"tab-1,0,http://dbpedia.org/ontology/City\n")
	write("gt/CPA_Round1_gt.csv",
		"tab-1,0,1,http://dbpedia.org/ontology/country\n")

	return dir
}

func TestCSVDatasetTables(t *testing.T) {
	dir := writeFixture(t)
	d, err := NewCSVDataset("Round1", dir)
	require.NoError(t, err)

	assert.Equal(t, "Round1", d.Name())
	assert.Equal(t, 2, d.TotalTables())

	var tables []*types.Table
	for table, err := range d.Tables() {
		require.NoError(t, err)
		tables = append(tables, table)
	}
	require.Len(t, tables, 2)

	// table ids iterate in sorted order
	assert.Equal(t, "tab-1", tables[0].ID())
	assert.Equal(t, "tab-2", tables[1].ID())
	assert.Equal(t, "Round1", tables[0].DatasetID())
	assert.Equal(t, "Paris", tables[0].CellValue(types.Cell{Row: 0, Col: 0}))

	// CEA ground truth attached, multi-entity rows preserved
	entities, ok := tables[0].GTCellAnnotation(types.Cell{Row: 1, Col: 0})
	require.True(t, ok)
	require.Len(t, entities, 2)
	assert.Equal(t, "http://dbpedia.org/resource/Lyon", entities[0].URI)

	// CTA and CPA ground truth attached where present
	colTypes, ok := tables[0].GTColumnAnnotation(0)
	require.True(t, ok)
	assert.Equal(t, []string{"http://dbpedia.org/ontology/City"}, colTypes)

	props, ok := tables[0].GTRelationAnnotation(types.ColumnRelation{Source: 0, Target: 1})
	require.True(t, ok)
	assert.Equal(t, []string{"http://dbpedia.org/ontology/country"}, props)

	_, ok = tables[1].GTColumnAnnotation(0)
	assert.False(t, ok)
}

func TestCSVDatasetMissingTableFile(t *testing.T) {
	dir := writeFixture(t)
	require.NoError(t, os.Remove(filepath.Join(dir, "tables", "tab-2.csv")))

	d, err := NewCSVDataset("Round1", dir)
	require.NoError(t, err)

	var loaded, failed int
	for table, err := range d.Tables() {
		if err != nil {
			failed++
			assert.Nil(t, table)
			continue
		}
		loaded++
	}
	assert.Equal(t, 1, loaded)
	assert.Equal(t, 1, failed)
}

func TestCSVDatasetMissingGT(t *testing.T) {
	_, err := NewCSVDataset("Round1", t.TempDir())
	require.Error(t, err)
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "datasets.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"datasets:\n  - name: Round1\n    dir: /data/round1\n  - name: 2T\n    dir: /data/2t\n"), 0o644))

	m, err := LoadManifest(path)
	require.NoError(t, err)
	require.Len(t, m.Datasets, 2)
	assert.Equal(t, "Round1", m.Datasets[0].Name)
	assert.Equal(t, "/data/round1", m.Datasets[0].Dir)

	_, err = m.Open("missing")
	require.Error(t, err)
}

func TestLoadManifestRejectsIncomplete(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "datasets.yaml")
	require.NoError(t, os.WriteFile(path, []byte("datasets:\n  - name: Round1\n"), 0o644))

	_, err := LoadManifest(path)
	require.Error(t, err)
}
