// Package dataset loads annotation benchmarks from disk: the raw tables of
// a dataset plus the cell, column and relation ground truth shipped with
// it.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/semtab/linker/pkg/types"
)

// CSVDataset reads a benchmark laid out as
//
//	<dir>/tables/<tab_id>.csv
//	<dir>/gt/CEA_<name>_gt.csv
//	<dir>/gt/CTA_<name>_gt.csv   (optional)
//	<dir>/gt/CPA_<name>_gt.csv   (optional)
//
// The CEA ground truth is the table inventory: only tables it mentions are
// iterated. Iteration re-reads storage, nothing is cached.
type CSVDataset struct {
	name string
	dir  string
}

// NewCSVDataset opens the benchmark named name under dir. The CEA ground
// truth file must exist.
func NewCSVDataset(name, dir string) (*CSVDataset, error) {
	d := &CSVDataset{name: name, dir: dir}
	if _, err := os.Stat(d.gtPath("CEA")); err != nil {
		return nil, fmt.Errorf("opening dataset %s: %w", name, err)
	}
	return d, nil
}

// Name returns the dataset name.
func (d *CSVDataset) Name() string {
	return d.name
}

func (d *CSVDataset) gtPath(task string) string {
	return filepath.Join(d.dir, "gt", fmt.Sprintf("%s_%s_gt.csv", task, d.name))
}

func (d *CSVDataset) tablePath(tabID string) string {
	return filepath.Join(d.dir, "tables", tabID+".csv")
}

// cellGT is one CEA ground truth row.
type cellGT struct {
	cell     types.Cell
	entities []types.Entity
}

// readRecords reads a whole CSV file without enforcing a fixed record
// length.
func readRecords(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	var records [][]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		records = append(records, record)
	}
	return records, nil
}

// cellGroups parses the CEA ground truth: tab_id, col_id, row_id, entities
// (space separated URIs).
func (d *CSVDataset) cellGroups() (map[string][]cellGT, []string, error) {
	records, err := readRecords(d.gtPath("CEA"))
	if err != nil {
		return nil, nil, err
	}

	groups := make(map[string][]cellGT)
	var order []string
	for _, record := range records {
		if len(record) < 4 {
			return nil, nil, fmt.Errorf("malformed CEA ground truth record: %v", record)
		}
		tabID := record[0]
		col, err := strconv.Atoi(record[1])
		if err != nil {
			return nil, nil, fmt.Errorf("parsing col_id %q: %w", record[1], err)
		}
		row, err := strconv.Atoi(record[2])
		if err != nil {
			return nil, nil, fmt.Errorf("parsing row_id %q: %w", record[2], err)
		}

		var entities []types.Entity
		for _, uri := range strings.Fields(record[3]) {
			entities = append(entities, types.Entity{URI: uri})
		}

		if _, seen := groups[tabID]; !seen {
			order = append(order, tabID)
		}
		groups[tabID] = append(groups[tabID], cellGT{
			cell:     types.Cell{Row: row, Col: col},
			entities: entities,
		})
	}
	sort.Strings(order)
	return groups, order, nil
}

// columnGroups parses the optional CTA ground truth: tab_id, col_id, types
// (space separated URIs).
func (d *CSVDataset) columnGroups() (map[string]map[int][]string, error) {
	records, err := readRecords(d.gtPath("CTA"))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	groups := make(map[string]map[int][]string)
	for _, record := range records {
		if len(record) < 3 {
			return nil, fmt.Errorf("malformed CTA ground truth record: %v", record)
		}
		col, err := strconv.Atoi(record[1])
		if err != nil {
			return nil, fmt.Errorf("parsing col_id %q: %w", record[1], err)
		}
		if groups[record[0]] == nil {
			groups[record[0]] = make(map[int][]string)
		}
		groups[record[0]][col] = strings.Fields(record[2])
	}
	return groups, nil
}

// relationGroups parses the optional CPA ground truth: tab_id, source_id,
// target_id, properties (space separated URIs).
func (d *CSVDataset) relationGroups() (map[string]map[types.ColumnRelation][]string, error) {
	records, err := readRecords(d.gtPath("CPA"))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	groups := make(map[string]map[types.ColumnRelation][]string)
	for _, record := range records {
		if len(record) < 4 {
			return nil, fmt.Errorf("malformed CPA ground truth record: %v", record)
		}
		source, err := strconv.Atoi(record[1])
		if err != nil {
			return nil, fmt.Errorf("parsing source_id %q: %w", record[1], err)
		}
		target, err := strconv.Atoi(record[2])
		if err != nil {
			return nil, fmt.Errorf("parsing target_id %q: %w", record[2], err)
		}
		if groups[record[0]] == nil {
			groups[record[0]] = make(map[types.ColumnRelation][]string)
		}
		rel := types.ColumnRelation{Source: source, Target: target}
		groups[record[0]][rel] = strings.Fields(record[3])
	}
	return groups, nil
}

// loadTable reads a table's raw rows and attaches its ground truth.
func (d *CSVDataset) loadTable(tabID string, cells []cellGT,
	columns map[int][]string, relations map[types.ColumnRelation][]string) (*types.Table, error) {

	rows, err := readRecords(d.tablePath(tabID))
	if err != nil {
		return nil, fmt.Errorf("reading table %s: %w", tabID, err)
	}

	table, err := types.NewTable(tabID, d.name, rows)
	if err != nil {
		return nil, err
	}

	gtCells := make(map[types.Cell][]types.Entity, len(cells))
	for _, gt := range cells {
		gtCells[gt.cell] = gt.entities
	}
	table.SetGTCellAnnotations(gtCells)
	if columns != nil {
		table.SetGTColumnAnnotations(columns)
	}
	if relations != nil {
		table.SetGTRelationAnnotations(relations)
	}
	return table, nil
}

// Tables iterates the dataset's tables in table id order. A table that
// fails to load yields a nil table with the error; iteration continues.
func (d *CSVDataset) Tables() iter.Seq2[*types.Table, error] {
	return func(yield func(*types.Table, error) bool) {
		cells, order, err := d.cellGroups()
		if err != nil {
			yield(nil, err)
			return
		}
		columns, err := d.columnGroups()
		if err != nil {
			yield(nil, err)
			return
		}
		relations, err := d.relationGroups()
		if err != nil {
			yield(nil, err)
			return
		}

		for _, tabID := range order {
			table, err := d.loadTable(tabID, cells[tabID], columns[tabID], relations[tabID])
			if !yield(table, err) {
				return
			}
		}
	}
}

// TotalTables counts the tables the CEA ground truth mentions.
func (d *CSVDataset) TotalTables() int {
	_, order, err := d.cellGroups()
	if err != nil {
		return 0
	}
	return len(order)
}
