package types

import (
	"encoding/json"
	"sort"
)

// Table is a single relational table of a dataset: an identifier, the raw
// cell grid, and a mutable annotation layer mapping cells to entities.
// It optionally carries read-only ground-truth annotations supplied by the
// dataset loader. The annotation layer is append-only: annotators assign
// entities but never remove them.
type Table struct {
	id        string
	datasetID string
	rows      [][]string

	annotations map[Cell]Entity

	gtCells     map[Cell][]Entity
	gtColumns   map[int][]string
	gtRelations map[ColumnRelation][]string
}

// NewTable creates a table from its raw cell grid.
func NewTable(id, datasetID string, rows [][]string) (*Table, error) {
	if id == "" {
		return nil, ErrEmptyTableID
	}
	if datasetID == "" {
		return nil, ErrEmptyDatasetID
	}
	return &Table{
		id:          id,
		datasetID:   datasetID,
		rows:        rows,
		annotations: make(map[Cell]Entity),
	}, nil
}

// ID returns the table identifier, unique within its dataset.
func (t *Table) ID() string { return t.id }

// DatasetID returns the identifier of the dataset this table belongs to.
func (t *Table) DatasetID() string { return t.datasetID }

// Rows returns the raw cell grid.
func (t *Table) Rows() [][]string { return t.rows }

// CellValue returns the raw content of a cell, or "" when the address is
// outside the grid.
func (t *Table) CellValue(c Cell) string {
	if c.Row < 0 || c.Row >= len(t.rows) {
		return ""
	}
	if c.Col < 0 || c.Col >= len(t.rows[c.Row]) {
		return ""
	}
	return t.rows[c.Row][c.Col]
}

// SearchKeyCells groups the table's cells by their normalized search key.
// Cells whose label normalizes to the empty string are skipped. Cell lists
// are ordered row-major so iteration is deterministic.
func (t *Table) SearchKeyCells() map[SearchKey][]Cell {
	keys := make(map[SearchKey][]Cell)
	for r, row := range t.rows {
		for c, label := range row {
			key := NormalizeKey(label)
			if key == "" {
				continue
			}
			keys[key] = append(keys[key], Cell{Row: r, Col: c})
		}
	}
	return keys
}

// SearchKeys returns the table's distinct search keys in sorted order.
func (t *Table) SearchKeys() []SearchKey {
	grouped := t.SearchKeyCells()
	keys := make([]SearchKey, 0, len(grouped))
	for k := range grouped {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// RowContext returns the content of every cell in the given row except the
// addressed one. Used by generators to build a textual context for a cell.
func (t *Table) RowContext(c Cell) []string {
	if c.Row < 0 || c.Row >= len(t.rows) {
		return nil
	}
	var out []string
	for i, v := range t.rows[c.Row] {
		if i == c.Col || v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}

// AnnotateCell assigns an entity to a cell.
func (t *Table) AnnotateCell(c Cell, e Entity) {
	if t.annotations == nil {
		t.annotations = make(map[Cell]Entity)
	}
	t.annotations[c] = e
}

// Annotation returns the entity assigned to a cell, if any.
func (t *Table) Annotation(c Cell) (Entity, bool) {
	e, ok := t.annotations[c]
	return e, ok
}

// Annotations returns a copy of the cell annotation layer.
func (t *Table) Annotations() map[Cell]Entity {
	out := make(map[Cell]Entity, len(t.annotations))
	for c, e := range t.annotations {
		out[c] = e
	}
	return out
}

// AnnotatedCells returns the annotated cell addresses sorted row-major.
func (t *Table) AnnotatedCells() []Cell {
	cells := make([]Cell, 0, len(t.annotations))
	for c := range t.annotations {
		cells = append(cells, c)
	}
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Row != cells[j].Row {
			return cells[i].Row < cells[j].Row
		}
		return cells[i].Col < cells[j].Col
	})
	return cells
}

// SetGTCellAnnotations attaches ground-truth entity annotations. Each cell
// may admit several correct entities.
func (t *Table) SetGTCellAnnotations(gt map[Cell][]Entity) {
	t.gtCells = gt
}

// GTCellAnnotation returns the ground-truth entities for a cell, if any.
func (t *Table) GTCellAnnotation(c Cell) ([]Entity, bool) {
	e, ok := t.gtCells[c]
	return e, ok
}

// GTCells returns the addresses of all cells with ground truth attached.
func (t *Table) GTCells() []Cell {
	cells := make([]Cell, 0, len(t.gtCells))
	for c := range t.gtCells {
		cells = append(cells, c)
	}
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Row != cells[j].Row {
			return cells[i].Row < cells[j].Row
		}
		return cells[i].Col < cells[j].Col
	})
	return cells
}

// SetGTColumnAnnotations attaches ground-truth column type annotations.
func (t *Table) SetGTColumnAnnotations(gt map[int][]string) {
	t.gtColumns = gt
}

// GTColumnAnnotation returns the ground-truth types for a column, if any.
func (t *Table) GTColumnAnnotation(col int) ([]string, bool) {
	v, ok := t.gtColumns[col]
	return v, ok
}

// SetGTRelationAnnotations attaches ground-truth column relation annotations.
func (t *Table) SetGTRelationAnnotations(gt map[ColumnRelation][]string) {
	t.gtRelations = gt
}

// GTRelationAnnotation returns the ground-truth properties for a column
// pair, if any.
func (t *Table) GTRelationAnnotation(rel ColumnRelation) ([]string, bool) {
	v, ok := t.gtRelations[rel]
	return v, ok
}

// Wire format of the persisted table artifact. Maps keyed by Cell cannot
// be JSON object keys, so the annotation layers serialize as record lists.
type tableJSON struct {
	ID          string             `json:"id"`
	DatasetID   string             `json:"dataset_id"`
	Rows        [][]string         `json:"rows"`
	Annotations []cellAnnotation   `json:"annotations,omitempty"`
	GTCells     []gtCellAnnotation `json:"gt_cells,omitempty"`
	GTColumns   []gtColAnnotation  `json:"gt_columns,omitempty"`
	GTRelations []gtRelAnnotation  `json:"gt_relations,omitempty"`
}

type cellAnnotation struct {
	Cell   Cell   `json:"cell"`
	Entity Entity `json:"entity"`
}

type gtCellAnnotation struct {
	Cell     Cell     `json:"cell"`
	Entities []Entity `json:"entities"`
}

type gtColAnnotation struct {
	Col   int      `json:"col"`
	Types []string `json:"types"`
}

type gtRelAnnotation struct {
	Relation   ColumnRelation `json:"relation"`
	Properties []string       `json:"properties"`
}

// MarshalJSON serializes the table, annotation layers included, with the
// record lists sorted so the artifact bytes are deterministic.
func (t *Table) MarshalJSON() ([]byte, error) {
	w := tableJSON{
		ID:        t.id,
		DatasetID: t.datasetID,
		Rows:      t.rows,
	}
	for _, c := range t.AnnotatedCells() {
		w.Annotations = append(w.Annotations, cellAnnotation{Cell: c, Entity: t.annotations[c]})
	}
	for _, c := range t.GTCells() {
		w.GTCells = append(w.GTCells, gtCellAnnotation{Cell: c, Entities: t.gtCells[c]})
	}
	cols := make([]int, 0, len(t.gtColumns))
	for col := range t.gtColumns {
		cols = append(cols, col)
	}
	sort.Ints(cols)
	for _, col := range cols {
		w.GTColumns = append(w.GTColumns, gtColAnnotation{Col: col, Types: t.gtColumns[col]})
	}
	rels := make([]ColumnRelation, 0, len(t.gtRelations))
	for rel := range t.gtRelations {
		rels = append(rels, rel)
	}
	sort.Slice(rels, func(i, j int) bool {
		if rels[i].Source != rels[j].Source {
			return rels[i].Source < rels[j].Source
		}
		return rels[i].Target < rels[j].Target
	})
	for _, rel := range rels {
		w.GTRelations = append(w.GTRelations, gtRelAnnotation{Relation: rel, Properties: t.gtRelations[rel]})
	}
	return json.Marshal(w)
}

// UnmarshalJSON restores a table from its persisted artifact.
func (t *Table) UnmarshalJSON(data []byte) error {
	var w tableJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.ID == "" {
		return ErrEmptyTableID
	}
	if w.DatasetID == "" {
		return ErrEmptyDatasetID
	}
	t.id = w.ID
	t.datasetID = w.DatasetID
	t.rows = w.Rows
	t.annotations = make(map[Cell]Entity, len(w.Annotations))
	for _, a := range w.Annotations {
		t.annotations[a.Cell] = a.Entity
	}
	if len(w.GTCells) > 0 {
		t.gtCells = make(map[Cell][]Entity, len(w.GTCells))
		for _, a := range w.GTCells {
			t.gtCells[a.Cell] = a.Entities
		}
	}
	if len(w.GTColumns) > 0 {
		t.gtColumns = make(map[int][]string, len(w.GTColumns))
		for _, a := range w.GTColumns {
			t.gtColumns[a.Col] = a.Types
		}
	}
	if len(w.GTRelations) > 0 {
		t.gtRelations = make(map[ColumnRelation][]string, len(w.GTRelations))
		for _, a := range w.GTRelations {
			t.gtRelations[a.Relation] = a.Properties
		}
	}
	return nil
}
