// Package dto defines the wire types of the HTTP API.
package dto

// AnnotateRequest carries a raw table to annotate.
type AnnotateRequest struct {
	TableID   string     `json:"table_id" binding:"required"`
	DatasetID string     `json:"dataset_id" binding:"required"`
	Rows      [][]string `json:"rows" binding:"required"`
}

// CellAnnotation is one linked cell in a response.
type CellAnnotation struct {
	Row       int    `json:"row_id"`
	Col       int    `json:"col_id"`
	Label     string `json:"label"`
	EntityURI string `json:"entity_uri"`
}

// AnnotateResponse returns the annotations of a table.
type AnnotateResponse struct {
	TableID     string           `json:"table_id"`
	DatasetID   string           `json:"dataset_id"`
	Generator   string           `json:"generator"`
	Annotations []CellAnnotation `json:"annotations"`
}

// ErrorResponse carries an error message.
type ErrorResponse struct {
	Error string `json:"error"`
}
