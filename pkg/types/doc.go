// Package types defines the core data model for cell entity annotation:
// knowledge-graph entities, table cells, candidate entities with their
// retrieval ranks, and the Table type that carries both the raw cell grid
// and the annotation layer produced by the annotators.
package types
