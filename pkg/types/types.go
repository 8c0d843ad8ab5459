package types

import (
	"errors"
	"net/url"
	"strings"
)

// Validation errors
var (
	ErrEmptyTableID   = errors.New("table id cannot be empty")
	ErrEmptyDatasetID = errors.New("dataset id cannot be empty")
	ErrEmptyURI       = errors.New("uri cannot be empty")
)

// Entity is a knowledge-graph resource reference. It is an immutable value
// type; two entities are the same resource when their URIs decode to the
// same lowercase string, regardless of percent-encoding or casing.
type Entity struct {
	URI string `json:"uri"`
}

// NewEntity creates an Entity from a resource URI.
func NewEntity(uri string) Entity {
	return Entity{URI: uri}
}

// Normalized returns the canonical form of the entity URI: percent-decoded
// and lowercased. URIs that fail to decode are normalized as-is.
func (e Entity) Normalized() string {
	decoded, err := url.PathUnescape(e.URI)
	if err != nil {
		decoded = e.URI
	}
	return strings.ToLower(decoded)
}

// Equal reports whether two entities reference the same resource.
// Equality is symmetric: it compares normalized URIs.
func (e Entity) Equal(o Entity) bool {
	return e.Normalized() == o.Normalized()
}

// Validate checks that the entity has a URI set.
func (e Entity) Validate() error {
	if e.URI == "" {
		return ErrEmptyURI
	}
	return nil
}

// Cell addresses a single table cell by row and column.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// ColumnRelation addresses a pair of columns, used by ground-truth
// relation annotations.
type ColumnRelation struct {
	Source int `json:"source"`
	Target int `json:"target"`
}

// SearchKey is the normalized string used to query a candidate generator.
// Cells with the same normalized label share one key, and therefore one
// generator call.
type SearchKey string

// NormalizeKey builds the SearchKey for a raw cell label: lowercased with
// runs of whitespace collapsed to single spaces.
func NormalizeKey(label string) SearchKey {
	return SearchKey(strings.Join(strings.Fields(strings.ToLower(label)), " "))
}

// Candidate is an entity proposed for a search key. Rank is its 0-based
// position in the generator's ordered result list (0 = best guess).
type Candidate struct {
	Entity Entity `json:"entity"`
	Rank   int    `json:"rank"`
}

// KeyCandidates pairs a search key with its ordered candidate list,
// best-first. The list may be empty when the lookup found nothing.
type KeyCandidates struct {
	Key        SearchKey   `json:"key"`
	Candidates []Candidate `json:"candidates"`
}

// CandidateEmbeddings decorates a candidate with the two vectors used by
// rank fusion: the embedding of the cell's context and the embedding of
// the candidate's abstract. Either vector may be nil when unavailable.
type CandidateEmbeddings struct {
	Candidate         Candidate
	ContextEmbedding  []float32
	AbstractEmbedding []float32
}

// ScoredCandidate is the output of rank fusion: the candidate, its
// original retrieval rank, the raw semantic distance, and the fused
// score. Distance and Score are nil for candidates that could not be
// scored. Lower score is better.
type ScoredCandidate struct {
	Candidate Candidate
	Rank      int
	Distance  *float64
	Score     *float64
}
