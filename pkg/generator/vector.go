package generator

import (
	"context"
	"fmt"

	"github.com/semtab/linker/pkg/types"
)

// VectorSource resolves precomputed knowledge-graph embeddings by entity
// URI. kg.VectorService implements it.
type VectorSource interface {
	Vectors(ctx context.Context, uris []string) (map[string][]float32, error)
}

// VectorGenerator wraps a base generator and re-ranks its candidates by
// graph-embedding coherence: each candidate's KG vector is compared against
// the centroid of the best-candidate vectors of the table's other keys, so
// entities that live near the rest of the table move up. Candidates without
// a stored vector stay unscorable.
type VectorGenerator struct {
	base    Base
	vectors VectorSource
	config  RerankConfig
}

// NewVectorGenerator builds the coherence re-ranking wrapper.
func NewVectorGenerator(base Base, vectors VectorSource, config RerankConfig) *VectorGenerator {
	return &VectorGenerator{base: base, vectors: vectors, config: config}
}

// ID identifies this generator in cache keys and artifacts.
func (g *VectorGenerator) ID() string {
	return g.base.ID() + "+vectors"
}

// Candidates re-ranks the base generator's output.
func (g *VectorGenerator) Candidates(ctx context.Context, table *types.Table) ([]types.KeyCandidates, error) {
	base, err := g.base.Candidates(ctx, table)
	if err != nil {
		return nil, err
	}

	vectors, err := g.fetchVectors(ctx, base)
	if err != nil {
		return nil, err
	}

	results := make([]types.KeyCandidates, 0, len(base))
	for i, kc := range base {
		if len(kc.Candidates) == 0 {
			results = append(results, kc)
			continue
		}

		context := coherenceContext(base, i, vectors)

		withEmbeddings := make([]types.CandidateEmbeddings, 0, len(kc.Candidates))
		for _, cand := range kc.Candidates {
			withEmbeddings = append(withEmbeddings, types.CandidateEmbeddings{
				Candidate:         cand,
				ContextEmbedding:  context,
				AbstractEmbedding: vectors[cand.Entity.URI],
			})
		}

		reranked, err := rerank(withEmbeddings, g.config)
		if err != nil {
			return nil, err
		}
		results = append(results, types.KeyCandidates{Key: kc.Key, Candidates: reranked})
	}
	return results, nil
}

// fetchVectors resolves the KG vector of every distinct candidate in one
// service call.
func (g *VectorGenerator) fetchVectors(ctx context.Context, base []types.KeyCandidates) (map[string][]float32, error) {
	seen := make(map[string]struct{})
	var uris []string
	for _, kc := range base {
		for _, cand := range kc.Candidates {
			if _, ok := seen[cand.Entity.URI]; ok {
				continue
			}
			seen[cand.Entity.URI] = struct{}{}
			uris = append(uris, cand.Entity.URI)
		}
	}
	if len(uris) == 0 {
		return map[string][]float32{}, nil
	}
	vectors, err := g.vectors.Vectors(ctx, uris)
	if err != nil {
		return nil, fmt.Errorf("fetching entity vectors: %w", err)
	}
	return vectors, nil
}

// coherenceContext averages the best-candidate vectors of every key except
// the one at position skip. Returns nil when no other key contributes a
// vector, which leaves the whole key unscorable.
func coherenceContext(base []types.KeyCandidates, skip int, vectors map[string][]float32) []float32 {
	var sum []float32
	var n int
	for i, kc := range base {
		if i == skip || len(kc.Candidates) == 0 {
			continue
		}
		vec := vectors[kc.Candidates[0].Entity.URI]
		if vec == nil {
			continue
		}
		if sum == nil {
			sum = make([]float32, len(vec))
		}
		if len(vec) != len(sum) {
			continue
		}
		for j, v := range vec {
			sum[j] += v
		}
		n++
	}
	if n == 0 {
		return nil
	}
	for j := range sum {
		sum[j] /= float32(n)
	}
	return sum
}
