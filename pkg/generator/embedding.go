package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/semtab/linker/pkg/embedder"
	"github.com/semtab/linker/pkg/fusion"
	"github.com/semtab/linker/pkg/kg"
	"github.com/semtab/linker/pkg/types"
)

// Base is any candidate generator an EmbeddingGenerator can refine.
type Base interface {
	ID() string
	Candidates(ctx context.Context, table *types.Table) ([]types.KeyCandidates, error)
}

// RerankConfig holds the rank fusion parameters shared by the re-ranking
// generators.
type RerankConfig struct {
	// Alpha weights the original rank against the semantic distance.
	Alpha float64
	// DefaultScore, when non-nil, substitutes the distance of candidates
	// that could not be embedded. When nil those candidates are appended
	// unscored.
	DefaultScore *float64
}

// EmbeddingGenerator wraps a base generator and re-ranks its candidates by
// semantic similarity: the cell's row context and each candidate's abstract
// are embedded with the same model, and rank fusion combines the cosine
// distance with the original rank. Candidates without an abstract stay
// unscorable.
type EmbeddingGenerator struct {
	base     Base
	kg       kg.Client
	embedder embedder.Client
	config   RerankConfig
}

// NewEmbeddingGenerator builds the re-ranking wrapper.
func NewEmbeddingGenerator(base Base, kgClient kg.Client, embedderClient embedder.Client, config RerankConfig) *EmbeddingGenerator {
	return &EmbeddingGenerator{
		base:     base,
		kg:       kgClient,
		embedder: embedderClient,
		config:   config,
	}
}

// ID identifies this generator in cache keys and artifacts.
func (g *EmbeddingGenerator) ID() string {
	return g.base.ID() + "+embedding"
}

// Candidates re-ranks the base generator's output.
func (g *EmbeddingGenerator) Candidates(ctx context.Context, table *types.Table) ([]types.KeyCandidates, error) {
	base, err := g.base.Candidates(ctx, table)
	if err != nil {
		return nil, err
	}

	abstracts, err := g.fetchAbstracts(ctx, base)
	if err != nil {
		return nil, err
	}

	contexts := keyContexts(table)

	results := make([]types.KeyCandidates, 0, len(base))
	for _, kc := range base {
		if len(kc.Candidates) == 0 {
			results = append(results, kc)
			continue
		}

		contextVec, err := g.embedContext(ctx, kc.Key, contexts)
		if err != nil {
			return nil, err
		}

		withEmbeddings := make([]types.CandidateEmbeddings, 0, len(kc.Candidates))
		for _, cand := range kc.Candidates {
			ce := types.CandidateEmbeddings{Candidate: cand, ContextEmbedding: contextVec}
			if abstract, ok := abstracts[cand.Entity.URI]; ok && abstract != "" {
				vec, err := g.embedder.EmbedSingle(ctx, abstract)
				if err != nil {
					return nil, fmt.Errorf("embedding abstract of %s: %w", cand.Entity.URI, err)
				}
				ce.AbstractEmbedding = vec
			}
			withEmbeddings = append(withEmbeddings, ce)
		}

		reranked, err := rerank(withEmbeddings, g.config)
		if err != nil {
			return nil, err
		}
		results = append(results, types.KeyCandidates{Key: kc.Key, Candidates: reranked})
	}
	return results, nil
}

// fetchAbstracts collects the short abstract of every distinct candidate.
func (g *EmbeddingGenerator) fetchAbstracts(ctx context.Context, base []types.KeyCandidates) (map[string]string, error) {
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
		return map[string]string{}, nil
	}
	abstracts, err := g.kg.ShortAbstracts(ctx, uris)
	if err != nil {
		return nil, fmt.Errorf("fetching abstracts: %w", err)
	}
	return abstracts, nil
}

// embedContext embeds the simplified row context of a key. Keys with no
// usable context fall back to the key itself.
func (g *EmbeddingGenerator) embedContext(ctx context.Context, key types.SearchKey, contexts map[types.SearchKey]string) ([]float32, error) {
	text := contexts[key]
	if text == "" {
		text = string(key)
	}
	vec, err := g.embedder.EmbedSingle(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embedding context of %q: %w", key, err)
	}
	return vec, nil
}

// keyContexts builds one context string per search key: the key followed by
// the simplified values of the other cells in its first occurrence's row.
func keyContexts(table *types.Table) map[types.SearchKey]string {
	contexts := make(map[types.SearchKey]string)
	opts := DefaultSimplifyOptions()
	for key, cells := range table.SearchKeyCells() {
		parts := []string{string(key)}
		for _, v := range table.RowContext(cells[0]) {
			if s := SimplifyString(v, opts); s != "" {
				parts = append(parts, s)
			}
		}
		contexts[key] = strings.Join(parts, " ")
	}
	return contexts
}

// rerank applies rank fusion and rebuilds the candidate list in fused
// order, reassigning ranks to final positions.
func rerank(candidates []types.CandidateEmbeddings, config RerankConfig) ([]types.Candidate, error) {
	scored, err := fusion.Rank(candidates, config.Alpha, config.DefaultScore)
	if err != nil {
		return nil, err
	}
	out := make([]types.Candidate, 0, len(scored))
	for i, sc := range scored {
		out = append(out, types.Candidate{Entity: sc.Candidate.Entity, Rank: i})
	}
	return out, nil
}
