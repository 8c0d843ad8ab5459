// Package generator implements candidate generators: components that map
// the search keys of a table to ranked lists of knowledge-graph entities.
package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/semtab/linker/pkg/types"
)

const defaultCandidateLimit = 20

// LookupConfig configures a LookupGenerator.
type LookupConfig struct {
	// Host is the Elasticsearch host holding the entity index.
	Host string
	// Index is the entity index name.
	Index string
	// Limit caps how many candidates a single key may produce.
	Limit int
}

// LookupGenerator proposes candidates by full-text search over the surface
// forms stored in an Elasticsearch entity index. Hits come back best-first;
// the hit position is the candidate rank.
type LookupGenerator struct {
	es    *elasticsearch.Client
	index string
	limit int
}

// NewLookupGenerator connects to the configured entity index.
func NewLookupGenerator(cfg LookupConfig) (*LookupGenerator, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.Host},
	})
	if err != nil {
		return nil, fmt.Errorf("creating elasticsearch client: %w", err)
	}
	limit := cfg.Limit
	if limit <= 0 {
		limit = defaultCandidateLimit
	}
	return &LookupGenerator{es: es, index: cfg.Index, limit: limit}, nil
}

// ID identifies this generator in cache keys and artifacts.
func (g *LookupGenerator) ID() string {
	return "es-lookup"
}

// Candidates runs one search per distinct search key of the table.
func (g *LookupGenerator) Candidates(ctx context.Context, table *types.Table) ([]types.KeyCandidates, error) {
	keys := table.SearchKeys()
	results := make([]types.KeyCandidates, 0, len(keys))
	for _, key := range keys {
		candidates, err := g.search(ctx, string(key))
		if err != nil {
			return nil, fmt.Errorf("looking up %q: %w", key, err)
		}
		results = append(results, types.KeyCandidates{Key: key, Candidates: candidates})
	}
	return results, nil
}

type lookupResponse struct {
	Hits struct {
		Hits []struct {
			ID string `json:"_id"`
		} `json:"hits"`
	} `json:"hits"`
}

func (g *LookupGenerator) search(ctx context.Context, label string) ([]types.Candidate, error) {
	query := map[string]any{
		"size": g.limit,
		"query": map[string]any{
			"match": map[string]any{
				"surface_form_prefix": map[string]any{
					"query":     label,
					"fuzziness": "AUTO",
				},
			},
		},
	}
	body, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("encoding query: %w", err)
	}

	res, err := g.es.Search(
		g.es.Search.WithContext(ctx),
		g.es.Search.WithIndex(g.index),
		g.es.Search.WithBody(strings.NewReader(string(body))),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("index %s returned %s", g.index, res.Status())
	}

	var parsed lookupResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding search response: %w", err)
	}

	candidates := make([]types.Candidate, 0, len(parsed.Hits.Hits))
	for i, hit := range parsed.Hits.Hits {
		candidates = append(candidates, types.Candidate{
			Entity: types.Entity{URI: hit.ID},
			Rank:   i,
		})
	}
	return candidates, nil
}
