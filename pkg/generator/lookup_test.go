package generator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupServer(t *testing.T, hits map[string][]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")

		var req struct {
			Query struct {
				Match struct {
					SurfaceFormPrefix struct {
						Query string `json:"query"`
					} `json:"surface_form_prefix"`
				} `json:"match"`
			} `json:"query"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			// client bootstrap pings without a body
			w.Write([]byte(`{}`))
			return
		}

		type hit struct {
			ID string `json:"_id"`
		}
		var matched []hit
		for _, id := range hits[req.Query.Match.SurfaceFormPrefix.Query] {
			matched = append(matched, hit{ID: id})
		}
		json.NewEncoder(w).Encode(map[string]any{
			"hits": map[string]any{"hits": matched},
		})
	}))
}

func TestLookupGeneratorCandidates(t *testing.T) {
	srv := lookupServer(t, map[string][]string{
		"paris":  {"http://dbpedia.org/resource/Paris", "http://dbpedia.org/resource/Paris,_Texas"},
		"france": {"http://dbpedia.org/resource/France"},
	})
	defer srv.Close()

	g, err := NewLookupGenerator(LookupConfig{Host: srv.URL, Index: "dbpedia", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, "es-lookup", g.ID())

	results, err := g.Candidates(context.Background(), testTable(t))
	require.NoError(t, err)

	// one entry per distinct key, keys sorted
	require.Len(t, results, 2)
	assert.Equal(t, "france", string(results[0].Key))
	assert.Equal(t, "paris", string(results[1].Key))

	paris := results[1].Candidates
	require.Len(t, paris, 2)
	assert.Equal(t, "http://dbpedia.org/resource/Paris", paris[0].Entity.URI)
	assert.Equal(t, 0, paris[0].Rank)
	assert.Equal(t, 1, paris[1].Rank)
}

func TestLookupGeneratorEmptyResult(t *testing.T) {
	srv := lookupServer(t, nil)
	defer srv.Close()

	g, err := NewLookupGenerator(LookupConfig{Host: srv.URL, Index: "dbpedia"})
	require.NoError(t, err)

	results, err := g.Candidates(context.Background(), testTable(t))
	require.NoError(t, err)
	for _, kc := range results {
		assert.Empty(t, kc.Candidates)
	}
}
