package embedder_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semtab/linker/pkg/embedder"
)

func TestNewOpenAIEmbedder(t *testing.T) {
	tests := []struct {
		name   string
		apiKey string
		config embedder.Config
	}{
		{
			name:   "valid API key",
			apiKey: "test-api-key",
			config: embedder.Config{Model: "text-embedding-3-small"},
		},
		{
			name:   "custom base URL",
			apiKey: "test-api-key",
			config: embedder.Config{Model: "text-embedding-3-small", BaseURL: "https://api.example.com"},
		},
		{
			name:   "empty config uses defaults",
			apiKey: "test-api-key",
			config: embedder.Config{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := embedder.NewOpenAIEmbedder(tt.apiKey, tt.config)
			assert.NotNil(t, client)
			assert.Greater(t, client.Dimensions(), 0)
		})
	}
}

func TestEmbedderInterface(t *testing.T) {
	var _ embedder.Client = (*embedder.OpenAIEmbedder)(nil)
}

func TestOpenAIEmbedderEmbedBatches(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++

		var req struct {
			Input []string `json:"input"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.LessOrEqual(t, len(req.Input), 2)

		type item struct {
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		}
		data := make([]item, len(req.Input))
		for i := range req.Input {
			data[i] = item{Embedding: []float32{1, 0, 0}, Index: i}
		}
		json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   data,
			"model":  "text-embedding-3-small",
		})
	}))
	defer srv.Close()

	client := embedder.NewOpenAIEmbedder("test-key", embedder.Config{
		BatchSize:  2,
		Dimensions: 3,
		BaseURL:    srv.URL,
	})

	embeddings, err := client.Embed(context.Background(), []string{"a", "b", "c", "d", "e"})
	require.NoError(t, err)
	require.Len(t, embeddings, 5)
	assert.Equal(t, []float32{1, 0, 0}, embeddings[0])
	assert.Equal(t, 3, requests)
}

func TestOpenAIEmbedderEmbedSingle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data": []map[string]any{
				{"embedding": []float32{0.5, 0.5}, "index": 0},
			},
			"model": "text-embedding-3-small",
		})
	}))
	defer srv.Close()

	client := embedder.NewOpenAIEmbedder("test-key", embedder.Config{
		Dimensions: 2,
		BaseURL:    srv.URL,
	})

	vec, err := client.EmbedSingle(context.Background(), "Paris")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.5}, vec)
}
