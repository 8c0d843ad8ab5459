package kg

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVectorServiceVectors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/vectors", r.URL.Path)

		var req vectorRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"http://a", "http://b"}, req.URIs)

		json.NewEncoder(w).Encode(vectorResponse{
			Vectors: map[string][]float32{
				"http://a": {0.1, 0.2, 0.3},
			},
		})
	}))
	defer srv.Close()

	svc := NewVectorService(srv.URL + "/")
	vectors, err := svc.Vectors(context.Background(), []string{"http://a", "http://b"})
	require.NoError(t, err)

	require.Len(t, vectors, 2)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vectors["http://a"])

	// unknown entities are reported with a nil vector
	missing, ok := vectors["http://b"]
	assert.True(t, ok)
	assert.Nil(t, missing)
}

func TestVectorServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "index not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	svc := NewVectorService(srv.URL)
	_, err := svc.Vectors(context.Background(), []string{"http://a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}
