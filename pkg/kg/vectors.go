package kg

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// VectorService fetches precomputed knowledge-graph embeddings (RDF2Vec or
// similar) from a lookup service. Entities without a stored vector map to a
// nil slice.
type VectorService struct {
	baseURL    string
	httpClient *http.Client
}

// NewVectorService creates a client for the lookup service at baseURL.
func NewVectorService(baseURL string) *VectorService {
	return &VectorService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

type vectorRequest struct {
	URIs []string `json:"uris"`
}

type vectorResponse struct {
	Vectors map[string][]float32 `json:"vectors"`
}

// Vectors returns the embedding of each requested URI. URIs unknown to the
// service are present in the result with a nil vector, so callers can tell
// missing embeddings apart from missing URIs.
func (s *VectorService) Vectors(ctx context.Context, uris []string) (map[string][]float32, error) {
	payload, err := json.Marshal(vectorRequest{URIs: uris})
	if err != nil {
		return nil, fmt.Errorf("encoding vector request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/vectors", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building vector request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching vectors: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("vector service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed vectorResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding vector response: %w", err)
	}

	vectors := make(map[string][]float32, len(uris))
	for _, uri := range uris {
		vectors[uri] = parsed.Vectors[uri]
	}
	return vectors, nil
}
