package kg

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// sparqlBatchSize caps how many VALUES rows a single query carries; DBpedia
// public endpoints reject very large query strings.
const sparqlBatchSize = 25

// SPARQLClient issues SELECT queries against a SPARQL endpoint and decodes
// the standard application/sparql-results+json response format.
type SPARQLClient struct {
	endpoint     string
	defaultGraph string
	httpClient   *http.Client
}

// NewSPARQLClient builds a client for the given endpoint. defaultGraph may
// be empty.
func NewSPARQLClient(endpoint, defaultGraph string) *SPARQLClient {
	return &SPARQLClient{
		endpoint:     endpoint,
		defaultGraph: defaultGraph,
		httpClient:   &http.Client{Timeout: 60 * time.Second},
	}
}

type sparqlResponse struct {
	Results struct {
		Bindings []map[string]struct {
			Type  string `json:"type"`
			Value string `json:"value"`
		} `json:"bindings"`
	} `json:"results"`
}

// Select runs a SELECT query and returns one map per result row, keyed by
// variable name.
func (c *SPARQLClient) Select(ctx context.Context, query string) ([]map[string]string, error) {
	form := url.Values{}
	form.Set("query", query)
	form.Set("format", "application/sparql-results+json")
	if c.defaultGraph != "" {
		form.Set("default-graph-uri", c.defaultGraph)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("building sparql request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/sparql-results+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing sparql query: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("sparql endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed sparqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding sparql response: %w", err)
	}

	rows := make([]map[string]string, 0, len(parsed.Results.Bindings))
	for _, binding := range parsed.Results.Bindings {
		row := make(map[string]string, len(binding))
		for name, cell := range binding {
			row[name] = cell.Value
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// batchURIs splits uris into chunks no larger than sparqlBatchSize.
func batchURIs(uris []string) [][]string {
	var batches [][]string
	for len(uris) > 0 {
		n := sparqlBatchSize
		if len(uris) < n {
			n = len(uris)
		}
		batches = append(batches, uris[:n])
		uris = uris[n:]
	}
	return batches
}

// valuesClause renders a VALUES clause binding variable v to the given URIs.
func valuesClause(v string, uris []string) string {
	var sb strings.Builder
	sb.WriteString("VALUES ?" + v + " { ")
	for _, u := range uris {
		sb.WriteString("<" + u + "> ")
	}
	sb.WriteString("}")
	return sb.String()
}
