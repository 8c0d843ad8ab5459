package kg

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
)

// esMaxResultWindow is the Elasticsearch default max result window; id
// batches never exceed it.
const esMaxResultWindow = 10000

// DBpediaConfig configures a DBpediaClient.
type DBpediaConfig struct {
	// ESHost is the Elasticsearch host holding the entity index.
	ESHost string
	// Index is the name of the entity index.
	Index string
	// SPARQLEndpoint is the DBpedia SPARQL endpoint URL.
	SPARQLEndpoint string
	// DefaultGraph is the default graph URI, may be empty.
	DefaultGraph string
}

// DBpediaClient resolves entity metadata from an Elasticsearch entity index,
// falling back to a SPARQL endpoint for data the index does not carry
// (labels of unindexed entities, long abstracts, relations).
type DBpediaClient struct {
	es     *elasticsearch.Client
	index  string
	sparql *SPARQLClient
}

var _ Client = (*DBpediaClient)(nil)

// NewDBpediaClient connects to the configured Elasticsearch host and SPARQL
// endpoint.
func NewDBpediaClient(cfg DBpediaConfig) (*DBpediaClient, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.ESHost},
	})
	if err != nil {
		return nil, fmt.Errorf("creating elasticsearch client: %w", err)
	}
	return &DBpediaClient{
		es:     es,
		index:  cfg.Index,
		sparql: NewSPARQLClient(cfg.SPARQLEndpoint, cfg.DefaultGraph),
	}, nil
}

// esDoc is the subset of the entity index document schema used here.
type esDoc struct {
	SurfaceForms []string `json:"surface_form_keyword"`
	Types        []string `json:"type"`
	Descriptions []string `json:"description"`
}

type esSearchResponse struct {
	Hits struct {
		Hits []struct {
			ID     string `json:"_id"`
			Source esDoc  `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// docsByIDs fetches index documents by id, batching to the max result
// window.
func (c *DBpediaClient) docsByIDs(ctx context.Context, ids []string) (map[string]esDoc, error) {
	docs := make(map[string]esDoc, len(ids))
	for start := 0; start < len(ids); start += esMaxResultWindow {
		end := start + esMaxResultWindow
		if end > len(ids) {
			end = len(ids)
		}
		batch := ids[start:end]

		query := map[string]any{
			"size": len(batch),
			"query": map[string]any{
				"ids": map[string]any{"values": batch},
			},
		}
		body, err := json.Marshal(query)
		if err != nil {
			return nil, fmt.Errorf("encoding ids query: %w", err)
		}

		res, err := c.es.Search(
			c.es.Search.WithContext(ctx),
			c.es.Search.WithIndex(c.index),
			c.es.Search.WithBody(strings.NewReader(string(body))),
		)
		if err != nil {
			return nil, fmt.Errorf("searching index %s: %w", c.index, err)
		}
		if res.IsError() {
			res.Body.Close()
			return nil, fmt.Errorf("index %s returned %s", c.index, res.Status())
		}

		var parsed esSearchResponse
		err = json.NewDecoder(res.Body).Decode(&parsed)
		res.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("decoding search response: %w", err)
		}

		for _, hit := range parsed.Hits.Hits {
			docs[hit.ID] = hit.Source
		}
	}
	return docs, nil
}

func (c *DBpediaClient) docByID(ctx context.Context, id string) (esDoc, bool, error) {
	docs, err := c.docsByIDs(ctx, []string{id})
	if err != nil {
		return esDoc{}, false, err
	}
	doc, ok := docs[id]
	return doc, ok, nil
}

// Labels returns the surface forms stored in the index, falling back to
// rdfs:label lookups on the SPARQL endpoint for unindexed entities.
func (c *DBpediaClient) Labels(ctx context.Context, uri string) ([]string, error) {
	doc, ok, err := c.docByID(ctx, uri)
	if err != nil {
		return nil, err
	}
	if ok && len(doc.SurfaceForms) > 0 {
		return doc.SurfaceForms, nil
	}

	query := fmt.Sprintf(`
		SELECT DISTINCT ?label
		WHERE {
		  <%s> rdfs:label ?label .
		  FILTER (langMatches(lang(?label), "EN") || langMatches(lang(?label), ""))
		}`, uri)
	rows, err := c.sparql.Select(ctx, query)
	if err != nil {
		return nil, err
	}
	labels := make([]string, 0, len(rows))
	for _, row := range rows {
		labels = append(labels, row["label"])
	}
	return labels, nil
}

// Types returns the entity's types from the index, blacklisted types
// removed.
func (c *DBpediaClient) Types(ctx context.Context, uri string) ([]string, error) {
	doc, _, err := c.docByID(ctx, uri)
	if err != nil {
		return nil, err
	}
	types := make([]string, 0, len(doc.Types))
	for _, t := range doc.Types {
		if !blacklistedType(t) {
			types = append(types, t)
		}
	}
	return types, nil
}

// Descriptions returns the entity's descriptions from the index.
func (c *DBpediaClient) Descriptions(ctx context.Context, uri string) ([]string, error) {
	doc, _, err := c.docByID(ctx, uri)
	if err != nil {
		return nil, err
	}
	return doc.Descriptions, nil
}

// LongAbstracts fetches dbo:abstract values from the SPARQL endpoint. When
// an entity has multiple English abstracts the last row wins.
func (c *DBpediaClient) LongAbstracts(ctx context.Context, uris []string) (map[string]string, error) {
	abstracts := make(map[string]string, len(uris))
	for _, batch := range batchURIs(uris) {
		query := fmt.Sprintf(`
			SELECT DISTINCT ?uri ?abstract {
			  %s
			  ?uri <http://dbpedia.org/ontology/abstract> ?abstract .
			  FILTER langMatches(lang(?abstract), "EN")
			}`, valuesClause("uri", batch))
		rows, err := c.sparql.Select(ctx, query)
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			abstracts[row["uri"]] = row["abstract"]
		}
	}
	return abstracts, nil
}

// ShortAbstracts returns the first description of each indexed entity.
// Entities without a description map to the empty string.
func (c *DBpediaClient) ShortAbstracts(ctx context.Context, uris []string) (map[string]string, error) {
	docs, err := c.docsByIDs(ctx, uris)
	if err != nil {
		return nil, err
	}
	abstracts := make(map[string]string, len(docs))
	for id, doc := range docs {
		if len(doc.Descriptions) > 0 {
			abstracts[id] = doc.Descriptions[0]
		} else {
			abstracts[id] = ""
		}
	}
	return abstracts, nil
}

// Relations queries the SPARQL endpoint for predicates connecting each
// subject to its value, matching either a direct literal or the label of an
// intermediate node. Values are compared lowercased.
func (c *DBpediaClient) Relations(ctx context.Context, pairs []SubjectValuePair) (map[SubjectValuePair][]string, error) {
	relations := make(map[SubjectValuePair][]string)
	for start := 0; start < len(pairs); start += sparqlBatchSize {
		end := start + sparqlBatchSize
		if end > len(pairs) {
			end = len(pairs)
		}

		var values strings.Builder
		for _, p := range pairs[start:end] {
			fmt.Fprintf(&values, "(<%s> %q) ", p.Subject, p.Value)
		}
		query := fmt.Sprintf(`
			SELECT DISTINCT ?entity ?value ?rel
			WHERE {
			  VALUES (?entity ?value) { %s }
			  { ?entity ?rel ?aValue . }
			  UNION
			  { ?entity ?rel [rdfs:label ?aValue] . }
			  FILTER(lcase(str(?aValue))=?value)
			}`, values.String())

		rows, err := c.sparql.Select(ctx, query)
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			if blacklistedProperty(row["rel"]) {
				continue
			}
			key := SubjectValuePair{Subject: row["entity"], Value: row["value"]}
			relations[key] = append(relations[key], row["rel"])
		}
	}
	return relations, nil
}
