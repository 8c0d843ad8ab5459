package kg

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Neo4jConfig configures a Neo4jClient.
type Neo4jConfig struct {
	URI      string
	Username string
	Password string
	Database string
}

// Neo4jClient resolves entity metadata from a property-graph mirror of the
// knowledge graph. Entities are nodes keyed by uri, carrying label, type,
// description and abstract list properties; relations are edges whose type
// is stored in the uri property.
type Neo4jClient struct {
	client   neo4j.DriverWithContext
	database string
}

var _ Client = (*Neo4jClient)(nil)

// NewNeo4jClient creates a client for the given Neo4j instance.
func NewNeo4jClient(cfg Neo4jConfig) (*Neo4jClient, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.Username, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	database := cfg.Database
	if database == "" {
		database = "neo4j"
	}

	return &Neo4jClient{
		client:   driver,
		database: database,
	}, nil
}

// Close releases the underlying driver.
func (c *Neo4jClient) Close(ctx context.Context) error {
	return c.client.Close(ctx)
}

// listProperty reads a string-list property of the entity node.
func (c *Neo4jClient) listProperty(ctx context.Context, uri, property string) ([]string, error) {
	session := c.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: c.database})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := fmt.Sprintf(`
			MATCH (e:Entity {uri: $uri})
			RETURN e.%s AS values
		`, property)
		res, err := tx.Run(ctx, query, map[string]any{"uri": uri})
		if err != nil {
			return nil, err
		}

		record, err := res.Single(ctx)
		if err != nil {
			return nil, nil
		}

		raw, found := record.Get("values")
		if !found || raw == nil {
			return nil, nil
		}
		items, ok := raw.([]any)
		if !ok {
			return nil, fmt.Errorf("unexpected type for %s: got %T, expected []any", property, raw)
		}
		values := make([]string, 0, len(items))
		for _, item := range items {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("unexpected element type for %s: got %T, expected string", property, item)
			}
			values = append(values, s)
		}
		return values, nil
	})
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, nil
	}
	return result.([]string), nil
}

// firstProperty collects the head of a string-list property for each URI.
func (c *Neo4jClient) firstProperty(ctx context.Context, uris []string, property string) (map[string]string, error) {
	session := c.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: c.database})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := fmt.Sprintf(`
			MATCH (e:Entity)
			WHERE e.uri IN $uris AND e.%s IS NOT NULL AND size(e.%s) > 0
			RETURN e.uri AS uri, e.%s[0] AS value
		`, property, property, property)
		res, err := tx.Run(ctx, query, map[string]any{"uris": uris})
		if err != nil {
			return nil, err
		}

		values := make(map[string]string)
		records, err := res.Collect(ctx)
		if err != nil {
			return nil, err
		}
		for _, record := range records {
			uri, _ := record.Get("uri")
			value, _ := record.Get("value")
			values[uri.(string)] = value.(string)
		}
		return values, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(map[string]string), nil
}

// Labels returns the labels of an entity node.
func (c *Neo4jClient) Labels(ctx context.Context, uri string) ([]string, error) {
	return c.listProperty(ctx, uri, "labels")
}

// Types returns the types of an entity node, blacklisted types removed.
func (c *Neo4jClient) Types(ctx context.Context, uri string) ([]string, error) {
	all, err := c.listProperty(ctx, uri, "types")
	if err != nil {
		return nil, err
	}
	types := make([]string, 0, len(all))
	for _, t := range all {
		if !blacklistedType(t) {
			types = append(types, t)
		}
	}
	return types, nil
}

// Descriptions returns the descriptions of an entity node.
func (c *Neo4jClient) Descriptions(ctx context.Context, uri string) ([]string, error) {
	return c.listProperty(ctx, uri, "descriptions")
}

// LongAbstracts returns the first long abstract of each entity that has one.
func (c *Neo4jClient) LongAbstracts(ctx context.Context, uris []string) (map[string]string, error) {
	return c.firstProperty(ctx, uris, "abstracts")
}

// ShortAbstracts returns the first description of each entity that has one.
func (c *Neo4jClient) ShortAbstracts(ctx context.Context, uris []string) (map[string]string, error) {
	return c.firstProperty(ctx, uris, "descriptions")
}

// Relations matches edges whose target carries the value either directly or
// as a label, comparing lowercased.
func (c *Neo4jClient) Relations(ctx context.Context, pairs []SubjectValuePair) (map[SubjectValuePair][]string, error) {
	session := c.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: c.database})
	defer session.Close(ctx)

	relations := make(map[SubjectValuePair][]string)
	for _, pair := range pairs {
		result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			query := `
				MATCH (s:Entity {uri: $subject})-[r]->(o)
				WHERE toLower(o.value) = $value
				   OR any(l IN o.labels WHERE toLower(l) = $value)
				RETURN DISTINCT r.uri AS rel
			`
			res, err := tx.Run(ctx, query, map[string]any{
				"subject": pair.Subject,
				"value":   pair.Value,
			})
			if err != nil {
				return nil, err
			}

			var rels []string
			records, err := res.Collect(ctx)
			if err != nil {
				return nil, err
			}
			for _, record := range records {
				raw, found := record.Get("rel")
				if !found || raw == nil {
					continue
				}
				rel := raw.(string)
				if !blacklistedProperty(rel) {
					rels = append(rels, rel)
				}
			}
			return rels, nil
		})
		if err != nil {
			return nil, err
		}
		if rels := result.([]string); len(rels) > 0 {
			relations[pair] = rels
		}
	}
	return relations, nil
}
