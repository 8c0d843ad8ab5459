// Package kg abstracts lookups against a knowledge graph: entity labels,
// types, descriptions, abstracts, and the relations holding between
// subject-value pairs. Implementations back onto an Elasticsearch document
// index combined with a SPARQL endpoint (DBpediaClient) or a property-graph
// mirror (Neo4jClient); BreakerClient adds circuit breaking around any of
// them.
package kg

import "context"

// PropertiesBlacklist lists predicates suppressed from relation results.
var PropertiesBlacklist = []string{
	"http://dbpedia.org/ontology/abstract",
	"http://dbpedia.org/ontology/wikiPageWikiLink",
	"http://www.w3.org/2000/01/rdf-schema#comment",
	"http://purl.org/dc/terms/subject",
}

// TypesBlacklist lists type URIs suppressed from type results.
var TypesBlacklist = []string{
	"http://www.w3.org/2002/07/owl#Thing",
}

// SubjectValuePair is a subject URI paired with a literal value, used for
// relation lookups.
type SubjectValuePair struct {
	Subject string
	Value   string
}

// Client is the knowledge-graph abstraction consumed by generators.
type Client interface {
	// Labels returns the labels of an entity.
	Labels(ctx context.Context, uri string) ([]string, error)

	// Types returns the types of an entity, blacklisted types removed.
	Types(ctx context.Context, uri string) ([]string, error)

	// Descriptions returns the short descriptions of an entity.
	Descriptions(ctx context.Context, uri string) ([]string, error)

	// LongAbstracts returns the long abstract of each entity that has one.
	LongAbstracts(ctx context.Context, uris []string) (map[string]string, error)

	// ShortAbstracts returns the first short abstract of each entity that
	// has one.
	ShortAbstracts(ctx context.Context, uris []string) (map[string]string, error)

	// Relations returns, for each subject-value pair, the predicates
	// connecting the subject to the value, blacklisted predicates removed.
	Relations(ctx context.Context, pairs []SubjectValuePair) (map[SubjectValuePair][]string, error)
}

func blacklistedProperty(uri string) bool {
	for _, b := range PropertiesBlacklist {
		if uri == b {
			return true
		}
	}
	return false
}

func blacklistedType(uri string) bool {
	for _, b := range TypesBlacklist {
		if uri == b {
			return true
		}
	}
	return false
}
