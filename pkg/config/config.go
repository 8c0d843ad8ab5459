// Package config loads application configuration from file and environment
// variables via viper.
package config

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	// Log configuration
	Log LogConfig `mapstructure:"log"`

	// Cache configuration (annotation store)
	Cache CacheConfig `mapstructure:"cache"`

	// Annotation configuration
	Annotation AnnotationConfig `mapstructure:"annotation"`

	// Elastic configuration (candidate lookup index)
	Elastic ElasticConfig `mapstructure:"elastic"`

	// SPARQL configuration (knowledge-graph endpoint)
	SPARQL SPARQLConfig `mapstructure:"sparql"`

	// Neo4j configuration (optional property-graph mirror)
	Neo4j Neo4jConfig `mapstructure:"neo4j"`

	// Embedding configuration
	Embedding EmbeddingConfig `mapstructure:"embedding"`

	// Vectors configuration (pre-trained KG embedding services)
	Vectors VectorsConfig `mapstructure:"vectors"`

	// Server configuration
	Server ServerConfig `mapstructure:"server"`

	// Export configuration
	Export ExportConfig `mapstructure:"export"`

	// CircuitBreaker configuration
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CacheConfig holds annotation store configuration
type CacheConfig struct {
	// Backend is "fs" or "badger"
	Backend string `mapstructure:"backend"`
	Dir     string `mapstructure:"dir"`
}

// AnnotationConfig holds annotation run configuration
type AnnotationConfig struct {
	MaxWorkers int     `mapstructure:"max_workers"`
	Alpha      float64 `mapstructure:"alpha"`
	// DefaultScore assigned to candidates with missing embeddings during
	// rank fusion. Negative means unset.
	DefaultScore float64 `mapstructure:"default_score"`
	// CandidateLimit caps the number of candidates fetched per search key
	CandidateLimit int `mapstructure:"candidate_limit"`
}

// ElasticConfig holds Elasticsearch configuration
type ElasticConfig struct {
	Host  string `mapstructure:"host"`
	Index string `mapstructure:"index"`
}

// SPARQLConfig holds SPARQL endpoint configuration
type SPARQLConfig struct {
	Endpoint     string `mapstructure:"endpoint"`
	DefaultGraph string `mapstructure:"default_graph"`
}

// Neo4jConfig holds Neo4j configuration
type Neo4jConfig struct {
	URI      string `mapstructure:"uri"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
}

// EmbeddingConfig holds embedding inference configuration
type EmbeddingConfig struct {
	Provider string `mapstructure:"provider"` // openai, etc.
	Model    string `mapstructure:"model"`
	APIKey   string `mapstructure:"api_key"`
	BaseURL  string `mapstructure:"base_url"`
}

// VectorsConfig holds the endpoints of pre-trained KG embedding services
type VectorsConfig struct {
	RDF2VecURL  string `mapstructure:"rdf2vec_url"`
	Word2VecURL string `mapstructure:"word2vec_url"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // gin mode: debug, release, test
}

// ExportConfig holds annotation export configuration
type ExportConfig struct {
	Dir string `mapstructure:"dir"`
}

// CircuitBreakerConfig holds configuration for circuit breaking
type CircuitBreakerConfig struct {
	Enabled          bool    `mapstructure:"enabled"`
	MaxRequests      uint32  `mapstructure:"max_requests"`
	Interval         int     `mapstructure:"interval"` // in seconds
	Timeout          int     `mapstructure:"timeout"`  // in seconds
	ReadyToTripRatio float64 `mapstructure:"ready_to_trip_ratio"`
}

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	// Set defaults
	setDefaults()

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Override with environment variables if present
	overrideWithEnv(config)

	return config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Log defaults
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")

	// Cache defaults
	viper.SetDefault("cache.backend", "fs")
	viper.SetDefault("cache.dir", "./annotations")

	// Annotation defaults
	viper.SetDefault("annotation.max_workers", runtime.NumCPU())
	viper.SetDefault("annotation.alpha", 0.5)
	viper.SetDefault("annotation.default_score", -1.0)
	viper.SetDefault("annotation.candidate_limit", 50)

	// Elastic defaults
	viper.SetDefault("elastic.host", "http://localhost:9200")
	viper.SetDefault("elastic.index", "dbpedia")

	// SPARQL defaults
	viper.SetDefault("sparql.endpoint", "http://dbpedia.org/sparql")
	viper.SetDefault("sparql.default_graph", "http://dbpedia.org")

	// Neo4j defaults
	viper.SetDefault("neo4j.uri", "")
	viper.SetDefault("neo4j.database", "neo4j")

	// Embedding defaults
	viper.SetDefault("embedding.provider", "openai")
	viper.SetDefault("embedding.model", "text-embedding-3-small")

	// Vectors defaults (original RDF2Vec / Word2Vec service ports)
	viper.SetDefault("vectors.rdf2vec_url", "http://localhost:5999/r2v/uniform")
	viper.SetDefault("vectors.word2vec_url", "http://localhost:5998/w2v/dbp-300")

	// Server defaults
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.mode", "debug")

	// Export defaults
	viper.SetDefault("export.dir", "./exports")

	// Circuit breaker defaults
	viper.SetDefault("circuit_breaker.enabled", false)
	viper.SetDefault("circuit_breaker.max_requests", 3)
	viper.SetDefault("circuit_breaker.interval", 60)
	viper.SetDefault("circuit_breaker.timeout", 30)
	viper.SetDefault("circuit_breaker.ready_to_trip_ratio", 0.6)
}

// overrideWithEnv applies environment overrides that do not follow viper's
// key naming, mostly credentials.
func overrideWithEnv(config *Config) {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" && config.Embedding.APIKey == "" {
		config.Embedding.APIKey = v
	}
	if v := os.Getenv("LINKER_ELASTIC_HOST"); v != "" {
		config.Elastic.Host = v
	}
	if v := os.Getenv("LINKER_SPARQL_ENDPOINT"); v != "" {
		config.SPARQL.Endpoint = v
	}
	if v := os.Getenv("NEO4J_PASSWORD"); v != "" && config.Neo4j.Password == "" {
		config.Neo4j.Password = v
	}
}

// DefaultScorePtr returns the configured fusion default score, or nil when
// the configuration leaves it unset (negative).
func (c *AnnotationConfig) DefaultScorePtr() *float64 {
	if c.DefaultScore < 0 {
		return nil
	}
	v := c.DefaultScore
	return &v
}
