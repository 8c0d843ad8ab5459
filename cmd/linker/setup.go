package linker

import (
	"fmt"
	"log/slog"

	"github.com/semtab/linker"
	"github.com/semtab/linker/pkg/config"
	"github.com/semtab/linker/pkg/embedder"
	"github.com/semtab/linker/pkg/generator"
	"github.com/semtab/linker/pkg/kg"
	"github.com/semtab/linker/pkg/logger"
	"github.com/semtab/linker/pkg/store"
)

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.Log.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	return logger.NewDefaultLogger(level)
}

func newStore(cfg *config.Config) (store.Store, error) {
	switch cfg.Cache.Backend {
	case "", "fs":
		return store.NewFSStore(cfg.Cache.Dir)
	case "badger":
		return store.NewBadgerStore(cfg.Cache.Dir)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}

// newGenerator assembles the generator stack named by id.
func newGenerator(cfg *config.Config, log *slog.Logger, id string) (linker.Generator, error) {
	base, err := generator.NewLookupGenerator(generator.LookupConfig{
		Host:  cfg.Elastic.Host,
		Index: cfg.Elastic.Index,
		Limit: cfg.Annotation.CandidateLimit,
	})
	if err != nil {
		return nil, err
	}

	rerank := generator.RerankConfig{
		Alpha:        cfg.Annotation.Alpha,
		DefaultScore: cfg.Annotation.DefaultScorePtr(),
	}

	switch id {
	case "", "es-lookup":
		return base, nil

	case "es-lookup+embedding":
		kgClient, err := newKGClient(cfg, log)
		if err != nil {
			return nil, err
		}
		emb := embedder.NewOpenAIEmbedder(cfg.Embedding.APIKey, embedder.Config{
			Model:   cfg.Embedding.Model,
			BaseURL: cfg.Embedding.BaseURL,
		})
		return generator.NewEmbeddingGenerator(base, kgClient, emb, rerank), nil

	case "es-lookup+vectors":
		url := cfg.Vectors.RDF2VecURL
		if url == "" {
			url = cfg.Vectors.Word2VecURL
		}
		if url == "" {
			return nil, fmt.Errorf("generator %q needs a vector service url", id)
		}
		return generator.NewVectorGenerator(base, kg.NewVectorService(url), rerank), nil

	default:
		return nil, fmt.Errorf("unknown generator %q", id)
	}
}

// newKGClient builds the knowledge-graph client, preferring the Neo4j
// mirror when configured and wrapping with a circuit breaker when enabled.
func newKGClient(cfg *config.Config, log *slog.Logger) (kg.Client, error) {
	var client kg.Client
	var err error
	if cfg.Neo4j.URI != "" {
		client, err = kg.NewNeo4jClient(kg.Neo4jConfig{
			URI:      cfg.Neo4j.URI,
			Username: cfg.Neo4j.Username,
			Password: cfg.Neo4j.Password,
			Database: cfg.Neo4j.Database,
		})
	} else {
		client, err = kg.NewDBpediaClient(kg.DBpediaConfig{
			ESHost:         cfg.Elastic.Host,
			Index:          cfg.Elastic.Index,
			SPARQLEndpoint: cfg.SPARQL.Endpoint,
			DefaultGraph:   cfg.SPARQL.DefaultGraph,
		})
	}
	if err != nil {
		return nil, err
	}

	if cfg.CircuitBreaker.Enabled {
		client = kg.NewBreakerClient(client, cfg.CircuitBreaker, log, "kg")
	}
	return client, nil
}

func newAnnotator(cfg *config.Config, log *slog.Logger, generatorID string, workers int) (*linker.Annotator, store.Store, error) {
	st, err := newStore(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("opening annotation store: %w", err)
	}

	gen, err := newGenerator(cfg, log, generatorID)
	if err != nil {
		return nil, nil, err
	}

	if workers <= 0 {
		workers = cfg.Annotation.MaxWorkers
	}
	annotator, err := linker.NewAnnotator(gen, st, workers, log)
	if err != nil {
		return nil, nil, err
	}
	return annotator, st, nil
}
