// Package embedder provides text embedding clients used to embed cell
// contexts and entity abstracts into a shared vector space.
package embedder

import "context"

// Client is the interface all embedding providers implement.
type Client interface {
	// Embed generates embeddings for the given texts, one vector per text,
	// in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedSingle generates an embedding for a single text.
	EmbedSingle(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the number of dimensions in the embeddings.
	Dimensions() int

	// Close cleans up any resources.
	Close() error
}

// Config holds common embedding configuration.
type Config struct {
	// Model is the embedding model name.
	Model string
	// BatchSize caps how many texts a single provider request carries.
	BatchSize int
	// Dimensions is the dimensionality of the produced vectors.
	Dimensions int
	// BaseURL overrides the provider endpoint, for self-hosted gateways.
	BaseURL string
}
