// Package embedder provides text embedding clients for vector representations.
//
// Statement embeddings gate the temporal invalidation candidate search, so
// every ingested statement passes through a Client. Implementations exist
// for OpenAI-compatible APIs and for local inference via go-embedeverything.
package embedder

import "context"

// Client generates vector embeddings for text.
type Client interface {
	// Embed generates embeddings for the given texts, one vector per input
	// in order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedSingle generates an embedding for a single text.
	EmbedSingle(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the number of dimensions in the embeddings.
	Dimensions() int

	// Close cleans up any resources.
	Close() error
}

// Config holds common embedding client configuration.
type Config struct {
	Model      string `json:"model"`
	Dimensions int    `json:"dimensions"`
	BatchSize  int    `json:"batch_size"`
}
