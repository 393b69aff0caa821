package chronograph

import (
	"fmt"
	"log/slog"

	"github.com/soundprediction/chronograph/pkg/embedder"
	"github.com/soundprediction/chronograph/pkg/extractor"
	"github.com/soundprediction/chronograph/pkg/resolver"
	"github.com/soundprediction/chronograph/pkg/store"
	"github.com/soundprediction/chronograph/pkg/temporal"
)

// Config holds configuration for the chronograph client.
type Config struct {
	// Resolver configures entity resolution.
	Resolver resolver.Config
	// Invalidation configures the temporal invalidation engine.
	Invalidation temporal.Config
	// ChunkWorkers bounds the number of chunks extracted in parallel. Zero
	// selects the default worker limit.
	ChunkWorkers int
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *Config {
	return &Config{
		Resolver:     resolver.DefaultConfig(),
		Invalidation: temporal.DefaultConfig(),
	}
}

// Validate rejects invalid configuration.
func (c *Config) Validate() error {
	if err := c.Resolver.Validate(); err != nil {
		return err
	}
	if err := c.Invalidation.Validate(); err != nil {
		return err
	}
	if c.ChunkWorkers < 0 {
		return fmt.Errorf("chunk workers must not be negative, got %d", c.ChunkWorkers)
	}
	return nil
}

// Client runs the ingestion pipeline: extraction, entity resolution,
// temporal invalidation, and graph assembly.
type Client struct {
	canonicals store.CanonicalStore
	records    store.RecordStore
	extractor  extractor.Extractor
	embedder   embedder.Client
	resolver   *resolver.Resolver
	engine     *temporal.Engine
	config     *Config
	logger     *slog.Logger
}

// NewClient creates a new chronograph client. The record store is optional;
// when nil, events and triplets are returned but not persisted. The oracle
// judges candidate invalidation pairs during the temporal pass.
func NewClient(canonicals store.CanonicalStore, records store.RecordStore, ext extractor.Extractor, emb embedder.Client, oracle temporal.Oracle, config *Config, logger *slog.Logger) (*Client, error) {
	if canonicals == nil {
		return nil, fmt.Errorf("canonical store is required")
	}
	if ext == nil {
		return nil, fmt.Errorf("extractor is required")
	}
	if emb == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	if oracle == nil {
		return nil, fmt.Errorf("oracle is required")
	}
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	res, err := resolver.New(config.Resolver, logger)
	if err != nil {
		return nil, err
	}
	engine, err := temporal.NewEngine(oracle, config.Invalidation, logger)
	if err != nil {
		return nil, err
	}

	return &Client{
		canonicals: canonicals,
		records:    records,
		extractor:  ext,
		embedder:   emb,
		resolver:   res,
		engine:     engine,
		config:     config,
		logger:     logger,
	}, nil
}
