package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/soundprediction/chronograph"
	"github.com/soundprediction/chronograph/pkg/config"
	"github.com/soundprediction/chronograph/pkg/embedder"
	"github.com/soundprediction/chronograph/pkg/export"
	"github.com/soundprediction/chronograph/pkg/extractor"
	"github.com/soundprediction/chronograph/pkg/llm"
	chronologger "github.com/soundprediction/chronograph/pkg/logger"
	"github.com/soundprediction/chronograph/pkg/oracle"
	"github.com/soundprediction/chronograph/pkg/resolver"
	"github.com/soundprediction/chronograph/pkg/store"
	"github.com/soundprediction/chronograph/pkg/telemetry"
	"github.com/soundprediction/chronograph/pkg/temporal"
	"github.com/soundprediction/chronograph/pkg/types"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [chunks.yaml]",
	Short: "Ingest document chunks into the knowledge graph",
	Long: `Ingest reads a YAML file of document chunks, runs the full pipeline over
them, and prints a summary of the resulting graph.

The input file holds a list of chunks, each with content and metadata:

    chunks:
      - content: "Lisa Su is the CEO of AMD..."
        metadata:
          company: AMD
          date: 2023-05-01
          quarter: Q1 2023

Results are optionally persisted to the configured store, reported as Parquet
telemetry, and exported to Neo4j.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().String("store-driver", "", "Store driver (memory, badger, postgres)")
	ingestCmd.Flags().Bool("export", false, "Export the assembled graph to Neo4j")
}

// chunkFile is the YAML input schema.
type chunkFile struct {
	Chunks []struct {
		ID       string `yaml:"id"`
		Content  string `yaml:"content"`
		Metadata struct {
			Company string `yaml:"company"`
			Date    string `yaml:"date"`
			Quarter string `yaml:"quarter"`
		} `yaml:"metadata"`
	} `yaml:"chunks"`
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if driver, _ := cmd.Flags().GetString("store-driver"); driver != "" {
		cfg.Store.Driver = driver
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	log := chronologger.New(cfg.Log.Level, cfg.Log.Format)

	chunks, err := loadChunks(args[0])
	if err != nil {
		return err
	}
	log.Info("loaded chunks", "file", args[0], "count", len(chunks))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	canonicals, records, err := buildStore(cfg)
	if err != nil {
		return err
	}
	defer canonicals.Close()

	chat, err := llm.NewOpenAIClient(cfg.LLM.APIKey, llm.Config{
		Model:       cfg.LLM.Model,
		Temperature: &cfg.LLM.Temperature,
		MaxTokens:   &cfg.LLM.MaxTokens,
		BaseURL:     cfg.LLM.BaseURL,
	})
	if err != nil {
		return fmt.Errorf("creating llm client: %w", err)
	}
	retrying := llm.NewRetryClient(chat, nil)
	defer retrying.Close()

	emb, err := buildEmbedder(cfg)
	if err != nil {
		return err
	}
	defer emb.Close()

	judge := buildOracle(cfg, retrying, log)

	client, err := chronograph.NewClient(canonicals, records, extractor.NewLLMExtractor(retrying), emb, judge, &chronograph.Config{
		Resolver: resolver.Config{
			ClusterThreshold: cfg.Resolver.ClusterThreshold,
		},
		Invalidation: temporal.Config{
			SimilarityThreshold: cfg.Invalidation.SimilarityThreshold,
			MaxConcurrency:      cfg.Invalidation.MaxConcurrency,
			OracleTimeout:       time.Duration(cfg.Invalidation.OracleTimeoutSeconds) * time.Second,
		},
	}, log)
	if err != nil {
		return err
	}

	result, err := client.Ingest(ctx, chunks)
	if err != nil {
		return err
	}

	printSummary(result)

	if cfg.Telemetry.ParquetPath != "" {
		reporter, err := telemetry.NewReporter(cfg.Telemetry.ParquetPath)
		if err != nil {
			log.Warn("telemetry disabled", "error", err)
		} else if err := reporter.WriteRun(result.Events, result.Triplets, result.Skipped); err != nil {
			log.Warn("failed to write telemetry report", "error", err)
		}
	}

	if doExport, _ := cmd.Flags().GetBool("export"); doExport {
		if cfg.Export.URI == "" {
			return fmt.Errorf("export requested but export.uri is not configured")
		}
		exporter, err := export.NewNeo4jExporter(cfg.Export.URI, cfg.Export.Username, cfg.Export.Password, cfg.Export.Database, log)
		if err != nil {
			return err
		}
		defer exporter.Close(ctx)
		if err := exporter.Export(ctx, result.Graph); err != nil {
			return fmt.Errorf("exporting graph: %w", err)
		}
	}

	return nil
}

func loadChunks(path string) ([]*types.Chunk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading chunk file: %w", err)
	}

	var file chunkFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing chunk file: %w", err)
	}

	chunks := make([]*types.Chunk, 0, len(file.Chunks))
	for i, raw := range file.Chunks {
		chunk := &types.Chunk{
			ID:      uuid.New(),
			Content: raw.Content,
			Metadata: types.ChunkMetadata{
				Company: raw.Metadata.Company,
				Quarter: raw.Metadata.Quarter,
			},
		}
		if raw.ID != "" {
			id, err := uuid.Parse(raw.ID)
			if err != nil {
				return nil, fmt.Errorf("chunk %d: invalid id %q: %w", i, raw.ID, err)
			}
			chunk.ID = id
		}
		if raw.Metadata.Date != "" {
			parsed := types.ParseDateString(raw.Metadata.Date)
			if parsed == nil {
				return nil, fmt.Errorf("chunk %d: unparseable date %q", i, raw.Metadata.Date)
			}
			chunk.Metadata.Date = *parsed
		}
		if err := chunk.Validate(); err != nil {
			return nil, fmt.Errorf("chunk %d: %w", i, err)
		}
		chunks = append(chunks, chunk)
	}
	return chunks, nil
}

// buildStore selects the configured store. Every driver implements both the
// canonical and record interfaces.
func buildStore(cfg *config.Config) (store.CanonicalStore, store.RecordStore, error) {
	switch cfg.Store.Driver {
	case "badger":
		s, err := store.NewBadgerStore(cfg.Store.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("opening badger store: %w", err)
		}
		return s, s, nil
	case "postgres":
		s, err := store.NewPostgresStore(cfg.Store.DSN, nil)
		if err != nil {
			return nil, nil, fmt.Errorf("opening postgres store: %w", err)
		}
		return s, s, nil
	default:
		s := store.NewMemoryStore()
		return s, s, nil
	}
}

func buildEmbedder(cfg *config.Config) (embedder.Client, error) {
	embCfg := &embedder.Config{
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
	}
	switch cfg.Embedding.Provider {
	case "openai":
		return embedder.NewOpenAIClient(cfg.Embedding.APIKey, cfg.Embedding.BaseURL, embCfg)
	default:
		return embedder.NewEmbedEverythingClient(embCfg)
	}
}

func buildOracle(cfg *config.Config, chat llm.Client, log *slog.Logger) temporal.Oracle {
	var judge temporal.Oracle = oracle.NewLLMOracle(chat, log)
	if cfg.CircuitBreaker.Enabled {
		judge = oracle.NewBreakerOracle(judge, oracle.BreakerConfig{
			MaxRequests:      cfg.CircuitBreaker.MaxRequests,
			Interval:         time.Duration(cfg.CircuitBreaker.Interval) * time.Second,
			Timeout:          time.Duration(cfg.CircuitBreaker.Timeout) * time.Second,
			ReadyToTripRatio: cfg.CircuitBreaker.ReadyToTripRatio,
		}, log)
	}
	return judge
}

func printSummary(result *chronograph.IngestResult) {
	fmt.Printf("\nIngestion complete\n")
	fmt.Printf("  entities:     %d\n", len(result.Entities))
	fmt.Printf("  events:       %d\n", len(result.Events))
	fmt.Printf("  triplets:     %d\n", len(result.Triplets))
	fmt.Printf("  graph:        %d nodes, %d edges, %d attestations\n",
		result.Graph.NodeCount(), result.Graph.EdgeCount(), result.Graph.AttestationCount())
	if len(result.Skipped) > 0 {
		fmt.Printf("  skipped:      %d\n", len(result.Skipped))
		for _, s := range result.Skipped {
			fmt.Printf("    - %s %s: %s\n", s.Kind, s.ID, s.Reason)
		}
	}
	if len(result.Graph.Warnings) > 0 {
		fmt.Printf("  warnings:     %d\n", len(result.Graph.Warnings))
	}

	top := result.Graph.TopByDegree(5)
	if len(top) > 0 {
		fmt.Printf("  most connected entities:\n")
		degrees := result.Graph.Degree()
		for _, node := range top {
			fmt.Printf("    - %s (%s): degree %d\n", node.Name, node.Type, degrees[node.ID])
		}
	}
}
