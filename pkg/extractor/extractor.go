// Package extractor turns raw document chunks into structured statements,
// entity mentions, and triplets. The LLM-backed implementation drives a
// chat model with extraction prompts and repairs its JSON output; a
// scripted implementation exists for tests.
package extractor

import (
	"context"

	"github.com/soundprediction/chronograph/pkg/types"
)

// Extractor produces structured knowledge from chunk text. Implementations
// must be safe for concurrent use; the ingestion pipeline calls them from
// multiple workers.
type Extractor interface {
	// ExtractStatements pulls atomic, single-subject statements out of a
	// chunk and labels each with statement and temporal types.
	ExtractStatements(ctx context.Context, chunk *types.Chunk) ([]types.RawStatement, error)

	// ExtractTriplets identifies entity mentions and subject-predicate-object
	// triplets within a single statement. Mention indices are local to the
	// statement.
	ExtractTriplets(ctx context.Context, statement types.RawStatement) (*types.RawExtraction, error)

	// ExtractTemporalRange determines when a statement became valid and,
	// if bounded, when it stopped holding. The chunk metadata supplies the
	// publication date used to anchor relative expressions.
	ExtractTemporalRange(ctx context.Context, statement types.RawStatement, meta types.ChunkMetadata) (*types.RawTemporalRange, error)
}
