package extractor

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/soundprediction/chronograph/pkg/types"
)

// Scripted is a deterministic Extractor for tests and offline pipelines.
// Responses are keyed by chunk ID and statement text; unscripted inputs
// return empty results rather than errors.
type Scripted struct {
	mu         sync.RWMutex
	statements map[uuid.UUID][]types.RawStatement
	triplets   map[string]*types.RawExtraction
	ranges     map[string]*types.RawTemporalRange
}

// NewScripted creates an empty scripted extractor.
func NewScripted() *Scripted {
	return &Scripted{
		statements: make(map[uuid.UUID][]types.RawStatement),
		triplets:   make(map[string]*types.RawExtraction),
		ranges:     make(map[string]*types.RawTemporalRange),
	}
}

// ScriptStatements registers the statements returned for a chunk.
func (s *Scripted) ScriptStatements(chunkID uuid.UUID, statements []types.RawStatement) *Scripted {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statements[chunkID] = statements
	return s
}

// ScriptTriplets registers the extraction returned for a statement text.
func (s *Scripted) ScriptTriplets(statement string, extraction *types.RawExtraction) *Scripted {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.triplets[statement] = extraction
	return s
}

// ScriptTemporalRange registers the temporal range returned for a statement text.
func (s *Scripted) ScriptTemporalRange(statement string, tr *types.RawTemporalRange) *Scripted {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ranges[statement] = tr
	return s
}

// ExtractStatements implements Extractor.
func (s *Scripted) ExtractStatements(_ context.Context, chunk *types.Chunk) ([]types.RawStatement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.statements[chunk.ID], nil
}

// ExtractTriplets implements Extractor.
func (s *Scripted) ExtractTriplets(_ context.Context, statement types.RawStatement) (*types.RawExtraction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if ex, ok := s.triplets[statement.Statement]; ok {
		return ex, nil
	}
	return &types.RawExtraction{}, nil
}

// ExtractTemporalRange implements Extractor.
func (s *Scripted) ExtractTemporalRange(_ context.Context, statement types.RawStatement, _ types.ChunkMetadata) (*types.RawTemporalRange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if tr, ok := s.ranges[statement.Statement]; ok {
		return tr, nil
	}
	return &types.RawTemporalRange{}, nil
}
