package extractor_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/soundprediction/chronograph/pkg/extractor"
	"github.com/soundprediction/chronograph/pkg/llm"
	"github.com/soundprediction/chronograph/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cannedClient returns a fixed response for every chat call.
type cannedClient struct {
	response string
	err      error
}

func (c *cannedClient) Chat(ctx context.Context, messages []llm.Message) (string, error) {
	return c.response, c.err
}

func (c *cannedClient) Close() error { return nil }

func testChunk() *types.Chunk {
	return &types.Chunk{
		ID:      uuid.New(),
		Content: "AMD reported record revenue. Lisa Su is the CEO of AMD.",
		Metadata: types.ChunkMetadata{
			Company: "AMD",
			Date:    time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC),
			Quarter: "Q1 2023",
		},
	}
}

func TestExtractStatements(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     int
	}{
		{
			name: "clean json",
			response: `{"statements": [
				{"statement": "Lisa Su is the CEO of AMD.", "statement_type": "FACT", "temporal_type": "DYNAMIC"},
				{"statement": "AMD reported record revenue.", "statement_type": "FACT", "temporal_type": "STATIC"}
			]}`,
			want: 2,
		},
		{
			name: "markdown fenced",
			response: "```json\n{\"statements\": [{\"statement\": \"AMD reported record revenue.\", " +
				"\"statement_type\": \"FACT\", \"temporal_type\": \"STATIC\"}]}\n```",
			want: 1,
		},
		{
			name: "think tags stripped",
			response: "<think>the chunk mentions revenue</think>\n" +
				`{"statements": [{"statement": "AMD reported record revenue.", "statement_type": "FACT", "temporal_type": "STATIC"}]}`,
			want: 1,
		},
		{
			name: "blank statements dropped",
			response: `{"statements": [
				{"statement": "  ", "statement_type": "FACT", "temporal_type": "STATIC"},
				{"statement": "AMD reported record revenue.", "statement_type": "FACT", "temporal_type": "STATIC"}
			]}`,
			want: 1,
		},
		{
			name:     "prose around the object",
			response: `Here you go: {"statements": [{"statement": "AMD reported record revenue.", "statement_type": "FACT", "temporal_type": "STATIC"}]} hope that helps`,
			want:     1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ext := extractor.NewLLMExtractor(&cannedClient{response: tt.response})
			statements, err := ext.ExtractStatements(context.Background(), testChunk())
			require.NoError(t, err)
			assert.Len(t, statements, tt.want)
		})
	}
}

func TestExtractStatementsPropagatesClientError(t *testing.T) {
	ext := extractor.NewLLMExtractor(&cannedClient{err: errors.New("model offline")})
	_, err := ext.ExtractStatements(context.Background(), testChunk())
	assert.Error(t, err)
}

func TestExtractTriplets(t *testing.T) {
	response := `{
		"entities": [
			{"entity_idx": 0, "name": "Lisa Su", "type": "Person", "description": "CEO"},
			{"entity_idx": 1, "name": "CEO", "type": "Role", "description": "Chief executive"}
		],
		"triplets": [
			{"subject_name": "Lisa Su", "subject_id": 0, "predicate": "HOLDS_ROLE", "object_name": "CEO", "object_id": 1},
			{"subject_name": "Lisa Su", "subject_id": 0, "predicate": "MADE_UP_PREDICATE", "object_name": "CEO", "object_id": 1}
		]
	}`

	ext := extractor.NewLLMExtractor(&cannedClient{response: response})
	extraction, err := ext.ExtractTriplets(context.Background(), types.RawStatement{
		Statement:     "Lisa Su is the CEO of AMD.",
		StatementType: types.StatementFact,
		TemporalType:  types.TemporalDynamic,
	})
	require.NoError(t, err)

	assert.Len(t, extraction.Entities, 2)
	// Predicates outside the closed set are dropped.
	require.Len(t, extraction.Triplets, 1)
	assert.Equal(t, types.PredicateHoldsRole, extraction.Triplets[0].Predicate)
}

func TestExtractTemporalRange(t *testing.T) {
	response := `{"valid_at": "2014-10-08", "invalid_at": null}`

	ext := extractor.NewLLMExtractor(&cannedClient{response: response})
	tr, err := ext.ExtractTemporalRange(context.Background(), types.RawStatement{
		Statement:     "Lisa Su is the CEO of AMD.",
		StatementType: types.StatementFact,
		TemporalType:  types.TemporalDynamic,
	}, testChunk().Metadata)
	require.NoError(t, err)

	validAt, invalidAt := types.ParseTemporalRange(*tr)
	require.NotNil(t, validAt)
	assert.True(t, validAt.Equal(time.Date(2014, 10, 8, 0, 0, 0, 0, time.UTC)))
	assert.Nil(t, invalidAt)
}

func TestExtractRejectsEmptyInput(t *testing.T) {
	ext := extractor.NewLLMExtractor(&cannedClient{response: "{}"})

	_, err := ext.ExtractStatements(context.Background(), &types.Chunk{ID: uuid.New()})
	assert.Error(t, err)

	_, err = ext.ExtractTriplets(context.Background(), types.RawStatement{})
	assert.Error(t, err)
}
