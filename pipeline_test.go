package chronograph_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/soundprediction/chronograph"
	"github.com/soundprediction/chronograph/pkg/extractor"
	"github.com/soundprediction/chronograph/pkg/store"
	"github.com/soundprediction/chronograph/pkg/temporal"
	"github.com/soundprediction/chronograph/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// vectorByTopic gives CEO-related statements one direction and everything
// else the orthogonal one, so only CEO statements pass the similarity filter.
type vectorByTopic struct{}

func (vectorByTopic) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if strings.Contains(text, "CEO") {
			out[i] = []float32{1, 0}
		} else {
			out[i] = []float32{0, 1}
		}
	}
	return out, nil
}

func (v vectorByTopic) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	vecs, err := v.Embed(ctx, []string{text})
	return vecs[0], err
}

func (vectorByTopic) Dimensions() int { return 2 }
func (vectorByTopic) Close() error    { return nil }

var succeedsOnStepDown = temporal.OracleFunc(func(ctx context.Context, primary, secondary *types.TemporalEvent) (bool, error) {
	return strings.Contains(secondary.Statement, "stepped down"), nil
})

const (
	stmtCEO      = "Lisa Su is the CEO of AMD."
	stmtLaunch   = "AMD launched the MI300."
	stmtStepDown = "Lisa Su stepped down as CEO of AMD."
)

func newChunk(content, quarter string, date time.Time) *types.Chunk {
	return &types.Chunk{
		ID:      uuid.New(),
		Content: content,
		Metadata: types.ChunkMetadata{
			Company: "AMD",
			Date:    date,
			Quarter: quarter,
		},
	}
}

func scriptedExtractor(chunk1, chunk2 *types.Chunk) *extractor.Scripted {
	fact := func(statement string, tt types.TemporalType) types.RawStatement {
		return types.RawStatement{Statement: statement, StatementType: types.StatementFact, TemporalType: tt}
	}

	return extractor.NewScripted().
		ScriptStatements(chunk1.ID, []types.RawStatement{
			fact(stmtCEO, types.TemporalDynamic),
			fact(stmtLaunch, types.TemporalStatic),
		}).
		ScriptStatements(chunk2.ID, []types.RawStatement{
			fact(stmtStepDown, types.TemporalStatic),
		}).
		ScriptTriplets(stmtCEO, &types.RawExtraction{
			Entities: []types.RawEntityMention{
				{LocalIndex: 0, Name: "Lisa Su", Type: "Person", Description: "CEO of AMD"},
				{LocalIndex: 1, Name: "CEO", Type: "Role"},
			},
			Triplets: []types.RawTriplet{
				{SubjectName: "Lisa Su", SubjectIndex: 0, Predicate: types.PredicateHoldsRole, ObjectName: "CEO", ObjectIndex: 1},
			},
		}).
		ScriptTriplets(stmtLaunch, &types.RawExtraction{
			Entities: []types.RawEntityMention{
				{LocalIndex: 0, Name: "AMD", Type: "Organization"},
				{LocalIndex: 1, Name: "MI300", Type: "Product"},
			},
			Triplets: []types.RawTriplet{
				{SubjectName: "AMD", SubjectIndex: 0, Predicate: types.PredicateLaunched, ObjectName: "MI300", ObjectIndex: 1},
			},
		}).
		ScriptTriplets(stmtStepDown, &types.RawExtraction{
			Entities: []types.RawEntityMention{
				{LocalIndex: 0, Name: "Dr. Lisa Su", Type: "Person"},
				{LocalIndex: 1, Name: "CEO", Type: "Role"},
			},
			Triplets: []types.RawTriplet{
				{SubjectName: "Dr. Lisa Su", SubjectIndex: 0, Predicate: types.PredicateHoldsRole, ObjectName: "CEO", ObjectIndex: 1},
			},
		}).
		ScriptTemporalRange(stmtCEO, &types.RawTemporalRange{ValidAt: "2014-10-08"}).
		ScriptTemporalRange(stmtLaunch, &types.RawTemporalRange{ValidAt: "2023-06-13"}).
		ScriptTemporalRange(stmtStepDown, &types.RawTemporalRange{ValidAt: "2023-06-01"})
}

func TestIngestEndToEnd(t *testing.T) {
	ctx := context.Background()
	chunk1 := newChunk("Q1 earnings call transcript.", "Q1 2023", time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC))
	chunk2 := newChunk("Q2 press release.", "Q2 2023", time.Date(2023, 8, 1, 0, 0, 0, 0, time.UTC))

	mem := store.NewMemoryStore()
	client, err := chronograph.NewClient(mem, mem, scriptedExtractor(chunk1, chunk2),
		vectorByTopic{}, succeedsOnStepDown, nil, nil)
	require.NoError(t, err)

	result, err := client.Ingest(ctx, []*types.Chunk{chunk1, chunk2})
	require.NoError(t, err)

	// Three statements became three events, in chunk order.
	require.Len(t, result.Events, 3)
	assert.Empty(t, result.Skipped)

	// "Lisa Su" and "Dr. Lisa Su" collapse onto one canonical; the two "CEO"
	// mentions do too. Four distinct canonicals remain, listed in the order
	// their first mention appeared in the batch.
	require.Len(t, result.Entities, 4)
	entityNames := make([]string, len(result.Entities))
	for i, e := range result.Entities {
		entityNames[i] = e.Name
	}
	assert.Equal(t, []string{"Lisa Su", "CEO", "AMD", "MI300"}, entityNames)
	require.Len(t, result.Triplets, 3)

	// The tenure statement was superseded by the step-down statement.
	ceoEvent := eventByStatement(t, result.Events, stmtCEO)
	stepDown := eventByStatement(t, result.Events, stmtStepDown)
	require.NotNil(t, ceoEvent.InvalidAt)
	assert.True(t, ceoEvent.InvalidAt.Equal(time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)))
	require.NotNil(t, ceoEvent.InvalidatedBy)
	assert.Equal(t, stepDown.ID, *ceoEvent.InvalidatedBy)

	// The launch statement is unrelated and untouched.
	launch := eventByStatement(t, result.Events, stmtLaunch)
	assert.Nil(t, launch.InvalidAt)

	// Graph: both HOLDS_ROLE triplets share one edge key, so the tenure edge
	// carries two attestations.
	assert.Equal(t, 4, result.Graph.NodeCount())
	assert.Equal(t, 2, result.Graph.EdgeCount())
	assert.Equal(t, 3, result.Graph.AttestationCount())
	assert.Empty(t, result.Graph.Warnings)

	lisa, ok := result.Graph.FindNodeByName("Lisa Su")
	require.True(t, ok)
	tenureEdges := result.Graph.OutEdges(lisa.ID)
	require.Len(t, tenureEdges, 1)
	assert.Len(t, tenureEdges[0].Attestations, 2)

	// Point-in-time: during the tenure the edge is active, after the step-down
	// only the superseding claim remains.
	during := result.Graph.ActiveAt(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, 1, len(during.OutEdges(lisa.ID)))

	// Records were persisted.
	assert.Len(t, mem.Events(), 3)
}

func TestIngestReusesCanonicalsAcrossRuns(t *testing.T) {
	ctx := context.Background()
	chunk1 := newChunk("Q1 earnings call transcript.", "Q1 2023", time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC))
	chunk2 := newChunk("Q2 press release.", "Q2 2023", time.Date(2023, 8, 1, 0, 0, 0, 0, time.UTC))

	mem := store.NewMemoryStore()
	client, err := chronograph.NewClient(mem, nil, scriptedExtractor(chunk1, chunk2),
		vectorByTopic{}, succeedsOnStepDown, nil, nil)
	require.NoError(t, err)

	first, err := client.Ingest(ctx, []*types.Chunk{chunk1})
	require.NoError(t, err)

	// A later batch mentioning the same names resolves to the persisted
	// canonicals instead of minting fresh ones.
	second, err := client.Ingest(ctx, []*types.Chunk{chunk1, chunk2})
	require.NoError(t, err)

	firstLisa := entityByName(t, first.Entities, "Lisa Su")
	secondLisa := entityByName(t, second.Entities, "Lisa Su")
	assert.Equal(t, firstLisa.ID, secondLisa.ID, "identity must be stable across runs")
	assert.Equal(t, entityByName(t, first.Entities, "CEO").ID, entityByName(t, second.Entities, "CEO").ID)
}

func TestIngestEmptyBatch(t *testing.T) {
	mem := store.NewMemoryStore()
	client, err := chronograph.NewClient(mem, nil, extractor.NewScripted(), vectorByTopic{}, succeedsOnStepDown, nil, nil)
	require.NoError(t, err)

	result, err := client.Ingest(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, result.Events)
	assert.Equal(t, 0, result.Graph.NodeCount())
}

func TestIngestRejectsInvalidChunk(t *testing.T) {
	mem := store.NewMemoryStore()
	client, err := chronograph.NewClient(mem, nil, extractor.NewScripted(), vectorByTopic{}, succeedsOnStepDown, nil, nil)
	require.NoError(t, err)

	_, err = client.Ingest(context.Background(), []*types.Chunk{{ID: uuid.New()}})
	assert.Error(t, err)
}

func TestReindexTriplets(t *testing.T) {
	lisa := uuid.New()
	ceo := uuid.New()
	mapping := map[int]uuid.UUID{0: lisa, 1: ceo}

	pending := []chronograph.PendingTriplet{
		{ID: uuid.New(), Raw: types.RawTriplet{
			SubjectName: "Lisa Su", SubjectIndex: 0,
			Predicate:  types.PredicateHoldsRole,
			ObjectName: "CEO", ObjectIndex: 1,
		}},
		{ID: uuid.New(), Raw: types.RawTriplet{
			SubjectName: "Lisa Su", SubjectIndex: 0,
			Predicate:  types.PredicateCollaboratesWith,
			ObjectName: "Ghost", ObjectIndex: 9,
		}},
	}

	triplets, skipped := chronograph.ReindexTriplets(pending, mapping)

	require.Len(t, triplets, 1)
	assert.Equal(t, lisa, triplets[0].SubjectID)
	assert.Equal(t, ceo, triplets[0].ObjectID)
	assert.Equal(t, pending[0].ID, triplets[0].ID)

	// The dangling reference is dropped and reported, never guessed at.
	require.Len(t, skipped, 1)
	assert.Equal(t, "triplet", skipped[0].Kind)
	assert.Equal(t, pending[1].ID.String(), skipped[0].ID)
	assert.Contains(t, skipped[0].Reason, "object index 9")
}

func eventByStatement(t *testing.T, events []*types.TemporalEvent, statement string) *types.TemporalEvent {
	t.Helper()
	for _, ev := range events {
		if ev.Statement == statement {
			return ev
		}
	}
	t.Fatalf("no event with statement %q", statement)
	return nil
}

func entityByName(t *testing.T, entities []types.CanonicalEntity, name string) types.CanonicalEntity {
	t.Helper()
	for _, e := range entities {
		if e.Name == name {
			return e
		}
	}
	t.Fatalf("no entity named %q", name)
	return types.CanonicalEntity{}
}
