package chronograph

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/soundprediction/chronograph/pkg/graph"
	"github.com/soundprediction/chronograph/pkg/store"
	"github.com/soundprediction/chronograph/pkg/types"
	"github.com/soundprediction/chronograph/pkg/utils"
)

// IngestResult is the output of one ingestion run.
type IngestResult struct {
	// Entities are the canonical entities referenced by this run, including
	// previously persisted ones that mentions resolved to.
	Entities []types.CanonicalEntity
	// Triplets are the resolved relationships, endpoints rewritten to
	// canonical ids.
	Triplets []types.Triplet
	// Events are the temporal events, invalidation applied.
	Events []*types.TemporalEvent
	// Graph is the assembled projection of the above.
	Graph *graph.Graph
	// Skipped lists per-item failures isolated from the batch.
	Skipped []types.SkippedItem
}

// PendingTriplet is a raw triplet that has been assigned its durable id but
// whose endpoints still reference batch-local mention indices.
type PendingTriplet struct {
	ID  uuid.UUID
	Raw types.RawTriplet
}

// statementUnit pairs one extracted statement's event with its raw extraction.
type statementUnit struct {
	event      *types.TemporalEvent
	extraction types.RawExtraction
}

// chunkOutput is the per-chunk result collected from extraction workers.
type chunkOutput struct {
	units   []statementUnit
	skipped []types.SkippedItem
}

// Ingest runs the full pipeline over a batch of chunks: extraction, entity
// resolution, temporal invalidation, and graph assembly. Per-chunk and
// per-statement extraction failures are isolated and reported in
// IngestResult.Skipped; infrastructure failures (stores, embedder) abort the
// run.
func (c *Client) Ingest(ctx context.Context, chunks []*types.Chunk) (*IngestResult, error) {
	start := time.Now()
	result := &IngestResult{}
	if len(chunks) == 0 {
		result.Graph = graph.NewGraph()
		return result, nil
	}

	for _, chunk := range chunks {
		if err := chunk.Validate(); err != nil {
			return nil, fmt.Errorf("invalid chunk %s: %w", chunk.ID, err)
		}
	}

	// Extraction fan-out. Each chunk is independent, so failures stay local.
	pool := utils.NewWorkerPool(c.config.ChunkWorkers, func(ctx context.Context, chunk *types.Chunk) (chunkOutput, error) {
		return c.extractChunk(ctx, chunk), nil
	})
	outputs, errs := pool.ProcessItems(ctx, chunks)
	for _, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("extraction failed: %w", err)
		}
	}

	var units []statementUnit
	for _, out := range outputs {
		units = append(units, out.units...)
		result.Skipped = append(result.Skipped, out.skipped...)
	}

	// Flatten with batch-global mention indices. Each statement's extraction
	// numbers its mentions from zero, so later statements get offset past the
	// index space of earlier ones.
	mentions, pending := flattenUnits(units)

	events := make([]*types.TemporalEvent, 0, len(units))
	tripletOwner := make(map[uuid.UUID]uuid.UUID, len(pending))
	for _, unit := range units {
		events = append(events, unit.event)
		for _, id := range unit.event.TripletIDs {
			tripletOwner[id] = unit.event.ID
		}
	}
	result.Events = events

	if err := c.embedEvents(ctx, events); err != nil {
		return nil, err
	}

	// Entity resolution against the persisted canonical set.
	existing, err := c.canonicals.LookupAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading canonical entities: %w", err)
	}
	resolved, err := c.resolver.Resolve(mentions, existing)
	if err != nil {
		return nil, fmt.Errorf("resolving entities: %w", err)
	}

	entityByID := make(map[uuid.UUID]types.CanonicalEntity, len(existing))
	for _, e := range existing {
		entityByID[e.ID] = e
	}

	// Persist freshly minted canonicals. A concurrent batch may have won the
	// name first; the loser adopts the winner's id.
	idRemap := make(map[uuid.UUID]uuid.UUID)
	for _, minted := range resolved.NewCanonicals {
		winner, inserted, err := c.canonicals.InsertIfAbsent(ctx, minted)
		if err != nil {
			return nil, fmt.Errorf("persisting canonical entity %q: %w", minted.Name, err)
		}
		if !inserted && winner.ID != minted.ID {
			idRemap[minted.ID] = winner.ID
		}
		entityByID[winner.ID] = winner
	}
	for idx, id := range resolved.MentionToCanonical {
		if winner, ok := idRemap[id]; ok {
			resolved.MentionToCanonical[idx] = winner
		}
	}

	triplets, skipped := ReindexTriplets(pending, resolved.MentionToCanonical)
	result.Triplets = triplets
	result.Skipped = append(result.Skipped, skipped...)

	// Entities in first-appearance order of their mentions, so summaries and
	// telemetry are reproducible across runs.
	seen := make(map[uuid.UUID]bool)
	for _, m := range mentions {
		id, ok := resolved.MentionToCanonical[m.LocalIndex]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		if e, ok := entityByID[id]; ok {
			result.Entities = append(result.Entities, e)
		}
	}

	invalidation, err := c.engine.Invalidate(ctx, events)
	if err != nil {
		return nil, err
	}

	if c.records != nil {
		if err := c.persistRecords(ctx, events, triplets, tripletOwner); err != nil {
			return nil, err
		}
	}

	result.Graph = graph.Assemble(result.Entities, triplets, events)

	c.logger.Info("ingestion complete",
		"chunks", len(chunks),
		"events", len(events),
		"entities", len(result.Entities),
		"triplets", len(triplets),
		"invalidated", len(invalidation.Updates),
		"skipped", len(result.Skipped),
		"duration", time.Since(start))

	return result, nil
}

// extractChunk runs the three extraction operations for one chunk. Failures
// are demoted to skipped items so one bad chunk or statement never poisons
// the batch.
func (c *Client) extractChunk(ctx context.Context, chunk *types.Chunk) chunkOutput {
	out := chunkOutput{}

	statements, err := c.extractor.ExtractStatements(ctx, chunk)
	if err != nil {
		c.logger.Warn("statement extraction failed, skipping chunk",
			"chunk", chunk.ID, "error", err)
		out.skipped = append(out.skipped, types.SkippedItem{
			Kind:   "chunk",
			ID:     chunk.ID.String(),
			Reason: err.Error(),
		})
		return out
	}

	for _, stmt := range statements {
		extraction, err := c.extractor.ExtractTriplets(ctx, stmt)
		if err != nil {
			c.logger.Warn("triplet extraction failed, skipping statement",
				"chunk", chunk.ID, "statement", stmt.Statement, "error", err)
			out.skipped = append(out.skipped, types.SkippedItem{
				Kind:   "statement",
				ID:     chunk.ID.String(),
				Reason: fmt.Sprintf("triplet extraction: %v", err),
			})
			continue
		}

		event := types.NewTemporalEvent(chunk.ID, stmt)
		rawRange, err := c.extractor.ExtractTemporalRange(ctx, stmt, chunk.Metadata)
		if err != nil {
			// The statement is still worth keeping; it just carries no dates.
			c.logger.Warn("temporal range extraction failed, keeping statement undated",
				"chunk", chunk.ID, "statement", stmt.Statement, "error", err)
		} else {
			event.ValidAt, event.InvalidAt = types.ParseTemporalRange(*rawRange)
		}

		out.units = append(out.units, statementUnit{event: event, extraction: *extraction})
	}
	return out
}

// flattenUnits renumbers mention indices into one batch-global space, mints
// triplet ids, and links events to their triplets.
func flattenUnits(units []statementUnit) ([]types.RawEntityMention, []PendingTriplet) {
	var mentions []types.RawEntityMention
	var pending []PendingTriplet

	offset := 0
	for i := range units {
		unit := &units[i]

		maxIdx := -1
		for _, m := range unit.extraction.Entities {
			if m.LocalIndex > maxIdx {
				maxIdx = m.LocalIndex
			}
			m.LocalIndex += offset
			mentions = append(mentions, m)
		}

		for _, t := range unit.extraction.Triplets {
			if t.SubjectIndex > maxIdx {
				maxIdx = t.SubjectIndex
			}
			if t.ObjectIndex > maxIdx {
				maxIdx = t.ObjectIndex
			}
			t.SubjectIndex += offset
			t.ObjectIndex += offset
			pt := PendingTriplet{ID: uuid.New(), Raw: t}
			pending = append(pending, pt)
			unit.event.TripletIDs = append(unit.event.TripletIDs, pt.ID)
		}

		offset += maxIdx + 1
	}
	return mentions, pending
}

// ReindexTriplets rewrites pending triplet endpoints from batch-local mention
// indices to canonical entity ids. Triplets referencing an index with no
// resolution are dropped and reported, never guessed at.
func ReindexTriplets(pending []PendingTriplet, mentionToCanonical map[int]uuid.UUID) ([]types.Triplet, []types.SkippedItem) {
	triplets := make([]types.Triplet, 0, len(pending))
	var skipped []types.SkippedItem

	for _, pt := range pending {
		subjectID, ok := mentionToCanonical[pt.Raw.SubjectIndex]
		if !ok {
			skipped = append(skipped, types.SkippedItem{
				Kind:   "triplet",
				ID:     pt.ID.String(),
				Reason: fmt.Sprintf("subject index %d has no canonical entity", pt.Raw.SubjectIndex),
			})
			continue
		}
		objectID, ok := mentionToCanonical[pt.Raw.ObjectIndex]
		if !ok {
			skipped = append(skipped, types.SkippedItem{
				Kind:   "triplet",
				ID:     pt.ID.String(),
				Reason: fmt.Sprintf("object index %d has no canonical entity", pt.Raw.ObjectIndex),
			})
			continue
		}

		triplets = append(triplets, types.Triplet{
			ID:          pt.ID,
			SubjectID:   subjectID,
			SubjectName: pt.Raw.SubjectName,
			Predicate:   pt.Raw.Predicate,
			ObjectID:    objectID,
			ObjectName:  pt.Raw.ObjectName,
			Value:       pt.Raw.Value,
		})
	}
	return triplets, skipped
}

// embedEvents attaches statement embeddings, batched through the embedder.
func (c *Client) embedEvents(ctx context.Context, events []*types.TemporalEvent) error {
	if len(events) == 0 {
		return nil
	}
	texts := make([]string, len(events))
	for i, ev := range events {
		texts[i] = ev.Statement
	}

	vectors, err := c.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding statements: %w", err)
	}
	if len(vectors) != len(events) {
		return fmt.Errorf("expected %d embeddings, got %d", len(events), len(vectors))
	}
	for i, ev := range events {
		ev.Embedding = vectors[i]
	}
	return nil
}

func (c *Client) persistRecords(ctx context.Context, events []*types.TemporalEvent, triplets []types.Triplet, tripletOwner map[uuid.UUID]uuid.UUID) error {
	if err := c.records.SaveEvents(ctx, events); err != nil {
		return fmt.Errorf("saving events: %w", err)
	}

	records := make([]store.TripletRecord, 0, len(triplets))
	for _, t := range triplets {
		records = append(records, store.TripletRecord{
			Triplet: t,
			EventID: tripletOwner[t.ID],
		})
	}
	if err := c.records.SaveTriplets(ctx, records); err != nil {
		return fmt.Errorf("saving triplets: %w", err)
	}
	return nil
}
