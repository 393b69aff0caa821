// Package telemetry persists per-run ingestion reports as Parquet files so
// runs can be audited and diffed offline.
package telemetry

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/soundprediction/chronograph/pkg/types"
)

// EventRecord is the flattened Parquet row for a temporal event.
type EventRecord struct {
	ID            string    `parquet:"id"`
	ChunkID       string    `parquet:"chunk_id"`
	Statement     string    `parquet:"statement"`
	StatementType string    `parquet:"statement_type"`
	TemporalType  string    `parquet:"temporal_type"`
	ValidAt       string    `parquet:"valid_at"`
	InvalidAt     string    `parquet:"invalid_at"`
	InvalidatedBy string    `parquet:"invalidated_by"`
	CreatedAt     time.Time `parquet:"created_at"`
	ExpiredAt     string    `parquet:"expired_at"`
}

// TripletRecord is the flattened Parquet row for a triplet.
type TripletRecord struct {
	ID          string `parquet:"id"`
	SubjectID   string `parquet:"subject_id"`
	SubjectName string `parquet:"subject_name"`
	Predicate   string `parquet:"predicate"`
	ObjectID    string `parquet:"object_id"`
	ObjectName  string `parquet:"object_name"`
	Value       string `parquet:"value"`
}

// Reporter writes ingestion run reports to a directory of Parquet files.
type Reporter struct {
	outputDir string
}

// NewReporter creates a Reporter, creating the output directory if needed.
func NewReporter(outputDir string) (*Reporter, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create telemetry directory: %w", err)
	}
	return &Reporter{outputDir: outputDir}, nil
}

// WriteRun persists the events, triplets, and skipped items of one ingestion
// run. Each run gets its own timestamped file set.
func (r *Reporter) WriteRun(events []*types.TemporalEvent, triplets []types.Triplet, skipped []types.SkippedItem) error {
	stamp := fmt.Sprintf("%s_%d", time.Now().Format("20060102_150405"), time.Now().UnixNano())

	if len(events) > 0 {
		records := make([]EventRecord, 0, len(events))
		for _, ev := range events {
			records = append(records, flattenEvent(ev))
		}
		path := filepath.Join(r.outputDir, fmt.Sprintf("events_%s.parquet", stamp))
		if err := parquet.WriteFile(path, records); err != nil {
			return fmt.Errorf("writing events parquet: %w", err)
		}
	}

	if len(triplets) > 0 {
		records := make([]TripletRecord, 0, len(triplets))
		for _, t := range triplets {
			records = append(records, TripletRecord{
				ID:          t.ID.String(),
				SubjectID:   t.SubjectID.String(),
				SubjectName: t.SubjectName,
				Predicate:   string(t.Predicate),
				ObjectID:    t.ObjectID.String(),
				ObjectName:  t.ObjectName,
				Value:       t.Value,
			})
		}
		path := filepath.Join(r.outputDir, fmt.Sprintf("triplets_%s.parquet", stamp))
		if err := parquet.WriteFile(path, records); err != nil {
			return fmt.Errorf("writing triplets parquet: %w", err)
		}
	}

	if len(skipped) > 0 {
		path := filepath.Join(r.outputDir, fmt.Sprintf("skipped_%s.parquet", stamp))
		if err := parquet.WriteFile(path, skipped); err != nil {
			return fmt.Errorf("writing skipped parquet: %w", err)
		}
	}

	return nil
}

func flattenEvent(ev *types.TemporalEvent) EventRecord {
	rec := EventRecord{
		ID:            ev.ID.String(),
		ChunkID:       ev.ChunkID.String(),
		Statement:     ev.Statement,
		StatementType: string(ev.StatementType),
		TemporalType:  string(ev.TemporalType),
		CreatedAt:     ev.CreatedAt,
	}
	if ev.ValidAt != nil {
		rec.ValidAt = ev.ValidAt.UTC().Format(time.RFC3339)
	}
	if ev.InvalidAt != nil {
		rec.InvalidAt = ev.InvalidAt.UTC().Format(time.RFC3339)
	}
	if ev.InvalidatedBy != nil {
		rec.InvalidatedBy = ev.InvalidatedBy.String()
	}
	if ev.ExpiredAt != nil {
		rec.ExpiredAt = ev.ExpiredAt.UTC().Format(time.RFC3339)
	}
	return rec
}
