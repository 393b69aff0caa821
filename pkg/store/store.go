// Package store provides the durable canonical-entity mapping shared across
// ingestion runs, plus the event/triplet record tables the graph projection
// is rebuilt from.
//
// The canonical store is the only cross-batch shared mutable resource in the
// pipeline. All implementations expose insert-if-absent semantics keyed by
// canonical name: two batches racing to mint the same name converge on one
// winner, and the loser adopts the winner's id instead of erroring.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/soundprediction/chronograph/pkg/types"
)

// ErrNotFound is returned when a canonical entity does not exist.
var ErrNotFound = errors.New("canonical entity not found")

// CanonicalStore is the durable mapping from canonical entity name to
// canonical identity. The resolver accesses it only through lookup and
// insert-if-absent operations; raw storage handles are never exposed.
type CanonicalStore interface {
	// LookupAll returns every canonical entity keyed by name.
	LookupAll(ctx context.Context) (map[string]types.CanonicalEntity, error)

	// GetByName returns the canonical entity with the given name, or
	// ErrNotFound.
	GetByName(ctx context.Context, name string) (types.CanonicalEntity, error)

	// InsertIfAbsent inserts the entity keyed by its name unless a canonical
	// with that name already exists. It returns the winning entity and
	// whether the insert took effect; on conflict the caller must adopt the
	// returned winner's id.
	InsertIfAbsent(ctx context.Context, entity types.CanonicalEntity) (types.CanonicalEntity, bool, error)

	// Close releases the underlying storage.
	Close() error
}

// TripletRecord is a triplet row joined to its owning event for persistence.
type TripletRecord struct {
	types.Triplet
	EventID uuid.UUID
}

// RecordStore persists the event log and triplet tables that form the
// durable record behind the graph projection.
type RecordStore interface {
	SaveEvents(ctx context.Context, events []*types.TemporalEvent) error
	SaveTriplets(ctx context.Context, records []TripletRecord) error
}
