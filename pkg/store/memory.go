package store

import (
	"context"
	"sync"

	"github.com/soundprediction/chronograph/pkg/types"
)

// MemoryStore is an in-memory CanonicalStore for tests and ephemeral runs.
type MemoryStore struct {
	mu       sync.RWMutex
	byName   map[string]types.CanonicalEntity
	events   []*types.TemporalEvent
	triplets []TripletRecord
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byName: make(map[string]types.CanonicalEntity),
	}
}

// LookupAll returns a copy of every canonical entity keyed by name.
func (s *MemoryStore) LookupAll(ctx context.Context) (map[string]types.CanonicalEntity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]types.CanonicalEntity, len(s.byName))
	for name, e := range s.byName {
		out[name] = e
	}
	return out, nil
}

// GetByName returns the canonical entity with the given name.
func (s *MemoryStore) GetByName(ctx context.Context, name string) (types.CanonicalEntity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.byName[name]
	if !ok {
		return types.CanonicalEntity{}, ErrNotFound
	}
	return e, nil
}

// InsertIfAbsent inserts the entity unless its name is already taken.
func (s *MemoryStore) InsertIfAbsent(ctx context.Context, entity types.CanonicalEntity) (types.CanonicalEntity, bool, error) {
	if err := entity.Validate(); err != nil {
		return types.CanonicalEntity{}, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if winner, ok := s.byName[entity.Name]; ok {
		return winner, false, nil
	}
	s.byName[entity.Name] = entity
	return entity, true, nil
}

// SaveEvents appends events to the in-memory event log.
func (s *MemoryStore) SaveEvents(ctx context.Context, events []*types.TemporalEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, events...)
	return nil
}

// SaveTriplets appends triplet records to the in-memory table.
func (s *MemoryStore) SaveTriplets(ctx context.Context, records []TripletRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.triplets = append(s.triplets, records...)
	return nil
}

// Events returns the stored event log. Test helper.
func (s *MemoryStore) Events() []*types.TemporalEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*types.TemporalEvent, len(s.events))
	copy(out, s.events)
	return out
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}
