package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/soundprediction/chronograph/pkg/types"
)

// Key prefixes for the embedded store. Canonical entities are keyed by name
// so the insert-if-absent race resolves inside a single Badger transaction.
const (
	canonicalPrefix = "canonical/"
	eventPrefix     = "event/"
	tripletPrefix   = "triplet/"
)

// BadgerStore is an embedded durable CanonicalStore and RecordStore backed
// by a local Badger database.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore opens (or creates) a Badger database at the given path.
func NewBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger store at %s: %w", path, err)
	}
	return &BadgerStore{db: db}, nil
}

// LookupAll returns every canonical entity keyed by name.
func (s *BadgerStore) LookupAll(ctx context.Context) (map[string]types.CanonicalEntity, error) {
	out := make(map[string]types.CanonicalEntity)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(canonicalPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var entity types.CanonicalEntity
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &entity)
			})
			if err != nil {
				return err
			}
			out[entity.Name] = entity
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan canonical entities: %w", err)
	}
	return out, nil
}

// GetByName returns the canonical entity with the given name.
func (s *BadgerStore) GetByName(ctx context.Context, name string) (types.CanonicalEntity, error) {
	var entity types.CanonicalEntity

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(canonicalPrefix + name))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entity)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return types.CanonicalEntity{}, ErrNotFound
	}
	if err != nil {
		return types.CanonicalEntity{}, fmt.Errorf("failed to get canonical entity %q: %w", name, err)
	}
	return entity, nil
}

// InsertIfAbsent inserts the entity unless its name is already taken. The
// read and the write happen in one serializable transaction, so concurrent
// batches minting the same name converge on a single winner.
func (s *BadgerStore) InsertIfAbsent(ctx context.Context, entity types.CanonicalEntity) (types.CanonicalEntity, bool, error) {
	if err := entity.Validate(); err != nil {
		return types.CanonicalEntity{}, false, err
	}

	key := []byte(canonicalPrefix + entity.Name)
	winner := entity
	inserted := false

	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err == nil {
			return item.Value(func(val []byte) error {
				return json.Unmarshal(val, &winner)
			})
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		data, err := json.Marshal(entity)
		if err != nil {
			return err
		}
		inserted = true
		return txn.Set(key, data)
	})
	if err != nil {
		return types.CanonicalEntity{}, false, fmt.Errorf("failed to insert canonical entity %q: %w", entity.Name, err)
	}
	return winner, inserted, nil
}

// SaveEvents persists events keyed by id.
func (s *BadgerStore) SaveEvents(ctx context.Context, events []*types.TemporalEvent) error {
	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	for _, event := range events {
		data, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("failed to marshal event %s: %w", event.ID, err)
		}
		if err := wb.Set([]byte(eventPrefix+event.ID.String()), data); err != nil {
			return err
		}
	}
	return wb.Flush()
}

// SaveTriplets persists triplet records keyed by id.
func (s *BadgerStore) SaveTriplets(ctx context.Context, records []TripletRecord) error {
	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	for _, record := range records {
		data, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("failed to marshal triplet %s: %w", record.ID, err)
		}
		if err := wb.Set([]byte(tripletPrefix+record.ID.String()), data); err != nil {
			return err
		}
	}
	return wb.Flush()
}

// Close closes the underlying Badger database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
