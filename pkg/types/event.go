package types

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Invalidation errors
var (
	ErrAlreadyInvalidated = errors.New("event is already invalidated")
	ErrSelfInvalidation   = errors.New("event cannot invalidate itself")
	ErrInvalidBeforeValid = errors.New("invalid_at must not precede valid_at")
)

// TemporalEvent consolidates one extracted statement with its temporal scope,
// its embedding, and the triplets it asserts.
type TemporalEvent struct {
	ID        uuid.UUID `json:"id"`
	ChunkID   uuid.UUID `json:"chunk_id"`
	Statement string    `json:"statement"`

	StatementType StatementType `json:"statement_type"`
	TemporalType  TemporalType  `json:"temporal_type"`

	ValidAt   *time.Time `json:"valid_at,omitempty"`
	InvalidAt *time.Time `json:"invalid_at,omitempty"`

	// InvalidatedBy references the TemporalEvent that superseded this one.
	// Write-once: never cleared after being set.
	InvalidatedBy *uuid.UUID `json:"invalidated_by,omitempty"`

	TripletIDs []uuid.UUID `json:"triplet_ids"`
	Embedding  []float32   `json:"embedding,omitempty"`

	// CreatedAt is when the event entered the system; ExpiredAt is when the
	// system learned it had been superseded. Both are processing times,
	// independent of the ValidAt/InvalidAt real-world interval.
	CreatedAt time.Time  `json:"created_at"`
	ExpiredAt *time.Time `json:"expired_at,omitempty"`
}

// NewTemporalEvent creates a TemporalEvent with a fresh ID.
func NewTemporalEvent(chunkID uuid.UUID, stmt RawStatement) *TemporalEvent {
	return &TemporalEvent{
		ID:            uuid.New(),
		ChunkID:       chunkID,
		Statement:     stmt.Statement,
		StatementType: stmt.StatementType,
		TemporalType:  stmt.TemporalType,
		CreatedAt:     time.Now().UTC(),
	}
}

// Invalidated reports whether the event has been superseded.
func (e *TemporalEvent) Invalidated() bool {
	return e.InvalidatedBy != nil
}

// ApplyInvalidation marks the event as superseded by another event.
// The invalidation fields are write-once: a second call is rejected.
func (e *TemporalEvent) ApplyInvalidation(by uuid.UUID, at time.Time) error {
	if e.InvalidatedBy != nil || e.InvalidAt != nil {
		return ErrAlreadyInvalidated
	}
	if by == e.ID {
		return ErrSelfInvalidation
	}
	if e.ValidAt != nil && at.Before(*e.ValidAt) {
		return ErrInvalidBeforeValid
	}
	t := at.UTC()
	now := time.Now().UTC()
	e.InvalidAt = &t
	e.InvalidatedBy = &by
	e.ExpiredAt = &now
	return nil
}

// Validate checks the event invariants.
func (e *TemporalEvent) Validate() error {
	if e.ID == uuid.Nil {
		return ErrEmptyID
	}
	if e.Statement == "" {
		return ErrEmptyStatement
	}
	if e.ValidAt != nil && e.InvalidAt != nil && e.InvalidAt.Before(*e.ValidAt) {
		return ErrInvalidBeforeValid
	}
	if e.InvalidatedBy != nil {
		if e.InvalidAt == nil {
			return errors.New("invalidated_by is set without invalid_at")
		}
		if *e.InvalidatedBy == e.ID {
			return ErrSelfInvalidation
		}
	}
	return nil
}
