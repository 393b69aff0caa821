package types_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/soundprediction/chronograph/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEvent(validAt *time.Time) *types.TemporalEvent {
	ev := types.NewTemporalEvent(uuid.New(), types.RawStatement{
		Statement:     "Lisa Su is the CEO of AMD.",
		StatementType: types.StatementFact,
		TemporalType:  types.TemporalDynamic,
	})
	ev.ValidAt = validAt
	return ev
}

func TestApplyInvalidation(t *testing.T) {
	validAt := time.Date(2014, 10, 8, 0, 0, 0, 0, time.UTC)
	invalidAt := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("sets both fields", func(t *testing.T) {
		ev := newTestEvent(&validAt)
		by := uuid.New()

		require.NoError(t, ev.ApplyInvalidation(by, invalidAt))
		require.NotNil(t, ev.InvalidAt)
		assert.True(t, ev.InvalidAt.Equal(invalidAt))
		require.NotNil(t, ev.InvalidatedBy)
		assert.Equal(t, by, *ev.InvalidatedBy)
		assert.NotNil(t, ev.ExpiredAt)
		assert.True(t, ev.Invalidated())
	})

	t.Run("write-once", func(t *testing.T) {
		ev := newTestEvent(&validAt)
		require.NoError(t, ev.ApplyInvalidation(uuid.New(), invalidAt))

		err := ev.ApplyInvalidation(uuid.New(), invalidAt.Add(time.Hour))
		assert.ErrorIs(t, err, types.ErrAlreadyInvalidated)
	})

	t.Run("self invalidation rejected", func(t *testing.T) {
		ev := newTestEvent(&validAt)
		err := ev.ApplyInvalidation(ev.ID, invalidAt)
		assert.ErrorIs(t, err, types.ErrSelfInvalidation)
		assert.False(t, ev.Invalidated())
	})

	t.Run("invalid before valid rejected", func(t *testing.T) {
		ev := newTestEvent(&validAt)
		err := ev.ApplyInvalidation(uuid.New(), validAt.Add(-time.Hour))
		assert.ErrorIs(t, err, types.ErrInvalidBeforeValid)
		assert.Nil(t, ev.InvalidAt)
	})

	t.Run("nil valid_at accepts any boundary", func(t *testing.T) {
		ev := newTestEvent(nil)
		assert.NoError(t, ev.ApplyInvalidation(uuid.New(), invalidAt))
	})
}

func TestTemporalEventValidate(t *testing.T) {
	validAt := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("valid event", func(t *testing.T) {
		ev := newTestEvent(&validAt)
		assert.NoError(t, ev.Validate())
	})

	t.Run("empty statement", func(t *testing.T) {
		ev := newTestEvent(&validAt)
		ev.Statement = ""
		assert.ErrorIs(t, ev.Validate(), types.ErrEmptyStatement)
	})

	t.Run("invalidated_by without invalid_at", func(t *testing.T) {
		ev := newTestEvent(&validAt)
		by := uuid.New()
		ev.InvalidatedBy = &by
		assert.Error(t, ev.Validate())
	})
}
