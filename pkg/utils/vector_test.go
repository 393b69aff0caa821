package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{name: "identical direction", a: []float32{1, 0, 0}, b: []float32{2, 0, 0}, want: 1},
		{name: "orthogonal", a: []float32{1, 0}, b: []float32{0, 1}, want: 0},
		{name: "opposite", a: []float32{1, 0}, b: []float32{-1, 0}, want: -1},
		{name: "mismatched lengths", a: []float32{1, 0}, b: []float32{1}, want: 0},
		{name: "empty", a: nil, b: nil, want: 0},
		{name: "zero magnitude", a: []float32{0, 0}, b: []float32{1, 1}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CosineSimilarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestTopKByScore(t *testing.T) {
	items := []ScoredItem[string]{
		{Item: "c", Score: 3},
		{Item: "a", Score: 1},
		{Item: "e", Score: 5},
		{Item: "b", Score: 2},
		{Item: "d", Score: 4},
	}

	t.Run("k smaller than n", func(t *testing.T) {
		top := TopKByScore(items, 2)
		require.Len(t, top, 2)
		assert.Equal(t, "e", top[0].Item)
		assert.Equal(t, "d", top[1].Item)
	})

	t.Run("k larger than n returns all sorted", func(t *testing.T) {
		top := TopKByScore(items, 10)
		require.Len(t, top, 5)
		assert.Equal(t, "e", top[0].Item)
		assert.Equal(t, "a", top[4].Item)
	})

	t.Run("k zero", func(t *testing.T) {
		assert.Nil(t, TopKByScore(items, 0))
	})
}
