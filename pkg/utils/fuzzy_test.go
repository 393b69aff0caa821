package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{name: "identical", a: "lisa su", b: "lisa su", want: 100},
		{name: "both empty", a: "", b: "", want: 100},
		{name: "one empty", a: "amd", b: "", want: 0},
		{name: "no overlap", a: "abc", b: "xyz", want: 0},
		{name: "suffix added", a: "lisa su", b: "dr. lisa su", want: 100 * (1 - 4.0/18.0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Ratio(tt.a, tt.b), 1e-9)
			assert.InDelta(t, tt.want, Ratio(tt.b, tt.a), 1e-9, "ratio must be symmetric")
		})
	}
}

func TestPartialRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{name: "identical", a: "amd", b: "amd", want: 100},
		{name: "contained substring", a: "lisa su", b: "dr. lisa su", want: 100},
		{name: "alias in official name", a: "micro", b: "advanced micro devices", want: 100},
		{name: "both empty", a: "", b: "", want: 100},
		{name: "one empty", a: "", b: "amd", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, PartialRatio(tt.a, tt.b), 1e-9)
			assert.InDelta(t, tt.want, PartialRatio(tt.b, tt.a), 1e-9, "argument order must not matter")
		})
	}
}

func TestPartialRatioBounds(t *testing.T) {
	pairs := [][2]string{
		{"apple", "aple"},
		{"nvidia corporation", "nvidia corp"},
		{"q1 2023", "first quarter"},
	}
	for _, p := range pairs {
		score := PartialRatio(p[0], p[1])
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 100.0)
	}
}
