package types_test

import (
	"testing"
	"time"

	"github.com/soundprediction/chronograph/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateString(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *time.Time
	}{
		{
			name:  "rfc3339",
			input: "2023-06-01T12:30:00Z",
			want:  timePtr(time.Date(2023, 6, 1, 12, 30, 0, 0, time.UTC)),
		},
		{
			name:  "date only",
			input: "2023-06-01",
			want:  timePtr(time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)),
		},
		{
			name:  "datetime without zone",
			input: "2023-06-01T12:30:00",
			want:  timePtr(time.Date(2023, 6, 1, 12, 30, 0, 0, time.UTC)),
		},
		{
			name:  "bare year becomes january first",
			input: "2023",
			want:  timePtr(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)),
		},
		{
			name:  "quoted value",
			input: `"2023-06-01"`,
			want:  timePtr(time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)),
		},
		{
			name:  "null literal",
			input: "null",
			want:  nil,
		},
		{
			name:  "none literal",
			input: "None",
			want:  nil,
		},
		{
			name:  "empty string",
			input: "",
			want:  nil,
		},
		{
			name:  "garbage",
			input: "sometime next quarter",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := types.ParseDateString(tt.input)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, tt.want.Equal(*got), "want %v, got %v", tt.want, got)
		})
	}
}

func TestParseTemporalRange(t *testing.T) {
	validAt, invalidAt := types.ParseTemporalRange(types.RawTemporalRange{
		ValidAt:   "2023-01-01",
		InvalidAt: "null",
	})
	require.NotNil(t, validAt)
	assert.True(t, validAt.Equal(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Nil(t, invalidAt)
}

func timePtr(t time.Time) *time.Time { return &t }
