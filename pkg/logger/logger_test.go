package logger_test

import (
	"log/slog"
	"testing"

	"github.com/soundprediction/chronograph/pkg/logger"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{input: "debug", want: slog.LevelDebug},
		{input: "INFO", want: slog.LevelInfo},
		{input: "warn", want: slog.LevelWarn},
		{input: "warning", want: slog.LevelWarn},
		{input: "error", want: slog.LevelError},
		{input: "", want: slog.LevelInfo},
		{input: "verbose", want: slog.LevelInfo},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, logger.ParseLevel(tt.input), "input %q", tt.input)
	}
}

func TestNew(t *testing.T) {
	assert.NotNil(t, logger.New("debug", "text"))
	assert.NotNil(t, logger.New("info", "json"))
	assert.NotNil(t, logger.NewDefaultLogger(slog.LevelInfo))
}
