// Package logger builds the application's slog loggers.
package logger

import (
	"log/slog"
	"os"
	"strings"

	"github.com/phsym/console-slog"
)

// New creates a logger for the given level and format. Format "json" emits
// structured JSON lines; anything else gets the colored console handler.
func New(level, format string) *slog.Logger {
	lvl := ParseLevel(level)

	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: lvl,
		}))
	}

	return slog.New(console.NewHandler(os.Stderr, &console.HandlerOptions{
		Level: lvl,
	}))
}

// NewDefaultLogger creates a colored console logger at the given level.
func NewDefaultLogger(level slog.Level) *slog.Logger {
	return slog.New(console.NewHandler(os.Stderr, &console.HandlerOptions{
		Level: level,
	}))
}

// ParseLevel maps a level name to a slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
