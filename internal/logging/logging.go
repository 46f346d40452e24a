// Package logging builds the slog handler used by the ledstrip command.
package logging

import (
	"io"
	"log/slog"
	"strings"
)

// Config is the [logging] table of a program file.
type Config struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// New returns a logger writing to w. Format "json" selects JSON output,
// anything else text. Unknown levels fall back to info.
func New(w io.Writer, cfg Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}
	var h slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h)
}

// ParseLevel converts a level name to slog.Level.
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
