// Package logging builds the process logger from configuration.
package logging

import (
	"io"
	"log/slog"

	"kahani-ai/internal/config"
)

// New returns a text or JSON slog logger writing to w at the configured level.
func New(w io.Writer, cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}
