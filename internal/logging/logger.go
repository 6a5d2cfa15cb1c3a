// Package logging builds the process logger: JSON or text for machines,
// colourised "pretty" output for local development, and an optional GCP
// Cloud Logging envelope.
package logging

import (
	"io"
	"log/slog"
	"time"

	"github.com/lmittmann/tint"
)

// ParseLevel maps a config level name to a slog.Level, defaulting to info.
func ParseLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger returns a *slog.Logger writing to w.
// Format: "json" (default), "text" or "pretty".
// Cloud format: "" (none), "gcp" (add severity), "gcp_with_resource"
// (severity + resource labelled with service).
func NewLogger(w io.Writer, level slog.Level, format, cloudFormat, service string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	var base slog.Handler
	switch format {
	case "text":
		base = slog.NewTextHandler(w, opts)
	case "pretty":
		base = tint.NewHandler(w, &tint.Options{Level: level, TimeFormat: time.RFC3339})
	default:
		base = slog.NewJSONHandler(w, opts)
	}

	switch cloudFormat {
	case "gcp":
		base = NewGCPHandler(base, "")
	case "gcp_with_resource":
		base = NewGCPHandler(base, service)
	}
	return slog.New(base)
}
