package logging

import (
	"context"
	"log/slog"
)

// severityByLevel maps slog.Level to GCP Cloud Logging severity strings.
// https://cloud.google.com/logging/docs/structured-logging#special-payload-fields
var severityByLevel = map[slog.Level]string{
	slog.LevelDebug: "DEBUG",
	slog.LevelInfo:  "INFO",
	slog.LevelWarn:  "WARNING",
	slog.LevelError: "ERROR",
}

// GCPHandler wraps a slog.Handler and adds "severity" (and optionally
// "resource") so JSON logs are parsed natively by GCP Cloud Logging.
type GCPHandler struct {
	inner   slog.Handler
	service string
}

// NewGCPHandler returns a handler that adds severity to every record. When
// service is non-empty a "resource" object labelled with it is added too.
func NewGCPHandler(inner slog.Handler, service string) *GCPHandler {
	return &GCPHandler{inner: inner, service: service}
}

// Enabled reports whether the inner handler would log this level.
func (h *GCPHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle adds severity (and optionally resource) then forwards to the inner handler.
func (h *GCPHandler) Handle(ctx context.Context, r slog.Record) error {
	sev := severityByLevel[r.Level]
	if sev == "" {
		sev = "DEFAULT"
	}
	r.AddAttrs(slog.String("severity", sev))
	if h.service != "" {
		r.AddAttrs(slog.Any("resource", map[string]any{
			"type":   "generic_task",
			"labels": map[string]string{"service": h.service},
		}))
	}
	return h.inner.Handle(ctx, r)
}

// WithAttrs returns a new handler with the given attributes.
func (h *GCPHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &GCPHandler{inner: h.inner.WithAttrs(attrs), service: h.service}
}

// WithGroup returns a new handler for the given group.
func (h *GCPHandler) WithGroup(name string) slog.Handler {
	return &GCPHandler{inner: h.inner.WithGroup(name), service: h.service}
}
