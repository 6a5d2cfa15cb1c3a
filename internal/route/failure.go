package route

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/menezmethod/routekit/internal/redact"
)

// Failure is the log record written once per failed request. Body, Query and
// Headers hold JSON text of the redacted request data.
type Failure struct {
	Time      time.Time `json:"time"`
	Body      string    `json:"body,omitempty"`
	Query     string    `json:"query"`
	Method    string    `json:"method"`
	Headers   string    `json:"headers"`
	Error     bool      `json:"error"`
	URL       string    `json:"url"`
	Message   string    `json:"message"`
	RequestID string    `json:"requestId,omitempty"`
}

// Sink receives failure records.
type Sink func(ctx context.Context, f Failure)

// NewFailure snapshots req for logging with credentials removed.
func NewFailure(req *Request, requestID string, err error) Failure {
	return Failure{
		Time:      time.Now().UTC(),
		Body:      serialize(redact.Body(req.Body)),
		Query:     serialize(req.Query),
		Method:    req.Method,
		Headers:   serialize(redact.Headers(req.Headers)),
		Error:     true,
		URL:       req.URL,
		Message:   err.Error(),
		RequestID: requestID,
	}
}

// LogSink writes each failure as a single ERROR record on logger. The record
// time is the failure time, repeated as an RFC 3339 "timestamp" attribute.
// Empty body and requestId are left out.
func LogSink(logger *slog.Logger) Sink {
	return func(ctx context.Context, f Failure) {
		h := logger.Handler()
		if !h.Enabled(ctx, slog.LevelError) {
			return
		}
		r := slog.NewRecord(f.Time, slog.LevelError, "request failed", 0)
		r.AddAttrs(slog.String("timestamp", f.Time.Format(time.RFC3339Nano)))
		if f.Body != "" {
			r.AddAttrs(slog.String("body", f.Body))
		}
		r.AddAttrs(
			slog.String("query", f.Query),
			slog.String("method", f.Method),
			slog.String("headers", f.Headers),
			slog.Bool("error", f.Error),
			slog.String("url", f.URL),
			slog.String("message", f.Message),
		)
		if f.RequestID != "" {
			r.AddAttrs(slog.String("requestId", f.RequestID))
		}
		if err := h.Handle(ctx, r); err != nil {
			fmt.Fprintf(os.Stderr, "route: write failure record: %v\n", err)
		}
	}
}

// serialize returns v as JSON text. A nil value yields "".
func serialize(v any) string {
	if v == nil {
		return ""
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
