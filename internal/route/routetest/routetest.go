// Package routetest builds request/response pairs for testing route steps
// and handlers without a running server.
package routetest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/menezmethod/routekit/internal/route"
)

// Server is a request/response pair backed by an httptest recorder.
type Server struct {
	Request  *route.Request
	Response *route.Response
	Recorder *httptest.ResponseRecorder
}

// Option customises the request built by New.
type Option func(r *http.Request)

// WithHeader sets a request header.
func WithHeader(key, value string) Option {
	return func(r *http.Request) { r.Header.Set(key, value) }
}

// WithJSON sets v, encoded as JSON, as the request body.
func WithJSON(v any) Option {
	return func(r *http.Request) {
		data, err := json.Marshal(v)
		if err != nil {
			panic("routetest: encode body: " + err.Error())
		}
		r.Body = io.NopCloser(bytes.NewReader(data))
		r.ContentLength = int64(len(data))
		r.Header.Set("Content-Type", "application/json")
	}
}

// New returns a Server for a request to target.
func New(method, target string, opts ...Option) *Server {
	r := httptest.NewRequest(method, target, nil)
	for _, opt := range opts {
		opt(r)
	}
	rec := httptest.NewRecorder()
	return &Server{
		Request:  route.NewRequest(r),
		Response: route.NewResponse(rec),
		Recorder: rec,
	}
}

// Context returns the route Context for the pair.
func (s *Server) Context() route.Context {
	return route.Context{Request: s.Request, Response: s.Response}
}

// Serve runs h on the pair.
func (s *Server) Serve(h route.Handler) {
	h(s.Request, s.Response)
}

// JSON decodes the recorded response body into a map. It returns nil when
// the body is empty or not a JSON object.
func (s *Server) JSON() map[string]any {
	var out map[string]any
	if err := json.Unmarshal(s.Recorder.Body.Bytes(), &out); err != nil {
		return nil
	}
	return out
}

// Capture collects failure records from a route.Builder.
type Capture struct {
	mu       sync.Mutex
	failures []route.Failure
}

// Sink returns a route.Sink that records into c.
func (c *Capture) Sink() route.Sink {
	return func(_ context.Context, f route.Failure) {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.failures = append(c.failures, f)
	}
}

// Failures returns the records collected so far.
func (c *Capture) Failures() []route.Failure {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]route.Failure(nil), c.failures...)
}
