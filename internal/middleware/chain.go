// Package middleware provides the net/http middleware wrapped around the
// whole server: panic recovery, access logging and Prometheus metrics.
// Per-route processing belongs in route steps instead.
package middleware

import "net/http"

// Middleware wraps an http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Chain composes middleware in the order given. The first middleware
// in the list is the outermost (runs first on request, last on response).
//
//	Chain(handler, recover, metrics, logging)
//	// Request order:  recover → metrics → logging → handler
//	// Response order: handler → logging → metrics → recover
func Chain(h http.Handler, mw ...Middleware) http.Handler {
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	return h
}
