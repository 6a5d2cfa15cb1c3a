// Package handler implements the HTTP endpoints served by routekit.
//
// Health and version checks are plain net/http handlers. Everything under
// /v1 is built as a route pipeline, so failures there go through the
// route error boundary.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/menezmethod/routekit/internal/version"
)

// Health handles liveness checks. It always returns 200 if the server is running.
//
//	GET /health
func Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":  "ok",
			"version": version.Version,
		})
	}
}

// VersionInfo handles version info. Returns JSON with version and optional commit.
//
//	GET /version
func VersionInfo() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		out := map[string]string{"version": version.Version}
		if version.Commit != "" {
			out["commit"] = version.Commit
		}
		_ = json.NewEncoder(w).Encode(out)
	}
}
