// Package server configures and runs the HTTP server.
package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/menezmethod/routekit/internal/config"
	"github.com/menezmethod/routekit/internal/handler"
	"github.com/menezmethod/routekit/internal/middleware"
	"github.com/menezmethod/routekit/internal/observability"
	"github.com/menezmethod/routekit/internal/route"
)

// Paths served by New. Metrics label only these.
var Paths = []string{"/health", "/version", "/metrics", "/v1/echo", "/v1/fail", "/v1/config"}

// New creates a configured *http.Server with all routes and middleware wired.
func New(cfg config.Config, logger *slog.Logger) *http.Server {
	return &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      Handler(cfg, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}
}

// Handler returns the server's root handler.
//
// Order (outermost → innermost): Recover → Metrics → Logging → mux.
// Route failures are logged by the routes themselves; Recover only sees
// panics from the plain handlers.
func Handler(cfg config.Config, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	routes := route.New(route.WithLogger(logger))

	mux.HandleFunc("GET /health", handler.Health())
	mux.HandleFunc("GET /version", handler.VersionInfo())
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.Handle("POST /v1/echo", handler.Echo(routes, cfg.CORS))
	mux.Handle("GET /v1/fail", handler.Fail(routes))
	mux.Handle("GET /v1/config", handler.Config(routes, cfg.Env.RequiredKeys))

	h := middleware.Chain(mux,
		middleware.Recover(logger),
		middleware.Metrics(Paths...),
		middleware.Logging(logger),
	)
	if cfg.Observability.OTelEnabled {
		h = observability.HTTPHandler(h, cfg.Observability.OTelServiceName)
	}
	return h
}

// Shutdown gracefully shuts down the server with the given context.
func Shutdown(ctx context.Context, srv *http.Server, logger *slog.Logger) {
	logger.Info("shutting down server")
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "err", err)
	}
}
