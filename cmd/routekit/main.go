package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/menezmethod/routekit/internal/config"
	"github.com/menezmethod/routekit/internal/envconfig"
	"github.com/menezmethod/routekit/internal/logging"
	"github.com/menezmethod/routekit/internal/observability"
	"github.com/menezmethod/routekit/internal/server"
	"github.com/menezmethod/routekit/internal/version"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml (optional, env vars work without it)")
	flag.Parse()

	// Load configuration: defaults -> YAML file -> env vars.
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(os.Stdout, logging.ParseLevel(cfg.Log.Level), cfg.Log.Format, cfg.Log.CloudFormat, cfg.Observability.OTelServiceName)
	// Routes built without an explicit logger fall back to the default.
	slog.SetDefault(logger)

	if err := envconfig.LoadDotEnv(cfg.Env.DotEnvFiles...); err != nil {
		logger.Error("failed to load dotenv files", "err", err)
		os.Exit(1)
	}

	var tp *observability.TracerProvider
	if cfg.Observability.OTelEnabled {
		if cfg.Observability.OTelExporter == "stdout" {
			tp, err = observability.NewStdoutTracerProvider(os.Stderr, cfg.Observability.OTelServiceName)
		} else {
			tp, err = observability.NewTracerProvider(context.Background(), cfg.Observability.OTelEndpoint, cfg.Observability.OTelServiceName)
		}
		if err != nil {
			logger.Error("otel tracer provider failed", "err", err)
			os.Exit(1)
		}
		logger.Info("opentelemetry tracing enabled", "exporter", cfg.Observability.OTelExporter, "endpoint", cfg.Observability.OTelEndpoint)
	}

	srv := server.New(cfg, logger)

	// Graceful shutdown on SIGINT/SIGTERM.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("server starting", "addr", cfg.Server.Addr(), "version", version.Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	<-stop
	logger.Info("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	server.Shutdown(ctx, srv, logger)
	if tp != nil {
		if err := tp.Shutdown(ctx); err != nil {
			logger.Error("otel shutdown error", "err", err)
		}
	}
	logger.Info("server stopped")
}
