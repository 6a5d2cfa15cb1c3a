// Package config handles loading and validating application configuration.
//
// Configuration is loaded from a YAML file with environment variable overrides.
// Environment variables use the ROUTEKIT_ prefix (e.g., ROUTEKIT_PORT).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/menezmethod/routekit/internal/steps"
)

// Config holds the complete application configuration.
type Config struct {
	Server        Server           `yaml:"server"`
	CORS          steps.CORSConfig `yaml:"cors"`
	Env           Env              `yaml:"env"`
	Log           Log              `yaml:"log"`
	Observability Observability    `yaml:"observability"`
}

// Server configures the HTTP listener.
type Server struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// Env lists the settings routes read from the environment at request time.
type Env struct {
	DotEnvFiles  []string `yaml:"dotenv_files"`
	RequiredKeys []string `yaml:"required_keys"`
}

// Log configures structured logging.
type Log struct {
	Level       string `yaml:"level"`
	Format      string `yaml:"format"`
	CloudFormat string `yaml:"cloud_format"`
}

// Observability configures optional OpenTelemetry tracing.
type Observability struct {
	OTelEnabled     bool   `yaml:"otel_enabled"`
	OTelExporter    string `yaml:"otel_exporter"` // "otlp" or "stdout"
	OTelEndpoint    string `yaml:"otel_endpoint"`
	OTelServiceName string `yaml:"otel_service_name"`
}

// Defaults returns a Config with sensible defaults.
func Defaults() Config {
	return Config{
		Server: Server{
			Host:         "127.0.0.1",
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		CORS: steps.CORSConfig{
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type", "Authorization", "X-Request-ID"},
		},
		Env: Env{
			DotEnvFiles: []string{".env"},
		},
		Log: Log{
			Level:  "info",
			Format: "json",
		},
		Observability: Observability{
			OTelExporter:    "otlp",
			OTelServiceName: "routekit",
		},
	}
}

// Load reads configuration from the given YAML file path, then applies
// environment variable overrides. If path is empty, only defaults and
// environment variables are used.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnvOverrides(&cfg)

	if err := validate(cfg); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides reads ROUTEKIT_* environment variables and overrides
// the corresponding config values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ROUTEKIT_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("ROUTEKIT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("ROUTEKIT_LOG_LEVEL"); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv("ROUTEKIT_LOG_FORMAT"); v != "" {
		cfg.Log.Format = strings.ToLower(v)
	}
	if v := os.Getenv("ROUTEKIT_LOG_CLOUD_FORMAT"); v != "" {
		cfg.Log.CloudFormat = strings.ToLower(v)
	}
	if v := os.Getenv("ROUTEKIT_CORS_ORIGINS"); v != "" {
		cfg.CORS.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("ROUTEKIT_REQUIRED_ENV"); v != "" {
		cfg.Env.RequiredKeys = splitList(v)
	}
	if v := os.Getenv("ROUTEKIT_OTEL_ENABLED"); v != "" {
		if on, err := strconv.ParseBool(v); err == nil {
			cfg.Observability.OTelEnabled = on
		}
	}
	if v := os.Getenv("ROUTEKIT_OTEL_EXPORTER"); v != "" {
		cfg.Observability.OTelExporter = strings.ToLower(v)
	}
	if v := os.Getenv("ROUTEKIT_OTEL_ENDPOINT"); v != "" {
		cfg.Observability.OTelEndpoint = strings.TrimSpace(v)
	}
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// validate checks that the configuration is internally consistent.
func validate(cfg Config) error {
	var errs []error

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", cfg.Server.Port))
	}
	if cfg.Server.ReadTimeout < 0 || cfg.Server.WriteTimeout < 0 {
		errs = append(errs, errors.New("server timeouts must not be negative"))
	}
	for i, k := range cfg.Env.RequiredKeys {
		if strings.TrimSpace(k) == "" {
			errs = append(errs, fmt.Errorf("env.required_keys[%d] is empty", i))
		}
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Log.Level] {
		errs = append(errs, fmt.Errorf("log.level must be one of debug, info, warn, error; got %q", cfg.Log.Level))
	}
	validFormats := map[string]bool{"json": true, "text": true, "pretty": true}
	if !validFormats[cfg.Log.Format] {
		errs = append(errs, fmt.Errorf("log.format must be json, text or pretty; got %q", cfg.Log.Format))
	}
	validCloud := map[string]bool{"": true, "gcp": true, "gcp_with_resource": true}
	if !validCloud[cfg.Log.CloudFormat] {
		errs = append(errs, fmt.Errorf("log.cloud_format must be empty, gcp or gcp_with_resource; got %q", cfg.Log.CloudFormat))
	}
	if cfg.Observability.OTelEnabled {
		switch cfg.Observability.OTelExporter {
		case "otlp", "stdout":
		default:
			errs = append(errs, fmt.Errorf("observability.otel_exporter must be otlp or stdout; got %q", cfg.Observability.OTelExporter))
		}
		if cfg.Observability.OTelExporter == "otlp" && cfg.Observability.OTelEndpoint == "" {
			errs = append(errs, errors.New("observability.otel_endpoint is required for the otlp exporter"))
		}
		if cfg.Observability.OTelServiceName == "" {
			errs = append(errs, errors.New("observability.otel_service_name is required when otel_enabled is true"))
		}
	}

	return errors.Join(errs...)
}

// Addr returns the listen address as "host:port".
func (s Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
