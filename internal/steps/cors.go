package steps

import (
	"context"
	"slices"
	"strings"

	"github.com/menezmethod/routekit/internal/route"
)

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	AllowedOrigins   []string `yaml:"allowed_origins"`
	AllowedMethods   []string `yaml:"allowed_methods"`
	AllowedHeaders   []string `yaml:"allowed_headers"`
	AllowCredentials bool     `yaml:"allow_credentials"`
}

// CORS sets CORS response headers when the request origin is allowed. "*"
// in AllowedOrigins allows any origin. It only sets headers; preflight
// requests still run the rest of the route.
func CORS(cfg CORSConfig) route.Step {
	methods := strings.Join(cfg.AllowedMethods, ", ")
	headers := strings.Join(cfg.AllowedHeaders, ", ")

	return func(_ context.Context, c route.Context) (route.Context, error) {
		h := c.Response.Header()
		h.Add("Vary", "Origin")

		origin := c.Request.Headers["origin"]
		if origin == "" || !isAllowedOrigin(origin, cfg.AllowedOrigins) {
			return c, nil
		}
		h.Set("Access-Control-Allow-Origin", origin)
		if methods != "" {
			h.Set("Access-Control-Allow-Methods", methods)
		}
		if headers != "" {
			h.Set("Access-Control-Allow-Headers", headers)
		}
		if cfg.AllowCredentials {
			h.Set("Access-Control-Allow-Credentials", "true")
		}
		return c, nil
	}
}

func isAllowedOrigin(origin string, allowed []string) bool {
	return slices.Contains(allowed, "*") || slices.Contains(allowed, origin)
}
