package handler

import (
	"context"
	"net/http"

	"github.com/menezmethod/routekit/internal/envconfig"
	"github.com/menezmethod/routekit/internal/route"
	"github.com/menezmethod/routekit/internal/steps"
)

// Config reports which of the required environment keys are set. The
// values themselves are never returned. A missing key fails the route.
//
//	GET /v1/config
func Config(b *route.Builder, keys []string) route.Handler {
	keys = append([]string(nil), keys...)
	return b.Named("config").Create(
		steps.WithRequestID(),
		route.Convert(noStore),
		steps.WithConfig(func() (*envconfig.Object, error) {
			return envconfig.LoadFromEnv(keys)
		}),
		func(_ context.Context, c route.Context) (route.Context, error) {
			cfg := steps.ConfigFrom(c.Response)
			present := []string{}
			if cfg != nil {
				present = cfg.Keys()
			}
			return c, c.Response.Status(http.StatusOK).JSON(map[string]any{
				"requestId": c.Response.RequestID(),
				"keys":      present,
			})
		},
	)
}

// noStore is written in the next-callback style shared with older handlers.
func noStore(_ *route.Request, res *route.Response, next func()) error {
	res.Header().Set("Cache-Control", "no-store")
	next()
	return nil
}
