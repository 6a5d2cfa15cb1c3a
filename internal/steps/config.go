package steps

import (
	"context"

	"github.com/menezmethod/routekit/internal/envconfig"
	"github.com/menezmethod/routekit/internal/route"
)

// LocalConfig is the Locals key holding the loaded configuration.
const LocalConfig = "config"

// ConfigLoader produces the configuration for one request.
type ConfigLoader func() (*envconfig.Object, error)

// WithConfig calls load on every request and stores the result in
// Locals["config"]. A load error fails the route.
func WithConfig(load ConfigLoader) route.Step {
	return func(_ context.Context, c route.Context) (route.Context, error) {
		cfg, err := load()
		if err != nil {
			return c, err
		}
		c.Response.Locals[LocalConfig] = cfg
		return c, nil
	}
}

// ConfigFrom returns the configuration stored by WithConfig, or nil.
func ConfigFrom(res *route.Response) *envconfig.Object {
	cfg, _ := res.Locals[LocalConfig].(*envconfig.Object)
	return cfg
}
