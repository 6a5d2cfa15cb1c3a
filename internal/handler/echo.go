package handler

import (
	"context"
	"net/http"

	"github.com/menezmethod/routekit/internal/route"
	"github.com/menezmethod/routekit/internal/steps"
)

// Echo returns the JSON object it was sent together with the request id
// and query. Bodies that are not a JSON object get a 400.
//
//	POST /v1/echo
func Echo(b *route.Builder, cors steps.CORSConfig) route.Handler {
	return b.Named("echo").Create(
		steps.WithRequestID(),
		steps.CORS(cors),
		steps.WithServerError(),
		requireObject,
		echo,
	)
}

func requireObject(_ context.Context, c route.Context) (route.Context, error) {
	if _, ok := c.Request.Body.(map[string]any); ok {
		return c, nil
	}
	if se := steps.ServerErrorFrom(c.Response); se != nil {
		if err := se(http.StatusBadRequest, "request body must be a JSON object"); err != nil {
			return c, err
		}
	}
	return c, nil
}

func echo(_ context.Context, c route.Context) (route.Context, error) {
	if c.Response.Written() {
		return c, nil
	}
	return c, c.Response.Status(http.StatusOK).JSON(map[string]any{
		"requestId": c.Response.RequestID(),
		"method":    c.Request.Method,
		"query":     c.Request.Query,
		"body":      c.Request.Body,
	})
}
