package steps

import (
	"context"

	"github.com/google/uuid"

	"github.com/menezmethod/routekit/internal/route"
)

// HeaderRequestID is the header carrying the request id in both directions.
const HeaderRequestID = "X-Request-ID"

// WithRequestID assigns the request id. A client-sent X-Request-ID is reused
// (for distributed tracing); otherwise a new UUID is generated. The id is
// stored in Locals["requestId"] and echoed in the X-Request-ID response header.
func WithRequestID() route.Step {
	return func(_ context.Context, c route.Context) (route.Context, error) {
		id := c.Request.Headers["x-request-id"]
		if id == "" {
			id = uuid.NewString()
		}
		c.Response.Locals[route.LocalRequestID] = id
		c.Response.Header().Set(HeaderRequestID, id)
		return c, nil
	}
}
