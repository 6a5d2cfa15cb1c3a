package steps

import (
	"context"

	"github.com/menezmethod/routekit/internal/apierror"
	"github.com/menezmethod/routekit/internal/route"
)

// LocalServerError is the Locals key holding the ServerError helper.
const LocalServerError = "serverError"

// ServerError writes a {error, requestId} body with the given status.
type ServerError func(status int, message string) error

// WithServerError stores a ServerError for the current response in
// Locals["serverError"]. Steps use it to answer with a specific status
// without going through the route's 500 boundary.
func WithServerError() route.Step {
	return func(_ context.Context, c route.Context) (route.Context, error) {
		res := c.Response
		res.Locals[LocalServerError] = ServerError(func(status int, message string) error {
			e := apierror.New(status, message, res.RequestID())
			return res.Status(e.Status).JSON(e)
		})
		return c, nil
	}
}

// ServerErrorFrom returns the helper stored by WithServerError, or nil.
func ServerErrorFrom(res *route.Response) ServerError {
	se, _ := res.Locals[LocalServerError].(ServerError)
	return se
}
