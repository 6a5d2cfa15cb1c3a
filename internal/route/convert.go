package route

import (
	"context"
	"net/http"
)

// Legacy is the next-callback middleware shape: the function may call next
// to continue and return an error to fail.
type Legacy func(req *Request, res *Response, next func()) error

// Convert adapts a Legacy function into a Step.
//
// The function receives a no-op next. Calling or withholding next has no
// effect: the route always continues with the following step once the
// function returns. A legacy function that relied on not calling next to
// halt the chain must instead write its response and be the last step, or
// return an error.
func Convert(mw Legacy) Step {
	return func(_ context.Context, c Context) (Context, error) {
		if err := mw(c.Request, c.Response, func() {}); err != nil {
			return c, err
		}
		return c, nil
	}
}

// FromMiddleware adapts net/http middleware into a Step.
//
// The middleware wraps a handler that does nothing except remember the
// request it was given, so context values the middleware attaches are kept
// in Request.HTTP. As with Convert, not calling next does not stop the route.
// Headers or bodies the middleware writes go straight to the response.
func FromMiddleware(mw func(http.Handler) http.Handler) Step {
	return func(ctx context.Context, c Context) (Context, error) {
		r := c.Request.HTTP
		if r == nil {
			var err error
			r, err = http.NewRequestWithContext(ctx, c.Request.Method, c.Request.URL, nil)
			if err != nil {
				return c, err
			}
		}

		var passed *http.Request
		next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			passed = r
		})
		mw(next).ServeHTTP(c.Response.Writer(), r.WithContext(ctx))

		if passed != nil {
			c.Request.HTTP = passed
		}
		return c, nil
	}
}
