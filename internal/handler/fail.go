package handler

import (
	"context"
	"errors"

	"github.com/menezmethod/routekit/internal/route"
	"github.com/menezmethod/routekit/internal/steps"
)

// ErrIntentional is the error returned by the Fail route.
var ErrIntentional = errors.New("intentional failure")

// Fail always fails after assigning a request id. It exists to exercise
// the error boundary end to end: the client sees the generic 500 body and
// the log gets one redacted failure record.
//
//	GET /v1/fail
func Fail(b *route.Builder) route.Handler {
	return b.Named("fail").Create(
		steps.WithRequestID(),
		func(_ context.Context, c route.Context) (route.Context, error) {
			return c, ErrIntentional
		},
	)
}
