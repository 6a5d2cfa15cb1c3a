// Package route builds HTTP route handlers from ordered pipeline steps.
//
// A route is an explicit list of steps, each receiving the request/response
// pair and passing it on:
//
//	h := route.Create(
//		steps.WithRequestID(),
//		steps.CORS(corsCfg),
//		func(ctx context.Context, c route.Context) (route.Context, error) {
//			return c, c.Response.Status(http.StatusOK).JSON(map[string]string{"message": "ok"})
//		},
//	)
//	mux.Handle("GET /hello", h)
//
// The last step is expected to write the response; nothing is sent on
// success otherwise. Any step error (or panic) stops the route: one
// redacted failure record is logged and the client receives a generic 500
// body carrying only the request id.
package route

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/menezmethod/routekit/internal/apierror"
	"github.com/menezmethod/routekit/internal/pipe"
)

const tracerName = "github.com/menezmethod/routekit/internal/route"

var (
	routeInvocations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "routekit",
		Subsystem: "route",
		Name:      "invocations_total",
		Help:      "Total route invocations by route and outcome.",
	}, []string{"route", "outcome"})

	routeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "routekit",
		Subsystem: "route",
		Name:      "duration_seconds",
		Help:      "Route pipeline latency in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})

	// RouteFailures counts requests that ended in the error boundary.
	RouteFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "routekit",
		Subsystem: "route",
		Name:      "failures_total",
		Help:      "Total route invocations that failed with a 500.",
	}, []string{"route"})
)

// Context is the value threaded through a route's steps. Both fields are
// owned by the server layer and shared by reference.
type Context struct {
	Request  *Request
	Response *Response
}

// Step is a pipeline step over a route Context.
type Step = pipe.Step[Context]

// Handler handles one request/response pair. It is also an http.Handler.
type Handler func(req *Request, res *Response)

// ServeHTTP builds the Request/Response pair for r and w and runs h.
func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h(NewRequest(r), NewResponse(w))
}

// Builder creates route handlers sharing one failure sink.
type Builder struct {
	sink   Sink
	name   string
	tracer trace.Tracer
}

// Option configures a Builder.
type Option func(*Builder)

// WithSink sets where failure records go.
func WithSink(s Sink) Option {
	return func(b *Builder) { b.sink = s }
}

// WithLogger sends failure records to logger.
func WithLogger(logger *slog.Logger) Option {
	return WithSink(LogSink(logger))
}

// WithName labels metrics and spans of the created routes.
func WithName(name string) Option {
	return func(b *Builder) { b.name = name }
}

// New returns a Builder. Without options, failures are logged through
// slog.Default at the time of the failure.
func New(opts ...Option) *Builder {
	b := &Builder{
		sink: func(ctx context.Context, f Failure) {
			LogSink(slog.Default())(ctx, f)
		},
		name:   "route",
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Named returns a copy of b whose routes are labeled name.
func (b *Builder) Named(name string) *Builder {
	nb := *b
	nb.name = name
	return &nb
}

// Create builds a route handler from steps using the default Builder.
func Create(steps ...Step) Handler {
	return New().Create(steps...)
}

// Create builds a route handler that runs steps in order.
func (b *Builder) Create(steps ...Step) Handler {
	run := pipe.Compose(steps...)
	sink, name, tracer := b.sink, b.name, b.tracer

	return func(req *Request, res *Response) {
		start := time.Now()
		ctx, span := tracer.Start(req.Context(), name,
			trace.WithAttributes(
				attribute.String("http.request.method", req.Method),
				attribute.String("url.path", req.URL),
			))
		defer span.End()

		_, err := run(ctx, Context{Request: req, Response: res})
		routeDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
		if err == nil {
			routeInvocations.WithLabelValues(name, "ok").Inc()
			return
		}

		routeInvocations.WithLabelValues(name, "error").Inc()
		RouteFailures.WithLabelValues(name).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		fail(ctx, sink, req, res, err)
	}
}

// fail is the error boundary: one redacted record to the sink, then the
// generic 500 body. The error's message never reaches the client.
func fail(ctx context.Context, sink Sink, req *Request, res *Response, err error) {
	requestID := res.RequestID()
	sink(ctx, NewFailure(req, requestID, err))

	e := apierror.Internal(requestID)
	if werr := res.Status(e.Status).JSON(e); werr != nil {
		slog.DebugContext(ctx, "could not write failure response", "err", werr, "requestId", requestID)
	}
}
