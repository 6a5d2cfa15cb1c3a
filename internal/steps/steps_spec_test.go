package steps

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/menezmethod/routekit/internal/envconfig"
	"github.com/menezmethod/routekit/internal/route"
	"github.com/menezmethod/routekit/internal/route/routetest"
)

func run(step route.Step, srv *routetest.Server) {
	_, err := step(context.Background(), srv.Context())
	Expect(err).NotTo(HaveOccurred())
}

var _ = Describe("WithRequestID", func() {
	It("generates a UUID when the client sent none", func() {
		srv := routetest.New(http.MethodGet, "/")
		run(WithRequestID(), srv)

		id := srv.Response.RequestID()
		_, err := uuid.Parse(id)
		Expect(err).NotTo(HaveOccurred())
		Expect(srv.Recorder.Header().Get(HeaderRequestID)).To(Equal(id))
	})

	It("reuses the client's X-Request-ID", func() {
		srv := routetest.New(http.MethodGet, "/", routetest.WithHeader("X-Request-ID", "trace-7"))
		run(WithRequestID(), srv)

		Expect(srv.Response.Locals).To(HaveKeyWithValue(route.LocalRequestID, "trace-7"))
		Expect(srv.Recorder.Header().Get(HeaderRequestID)).To(Equal("trace-7"))
	})

	It("gives different requests different ids", func() {
		a := routetest.New(http.MethodGet, "/")
		b := routetest.New(http.MethodGet, "/")
		run(WithRequestID(), a)
		run(WithRequestID(), b)
		Expect(a.Response.RequestID()).NotTo(Equal(b.Response.RequestID()))
	})
})

var _ = Describe("CORS", func() {
	cfg := CORSConfig{
		AllowedOrigins:   []string{"https://example.com"},
		AllowedMethods:   []string{"GET", "POST"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	}

	It("sets headers for an allowed origin", func() {
		srv := routetest.New(http.MethodGet, "/", routetest.WithHeader("Origin", "https://example.com"))
		run(CORS(cfg), srv)

		h := srv.Recorder.Header()
		Expect(h.Get("Access-Control-Allow-Origin")).To(Equal("https://example.com"))
		Expect(h.Get("Access-Control-Allow-Methods")).To(Equal("GET, POST"))
		Expect(h.Get("Access-Control-Allow-Headers")).To(Equal("Content-Type"))
		Expect(h.Get("Access-Control-Allow-Credentials")).To(Equal("true"))
	})

	It("sets nothing for other origins", func() {
		srv := routetest.New(http.MethodGet, "/", routetest.WithHeader("Origin", "https://evil.example"))
		run(CORS(cfg), srv)

		Expect(srv.Recorder.Header().Get("Access-Control-Allow-Origin")).To(BeEmpty())
	})

	It("allows any origin with *", func() {
		srv := routetest.New(http.MethodGet, "/", routetest.WithHeader("Origin", "https://any.example"))
		run(CORS(CORSConfig{AllowedOrigins: []string{"*"}}), srv)

		Expect(srv.Recorder.Header().Get("Access-Control-Allow-Origin")).To(Equal("https://any.example"))
		Expect(srv.Recorder.Header().Get("Access-Control-Allow-Methods")).To(BeEmpty())
	})

	It("does not stop a preflight request", func() {
		srv := routetest.New(http.MethodOptions, "/", routetest.WithHeader("Origin", "https://example.com"))
		run(CORS(cfg), srv)
		Expect(srv.Response.Written()).To(BeFalse())
	})
})

var _ = Describe("WithServerError", func() {
	It("lets a step answer with its own status and the request id", func() {
		capture := &routetest.Capture{}
		notFound := func(_ context.Context, c route.Context) (route.Context, error) {
			return c, ServerErrorFrom(c.Response)(http.StatusNotFound, "Not Found")
		}

		srv := routetest.New(http.MethodGet, "/missing", routetest.WithHeader("X-Request-ID", "r-1"))
		srv.Serve(route.New(route.WithSink(capture.Sink())).Create(WithRequestID(), WithServerError(), notFound))

		Expect(srv.Recorder.Code).To(Equal(http.StatusNotFound))
		Expect(srv.JSON()).To(Equal(map[string]any{"error": "Not Found", "requestId": "r-1"}))
		Expect(capture.Failures()).To(BeEmpty())
	})

	It("is nil when the step did not run", func() {
		srv := routetest.New(http.MethodGet, "/")
		Expect(ServerErrorFrom(srv.Response)).To(BeNil())
	})
})

var _ = Describe("WithConfig", func() {
	It("stores the loaded config", func() {
		obj := envconfig.New(map[string]string{"API_URL": "http://api"})
		srv := routetest.New(http.MethodGet, "/")
		run(WithConfig(func() (*envconfig.Object, error) { return obj, nil }), srv)

		Expect(ConfigFrom(srv.Response)).To(BeIdenticalTo(obj))
	})

	It("fails the route when loading fails", func() {
		capture := &routetest.Capture{}
		load := func() (*envconfig.Object, error) {
			return nil, errors.New("missing configuration: DATABASE_URL")
		}

		srv := routetest.New(http.MethodGet, "/")
		srv.Serve(route.New(route.WithSink(capture.Sink())).Create(WithConfig(load)))

		Expect(srv.Recorder.Code).To(Equal(http.StatusInternalServerError))
		Expect(capture.Failures()).To(HaveLen(1))
		Expect(capture.Failures()[0].Message).To(ContainSubstring("DATABASE_URL"))
	})

	It("returns nil when nothing was stored", func() {
		srv := routetest.New(http.MethodGet, "/")
		Expect(ConfigFrom(srv.Response)).To(BeNil())
	})
})
