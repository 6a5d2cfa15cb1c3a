package route_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/menezmethod/routekit/internal/logging"
	"github.com/menezmethod/routekit/internal/route"
	"github.com/menezmethod/routekit/internal/route/routetest"
)

func setRequestID(id string) route.Step {
	return func(_ context.Context, c route.Context) (route.Context, error) {
		c.Response.Locals[route.LocalRequestID] = id
		return c, nil
	}
}

func throws(msg string) route.Step {
	return func(_ context.Context, c route.Context) (route.Context, error) {
		return c, errors.New(msg)
	}
}

func writeOK(_ context.Context, c route.Context) (route.Context, error) {
	return c, c.Response.Status(http.StatusOK).JSON(map[string]string{"message": "ok"})
}

var _ = Describe("Create", func() {
	var (
		capture *routetest.Capture
		builder *route.Builder
	)

	BeforeEach(func() {
		capture = &routetest.Capture{}
		builder = route.New(route.WithSink(capture.Sink()))
	})

	When("a step fails", func() {
		It("responds 500 with the request id and logs one record", func() {
			srv := routetest.New(http.MethodGet, "/things?page=2")
			srv.Serve(builder.Create(setRequestID("req-123"), throws("boom")))

			Expect(srv.Recorder.Code).To(Equal(http.StatusInternalServerError))
			Expect(srv.JSON()).To(Equal(map[string]any{
				"error":     "Internal Server Error",
				"requestId": "req-123",
			}))

			failures := capture.Failures()
			Expect(failures).To(HaveLen(1))
			Expect(failures[0].Message).To(Equal("boom"))
			Expect(failures[0].Error).To(BeTrue())
			Expect(failures[0].RequestID).To(Equal("req-123"))
			Expect(failures[0].Method).To(Equal(http.MethodGet))
			Expect(failures[0].URL).To(Equal("/things?page=2"))
			Expect(failures[0].Query).To(MatchJSON(`{"page":["2"]}`))
			Expect(failures[0].Time).NotTo(BeZero())
		})

		It("never sends the error message to the client", func() {
			srv := routetest.New(http.MethodGet, "/")
			srv.Serve(builder.Create(throws("db password is hunter2")))

			Expect(srv.Recorder.Body.String()).NotTo(ContainSubstring("hunter2"))
		})

		It("omits requestId when no step assigned one", func() {
			srv := routetest.New(http.MethodGet, "/")
			srv.Serve(builder.Create(throws("boom")))

			Expect(srv.JSON()).To(Equal(map[string]any{"error": "Internal Server Error"}))
			Expect(capture.Failures()[0].RequestID).To(BeEmpty())
		})

		It("does not run the steps after the failing one", func() {
			ran := false
			after := func(_ context.Context, c route.Context) (route.Context, error) {
				ran = true
				return c, nil
			}

			srv := routetest.New(http.MethodGet, "/")
			srv.Serve(builder.Create(throws("boom"), after))

			Expect(ran).To(BeFalse())
		})

		It("treats a panic like any other failure", func() {
			explode := func(context.Context, route.Context) (route.Context, error) { panic("kaboom") }

			srv := routetest.New(http.MethodGet, "/")
			srv.Serve(builder.Create(setRequestID("p-1"), explode))

			Expect(srv.Recorder.Code).To(Equal(http.StatusInternalServerError))
			Expect(capture.Failures()).To(HaveLen(1))
			Expect(capture.Failures()[0].Message).To(ContainSubstring("kaboom"))
		})

		It("redacts credentials from the logged headers and body", func() {
			srv := routetest.New(http.MethodPost, "/login",
				routetest.WithHeader("Authorization", "Bearer secret"),
				routetest.WithHeader("Cookie", "session=abc"),
				routetest.WithHeader("X-Api-Key", "sk-123"),
				routetest.WithHeader("Accept", "application/json"),
				routetest.WithJSON(map[string]any{
					"password": "p", "token": "t", "apiKey": "k", "secret": "s", "user": "ada",
				}),
			)
			srv.Serve(builder.Create(throws("boom")))

			f := capture.Failures()[0]
			var headers map[string]string
			Expect(json.Unmarshal([]byte(f.Headers), &headers)).To(Succeed())
			Expect(headers).To(HaveKeyWithValue("accept", "application/json"))
			Expect(headers).NotTo(HaveKey("authorization"))
			Expect(headers).NotTo(HaveKey("cookie"))
			Expect(headers).NotTo(HaveKey("x-api-key"))
			Expect(f.Body).To(MatchJSON(`{"user":"ada"}`))
		})

		It("logs a non-object body unchanged", func() {
			srv := routetest.New(http.MethodPost, "/", routetest.WithJSON("token=abc"))
			srv.Serve(builder.Create(throws("boom")))

			Expect(capture.Failures()[0].Body).To(Equal(`"token=abc"`))
		})
	})

	When("all steps succeed", func() {
		It("leaves the response written by the last step untouched and logs nothing", func() {
			srv := routetest.New(http.MethodGet, "/")
			srv.Serve(builder.Create(writeOK))

			Expect(srv.Recorder.Code).To(Equal(http.StatusOK))
			Expect(srv.JSON()).To(Equal(map[string]any{"message": "ok"}))
			Expect(capture.Failures()).To(BeEmpty())
		})

		It("sends nothing when no step writes", func() {
			srv := routetest.New(http.MethodGet, "/")
			srv.Serve(builder.Create(setRequestID("x")))

			Expect(srv.Response.Written()).To(BeFalse())
			Expect(srv.Recorder.Body.Len()).To(BeZero())
		})
	})

	It("runs steps in declaration order", func() {
		var order []int
		mark := func(n int) route.Step {
			return func(_ context.Context, c route.Context) (route.Context, error) {
				order = append(order, n)
				return c, nil
			}
		}

		srv := routetest.New(http.MethodGet, "/")
		srv.Serve(builder.Create(mark(1), mark(2), mark(3), writeOK))

		Expect(order).To(Equal([]int{1, 2, 3}))
	})

	It("keeps concurrent invocations isolated", func() {
		h := builder.Create(
			func(_ context.Context, c route.Context) (route.Context, error) {
				c.Response.Locals["owner"] = c.Request.Query.Get("id")
				time.Sleep(5 * time.Millisecond)
				return c, nil
			},
			func(_ context.Context, c route.Context) (route.Context, error) {
				return c, c.Response.JSON(map[string]any{"owner": c.Response.Locals["owner"]})
			},
		)

		const n = 20
		servers := make([]*routetest.Server, n)
		var wg sync.WaitGroup
		for i := range n {
			servers[i] = routetest.New(http.MethodGet, fmt.Sprintf("/?id=%d", i))
			wg.Add(1)
			go func(s *routetest.Server) {
				defer GinkgoRecover()
				defer wg.Done()
				s.Serve(h)
			}(servers[i])
		}
		wg.Wait()

		for i, s := range servers {
			Expect(s.JSON()).To(HaveKeyWithValue("owner", fmt.Sprint(i)))
		}
		Expect(capture.Failures()).To(BeEmpty())
	})

	It("hands an oversized body to steps intact without decoding it", func() {
		payload := map[string]any{"data": strings.Repeat("a", 2<<20)}
		want, err := json.Marshal(payload)
		Expect(err).NotTo(HaveOccurred())

		var got []byte
		readAll := func(_ context.Context, c route.Context) (route.Context, error) {
			var err error
			got, err = io.ReadAll(c.Request.HTTP.Body)
			return c, err
		}

		srv := routetest.New(http.MethodPost, "/upload", routetest.WithJSON(payload))
		srv.Serve(builder.Create(readAll, writeOK))

		Expect(srv.Request.Body).To(BeNil())
		Expect(got).To(HaveLen(len(want)))
		Expect(got).To(Equal(want))
		Expect(capture.Failures()).To(BeEmpty())
	})

	It("still decodes a body of exactly 1 MiB", func() {
		// {"data":""} is 11 bytes.
		data := strings.Repeat("b", 1<<20-11)
		srv := routetest.New(http.MethodPost, "/", routetest.WithJSON(map[string]any{"data": data}))

		Expect(srv.Request.HTTP.ContentLength).To(BeEquivalentTo(1 << 20))
		Expect(srv.Request.Body).To(HaveKeyWithValue("data", data))
	})

	It("shares the sink between named copies", func() {
		named := builder.Named("orders")

		srv := routetest.New(http.MethodGet, "/")
		srv.Serve(named.Create(throws("boom")))

		Expect(named).NotTo(BeIdenticalTo(builder))
		Expect(capture.Failures()).To(HaveLen(1))
	})

	It("serves net/http requests directly", func() {
		h := builder.Create(func(_ context.Context, c route.Context) (route.Context, error) {
			return c, c.Response.Status(http.StatusCreated).JSON(map[string]any{"echo": c.Request.Body})
		})

		srv := routetest.New(http.MethodPost, "/", routetest.WithJSON(map[string]any{"a": 1}))
		h.ServeHTTP(srv.Recorder, srv.Request.HTTP)

		Expect(srv.Recorder.Code).To(Equal(http.StatusCreated))
		Expect(srv.Recorder.Body.String()).To(MatchJSON(`{"echo":{"a":1}}`))
	})
})

var _ = Describe("LogSink", func() {
	It("writes one JSON record with the failure fields", func() {
		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, nil))
		builder := route.New(route.WithLogger(logger))

		srv := routetest.New(http.MethodGet, "/boom")
		srv.Serve(builder.Create(setRequestID("abc"), throws("boom")))

		lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
		Expect(lines).To(HaveLen(1))

		var rec map[string]any
		Expect(json.Unmarshal(lines[0], &rec)).To(Succeed())
		Expect(rec).To(HaveKeyWithValue("level", "ERROR"))
		Expect(rec).To(HaveKeyWithValue("error", true))
		Expect(rec).To(HaveKeyWithValue("message", "boom"))
		Expect(rec).To(HaveKeyWithValue("requestId", "abc"))
		Expect(rec).To(HaveKeyWithValue("method", "GET"))
		Expect(rec).To(HaveKeyWithValue("url", "/boom"))
		Expect(rec).To(HaveKey("headers"))
		Expect(rec).To(HaveKey("query"))

		Expect(rec).NotTo(HaveKey("body"))

		for _, key := range []string{"time", "timestamp"} {
			ts, ok := rec[key].(string)
			Expect(ok).To(BeTrue(), key)
			_, err := time.Parse(time.RFC3339Nano, ts)
			Expect(err).NotTo(HaveOccurred(), key)
		}
	})

	It("omits an empty request id", func() {
		var buf bytes.Buffer
		route.LogSink(slog.New(slog.NewJSONHandler(&buf, nil)))(context.Background(), route.Failure{Message: "no id"})

		var rec map[string]any
		Expect(json.Unmarshal(buf.Bytes(), &rec)).To(Succeed())
		Expect(rec).NotTo(HaveKey("requestId"))
		Expect(rec).NotTo(HaveKey("body"))
	})

	It("keeps the date in the pretty format", func() {
		var buf bytes.Buffer
		logger := logging.NewLogger(&buf, slog.LevelInfo, "pretty", "", "")
		at := time.Date(2026, 1, 2, 3, 4, 5, 6, time.UTC)

		route.LogSink(logger)(context.Background(), route.Failure{
			Time: at, Message: "boom", Error: true, Body: `{"user":"ada"}`,
		})

		Expect(buf.String()).To(ContainSubstring("2026-01-02T03:04:05.000000006Z"))
		Expect(buf.String()).To(ContainSubstring("request failed"))
	})

	It("respects the logger level", func() {
		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelError + 1}))

		route.LogSink(logger)(context.Background(), route.Failure{Message: "quiet"})
		Expect(buf.Len()).To(BeZero())
	})
})
