package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/menezmethod/routekit/internal/apierror"
)

// Recover returns middleware that catches panics escaping plain handlers,
// logs the stack trace and answers with the generic 500 body. Route
// handlers never get here; their panics end in the route's own boundary.
func Recover(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					logger.Error("panic recovered",
						"error", err,
						"stack", string(debug.Stack()),
						"method", r.Method,
						"path", r.URL.Path,
					)
					apierror.Write(w, apierror.Internal(w.Header().Get("X-Request-ID")))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
