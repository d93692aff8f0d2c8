package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// HTTPMetrics records request level metrics.
type HTTPMetrics interface {
	HTTPStarted()
	HTTPFinished()
	ObserveHTTPRequest(method, path string, status int, d time.Duration)
}

// unmatchedRoute labels requests that hit no route.
const unmatchedRoute = "unmatched"

// Metrics returns a middleware that records HTTP metrics labelled by route
// pattern rather than raw path, keeping account ids out of label values.
func Metrics(m HTTPMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			m.HTTPStarted()
			defer m.HTTPFinished()

			wrapped := newStatusRecorder(w)
			next.ServeHTTP(wrapped, r)

			m.ObserveHTTPRequest(r.Method, routePattern(r), wrapped.statusCode, time.Since(start))
		})
	}
}

func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return unmatchedRoute
	}
	if pattern := rctx.RoutePattern(); pattern != "" {
		return pattern
	}
	return unmatchedRoute
}
