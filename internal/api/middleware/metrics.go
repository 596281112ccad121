package middleware

import (
	"net/http"
	"time"

	"github.com/ayo6706/lottery-wallet/internal/observability"
	"github.com/go-chi/chi/v5"
)

// MetricsMiddleware records request latency by route pattern so that path
// parameters do not explode label cardinality.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw, ok := w.(*statusRecorder)
		if !ok {
			rw = &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		}

		next.ServeHTTP(rw, r)

		observability.ObserveHTTP(r.Method, routePattern(r), rw.status, time.Since(start))
	})
}

func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if pattern := rc.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}
