package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

const maxTraceIDLen = 128

// TraceMiddleware tags every request with a trace id, reusing the caller's
// X-Trace-ID or X-Request-ID when present, and echoes it on the response.
func TraceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := incomingTraceID(r)
		if traceID == "" {
			traceID = uuid.NewString()
		}
		w.Header().Set("X-Trace-ID", traceID)
		ctx := context.WithValue(r.Context(), traceContextKey, traceID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func incomingTraceID(r *http.Request) string {
	for _, header := range []string{"X-Trace-ID", "X-Request-ID"} {
		v := strings.TrimSpace(r.Header.Get(header))
		if v != "" && len(v) <= maxTraceIDLen {
			return v
		}
	}
	return ""
}
