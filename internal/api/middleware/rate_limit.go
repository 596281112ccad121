package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ayo6706/lottery-wallet/internal/api/problem"
	"github.com/go-chi/httprate"
)

// PublicRateLimiter limits unauthenticated routes per client IP.
func PublicRateLimiter(rps int) func(http.Handler) http.Handler {
	return httprate.Limit(rps, time.Second,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(limitExceeded(rps, "IP")),
	)
}

// AuthRateLimiter limits authenticated routes per wallet holder, falling back
// to the client IP when the request carries no identity.
func AuthRateLimiter(rps int) func(http.Handler) http.Handler {
	return httprate.Limit(rps, time.Second,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			if userID := UserIDFromContext(r.Context()); userID != "" {
				return "user:" + userID, nil
			}
			return httprate.KeyByIP(r)
		}),
		httprate.WithLimitHandler(limitExceeded(rps, "user")),
	)
}

func limitExceeded(rps int, scope string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		problem.Write(w, r, http.StatusTooManyRequests, problem.Type("rate-limit-exceeded"), "",
			fmt.Sprintf("Rate limit of %d req/s exceeded for this %s", rps, scope))
	}
}
