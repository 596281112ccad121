package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/ayo6706/lottery-wallet/internal/api/problem"
	"github.com/ayo6706/lottery-wallet/internal/idempotency"
	"github.com/ayo6706/lottery-wallet/internal/observability"
	"go.uber.org/zap"
)

const (
	maxIdempotencyKeyLen = 128
	replayWaitTimeout    = 5 * time.Second
)

// IdempotencyMiddleware requires an Idempotency-Key on mutating requests and
// replays the stored response when the same caller repeats a key with the
// same body. Keys are scoped to the authenticated caller.
func IdempotencyMiddleware(store *idempotency.Store, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if store == nil || r.Method == http.MethodGet || r.Method == http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}

			clientKey := r.Header.Get("Idempotency-Key")
			if clientKey == "" || len(clientKey) > maxIdempotencyKeyLen {
				observability.IncrementIdempotencyEvent("missing_key")
				problem.Write(w, r, http.StatusBadRequest, problem.Type("idempotency/missing-key"), "", "Idempotency-Key header is required")
				return
			}
			key := UserIDFromContext(r.Context()) + ":" + clientKey

			body, err := io.ReadAll(r.Body)
			if err != nil {
				problem.Write(w, r, http.StatusBadRequest, problem.Type("request/invalid-body"), "", "Failed to read request body")
				return
			}
			_ = r.Body.Close()
			r.Body = io.NopCloser(bytes.NewReader(body))
			reqHash := hashRequest(r.Method, r.URL.Path, body)

			rec, err := store.Lookup(r.Context(), key, reqHash)
			switch {
			case err == nil:
				observability.IncrementIdempotencyEvent("replay")
				respondFromRecord(w, rec)
				return
			case errors.Is(err, idempotency.ErrHashMismatch):
				observability.IncrementIdempotencyEvent("hash_mismatch")
				problem.Write(w, r, http.StatusConflict, problem.Type("idempotency/key-conflict"), "", "Idempotency-Key was already used with a different request")
				return
			case errors.Is(err, idempotency.ErrInProgress):
				awaitReplay(w, r, store, logger, key, reqHash, "replay_after_wait")
				return
			case !errors.Is(err, idempotency.ErrNotFound):
				observability.IncrementIdempotencyEvent("lookup_error")
				logger.Warn("idempotency lookup failed", zap.Error(err))
			}

			reserved, err := store.Reserve(r.Context(), key, reqHash, r.Method, r.URL.Path)
			if err != nil {
				observability.IncrementIdempotencyEvent("reserve_error")
				logger.Error("idempotency reserve failed", zap.Error(err))
				problem.Write(w, r, http.StatusServiceUnavailable, problem.Type("idempotency/unavailable"), "", "idempotency store unavailable")
				return
			}
			if !reserved {
				awaitReplay(w, r, store, logger, key, reqHash, "replay_after_reserve")
				return
			}
			observability.IncrementIdempotencyEvent("reserved")

			recorder := &bodyRecorder{ResponseWriter: w}
			next.ServeHTTP(recorder, r)
			if recorder.status == 0 {
				recorder.status = http.StatusOK
			}
			contentType := recorder.Header().Get("Content-Type")
			if contentType == "" {
				contentType = "application/json"
			}

			// The request context may already be cancelled by the client.
			finalizeCtx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), 2*time.Second)
			defer cancel()
			if recorder.status >= http.StatusInternalServerError {
				if err := store.Release(finalizeCtx, key, reqHash); err != nil {
					logger.Warn("idempotency release failed", zap.Error(err), zap.String("key", clientKey))
					return
				}
				observability.IncrementIdempotencyEvent("released")
				return
			}
			if _, err := store.Finalize(finalizeCtx, key, reqHash, recorder.status, recorder.body.Bytes(), contentType); err != nil {
				observability.IncrementIdempotencyEvent("finalize_error")
				logger.Warn("idempotency finalize failed", zap.Error(err), zap.String("key", clientKey))
				return
			}
			observability.IncrementIdempotencyEvent("finalized")
		})
	}
}

// awaitReplay waits for a concurrent request holding the same key to finish
// and replays its response.
func awaitReplay(w http.ResponseWriter, r *http.Request, store *idempotency.Store, logger *zap.Logger, key, reqHash, outcome string) {
	ctx, cancel := context.WithTimeout(r.Context(), replayWaitTimeout)
	defer cancel()
	rec, err := store.WaitForCompletion(ctx, key, reqHash)
	if err == nil {
		observability.IncrementIdempotencyEvent(outcome)
		respondFromRecord(w, rec)
		return
	}
	if errors.Is(err, idempotency.ErrHashMismatch) {
		observability.IncrementIdempotencyEvent("hash_mismatch")
		problem.Write(w, r, http.StatusConflict, problem.Type("idempotency/key-conflict"), "", "Idempotency-Key was already used with a different request")
		return
	}
	observability.IncrementIdempotencyEvent("in_progress_conflict")
	logger.Warn("idempotency wait failed", zap.Error(err))
	problem.Write(w, r, http.StatusConflict, problem.Type("idempotency/in-progress"), "", "a request with this Idempotency-Key is still processing")
}

func hashRequest(method, path string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(method + "|" + path + "|"))
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

type bodyRecorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (br *bodyRecorder) WriteHeader(code int) {
	br.status = code
	br.ResponseWriter.WriteHeader(code)
}

func (br *bodyRecorder) Write(b []byte) (int, error) {
	if br.status == 0 {
		br.status = http.StatusOK
	}
	br.body.Write(b)
	return br.ResponseWriter.Write(b)
}

func respondFromRecord(w http.ResponseWriter, rec *idempotency.Record) {
	w.Header().Set("Content-Type", rec.ContentType)
	w.Header().Set("X-Idempotent-Replay", rec.ServedBy)
	w.WriteHeader(rec.Status)
	_, _ = w.Write(rec.Body)
}
