// Package idempotency remembers the response to every keyed mutation so a
// retried request is answered without touching a wallet twice.
package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ayo6706/lottery-wallet/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var (
	ErrNotFound     = errors.New("idempotency key not found")
	ErrHashMismatch = errors.New("idempotency key body mismatch")
	ErrInProgress   = errors.New("idempotency key in progress")
)

const (
	cachePrefix  = "idempotency:"
	pollInterval = 50 * time.Millisecond

	servedByCache    = "redis"
	servedByDatabase = "database"
)

// Record is a completed response. ServedBy names the tier it came from.
type Record struct {
	Key         string
	RequestHash string
	Status      int
	Body        []byte
	ContentType string
	ServedBy    string
}

// Source hands out the durable statement set. Both repository.Store and
// repository.MemoryStore satisfy it.
type Source interface {
	Queries() repository.Querier
}

// Store keeps the durable record of every key in the database and serves
// completed responses from Redis when one is configured. Redis is a pure
// read cache: a miss or an outage falls through to the database.
type Store struct {
	cache redis.Cmdable
	db    Source
	ttl   time.Duration
}

func NewStore(cache redis.Cmdable, db Source, ttl time.Duration) *Store {
	return &Store{cache: cache, db: db, ttl: ttl}
}

type cachedRecord struct {
	Hash        string `json:"hash"`
	Status      int    `json:"status"`
	Body        []byte `json:"body"`
	ContentType string `json:"content_type"`
}

// Lookup returns the completed response for key. The request hash must match
// the one the key was first used with.
func (s *Store) Lookup(ctx context.Context, key, requestHash string) (*Record, error) {
	if rec, ok := s.fromCache(ctx, key); ok {
		if rec.RequestHash != requestHash {
			return nil, ErrHashMismatch
		}
		return rec, nil
	}

	row, err := s.db.Queries().GetIdempotencyKey(ctx, key)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("lookup idempotency key: %w", err)
	}
	if row.RequestHash != requestHash {
		return nil, ErrHashMismatch
	}
	if row.InProgress {
		return nil, ErrInProgress
	}
	rec := fromRow(row)
	s.store(ctx, rec)
	return rec, nil
}

// Reserve claims key for the caller. It reports false when another request
// already holds or completed it.
func (s *Store) Reserve(ctx context.Context, key, requestHash, method, path string) (bool, error) {
	_, err := s.db.Queries().ReserveIdempotencyKey(ctx, repository.ReserveIdempotencyKeyParams{
		IdempotencyKey: key,
		RequestHash:    requestHash,
		Method:         method,
		Path:           path,
	})
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, pgx.ErrNoRows):
		return false, nil
	default:
		return false, fmt.Errorf("reserve idempotency key: %w", err)
	}
}

// Finalize stores the response for a reserved key.
func (s *Store) Finalize(ctx context.Context, key, requestHash string, status int, body []byte, contentType string) (*Record, error) {
	row, err := s.db.Queries().FinalizeIdempotencyKey(ctx, repository.FinalizeIdempotencyKeyParams{
		ResponseStatus: int32(status),
		ResponseBody:   body,
		ContentType:    contentType,
		IdempotencyKey: key,
		RequestHash:    requestHash,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("finalize idempotency key: %w", err)
	}
	rec := fromRow(row)
	s.store(ctx, rec)
	return rec, nil
}

// Release drops a reservation that never completed, so the client may retry
// with the same key. A completed key is never released.
func (s *Store) Release(ctx context.Context, key, requestHash string) error {
	if _, err := s.db.Queries().ReleaseIdempotencyKey(ctx, repository.ReleaseIdempotencyKeyParams{
		IdempotencyKey: key,
		RequestHash:    requestHash,
	}); err != nil {
		return fmt.Errorf("release idempotency key: %w", err)
	}
	return nil
}

// WaitForCompletion polls until the request holding key finishes or ctx
// ends. A released key surfaces as ErrNotFound.
func (s *Store) WaitForCompletion(ctx context.Context, key, requestHash string) (*Record, error) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		rec, err := s.Lookup(ctx, key, requestHash)
		if !errors.Is(err, ErrInProgress) {
			return rec, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (s *Store) fromCache(ctx context.Context, key string) (*Record, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, cachePrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			zap.L().Warn("idempotency cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	var c cachedRecord
	if err := json.Unmarshal(raw, &c); err != nil {
		zap.L().Warn("idempotency cache entry unreadable", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return &Record{
		Key:         key,
		RequestHash: c.Hash,
		Status:      c.Status,
		Body:        c.Body,
		ContentType: c.ContentType,
		ServedBy:    servedByCache,
	}, true
}

func (s *Store) store(ctx context.Context, rec *Record) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(cachedRecord{
		Hash:        rec.RequestHash,
		Status:      rec.Status,
		Body:        rec.Body,
		ContentType: rec.ContentType,
	})
	if err != nil {
		zap.L().Warn("idempotency cache encode failed", zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, cachePrefix+rec.Key, payload, s.ttl).Err(); err != nil {
		zap.L().Warn("idempotency cache write failed", zap.String("key", rec.Key), zap.Error(err))
	}
}

func fromRow(row repository.IdempotencyKey) *Record {
	return &Record{
		Key:         row.IdempotencyKey,
		RequestHash: row.RequestHash,
		Status:      int(row.ResponseStatus),
		Body:        row.ResponseBody,
		ContentType: row.ContentType,
		ServedBy:    servedByDatabase,
	}
}
