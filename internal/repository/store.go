package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"

	txAttempts = 3
)

// Store is the Postgres system of record. Each RunInTx call is one atomic
// wallet unit.
type Store struct {
	pool      *pgxpool.Pool
	queries   *Queries
	txTimeout time.Duration
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{
		pool:    pool,
		queries: New(pool),
	}
}

// WithTxTimeout bounds every transaction; an expired transaction is rolled back.
func (s *Store) WithTxTimeout(d time.Duration) *Store {
	s.txTimeout = d
	return s
}

// Queries returns the non-transactional query set.
func (s *Store) Queries() Querier {
	return s.queries
}

// RunInTx runs fn in a READ COMMITTED transaction. A deadlock or
// serialization failure rolls the unit back and runs fn again from scratch,
// so fn must not keep state between attempts.
func (s *Store) RunInTx(ctx context.Context, fn func(q Querier) error) error {
	if s.txTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.txTimeout)
		defer cancel()
	}

	var err error
	for attempt := 1; attempt <= txAttempts; attempt++ {
		err = s.runOnce(ctx, fn)
		if err == nil || !retryable(err) || ctx.Err() != nil {
			return err
		}
		zap.L().Warn("transaction conflict, retrying", zap.Int("attempt", attempt), zap.Error(err))
	}
	return err
}

func (s *Store) runOnce(ctx context.Context, fn func(q Querier) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	if err := fn(s.queries.WithTx(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func retryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgSerializationFailure || pgErr.Code == pgDeadlockDetected
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
