package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// MemoryStore implements the same query set as Store with in-memory maps.
// Used for development (DATABASE_URL=memory) and tests. Not suitable for
// production (no persistence).
//
// A transaction holds the store mutex from start to finish and runs against
// the live state; a snapshot taken at begin is restored if fn fails, so
// transactions are fully serialized and all-or-nothing.
type MemoryStore struct {
	mu        sync.Mutex
	state     *memState
	txTimeout time.Duration
}

type memState struct {
	users        map[uuid.UUID]User
	accounts     map[uuid.UUID]Account
	accountOrder []uuid.UUID
	ledger       map[uuid.UUID]LedgerEntry
	ledgerOrder  []uuid.UUID
	bets         map[uuid.UUID]Bet
	betOrder     []uuid.UUID
	draws        map[uuid.UUID]Draw
	history      map[uuid.UUID]DrawHistory
	multipliers  map[string]Multiplier
	withdraws    map[uuid.UUID]WithdrawRequest
	audit        []AuditLog
	idempotency  map[string]IdempotencyKey
	seq          int64
}

// NewMemoryStore creates an empty store seeded with the default multiplier table.
func NewMemoryStore() *MemoryStore {
	st := &memState{
		users:       make(map[uuid.UUID]User),
		accounts:    make(map[uuid.UUID]Account),
		ledger:      make(map[uuid.UUID]LedgerEntry),
		bets:        make(map[uuid.UUID]Bet),
		draws:       make(map[uuid.UUID]Draw),
		history:     make(map[uuid.UUID]DrawHistory),
		multipliers: make(map[string]Multiplier),
		withdraws:   make(map[uuid.UUID]WithdrawRequest),
		idempotency: make(map[string]IdempotencyKey),
	}
	now := pgNow()
	for betType, m := range map[string]int64{"single": 9, "double": 90, "triple": 900} {
		st.multipliers[betType] = Multiplier{BetType: betType, Multiplier: decimal.NewFromInt(m), UpdatedAt: now}
	}
	return &MemoryStore{state: st}
}

// WithTxTimeout bounds every transaction; an expired transaction is rolled back.
func (s *MemoryStore) WithTxTimeout(d time.Duration) *MemoryStore {
	s.txTimeout = d
	return s
}

// Queries returns a query set where every call is individually atomic.
func (s *MemoryStore) Queries() Querier {
	return &memQueries{store: s}
}

// RunInTx executes fn with exclusive access to the store.
func (s *MemoryStore) RunInTx(ctx context.Context, fn func(q Querier) error) error {
	if s.txTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.txTimeout)
		defer cancel()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	snapshot := s.state.clone()
	if err := fn(&memQueries{store: s, inTx: true}); err != nil {
		s.state = snapshot
		return err
	}
	if err := ctx.Err(); err != nil {
		s.state = snapshot
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Ping always succeeds.
func (s *MemoryStore) Ping(context.Context) error {
	return nil
}

func (st *memState) clone() *memState {
	c := &memState{
		users:        make(map[uuid.UUID]User, len(st.users)),
		accounts:     make(map[uuid.UUID]Account, len(st.accounts)),
		accountOrder: append([]uuid.UUID(nil), st.accountOrder...),
		ledger:       make(map[uuid.UUID]LedgerEntry, len(st.ledger)),
		ledgerOrder:  append([]uuid.UUID(nil), st.ledgerOrder...),
		bets:         make(map[uuid.UUID]Bet, len(st.bets)),
		betOrder:     append([]uuid.UUID(nil), st.betOrder...),
		draws:        make(map[uuid.UUID]Draw, len(st.draws)),
		history:      make(map[uuid.UUID]DrawHistory, len(st.history)),
		multipliers:  make(map[string]Multiplier, len(st.multipliers)),
		withdraws:    make(map[uuid.UUID]WithdrawRequest, len(st.withdraws)),
		audit:        append([]AuditLog(nil), st.audit...),
		idempotency:  make(map[string]IdempotencyKey, len(st.idempotency)),
		seq:          st.seq,
	}
	for k, v := range st.users {
		c.users[k] = v
	}
	for k, v := range st.accounts {
		c.accounts[k] = v
	}
	for k, v := range st.ledger {
		c.ledger[k] = v
	}
	for k, v := range st.bets {
		c.bets[k] = v
	}
	for k, v := range st.draws {
		c.draws[k] = v
	}
	for k, v := range st.history {
		c.history[k] = v
	}
	for k, v := range st.multipliers {
		c.multipliers[k] = v
	}
	for k, v := range st.withdraws {
		c.withdraws[k] = v
	}
	for k, v := range st.idempotency {
		c.idempotency[k] = v
	}
	return c
}

func (st *memState) nextSeq() int64 {
	st.seq++
	return st.seq
}

func pgNow() pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: time.Now().UTC(), Valid: true}
}

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint", ConstraintName: constraint}
}

func foreignKeyViolation(constraint string) error {
	return &pgconn.PgError{Code: "23503", Message: "insert or update violates foreign key constraint", ConstraintName: constraint}
}
