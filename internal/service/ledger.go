package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/ayo6706/lottery-wallet/internal/domain"
	"github.com/ayo6706/lottery-wallet/internal/models"
	"github.com/ayo6706/lottery-wallet/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	defaultStatementLimit = 50
	maxStatementLimit     = 500
)

// ActivityRecorder mirrors committed ledger entries into a secondary,
// non-authoritative index. Implementations must not fail the caller.
type ActivityRecorder interface {
	Record(ctx context.Context, entries ...models.LedgerEntry)
	// Forget drops entries that were removed from the ledger.
	Forget(ctx context.Context, accountID uuid.UUID, entryIDs ...uuid.UUID)
}

type nopRecorder struct{}

func (nopRecorder) Record(context.Context, ...models.LedgerEntry) {}

func (nopRecorder) Forget(context.Context, uuid.UUID, ...uuid.UUID) {}

// LedgerService exposes read access to the append-only ledger.
type LedgerService struct {
	store QueryStore
}

func NewLedgerService(store QueryStore) *LedgerService {
	return &LedgerService{store: store}
}

// LedgerWindow bounds a statement query. Zero times are open bounds.
type LedgerWindow struct {
	Limit  int
	Offset int
	Since  time.Time
	Until  time.Time
}

// ListForUser returns the account's ledger entries, most recent first.
func (s *LedgerService) ListForUser(ctx context.Context, userID uuid.UUID, window LedgerWindow) ([]models.LedgerEntry, error) {
	q := s.store.Queries()
	if _, err := q.GetAccount(ctx, repository.ToPgUUID(userID)); err != nil {
		return nil, notFound(err, models.ErrAccountNotFound, "get account")
	}

	limit, offset := clampPage(window.Limit, window.Offset, defaultStatementLimit, maxStatementLimit)
	rows, err := q.ListLedgerEntriesForAccount(ctx, repository.ListLedgerEntriesForAccountParams{
		AccountID: repository.ToPgUUID(userID),
		Since:     repository.ToPgTime(window.Since),
		Until:     repository.ToPgTime(window.Until),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}

	entries := make([]models.LedgerEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, toLedgerEntry(row))
	}
	return entries, nil
}

type entryInput struct {
	accountID   uuid.UUID
	entryType   string
	compartment string
	amount      int64
	currency    string
	note        string
	referenceID uuid.UUID
}

// appendEntry inserts one ledger row inside the caller's transaction.
func appendEntry(ctx context.Context, q repository.Querier, in entryInput) (models.LedgerEntry, error) {
	row, err := q.InsertLedgerEntry(ctx, repository.InsertLedgerEntryParams{
		ID:           repository.ToPgUUID(uuid.New()),
		AccountID:    repository.ToPgUUID(in.accountID),
		Type:         in.entryType,
		Compartment:  in.compartment,
		AmountMicros: in.amount,
		Currency:     in.currency,
		Note:         textParam(in.note),
		ReferenceID:  repository.ToPgUUID(in.referenceID),
	})
	if err != nil {
		return models.LedgerEntry{}, fmt.Errorf("append %s entry: %w", in.entryType, err)
	}
	return toLedgerEntry(row), nil
}

// adjustCompartment applies delta to one compartment with the non-negative
// guard evaluated at write time. A rejected debit is ErrInsufficientFunds.
func adjustCompartment(ctx context.Context, q repository.Querier, userID uuid.UUID, compartment string, delta int64) (repository.Account, error) {
	if !domain.IsCompartment(compartment) {
		return repository.Account{}, models.ErrInvalidCompartment
	}
	row, err := q.AdjustCompartment(ctx, repository.AdjustCompartmentParams{
		UserID:      repository.ToPgUUID(userID),
		Compartment: compartment,
		Delta:       delta,
	})
	if err == nil {
		return row, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return repository.Account{}, fmt.Errorf("adjust %s: %w", compartment, err)
	}
	if _, getErr := q.GetAccount(ctx, repository.ToPgUUID(userID)); getErr != nil {
		return repository.Account{}, notFound(getErr, models.ErrAccountNotFound, "get account")
	}
	return repository.Account{}, models.ErrInsufficientFunds
}

// lockAccounts takes row locks in a stable order so concurrent movers
// touching the same pair cannot deadlock.
func lockAccounts(ctx context.Context, q repository.Querier, ids ...uuid.UUID) (map[uuid.UUID]repository.Account, error) {
	ordered := append([]uuid.UUID(nil), ids...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].String() < ordered[j].String() })

	out := make(map[uuid.UUID]repository.Account, len(ordered))
	for _, id := range ordered {
		if _, ok := out[id]; ok {
			continue
		}
		row, err := q.GetAccountForUpdate(ctx, repository.ToPgUUID(id))
		if err != nil {
			return nil, notFound(err, models.ErrAccountNotFound, "lock account")
		}
		out[id] = row
	}
	return out, nil
}
