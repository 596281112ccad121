package service

import (
	"context"
	"os"
	"testing"

	"github.com/ayo6706/lottery-wallet/internal/db"
	"github.com/ayo6706/lottery-wallet/internal/domain"
	"github.com/ayo6706/lottery-wallet/internal/models"
	"github.com/ayo6706/lottery-wallet/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// newTestStore returns a clean Postgres store when DATABASE_URL points at a
// database, and the in-memory store otherwise.
func newTestStore(t *testing.T) QueryStore {
	t.Helper()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" || dbURL == "memory" {
		return repository.NewMemoryStore()
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, dbURL)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, db.Migrate(ctx, pool))
	_, err = pool.Exec(ctx, `TRUNCATE TABLE audit_log, idempotency_keys, withdraw_requests, bets, draw_history, draws, ledger_entries, accounts, users CASCADE`)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `INSERT INTO multipliers (bet_type, multiplier) VALUES ('single', 9), ('double', 90), ('triple', 900)
		ON CONFLICT (bet_type) DO UPDATE SET multiplier = EXCLUDED.multiplier`)
	require.NoError(t, err)
	return repository.NewStore(pool)
}

// units converts whole currency units to micros.
func units(n int64) int64 { return domain.Units(n) }

type fixture struct {
	store       QueryStore
	identity    *IdentityService
	accounts    *AccountService
	ledger      *LedgerService
	transfers   *TransferService
	bets        *BetService
	draws       *DrawService
	settlement  *SettlementService
	withdrawals *WithdrawService
	recon       *ReconciliationService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := newTestStore(t)
	return &fixture{
		store:       store,
		identity:    NewIdentityService(store),
		accounts:    NewAccountService(store, AccountConfig{Currency: domain.DefaultCurrency}),
		ledger:      NewLedgerService(store),
		transfers:   NewTransferService(store, decimal.NewFromInt(2)),
		bets:        NewBetService(store, nil),
		draws:       NewDrawService(store),
		settlement:  NewSettlementService(store, 2),
		withdrawals: NewWithdrawService(store, units(100)),
		recon:       NewReconciliationService(store),
	}
}

// newWallet creates a user with an open account funded with mainUnits.
func (f *fixture) newWallet(t *testing.T, role string, mainUnits int64) *models.User {
	t.Helper()
	ctx := context.Background()
	short := uuid.NewString()[:8]
	user, err := f.identity.CreateUser(ctx, CreateUserInput{
		Username: role + "_" + short,
		Email:    role + "_" + short + "@example.com",
		Role:     role,
	})
	require.NoError(t, err)
	_, err = f.accounts.Open(ctx, user.ID)
	require.NoError(t, err)
	if mainUnits > 0 {
		_, err = f.accounts.TopUp(ctx, user.ID, units(mainUnits), "", nil)
		require.NoError(t, err)
	}
	return user
}

func (f *fixture) balances(t *testing.T, userID uuid.UUID) models.Balances {
	t.Helper()
	acc, err := f.accounts.Get(context.Background(), userID)
	require.NoError(t, err)
	return acc.Balances
}

func (f *fixture) entries(t *testing.T, userID uuid.UUID) []models.LedgerEntry {
	t.Helper()
	out, err := f.ledger.ListForUser(context.Background(), userID, LedgerWindow{Limit: maxStatementLimit})
	require.NoError(t, err)
	return out
}

// requireReconciled asserts every account's balance is explained by its ledger.
func (f *fixture) requireReconciled(t *testing.T) {
	t.Helper()
	report, err := f.recon.Run(context.Background())
	require.NoError(t, err)
	require.Empty(t, report.Mismatched)
}

func sumEntries(entries []models.LedgerEntry, reference uuid.UUID) int64 {
	var total int64
	for _, e := range entries {
		if e.ReferenceID == reference {
			total += e.AmountMicros
		}
	}
	return total
}
