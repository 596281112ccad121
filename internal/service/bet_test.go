package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/ayo6706/lottery-wallet/internal/domain"
	"github.com/ayo6706/lottery-wallet/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestPlaceBetDebitsMainAndFreezesPrize(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.newWallet(t, domain.RoleUser, 1000)

	res, err := f.bets.PlaceBet(ctx, PlaceBetRequest{UserID: user.ID, Number: 7, AmountMicros: units(100)})
	require.NoError(t, err)
	assert.Equal(t, domain.BetTypeSingle, res.BetType)
	assert.Equal(t, units(900), res.PrizeMicros)
	assert.Equal(t, units(900), res.MainMicros)

	bet, err := f.bets.Get(ctx, res.BetID)
	require.NoError(t, err)
	assert.Equal(t, domain.BetStatusPending, bet.Status)
	assert.True(t, bet.Multiplier.Equal(decimal.NewFromInt(9)))

	acc, err := f.accounts.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), acc.Stats.TotalBets)

	// Changing the table afterwards does not touch the placed bet.
	_, err = NewMultiplierService(f.store).Set(ctx, map[string]decimal.Decimal{domain.BetTypeSingle: decimal.NewFromInt(5)})
	require.NoError(t, err)
	bet, err = f.bets.Get(ctx, res.BetID)
	require.NoError(t, err)
	assert.Equal(t, units(900), bet.PrizeMicros)

	list, err := f.bets.ListForUser(ctx, user.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)

	f.requireReconciled(t)
}

func TestPlaceBetValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.newWallet(t, domain.RoleUser, 10)

	_, err := f.bets.PlaceBet(ctx, PlaceBetRequest{UserID: user.ID, Number: 1000, AmountMicros: units(1)})
	require.ErrorIs(t, err, models.ErrInvalidBetType)

	_, err = f.bets.PlaceBet(ctx, PlaceBetRequest{UserID: user.ID, Number: 5, AmountMicros: 0})
	require.ErrorIs(t, err, models.ErrNonPositiveAmount)

	_, err = f.bets.PlaceBet(ctx, PlaceBetRequest{UserID: user.ID, Number: 5, AmountMicros: units(11)})
	require.ErrorIs(t, err, models.ErrInsufficientFunds)

	_, err = f.bets.Get(ctx, uuid.New())
	require.ErrorIs(t, err, models.ErrBetNotFound)
}

func TestPlaceBetRejectsUnstorablePrizeBeforeDebit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.newWallet(t, domain.RoleUser, 20_000_000_000)

	_, err := f.bets.PlaceBet(ctx, PlaceBetRequest{UserID: user.ID, Number: 123, AmountMicros: units(20_000_000_000)})
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, domain.ErrAmountOutOfRange)

	acc, err := f.accounts.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, units(20_000_000_000), acc.Balances.Main)
	assert.Zero(t, acc.Stats.TotalBets)

	list, err := f.bets.ListForUser(ctx, user.ID, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}

type failingProvider struct{ calls atomic.Int32 }

func (p *failingProvider) Multiplier(context.Context, string) (decimal.Decimal, error) {
	p.calls.Add(1)
	return decimal.Zero, errors.New("table unavailable")
}

func TestPlaceBetFallsBackToDefaultMultipliers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.newWallet(t, domain.RoleUser, 10)
	provider := &failingProvider{}
	bets := NewBetService(f.store, provider)

	res, err := bets.PlaceBet(ctx, PlaceBetRequest{UserID: user.ID, Number: 42, AmountMicros: units(2)})
	require.NoError(t, err)
	assert.Equal(t, int32(1), provider.calls.Load())
	assert.Equal(t, domain.BetTypeDouble, res.BetType)
	assert.Equal(t, units(180), res.PrizeMicros)
}

func TestConcurrentBetsNeverDoubleDebit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.newWallet(t, domain.RoleUser, 1000)

	var g errgroup.Group
	errs := make([]error, 2)
	for i := range errs {
		i := i
		g.Go(func() error {
			_, errs[i] = f.bets.PlaceBet(ctx, PlaceBetRequest{UserID: user.ID, Number: 123, AmountMicros: units(600)})
			return nil
		})
	}
	require.NoError(t, g.Wait())

	var ok, insufficient int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, models.ErrInsufficientFunds):
			insufficient++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, insufficient)
	assert.Equal(t, units(400), f.balances(t, user.ID).Main)
	f.requireReconciled(t)
}

func TestMultiplierSetValidation(t *testing.T) {
	f := newFixture(t)
	svc := NewMultiplierService(f.store)
	ctx := context.Background()

	_, err := svc.Set(ctx, map[string]decimal.Decimal{"quad": decimal.NewFromInt(1)})
	require.ErrorIs(t, err, models.ErrInvalidBetType)

	_, err = svc.Set(ctx, map[string]decimal.Decimal{domain.BetTypeTriple: decimal.NewFromInt(-1)})
	require.Error(t, err)

	list, err := svc.Set(ctx, map[string]decimal.Decimal{domain.BetTypeTriple: decimal.NewFromInt(800)})
	require.NoError(t, err)
	require.Len(t, list, 3)

	m, err := NewTableMultiplierProvider(f.store).Multiplier(ctx, domain.BetTypeTriple)
	require.NoError(t, err)
	assert.True(t, m.Equal(decimal.NewFromInt(800)))
}
