package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ayo6706/lottery-wallet/internal/domain"
	"github.com/ayo6706/lottery-wallet/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestTransferConservesFundsBetweenAccounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.newWallet(t, domain.RoleUser, 300)
	bob := f.newWallet(t, domain.RoleUser, 0)

	res, err := f.transfers.Transfer(ctx, TransferRequest{
		FromUserID:      alice.ID,
		FromCompartment: domain.CompartmentMain,
		ToUserID:        bob.ID,
		ToCompartment:   domain.CompartmentMain,
		AmountMicros:    units(120),
	})
	require.NoError(t, err)
	assert.Zero(t, res.InterestMicros)
	assert.Equal(t, units(180), res.From.Main)
	assert.Equal(t, units(120), res.To.Main)

	a, b := f.balances(t, alice.ID), f.balances(t, bob.ID)
	assert.Equal(t, int64(0), (a.Total()-units(300))+(b.Total()-0))

	assert.Equal(t, -units(120), sumEntries(f.entries(t, alice.ID), res.ReferenceID))
	assert.Equal(t, units(120), sumEntries(f.entries(t, bob.ID), res.ReferenceID))
	f.requireReconciled(t)
}

func TestTransferValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.newWallet(t, domain.RoleUser, 10)

	cases := []struct {
		name string
		req  TransferRequest
		want error
	}{
		{"zero amount", TransferRequest{FromUserID: alice.ID, FromCompartment: "main", ToUserID: alice.ID, ToCompartment: "bonus"}, models.ErrNonPositiveAmount},
		{"unknown compartment", TransferRequest{FromUserID: alice.ID, FromCompartment: "main", ToUserID: alice.ID, ToCompartment: "vault", AmountMicros: 1}, models.ErrInvalidCompartment},
		{"same compartment", TransferRequest{FromUserID: alice.ID, FromCompartment: "main", ToUserID: alice.ID, ToCompartment: "main", AmountMicros: 1}, models.ErrInvalidCompartment},
		{"bad policy", TransferRequest{FromUserID: alice.ID, FromCompartment: "main", ToUserID: alice.ID, ToCompartment: "bonus", AmountMicros: 1, Policy: "yolo"}, models.ErrInvalidPolicy},
		{"overdraft", TransferRequest{FromUserID: alice.ID, FromCompartment: "main", ToUserID: alice.ID, ToCompartment: "bonus", AmountMicros: units(11)}, models.ErrInsufficientFunds},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.transfers.Transfer(ctx, tc.req)
			require.ErrorIs(t, err, tc.want)
		})
	}
	assert.Equal(t, units(10), f.balances(t, alice.ID).Main)
}

func TestBankWithdrawalFoldsAccruedInterest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.newWallet(t, domain.RoleUser, 1000)

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	f.transfers.WithClock(func() time.Time { return now })

	_, err := f.transfers.Transfer(ctx, TransferRequest{
		FromUserID: user.ID, FromCompartment: domain.CompartmentMain,
		ToUserID: user.ID, ToCompartment: domain.CompartmentBank,
		AmountMicros: units(800),
	})
	require.NoError(t, err)

	now = now.Add(30 * time.Hour)
	res, err := f.transfers.Transfer(ctx, TransferRequest{
		FromUserID: user.ID, FromCompartment: domain.CompartmentBank,
		ToUserID: user.ID, ToCompartment: domain.CompartmentMain,
		AmountMicros: units(500),
	})
	require.NoError(t, err)

	// 500 * 2% * 30h/24h
	assert.Equal(t, int64(12_500_000), res.InterestMicros)
	b := f.balances(t, user.ID)
	assert.Equal(t, units(200)+units(500)+12_500_000, b.Main)
	assert.Equal(t, units(300), b.Bank)

	acc, err := f.accounts.Get(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, acc.BankRequestTime)
	assert.True(t, acc.BankRequestTime.Equal(now))

	f.requireReconciled(t)
}

func TestBankLockInWindow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.newWallet(t, domain.RoleUser, 100)

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	f.transfers.WithClock(func() time.Time { return now })

	_, err := f.transfers.Transfer(ctx, TransferRequest{
		FromUserID: user.ID, FromCompartment: domain.CompartmentMain,
		ToUserID: user.ID, ToCompartment: domain.CompartmentBank,
		AmountMicros: units(100),
	})
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)
	out := TransferRequest{
		FromUserID: user.ID, FromCompartment: domain.CompartmentBank,
		ToUserID: user.ID, ToCompartment: domain.CompartmentMain,
		AmountMicros: units(40),
	}
	_, err = f.transfers.Transfer(ctx, out)
	require.ErrorIs(t, err, models.ErrBankLocked)

	out.Policy = domain.PolicyNoInterestEarly
	res, err := f.transfers.Transfer(ctx, out)
	require.NoError(t, err)
	assert.Zero(t, res.InterestMicros)
	assert.Equal(t, units(40), res.To.Main)
	assert.Equal(t, units(60), res.To.Bank)
}

func TestOtherAccountsCannotResetBankLockIn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.newWallet(t, domain.RoleUser, 100)
	other := f.newWallet(t, domain.RoleUser, 10)

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	f.transfers.WithClock(func() time.Time { return now })

	_, err := f.transfers.Transfer(ctx, TransferRequest{
		FromUserID: owner.ID, FromCompartment: domain.CompartmentMain,
		ToUserID: owner.ID, ToCompartment: domain.CompartmentBank,
		AmountMicros: units(100),
	})
	require.NoError(t, err)
	before, err := f.accounts.Get(ctx, owner.ID)
	require.NoError(t, err)

	now = now.Add(23 * time.Hour)
	_, err = f.transfers.Transfer(ctx, TransferRequest{
		FromUserID: other.ID, FromCompartment: domain.CompartmentMain,
		ToUserID: owner.ID, ToCompartment: domain.CompartmentBank,
		AmountMicros: 1,
	})
	require.ErrorIs(t, err, models.ErrInvalidCompartment)

	after, err := f.accounts.Get(ctx, owner.ID)
	require.NoError(t, err)
	require.NotNil(t, after.BankRequestTime)
	require.NotNil(t, after.BankValidTransferTime)
	assert.True(t, after.BankRequestTime.Equal(*before.BankRequestTime))
	assert.True(t, after.BankValidTransferTime.Equal(*before.BankValidTransferTime))
	assert.Equal(t, units(10), f.balances(t, other.ID).Main)

	// The owner's original lock-in still expires on schedule.
	now = now.Add(2 * time.Hour)
	_, err = f.transfers.Transfer(ctx, TransferRequest{
		FromUserID: owner.ID, FromCompartment: domain.CompartmentBank,
		ToUserID: owner.ID, ToCompartment: domain.CompartmentMain,
		AmountMicros: units(50),
	})
	require.NoError(t, err)
	f.requireReconciled(t)
}

func TestDepositFromAgent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	agent := f.newWallet(t, domain.RoleAgent, 500)
	user := f.newWallet(t, domain.RoleUser, 0)

	_, err := f.transfers.Deposit(ctx, agent.ID, user.ID, units(200))
	require.NoError(t, err)

	acc, err := f.accounts.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, units(200), acc.Balances.Main)
	assert.Equal(t, int64(1), acc.Stats.DepositCount)
	assert.Equal(t, units(300), f.balances(t, agent.ID).Main)

	_, err = f.transfers.Deposit(ctx, agent.ID, agent.ID, units(1))
	require.Error(t, err)
}

func TestConcurrentTransfersNeverOverdraw(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.newWallet(t, domain.RoleUser, 100)
	bob := f.newWallet(t, domain.RoleUser, 100)

	var g errgroup.Group
	results := make([]error, 20)
	for i := range results {
		i := i
		from, to := alice, bob
		if i%2 == 1 {
			from, to = bob, alice
		}
		g.Go(func() error {
			_, results[i] = f.transfers.Transfer(ctx, TransferRequest{
				FromUserID: from.ID, FromCompartment: domain.CompartmentMain,
				ToUserID: to.ID, ToCompartment: domain.CompartmentMain,
				AmountMicros: units(30),
			})
			return nil
		})
	}
	require.NoError(t, g.Wait())

	for _, err := range results {
		if err != nil {
			require.True(t, errors.Is(err, models.ErrInsufficientFunds), "unexpected error: %v", err)
		}
	}
	a, b := f.balances(t, alice.ID), f.balances(t, bob.ID)
	assert.GreaterOrEqual(t, a.Main, int64(0))
	assert.GreaterOrEqual(t, b.Main, int64(0))
	assert.Equal(t, units(200), a.Main+b.Main)
	f.requireReconciled(t)
}
