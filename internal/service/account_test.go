package service

import (
	"context"
	"testing"

	"github.com/ayo6706/lottery-wallet/internal/domain"
	"github.com/ayo6706/lottery-wallet/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenCreditsWelcomeAndReferralBonus(t *testing.T) {
	f := newFixture(t)
	f.accounts = NewAccountService(f.store, AccountConfig{
		WelcomeBonusMicros:   units(50),
		ReferralRewardMicros: units(20),
	})
	ctx := context.Background()

	referrer := f.newWallet(t, domain.RoleUser, 0)
	referred, err := f.identity.CreateUser(ctx, CreateUserInput{
		Username:   "referred",
		Email:      "referred_" + uuid.NewString()[:8] + "@example.com",
		ReferrerID: &referrer.ID,
	})
	require.NoError(t, err)

	acc, err := f.accounts.Open(ctx, referred.ID)
	require.NoError(t, err)
	assert.Equal(t, units(50), acc.Balances.Bonus)
	assert.Equal(t, domain.DefaultCurrency, acc.Currency)

	ref := f.balances(t, referrer.ID)
	assert.Equal(t, units(50), ref.Bonus)
	assert.Equal(t, units(20), ref.Referral)

	entries := f.entries(t, referrer.ID)
	require.NotEmpty(t, entries)
	assert.Equal(t, domain.EntryTypeReferral, entries[0].Type)

	f.requireReconciled(t)
}

func TestOpenTwiceFails(t *testing.T) {
	f := newFixture(t)
	user := f.newWallet(t, domain.RoleUser, 0)

	_, err := f.accounts.Open(context.Background(), user.ID)
	require.ErrorIs(t, err, models.ErrAccountExists)
}

func TestOpenUnknownUser(t *testing.T) {
	f := newFixture(t)
	_, err := f.accounts.Open(context.Background(), uuid.New())
	require.ErrorIs(t, err, models.ErrUserNotFound)
}

func TestTopUpRecordsDepositAndCounter(t *testing.T) {
	f := newFixture(t)
	user := f.newWallet(t, domain.RoleUser, 0)
	ctx := context.Background()

	_, err := f.accounts.TopUp(ctx, user.ID, 0, "", nil)
	require.ErrorIs(t, err, models.ErrNonPositiveAmount)

	acc, err := f.accounts.TopUp(ctx, user.ID, units(250), "cash desk", nil)
	require.NoError(t, err)
	assert.Equal(t, units(250), acc.Balances.Main)
	assert.Equal(t, int64(1), acc.Stats.DepositCount)

	trail, err := NewAuditService(f.store).Trail(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, trail, 1)
	assert.Equal(t, "topup", trail[0].Action)
}

func TestAdjustCompartmentRejectsOverdraftAndUnknownCompartment(t *testing.T) {
	f := newFixture(t)
	user := f.newWallet(t, domain.RoleUser, 10)
	ctx := context.Background()

	_, err := f.accounts.AdjustCompartment(ctx, user.ID, domain.CompartmentMain, -units(11))
	require.ErrorIs(t, err, models.ErrInsufficientFunds)
	assert.Equal(t, units(10), f.balances(t, user.ID).Main)

	_, err = f.accounts.AdjustCompartment(ctx, user.ID, "savings", units(1))
	require.ErrorIs(t, err, models.ErrInvalidCompartment)

	_, err = f.accounts.AdjustCompartment(ctx, uuid.New(), domain.CompartmentMain, units(1))
	require.ErrorIs(t, err, models.ErrAccountNotFound)
}

func TestCreateUserValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.identity.CreateUser(ctx, CreateUserInput{Username: "x", Email: "not-an-email"})
	require.Error(t, err)

	_, err = f.identity.CreateUser(ctx, CreateUserInput{Username: "x", Email: "x@example.com", Role: "root"})
	require.Error(t, err)

	_, err = f.identity.CreateUser(ctx, CreateUserInput{Username: "x", Email: "dupe@example.com"})
	require.NoError(t, err)
	_, err = f.identity.CreateUser(ctx, CreateUserInput{Username: "y", Email: "DUPE@example.com"})
	require.ErrorIs(t, err, models.ErrEmailTaken)

	u, err := f.identity.ResolveUser(ctx, "Dupe@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "x", u.Username)

	missing := uuid.New()
	_, err = f.identity.CreateUser(ctx, CreateUserInput{Username: "z", Email: "z@example.com", ReferrerID: &missing})
	require.ErrorIs(t, err, models.ErrUserNotFound)
}
