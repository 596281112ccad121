package idempotency

import (
	"context"
	"testing"
	"time"

	"github.com/ayo6706/lottery-wallet/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReserveFinalizeLookup(t *testing.T) {
	ctx := context.Background()
	store := NewStore(nil, repository.NewMemoryStore(), time.Minute)

	_, err := store.Lookup(ctx, "k1", "h1")
	require.ErrorIs(t, err, ErrNotFound)

	reserved, err := store.Reserve(ctx, "k1", "h1", "POST", "/v1/bets")
	require.NoError(t, err)
	require.True(t, reserved)

	_, err = store.Lookup(ctx, "k1", "h1")
	require.ErrorIs(t, err, ErrInProgress)

	again, err := store.Reserve(ctx, "k1", "h1", "POST", "/v1/bets")
	require.NoError(t, err)
	assert.False(t, again)

	_, err = store.Finalize(ctx, "k1", "h1", 201, []byte(`{"ok":true}`), "application/json")
	require.NoError(t, err)

	rec, err := store.Lookup(ctx, "k1", "h1")
	require.NoError(t, err)
	assert.Equal(t, 201, rec.Status)
	assert.JSONEq(t, `{"ok":true}`, string(rec.Body))
	assert.Equal(t, "database", rec.ServedBy)

	_, err = store.Lookup(ctx, "k1", "other")
	require.ErrorIs(t, err, ErrHashMismatch)
}

func TestWaitForCompletionHonoursContext(t *testing.T) {
	store := NewStore(nil, repository.NewMemoryStore(), time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Millisecond)
	defer cancel()

	_, err := store.Reserve(ctx, "k2", "h2", "POST", "/v1/transfers")
	require.NoError(t, err)

	_, err = store.WaitForCompletion(ctx, "k2", "h2")
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestReleaseFreesOnlyUnfinishedKeys(t *testing.T) {
	ctx := context.Background()
	store := NewStore(nil, repository.NewMemoryStore(), time.Minute)

	_, err := store.Reserve(ctx, "k3", "h3", "POST", "/v1/withdrawals")
	require.NoError(t, err)
	require.NoError(t, store.Release(ctx, "k3", "other"))
	_, err = store.Lookup(ctx, "k3", "h3")
	require.ErrorIs(t, err, ErrInProgress)

	require.NoError(t, store.Release(ctx, "k3", "h3"))
	_, err = store.Lookup(ctx, "k3", "h3")
	require.ErrorIs(t, err, ErrNotFound)

	reserved, err := store.Reserve(ctx, "k3", "h3", "POST", "/v1/withdrawals")
	require.NoError(t, err)
	require.True(t, reserved)
	_, err = store.Finalize(ctx, "k3", "h3", 201, []byte(`{}`), "application/json")
	require.NoError(t, err)

	require.NoError(t, store.Release(ctx, "k3", "h3"))
	rec, err := store.Lookup(ctx, "k3", "h3")
	require.NoError(t, err)
	assert.Equal(t, 201, rec.Status)
}
