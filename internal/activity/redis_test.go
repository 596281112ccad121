package activity

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/ayo6706/lottery-wallet/internal/models"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	rdb := redis.NewClient(opts)
	t.Cleanup(func() { rdb.Close() })
	require.NoError(t, rdb.Ping(context.Background()).Err())
	return rdb
}

func TestRecentIsNewestFirstAndTrimmed(t *testing.T) {
	rdb := newTestRedis(t)
	ctx := context.Background()
	idx := NewRedisIndex(rdb, 3)

	userID := uuid.New()
	t.Cleanup(func() { rdb.Del(ctx, recentKey(userID)) })

	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		idx.Record(ctx, models.LedgerEntry{
			ID:           uuid.New(),
			AccountID:    userID,
			Type:         "deposit",
			Compartment:  "main",
			AmountMicros: int64(i + 1),
			CreatedAt:    base.Add(time.Duration(i) * time.Second),
		})
	}

	got, err := idx.Recent(ctx, userID, 10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, int64(5), got[0].AmountMicros)
	require.Equal(t, int64(3), got[2].AmountMicros)
}

func TestForgetRemovesOnlyNamedEntries(t *testing.T) {
	rdb := newTestRedis(t)
	ctx := context.Background()
	idx := NewRedisIndex(rdb, 10)

	userID := uuid.New()
	t.Cleanup(func() { rdb.Del(ctx, recentKey(userID)) })

	now := time.Now().UTC()
	debit := models.LedgerEntry{ID: uuid.New(), AccountID: userID, Type: "withdraw", Compartment: "main", AmountMicros: -200, CreatedAt: now}
	topup := models.LedgerEntry{ID: uuid.New(), AccountID: userID, Type: "deposit", Compartment: "main", AmountMicros: 500, CreatedAt: now.Add(-time.Second)}
	idx.Record(ctx, topup, debit)

	idx.Forget(ctx, userID, debit.ID, uuid.New())

	got, err := idx.Recent(ctx, userID, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, topup.ID, got[0].ID)
}

func TestRecordSurvivesUnreachableRedis(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	defer rdb.Close()

	idx := NewRedisIndex(rdb, 0)
	idx.Record(context.Background(), models.LedgerEntry{ID: uuid.New(), AccountID: uuid.New(), CreatedAt: time.Now()})
	idx.Forget(context.Background(), uuid.New(), uuid.New())

	_, err := idx.Recent(context.Background(), uuid.New(), 5)
	require.Error(t, err)
}
