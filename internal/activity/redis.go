// Package activity keeps a short, non-authoritative list of each account's
// most recent ledger entries in Redis. The ledger in Postgres stays the
// system of record; a lost or stale mirror is never an error for callers.
package activity

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ayo6706/lottery-wallet/internal/models"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const DefaultKeep = 50

// RedisIndex mirrors ledger entries into a sorted set per account, scored by
// creation time and trimmed to the newest keep members.
type RedisIndex struct {
	rdb  redis.Cmdable
	keep int64
}

func NewRedisIndex(rdb redis.Cmdable, keep int) *RedisIndex {
	if keep <= 0 {
		keep = DefaultKeep
	}
	return &RedisIndex{rdb: rdb, keep: int64(keep)}
}

// Record adds entries to their accounts' lists. Failures are logged only.
func (i *RedisIndex) Record(ctx context.Context, entries ...models.LedgerEntry) {
	if len(entries) == 0 {
		return
	}
	touched := make(map[uuid.UUID]struct{}, 2)
	pipe := i.rdb.TxPipeline()
	for _, e := range entries {
		data, err := json.Marshal(e)
		if err != nil {
			zap.L().Warn("encode activity entry", zap.Error(err))
			continue
		}
		pipe.ZAdd(ctx, recentKey(e.AccountID), redis.Z{
			Score:  float64(e.CreatedAt.UnixNano()),
			Member: data,
		})
		touched[e.AccountID] = struct{}{}
	}
	for id := range touched {
		pipe.ZRemRangeByRank(ctx, recentKey(id), 0, -i.keep-1)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		zap.L().Warn("redis activity mirror failed", zap.Error(err))
	}
}

// Forget removes entries that no longer exist in the ledger, such as a
// voided withdraw debit. Failures are logged only.
func (i *RedisIndex) Forget(ctx context.Context, accountID uuid.UUID, entryIDs ...uuid.UUID) {
	if len(entryIDs) == 0 {
		return
	}
	drop := make(map[uuid.UUID]struct{}, len(entryIDs))
	for _, id := range entryIDs {
		drop[id] = struct{}{}
	}

	key := recentKey(accountID)
	members, err := i.rdb.ZRange(ctx, key, 0, -1).Result()
	if err != nil {
		zap.L().Warn("redis activity forget failed", zap.Error(err))
		return
	}
	stale := make([]any, 0, len(entryIDs))
	for _, m := range members {
		var e models.LedgerEntry
		if err := json.Unmarshal([]byte(m), &e); err != nil {
			continue
		}
		if _, ok := drop[e.ID]; ok {
			stale = append(stale, m)
		}
	}
	if len(stale) == 0 {
		return
	}
	if err := i.rdb.ZRem(ctx, key, stale...).Err(); err != nil {
		zap.L().Warn("redis activity forget failed", zap.Error(err))
	}
}

// Recent returns up to limit entries for the account, newest first.
func (i *RedisIndex) Recent(ctx context.Context, userID uuid.UUID, limit int) ([]models.LedgerEntry, error) {
	if limit <= 0 || int64(limit) > i.keep {
		limit = int(i.keep)
	}
	members, err := i.rdb.ZRevRange(ctx, recentKey(userID), 0, int64(limit)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("read recent activity: %w", err)
	}
	out := make([]models.LedgerEntry, 0, len(members))
	for _, m := range members {
		var e models.LedgerEntry
		if err := json.Unmarshal([]byte(m), &e); err != nil {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func recentKey(userID uuid.UUID) string {
	return fmt.Sprintf("ledger:recent:%s", userID)
}
