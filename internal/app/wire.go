package app

import (
	"context"
	"fmt"
	"time"

	"github.com/ayo6706/lottery-wallet/internal/activity"
	"github.com/ayo6706/lottery-wallet/internal/api"
	"github.com/ayo6706/lottery-wallet/internal/config"
	"github.com/ayo6706/lottery-wallet/internal/db"
	"github.com/ayo6706/lottery-wallet/internal/repository"
	"github.com/ayo6706/lottery-wallet/internal/service"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// dataStore is the system of record: Postgres or the in-memory store.
type dataStore interface {
	service.QueryStore
	Ping(ctx context.Context) error
}

// openStore returns the configured store and a func releasing it.
func openStore(ctx context.Context, cfg *config.Config) (dataStore, func(), error) {
	if cfg.UsesMemoryStore() {
		zap.L().Warn("running on the in-memory store; data is lost on exit")
		return repository.NewMemoryStore().WithTxTimeout(cfg.TxTimeout), func() {}, nil
	}

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	if cfg.AutoMigrate {
		if err := db.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		zap.L().Info("database schema applied")
	}
	return repository.NewStore(pool).WithTxTimeout(cfg.TxTimeout), pool.Close, nil
}

func newRedisClient(url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// redisPinger adapts a redis client to the readiness probe.
type redisPinger struct {
	rdb redis.Cmdable
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.rdb.Ping(ctx).Err()
}

// newServices builds the domain services. rdb may be nil, in which case the
// multiplier cache and the activity mirror are left out.
func newServices(cfg *config.Config, store service.QueryStore, rdb redis.Cmdable, feed service.Broadcaster) (api.Services, *activity.RedisIndex) {
	var (
		recorder service.ActivityRecorder
		index    *activity.RedisIndex
	)
	table := service.NewTableMultiplierProvider(store)
	var provider service.MultiplierProvider = table
	multipliers := service.NewMultiplierService(store)
	if rdb != nil {
		cached := service.NewCachedMultiplierProvider(table, rdb, cfg.MultiplierCacheTTL)
		provider = cached
		multipliers.WithCache(cached)
		index = activity.NewRedisIndex(rdb, cfg.ActivityKeep)
		recorder = index
	}

	draws := service.NewDrawService(store)
	svc := api.Services{
		Identity: service.NewIdentityService(store),
		Accounts: service.NewAccountService(store, service.AccountConfig{
			Currency:             cfg.DefaultCurrency,
			WelcomeBonusMicros:   cfg.WelcomeBonusMicros,
			ReferralRewardMicros: cfg.ReferralRewardMicros,
		}).WithActivity(recorder),
		Ledger:      service.NewLedgerService(store),
		Transfers:   service.NewTransferService(store, cfg.InterestDailyRate).WithActivity(recorder),
		Bets:        service.NewBetService(store, provider),
		Draws:       draws,
		Settlement:  service.NewSettlementService(store, cfg.SettlementBatchSize).WithBroadcaster(feed).WithActivity(recorder),
		Withdrawals: service.NewWithdrawService(store, cfg.MinWithdrawMicros).WithActivity(recorder),
		Multipliers: multipliers,
		Webhooks:    service.NewDrawWebhookService(draws, cfg.WebhookHMACKey, cfg.WebhookSkipSignature),
	}
	return svc, index
}
