package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ayo6706/lottery-wallet/internal/domain"
	"github.com/ayo6706/lottery-wallet/internal/models"
	"github.com/ayo6706/lottery-wallet/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// MultiplierProvider returns the payout multiplier for a bet type.
type MultiplierProvider interface {
	Multiplier(ctx context.Context, betType string) (decimal.Decimal, error)
}

var errMultiplierMissing = errors.New("multiplier not configured")

// TableMultiplierProvider reads the multiplier table from the store.
type TableMultiplierProvider struct {
	store QueryStore
}

func NewTableMultiplierProvider(store QueryStore) *TableMultiplierProvider {
	return &TableMultiplierProvider{store: store}
}

func (p *TableMultiplierProvider) Multiplier(ctx context.Context, betType string) (decimal.Decimal, error) {
	rows, err := p.store.Queries().ListMultipliers(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("list multipliers: %w", err)
	}
	for _, row := range rows {
		if row.BetType == betType {
			return row.Multiplier, nil
		}
	}
	return decimal.Zero, fmt.Errorf("%w: %s", errMultiplierMissing, betType)
}

// CachedMultiplierProvider wraps a primary provider with a Redis
// read-through cache. Redis failures fall through to the primary.
type CachedMultiplierProvider struct {
	primary MultiplierProvider
	rdb     redis.Cmdable
	ttl     time.Duration
}

func NewCachedMultiplierProvider(primary MultiplierProvider, rdb redis.Cmdable, ttl time.Duration) *CachedMultiplierProvider {
	return &CachedMultiplierProvider{primary: primary, rdb: rdb, ttl: ttl}
}

func (p *CachedMultiplierProvider) Multiplier(ctx context.Context, betType string) (decimal.Decimal, error) {
	val, err := p.rdb.Get(ctx, multiplierKey(betType)).Result()
	if err == nil {
		if m, parseErr := decimal.NewFromString(val); parseErr == nil {
			return m, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		zap.L().Warn("redis multiplier lookup failed", zap.Error(err))
	}

	m, err := p.primary.Multiplier(ctx, betType)
	if err != nil {
		return decimal.Zero, err
	}
	if err := p.rdb.Set(ctx, multiplierKey(betType), m.String(), p.ttl).Err(); err != nil {
		zap.L().Warn("redis multiplier cache set failed", zap.Error(err))
	}
	return m, nil
}

// Invalidate drops the cached value so the next read goes to the primary.
func (p *CachedMultiplierProvider) Invalidate(ctx context.Context, betType string) {
	if err := p.rdb.Del(ctx, multiplierKey(betType)).Err(); err != nil {
		zap.L().Warn("redis multiplier invalidate failed", zap.Error(err))
	}
}

func multiplierKey(betType string) string {
	return fmt.Sprintf("multiplier:%s", betType)
}

type multiplierInvalidator interface {
	Invalidate(ctx context.Context, betType string)
}

// MultiplierService administers the payout table.
type MultiplierService struct {
	store QueryStore
	cache multiplierInvalidator
	audit *AuditService
}

func NewMultiplierService(store QueryStore) *MultiplierService {
	return &MultiplierService{store: store, audit: NewAuditService(store)}
}

// WithCache registers a cache to invalidate on every write.
func (s *MultiplierService) WithCache(cache *CachedMultiplierProvider) *MultiplierService {
	if cache != nil {
		s.cache = cache
	}
	return s
}

func (s *MultiplierService) List(ctx context.Context) ([]models.Multiplier, error) {
	rows, err := s.store.Queries().ListMultipliers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list multipliers: %w", err)
	}
	out := make([]models.Multiplier, 0, len(rows))
	for _, row := range rows {
		out = append(out, toMultiplier(row))
	}
	return out, nil
}

// Set replaces the multiplier for each given bet type. Bets already placed
// keep the multiplier frozen on them.
func (s *MultiplierService) Set(ctx context.Context, values map[string]decimal.Decimal) ([]models.Multiplier, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: at least one multiplier is required", ErrInvalidInput)
	}
	for betType, m := range values {
		if !domain.IsBetType(betType) {
			return nil, fmt.Errorf("%w: %s", models.ErrInvalidBetType, betType)
		}
		if m.IsNegative() {
			return nil, fmt.Errorf("%w: multiplier for %s must not be negative", ErrInvalidInput, betType)
		}
	}

	err := s.store.RunInTx(ctx, func(q repository.Querier) error {
		for betType, m := range values {
			if _, err := q.UpsertMultiplier(ctx, repository.UpsertMultiplierParams{BetType: betType, Multiplier: m}); err != nil {
				return fmt.Errorf("upsert multiplier %s: %w", betType, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		for betType := range values {
			s.cache.Invalidate(ctx, betType)
		}
	}
	return s.List(ctx)
}
