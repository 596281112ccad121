package service

import (
	"context"
	"fmt"

	"github.com/ayo6706/lottery-wallet/internal/domain"
	"github.com/ayo6706/lottery-wallet/internal/models"
	"github.com/ayo6706/lottery-wallet/internal/observability"
	"github.com/ayo6706/lottery-wallet/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type BetService struct {
	store       QueryStore
	multipliers MultiplierProvider
}

func NewBetService(store QueryStore, multipliers MultiplierProvider) *BetService {
	if multipliers == nil {
		multipliers = NewTableMultiplierProvider(store)
	}
	return &BetService{store: store, multipliers: multipliers}
}

type PlaceBetRequest struct {
	UserID       uuid.UUID
	Number       int
	AmountMicros int64
}

type PlaceBetResult struct {
	BetID       uuid.UUID       `json:"bet_id"`
	BetType     string          `json:"bet_type"`
	Multiplier  decimal.Decimal `json:"multiplier"`
	PrizeMicros int64           `json:"prize_micros"`
	MainMicros  int64           `json:"main_micros"`
}

// PlaceBet stakes amount from main on number. The multiplier and prize are
// fixed on the bet at placement; settlement never recomputes them.
func (s *BetService) PlaceBet(ctx context.Context, req PlaceBetRequest) (*PlaceBetResult, error) {
	if req.AmountMicros <= 0 {
		return nil, models.ErrNonPositiveAmount
	}
	betType, err := domain.ClassifyBet(req.Number)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidBetType, err)
	}

	multiplier := s.multiplier(ctx, betType)
	prize, err := domain.Prize(req.AmountMicros, multiplier)
	if err != nil {
		return nil, fmt.Errorf("%w: prize for this stake: %w", ErrInvalidInput, err)
	}
	betID := uuid.New()

	var account repository.Account
	err = s.store.RunInTx(ctx, func(q repository.Querier) error {
		var err error
		account, err = adjustCompartment(ctx, q, req.UserID, domain.CompartmentMain, -req.AmountMicros)
		if err != nil {
			return err
		}
		rows, err := q.IncrementBetCount(ctx, repository.ToPgUUID(req.UserID))
		if err != nil {
			return fmt.Errorf("increment bet count: %w", err)
		}
		if err := requireExactlyOne(rows, "increment bet count"); err != nil {
			return err
		}
		if _, err := q.InsertBet(ctx, repository.InsertBetParams{
			ID:           repository.ToPgUUID(betID),
			AccountID:    repository.ToPgUUID(req.UserID),
			BetType:      betType,
			Number:       int32(req.Number),
			AmountMicros: req.AmountMicros,
			Multiplier:   multiplier,
			PrizeMicros:  prize,
		}); err != nil {
			return fmt.Errorf("insert bet: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	observability.IncrementBetsPlaced(betType)
	return &PlaceBetResult{
		BetID:       betID,
		BetType:     betType,
		Multiplier:  multiplier,
		PrizeMicros: prize,
		MainMicros:  account.MainMicros,
	}, nil
}

// multiplier never fails: an unreadable table degrades to the defaults.
func (s *BetService) multiplier(ctx context.Context, betType string) decimal.Decimal {
	m, err := s.multipliers.Multiplier(ctx, betType)
	if err == nil && !m.IsNegative() {
		return m
	}
	zap.L().Warn("multiplier lookup failed, using default",
		zap.String("bet_type", betType),
		zap.Error(err),
	)
	observability.IncrementMultiplierFallback(betType)
	return domain.DefaultMultipliers()[betType]
}

func (s *BetService) Get(ctx context.Context, betID uuid.UUID) (*models.Bet, error) {
	row, err := s.store.Queries().GetBet(ctx, repository.ToPgUUID(betID))
	if err != nil {
		return nil, notFound(err, models.ErrBetNotFound, "get bet")
	}
	return toBet(row), nil
}

// ListForUser returns the user's bets, newest first.
func (s *BetService) ListForUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Bet, error) {
	l, o := clampPage(limit, offset, defaultStatementLimit, maxStatementLimit)
	rows, err := s.store.Queries().ListBetsForAccount(ctx, repository.ListBetsForAccountParams{
		AccountID: repository.ToPgUUID(userID),
		Limit:     l,
		Offset:    o,
	})
	if err != nil {
		return nil, fmt.Errorf("list bets: %w", err)
	}
	out := make([]models.Bet, 0, len(rows))
	for _, row := range rows {
		out = append(out, *toBet(row))
	}
	return out, nil
}
