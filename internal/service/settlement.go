package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ayo6706/lottery-wallet/internal/domain"
	"github.com/ayo6706/lottery-wallet/internal/models"
	"github.com/ayo6706/lottery-wallet/internal/observability"
	"github.com/ayo6706/lottery-wallet/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const defaultSettlementBatch = 200

// Broadcaster pushes settlement events to connected clients.
type Broadcaster interface {
	Broadcast(v any)
}

type nopBroadcaster struct{}

func (nopBroadcaster) Broadcast(any) {}

// DrawSettledEvent is published once a draw has been retired.
type DrawSettledEvent struct {
	Type         string    `json:"type"`
	DrawID       uuid.UUID `json:"draw_id"`
	SingleNumber int       `json:"single_number"`
	DoubleNumber int       `json:"double_number"`
	TripleNumber int       `json:"triple_number"`
	WinCount     int64     `json:"win_count"`
	LossCount    int64     `json:"loss_count"`
	SettledAt    time.Time `json:"settled_at"`
}

type SettleResult struct {
	WinCount  int64 `json:"win_count"`
	LossCount int64 `json:"loss_count"`
}

// SettlementService resolves pending bets against a ready draw.
type SettlementService struct {
	store       QueryStore
	broadcaster Broadcaster
	activity    ActivityRecorder
	audit       *AuditService
	batchSize   int
}

func NewSettlementService(store QueryStore, batchSize int) *SettlementService {
	if batchSize <= 0 {
		batchSize = defaultSettlementBatch
	}
	return &SettlementService{
		store:       store,
		broadcaster: nopBroadcaster{},
		activity:    nopRecorder{},
		audit:       NewAuditService(store),
		batchSize:   batchSize,
	}
}

func (s *SettlementService) WithBroadcaster(b Broadcaster) *SettlementService {
	if b != nil {
		s.broadcaster = b
	}
	return s
}

// WithActivity mirrors committed entries into rec.
func (s *SettlementService) WithActivity(rec ActivityRecorder) *SettlementService {
	if rec != nil {
		s.activity = rec
	}
	return s
}

// Settle resolves every bet placed before the call against the draw, then
// retires the draw into history. Each bet commits on its own, so a failed
// run can be resumed; bets already resolved are skipped. Settling a draw
// that is already in history returns a zero result.
func (s *SettlementService) Settle(ctx context.Context, drawID uuid.UUID) (*SettleResult, error) {
	started := time.Now()
	q := s.store.Queries()

	draw, err := q.GetDraw(ctx, repository.ToPgUUID(drawID))
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get draw: %w", err)
		}
		if _, histErr := q.GetDrawHistory(ctx, repository.ToPgUUID(drawID)); histErr == nil {
			return &SettleResult{}, nil
		} else if !errors.Is(histErr, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get draw history: %w", histErr)
		}
		return nil, models.ErrDrawNotFound
	}
	if draw.Status != domain.DrawStatusActive && draw.Status != domain.DrawStatusDraw {
		return nil, models.ErrDrawNotReady
	}

	numbers := domain.DrawNumbers{
		Single: int(draw.SingleNumber),
		Double: int(draw.DoubleNumber),
		Triple: int(draw.TripleNumber),
	}
	cutoff := repository.ToPgTime(time.Now().UTC())
	result := &SettleResult{}

	for {
		bets, err := q.ListPendingBets(ctx, repository.ListPendingBetsParams{
			PlacedBefore: cutoff,
			Limit:        int32(s.batchSize),
		})
		if err != nil {
			return nil, fmt.Errorf("list pending bets: %w", err)
		}
		if len(bets) == 0 {
			break
		}
		for _, bet := range bets {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			won, settled, err := s.settleBet(ctx, drawID, numbers, bet)
			if err != nil {
				return nil, fmt.Errorf("settle bet %s: %w", repository.FromPgUUID(bet.ID), err)
			}
			switch {
			case !settled:
			case won:
				result.WinCount++
			default:
				result.LossCount++
			}
		}
	}

	event, err := s.retire(ctx, drawID)
	if err != nil {
		return nil, err
	}
	if event != nil {
		s.broadcaster.Broadcast(event)
	}

	observability.ObserveSettlement(result.WinCount, result.LossCount, time.Since(started))
	zap.L().Info("draw settled",
		zap.String("draw_id", drawID.String()),
		zap.Int64("wins", result.WinCount),
		zap.Int64("losses", result.LossCount),
	)
	return result, nil
}

// settleBet resolves one bet in its own transaction. settled is false when
// another settler got to the bet first.
func (s *SettlementService) settleBet(ctx context.Context, drawID uuid.UUID, numbers domain.DrawNumbers, bet repository.Bet) (won, settled bool, err error) {
	won = numbers.Wins(bet.BetType, int(bet.Number))
	status := domain.BetStatusLoss
	if won {
		status = domain.BetStatusWin
	}
	userID := repository.FromPgUUID(bet.AccountID)
	betID := repository.FromPgUUID(bet.ID)

	var entry models.LedgerEntry
	err = s.store.RunInTx(ctx, func(q repository.Querier) error {
		rows, err := q.SettleBet(ctx, repository.SettleBetParams{
			ID:     bet.ID,
			Status: status,
			DrawID: repository.ToPgUUID(drawID),
		})
		if err != nil {
			return fmt.Errorf("update bet status: %w", err)
		}
		if rows == 0 {
			settled = false
			return nil
		}
		settled = true

		account, err := q.GetAccountForUpdate(ctx, bet.AccountID)
		if err != nil {
			return notFound(err, models.ErrAccountNotFound, "lock account")
		}

		amount := int64(0)
		entryType := domain.EntryTypeLoss
		note := fmt.Sprintf("bet %d (%s) lost", bet.Number, bet.BetType)
		if won {
			amount = bet.PrizeMicros
			entryType = domain.EntryTypeWin
			note = fmt.Sprintf("bet %d (%s) won", bet.Number, bet.BetType)
			if amount > 0 {
				if _, err := adjustCompartment(ctx, q, userID, domain.CompartmentMain, amount); err != nil {
					return err
				}
			}
			rows, err = q.RecordWin(ctx, repository.RecordOutcomeParams{UserID: bet.AccountID, AmountMicros: bet.PrizeMicros})
		} else {
			rows, err = q.RecordLoss(ctx, repository.RecordOutcomeParams{UserID: bet.AccountID, AmountMicros: bet.AmountMicros})
		}
		if err != nil {
			return fmt.Errorf("record outcome: %w", err)
		}
		if err := requireExactlyOne(rows, "record outcome"); err != nil {
			return err
		}

		entry, err = appendEntry(ctx, q, entryInput{
			accountID:   userID,
			entryType:   entryType,
			compartment: domain.CompartmentMain,
			amount:      amount,
			currency:    account.Currency,
			note:        note,
			referenceID: betID,
		})
		return err
	})
	if err != nil {
		return false, false, err
	}
	if settled {
		s.activity.Record(ctx, entry)
	}
	return won, settled, nil
}

// retire moves the draw into history. The counts come from the bets table so
// a resumed or concurrent settlement still records the full totals. A nil
// event means another settler retired the draw first.
func (s *SettlementService) retire(ctx context.Context, drawID uuid.UUID) (*DrawSettledEvent, error) {
	var event *DrawSettledEvent
	err := s.store.RunInTx(ctx, func(q repository.Querier) error {
		event = nil
		draw, err := q.GetDrawForUpdate(ctx, repository.ToPgUUID(drawID))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			return fmt.Errorf("lock draw: %w", err)
		}
		prev := draw.Status
		if prev != domain.DrawStatusDraw {
			if err := drawTransitions.check("draw", prev, domain.DrawStatusDraw); err != nil {
				return fmt.Errorf("%w: %v", models.ErrDrawNotReady, err)
			}
			rows, err := q.UpdateDrawStatus(ctx, repository.UpdateDrawStatusParams{ID: draw.ID, Status: domain.DrawStatusDraw})
			if err != nil {
				return fmt.Errorf("update draw status: %w", err)
			}
			if err := requireExactlyOne(rows, "retire draw"); err != nil {
				return err
			}
		}

		wins, err := q.CountBetsByDrawAndStatus(ctx, repository.CountBetsByDrawAndStatusParams{DrawID: draw.ID, Status: domain.BetStatusWin})
		if err != nil {
			return fmt.Errorf("count wins: %w", err)
		}
		losses, err := q.CountBetsByDrawAndStatus(ctx, repository.CountBetsByDrawAndStatusParams{DrawID: draw.ID, Status: domain.BetStatusLoss})
		if err != nil {
			return fmt.Errorf("count losses: %w", err)
		}

		hist, err := q.InsertDrawHistory(ctx, repository.InsertDrawHistoryParams{
			ID:           draw.ID,
			SingleNumber: draw.SingleNumber,
			DoubleNumber: draw.DoubleNumber,
			TripleNumber: draw.TripleNumber,
			WinCount:     wins,
			LossCount:    losses,
			CreatedAt:    draw.CreatedAt,
		})
		if err != nil {
			return fmt.Errorf("insert draw history: %w", err)
		}
		rows, err := q.DeleteDraw(ctx, draw.ID)
		if err != nil {
			return fmt.Errorf("delete draw: %w", err)
		}
		if err := requireExactlyOne(rows, "delete draw"); err != nil {
			return err
		}
		if err := s.audit.Write(ctx, q, "draw", drawID, nil, "settled", prev, domain.DrawStatusDraw, nil); err != nil {
			return err
		}

		event = &DrawSettledEvent{
			Type:         "draw_settled",
			DrawID:       drawID,
			SingleNumber: int(hist.SingleNumber),
			DoubleNumber: int(hist.DoubleNumber),
			TripleNumber: int(hist.TripleNumber),
			WinCount:     hist.WinCount,
			LossCount:    hist.LossCount,
			SettledAt:    hist.SettledAt.Time,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}

// SettleReady settles every draw currently marked active.
func (s *SettlementService) SettleReady(ctx context.Context) (int, error) {
	draws, err := s.store.Queries().ListDrawsByStatus(ctx, domain.DrawStatusActive)
	if err != nil {
		return 0, fmt.Errorf("list ready draws: %w", err)
	}
	settled := 0
	for _, draw := range draws {
		drawID := repository.FromPgUUID(draw.ID)
		if _, err := s.Settle(ctx, drawID); err != nil {
			return settled, fmt.Errorf("settle draw %s: %w", drawID, err)
		}
		settled++
	}
	return settled, nil
}
