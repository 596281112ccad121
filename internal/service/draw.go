package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ayo6706/lottery-wallet/internal/domain"
	"github.com/ayo6706/lottery-wallet/internal/models"
	"github.com/ayo6706/lottery-wallet/internal/repository"
	"github.com/google/uuid"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 200
)

// DrawService ingests draws from the producer and exposes the live draw and
// its settled history.
type DrawService struct {
	store QueryStore
	audit *AuditService
}

func NewDrawService(store QueryStore) *DrawService {
	return &DrawService{store: store, audit: NewAuditService(store)}
}

type CreateDrawInput struct {
	ID      uuid.UUID
	Numbers domain.DrawNumbers
	// Ready creates the draw directly in active instead of hold.
	Ready bool
}

// Create stores a new live draw. Only one draw may be live at a time.
func (s *DrawService) Create(ctx context.Context, in CreateDrawInput, actorID *uuid.UUID) (*models.Draw, error) {
	if err := in.Numbers.Validate(); err != nil {
		return nil, fmt.Errorf("%w: invalid draw numbers: %v", ErrInvalidInput, err)
	}
	if in.ID == uuid.Nil {
		in.ID = uuid.New()
	}
	status := domain.DrawStatusHold
	if in.Ready {
		status = domain.DrawStatusActive
	}

	var row repository.Draw
	err := s.store.RunInTx(ctx, func(q repository.Querier) error {
		var err error
		row, err = q.InsertDraw(ctx, repository.InsertDrawParams{
			ID:           repository.ToPgUUID(in.ID),
			SingleNumber: int32(in.Numbers.Single),
			DoubleNumber: int32(in.Numbers.Double),
			TripleNumber: int32(in.Numbers.Triple),
			Status:       status,
		})
		if err != nil {
			if isUniqueViolation(err) {
				return models.ErrLiveDrawExists
			}
			return fmt.Errorf("insert draw: %w", err)
		}
		metadata, err := json.Marshal(in.Numbers)
		if err != nil {
			return fmt.Errorf("encode metadata: %w", err)
		}
		return s.audit.Write(ctx, q, "draw", in.ID, actorID, "created", "", status, metadata)
	})
	if err != nil {
		return nil, err
	}
	return toDraw(row), nil
}

// MarkReady moves a held draw to active so it becomes eligible for settlement.
func (s *DrawService) MarkReady(ctx context.Context, drawID uuid.UUID, actorID *uuid.UUID) (*models.Draw, error) {
	var row repository.Draw
	err := s.store.RunInTx(ctx, func(q repository.Querier) error {
		current, err := q.GetDrawForUpdate(ctx, repository.ToPgUUID(drawID))
		if err != nil {
			return notFound(err, models.ErrDrawNotFound, "lock draw")
		}
		if current.Status == domain.DrawStatusActive {
			row = current
			return nil
		}
		if err := drawTransitions.check("draw", current.Status, domain.DrawStatusActive); err != nil {
			return fmt.Errorf("%w: %v", models.ErrDrawNotReady, err)
		}
		rows, err := q.UpdateDrawStatus(ctx, repository.UpdateDrawStatusParams{
			ID:     current.ID,
			Status: domain.DrawStatusActive,
		})
		if err != nil {
			return fmt.Errorf("update draw status: %w", err)
		}
		if err := requireExactlyOne(rows, "mark draw ready"); err != nil {
			return err
		}
		if err := s.audit.Write(ctx, q, "draw", drawID, actorID, "ready", current.Status, domain.DrawStatusActive, nil); err != nil {
			return err
		}
		row = current
		row.Status = domain.DrawStatusActive
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toDraw(row), nil
}

// Current returns the live draw.
func (s *DrawService) Current(ctx context.Context) (*models.Draw, error) {
	row, err := s.store.Queries().GetLiveDraw(ctx)
	if err != nil {
		return nil, notFound(err, models.ErrDrawNotFound, "get live draw")
	}
	return toDraw(row), nil
}

func (s *DrawService) Get(ctx context.Context, drawID uuid.UUID) (*models.Draw, error) {
	row, err := s.store.Queries().GetDraw(ctx, repository.ToPgUUID(drawID))
	if err != nil {
		return nil, notFound(err, models.ErrDrawNotFound, "get draw")
	}
	return toDraw(row), nil
}

// History lists retired draws, most recently settled first.
func (s *DrawService) History(ctx context.Context, limit, offset int) ([]models.DrawHistory, error) {
	l, o := clampPage(limit, offset, defaultHistoryLimit, maxHistoryLimit)
	rows, err := s.store.Queries().ListDrawHistory(ctx, repository.ListDrawHistoryParams{Limit: l, Offset: o})
	if err != nil {
		return nil, fmt.Errorf("list draw history: %w", err)
	}
	out := make([]models.DrawHistory, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDrawHistory(row))
	}
	return out, nil
}

// HistoryEntry returns a single retired draw.
func (s *DrawService) HistoryEntry(ctx context.Context, drawID uuid.UUID) (*models.DrawHistory, error) {
	row, err := s.store.Queries().GetDrawHistory(ctx, repository.ToPgUUID(drawID))
	if err != nil {
		return nil, notFound(err, models.ErrDrawNotFound, "get draw history")
	}
	h := toDrawHistory(row)
	return &h, nil
}
