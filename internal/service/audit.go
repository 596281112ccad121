package service

import (
	"context"
	"fmt"

	"github.com/ayo6706/lottery-wallet/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// AuditService writes immutable audit trail entries.
type AuditService struct {
	store QueryStore
}

func NewAuditService(store QueryStore) *AuditService {
	return &AuditService{store: store}
}

// AuditRecord is one row of an entity's audit trail.
type AuditRecord struct {
	EntityType string
	Action     string
	ActorID    *uuid.UUID
	PrevState  string
	NextState  string
	Metadata   []byte
}

// Write stores a single immutable audit record using the caller's transaction.
func (s *AuditService) Write(ctx context.Context, q repository.Querier, entityType string, entityID uuid.UUID, actorID *uuid.UUID, action, prevState, nextState string, metadata []byte) error {
	var actor pgtype.UUID
	if actorID != nil {
		actor = repository.ToPgUUID(*actorID)
	}

	if _, err := q.InsertAuditLog(ctx, repository.InsertAuditLogParams{
		EntityType: entityType,
		EntityID:   repository.ToPgUUID(entityID),
		ActorID:    actor,
		Action:     action,
		PrevState:  textParam(prevState),
		NextState:  textParam(nextState),
		Metadata:   metadata,
	}); err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

// Trail returns the audit history of an entity, oldest first.
func (s *AuditService) Trail(ctx context.Context, entityID uuid.UUID) ([]AuditRecord, error) {
	rows, err := s.store.Queries().ListAuditLogForEntity(ctx, repository.ToPgUUID(entityID))
	if err != nil {
		return nil, fmt.Errorf("list audit log: %w", err)
	}
	out := make([]AuditRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, AuditRecord{
			EntityType: row.EntityType,
			Action:     row.Action,
			ActorID:    repository.FromPgUUIDPtr(row.ActorID),
			PrevState:  derefText(row.PrevState),
			NextState:  derefText(row.NextState),
			Metadata:   row.Metadata,
		})
	}
	return out, nil
}

func textParam(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func derefText(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
