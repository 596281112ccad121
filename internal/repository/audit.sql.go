package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const insertAuditLog = `-- name: InsertAuditLog :one
INSERT INTO audit_log (entity_type, entity_id, actor_id, action, prev_state, next_state, metadata, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
RETURNING id, entity_type, entity_id, actor_id, action, prev_state, next_state, metadata, created_at
`

type InsertAuditLogParams struct {
	EntityType string
	EntityID   pgtype.UUID
	ActorID    pgtype.UUID
	Action     string
	PrevState  *string
	NextState  *string
	Metadata   []byte
}

func (q *Queries) InsertAuditLog(ctx context.Context, arg InsertAuditLogParams) (AuditLog, error) {
	row := q.db.QueryRow(ctx, insertAuditLog,
		arg.EntityType,
		arg.EntityID,
		arg.ActorID,
		arg.Action,
		arg.PrevState,
		arg.NextState,
		arg.Metadata,
	)
	var i AuditLog
	err := row.Scan(
		&i.ID,
		&i.EntityType,
		&i.EntityID,
		&i.ActorID,
		&i.Action,
		&i.PrevState,
		&i.NextState,
		&i.Metadata,
		&i.CreatedAt,
	)
	return i, err
}

const listAuditLogForEntity = `-- name: ListAuditLogForEntity :many
SELECT id, entity_type, entity_id, actor_id, action, prev_state, next_state, metadata, created_at FROM audit_log
WHERE entity_id = $1
ORDER BY id
`

func (q *Queries) ListAuditLogForEntity(ctx context.Context, entityID pgtype.UUID) ([]AuditLog, error) {
	rows, err := q.db.Query(ctx, listAuditLogForEntity, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []AuditLog
	for rows.Next() {
		var i AuditLog
		if err := rows.Scan(
			&i.ID,
			&i.EntityType,
			&i.EntityID,
			&i.ActorID,
			&i.Action,
			&i.PrevState,
			&i.NextState,
			&i.Metadata,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
