package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const drawColumns = `id, single_number, double_number, triple_number, status, created_at, updated_at`

func scanDraw(row pgx.Row) (Draw, error) {
	var i Draw
	err := row.Scan(
		&i.ID,
		&i.SingleNumber,
		&i.DoubleNumber,
		&i.TripleNumber,
		&i.Status,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const insertDraw = `-- name: InsertDraw :one
INSERT INTO draws (id, single_number, double_number, triple_number, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
RETURNING ` + drawColumns

type InsertDrawParams struct {
	ID           pgtype.UUID
	SingleNumber int32
	DoubleNumber int32
	TripleNumber int32
	Status       string
}

func (q *Queries) InsertDraw(ctx context.Context, arg InsertDrawParams) (Draw, error) {
	row := q.db.QueryRow(ctx, insertDraw,
		arg.ID,
		arg.SingleNumber,
		arg.DoubleNumber,
		arg.TripleNumber,
		arg.Status,
	)
	return scanDraw(row)
}

const getDraw = `-- name: GetDraw :one
SELECT ` + drawColumns + ` FROM draws
WHERE id = $1
`

func (q *Queries) GetDraw(ctx context.Context, id pgtype.UUID) (Draw, error) {
	return scanDraw(q.db.QueryRow(ctx, getDraw, id))
}

const getDrawForUpdate = `-- name: GetDrawForUpdate :one
SELECT ` + drawColumns + ` FROM draws
WHERE id = $1
FOR UPDATE
`

func (q *Queries) GetDrawForUpdate(ctx context.Context, id pgtype.UUID) (Draw, error) {
	return scanDraw(q.db.QueryRow(ctx, getDrawForUpdate, id))
}

const getLiveDraw = `-- name: GetLiveDraw :one
SELECT ` + drawColumns + ` FROM draws
ORDER BY created_at DESC
LIMIT 1
`

func (q *Queries) GetLiveDraw(ctx context.Context) (Draw, error) {
	return scanDraw(q.db.QueryRow(ctx, getLiveDraw))
}

const listDrawsByStatus = `-- name: ListDrawsByStatus :many
SELECT ` + drawColumns + ` FROM draws
WHERE status = $1
ORDER BY created_at
`

func (q *Queries) ListDrawsByStatus(ctx context.Context, status string) ([]Draw, error) {
	rows, err := q.db.Query(ctx, listDrawsByStatus, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Draw
	for rows.Next() {
		i, err := scanDraw(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateDrawStatus = `-- name: UpdateDrawStatus :execrows
UPDATE draws SET status = $2, updated_at = NOW()
WHERE id = $1
`

type UpdateDrawStatusParams struct {
	ID     pgtype.UUID
	Status string
}

func (q *Queries) UpdateDrawStatus(ctx context.Context, arg UpdateDrawStatusParams) (int64, error) {
	result, err := q.db.Exec(ctx, updateDrawStatus, arg.ID, arg.Status)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const deleteDraw = `-- name: DeleteDraw :execrows
DELETE FROM draws WHERE id = $1
`

func (q *Queries) DeleteDraw(ctx context.Context, id pgtype.UUID) (int64, error) {
	result, err := q.db.Exec(ctx, deleteDraw, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const drawHistoryColumns = `id, single_number, double_number, triple_number, win_count, loss_count, created_at, settled_at`

func scanDrawHistory(row pgx.Row) (DrawHistory, error) {
	var i DrawHistory
	err := row.Scan(
		&i.ID,
		&i.SingleNumber,
		&i.DoubleNumber,
		&i.TripleNumber,
		&i.WinCount,
		&i.LossCount,
		&i.CreatedAt,
		&i.SettledAt,
	)
	return i, err
}

const insertDrawHistory = `-- name: InsertDrawHistory :one
INSERT INTO draw_history (id, single_number, double_number, triple_number, win_count, loss_count, created_at, settled_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
RETURNING ` + drawHistoryColumns

type InsertDrawHistoryParams struct {
	ID           pgtype.UUID
	SingleNumber int32
	DoubleNumber int32
	TripleNumber int32
	WinCount     int64
	LossCount    int64
	CreatedAt    pgtype.Timestamptz
}

func (q *Queries) InsertDrawHistory(ctx context.Context, arg InsertDrawHistoryParams) (DrawHistory, error) {
	row := q.db.QueryRow(ctx, insertDrawHistory,
		arg.ID,
		arg.SingleNumber,
		arg.DoubleNumber,
		arg.TripleNumber,
		arg.WinCount,
		arg.LossCount,
		arg.CreatedAt,
	)
	return scanDrawHistory(row)
}

const getDrawHistory = `-- name: GetDrawHistory :one
SELECT ` + drawHistoryColumns + ` FROM draw_history
WHERE id = $1
`

func (q *Queries) GetDrawHistory(ctx context.Context, id pgtype.UUID) (DrawHistory, error) {
	return scanDrawHistory(q.db.QueryRow(ctx, getDrawHistory, id))
}

const listDrawHistory = `-- name: ListDrawHistory :many
SELECT ` + drawHistoryColumns + ` FROM draw_history
ORDER BY settled_at DESC, id
LIMIT $1 OFFSET $2
`

type ListDrawHistoryParams struct {
	Limit  int32
	Offset int32
}

func (q *Queries) ListDrawHistory(ctx context.Context, arg ListDrawHistoryParams) ([]DrawHistory, error) {
	rows, err := q.db.Query(ctx, listDrawHistory, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []DrawHistory
	for rows.Next() {
		i, err := scanDrawHistory(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
