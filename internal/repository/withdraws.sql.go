package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const withdrawColumns = `id, user_id, user_email, agent_id, agent_email, method, payment_number, amount_micros, debit_entry_id, status, created_at, updated_at`

func scanWithdrawRequest(row pgx.Row) (WithdrawRequest, error) {
	var i WithdrawRequest
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.UserEmail,
		&i.AgentID,
		&i.AgentEmail,
		&i.Method,
		&i.PaymentNumber,
		&i.AmountMicros,
		&i.DebitEntryID,
		&i.Status,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const insertWithdrawRequest = `-- name: InsertWithdrawRequest :one
INSERT INTO withdraw_requests (
    id, user_id, user_email, agent_id, agent_email, method, payment_number, amount_micros, debit_entry_id, status, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 'pending', NOW(), NOW())
RETURNING ` + withdrawColumns

type InsertWithdrawRequestParams struct {
	ID            pgtype.UUID
	UserID        pgtype.UUID
	UserEmail     string
	AgentID       pgtype.UUID
	AgentEmail    string
	Method        string
	PaymentNumber string
	AmountMicros  int64
	DebitEntryID  pgtype.UUID
}

func (q *Queries) InsertWithdrawRequest(ctx context.Context, arg InsertWithdrawRequestParams) (WithdrawRequest, error) {
	row := q.db.QueryRow(ctx, insertWithdrawRequest,
		arg.ID,
		arg.UserID,
		arg.UserEmail,
		arg.AgentID,
		arg.AgentEmail,
		arg.Method,
		arg.PaymentNumber,
		arg.AmountMicros,
		arg.DebitEntryID,
	)
	return scanWithdrawRequest(row)
}

const getWithdrawRequest = `-- name: GetWithdrawRequest :one
SELECT ` + withdrawColumns + ` FROM withdraw_requests
WHERE id = $1
`

func (q *Queries) GetWithdrawRequest(ctx context.Context, id pgtype.UUID) (WithdrawRequest, error) {
	return scanWithdrawRequest(q.db.QueryRow(ctx, getWithdrawRequest, id))
}

const getWithdrawRequestForUpdate = `-- name: GetWithdrawRequestForUpdate :one
SELECT ` + withdrawColumns + ` FROM withdraw_requests
WHERE id = $1
FOR UPDATE
`

func (q *Queries) GetWithdrawRequestForUpdate(ctx context.Context, id pgtype.UUID) (WithdrawRequest, error) {
	return scanWithdrawRequest(q.db.QueryRow(ctx, getWithdrawRequestForUpdate, id))
}

const updateWithdrawStatus = `-- name: UpdateWithdrawStatus :execrows
UPDATE withdraw_requests
SET status = $2, updated_at = NOW()
WHERE id = $1 AND status = 'pending'
`

type UpdateWithdrawStatusParams struct {
	ID     pgtype.UUID
	Status string
}

func (q *Queries) UpdateWithdrawStatus(ctx context.Context, arg UpdateWithdrawStatusParams) (int64, error) {
	result, err := q.db.Exec(ctx, updateWithdrawStatus, arg.ID, arg.Status)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const listWithdrawRequestsByAgent = `-- name: ListWithdrawRequestsByAgent :many
SELECT ` + withdrawColumns + ` FROM withdraw_requests
WHERE agent_id = $1 AND ($2::text = '' OR status = $2)
ORDER BY created_at DESC, id
LIMIT $3 OFFSET $4
`

type ListWithdrawRequestsByAgentParams struct {
	AgentID pgtype.UUID
	Status  string
	Limit   int32
	Offset  int32
}

func (q *Queries) ListWithdrawRequestsByAgent(ctx context.Context, arg ListWithdrawRequestsByAgentParams) ([]WithdrawRequest, error) {
	rows, err := q.db.Query(ctx, listWithdrawRequestsByAgent,
		arg.AgentID,
		arg.Status,
		arg.Limit,
		arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []WithdrawRequest
	for rows.Next() {
		i, err := scanWithdrawRequest(rows)
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
