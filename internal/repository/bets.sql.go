package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

const betColumns = `seq, id, account_id, bet_type, number, amount_micros, multiplier, prize_micros, status, draw_id, created_at, settled_at`

func scanBet(row pgx.Row) (Bet, error) {
	var i Bet
	err := row.Scan(
		&i.Seq,
		&i.ID,
		&i.AccountID,
		&i.BetType,
		&i.Number,
		&i.AmountMicros,
		&i.Multiplier,
		&i.PrizeMicros,
		&i.Status,
		&i.DrawID,
		&i.CreatedAt,
		&i.SettledAt,
	)
	return i, err
}

func collectBets(rows pgx.Rows) ([]Bet, error) {
	defer rows.Close()
	var items []Bet
	for rows.Next() {
		i, err := scanBet(rows)
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

const insertBet = `-- name: InsertBet :one
INSERT INTO bets (id, account_id, bet_type, number, amount_micros, multiplier, prize_micros, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, 'pending', NOW())
RETURNING ` + betColumns

type InsertBetParams struct {
	ID           pgtype.UUID
	AccountID    pgtype.UUID
	BetType      string
	Number       int32
	AmountMicros int64
	Multiplier   decimal.Decimal
	PrizeMicros  int64
}

func (q *Queries) InsertBet(ctx context.Context, arg InsertBetParams) (Bet, error) {
	row := q.db.QueryRow(ctx, insertBet,
		arg.ID,
		arg.AccountID,
		arg.BetType,
		arg.Number,
		arg.AmountMicros,
		arg.Multiplier,
		arg.PrizeMicros,
	)
	return scanBet(row)
}

const getBet = `-- name: GetBet :one
SELECT ` + betColumns + ` FROM bets
WHERE id = $1
`

func (q *Queries) GetBet(ctx context.Context, id pgtype.UUID) (Bet, error) {
	return scanBet(q.db.QueryRow(ctx, getBet, id))
}

const listPendingBets = `-- name: ListPendingBets :many
SELECT ` + betColumns + ` FROM bets
WHERE status = 'pending' AND created_at <= $1
ORDER BY seq
LIMIT $2
`

type ListPendingBetsParams struct {
	PlacedBefore pgtype.Timestamptz
	Limit        int32
}

func (q *Queries) ListPendingBets(ctx context.Context, arg ListPendingBetsParams) ([]Bet, error) {
	rows, err := q.db.Query(ctx, listPendingBets, arg.PlacedBefore, arg.Limit)
	if err != nil {
		return nil, err
	}
	return collectBets(rows)
}

// The status guard makes settling a bet a one-shot transition.
const settleBet = `-- name: SettleBet :execrows
UPDATE bets
SET status = $2, draw_id = $3, settled_at = NOW()
WHERE id = $1 AND status = 'pending'
`

type SettleBetParams struct {
	ID     pgtype.UUID
	Status string
	DrawID pgtype.UUID
}

func (q *Queries) SettleBet(ctx context.Context, arg SettleBetParams) (int64, error) {
	result, err := q.db.Exec(ctx, settleBet, arg.ID, arg.Status, arg.DrawID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const listBetsForAccount = `-- name: ListBetsForAccount :many
SELECT ` + betColumns + ` FROM bets
WHERE account_id = $1
ORDER BY seq DESC
LIMIT $2 OFFSET $3
`

type ListBetsForAccountParams struct {
	AccountID pgtype.UUID
	Limit     int32
	Offset    int32
}

func (q *Queries) ListBetsForAccount(ctx context.Context, arg ListBetsForAccountParams) ([]Bet, error) {
	rows, err := q.db.Query(ctx, listBetsForAccount, arg.AccountID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	return collectBets(rows)
}

const sumStakesForAccount = `-- name: SumStakesForAccount :one
SELECT COALESCE(SUM(amount_micros), 0)::bigint FROM bets
WHERE account_id = $1
`

func (q *Queries) SumStakesForAccount(ctx context.Context, accountID pgtype.UUID) (int64, error) {
	row := q.db.QueryRow(ctx, sumStakesForAccount, accountID)
	var total int64
	err := row.Scan(&total)
	return total, err
}

const countBetsByDrawAndStatus = `-- name: CountBetsByDrawAndStatus :one
SELECT COUNT(*) FROM bets
WHERE draw_id = $1 AND status = $2
`

type CountBetsByDrawAndStatusParams struct {
	DrawID pgtype.UUID
	Status string
}

func (q *Queries) CountBetsByDrawAndStatus(ctx context.Context, arg CountBetsByDrawAndStatusParams) (int64, error) {
	row := q.db.QueryRow(ctx, countBetsByDrawAndStatus, arg.DrawID, arg.Status)
	var count int64
	err := row.Scan(&count)
	return count, err
}
