package repository

import (
	"context"

	"github.com/shopspring/decimal"
)

const listMultipliers = `-- name: ListMultipliers :many
SELECT bet_type, multiplier, updated_at FROM multipliers
ORDER BY bet_type
`

func (q *Queries) ListMultipliers(ctx context.Context) ([]Multiplier, error) {
	rows, err := q.db.Query(ctx, listMultipliers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Multiplier
	for rows.Next() {
		var i Multiplier
		if err := rows.Scan(&i.BetType, &i.Multiplier, &i.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const upsertMultiplier = `-- name: UpsertMultiplier :one
INSERT INTO multipliers (bet_type, multiplier, updated_at)
VALUES ($1, $2, NOW())
ON CONFLICT (bet_type) DO UPDATE
SET multiplier = EXCLUDED.multiplier, updated_at = NOW()
RETURNING bet_type, multiplier, updated_at
`

type UpsertMultiplierParams struct {
	BetType    string
	Multiplier decimal.Decimal
}

func (q *Queries) UpsertMultiplier(ctx context.Context, arg UpsertMultiplierParams) (Multiplier, error) {
	row := q.db.QueryRow(ctx, upsertMultiplier, arg.BetType, arg.Multiplier)
	var i Multiplier
	err := row.Scan(&i.BetType, &i.Multiplier, &i.UpdatedAt)
	return i, err
}
