package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const accountColumns = `user_id, currency, main_micros, bonus_micros, referral_micros, bank_micros,
    bank_request_time, bank_valid_transfer_time, total_bets, total_wins, total_losses,
    total_win_micros, total_loss_micros, biggest_win_micros, biggest_loss_micros,
    withdraw_count, deposit_count, created_at, updated_at`

func scanAccount(row pgx.Row) (Account, error) {
	var i Account
	err := row.Scan(
		&i.UserID,
		&i.Currency,
		&i.MainMicros,
		&i.BonusMicros,
		&i.ReferralMicros,
		&i.BankMicros,
		&i.BankRequestTime,
		&i.BankValidTransferTime,
		&i.TotalBets,
		&i.TotalWins,
		&i.TotalLosses,
		&i.TotalWinMicros,
		&i.TotalLossMicros,
		&i.BiggestWinMicros,
		&i.BiggestLossMicros,
		&i.WithdrawCount,
		&i.DepositCount,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createAccount = `-- name: CreateAccount :one
INSERT INTO accounts (user_id, currency, created_at, updated_at)
VALUES ($1, $2, NOW(), NOW())
RETURNING ` + accountColumns

type CreateAccountParams struct {
	UserID   pgtype.UUID
	Currency string
}

func (q *Queries) CreateAccount(ctx context.Context, arg CreateAccountParams) (Account, error) {
	return scanAccount(q.db.QueryRow(ctx, createAccount, arg.UserID, arg.Currency))
}

const getAccount = `-- name: GetAccount :one
SELECT ` + accountColumns + ` FROM accounts
WHERE user_id = $1
`

func (q *Queries) GetAccount(ctx context.Context, userID pgtype.UUID) (Account, error) {
	return scanAccount(q.db.QueryRow(ctx, getAccount, userID))
}

const getAccountForUpdate = `-- name: GetAccountForUpdate :one
SELECT ` + accountColumns + ` FROM accounts
WHERE user_id = $1
FOR UPDATE
`

func (q *Queries) GetAccountForUpdate(ctx context.Context, userID pgtype.UUID) (Account, error) {
	return scanAccount(q.db.QueryRow(ctx, getAccountForUpdate, userID))
}

// The guard is evaluated against the row as it is at write time, so two
// concurrent debits cannot both pass it when together they would overdraw.
const adjustCompartment = `-- name: AdjustCompartment :one
UPDATE accounts SET
    main_micros = main_micros + CASE WHEN $2::text = 'main' THEN $3::bigint ELSE 0 END,
    bonus_micros = bonus_micros + CASE WHEN $2::text = 'bonus' THEN $3::bigint ELSE 0 END,
    referral_micros = referral_micros + CASE WHEN $2::text = 'referral' THEN $3::bigint ELSE 0 END,
    bank_micros = bank_micros + CASE WHEN $2::text = 'bank' THEN $3::bigint ELSE 0 END,
    updated_at = NOW()
WHERE user_id = $1
  AND (CASE $2::text
        WHEN 'main' THEN main_micros
        WHEN 'bonus' THEN bonus_micros
        WHEN 'referral' THEN referral_micros
        WHEN 'bank' THEN bank_micros
       END) + $3::bigint >= 0
RETURNING ` + accountColumns

type AdjustCompartmentParams struct {
	UserID      pgtype.UUID
	Compartment string
	Delta       int64
}

func (q *Queries) AdjustCompartment(ctx context.Context, arg AdjustCompartmentParams) (Account, error) {
	return scanAccount(q.db.QueryRow(ctx, adjustCompartment, arg.UserID, arg.Compartment, arg.Delta))
}

const setBankTimes = `-- name: SetBankTimes :execrows
UPDATE accounts
SET bank_request_time = $2,
    bank_valid_transfer_time = COALESCE($3, bank_valid_transfer_time),
    updated_at = NOW()
WHERE user_id = $1
`

type SetBankTimesParams struct {
	UserID                pgtype.UUID
	BankRequestTime       pgtype.Timestamptz
	BankValidTransferTime pgtype.Timestamptz
}

func (q *Queries) SetBankTimes(ctx context.Context, arg SetBankTimesParams) (int64, error) {
	result, err := q.db.Exec(ctx, setBankTimes, arg.UserID, arg.BankRequestTime, arg.BankValidTransferTime)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const incrementBetCount = `-- name: IncrementBetCount :execrows
UPDATE accounts SET total_bets = total_bets + 1, updated_at = NOW()
WHERE user_id = $1
`

func (q *Queries) IncrementBetCount(ctx context.Context, userID pgtype.UUID) (int64, error) {
	result, err := q.db.Exec(ctx, incrementBetCount, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const recordWin = `-- name: RecordWin :execrows
UPDATE accounts
SET total_wins = total_wins + 1,
    total_win_micros = total_win_micros + $2,
    biggest_win_micros = GREATEST(biggest_win_micros, $2),
    updated_at = NOW()
WHERE user_id = $1
`

type RecordOutcomeParams struct {
	UserID       pgtype.UUID
	AmountMicros int64
}

func (q *Queries) RecordWin(ctx context.Context, arg RecordOutcomeParams) (int64, error) {
	result, err := q.db.Exec(ctx, recordWin, arg.UserID, arg.AmountMicros)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const recordLoss = `-- name: RecordLoss :execrows
UPDATE accounts
SET total_losses = total_losses + 1,
    total_loss_micros = total_loss_micros + $2,
    biggest_loss_micros = GREATEST(biggest_loss_micros, $2),
    updated_at = NOW()
WHERE user_id = $1
`

func (q *Queries) RecordLoss(ctx context.Context, arg RecordOutcomeParams) (int64, error) {
	result, err := q.db.Exec(ctx, recordLoss, arg.UserID, arg.AmountMicros)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const incrementWithdrawCount = `-- name: IncrementWithdrawCount :execrows
UPDATE accounts SET withdraw_count = withdraw_count + 1, updated_at = NOW()
WHERE user_id = $1
`

func (q *Queries) IncrementWithdrawCount(ctx context.Context, userID pgtype.UUID) (int64, error) {
	result, err := q.db.Exec(ctx, incrementWithdrawCount, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const incrementDepositCount = `-- name: IncrementDepositCount :execrows
UPDATE accounts SET deposit_count = deposit_count + 1, updated_at = NOW()
WHERE user_id = $1
`

func (q *Queries) IncrementDepositCount(ctx context.Context, userID pgtype.UUID) (int64, error) {
	result, err := q.db.Exec(ctx, incrementDepositCount, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const listAccountIDs = `-- name: ListAccountIDs :many
SELECT user_id FROM accounts
ORDER BY created_at, user_id
LIMIT $1 OFFSET $2
`

type ListAccountIDsParams struct {
	Limit  int32
	Offset int32
}

func (q *Queries) ListAccountIDs(ctx context.Context, arg ListAccountIDsParams) ([]pgtype.UUID, error) {
	rows, err := q.db.Query(ctx, listAccountIDs, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []pgtype.UUID
	for rows.Next() {
		var userID pgtype.UUID
		if err := rows.Scan(&userID); err != nil {
			return nil, err
		}
		items = append(items, userID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
