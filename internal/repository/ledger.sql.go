package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const ledgerColumns = `seq, id, account_id, type, compartment, amount_micros, currency, note, reference_id, created_at`

func scanLedgerEntry(row pgx.Row) (LedgerEntry, error) {
	var i LedgerEntry
	err := row.Scan(
		&i.Seq,
		&i.ID,
		&i.AccountID,
		&i.Type,
		&i.Compartment,
		&i.AmountMicros,
		&i.Currency,
		&i.Note,
		&i.ReferenceID,
		&i.CreatedAt,
	)
	return i, err
}

const insertLedgerEntry = `-- name: InsertLedgerEntry :one
INSERT INTO ledger_entries (id, account_id, type, compartment, amount_micros, currency, note, reference_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
RETURNING ` + ledgerColumns

type InsertLedgerEntryParams struct {
	ID           pgtype.UUID
	AccountID    pgtype.UUID
	Type         string
	Compartment  string
	AmountMicros int64
	Currency     string
	Note         *string
	ReferenceID  pgtype.UUID
}

func (q *Queries) InsertLedgerEntry(ctx context.Context, arg InsertLedgerEntryParams) (LedgerEntry, error) {
	row := q.db.QueryRow(ctx, insertLedgerEntry,
		arg.ID,
		arg.AccountID,
		arg.Type,
		arg.Compartment,
		arg.AmountMicros,
		arg.Currency,
		arg.Note,
		arg.ReferenceID,
	)
	return scanLedgerEntry(row)
}

const getLedgerEntry = `-- name: GetLedgerEntry :one
SELECT ` + ledgerColumns + ` FROM ledger_entries
WHERE id = $1
`

func (q *Queries) GetLedgerEntry(ctx context.Context, id pgtype.UUID) (LedgerEntry, error) {
	return scanLedgerEntry(q.db.QueryRow(ctx, getLedgerEntry, id))
}

const listLedgerEntriesForAccount = `-- name: ListLedgerEntriesForAccount :many
SELECT ` + ledgerColumns + ` FROM ledger_entries
WHERE account_id = $1
  AND ($2::timestamptz IS NULL OR created_at >= $2)
  AND ($3::timestamptz IS NULL OR created_at < $3)
ORDER BY seq DESC
LIMIT $4 OFFSET $5
`

type ListLedgerEntriesForAccountParams struct {
	AccountID pgtype.UUID
	Since     pgtype.Timestamptz
	Until     pgtype.Timestamptz
	Limit     int32
	Offset    int32
}

func (q *Queries) ListLedgerEntriesForAccount(ctx context.Context, arg ListLedgerEntriesForAccountParams) ([]LedgerEntry, error) {
	rows, err := q.db.Query(ctx, listLedgerEntriesForAccount,
		arg.AccountID,
		arg.Since,
		arg.Until,
		arg.Limit,
		arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []LedgerEntry
	for rows.Next() {
		i, err := scanLedgerEntry(rows)
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

const sumLedgerForAccount = `-- name: SumLedgerForAccount :one
SELECT COALESCE(SUM(amount_micros), 0)::bigint FROM ledger_entries
WHERE account_id = $1
`

func (q *Queries) SumLedgerForAccount(ctx context.Context, accountID pgtype.UUID) (int64, error) {
	row := q.db.QueryRow(ctx, sumLedgerForAccount, accountID)
	var total int64
	err := row.Scan(&total)
	return total, err
}

// Only a withdraw debit still referenced by a pending request may be removed.
const deleteWithdrawDebitEntry = `-- name: DeleteWithdrawDebitEntry :execrows
DELETE FROM ledger_entries le
WHERE le.id = $1
  AND le.account_id = $2
  AND le.type = 'withdraw'
  AND le.amount_micros < 0
  AND EXISTS (
    SELECT 1 FROM withdraw_requests wr
    WHERE wr.debit_entry_id = le.id AND wr.status = 'pending'
  )
`

type DeleteWithdrawDebitEntryParams struct {
	ID        pgtype.UUID
	AccountID pgtype.UUID
}

func (q *Queries) DeleteWithdrawDebitEntry(ctx context.Context, arg DeleteWithdrawDebitEntryParams) (int64, error) {
	result, err := q.db.Exec(ctx, deleteWithdrawDebitEntry, arg.ID, arg.AccountID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
