package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

// Querier is the full statement set. It is implemented by *Queries over
// Postgres and by the in-memory store used for development and tests.
type Querier interface {
	// users
	CreateUser(ctx context.Context, arg CreateUserParams) (User, error)
	GetUser(ctx context.Context, id pgtype.UUID) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)

	// accounts
	CreateAccount(ctx context.Context, arg CreateAccountParams) (Account, error)
	GetAccount(ctx context.Context, userID pgtype.UUID) (Account, error)
	GetAccountForUpdate(ctx context.Context, userID pgtype.UUID) (Account, error)
	AdjustCompartment(ctx context.Context, arg AdjustCompartmentParams) (Account, error)
	SetBankTimes(ctx context.Context, arg SetBankTimesParams) (int64, error)
	IncrementBetCount(ctx context.Context, userID pgtype.UUID) (int64, error)
	RecordWin(ctx context.Context, arg RecordOutcomeParams) (int64, error)
	RecordLoss(ctx context.Context, arg RecordOutcomeParams) (int64, error)
	IncrementWithdrawCount(ctx context.Context, userID pgtype.UUID) (int64, error)
	IncrementDepositCount(ctx context.Context, userID pgtype.UUID) (int64, error)
	ListAccountIDs(ctx context.Context, arg ListAccountIDsParams) ([]pgtype.UUID, error)

	// ledger
	InsertLedgerEntry(ctx context.Context, arg InsertLedgerEntryParams) (LedgerEntry, error)
	GetLedgerEntry(ctx context.Context, id pgtype.UUID) (LedgerEntry, error)
	ListLedgerEntriesForAccount(ctx context.Context, arg ListLedgerEntriesForAccountParams) ([]LedgerEntry, error)
	SumLedgerForAccount(ctx context.Context, accountID pgtype.UUID) (int64, error)
	DeleteWithdrawDebitEntry(ctx context.Context, arg DeleteWithdrawDebitEntryParams) (int64, error)

	// bets
	InsertBet(ctx context.Context, arg InsertBetParams) (Bet, error)
	GetBet(ctx context.Context, id pgtype.UUID) (Bet, error)
	ListPendingBets(ctx context.Context, arg ListPendingBetsParams) ([]Bet, error)
	SettleBet(ctx context.Context, arg SettleBetParams) (int64, error)
	ListBetsForAccount(ctx context.Context, arg ListBetsForAccountParams) ([]Bet, error)
	SumStakesForAccount(ctx context.Context, accountID pgtype.UUID) (int64, error)
	CountBetsByDrawAndStatus(ctx context.Context, arg CountBetsByDrawAndStatusParams) (int64, error)

	// draws
	InsertDraw(ctx context.Context, arg InsertDrawParams) (Draw, error)
	GetDraw(ctx context.Context, id pgtype.UUID) (Draw, error)
	GetDrawForUpdate(ctx context.Context, id pgtype.UUID) (Draw, error)
	GetLiveDraw(ctx context.Context) (Draw, error)
	ListDrawsByStatus(ctx context.Context, status string) ([]Draw, error)
	UpdateDrawStatus(ctx context.Context, arg UpdateDrawStatusParams) (int64, error)
	DeleteDraw(ctx context.Context, id pgtype.UUID) (int64, error)
	InsertDrawHistory(ctx context.Context, arg InsertDrawHistoryParams) (DrawHistory, error)
	GetDrawHistory(ctx context.Context, id pgtype.UUID) (DrawHistory, error)
	ListDrawHistory(ctx context.Context, arg ListDrawHistoryParams) ([]DrawHistory, error)

	// multipliers
	ListMultipliers(ctx context.Context) ([]Multiplier, error)
	UpsertMultiplier(ctx context.Context, arg UpsertMultiplierParams) (Multiplier, error)

	// withdraw requests
	InsertWithdrawRequest(ctx context.Context, arg InsertWithdrawRequestParams) (WithdrawRequest, error)
	GetWithdrawRequest(ctx context.Context, id pgtype.UUID) (WithdrawRequest, error)
	GetWithdrawRequestForUpdate(ctx context.Context, id pgtype.UUID) (WithdrawRequest, error)
	UpdateWithdrawStatus(ctx context.Context, arg UpdateWithdrawStatusParams) (int64, error)
	ListWithdrawRequestsByAgent(ctx context.Context, arg ListWithdrawRequestsByAgentParams) ([]WithdrawRequest, error)

	// audit
	InsertAuditLog(ctx context.Context, arg InsertAuditLogParams) (AuditLog, error)
	ListAuditLogForEntity(ctx context.Context, entityID pgtype.UUID) ([]AuditLog, error)

	// idempotency
	GetIdempotencyKey(ctx context.Context, idempotencyKey string) (IdempotencyKey, error)
	ReserveIdempotencyKey(ctx context.Context, arg ReserveIdempotencyKeyParams) (IdempotencyKey, error)
	FinalizeIdempotencyKey(ctx context.Context, arg FinalizeIdempotencyKeyParams) (IdempotencyKey, error)
	ReleaseIdempotencyKey(ctx context.Context, arg ReleaseIdempotencyKeyParams) (int64, error)
}
