package repository

import (
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

type Account struct {
	UserID                pgtype.UUID
	Currency              string
	MainMicros            int64
	BonusMicros           int64
	ReferralMicros        int64
	BankMicros            int64
	BankRequestTime       pgtype.Timestamptz
	BankValidTransferTime pgtype.Timestamptz
	TotalBets             int64
	TotalWins             int64
	TotalLosses           int64
	TotalWinMicros        int64
	TotalLossMicros       int64
	BiggestWinMicros      int64
	BiggestLossMicros     int64
	WithdrawCount         int64
	DepositCount          int64
	CreatedAt             pgtype.Timestamptz
	UpdatedAt             pgtype.Timestamptz
}

type AuditLog struct {
	ID         int64
	EntityType string
	EntityID   pgtype.UUID
	ActorID    pgtype.UUID
	Action     string
	PrevState  *string
	NextState  *string
	Metadata   []byte
	CreatedAt  pgtype.Timestamptz
}

type Bet struct {
	Seq          int64
	ID           pgtype.UUID
	AccountID    pgtype.UUID
	BetType      string
	Number       int32
	AmountMicros int64
	Multiplier   decimal.Decimal
	PrizeMicros  int64
	Status       string
	DrawID       pgtype.UUID
	CreatedAt    pgtype.Timestamptz
	SettledAt    pgtype.Timestamptz
}

type Draw struct {
	ID           pgtype.UUID
	SingleNumber int32
	DoubleNumber int32
	TripleNumber int32
	Status       string
	CreatedAt    pgtype.Timestamptz
	UpdatedAt    pgtype.Timestamptz
}

type DrawHistory struct {
	ID           pgtype.UUID
	SingleNumber int32
	DoubleNumber int32
	TripleNumber int32
	WinCount     int64
	LossCount    int64
	CreatedAt    pgtype.Timestamptz
	SettledAt    pgtype.Timestamptz
}

type IdempotencyKey struct {
	IdempotencyKey string
	RequestHash    string
	Method         string
	Path           string
	ResponseStatus int32
	ResponseBody   []byte
	ContentType    string
	InProgress     bool
	CreatedAt      pgtype.Timestamptz
	UpdatedAt      pgtype.Timestamptz
}

type LedgerEntry struct {
	Seq          int64
	ID           pgtype.UUID
	AccountID    pgtype.UUID
	Type         string
	Compartment  string
	AmountMicros int64
	Currency     string
	Note         *string
	ReferenceID  pgtype.UUID
	CreatedAt    pgtype.Timestamptz
}

type Multiplier struct {
	BetType    string
	Multiplier decimal.Decimal
	UpdatedAt  pgtype.Timestamptz
}

type User struct {
	ID         pgtype.UUID
	Username   string
	Email      string
	Role       string
	ReferrerID pgtype.UUID
	CreatedAt  pgtype.Timestamptz
}

type WithdrawRequest struct {
	ID            pgtype.UUID
	UserID        pgtype.UUID
	UserEmail     string
	AgentID       pgtype.UUID
	AgentEmail    string
	Method        string
	PaymentNumber string
	AmountMicros  int64
	DebitEntryID  pgtype.UUID
	Status        string
	CreatedAt     pgtype.Timestamptz
	UpdatedAt     pgtype.Timestamptz
}
