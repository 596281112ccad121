package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type User struct {
	ID         uuid.UUID  `json:"id"`
	Username   string     `json:"username"`
	Email      string     `json:"email"`
	Role       string     `json:"role"`
	ReferrerID *uuid.UUID `json:"referrer_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Balances is a snapshot of an account's four compartments, in micros.
type Balances struct {
	Main     int64 `json:"main_micros"`
	Bonus    int64 `json:"bonus_micros"`
	Referral int64 `json:"referral_micros"`
	Bank     int64 `json:"bank_micros"`
}

// Total is the aggregate balance across compartments.
func (b Balances) Total() int64 {
	return b.Main + b.Bonus + b.Referral + b.Bank
}

// Stats are the per-account counters maintained alongside balance mutations.
type Stats struct {
	TotalBets       int64 `json:"total_bets"`
	TotalWins       int64 `json:"total_wins"`
	TotalLosses     int64 `json:"total_losses"`
	TotalWinMicros  int64 `json:"total_win_micros"`
	TotalLossMicros int64 `json:"total_loss_micros"`
	BiggestWin      int64 `json:"biggest_win_micros"`
	BiggestLoss     int64 `json:"biggest_loss_micros"`
	WithdrawCount   int64 `json:"withdraw_count"`
	DepositCount    int64 `json:"deposit_count"`
}

type Account struct {
	UserID                uuid.UUID  `json:"user_id"`
	Currency              string     `json:"currency"`
	Balances              Balances   `json:"balances"`
	BankRequestTime       *time.Time `json:"bank_request_time,omitempty"`
	BankValidTransferTime *time.Time `json:"bank_valid_transfer_time,omitempty"`
	Stats                 Stats      `json:"stats"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

type LedgerEntry struct {
	ID           uuid.UUID `json:"id"`
	AccountID    uuid.UUID `json:"account_id"`
	Type         string    `json:"type"`
	Compartment  string    `json:"compartment"`
	AmountMicros int64     `json:"amount_micros"`
	Currency     string    `json:"currency"`
	Note         string    `json:"note,omitempty"`
	ReferenceID  uuid.UUID `json:"reference_id"`
	CreatedAt    time.Time `json:"created_at"`
}

type Bet struct {
	ID           uuid.UUID       `json:"id"`
	AccountID    uuid.UUID       `json:"account_id"`
	BetType      string          `json:"bet_type"`
	Number       int             `json:"number"`
	AmountMicros int64           `json:"amount_micros"`
	Multiplier   decimal.Decimal `json:"multiplier"`
	PrizeMicros  int64           `json:"prize_micros"`
	Status       string          `json:"status"`
	DrawID       *uuid.UUID      `json:"draw_id,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	SettledAt    *time.Time      `json:"settled_at,omitempty"`
}

type Draw struct {
	ID           uuid.UUID `json:"id"`
	SingleNumber int       `json:"single_number"`
	DoubleNumber int       `json:"double_number"`
	TripleNumber int       `json:"triple_number"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type DrawHistory struct {
	ID           uuid.UUID `json:"id"`
	SingleNumber int       `json:"single_number"`
	DoubleNumber int       `json:"double_number"`
	TripleNumber int       `json:"triple_number"`
	WinCount     int64     `json:"win_count"`
	LossCount    int64     `json:"loss_count"`
	CreatedAt    time.Time `json:"created_at"`
	SettledAt    time.Time `json:"settled_at"`
}

type Multiplier struct {
	BetType    string          `json:"bet_type"`
	Multiplier decimal.Decimal `json:"multiplier"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

type WithdrawRequest struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	UserEmail     string    `json:"user_email"`
	AgentID       uuid.UUID `json:"agent_id"`
	AgentEmail    string    `json:"agent_email"`
	Method        string    `json:"method"`
	PaymentNumber string    `json:"payment_number"`
	AmountMicros  int64     `json:"amount_micros"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
