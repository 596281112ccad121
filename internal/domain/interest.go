package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InterestPolicy controls how a bank move treats owed interest.
type InterestPolicy string

const (
	// PolicyStandard folds accrued interest into every bank move and keeps
	// the lock-in window after deposits into bank.
	PolicyStandard InterestPolicy = "standard"
	// PolicyNoInterestEarly lets a caller leave bank inside the lock-in
	// window; interest is forfeited while less than a day has elapsed.
	PolicyNoInterestEarly InterestPolicy = "no_interest_early"
)

// BankLockIn is how long funds moved into bank stay locked under PolicyStandard.
const BankLockIn = 24 * time.Hour

const secondsPerDay = 86400

// Valid reports whether p is a known policy. The zero value is treated as standard.
func (p InterestPolicy) Valid() bool {
	switch p {
	case "", PolicyStandard, PolicyNoInterestEarly:
		return true
	default:
		return false
	}
}

// AccrueInterest returns principal * (dailyRatePercent/100) * (elapsed/86400s),
// floored to 2 decimal places. The result is never negative.
func AccrueInterest(principalMicros int64, dailyRatePercent decimal.Decimal, elapsed time.Duration) int64 {
	if principalMicros <= 0 || elapsed <= 0 || !dailyRatePercent.IsPositive() {
		return 0
	}

	seconds := decimal.NewFromInt(int64(elapsed / time.Second))
	accrued := decimal.NewFromInt(principalMicros).
		Mul(dailyRatePercent).
		Div(decimal.NewFromInt(100)).
		Mul(seconds).
		Div(decimal.NewFromInt(secondsPerDay))

	return FloorToCents(accrued.IntPart())
}

// SkipsInterest reports whether interest is forfeited for a bank move made
// elapsed after the accrual anchor.
func (p InterestPolicy) SkipsInterest(elapsed time.Duration) bool {
	return p == PolicyNoInterestEarly && elapsed < BankLockIn
}
