package domain

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// ErrAmountOutOfRange reports a value that does not fit in int64 micros.
var ErrAmountOutOfRange = errors.New("amount is out of range")

var (
	maxMicros = decimal.NewFromInt(math.MaxInt64)
	minMicros = decimal.NewFromInt(math.MinInt64)
)

// MicrosPerUnit is the number of stored micros in one currency unit.
const MicrosPerUnit = 1_000_000

// microsPerCent is the storage granularity of a 2-decimal amount.
const microsPerCent = MicrosPerUnit / 100

// Money represents a monetary value in a specific currency.
// Amount is stored as BIGINT micros (10^-6) to avoid floating point errors.
type Money struct {
	Amount   int64  // micros
	Currency string // ISO 4217
}

// NewMoney creates a new Money instance from micros.
func NewMoney(amount int64, currency string) Money {
	return Money{
		Amount:   amount,
		Currency: currency,
	}
}

// ToDecimal converts the int64 micros to a shopspring/decimal.Decimal.
func (m Money) ToDecimal() decimal.Decimal {
	return ToDecimal(m.Amount)
}

// ToDecimal converts micros to currency units.
func ToDecimal(micros int64) decimal.Decimal {
	return decimal.NewFromInt(micros).Div(decimal.NewFromInt(MicrosPerUnit))
}

// FromDecimal converts a decimal.Decimal to int64 micros, truncating sub-micro
// precision. Values beyond the int64 range fail with ErrAmountOutOfRange.
func FromDecimal(d decimal.Decimal) (int64, error) {
	micros := d.Mul(decimal.NewFromInt(MicrosPerUnit)).Truncate(0)
	if micros.GreaterThan(maxMicros) || micros.LessThan(minMicros) {
		return 0, ErrAmountOutOfRange
	}
	return micros.IntPart(), nil
}

// Units converts a whole number of currency units to micros.
func Units(n int64) int64 {
	return n * MicrosPerUnit
}

// FloorToCents drops everything below 2 decimal places.
func FloorToCents(micros int64) int64 {
	if micros <= 0 {
		return 0
	}
	return micros - micros%microsPerCent
}

// FloorToUnits drops the fractional part of a non-negative amount.
func FloorToUnits(micros int64) int64 {
	if micros <= 0 {
		return 0
	}
	return micros - micros%MicrosPerUnit
}

// Multiply returns m scaled by factor, rounded down to the micro.
func (m Money) Multiply(factor decimal.Decimal) (Money, error) {
	amount, err := FromDecimal(m.ToDecimal().Mul(factor))
	if err != nil {
		return Money{}, err
	}
	return Money{Amount: amount, Currency: m.Currency}, nil
}

// String returns the string representation of the money.
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.ToDecimal().StringFixed(2), m.Currency)
}
