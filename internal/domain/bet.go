package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

var errNumberOutOfRange = errors.New("bet number must be between 0 and 999")

// ClassifyBet derives the bet type from the number's digit count.
func ClassifyBet(number int) (string, error) {
	switch {
	case number < 0:
		return "", errNumberOutOfRange
	case number <= 9:
		return BetTypeSingle, nil
	case number <= 99:
		return BetTypeDouble, nil
	case number <= 999:
		return BetTypeTriple, nil
	default:
		return "", errNumberOutOfRange
	}
}

// IsBetType reports whether t names a bet type.
func IsBetType(t string) bool {
	switch t {
	case BetTypeSingle, BetTypeDouble, BetTypeTriple:
		return true
	default:
		return false
	}
}

// DefaultMultipliers is the payout table used when the configured table cannot be read.
func DefaultMultipliers() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		BetTypeSingle: decimal.NewFromInt(9),
		BetTypeDouble: decimal.NewFromInt(90),
		BetTypeTriple: decimal.NewFromInt(900),
	}
}

// Prize returns floor(amount * multiplier) in whole currency units. A prize
// too large to store fails with ErrAmountOutOfRange.
func Prize(amountMicros int64, multiplier decimal.Decimal) (int64, error) {
	if amountMicros <= 0 || !multiplier.IsPositive() {
		return 0, nil
	}
	prize, err := NewMoney(amountMicros, "").Multiply(multiplier)
	if err != nil {
		return 0, err
	}
	return FloorToUnits(prize.Amount), nil
}

// DrawNumbers are the winning numbers of one draw, one per bet type.
type DrawNumbers struct {
	Single int
	Double int
	Triple int
}

// Validate checks that each number belongs to its bet type's range.
func (n DrawNumbers) Validate() error {
	for want, v := range map[string]int{BetTypeSingle: n.Single, BetTypeDouble: n.Double, BetTypeTriple: n.Triple} {
		got, err := ClassifyBet(v)
		if err != nil {
			return err
		}
		if got != want {
			return errors.New(want + " number is out of range")
		}
	}
	return nil
}

// Wins reports whether a bet of betType on number matches the draw.
func (n DrawNumbers) Wins(betType string, number int) bool {
	switch betType {
	case BetTypeSingle:
		return number == n.Single
	case BetTypeDouble:
		return number == n.Double
	case BetTypeTriple:
		return number == n.Triple
	default:
		return false
	}
}
