package domain

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoney_ToDecimal(t *testing.T) {
	m := NewMoney(10_500_000, "BDT") // 10.50
	assert.Equal(t, "10.5", m.ToDecimal().String())
}

func TestFromDecimal(t *testing.T) {
	d := decimal.NewFromFloat(10.50)
	micros, err := FromDecimal(d)
	require.NoError(t, err)
	assert.Equal(t, int64(10_500_000), micros)
}

func TestFromDecimalRejectsValuesBeyondInt64(t *testing.T) {
	// 9223372036854.775807 is the largest representable amount.
	micros, err := FromDecimal(decimal.RequireFromString("9223372036854.775807"))
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), micros)

	_, err = FromDecimal(decimal.RequireFromString("9223372036854.775808"))
	require.ErrorIs(t, err, ErrAmountOutOfRange)
	_, err = FromDecimal(decimal.RequireFromString("-10000000000000"))
	require.ErrorIs(t, err, ErrAmountOutOfRange)

	_, err = NewMoney(math.MaxInt64, "BDT").Multiply(decimal.NewFromInt(2))
	require.ErrorIs(t, err, ErrAmountOutOfRange)
}

func TestMoney_Multiply_Precision(t *testing.T) {
	// 100 * 0.925555 = 92.5555
	m, err := NewMoney(100_000_000, "BDT").Multiply(decimal.RequireFromString("0.925555"))
	require.NoError(t, err)
	assert.Equal(t, int64(92_555_500), m.Amount)
	assert.Equal(t, "BDT", m.Currency)
}

func TestFloorToCents(t *testing.T) {
	assert.Equal(t, int64(12_340_000), FloorToCents(12_349_999))
	assert.Equal(t, int64(0), FloorToCents(9_999))
	assert.Equal(t, int64(0), FloorToCents(-5_000_000))
}

func TestFloorToUnits(t *testing.T) {
	assert.Equal(t, int64(12_000_000), FloorToUnits(12_999_999))
	assert.Equal(t, int64(0), FloorToUnits(-1))
}

func TestMoney_String(t *testing.T) {
	assert.Equal(t, "512.50 BDT", NewMoney(Units(512)+500_000, "BDT").String())
}
