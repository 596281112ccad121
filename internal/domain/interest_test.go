package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccrueInterest(t *testing.T) {
	rate := decimal.NewFromInt(2)

	cases := []struct {
		name      string
		principal int64
		rate      decimal.Decimal
		elapsed   time.Duration
		want      int64
	}{
		{name: "thirty_hours", principal: Units(500), rate: rate, elapsed: 30 * time.Hour, want: 12_500_000},
		{name: "one_day", principal: Units(1000), rate: rate, elapsed: 24 * time.Hour, want: Units(20)},
		{name: "floors_to_cents", principal: Units(1), rate: rate, elapsed: time.Hour, want: 0},
		{name: "partial_cents_dropped", principal: Units(100), rate: rate, elapsed: 7 * time.Hour, want: 580_000},
		{name: "zero_elapsed", principal: Units(500), rate: rate, elapsed: 0, want: 0},
		{name: "negative_elapsed", principal: Units(500), rate: rate, elapsed: -time.Hour, want: 0},
		{name: "zero_rate", principal: Units(500), rate: decimal.Zero, elapsed: 48 * time.Hour, want: 0},
		{name: "negative_rate", principal: Units(500), rate: decimal.NewFromInt(-3), elapsed: 48 * time.Hour, want: 0},
		{name: "zero_principal", principal: 0, rate: rate, elapsed: 48 * time.Hour, want: 0},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, AccrueInterest(tc.principal, tc.rate, tc.elapsed))
		})
	}
}

func TestAccrueInterestMonotonic(t *testing.T) {
	rate := decimal.RequireFromString("1.75")
	principal := Units(2_345) + 670_000

	prev := int64(0)
	for elapsed := time.Duration(0); elapsed <= 72*time.Hour; elapsed += 17 * time.Minute {
		got := AccrueInterest(principal, rate, elapsed)
		require.GreaterOrEqual(t, got, prev, "elapsed=%s", elapsed)
		require.GreaterOrEqual(t, got, int64(0))
		prev = got
	}
}

func TestInterestPolicy(t *testing.T) {
	assert.True(t, PolicyNoInterestEarly.SkipsInterest(23*time.Hour))
	assert.False(t, PolicyNoInterestEarly.SkipsInterest(25*time.Hour))
	assert.False(t, PolicyStandard.SkipsInterest(time.Minute))

	assert.True(t, InterestPolicy("").Valid())
	assert.True(t, PolicyNoInterestEarly.Valid())
	assert.False(t, InterestPolicy("sometimes").Valid())
}
