package tier

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name      string
		balance   int64
		wantLevel int
		wantLimit int64
	}{
		{"zero balance", 0, 0, 1},
		{"below first threshold", 49_999, 0, 1},
		{"exactly first threshold", 50_000, 1, 2},
		{"between thresholds", 600_000, 3, 5},
		{"exactly gold", 500_000, 3, 5},
		{"just under gold", 499_999, 2, 3},
		{"whale", 5_000_000, 5, 20},
		{"beyond whale", 50_000_000, 5, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(decimal.New(tt.balance, 0))
			assert.Equal(t, tt.wantLevel, got.Level)
			assert.True(t, got.LimitUSD.Equal(decimal.New(tt.wantLimit, 0)),
				"limit mismatch: got %s", got.LimitUSD)
		})
	}
}

func TestResolve_NegativeBalanceEqualsZero(t *testing.T) {
	negative := Resolve(decimal.New(-1_000, 0))
	zero := Resolve(decimal.Zero)
	assert.Equal(t, zero, negative)
}

func TestResolve_Monotonic(t *testing.T) {
	prev := Resolve(decimal.Zero)
	for _, balance := range []int64{1, 49_999, 50_000, 99_999, 100_000, 500_000, 999_999, 1_000_000, 4_999_999, 5_000_000, 10_000_000} {
		cur := Resolve(decimal.New(balance, 0))
		assert.GreaterOrEqual(t, cur.Level, prev.Level, "tier dropped at balance %d", balance)
		assert.True(t, cur.LimitUSD.GreaterThanOrEqual(prev.LimitUSD),
			"limit dropped at balance %d", balance)
		prev = cur
	}
}
