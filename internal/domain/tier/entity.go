package tier

import (
	"github.com/shopspring/decimal"
)

// Tier is a usage tier granted by holding SOLA tokens.
// Higher balances unlock larger AI usage allowances.
type Tier struct {
	Level      int             `json:"level"`
	Name       string          `json:"name"`
	MinBalance decimal.Decimal `json:"min_balance"` // SOLA tokens required
	LimitUSD   decimal.Decimal `json:"limit_usd"`   // usage allowance per window
}

// Table returns the tier ladder ordered by ascending balance requirement.
// Every wallet lands in at least the base tier.
func Table() []Tier {
	return []Tier{
		{Level: 0, Name: "base", MinBalance: decimal.Zero, LimitUSD: usd(1)},
		{Level: 1, Name: "bronze", MinBalance: tokens(50_000), LimitUSD: usd(2)},
		{Level: 2, Name: "silver", MinBalance: tokens(100_000), LimitUSD: usd(3)},
		{Level: 3, Name: "gold", MinBalance: tokens(500_000), LimitUSD: usd(5)},
		{Level: 4, Name: "platinum", MinBalance: tokens(1_000_000), LimitUSD: usd(10)},
		{Level: 5, Name: "whale", MinBalance: tokens(5_000_000), LimitUSD: usd(20)},
	}
}

// Resolve maps a token balance to its tier. Negative balances resolve the
// same as zero; callers are expected to flag them as anomalies separately.
func Resolve(balance decimal.Decimal) Tier {
	if balance.IsNegative() {
		balance = decimal.Zero
	}

	table := Table()
	resolved := table[0]
	for _, t := range table {
		if balance.GreaterThanOrEqual(t.MinBalance) {
			resolved = t
		}
	}
	return resolved
}

func tokens(n int64) decimal.Decimal {
	return decimal.New(n, 0)
}

func usd(n int64) decimal.Decimal {
	return decimal.New(n, 0)
}
