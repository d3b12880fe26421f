package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"sola/internal/adapters/redis"
	"sola/pkg/errors"
)

const balanceKeyPrefix = "balance:sola:"

// BalanceCache caches SOLA token balances so tier resolution does not
// hit the RPC endpoint on every request
type BalanceCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewBalanceCache creates a new balance cache
func NewBalanceCache(client *redis.Client, ttl time.Duration) *BalanceCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &BalanceCache{client: client, ttl: ttl}
}

func balanceKey(wallet string) string {
	return fmt.Sprintf("%s%s", balanceKeyPrefix, wallet)
}

// Get returns the cached balance for a wallet
func (c *BalanceCache) Get(ctx context.Context, wallet string) (decimal.Decimal, error) {
	var raw string
	err := c.client.Get(ctx, balanceKey(wallet), &raw)
	if redis.IsNotFound(err) {
		return decimal.Zero, errors.Wrapf(errors.ErrNotFound, "balance for %s", wallet)
	}
	if err != nil {
		return decimal.Zero, err
	}

	balance, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, errors.Wrapf(errors.ErrInternal, "corrupt cached balance for %s", wallet)
	}
	return balance, nil
}

// Set caches a wallet balance
func (c *BalanceCache) Set(ctx context.Context, wallet string, balance decimal.Decimal) error {
	return c.client.Set(ctx, balanceKey(wallet), balance.String(), c.ttl)
}

// Invalidate drops a cached balance
func (c *BalanceCache) Invalidate(ctx context.Context, wallet string) error {
	return c.client.Delete(ctx, balanceKey(wallet))
}
