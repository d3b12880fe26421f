package tier

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sola/pkg/errors"
)

type fakeChain struct {
	balance float64
	err     error
	calls   int
}

func (f *fakeChain) GetTokenBalance(ctx context.Context, wallet, mint string) (float64, error) {
	f.calls++
	return f.balance, f.err
}

type fakeCache struct {
	entries map[string]decimal.Decimal
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]decimal.Decimal)}
}

func (f *fakeCache) Get(ctx context.Context, wallet string) (decimal.Decimal, error) {
	if b, ok := f.entries[wallet]; ok {
		return b, nil
	}
	return decimal.Zero, errors.ErrNotFound
}

func (f *fakeCache) Set(ctx context.Context, wallet string, balance decimal.Decimal) error {
	f.entries[wallet] = balance
	return nil
}

func TestResolve_FromRPC(t *testing.T) {
	chain := &fakeChain{balance: 120_000}
	svc := NewService(chain, newFakeCache(), "SoLaMint111111111111111111111111111111111111")

	resolved, err := svc.Resolve(context.Background(), "wallet1")
	require.NoError(t, err)

	assert.Equal(t, "silver", resolved.Name)
	assert.Equal(t, 2, resolved.Level)
	assert.Equal(t, 1, chain.calls)
}

func TestResolve_CacheHitSkipsRPC(t *testing.T) {
	chain := &fakeChain{balance: 999_999_999}
	cache := newFakeCache()
	cache.entries["wallet1"] = decimal.New(50_000, 0)

	svc := NewService(chain, cache, "mint")

	resolved, err := svc.Resolve(context.Background(), "wallet1")
	require.NoError(t, err)

	assert.Equal(t, "bronze", resolved.Name)
	assert.Zero(t, chain.calls)
}

func TestResolve_PopulatesCache(t *testing.T) {
	chain := &fakeChain{balance: 5_000_000}
	cache := newFakeCache()
	svc := NewService(chain, cache, "mint")

	resolved, err := svc.Resolve(context.Background(), "wallet1")
	require.NoError(t, err)
	assert.Equal(t, "whale", resolved.Name)

	// Second resolve must come from cache
	_, err = svc.Resolve(context.Background(), "wallet1")
	require.NoError(t, err)
	assert.Equal(t, 1, chain.calls)
}

func TestResolve_RPCErrorFailsWithUnknownBalance(t *testing.T) {
	chain := &fakeChain{err: errors.ErrRPCUnavailable}
	svc := NewService(chain, newFakeCache(), "mint")

	_, err := svc.Resolve(context.Background(), "wallet1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnknownBalance))
}

func TestResolve_NegativeBalanceTreatedAsZero(t *testing.T) {
	chain := &fakeChain{balance: -42}
	svc := NewService(chain, newFakeCache(), "mint")

	resolved, err := svc.Resolve(context.Background(), "wallet1")
	require.NoError(t, err)
	assert.Equal(t, "base", resolved.Name)
	assert.Equal(t, 0, resolved.Level)
}

func TestResolve_NilCache(t *testing.T) {
	chain := &fakeChain{balance: 1_500_000}
	svc := NewService(chain, nil, "mint")

	resolved, err := svc.Resolve(context.Background(), "wallet1")
	require.NoError(t, err)
	assert.Equal(t, "platinum", resolved.Name)
}
