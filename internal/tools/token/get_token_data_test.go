package token

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sola/internal/adapters/marketdata"
	"sola/internal/tools/shared"
	"sola/pkg/logger"
)

type fakeMarket struct {
	addressLookups []string
	symbolLookups  []string
}

func (f *fakeMarket) GetTokenByAddress(ctx context.Context, address string) (*marketdata.Token, error) {
	f.addressLookups = append(f.addressLookups, address)
	return &marketdata.Token{Address: address, Symbol: "BONK"}, nil
}

func (f *fakeMarket) GetTokenBySymbol(ctx context.Context, symbol string) (*marketdata.Token, error) {
	f.symbolLookups = append(f.symbolLookups, symbol)
	return &marketdata.Token{Symbol: symbol}, nil
}

func (f *fakeMarket) GetTopHolders(ctx context.Context, address string, limit int) ([]marketdata.Holder, error) {
	return nil, nil
}

func (f *fakeMarket) GetOHLCV(ctx context.Context, address, interval string, from, to int64) ([]marketdata.Candle, error) {
	return nil, nil
}

func (f *fakeMarket) GetNFTCollection(ctx context.Context, symbol string) (*marketdata.NFTCollection, error) {
	return nil, nil
}

func (f *fakeMarket) GetTrendingNFTs(ctx context.Context, limit int) ([]marketdata.NFTCollection, error) {
	return nil, nil
}

func (f *fakeMarket) GetWalletAssets(ctx context.Context, wallet string) (*marketdata.WalletPortfolio, error) {
	return nil, nil
}

func testDeps(market shared.MarketData) shared.Deps {
	return shared.Deps{Market: market, Log: logger.Get()}
}

func TestGetTokenData_SymbolLookup(t *testing.T) {
	market := &fakeMarket{}
	tool := NewGetTokenDataTool(testDeps(market))

	_, err := tool.Execute(context.Background(), map[string]interface{}{"query": "BONK"})
	require.NoError(t, err)

	assert.Equal(t, []string{"BONK"}, market.symbolLookups)
	assert.Empty(t, market.addressLookups)
}

func TestGetTokenData_AddressLookup(t *testing.T) {
	market := &fakeMarket{}
	tool := NewGetTokenDataTool(testDeps(market))

	// Real Solana mints are 32-44 characters
	mint := "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263"
	_, err := tool.Execute(context.Background(), map[string]interface{}{"query": mint})
	require.NoError(t, err)

	assert.Equal(t, []string{mint}, market.addressLookups)
	assert.Empty(t, market.symbolLookups)
}

func TestGetTokenData_RoutingBoundary(t *testing.T) {
	market := &fakeMarket{}
	tool := NewGetTokenDataTool(testDeps(market))

	// 34 characters routes as symbol, 35 as address
	short := strings.Repeat("a", 34)
	long := strings.Repeat("a", 35)

	_, err := tool.Execute(context.Background(), map[string]interface{}{"query": short})
	require.NoError(t, err)
	_, err = tool.Execute(context.Background(), map[string]interface{}{"query": long})
	require.NoError(t, err)

	assert.Equal(t, []string{short}, market.symbolLookups)
	assert.Equal(t, []string{long}, market.addressLookups)
}

func TestGetTokenData_EmptyQuery(t *testing.T) {
	tool := NewGetTokenDataTool(testDeps(&fakeMarket{}))

	_, err := tool.Execute(context.Background(), map[string]interface{}{"query": "   "})
	require.Error(t, err)
}

func TestGetTokenData_NoMarketClient(t *testing.T) {
	tool := NewGetTokenDataTool(shared.Deps{Log: logger.Get()})

	_, err := tool.Execute(context.Background(), map[string]interface{}{"query": "BONK"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}
