package shared

import (
	"context"

	"sola/internal/adapters/marketdata"
	"sola/pkg/logger"
)

// MarketData covers the token, NFT and wallet lookups tools rely on.
// Declared here so tests can substitute fakes without a live API.
type MarketData interface {
	GetTokenByAddress(ctx context.Context, address string) (*marketdata.Token, error)
	GetTokenBySymbol(ctx context.Context, symbol string) (*marketdata.Token, error)
	GetTopHolders(ctx context.Context, address string, limit int) ([]marketdata.Holder, error)
	GetOHLCV(ctx context.Context, address string, interval string, from, to int64) ([]marketdata.Candle, error)
	GetNFTCollection(ctx context.Context, symbol string) (*marketdata.NFTCollection, error)
	GetTrendingNFTs(ctx context.Context, limit int) ([]marketdata.NFTCollection, error)
	GetWalletAssets(ctx context.Context, wallet string) (*marketdata.WalletPortfolio, error)
}

// Chain covers the on-chain reads tools need
type Chain interface {
	GetSolBalance(ctx context.Context, wallet string) (float64, error)
}

// Deps bundles dependencies required by concrete tool implementations
type Deps struct {
	Market MarketData
	Chain  Chain
	Log    *logger.Logger
}

// HasMarket reports whether the market data client is available
func (d Deps) HasMarket() bool {
	return d.Market != nil
}

// HasChain reports whether the chain client is available
func (d Deps) HasChain() bool {
	return d.Chain != nil
}
