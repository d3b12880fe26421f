package marketdata

import (
	"context"
	"net/url"

	"github.com/shopspring/decimal"

	"sola/pkg/errors"
)

// WalletAsset is a single token position held by a wallet
type WalletAsset struct {
	Address  string          `json:"address"`
	Symbol   string          `json:"symbol"`
	Name     string          `json:"name"`
	Amount   float64         `json:"amount"`
	ValueUSD decimal.Decimal `json:"value_usd"`
}

// WalletPortfolio is the full token holdings of a wallet
type WalletPortfolio struct {
	Wallet   string          `json:"wallet"`
	TotalUSD decimal.Decimal `json:"total_usd"`
	Assets   []WalletAsset   `json:"assets"`
}

type walletTokenListResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Wallet   string  `json:"wallet"`
		TotalUSD float64 `json:"totalUsd"`
		Items    []struct {
			Address  string  `json:"address"`
			Symbol   string  `json:"symbol"`
			Name     string  `json:"name"`
			UIAmount float64 `json:"uiAmount"`
			ValueUSD float64 `json:"valueUsd"`
		} `json:"items"`
	} `json:"data"`
}

// GetWalletAssets returns all token positions of a wallet with USD valuations
func (c *Client) GetWalletAssets(ctx context.Context, wallet string) (*WalletPortfolio, error) {
	var resp walletTokenListResponse
	q := url.Values{"wallet": {wallet}}
	if err := c.get(ctx, c.baseURL, "/v1/wallet/token_list", q, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, errors.Wrapf(errors.ErrNotFound, "wallet %s", wallet)
	}

	assets := make([]WalletAsset, 0, len(resp.Data.Items))
	for _, item := range resp.Data.Items {
		assets = append(assets, WalletAsset{
			Address:  item.Address,
			Symbol:   item.Symbol,
			Name:     item.Name,
			Amount:   item.UIAmount,
			ValueUSD: decimal.NewFromFloat(item.ValueUSD),
		})
	}

	return &WalletPortfolio{
		Wallet:   wallet,
		TotalUSD: decimal.NewFromFloat(resp.Data.TotalUSD),
		Assets:   assets,
	}, nil
}
