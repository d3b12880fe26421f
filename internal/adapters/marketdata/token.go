package marketdata

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"sola/pkg/errors"
)

// Token holds metadata and market stats for a fungible token
type Token struct {
	Address     string          `json:"address"`
	Symbol      string          `json:"symbol"`
	Name        string          `json:"name"`
	Decimals    int             `json:"decimals"`
	PriceUSD    decimal.Decimal `json:"price_usd"`
	MarketCap   decimal.Decimal `json:"market_cap"`
	Liquidity   decimal.Decimal `json:"liquidity"`
	Volume24h   decimal.Decimal `json:"volume_24h"`
	Change24h   float64         `json:"change_24h"`
	HolderCount int             `json:"holder_count"`
	LogoURI     string          `json:"logo_uri,omitempty"`
}

// Holder is a single entry in a token's top holder list
type Holder struct {
	Owner   string          `json:"owner"`
	Amount  decimal.Decimal `json:"amount"`
	Percent float64         `json:"percent"`
}

// Candle is a single OHLCV bar
type Candle struct {
	Time   int64   `json:"unixTime"`
	Open   float64 `json:"o"`
	High   float64 `json:"h"`
	Low    float64 `json:"l"`
	Close  float64 `json:"c"`
	Volume float64 `json:"v"`
}

type tokenOverviewResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Address   string  `json:"address"`
		Symbol    string  `json:"symbol"`
		Name      string  `json:"name"`
		Decimals  int     `json:"decimals"`
		Price     float64 `json:"price"`
		MC        float64 `json:"mc"`
		Liquidity float64 `json:"liquidity"`
		V24hUSD   float64 `json:"v24hUSD"`
		Change24h float64 `json:"priceChange24hPercent"`
		Holder    int     `json:"holder"`
		LogoURI   string  `json:"logoURI"`
	} `json:"data"`
}

// GetTokenByAddress fetches token metadata and market stats by mint address
func (c *Client) GetTokenByAddress(ctx context.Context, address string) (*Token, error) {
	var resp tokenOverviewResponse
	q := url.Values{"address": {address}}
	if err := c.get(ctx, c.baseURL, "/defi/token_overview", q, &resp); err != nil {
		return nil, err
	}
	if !resp.Success || resp.Data.Address == "" {
		return nil, errors.Wrapf(errors.ErrNotFound, "token %s", address)
	}
	return tokenFromOverview(resp), nil
}

type tokenSearchResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Items []struct {
			Address string `json:"address"`
		} `json:"items"`
	} `json:"data"`
}

// GetTokenBySymbol resolves a ticker symbol to its most liquid token
// and fetches its overview. Symbols are not unique on Solana, so the
// top result by liquidity wins.
func (c *Client) GetTokenBySymbol(ctx context.Context, symbol string) (*Token, error) {
	symbol = strings.TrimPrefix(strings.ToUpper(symbol), "$")

	var resp tokenSearchResponse
	q := url.Values{
		"keyword":   {symbol},
		"sort_by":   {"liquidity"},
		"sort_type": {"desc"},
		"limit":     {"1"},
	}
	if err := c.get(ctx, c.baseURL, "/defi/v3/search", q, &resp); err != nil {
		return nil, err
	}
	if !resp.Success || len(resp.Data.Items) == 0 {
		return nil, errors.Wrapf(errors.ErrNotFound, "symbol %s", symbol)
	}
	return c.GetTokenByAddress(ctx, resp.Data.Items[0].Address)
}

type topHoldersResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Items []struct {
			Owner    string  `json:"owner"`
			UIAmount float64 `json:"ui_amount"`
		} `json:"items"`
	} `json:"data"`
}

// GetTopHolders returns the largest holders of a token
func (c *Client) GetTopHolders(ctx context.Context, address string, limit int) ([]Holder, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	var resp topHoldersResponse
	q := url.Values{
		"address": {address},
		"limit":   {strconv.Itoa(limit)},
	}
	if err := c.get(ctx, c.baseURL, "/defi/v3/token/holder", q, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, errors.Wrapf(errors.ErrNotFound, "holders for %s", address)
	}

	total := 0.0
	for _, item := range resp.Data.Items {
		total += item.UIAmount
	}

	holders := make([]Holder, 0, len(resp.Data.Items))
	for _, item := range resp.Data.Items {
		pct := 0.0
		if total > 0 {
			pct = item.UIAmount / total * 100
		}
		holders = append(holders, Holder{
			Owner:   item.Owner,
			Amount:  decimal.NewFromFloat(item.UIAmount),
			Percent: pct,
		})
	}
	return holders, nil
}

type ohlcvResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Items []Candle `json:"items"`
	} `json:"data"`
}

// GetOHLCV returns recent candles for a token at the given interval (e.g. "1H")
func (c *Client) GetOHLCV(ctx context.Context, address string, interval string, from, to int64) ([]Candle, error) {
	var resp ohlcvResponse
	q := url.Values{
		"address":   {address},
		"type":      {interval},
		"time_from": {strconv.FormatInt(from, 10)},
		"time_to":   {strconv.FormatInt(to, 10)},
	}
	if err := c.get(ctx, c.baseURL, "/defi/ohlcv", q, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, errors.Wrapf(errors.ErrNotFound, "ohlcv for %s", address)
	}
	return resp.Data.Items, nil
}

func tokenFromOverview(resp tokenOverviewResponse) *Token {
	d := resp.Data
	return &Token{
		Address:     d.Address,
		Symbol:      d.Symbol,
		Name:        d.Name,
		Decimals:    d.Decimals,
		PriceUSD:    decimal.NewFromFloat(d.Price),
		MarketCap:   decimal.NewFromFloat(d.MC),
		Liquidity:   decimal.NewFromFloat(d.Liquidity),
		Volume24h:   decimal.NewFromFloat(d.V24hUSD),
		Change24h:   d.Change24h,
		HolderCount: d.Holder,
		LogoURI:     d.LogoURI,
	}
}
