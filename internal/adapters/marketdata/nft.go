package marketdata

import (
	"context"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"

	"sola/pkg/errors"
)

// NFTCollection holds stats for a single NFT collection
type NFTCollection struct {
	Symbol      string          `json:"symbol"`
	Name        string          `json:"name"`
	FloorPrice  decimal.Decimal `json:"floor_price_sol"`
	ListedCount int             `json:"listed_count"`
	Volume24h   decimal.Decimal `json:"volume_24h_sol"`
	VolumeAll   decimal.Decimal `json:"volume_all_sol"`
	Image       string          `json:"image,omitempty"`
	Description string          `json:"description,omitempty"`
}

type collectionStatsResponse struct {
	Symbol       string  `json:"symbol"`
	FloorPrice   int64   `json:"floorPrice"` // lamports
	ListedCount  int     `json:"listedCount"`
	VolumeAll    float64 `json:"volumeAll"`
}

type collectionInfoResponse struct {
	Symbol      string `json:"symbol"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	Description string `json:"description"`
}

// GetNFTCollection fetches stats for a collection by its marketplace symbol
func (c *Client) GetNFTCollection(ctx context.Context, symbol string) (*NFTCollection, error) {
	var info collectionInfoResponse
	if err := c.get(ctx, c.nftBaseURL, "/collections/"+url.PathEscape(symbol), nil, &info); err != nil {
		return nil, err
	}
	if info.Symbol == "" {
		return nil, errors.Wrapf(errors.ErrNotFound, "collection %s", symbol)
	}

	var stats collectionStatsResponse
	if err := c.get(ctx, c.nftBaseURL, "/collections/"+url.PathEscape(symbol)+"/stats", nil, &stats); err != nil {
		return nil, err
	}

	return &NFTCollection{
		Symbol:      info.Symbol,
		Name:        info.Name,
		FloorPrice:  lamportsToSol(stats.FloorPrice),
		ListedCount: stats.ListedCount,
		VolumeAll:   decimal.NewFromFloat(stats.VolumeAll),
		Image:       info.Image,
		Description: info.Description,
	}, nil
}

type trendingCollectionsResponse struct {
	Collections []struct {
		Symbol     string  `json:"symbol"`
		Name       string  `json:"name"`
		FloorPrice int64   `json:"fp"` // lamports
		Volume24h  float64 `json:"vol"`
		Image      string  `json:"image"`
	} `json:"collections"`
}

// GetTrendingNFTs returns currently trending collections by 24h volume
func (c *Client) GetTrendingNFTs(ctx context.Context, limit int) ([]NFTCollection, error) {
	if limit <= 0 || limit > 20 {
		limit = 10
	}

	var resp trendingCollectionsResponse
	q := url.Values{
		"limit":      {strconv.Itoa(limit)},
		"timeRange":  {"1d"},
	}
	if err := c.get(ctx, c.nftBaseURL, "/marketplace/popular_collections", q, &resp); err != nil {
		return nil, err
	}

	collections := make([]NFTCollection, 0, len(resp.Collections))
	for _, col := range resp.Collections {
		collections = append(collections, NFTCollection{
			Symbol:     col.Symbol,
			Name:       col.Name,
			FloorPrice: lamportsToSol(col.FloorPrice),
			Volume24h:  decimal.NewFromFloat(col.Volume24h),
			Image:      col.Image,
		})
	}
	return collections, nil
}

func lamportsToSol(lamports int64) decimal.Decimal {
	return decimal.New(lamports, 0).Div(decimal.New(1_000_000_000, 0))
}
