package nft

import (
	"context"
	"fmt"

	"sola/internal/tools"
	"sola/internal/tools/shared"
)

// NewGetTrendingNFTsTool returns a tool that lists NFT collections
// trending by 24h volume.
func NewGetTrendingNFTsTool(deps shared.Deps) tools.Tool {
	schema := tools.Schema{
		Params: map[string]tools.Param{
			"limit": {
				Type:        tools.TypeInteger,
				Description: "Number of collections to return (default 10, max 20)",
			},
		},
	}

	return tools.New("get_trending_nfts",
		"Get currently trending Solana NFT collections by 24h volume",
		schema,
		func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			if !deps.HasMarket() {
				return nil, fmt.Errorf("get_trending_nfts: market data client not configured")
			}

			limit := 10
			if v, ok := args["limit"].(float64); ok {
				limit = int(v)
			}
			if limit < 1 {
				limit = 10
			}
			if limit > 20 {
				limit = 20
			}

			return deps.Market.GetTrendingNFTs(ctx, limit)
		})
}
