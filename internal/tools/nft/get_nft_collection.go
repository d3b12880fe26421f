package nft

import (
	"context"
	"fmt"
	"strings"

	"sola/internal/tools"
	"sola/internal/tools/shared"
)

// NewGetNFTCollectionTool returns a tool that fetches floor price and
// listing stats for a single NFT collection.
func NewGetNFTCollectionTool(deps shared.Deps) tools.Tool {
	schema := tools.Schema{
		Params: map[string]tools.Param{
			"symbol": {
				Type:        tools.TypeString,
				Description: "Collection symbol as listed on the marketplace (e.g. mad_lads)",
				Required:    true,
			},
		},
	}

	return tools.New("get_nft_collection",
		"Get floor price, listings and volume for a Solana NFT collection",
		schema,
		func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			if !deps.HasMarket() {
				return nil, fmt.Errorf("get_nft_collection: market data client not configured")
			}

			symbol := strings.TrimSpace(args["symbol"].(string))
			if symbol == "" {
				return nil, fmt.Errorf("get_nft_collection: symbol is empty")
			}

			return deps.Market.GetNFTCollection(ctx, symbol)
		})
}
