package token

import (
	"context"
	"fmt"
	"strings"

	"sola/internal/tools"
	"sola/internal/tools/shared"
)

// Inputs of at least this length are treated as mint addresses rather
// than ticker symbols. Solana addresses are 32-44 base58 characters,
// while real tickers stay far shorter.
const addressLengthThreshold = 35

// NewGetTokenDataTool returns a tool that fetches full token metadata and
// market stats by mint address or ticker symbol.
func NewGetTokenDataTool(deps shared.Deps) tools.Tool {
	schema := tools.Schema{
		Params: map[string]tools.Param{
			"query": {
				Type:        tools.TypeString,
				Description: "Token mint address or ticker symbol (e.g. BONK or a base58 address)",
				Required:    true,
			},
		},
	}

	return tools.New("get_token_data",
		"Get metadata, price, liquidity and holder stats for a Solana token",
		schema,
		func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			if !deps.HasMarket() {
				return nil, fmt.Errorf("get_token_data: market data client not configured")
			}

			query := strings.TrimSpace(args["query"].(string))
			if query == "" {
				return nil, fmt.Errorf("get_token_data: query is empty")
			}

			if len(query) >= addressLengthThreshold {
				deps.Log.Debugf("Tool get_token_data: address lookup for %q", query)
				return deps.Market.GetTokenByAddress(ctx, query)
			}

			deps.Log.Debugf("Tool get_token_data: symbol lookup for %q", query)
			return deps.Market.GetTokenBySymbol(ctx, query)
		})
}
