package token

import (
	"context"
	"fmt"

	"sola/internal/tools"
	"sola/internal/tools/shared"
)

// NewGetTopHoldersTool returns a tool that lists the largest holders
// of a token, useful for concentration risk checks.
func NewGetTopHoldersTool(deps shared.Deps) tools.Tool {
	schema := tools.Schema{
		Params: map[string]tools.Param{
			"address": {
				Type:        tools.TypeString,
				Description: "Token mint address",
				Required:    true,
			},
			"limit": {
				Type:        tools.TypeInteger,
				Description: "Number of holders to return (default 10, max 50)",
			},
		},
	}

	return tools.New("get_top_holders",
		"Get the largest holders of a Solana token with ownership percentages",
		schema,
		func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			if !deps.HasMarket() {
				return nil, fmt.Errorf("get_top_holders: market data client not configured")
			}

			address := args["address"].(string)
			limit := 10
			if v, ok := args["limit"].(float64); ok {
				limit = int(v)
			}
			if limit < 1 {
				limit = 10
			}
			if limit > 50 {
				limit = 50
			}

			return deps.Market.GetTopHolders(ctx, address, limit)
		})
}
