package token

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"sola/internal/adapters/marketdata"
	"sola/internal/tools"
	"sola/internal/tools/shared"
)

// PriceResult is the trimmed response of get_token_price
type PriceResult struct {
	Address   string          `json:"address"`
	Symbol    string          `json:"symbol"`
	PriceUSD  decimal.Decimal `json:"price_usd"`
	Change24h float64         `json:"change_24h"`
}

// NewGetTokenPriceTool returns a tool that fetches just the current price
// of a token. Cheaper for the model to consume than the full overview.
func NewGetTokenPriceTool(deps shared.Deps) tools.Tool {
	schema := tools.Schema{
		Params: map[string]tools.Param{
			"query": {
				Type:        tools.TypeString,
				Description: "Token mint address or ticker symbol",
				Required:    true,
			},
		},
	}

	return tools.New("get_token_price",
		"Get the current USD price and 24h change of a Solana token",
		schema,
		func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			if !deps.HasMarket() {
				return nil, fmt.Errorf("get_token_price: market data client not configured")
			}

			query := strings.TrimSpace(args["query"].(string))
			if query == "" {
				return nil, fmt.Errorf("get_token_price: query is empty")
			}

			var (
				t   *marketdata.Token
				err error
			)
			if len(query) >= addressLengthThreshold {
				t, err = deps.Market.GetTokenByAddress(ctx, query)
			} else {
				t, err = deps.Market.GetTokenBySymbol(ctx, query)
			}
			if err != nil {
				return nil, err
			}

			return &PriceResult{
				Address:   t.Address,
				Symbol:    t.Symbol,
				PriceUSD:  t.PriceUSD,
				Change24h: t.Change24h,
			}, nil
		})
}
