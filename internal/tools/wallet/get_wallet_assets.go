package wallet

import (
	"context"
	"fmt"

	"sola/internal/adapters/solana"
	"sola/internal/tools"
	"sola/internal/tools/shared"
)

// NewGetWalletAssetsTool returns a tool that lists all token positions
// of a wallet with USD valuations.
func NewGetWalletAssetsTool(deps shared.Deps) tools.Tool {
	schema := tools.Schema{
		Params: map[string]tools.Param{
			"wallet": {
				Type:        tools.TypeString,
				Description: "Base58 wallet address",
				Required:    true,
			},
		},
	}

	return tools.New("get_wallet_assets",
		"Get all token holdings of a Solana wallet with USD values",
		schema,
		func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			if !deps.HasMarket() {
				return nil, fmt.Errorf("get_wallet_assets: market data client not configured")
			}

			addr := args["wallet"].(string)
			if !solana.ValidAddress(addr) {
				return nil, fmt.Errorf("get_wallet_assets: %q is not a valid wallet address", addr)
			}

			return deps.Market.GetWalletAssets(ctx, addr)
		})
}
