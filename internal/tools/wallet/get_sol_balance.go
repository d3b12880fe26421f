package wallet

import (
	"context"
	"fmt"

	"sola/internal/adapters/solana"
	"sola/internal/tools"
	"sola/internal/tools/shared"
)

// BalanceResult is the response of get_sol_balance
type BalanceResult struct {
	Wallet     string  `json:"wallet"`
	BalanceSOL float64 `json:"balance_sol"`
}

// NewGetSolBalanceTool returns a tool that reads a wallet's native SOL
// balance straight from the chain.
func NewGetSolBalanceTool(deps shared.Deps) tools.Tool {
	schema := tools.Schema{
		Params: map[string]tools.Param{
			"wallet": {
				Type:        tools.TypeString,
				Description: "Base58 wallet address",
				Required:    true,
			},
		},
	}

	return tools.New("get_sol_balance",
		"Get the native SOL balance of a Solana wallet",
		schema,
		func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			if !deps.HasChain() {
				return nil, fmt.Errorf("get_sol_balance: chain client not configured")
			}

			addr := args["wallet"].(string)
			if !solana.ValidAddress(addr) {
				return nil, fmt.Errorf("get_sol_balance: %q is not a valid wallet address", addr)
			}

			balance, err := deps.Chain.GetSolBalance(ctx, addr)
			if err != nil {
				return nil, err
			}

			return &BalanceResult{Wallet: addr, BalanceSOL: balance}, nil
		})
}
