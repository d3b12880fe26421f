// Package catalog wires every concrete tool into a registry.
// It lives outside the tools package so tool subpackages can depend on
// the core types without an import cycle.
package catalog

import (
	"sola/internal/tools"
	"sola/internal/tools/fallback"
	"sola/internal/tools/nft"
	"sola/internal/tools/shared"
	"sola/internal/tools/token"
	"sola/internal/tools/wallet"
)

// RegisterAll registers all available tools in the registry
func RegisterAll(registry *tools.Registry, deps shared.Deps) {
	log := deps.Log.With("component", "tool_registration")

	// Token tools
	registry.Register(token.NewGetTokenDataTool(deps))
	registry.Register(token.NewGetTokenPriceTool(deps))
	registry.Register(token.NewGetTopHoldersTool(deps))
	registry.Register(token.NewPriceAnalysisTool(deps))
	log.Debug("Registered token tools")

	// NFT tools
	registry.Register(nft.NewGetTrendingNFTsTool(deps))
	registry.Register(nft.NewGetNFTCollectionTool(deps))
	log.Debug("Registered NFT tools")

	// Wallet tools
	registry.Register(wallet.NewGetWalletAssetsTool(deps))
	registry.Register(wallet.NewGetSolBalanceTool(deps))
	log.Debug("Registered wallet tools")

	// Fallback
	registry.Register(fallback.NewClarifyTool())

	log.Infof("Tool registration complete: %d tools available", registry.Size())
}
