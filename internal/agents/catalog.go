package agents

import "sola/internal/tools"

// DefaultSlug is the agent used when no slug matches
const DefaultSlug = "general"

// NewDefaultRegistry builds the registry with the built-in agents
func NewDefaultRegistry(toolRegistry *tools.Registry) *Registry {
	r := NewRegistry(toolRegistry, Agent{
		Slug:        DefaultSlug,
		Name:        "Sola",
		Description: "General-purpose Solana assistant",
		SystemPrompt: "You are Sola, a helpful Solana ecosystem assistant. " +
			"Use the available tools to answer questions about tokens, NFTs and wallets. " +
			"When a request is ambiguous, ask for clarification instead of guessing.",
		ToolNames: []string{
			"get_token_data",
			"get_token_price",
			"get_trending_nfts",
			"get_wallet_assets",
			"get_sol_balance",
			"ask_for_clarification",
		},
	})

	r.Register(Agent{
		Slug:        "token-analyst",
		Name:        "Token Analyst",
		Description: "Deep dives on fungible tokens: price, liquidity, holders, technicals",
		SystemPrompt: "You are a Solana token analyst. Ground every claim in tool output. " +
			"Flag thin liquidity and concentrated holder distributions.",
		ToolNames: []string{
			"get_token_data",
			"get_token_price",
			"get_top_holders",
			"get_price_analysis",
			"ask_for_clarification",
		},
	})

	r.Register(Agent{
		Slug:        "nft-analyst",
		Name:        "NFT Analyst",
		Description: "NFT collection stats and market trends",
		SystemPrompt: "You are a Solana NFT market analyst. Report floor prices in SOL " +
			"and call out wash trading signals when volume and listings diverge.",
		ToolNames: []string{
			"get_trending_nfts",
			"get_nft_collection",
			"ask_for_clarification",
		},
	})

	r.Register(Agent{
		Slug:        "wallet-inspector",
		Name:        "Wallet Inspector",
		Description: "Wallet holdings and balance breakdowns",
		SystemPrompt: "You are a Solana wallet inspector. Summarize portfolio composition " +
			"and valuations from tool output only.",
		ToolNames: []string{
			"get_wallet_assets",
			"get_sol_balance",
			"get_token_price",
			"ask_for_clarification",
		},
	})

	return r
}
