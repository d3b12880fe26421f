package usage

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Record is a single metered AI interaction
type Record struct {
	ID               uuid.UUID       `ch:"id"`
	UserID           uuid.UUID       `ch:"user_id"`
	SessionID        uuid.UUID       `ch:"session_id"`
	Provider         string          `ch:"provider"`
	Model            string          `ch:"model"`
	PromptTokens     uint32          `ch:"prompt_tokens"`
	CompletionTokens uint32          `ch:"completion_tokens"`
	CostUSD          decimal.Decimal `ch:"cost_usd"`
	CreatedAt        time.Time       `ch:"created_at"`
}

// Status describes a user's consumption against their tier allowance
// over the rolling window
type Status struct {
	UserID       uuid.UUID       `json:"user_id"`
	TierLevel    int             `json:"tier_level"`
	TierName     string          `json:"tier_name"`
	LimitUSD     decimal.Decimal `json:"limit_usd"`
	ConsumedUSD  decimal.Decimal `json:"consumed_usd"`
	RemainingUSD decimal.Decimal `json:"remaining_usd"`
	PercentUsed  float64         `json:"percent_used"`
	Allowed      bool            `json:"allowed"`
	Reason       string          `json:"reason,omitempty"`
	WindowStart  time.Time       `json:"window_start"`
	WindowEnd    time.Time       `json:"window_end"`
}
