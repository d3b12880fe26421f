package ai

import (
	"context"

	"github.com/shopspring/decimal"
)

// ProviderName identifies an LLM provider
type ProviderName string

const (
	ProviderNameOpenAI ProviderName = "openai"
	ProviderNameGemini ProviderName = "gemini"
)

// Provider is a chat completion backend with tool calling support
type Provider interface {
	Name() ProviderName

	// Chat sends a chat completion request and returns the full response
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// ChatRequest represents a chat completion request
type ChatRequest struct {
	Model       string
	Messages    []Message
	Tools       []ToolDefinition
	Temperature float64
	MaxTokens   int
}

// MessageRole defines the role of a message sender
type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleTool      MessageRole = "tool"
)

// Message represents a single message in the conversation
type Message struct {
	Role       MessageRole
	Content    string
	ToolCalls  []ToolCall
	ToolCallID string // For tool responses
	Name       string // For tool messages
}

// ToolDefinition describes a function the model can call
type ToolDefinition struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"` // JSON schema
}

// ToolCall represents a tool invocation request from the model
type ToolCall struct {
	ID        string
	Name      string
	Arguments string // JSON-encoded arguments
}

// FinishReason indicates why the model stopped generating
type FinishReason string

const (
	FinishReasonStop      FinishReason = "stop"
	FinishReasonLength    FinishReason = "length"
	FinishReasonToolCalls FinishReason = "tool_calls"
)

// Usage tracks token consumption for a single completion
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// ChatResponse represents the response from a chat completion
type ChatResponse struct {
	ID           string
	Model        string
	Content      string
	ToolCalls    []ToolCall
	FinishReason FinishReason
	Usage        Usage
	CostUSD      decimal.Decimal
}

// modelPricing holds per-million-token prices in USD
type modelPricing struct {
	inputPerM  float64
	outputPerM float64
}

var pricingTable = map[string]modelPricing{
	"gpt-4o":           {inputPerM: 2.50, outputPerM: 10.00},
	"gpt-4o-mini":      {inputPerM: 0.15, outputPerM: 0.60},
	"gemini-2.0-flash": {inputPerM: 0.10, outputPerM: 0.40},
	"gemini-1.5-pro":   {inputPerM: 1.25, outputPerM: 5.00},
}

// Fallback pricing for unknown models, deliberately on the expensive side
// so metering overestimates rather than undercharges
var defaultPricing = modelPricing{inputPerM: 2.50, outputPerM: 10.00}

// EstimateCost computes the USD cost of a completion from its token usage
func EstimateCost(model string, usage Usage) decimal.Decimal {
	p, ok := pricingTable[model]
	if !ok {
		p = defaultPricing
	}

	in := decimal.NewFromInt(int64(usage.PromptTokens)).
		Mul(decimal.NewFromFloat(p.inputPerM)).
		Div(decimal.New(1_000_000, 0))
	out := decimal.NewFromInt(int64(usage.CompletionTokens)).
		Mul(decimal.NewFromFloat(p.outputPerM)).
		Div(decimal.New(1_000_000, 0))

	return in.Add(out)
}
