package tools

import (
	"context"

	"sola/internal/adapters/ai"
	"sola/pkg/errors"
)

// Tool represents a callable capability exposed to agents.
type Tool interface {
	// Name returns the unique tool identifier.
	Name() string
	// Description returns a short human-readable summary.
	Description() string
	// Schema declares the tool's parameters.
	Schema() Schema
	// Execute performs the tool's action using validated arguments.
	Execute(ctx context.Context, args map[string]interface{}) (interface{}, error)
}

// HandlerFunc is the function signature for tool handlers.
type HandlerFunc func(ctx context.Context, args map[string]interface{}) (interface{}, error)

// FunctionTool is a simple Tool implementation backed by a handler function.
type FunctionTool struct {
	name        string
	description string
	schema      Schema
	handler     HandlerFunc
}

// New creates a new function-backed Tool.
func New(name, description string, schema Schema, handler HandlerFunc) Tool {
	return &FunctionTool{
		name:        name,
		description: description,
		schema:      schema,
		handler:     handler,
	}
}

// Name returns the tool identifier.
func (t *FunctionTool) Name() string { return t.name }

// Description returns a human description of the tool.
func (t *FunctionTool) Description() string { return t.description }

// Schema returns the declared parameters.
func (t *FunctionTool) Schema() Schema { return t.schema }

// Execute runs the underlying handler.
func (t *FunctionTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	if t.handler == nil {
		return nil, errors.New("tool handler is not defined")
	}
	return t.handler(ctx, args)
}

// Definition renders a tool as an LLM tool definition
func Definition(t Tool) ai.ToolDefinition {
	return ai.ToolDefinition{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters:  t.Schema().JSONSchema(),
	}
}
