package fallback

import (
	"context"

	"sola/internal/tools"
)

// ClarificationRequest is the response of ask_for_clarification. It is
// surfaced back to the user verbatim; the tool itself performs no I/O.
type ClarificationRequest struct {
	Question string `json:"question"`
}

// NewClarifyTool returns the fallback tool agents use when a request
// does not match any capability.
func NewClarifyTool() tools.Tool {
	schema := tools.Schema{
		Params: map[string]tools.Param{
			"question": {
				Type:        tools.TypeString,
				Description: "The clarifying question to ask the user",
				Required:    true,
			},
		},
	}

	return tools.New("ask_for_clarification",
		"Ask the user a clarifying question when the request is ambiguous",
		schema,
		func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			return &ClarificationRequest{Question: args["question"].(string)}, nil
		})
}
