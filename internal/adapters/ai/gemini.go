package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"sola/pkg/errors"
	"sola/pkg/logger"
)

// GeminiProvider implements Provider using the Google Gemini API
type GeminiProvider struct {
	client *genai.Client
	log    *logger.Logger
}

var _ Provider = (*GeminiProvider)(nil)

// NewGeminiProvider creates a new Gemini provider
func NewGeminiProvider(ctx context.Context, apiKey string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, errors.Wrapf(errors.ErrExternal, "gemini client: %v", err)
	}

	return &GeminiProvider{
		client: client,
		log:    logger.Get().With("component", "ai_provider", "provider", "gemini"),
	}, nil
}

// Name returns the provider name
func (p *GeminiProvider) Name() ProviderName {
	return ProviderNameGemini
}

// Chat sends a chat completion request with tool calling support
func (p *GeminiProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	contents, system := geminiContents(req.Messages)

	cfg := &genai.GenerateContentConfig{}
	if system != "" {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		}
	}
	if req.Temperature > 0 {
		cfg.Temperature = genai.Ptr(float32(req.Temperature))
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}
	if len(req.Tools) > 0 {
		decls := make([]*genai.FunctionDeclaration, 0, len(req.Tools))
		for _, t := range req.Tools {
			decls = append(decls, &genai.FunctionDeclaration{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  geminiSchema(t.Parameters),
			})
		}
		cfg.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}

	resp, err := p.client.Models.GenerateContent(ctx, req.Model, contents, cfg)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrExternal, "gemini chat: %v", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, errors.Wrap(errors.ErrExternal, "gemini chat: empty candidates")
	}

	candidate := resp.Candidates[0]
	out := &ChatResponse{
		Model:        req.Model,
		FinishReason: FinishReasonStop,
	}

	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		if part.Text != "" {
			text.WriteString(part.Text)
		}
		if part.FunctionCall != nil {
			args, _ := json.Marshal(part.FunctionCall.Args)
			out.ToolCalls = append(out.ToolCalls, ToolCall{
				// Gemini has no call IDs, synthesize one from the name
				ID:        fmt.Sprintf("call_%s", part.FunctionCall.Name),
				Name:      part.FunctionCall.Name,
				Arguments: string(args),
			})
		}
	}
	out.Content = text.String()
	if len(out.ToolCalls) > 0 {
		out.FinishReason = FinishReasonToolCalls
	}

	if resp.UsageMetadata != nil {
		out.Usage = Usage{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
		}
	}
	out.CostUSD = EstimateCost(req.Model, out.Usage)

	p.log.Debugf("Completion: %d tokens, cost $%s", out.Usage.TotalTokens, out.CostUSD)
	return out, nil
}

// geminiContents converts messages to Gemini contents, extracting the system
// prompt which Gemini takes separately
func geminiContents(messages []Message) ([]*genai.Content, string) {
	var system string
	contents := make([]*genai.Content, 0, len(messages))

	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			system = m.Content
		case RoleUser:
			contents = append(contents, &genai.Content{
				Role:  "user",
				Parts: []*genai.Part{{Text: m.Content}},
			})
		case RoleAssistant:
			parts := []*genai.Part{}
			if m.Content != "" {
				parts = append(parts, &genai.Part{Text: m.Content})
			}
			for _, tc := range m.ToolCalls {
				var args map[string]interface{}
				_ = json.Unmarshal([]byte(tc.Arguments), &args)
				parts = append(parts, &genai.Part{
					FunctionCall: &genai.FunctionCall{Name: tc.Name, Args: args},
				})
			}
			contents = append(contents, &genai.Content{Role: "model", Parts: parts})
		case RoleTool:
			var response map[string]interface{}
			if err := json.Unmarshal([]byte(m.Content), &response); err != nil {
				response = map[string]interface{}{"result": m.Content}
			}
			contents = append(contents, &genai.Content{
				Role: "user",
				Parts: []*genai.Part{{
					FunctionResponse: &genai.FunctionResponse{
						Name:     m.Name,
						Response: response,
					},
				}},
			})
		}
	}
	return contents, system
}

// geminiSchema converts a JSON schema map to the Gemini schema representation
func geminiSchema(params map[string]interface{}) *genai.Schema {
	if params == nil {
		return nil
	}

	schema := &genai.Schema{}

	if t, ok := params["type"].(string); ok {
		schema.Type = genai.Type(strings.ToUpper(t))
	}
	if desc, ok := params["description"].(string); ok {
		schema.Description = desc
	}
	if props, ok := params["properties"].(map[string]interface{}); ok {
		schema.Properties = make(map[string]*genai.Schema, len(props))
		for key, value := range props {
			if propMap, ok := value.(map[string]interface{}); ok {
				schema.Properties[key] = geminiSchema(propMap)
			}
		}
	}
	if items, ok := params["items"].(map[string]interface{}); ok {
		schema.Items = geminiSchema(items)
	}
	switch required := params["required"].(type) {
	case []string:
		schema.Required = required
	case []interface{}:
		for _, field := range required {
			if s, ok := field.(string); ok {
				schema.Required = append(schema.Required, s)
			}
		}
	}
	switch enum := params["enum"].(type) {
	case []string:
		schema.Enum = enum
	case []interface{}:
		for _, val := range enum {
			if s, ok := val.(string); ok {
				schema.Enum = append(schema.Enum, s)
			}
		}
	}

	return schema
}
