package chat

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"sola/internal/adapters/ai"
	"sola/internal/agents"
	"sola/internal/domain/session"
	"sola/internal/domain/usage"
	"sola/internal/events"
	"sola/internal/metrics"
	"sola/internal/tools"
	"sola/pkg/errors"
	"sola/pkg/logger"
)

// Tool call rounds per user turn. The model rarely needs more than two;
// the cap keeps a confused model from burning the user's allowance.
const maxToolRounds = 5

// SessionStore persists conversations between turns
type SessionStore interface {
	Save(ctx context.Context, s *session.Session) error
	Get(ctx context.Context, id uuid.UUID) (*session.Session, error)
}

// Gate is the usage gate consulted before every AI call
type Gate interface {
	CheckAllowance(ctx context.Context, userID uuid.UUID, wallet string) (*usage.Status, error)
	RecordUsage(ctx context.Context, rec *usage.Record) error
}

// Dispatcher executes tool calls requested by the model
type Dispatcher interface {
	Dispatch(ctx context.Context, name string, rawArgs json.RawMessage) tools.Result
}

// Service orchestrates one conversation turn: usage gate, model call,
// tool dispatch loop, session persistence.
type Service struct {
	provider   ai.Provider
	model      string
	agents     *agents.Registry
	dispatcher Dispatcher
	sessions   SessionStore
	gate       Gate
	events     *events.Publisher
	log        *logger.Logger
}

// NewService creates a chat service
func NewService(provider ai.Provider, model string, registry *agents.Registry, dispatcher Dispatcher, sessions SessionStore, gate Gate, publisher *events.Publisher) *Service {
	return &Service{
		provider:   provider,
		model:      model,
		agents:     registry,
		dispatcher: dispatcher,
		sessions:   sessions,
		gate:       gate,
		events:     publisher,
		log:        logger.Get().With("component", "chat_service"),
	}
}

// Input is one user turn
type Input struct {
	UserID    uuid.UUID
	Wallet    string
	SessionID uuid.UUID // uuid.Nil starts a new session
	AgentSlug string
	Message   string
}

// Output is the assistant's reply for a turn
type Output struct {
	SessionID uuid.UUID     `json:"session_id"`
	AgentSlug string        `json:"agent_slug"`
	Reply     string        `json:"reply"`
	ToolCalls int           `json:"tool_calls"`
	Usage     *usage.Status `json:"usage,omitempty"`
}

// Chat runs one conversation turn. It returns ErrUsageExceeded when the
// user's window allowance is spent, and fails closed when the allowance
// cannot be determined.
func (s *Service) Chat(ctx context.Context, in Input) (*Output, error) {
	status, err := s.gate.CheckAllowance(ctx, in.UserID, in.Wallet)
	if err != nil {
		return nil, err
	}
	if !status.Allowed {
		return nil, errors.Wrapf(errors.ErrUsageExceeded,
			"tier %s: $%s of $%s used", status.TierName,
			status.ConsumedUSD.StringFixed(4), status.LimitUSD)
	}

	sess, err := s.loadSession(ctx, in)
	if err != nil {
		return nil, err
	}

	agent := s.agents.Get(sess.AgentSlug)
	messages := s.buildMessages(agent, sess, in.Message)
	toolset := s.agents.Toolset(agent.Slug)

	var (
		reply     string
		toolCalls int
	)

	for round := 0; ; round++ {
		resp, err := s.provider.Chat(ctx, ai.ChatRequest{
			Model:    s.model,
			Messages: messages,
			Tools:    toolset,
		})

		promptTokens, completionTokens, cost := 0, 0, 0.0
		if resp != nil {
			promptTokens = resp.Usage.PromptTokens
			completionTokens = resp.Usage.CompletionTokens
			cost, _ = resp.CostUSD.Float64()
		}
		metrics.RecordAICall(string(s.provider.Name()), s.model,
			promptTokens, completionTokens, cost, err)
		if err != nil {
			return nil, errors.Wrap(errors.ErrExternal, err.Error())
		}

		s.recordUsage(ctx, in, sess.ID, resp)

		if len(resp.ToolCalls) == 0 {
			reply = resp.Content
			break
		}
		if round >= maxToolRounds {
			s.log.Warnf("Tool round limit reached for session %s, returning partial reply", sess.ID)
			reply = resp.Content
			break
		}

		messages = append(messages, ai.Message{
			Role:      ai.RoleAssistant,
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})

		for _, call := range resp.ToolCalls {
			toolCalls++
			messages = append(messages, s.runTool(ctx, in, sess.ID, call))
		}
	}

	sess.Append(session.Message{Role: session.RoleUser, Content: in.Message})
	sess.Append(session.Message{Role: session.RoleAssistant, Content: reply})
	if err := s.sessions.Save(ctx, sess); err != nil {
		s.log.Errorf("Failed to save session %s: %v", sess.ID, err)
	}

	return &Output{
		SessionID: sess.ID,
		AgentSlug: agent.Slug,
		Reply:     reply,
		ToolCalls: toolCalls,
		Usage:     status,
	}, nil
}

func (s *Service) loadSession(ctx context.Context, in Input) (*session.Session, error) {
	if in.SessionID == uuid.Nil {
		now := time.Now().UTC()
		return &session.Session{
			ID:        uuid.New(),
			UserID:    in.UserID,
			AgentSlug: s.agents.Get(in.AgentSlug).Slug,
			CreatedAt: now,
			UpdatedAt: now,
		}, nil
	}

	sess, err := s.sessions.Get(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}
	if sess.UserID != in.UserID {
		return nil, errors.Wrapf(errors.ErrUnauthorized, "session %s", in.SessionID)
	}
	return sess, nil
}

func (s *Service) buildMessages(agent agents.Agent, sess *session.Session, userMessage string) []ai.Message {
	messages := make([]ai.Message, 0, len(sess.Messages)+2)
	messages = append(messages, ai.Message{Role: ai.RoleSystem, Content: agent.SystemPrompt})

	// Tool plumbing is transient per turn; only user and assistant
	// messages are replayed from history.
	for _, msg := range sess.Messages {
		switch msg.Role {
		case session.RoleUser:
			messages = append(messages, ai.Message{Role: ai.RoleUser, Content: msg.Content})
		case session.RoleAssistant:
			messages = append(messages, ai.Message{Role: ai.RoleAssistant, Content: msg.Content})
		}
	}

	return append(messages, ai.Message{Role: ai.RoleUser, Content: userMessage})
}

// runTool dispatches one tool call and renders its result as a tool
// message. Dispatch never fails; errors come back as structured results
// the model can read and recover from.
func (s *Service) runTool(ctx context.Context, in Input, sessionID uuid.UUID, call ai.ToolCall) ai.Message {
	started := time.Now()
	result := s.dispatcher.Dispatch(ctx, call.Name, json.RawMessage(call.Arguments))

	if s.events != nil {
		s.events.ToolDispatched(ctx, events.DispatchEvent{
			UserID:     in.UserID,
			SessionID:  sessionID,
			Tool:       call.Name,
			Status:     string(result.Status),
			DurationMs: time.Since(started).Milliseconds(),
			Timestamp:  started.UTC(),
		})
	}

	payload, err := json.Marshal(result)
	if err != nil {
		s.log.Errorf("Failed to encode result of tool %s: %v", call.Name, err)
		payload = []byte(`{"status":"error","error":{"kind":"execution_error","message":"result encoding failed"}}`)
	}

	return ai.Message{
		Role:       ai.RoleTool,
		Name:       call.Name,
		ToolCallID: call.ID,
		Content:    string(payload),
	}
}

func (s *Service) recordUsage(ctx context.Context, in Input, sessionID uuid.UUID, resp *ai.ChatResponse) {
	rec := &usage.Record{
		UserID:           in.UserID,
		SessionID:        sessionID,
		Provider:         string(s.provider.Name()),
		Model:            resp.Model,
		PromptTokens:     uint32(resp.Usage.PromptTokens),
		CompletionTokens: uint32(resp.Usage.CompletionTokens),
		CostUSD:          resp.CostUSD,
	}
	if rec.Model == "" {
		rec.Model = s.model
	}
	if err := s.gate.RecordUsage(ctx, rec); err != nil {
		s.log.Errorf("Failed to record usage for user %s: %v", in.UserID, err)
	}
}
