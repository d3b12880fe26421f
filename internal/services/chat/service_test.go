package chat

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sola/internal/adapters/ai"
	"sola/internal/agents"
	"sola/internal/domain/session"
	"sola/internal/domain/usage"
	"sola/internal/tools"
	"sola/pkg/errors"
)

type fakeProvider struct {
	responses []*ai.ChatResponse
	requests  []ai.ChatRequest
	err       error
}

func (f *fakeProvider) Name() ai.ProviderName { return "fake" }

func (f *fakeProvider) Chat(ctx context.Context, req ai.ChatRequest) (*ai.ChatResponse, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	resp := f.responses[0]
	if len(f.responses) > 1 {
		f.responses = f.responses[1:]
	}
	return resp, nil
}

type fakeSessions struct {
	saved    []*session.Session
	existing map[uuid.UUID]*session.Session
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{existing: make(map[uuid.UUID]*session.Session)}
}

func (f *fakeSessions) Save(ctx context.Context, s *session.Session) error {
	f.saved = append(f.saved, s)
	f.existing[s.ID] = s
	return nil
}

func (f *fakeSessions) Get(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	if s, ok := f.existing[id]; ok {
		return s, nil
	}
	return nil, errors.ErrNotFound
}

type fakeGate struct {
	status  *usage.Status
	err     error
	records []*usage.Record
}

func (f *fakeGate) CheckAllowance(ctx context.Context, userID uuid.UUID, wallet string) (*usage.Status, error) {
	return f.status, f.err
}

func (f *fakeGate) RecordUsage(ctx context.Context, rec *usage.Record) error {
	f.records = append(f.records, rec)
	return nil
}

type fakeDispatcher struct {
	calls   []string
	results map[string]tools.Result
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, name string, rawArgs json.RawMessage) tools.Result {
	f.calls = append(f.calls, name)
	if r, ok := f.results[name]; ok {
		return r
	}
	return tools.Success(name, map[string]string{"ok": "yes"})
}

func allowedStatus() *usage.Status {
	return &usage.Status{
		TierName: "gold",
		LimitUSD: decimal.New(5, 0),
		Allowed:  true,
	}
}

func textResponse(content string) *ai.ChatResponse {
	return &ai.ChatResponse{
		Model:        "gpt-4o-mini",
		Content:      content,
		FinishReason: ai.FinishReasonStop,
		Usage:        ai.Usage{PromptTokens: 100, CompletionTokens: 20},
		CostUSD:      decimal.NewFromFloat(0.0001),
	}
}

func newTestService(provider ai.Provider, sessions SessionStore, gate Gate, dispatcher Dispatcher) *Service {
	registry := tools.NewRegistry()
	return NewService(provider, "gpt-4o-mini", agents.NewDefaultRegistry(registry),
		dispatcher, sessions, gate, nil)
}

func TestChat_PlainReply(t *testing.T) {
	provider := &fakeProvider{responses: []*ai.ChatResponse{textResponse("hello there")}}
	sessions := newFakeSessions()
	gate := &fakeGate{status: allowedStatus()}
	svc := newTestService(provider, sessions, gate, &fakeDispatcher{})

	out, err := svc.Chat(context.Background(), Input{
		UserID:  uuid.New(),
		Wallet:  "wallet",
		Message: "hi",
	})
	require.NoError(t, err)

	assert.Equal(t, "hello there", out.Reply)
	assert.NotEqual(t, uuid.Nil, out.SessionID)
	assert.Zero(t, out.ToolCalls)

	// Usage recorded and session persisted with both turns
	require.Len(t, gate.records, 1)
	assert.Equal(t, uint32(100), gate.records[0].PromptTokens)
	require.Len(t, sessions.saved, 1)
	require.Len(t, sessions.saved[0].Messages, 2)
	assert.Equal(t, session.RoleUser, sessions.saved[0].Messages[0].Role)
	assert.Equal(t, session.RoleAssistant, sessions.saved[0].Messages[1].Role)
}

func TestChat_ToolCallLoop(t *testing.T) {
	withTool := &ai.ChatResponse{
		Model:        "gpt-4o-mini",
		FinishReason: ai.FinishReasonToolCalls,
		ToolCalls: []ai.ToolCall{
			{ID: "call_1", Name: "get_token_price", Arguments: `{"token":"BONK"}`},
		},
		Usage:   ai.Usage{PromptTokens: 200, CompletionTokens: 30},
		CostUSD: decimal.NewFromFloat(0.0002),
	}
	provider := &fakeProvider{responses: []*ai.ChatResponse{withTool, textResponse("BONK is at $0.00002")}}
	dispatcher := &fakeDispatcher{}
	gate := &fakeGate{status: allowedStatus()}
	svc := newTestService(provider, newFakeSessions(), gate, dispatcher)

	out, err := svc.Chat(context.Background(), Input{
		UserID:  uuid.New(),
		Wallet:  "wallet",
		Message: "price of bonk?",
	})
	require.NoError(t, err)

	assert.Equal(t, "BONK is at $0.00002", out.Reply)
	assert.Equal(t, 1, out.ToolCalls)
	assert.Equal(t, []string{"get_token_price"}, dispatcher.calls)

	// Both completion calls metered
	assert.Len(t, gate.records, 2)

	// Second request must include the tool result message
	require.Len(t, provider.requests, 2)
	last := provider.requests[1].Messages[len(provider.requests[1].Messages)-1]
	assert.Equal(t, ai.RoleTool, last.Role)
	assert.Equal(t, "call_1", last.ToolCallID)
	assert.Contains(t, last.Content, `"status":"success"`)
}

func TestChat_DeniedByGate(t *testing.T) {
	gate := &fakeGate{status: &usage.Status{
		TierName:    "base",
		LimitUSD:    decimal.New(1, 0),
		ConsumedUSD: decimal.NewFromFloat(1.5),
		Allowed:     false,
	}}
	provider := &fakeProvider{responses: []*ai.ChatResponse{textResponse("never sent")}}
	svc := newTestService(provider, newFakeSessions(), gate, &fakeDispatcher{})

	_, err := svc.Chat(context.Background(), Input{UserID: uuid.New(), Wallet: "wallet", Message: "hi"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUsageExceeded))
	assert.Empty(t, provider.requests)
}

func TestChat_GateErrorFailsClosed(t *testing.T) {
	gate := &fakeGate{err: errors.ErrUnknownBalance}
	provider := &fakeProvider{responses: []*ai.ChatResponse{textResponse("never sent")}}
	svc := newTestService(provider, newFakeSessions(), gate, &fakeDispatcher{})

	_, err := svc.Chat(context.Background(), Input{UserID: uuid.New(), Wallet: "wallet", Message: "hi"})
	require.Error(t, err)
	assert.Empty(t, provider.requests)
}

func TestChat_SessionOwnershipEnforced(t *testing.T) {
	sessions := newFakeSessions()
	owner := uuid.New()
	sessID := uuid.New()
	sessions.existing[sessID] = &session.Session{ID: sessID, UserID: owner, AgentSlug: agents.DefaultSlug}

	provider := &fakeProvider{responses: []*ai.ChatResponse{textResponse("x")}}
	svc := newTestService(provider, sessions, &fakeGate{status: allowedStatus()}, &fakeDispatcher{})

	_, err := svc.Chat(context.Background(), Input{
		UserID:    uuid.New(), // not the owner
		Wallet:    "wallet",
		SessionID: sessID,
		Message:   "hi",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnauthorized))
}

func TestChat_ProviderError(t *testing.T) {
	provider := &fakeProvider{err: errors.New("upstream 500")}
	svc := newTestService(provider, newFakeSessions(), &fakeGate{status: allowedStatus()}, &fakeDispatcher{})

	_, err := svc.Chat(context.Background(), Input{UserID: uuid.New(), Wallet: "wallet", Message: "hi"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrExternal))
}

func TestChat_UnknownAgentFallsBack(t *testing.T) {
	provider := &fakeProvider{responses: []*ai.ChatResponse{textResponse("x")}}
	sessions := newFakeSessions()
	svc := newTestService(provider, sessions, &fakeGate{status: allowedStatus()}, &fakeDispatcher{})

	out, err := svc.Chat(context.Background(), Input{
		UserID:    uuid.New(),
		Wallet:    "wallet",
		AgentSlug: "no-such-agent",
		Message:   "hi",
	})
	require.NoError(t, err)
	assert.Equal(t, agents.DefaultSlug, out.AgentSlug)
}
