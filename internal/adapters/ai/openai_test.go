package ai

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// marshalMessages renders converted params the way the SDK would put them on
// the wire, so assertions run against the actual request payload.
func marshalMessages(t *testing.T, messages []Message) []map[string]interface{} {
	t.Helper()

	raw, err := json.Marshal(convertMessages(messages))
	require.NoError(t, err)

	var out []map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestConvertMessages_AssistantCarriesToolCalls(t *testing.T) {
	messages := []Message{
		{Role: RoleUser, Content: "price of BONK?"},
		{
			Role: RoleAssistant,
			ToolCalls: []ToolCall{
				{ID: "call_1", Name: "get_token_price", Arguments: `{"token":"BONK"}`},
			},
		},
		{Role: RoleTool, Name: "get_token_price", ToolCallID: "call_1", Content: `{"status":"success"}`},
	}

	wire := marshalMessages(t, messages)
	require.Len(t, wire, 3)

	assistant := wire[1]
	assert.Equal(t, "assistant", assistant["role"])

	calls, ok := assistant["tool_calls"].([]interface{})
	require.True(t, ok, "assistant message must include tool_calls")
	require.Len(t, calls, 1)

	call := calls[0].(map[string]interface{})
	assert.Equal(t, "call_1", call["id"])
	assert.Equal(t, "function", call["type"])
	fn := call["function"].(map[string]interface{})
	assert.Equal(t, "get_token_price", fn["name"])
	assert.Equal(t, `{"token":"BONK"}`, fn["arguments"])

	toolMsg := wire[2]
	assert.Equal(t, "tool", toolMsg["role"])
	assert.Equal(t, "call_1", toolMsg["tool_call_id"])
	assert.Equal(t, `{"status":"success"}`, toolMsg["content"])
}

func TestConvertMessages_AssistantTextOnly(t *testing.T) {
	wire := marshalMessages(t, []Message{
		{Role: RoleSystem, Content: "you are helpful"},
		{Role: RoleAssistant, Content: "BONK is up 4% today."},
	})
	require.Len(t, wire, 2)

	assistant := wire[1]
	assert.Equal(t, "assistant", assistant["role"])
	assert.Equal(t, "BONK is up 4% today.", assistant["content"])
	assert.NotContains(t, assistant, "tool_calls")
}

func TestConvertMessages_AssistantTextAlongsideToolCalls(t *testing.T) {
	wire := marshalMessages(t, []Message{
		{
			Role:    RoleAssistant,
			Content: "Let me look that up.",
			ToolCalls: []ToolCall{
				{ID: "call_7", Name: "get_sol_balance", Arguments: `{"wallet":"abc"}`},
			},
		},
	})
	require.Len(t, wire, 1)

	assistant := wire[0]
	assert.Equal(t, "Let me look that up.", assistant["content"])
	calls := assistant["tool_calls"].([]interface{})
	require.Len(t, calls, 1)
	assert.Equal(t, "call_7", calls[0].(map[string]interface{})["id"])
}
