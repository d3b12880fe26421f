package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sola/pkg/errors"
)

func newTestDispatcher(t *testing.T, toolsToRegister ...Tool) *Dispatcher {
	t.Helper()
	r := NewRegistry()
	for _, tool := range toolsToRegister {
		r.Register(tool)
	}
	return NewDispatcher(r, nil)
}

func echoTool() Tool {
	schema := Schema{
		Params: map[string]Param{
			"text": {Type: TypeString, Required: true},
		},
	}
	return New("echo", "echoes input", schema,
		func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			return map[string]interface{}{"echo": args["text"]}, nil
		})
}

func TestDispatch_Success(t *testing.T) {
	d := newTestDispatcher(t, echoTool())

	result := d.Dispatch(context.Background(), "echo", json.RawMessage(`{"text":"hi"}`))

	assert.True(t, result.IsSuccess())
	assert.Equal(t, StatusSuccess, result.Status)
	assert.Equal(t, "echo", result.Tool)
	assert.Nil(t, result.Error)
	require.NotNil(t, result.Data)
	assert.Equal(t, map[string]interface{}{"echo": "hi"}, result.Data)
}

func TestDispatch_ToolNotFound(t *testing.T) {
	d := newTestDispatcher(t)

	result := d.Dispatch(context.Background(), "no_such_tool", nil)

	assert.False(t, result.IsSuccess())
	require.NotNil(t, result.Error)
	assert.Equal(t, ErrKindToolNotFound, result.Error.Kind)
	assert.Contains(t, result.Error.Message, "no_such_tool")
}

func TestDispatch_ValidationError(t *testing.T) {
	d := newTestDispatcher(t, echoTool())

	result := d.Dispatch(context.Background(), "echo", json.RawMessage(`{}`))

	require.NotNil(t, result.Error)
	assert.Equal(t, ErrKindValidation, result.Error.Kind)
	require.Len(t, result.Error.Fields, 1)
	assert.Equal(t, "text", result.Error.Fields[0].Field)
}

func TestDispatch_ValidationRunsBeforeExecution(t *testing.T) {
	executed := false
	schema := Schema{Params: map[string]Param{"n": {Type: TypeInteger, Required: true}}}
	tool := New("strict", "", schema,
		func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			executed = true
			return nil, nil
		})
	d := newTestDispatcher(t, tool)

	result := d.Dispatch(context.Background(), "strict", json.RawMessage(`{"n":"NaN"}`))

	assert.Equal(t, ErrKindValidation, result.Error.Kind)
	assert.False(t, executed, "handler must not run on invalid arguments")
}

func TestDispatch_NonObjectArguments(t *testing.T) {
	d := newTestDispatcher(t, echoTool())

	result := d.Dispatch(context.Background(), "echo", json.RawMessage(`[1,2,3]`))

	require.NotNil(t, result.Error)
	assert.Equal(t, ErrKindValidation, result.Error.Kind)
	require.NotEmpty(t, result.Error.Fields)
	assert.Equal(t, "arguments are not a JSON object", result.Error.Fields[0].Message)
}

func TestDispatch_EmptyArgumentsForArgFreeTool(t *testing.T) {
	tool := New("ping", "", Schema{},
		func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			return "pong", nil
		})
	d := newTestDispatcher(t, tool)

	result := d.Dispatch(context.Background(), "ping", nil)
	assert.True(t, result.IsSuccess())
	assert.Equal(t, "pong", result.Data)
}

func TestDispatch_ExecutionError(t *testing.T) {
	tool := New("flaky", "", Schema{},
		func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			return nil, errors.New("upstream timed out")
		})
	d := newTestDispatcher(t, tool)

	result := d.Dispatch(context.Background(), "flaky", nil)

	require.NotNil(t, result.Error)
	assert.Equal(t, ErrKindExecution, result.Error.Kind)
	assert.Equal(t, "upstream timed out", result.Error.Message)
}

func TestDispatch_PanicRecoveredAndSanitized(t *testing.T) {
	tool := New("boom", "", Schema{},
		func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			panic("secret internal state: db password")
		})
	d := newTestDispatcher(t, tool)

	var result Result
	require.NotPanics(t, func() {
		result = d.Dispatch(context.Background(), "boom", nil)
	})

	require.NotNil(t, result.Error)
	assert.Equal(t, ErrKindExecution, result.Error.Kind)
	assert.Equal(t, "tool execution failed", result.Error.Message)
	assert.NotContains(t, result.Error.Message, "secret")
}

func TestDispatch_ResultSerializesForModel(t *testing.T) {
	d := newTestDispatcher(t, echoTool())

	result := d.Dispatch(context.Background(), "echo", json.RawMessage(`{"text":"hi"}`))

	payload, err := json.Marshal(result)
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"status":"success"`)
	assert.NotContains(t, string(payload), `"error"`)
}
