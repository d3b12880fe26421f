package agents

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sola/internal/tools"
)

func stubTool(name string) tools.Tool {
	return tools.New(name, "stub", tools.Schema{},
		func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			return nil, nil
		})
}

func TestGet_KnownSlug(t *testing.T) {
	toolReg := tools.NewRegistry()
	r := NewDefaultRegistry(toolReg)

	agent := r.Get("token-analyst")
	assert.Equal(t, "token-analyst", agent.Slug)
	assert.Contains(t, agent.ToolNames, "get_price_analysis")
}

func TestGet_UnknownSlugFallsBackToDefault(t *testing.T) {
	toolReg := tools.NewRegistry()
	r := NewDefaultRegistry(toolReg)

	agent := r.Get("degen-maximalist")
	assert.Equal(t, DefaultSlug, agent.Slug)
	assert.Contains(t, agent.ToolNames, "ask_for_clarification")
}

func TestToolset_SkipsUnregisteredTools(t *testing.T) {
	toolReg := tools.NewRegistry()
	toolReg.Register(stubTool("get_token_price"))

	r := NewRegistry(toolReg, Agent{
		Slug:      "minimal",
		ToolNames: []string{"get_token_price", "not_a_real_tool"},
	})

	defs := r.Toolset("minimal")
	require.Len(t, defs, 1)
	assert.Equal(t, "get_token_price", defs[0].Name)
}

func TestToolset_UnknownSlugUsesDefaultToolset(t *testing.T) {
	toolReg := tools.NewRegistry()
	toolReg.Register(stubTool("ask_for_clarification"))

	r := NewRegistry(toolReg, Agent{
		Slug:      "fallback",
		ToolNames: []string{"ask_for_clarification"},
	})

	defs := r.Toolset("nope")
	require.Len(t, defs, 1)
	assert.Equal(t, "ask_for_clarification", defs[0].Name)
}

func TestRegister_ReplacesExisting(t *testing.T) {
	toolReg := tools.NewRegistry()
	r := NewRegistry(toolReg, Agent{Slug: "default"})

	r.Register(Agent{Slug: "analyst", Name: "First"})
	r.Register(Agent{Slug: "analyst", Name: "Second"})

	assert.Equal(t, "Second", r.Get("analyst").Name)
	assert.Len(t, r.List(), 2)
}

func TestList_Sorted(t *testing.T) {
	toolReg := tools.NewRegistry()
	r := NewRegistry(toolReg, Agent{Slug: "m-default"})
	r.Register(Agent{Slug: "z-last"})
	r.Register(Agent{Slug: "a-first"})

	list := r.List()
	require.Len(t, list, 3)
	assert.Equal(t, "a-first", list[0].Slug)
	assert.Equal(t, "z-last", list[2].Slug)
}
