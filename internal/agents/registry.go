package agents

import (
	"sort"
	"sync"

	"sola/internal/adapters/ai"
	"sola/internal/tools"
	"sola/pkg/logger"
)

// Agent describes a persona with a system prompt and an assigned toolset
type Agent struct {
	Slug         string   `json:"slug"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	SystemPrompt string   `json:"-"`
	ToolNames    []string `json:"tools"`
}

// Registry maps agent slugs to their toolsets. Lookups for unknown slugs
// return the default agent rather than an error, so a stale or mistyped
// slug degrades to a generalist instead of breaking the conversation.
type Registry struct {
	agents       map[string]Agent
	fallbackSlug string
	toolRegistry *tools.Registry
	mu           sync.RWMutex
	log          *logger.Logger
}

// NewRegistry constructs an agent registry backed by a tool registry
func NewRegistry(toolRegistry *tools.Registry, fallback Agent) *Registry {
	r := &Registry{
		agents:       make(map[string]Agent),
		fallbackSlug: fallback.Slug,
		toolRegistry: toolRegistry,
		log:          logger.Get().With("component", "agent_registry"),
	}
	r.register(fallback)
	return r
}

// Register adds or replaces an agent. Tool names without a registered
// tool are kept in the definition but logged; Toolset skips them.
func (r *Registry) Register(agent Agent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.register(agent)
}

func (r *Registry) register(agent Agent) {
	if _, exists := r.agents[agent.Slug]; exists {
		r.log.Warnf("Agent %q re-registered, replacing previous definition", agent.Slug)
	}
	for _, name := range agent.ToolNames {
		if _, ok := r.toolRegistry.Get(name); !ok {
			r.log.Warnf("Agent %q references unregistered tool %q", agent.Slug, name)
		}
	}
	r.agents[agent.Slug] = agent
}

// Get returns the agent for a slug, falling back to the default agent
// when the slug is unknown
func (r *Registry) Get(slug string) Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if agent, ok := r.agents[slug]; ok {
		return agent
	}
	r.log.Debugf("Unknown agent slug %q, using default toolset", slug)
	return r.agents[r.fallbackSlug]
}

// Toolset returns the LLM tool definitions for an agent's slug.
// Tool names with no registered tool are skipped.
func (r *Registry) Toolset(slug string) []ai.ToolDefinition {
	agent := r.Get(slug)
	return r.toolRegistry.Definitions(agent.ToolNames)
}

// List returns all registered agents sorted by slug
func (r *Registry) List() []Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Agent, 0, len(r.agents))
	for _, agent := range r.agents {
		out = append(out, agent)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out
}
