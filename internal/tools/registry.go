package tools

import (
	"sort"
	"sync"

	"sola/internal/adapters/ai"
	"sola/pkg/logger"
)

// Registry stores tools by name for discovery and lookup.
// Registering a name twice replaces the previous tool and logs a warning;
// the registry never grows from a re-registration.
type Registry struct {
	tools map[string]Tool
	mu    sync.RWMutex
	log   *logger.Logger
}

// NewRegistry constructs an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
		log:   logger.Get().With("component", "tool_registry"),
	}
}

// Register adds or replaces a tool under its own name.
func (r *Registry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := t.Name()
	if _, exists := r.tools[name]; exists {
		r.log.Warnf("Tool %q re-registered, replacing previous handler", name)
	}
	r.tools[name] = t
}

// Get retrieves a tool by name if registered.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// List returns the names of all registered tools, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Size returns the number of registered tools.
func (r *Registry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// Definitions renders LLM tool definitions for a subset of tools.
// Names without a registered tool are skipped.
func (r *Registry) Definitions(names []string) []ai.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]ai.ToolDefinition, 0, len(names))
	for _, name := range names {
		if t, ok := r.tools[name]; ok {
			defs = append(defs, Definition(t))
		}
	}
	return defs
}
