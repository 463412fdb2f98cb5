package tools

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/quantmesh/finmcp/internal/adapter"
)

// Tool describes one callable unit of financial-data retrieval: its
// identity, its typed parameter schema, and the handler that turns
// validated arguments into provider queries.
type Tool interface {
	Name() string
	Description() string
	Params() []ParamSpec
	Execute(ctx context.Context, provider adapter.Adapter, args ValidatedArgs) (interface{}, error)
}

// AnnotatedTool optionally exposes MCP tool annotations (readOnlyHint and
// friends) for tools/list.
type AnnotatedTool interface {
	Tool
	Annotations() map[string]bool
}

// Registry is the immutable catalog of tools. Register is a startup-only
// operation; Freeze seals the catalog before the server starts accepting
// calls, after which registration fails.
type Registry struct {
	mu     sync.RWMutex
	tools  map[string]Tool
	frozen bool
}

func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

func (r *Registry) Register(tool Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return fmt.Errorf("registry is frozen, cannot register %q", tool.Name())
	}

	name := tool.Name()
	if name == "" {
		return fmt.Errorf("tool name cannot be empty")
	}
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTool, name)
	}

	r.tools[name] = tool
	return nil
}

// Freeze seals the catalog. Idempotent.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[name]
	return tool, ok
}

func (r *Registry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Tool, 0, len(r.tools))
	for _, tool := range r.tools {
		result = append(result, tool)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name() < result[j].Name()
	})
	return result
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
