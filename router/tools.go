package router

import (
	"context"
	"fmt"
	"sync"

	"github.com/couchbot/couchbot/model"
)

// ToolSet exposes callable functions to the default chat handler. The
// router declares the definitions to the model and executes whatever the
// model requests; execution errors are reported back to the model as tool
// results, not raised.
type ToolSet interface {
	Definitions() []model.ToolDefinition
	Execute(ctx context.Context, name, args string) (string, error)
}

// ToolFunc is a single callable taking provider-serialized JSON arguments.
type ToolFunc func(ctx context.Context, args string) (string, error)

// Registry is a name-keyed ToolSet built from plain functions.
type Registry struct {
	mu    sync.RWMutex
	defs  []model.ToolDefinition
	funcs map[string]ToolFunc
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]ToolFunc)}
}

// Register adds a tool. Re-registering a name replaces the function but
// appends a duplicate definition, so names should be unique.
func (r *Registry) Register(def model.ToolDefinition, fn ToolFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defs = append(r.defs, def)
	r.funcs[def.Name] = fn
}

// Definitions implements ToolSet.
func (r *Registry) Definitions() []model.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.ToolDefinition, len(r.defs))
	copy(out, r.defs)
	return out
}

// Execute implements ToolSet.
func (r *Registry) Execute(ctx context.Context, name, args string) (string, error) {
	r.mu.RLock()
	fn, ok := r.funcs[name]
	r.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("tool %q is not registered", name)
	}
	return fn(ctx, args)
}
