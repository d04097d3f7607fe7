package tool

import (
	"context"
	"sync"

	"github.com/BrendanGraham14/steer-sub006/internal/message"
)

type backendEntry struct {
	backend Backend
	filter  ToolFilter
}

// Registry holds an ordered list of backends with per-backend filters, per
// spec.md §4.2. Name collisions across backends resolve to the first
// admitting backend in registration order.
type Registry struct {
	mu       sync.RWMutex
	entries  []backendEntry
}

func NewRegistry() *Registry {
	return &Registry{}
}

// AddBackend appends a backend to the routing order.
func (r *Registry) AddBackend(b Backend, filter ToolFilter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, backendEntry{backend: b, filter: filter})
}

// Resolve returns the first backend, in registration order, whose filter
// admits name and which itself lists a tool by that name.
func (r *Registry) Resolve(ctx context.Context, name string) (Backend, bool) {
	r.mu.RLock()
	entries := append([]backendEntry(nil), r.entries...)
	r.mu.RUnlock()

	for _, e := range entries {
		if !e.filter.Admits(name) {
			continue
		}
		schemas, err := e.backend.ListTools(ctx)
		if err != nil {
			continue
		}
		for _, s := range schemas {
			if s.Name == name {
				return e.backend, true
			}
		}
	}
	return nil, false
}

// ListSchemas aggregates every admitted backend's schemas. A name already
// contributed by an earlier backend is not repeated.
func (r *Registry) ListSchemas(ctx context.Context) ([]ToolSchema, error) {
	r.mu.RLock()
	entries := append([]backendEntry(nil), r.entries...)
	r.mu.RUnlock()

	seen := make(map[string]bool)
	var out []ToolSchema
	for _, e := range entries {
		schemas, err := e.backend.ListTools(ctx)
		if err != nil {
			return nil, err
		}
		for _, s := range schemas {
			if !e.filter.Admits(s.Name) || seen[s.Name] {
				continue
			}
			seen[s.Name] = true
			out = append(out, s)
		}
	}
	return out, nil
}

// RequiresApproval reports whether name needs Approval Queue mediation.
// An unresolvable name conservatively requires approval.
func (r *Registry) RequiresApproval(ctx context.Context, name string) bool {
	backend, ok := r.Resolve(ctx, name)
	if !ok {
		return true
	}
	return backend.RequiresApproval(name)
}

// Execute routes call to its resolved backend and runs it.
func (r *Registry) Execute(ctx context.Context, call ToolCall) (string, *message.ToolError) {
	backend, ok := r.Resolve(ctx, call.Name)
	if !ok {
		return "", message.UnknownTool(call.Name)
	}
	return backend.Execute(ctx, call)
}
