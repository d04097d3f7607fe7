// Package local implements the Local Backend variant from spec.md §4.2:
// in-process dispatch to ExecutableTool implementations.
package local

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"github.com/BrendanGraham14/steer-sub006/internal/message"
	"github.com/BrendanGraham14/steer-sub006/internal/tool"
)

// Backend dispatches tool.ToolCall to in-process tool.ExecutableTool
// implementations registered by name.
type Backend struct {
	mu    sync.RWMutex
	tools map[string]tool.ExecutableTool
}

func NewBackend() *Backend {
	return &Backend{tools: make(map[string]tool.ExecutableTool)}
}

// Register adds a tool, keyed case-insensitively by its schema name.
func (b *Backend) Register(t tool.ExecutableTool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tools[strings.ToLower(t.Schema().Name)] = t
}

func (b *Backend) get(name string) (tool.ExecutableTool, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	t, ok := b.tools[strings.ToLower(name)]
	return t, ok
}

func (b *Backend) ListTools(ctx context.Context) ([]tool.ToolSchema, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]tool.ToolSchema, 0, len(b.tools))
	for _, t := range b.tools {
		out = append(out, t.Schema())
	}
	return out, nil
}

func (b *Backend) RequiresApproval(name string) bool {
	t, ok := b.get(name)
	if !ok {
		return true
	}
	return t.Schema().RequiresApproval
}

func (b *Backend) Execute(ctx context.Context, call tool.ToolCall) (string, *message.ToolError) {
	t, ok := b.get(call.Name)
	if !ok {
		return "", message.UnknownTool(call.Name)
	}

	params := call.Parameters
	if len(params) == 0 {
		params = json.RawMessage("{}")
	}

	output, err := t.Execute(ctx, params)
	if err == nil {
		return output, nil
	}

	if ctx.Err() != nil {
		return "", message.Cancelled(call.Name)
	}

	var toolErr *message.ToolError
	if errors.As(err, &toolErr) {
		return "", toolErr
	}
	return "", message.NewToolError(message.ToolErrorExecution, call.Name, err.Error())
}

var _ tool.Backend = (*Backend)(nil)
