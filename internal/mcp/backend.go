package mcp

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/BrendanGraham14/steer-sub006/internal/message"
	coretool "github.com/BrendanGraham14/steer-sub006/internal/tool"
)

// Backend adapts a Registry of connected MCP servers to the
// tool.Backend contract (spec.md §4.2), so the Tool Registry can route
// "mcp__<server>__<tool>" calls alongside local and remote-workspace
// tools without the Agent Executor knowing MCP exists.
type Backend struct {
	registry *Registry
}

// NewBackend wraps registry as a tool.Backend.
func NewBackend(registry *Registry) *Backend {
	return &Backend{registry: registry}
}

// ListTools reports every tool exposed by a currently-connected server.
func (b *Backend) ListTools(ctx context.Context) ([]coretool.ToolSchema, error) {
	tools := b.registry.GetToolSchemas()
	out := make([]coretool.ToolSchema, len(tools))
	for i, t := range tools {
		params, _ := t.Parameters.(map[string]any)
		out[i] = coretool.ToolSchema{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  params,
			// MCP tools are third-party and can have arbitrary side
			// effects; conservatively always mediated by the Approval Queue.
			RequiresApproval: true,
		}
	}
	return out, nil
}

// RequiresApproval is always true for MCP-sourced tools; spec.md §4.2
// leaves per-tool approval policy to the backend, and an MCP server's
// tools are not vetted the way the Local Backend's built-ins are.
func (b *Backend) RequiresApproval(name string) bool { return true }

// Execute dispatches call to the MCP server named in its "mcp__server__tool"
// prefix and flattens the server's content blocks into a single string
// result, per spec.md §3's ToolResult{output, error?} shape.
func (b *Backend) Execute(ctx context.Context, call coretool.ToolCall) (string, *message.ToolError) {
	var args map[string]any
	if len(call.Parameters) > 0 {
		if err := json.Unmarshal(call.Parameters, &args); err != nil {
			return "", message.NewToolError(message.ToolErrorInvalidParams, call.Name, err.Error())
		}
	}

	result, err := b.registry.CallTool(ctx, call.Name, args)
	if err != nil {
		if ctx.Err() != nil {
			return "", message.Cancelled(call.Name)
		}
		return "", message.NewToolError(message.ToolErrorExecution, call.Name, err.Error())
	}

	text := flattenContent(result.Content)
	if result.IsError {
		return "", message.NewToolError(message.ToolErrorExecution, call.Name, text)
	}
	return text, nil
}

func flattenContent(content []ToolResultContent) string {
	var b strings.Builder
	for i, c := range content {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(c.Text)
	}
	return b.String()
}

var _ coretool.Backend = (*Backend)(nil)
