// Package tool implements the Tool Registry & Backends (spec.md §4.2):
// routing a named tool call to one of several backend implementations,
// aggregating schemas, and enforcing visibility.
package tool

import (
	"context"
	"encoding/json"

	"github.com/BrendanGraham14/steer-sub006/internal/message"
)

// ToolCall is the id/name/params triple a model proposes (spec.md §3).
type ToolCall struct {
	ID         string
	Name       string
	Parameters json.RawMessage
}

// ToolSchema describes one tool's name, wire schema and metadata. It is the
// unit a Backend reports through ListTools and the Registry aggregates
// into the set sent to a Provider as []provider.Tool.
type ToolSchema struct {
	Name             string
	Description      string
	Parameters       map[string]any
	RequiresApproval bool
	ReadOnly         bool
}

// ExecutableTool is the contract a concrete, in-process tool implements.
// The core only consumes this interface; concrete tools (bash, edit, …)
// are out of scope beyond the minimal reference implementations under
// internal/tool/local needed to exercise the Registry/Backend/Approval
// plumbing end to end.
type ExecutableTool interface {
	Schema() ToolSchema
	Execute(ctx context.Context, params json.RawMessage) (string, error)
}

// Backend is one source of tools: local in-process dispatch, a remote
// workspace over gRPC, a container-hosted agent, or an MCP server.
type Backend interface {
	ListTools(ctx context.Context) ([]ToolSchema, error)
	RequiresApproval(name string) bool
	Execute(ctx context.Context, call ToolCall) (string, *message.ToolError)
}
