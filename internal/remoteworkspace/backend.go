package remoteworkspace

import (
	"context"
	"sync"

	"github.com/BrendanGraham14/steer-sub006/internal/message"
	coretool "github.com/BrendanGraham14/steer-sub006/internal/tool"
)

// workspaceClient is the slice of Client that Backend needs, narrowed
// so tests can substitute a fake without a real gRPC connection.
type workspaceClient interface {
	GetToolSchemas(ctx context.Context) ([]ToolSchema, error)
	ExecuteTool(ctx context.Context, req ExecuteToolRequest) (*ExecuteToolResult, error)
	GetToolApprovalRequirements(ctx context.Context, toolNames []string) (map[string]bool, error)
}

// Backend routes tool.Registry calls to a remote workspace over the
// wire protocol in this package, the §6 counterpart to local.Backend
// and mcp.Backend.
type Backend struct {
	client workspaceClient

	mu       sync.Mutex
	approval map[string]bool // cached GetToolApprovalRequirements answers
}

// NewBackend wraps client (normally a *Client) as a tool.Backend.
func NewBackend(client workspaceClient) *Backend {
	return &Backend{client: client, approval: map[string]bool{}}
}

func (b *Backend) ListTools(ctx context.Context) ([]coretool.ToolSchema, error) {
	schemas, err := b.client.GetToolSchemas(ctx)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(schemas))
	for i, s := range schemas {
		names[i] = s.Name
	}
	reqs, err := b.client.GetToolApprovalRequirements(ctx, names)
	if err == nil {
		b.mu.Lock()
		for name, requires := range reqs {
			b.approval[name] = requires
		}
		b.mu.Unlock()
	}

	out := make([]coretool.ToolSchema, len(schemas))
	for i, s := range schemas {
		requiresApproval := s.RequiresApproval
		if v, ok := reqs[s.Name]; ok {
			requiresApproval = v
		}
		out[i] = coretool.ToolSchema{
			Name:             s.Name,
			Description:      s.Description,
			Parameters:       s.InputSchema,
			RequiresApproval: requiresApproval,
			ReadOnly:         s.ReadOnly,
		}
	}
	return out, nil
}

// RequiresApproval answers from the cache ListTools populated; a tool
// never seen by ListTools defaults to requiring approval, since a
// remote, unvetted workspace tool should never run silently.
func (b *Backend) RequiresApproval(name string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	requires, ok := b.approval[name]
	if !ok {
		return true
	}
	return requires
}

func (b *Backend) Execute(ctx context.Context, call coretool.ToolCall) (string, *message.ToolError) {
	result, err := b.client.ExecuteTool(ctx, ExecuteToolRequest{
		ToolCallID: call.ID,
		ToolName:   call.Name,
		Parameters: call.Parameters,
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", message.Cancelled(call.Name)
		}
		return "", message.NewToolError(message.ToolErrorTransport, call.Name, err.Error())
	}
	if !result.Success {
		return "", message.NewToolError(message.ToolErrorExecution, call.Name, result.Error)
	}
	return result.StringResult, nil
}

var _ coretool.Backend = (*Backend)(nil)
