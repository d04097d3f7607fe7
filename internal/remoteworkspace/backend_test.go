package remoteworkspace

import (
	"context"
	"errors"
	"testing"

	"github.com/BrendanGraham14/steer-sub006/internal/tool"
)

type fakeClient struct {
	schemas  []ToolSchema
	approval map[string]bool
	execErr  error
	execRes  *ExecuteToolResult
}

func (f *fakeClient) GetToolSchemas(ctx context.Context) ([]ToolSchema, error) {
	return f.schemas, nil
}

func (f *fakeClient) GetToolApprovalRequirements(ctx context.Context, names []string) (map[string]bool, error) {
	return f.approval, nil
}

func (f *fakeClient) ExecuteTool(ctx context.Context, req ExecuteToolRequest) (*ExecuteToolResult, error) {
	if f.execErr != nil {
		return nil, f.execErr
	}
	return f.execRes, nil
}

func TestBackend_ListToolsAppliesApprovalRequirements(t *testing.T) {
	client := &fakeClient{
		schemas: []ToolSchema{
			{Name: "list_files", RequiresApproval: false},
			{Name: "write_file", RequiresApproval: false},
		},
		approval: map[string]bool{"write_file": true},
	}
	b := NewBackend(client)

	schemas, err := b.ListTools(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	byName := map[string]tool.ToolSchema{}
	for _, s := range schemas {
		byName[s.Name] = s
	}
	if byName["list_files"].RequiresApproval {
		t.Fatal("list_files should not require approval")
	}
	if !byName["write_file"].RequiresApproval {
		t.Fatal("write_file should require approval")
	}
}

func TestBackend_RequiresApprovalDefaultsTrueWhenUnknown(t *testing.T) {
	b := NewBackend(&fakeClient{})
	if !b.RequiresApproval("never_seen") {
		t.Fatal("an unknown remote tool should require approval by default")
	}
}

func TestBackend_ExecuteMapsFailureToExecutionError(t *testing.T) {
	client := &fakeClient{execRes: &ExecuteToolResult{Success: false, Error: "boom"}}
	b := NewBackend(client)

	_, toolErr := b.Execute(context.Background(), tool.ToolCall{ID: "c1", Name: "bash"})
	if toolErr == nil {
		t.Fatal("expected a tool error")
	}
	if toolErr.Kind != "execution" {
		t.Fatalf("expected execution error kind, got %q", toolErr.Kind)
	}
}

func TestBackend_ExecuteMapsTransportError(t *testing.T) {
	client := &fakeClient{execErr: errors.New("connection refused")}
	b := NewBackend(client)

	_, toolErr := b.Execute(context.Background(), tool.ToolCall{ID: "c1", Name: "bash"})
	if toolErr == nil || toolErr.Kind != "transport" {
		t.Fatalf("expected transport error, got %+v", toolErr)
	}
}
