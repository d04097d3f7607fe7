package mcp

import (
	"context"
	"testing"

	"github.com/BrendanGraham14/steer-sub006/internal/tool"
)

func TestBackend_ListToolsEmptyWithNoConnectedServers(t *testing.T) {
	reg := NewRegistryForTest(map[string]ServerConfig{})
	b := NewBackend(reg)

	schemas, err := b.ListTools(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(schemas) != 0 {
		t.Fatalf("expected no schemas with no connected servers, got %d", len(schemas))
	}
}

func TestBackend_RequiresApprovalAlwaysTrue(t *testing.T) {
	b := NewBackend(NewRegistryForTest(nil))
	if !b.RequiresApproval("mcp__foo__bar") {
		t.Fatal("expected MCP tools to always require approval")
	}
}

func TestBackend_ExecuteUnknownServerReturnsExecutionError(t *testing.T) {
	b := NewBackend(NewRegistryForTest(map[string]ServerConfig{}))

	_, toolErr := b.Execute(context.Background(), tool.ToolCall{
		Name:       "mcp__nope__doit",
		Parameters: nil,
	})
	if toolErr == nil {
		t.Fatal("expected an error calling an unconnected server")
	}
	if toolErr.Kind != "execution" {
		t.Fatalf("expected execution error kind, got %q", toolErr.Kind)
	}
}
