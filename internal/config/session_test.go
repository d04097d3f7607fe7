package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadSessionConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.yaml")
	body := `
workspace: remote
tool_config:
  backends: [local, mcp]
  visibility: whitelist
  approval_policy:
    kind: mixed
    pre_approved: [read, grep]
    ask_for_others: true
  bash_patterns:
    patterns: ["npm *", "git status"]
system_prompt: "You are a careful assistant."
metadata:
  owner: test
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := LoadSessionConfig(path)
	if err != nil {
		t.Fatalf("LoadSessionConfig: %v", err)
	}
	if cfg.Workspace != WorkspaceRemote {
		t.Fatalf("want WorkspaceRemote, got %v", cfg.Workspace)
	}
	if cfg.ToolConfig.ApprovalPolicy.Kind != ApprovalMixed {
		t.Fatalf("want ApprovalMixed, got %v", cfg.ToolConfig.ApprovalPolicy.Kind)
	}
	names := cfg.ToolConfig.ApprovalPolicy.ApprovedToolNames()
	if len(names) != 2 || names[0] != "read" || names[1] != "grep" {
		t.Fatalf("unexpected pre-approved names: %v", names)
	}
	if len(cfg.ToolConfig.BashPatterns.Patterns) != 2 {
		t.Fatalf("expected 2 bash patterns, got %v", cfg.ToolConfig.BashPatterns.Patterns)
	}
}

func TestDefaultSessionConfig(t *testing.T) {
	cfg := DefaultSessionConfig()
	if cfg.Workspace != WorkspaceLocal {
		t.Fatalf("want WorkspaceLocal by default, got %v", cfg.Workspace)
	}
	if cfg.ToolConfig.ApprovalPolicy.Kind != ApprovalAlwaysAsk {
		t.Fatalf("want AlwaysAsk by default, got %v", cfg.ToolConfig.ApprovalPolicy.Kind)
	}
	if len(cfg.ToolConfig.ApprovalPolicy.ApprovedToolNames()) != 0 {
		t.Fatalf("expected no pre-approved tools by default")
	}
}
