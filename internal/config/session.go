package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// WorkspaceKind names where a session's tools execute, per spec.md §4 —
// a Local in-process backend, a Remote workspace over gRPC, or a
// Container-hosted agent.
type WorkspaceKind string

const (
	WorkspaceLocal     WorkspaceKind = "local"
	WorkspaceRemote    WorkspaceKind = "remote"
	WorkspaceContainer WorkspaceKind = "container"
)

// ApprovalPolicyKind discriminates the ApprovalPolicy variants from
// spec.md §3: "one of {AlwaysAsk, PreApproved{tool_names}, Mixed{pre_approved,
// ask_for_others}}".
type ApprovalPolicyKind string

const (
	ApprovalAlwaysAsk   ApprovalPolicyKind = "always_ask"
	ApprovalPreApproved ApprovalPolicyKind = "pre_approved"
	ApprovalMixed       ApprovalPolicyKind = "mixed"
)

// ApprovalPolicy configures which tools a session starts with pre-approved,
// orthogonal to the BashPatternSet glob auto-approval path.
type ApprovalPolicy struct {
	Kind         ApprovalPolicyKind `yaml:"kind"`
	PreApproved  []string           `yaml:"pre_approved,omitempty"`
	AskForOthers bool               `yaml:"ask_for_others,omitempty"`
}

// ApprovedToolNames resolves which tool names this policy starts
// pre-approved, for seeding an approval.Queue at session construction.
func (p ApprovalPolicy) ApprovedToolNames() []string {
	switch p.Kind {
	case ApprovalPreApproved:
		return p.PreApproved
	case ApprovalMixed:
		return p.PreApproved
	default:
		return nil
	}
}

// BashPatternSet is the static, config-supplied half of spec.md §4.4's
// bash auto-approval patterns; `AlwaysBashPattern` decisions add to this
// set at runtime, but the config-file set never changes once loaded.
type BashPatternSet struct {
	Patterns []string `yaml:"patterns,omitempty"`
}

// ToolConfig names which backends a session wires up, the visibility
// policy applied to their aggregated schemas, and the approval policy
// tool calls are checked against.
type ToolConfig struct {
	Backends       []string       `yaml:"backends,omitempty"`
	Visibility     string         `yaml:"visibility,omitempty"` // all|whitelist|blacklist|read_only
	ApprovalPolicy ApprovalPolicy `yaml:"approval_policy,omitempty"`
	BashPatterns   BashPatternSet `yaml:"bash_patterns,omitempty"`
}

// SessionConfig is the top-level, file-loadable configuration for one
// Session Actor: its workspace kind, tool configuration, an optional
// system-prompt override, and free-form metadata, per spec.md §3.
type SessionConfig struct {
	Workspace    WorkspaceKind     `yaml:"workspace"`
	ToolConfig   ToolConfig        `yaml:"tool_config"`
	SystemPrompt string            `yaml:"system_prompt,omitempty"`
	Metadata     map[string]string `yaml:"metadata,omitempty"`
}

// DefaultSessionConfig returns a SessionConfig suitable for a local,
// interactive session with no pre-approved tools.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		Workspace: WorkspaceLocal,
		ToolConfig: ToolConfig{
			Backends:       []string{"local"},
			Visibility:     "all",
			ApprovalPolicy: ApprovalPolicy{Kind: ApprovalAlwaysAsk},
		},
	}
}

// LoadSessionConfig reads a SessionConfig from a YAML file at path.
func LoadSessionConfig(path string) (SessionConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SessionConfig{}, fmt.Errorf("read session config: %w", err)
	}
	cfg := DefaultSessionConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return SessionConfig{}, fmt.Errorf("parse session config: %w", err)
	}
	return cfg, nil
}
