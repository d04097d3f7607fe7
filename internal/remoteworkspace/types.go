// Package remoteworkspace implements the client side of the remote
// workspace wire protocol (spec.md §6): a gRPC contract a sandboxed or
// containerized workspace exposes so the engine can list and execute
// tools, inspect the environment, and list files without running in
// the same process as the workspace itself.
package remoteworkspace

import (
	"encoding/json"
	"time"

	"github.com/BrendanGraham14/steer-sub006/internal/message"
)

// ToolSchema mirrors tool.ToolSchema across the wire: a remote
// workspace advertises its tools the same shape a local backend does.
type ToolSchema struct {
	Name             string         `json:"name"`
	Description      string         `json:"description"`
	InputSchema      map[string]any `json:"input_schema"`
	RequiresApproval bool           `json:"requires_approval"`
	ReadOnly         bool           `json:"read_only"`
}

// ExecuteToolRequest is one ExecuteTool call.
type ExecuteToolRequest struct {
	ToolCallID  string          `json:"tool_call_id"`
	ToolName    string          `json:"tool_name"`
	Parameters  json.RawMessage `json:"parameters_json"`
	CancelToken string          `json:"cancel_token"`
}

// ExecuteToolResult is the ExecuteTool response. Exactly one of
// StringResult or Error is populated on a terminal call.
type ExecuteToolResult struct {
	Success      bool      `json:"success"`
	StringResult string    `json:"string_result,omitempty"`
	Error        string    `json:"error,omitempty"`
	StartedAt    time.Time `json:"started_at"`
	CompletedAt  time.Time `json:"completed_at"`
}

// EnvironmentInfo answers GetEnvironmentInfo.
type EnvironmentInfo struct {
	Cwd                string `json:"cwd"`
	IsGitRepo          bool   `json:"is_git_repo"`
	Platform           string `json:"platform"`
	Date               string `json:"date"`
	DirectoryStructure string `json:"directory_structure"`
	GitStatus          string `json:"git_status,omitempty"`
	Readme             string `json:"readme,omitempty"`
	ClaudeMD           string `json:"claude_md,omitempty"`
}

// HealthStatus answers Health.
type HealthStatus struct {
	Status  string            `json:"status"`
	Message string            `json:"message,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// AgentInfo answers GetAgentInfo.
type AgentInfo struct {
	Version        string            `json:"version"`
	SupportedTools []string          `json:"supported_tools"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

// SessionRestorePayload is the persisted session-restore state
// exchanged with a remote workspace (spec.md §6/§8): restoring it must
// reproduce the session it was saved from exactly.
type SessionRestorePayload struct {
	Messages             []message.Message `json:"messages"`
	ApprovedTools        []string           `json:"approved_tools"`
	ApprovedBashPatterns []string           `json:"approved_bash_patterns"`
	ActiveMessageID      string             `json:"active_message_id,omitempty"`
}

type listFilesRequest struct {
	Query      string `json:"query,omitempty"`
	MaxResults int    `json:"max_results,omitempty"`
}

type listFilesChunk struct {
	Paths []string `json:"paths"`
}

const listFilesChunkSize = 1000
