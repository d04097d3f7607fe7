package local

import (
	"bytes"
	"context"
	"encoding/json"
	"os/exec"
	"time"

	"github.com/BrendanGraham14/steer-sub006/internal/message"
	"github.com/BrendanGraham14/steer-sub006/internal/tool"
)

const (
	bashDefaultTimeout = 120 * time.Second
	bashMaxTimeout     = 600 * time.Second
)

// BashTool executes shell commands against the local workspace. It is a
// minimal reference ExecutableTool: enough to exercise the Registry,
// Local Backend, and the Approval Queue's BashPatternSet auto-approval
// path end to end, not a full-featured shell tool (no background jobs,
// no output truncation policy).
type BashTool struct{}

type bashParams struct {
	Command string `json:"command"`
	Timeout int64  `json:"timeout"`
}

func (t *BashTool) Schema() tool.ToolSchema {
	return tool.ToolSchema{
		Name:        "bash",
		Description: "Execute a shell command in the workspace working directory.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"command": map[string]any{
					"type":        "string",
					"description": "The shell command to execute",
				},
				"timeout": map[string]any{
					"type":        "integer",
					"description": "Timeout in milliseconds (default 120000, max 600000)",
				},
			},
			"required": []string{"command"},
		},
		RequiresApproval: true,
		ReadOnly:         false,
	}
}

func (t *BashTool) Execute(ctx context.Context, raw json.RawMessage) (string, error) {
	var p bashParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return "", message.NewToolError(message.ToolErrorInvalidParams, "bash", err.Error())
	}
	if p.Command == "" {
		return "", message.NewToolError(message.ToolErrorInvalidParams, "bash", "command is required")
	}

	timeout := bashDefaultTimeout
	if p.Timeout > 0 {
		timeout = min(time.Duration(p.Timeout)*time.Millisecond, bashMaxTimeout)
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "bash", "-c", p.Command)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if runCtx.Err() == context.DeadlineExceeded {
		return "", message.NewToolError(message.ToolErrorTimeout, "bash", "command timed out")
	}
	if ctx.Err() != nil {
		return "", message.Cancelled("bash")
	}
	if err != nil {
		return "", message.NewToolError(message.ToolErrorExecution, "bash", stderr.String()+err.Error())
	}

	return stdout.String(), nil
}

var _ tool.ExecutableTool = (*BashTool)(nil)
