package agent

import (
	"encoding/json"
	"fmt"

	"github.com/BrendanGraham14/steer-sub006/internal/tool"
)

// DescribeToolCall produces a short human-readable progress line for a
// tool call, used only for ToolCallStarted's Summary field. Informational
// only; never affects control flow. Adapted from the teacher's
// formatToolProgress.
func DescribeToolCall(call tool.ToolCall) string {
	var params map[string]any
	if err := json.Unmarshal(call.Parameters, &params); err != nil {
		return fmt.Sprintf("Running %s", call.Name)
	}

	switch call.Name {
	case "read":
		if path, ok := params["file_path"].(string); ok {
			return fmt.Sprintf("Reading: %s", path)
		}
	case "glob":
		if pattern, ok := params["pattern"].(string); ok {
			return fmt.Sprintf("Finding: %s", pattern)
		}
	case "grep":
		if pattern, ok := params["pattern"].(string); ok {
			return fmt.Sprintf("Searching: %s", pattern)
		}
	case "bash":
		if cmd, ok := params["command"].(string); ok {
			if len(cmd) > 50 {
				cmd = cmd[:47] + "..."
			}
			return fmt.Sprintf("Running: %s", cmd)
		}
	}
	return fmt.Sprintf("Running %s", call.Name)
}
