package log

import (
	"fmt"
	"strings"

	"github.com/BrendanGraham14/steer-sub006/internal/provider"
)

// LogResponse logs a normalized completion response in human-readable form
// and writes a JSON snapshot to DEV_DIR if configured.
func LogResponse(providerName string, resp *provider.CompletionResponse) {
	turn := CurrentTurn()
	WriteDevResponse(providerName, resp, turn)

	if !enabled {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "<<< [%s] stop=%s | in=%d out=%d\n", providerName, resp.StopReason, resp.Usage.InputTokens, resp.Usage.OutputTokens)

	if text := resp.Text(); text != "" {
		sb.WriteString("    Content:\n")
		for _, line := range strings.Split(text, "\n") {
			fmt.Fprintf(&sb, "        %s\n", line)
		}
	}

	if uses := resp.ToolUses(); len(uses) > 0 {
		fmt.Fprintf(&sb, "    ToolCalls(%d):\n", len(uses))
		for _, tc := range uses {
			fmt.Fprintf(&sb, "      [%s] %s(%s)\n", tc.ToolUseID, tc.ToolUseName, escapeForLog(string(tc.ToolUseInput)))
		}
	}

	logger.Info(sb.String())
}

// LogError logs an error in human-readable form.
func LogError(context string, err error) {
	if !enabled {
		return
	}
	logger.Error(fmt.Sprintf("!!! ERROR [%s] %v\n", context, err))
}
