package log

import (
	"context"
	"fmt"
	"strings"

	"github.com/BrendanGraham14/steer-sub006/internal/message"
	"github.com/BrendanGraham14/steer-sub006/internal/provider"
)

type agentTrackerKey struct{}

// WithAgentTracker returns a context with the agent tracker attached.
func WithAgentTracker(ctx context.Context, tracker *AgentTurnTracker) context.Context {
	return context.WithValue(ctx, agentTrackerKey{}, tracker)
}

// GetAgentTracker retrieves the agent tracker from context, or nil if absent.
func GetAgentTracker(ctx context.Context) *AgentTurnTracker {
	tracker, _ := ctx.Value(agentTrackerKey{}).(*AgentTurnTracker)
	return tracker
}

// LogRequest logs an LLM request in human-readable form and writes a JSON
// snapshot to DEV_DIR if configured.
func LogRequest(providerName, model string, opts provider.CompletionOptions) {
	turn := NextTurn()
	WriteDevRequest(providerName, model, opts, turn)

	if !enabled {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "───────────────────────────────────────── Turn %d ─────────────────────────────────────────\n", turn)
	fmt.Fprintf(&sb, ">>> [%s] %s | max_tokens=%d temp=%.1f\n", providerName, model, opts.MaxTokens, opts.Temperature)

	if opts.SystemPrompt != "" {
		fmt.Fprintf(&sb, "    System: %s\n", escapeForLog(opts.SystemPrompt))
	}
	if len(opts.Tools) > 0 {
		names := make([]string, len(opts.Tools))
		for i, t := range opts.Tools {
			names[i] = t.Name
		}
		fmt.Fprintf(&sb, "    Tools(%d): [%s]\n", len(opts.Tools), strings.Join(names, ", "))
	}

	fmt.Fprintf(&sb, "    Messages(%d):\n", len(opts.Messages))
	for i, msg := range opts.Messages {
		logMessageLine(&sb, i, msg)
	}

	logger.Info(sb.String())
}

func logMessageLine(sb *strings.Builder, i int, msg message.Message) {
	switch msg.Role {
	case message.RoleUser:
		if text := msg.TextContent(); text != "" {
			fmt.Fprintf(sb, "      [%d] User: %s\n", i, escapeForLog(text))
		}
	case message.RoleAssistant:
		if text := msg.TextContent(); text != "" {
			fmt.Fprintf(sb, "      [%d] Assistant: %s\n", i, escapeForLog(text))
		}
		for _, b := range msg.AssistantBlocks {
			if id, name, params, ok := b.ToolCall(); ok {
				fmt.Fprintf(sb, "      [%d] ToolCall[%s]: %s(%s)\n", i, id, name, escapeForLog(string(params)))
			}
		}
	case message.RoleTool:
		if msg.ToolResult != nil {
			if msg.ToolResult.IsError() {
				fmt.Fprintf(sb, "      [%d] ToolResult[%s] ERROR: %s\n", i, msg.ToolResult.ToolUseID, escapeForLog(msg.ToolResult.Err.Error()))
			} else {
				fmt.Fprintf(sb, "      [%d] ToolResult[%s]: %s\n", i, msg.ToolResult.ToolUseID, escapeForLog(msg.ToolResult.Output))
			}
		}
	case message.RoleSystem:
		fmt.Fprintf(sb, "      [%d] System: %s\n", i, escapeForLog(msg.SystemText))
	}
}
