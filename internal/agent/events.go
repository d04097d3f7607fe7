package agent

import "github.com/BrendanGraham14/steer-sub006/internal/message"

// EventKind discriminates the intermediate events an Executor run emits,
// a subset of the engine-wide Event Stream scoped to what the executor
// itself observes (spec.md §4.6, §6).
type EventKind string

const (
	EventThinkingStarted   EventKind = "thinking_started"
	EventMessageFinal      EventKind = "message_final"
	EventToolCallStarted   EventKind = "tool_call_started"
	EventToolCallCompleted EventKind = "tool_call_completed"
	EventToolCallFailed    EventKind = "tool_call_failed"
)

// Event is one occurrence emitted via Request.OnEvent. Only the fields
// relevant to Kind are populated.
type Event struct {
	Kind EventKind

	Message *message.Message // MessageFinal

	ToolCallID string // ToolCall*
	ToolName   string // ToolCall*
	Summary    string // ToolCallStarted: human-readable progress narration
	Output     string // ToolCallCompleted
	Err        *message.ToolError // ToolCallFailed
}
