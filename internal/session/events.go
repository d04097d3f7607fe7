package session

import (
	"github.com/BrendanGraham14/steer-sub006/internal/message"
	"github.com/BrendanGraham14/steer-sub006/internal/opctx"
)

// EventKind enumerates the outbound Event family from spec.md §6.
type EventKind string

const (
	EventMessageAdded        EventKind = "message_added"
	EventMessageUpdated      EventKind = "message_updated"
	EventMessagePart         EventKind = "message_part" // streaming delta; droppable under backpressure
	EventRestoredMessage     EventKind = "restored_message"
	EventToolCallStarted     EventKind = "tool_call_started"
	EventToolCallCompleted   EventKind = "tool_call_completed"
	EventToolCallFailed      EventKind = "tool_call_failed"
	EventRequestToolApproval EventKind = "request_tool_approval"
	EventThinkingStarted     EventKind = "thinking_started"
	EventThinkingCompleted   EventKind = "thinking_completed"
	EventOperationCancelled  EventKind = "operation_cancelled"
	EventModelChanged        EventKind = "model_changed"
	EventWorkspaceChanged    EventKind = "workspace_changed"
	EventWorkspaceFiles      EventKind = "workspace_files"
	EventError               EventKind = "error"
	EventCommandResponse     EventKind = "command_response"
)

// Event is one occurrence on the Event Stream. Every event carries
// SequenceNum and TimestampMs per spec.md §6; only the fields relevant to
// Kind are populated otherwise.
type Event struct {
	Kind        EventKind
	SequenceNum uint64
	TimestampMs int64

	Message *message.Message // MessageAdded, RestoredMessage
	Model   string           // MessageAdded, ToolCall*, ModelChanged

	MessageID message.ID // MessageUpdated, MessagePart
	Delta     string     // MessagePart

	ToolCallID string             // ToolCall*, RequestToolApproval
	ToolName   string             // ToolCall*, RequestToolApproval
	Params     []byte             // RequestToolApproval
	Output     string             // ToolCallCompleted
	Err        *message.ToolError // ToolCallFailed

	CancellationInfo *opctx.CancellationInfo // OperationCancelled

	WorkspaceFiles []string // WorkspaceFiles

	ErrorMessage string // Error

	CommandName     string // CommandResponse
	CommandResponse string // CommandResponse
	CommandID       string // CommandResponse
}
