// Package message defines the canonical conversation data model used across
// the engine: branching messages, role-specific content blocks, tool calls
// and their results. All packages import from here to avoid circular
// dependencies.
package message

import "encoding/json"

// Role identifies which participant produced a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
	RoleSystem    Role = "system" // synthetic summary messages from compaction
)

// ID is an opaque, monotonic-ish message identifier.
type ID string

// UserBlockType discriminates the variants of UserBlock.
type UserBlockType string

const (
	UserBlockText            UserBlockType = "text"
	UserBlockCommandExec     UserBlockType = "command_execution"
	UserBlockAppCommand      UserBlockType = "app_command"
)

// UserBlock is one element of a User message's content.
type UserBlock struct {
	Type UserBlockType `json:"type"`

	// Text
	Text string `json:"text,omitempty"`

	// CommandExecution
	Command  string `json:"command,omitempty"`
	Stdout   string `json:"stdout,omitempty"`
	Stderr   string `json:"stderr,omitempty"`
	ExitCode int    `json:"exit_code,omitempty"`

	// AppCommand
	AppCommandKind string `json:"app_command_kind,omitempty"`
	AppResponse    string `json:"app_response,omitempty"`
}

// TextUserBlock builds a plain-text UserBlock.
func TextUserBlock(text string) UserBlock {
	return UserBlock{Type: UserBlockText, Text: text}
}

// CommandExecutionBlock builds a UserBlock recording a directly-executed
// bash command (bypassing the model, per ExecuteBashCommand).
func CommandExecutionBlock(cmd, stdout, stderr string, exitCode int) UserBlock {
	return UserBlock{
		Type:     UserBlockCommandExec,
		Command:  cmd,
		Stdout:   stdout,
		Stderr:   stderr,
		ExitCode: exitCode,
	}
}

// AppCommandBlock builds a UserBlock recording a slash-command invocation.
func AppCommandBlock(kind, response string) UserBlock {
	return UserBlock{Type: UserBlockAppCommand, AppCommandKind: kind, AppResponse: response}
}

// AssistantBlockType discriminates the variants of AssistantBlock.
type AssistantBlockType string

const (
	AssistantBlockText     AssistantBlockType = "text"
	AssistantBlockToolCall AssistantBlockType = "tool_call"
	AssistantBlockThought  AssistantBlockType = "thought"
)

// ThoughtKind distinguishes the three shapes a provider may emit reasoning
// content in, so the block round-trips losslessly across providers.
type ThoughtKind string

const (
	ThoughtSimple   ThoughtKind = "simple"
	ThoughtSigned   ThoughtKind = "signed"
	ThoughtRedacted ThoughtKind = "redacted"
)

// AssistantBlock is one element of an Assistant message's content.
type AssistantBlock struct {
	Type AssistantBlockType `json:"type"`

	// Text
	Text string `json:"text,omitempty"`

	// ToolCall
	ToolCallID     string          `json:"tool_call_id,omitempty"`
	ToolCallName   string          `json:"tool_call_name,omitempty"`
	ToolCallParams json.RawMessage `json:"tool_call_params,omitempty"`

	// Thought
	ThoughtKind      ThoughtKind `json:"thought_kind,omitempty"`
	ThoughtText      string      `json:"thought_text,omitempty"`
	ThoughtSignature string      `json:"thought_signature,omitempty"` // Signed
	ThoughtRedacted  string      `json:"thought_redacted,omitempty"`  // Redacted (opaque payload)
}

// TextBlock builds a plain-text AssistantBlock.
func TextBlock(text string) AssistantBlock {
	return AssistantBlock{Type: AssistantBlockText, Text: text}
}

// ToolCallBlock builds a ToolCall AssistantBlock.
func ToolCallBlock(id, name string, params json.RawMessage) AssistantBlock {
	return AssistantBlock{Type: AssistantBlockToolCall, ToolCallID: id, ToolCallName: name, ToolCallParams: params}
}

// SimpleThoughtBlock builds an unsigned reasoning block.
func SimpleThoughtBlock(text string) AssistantBlock {
	return AssistantBlock{Type: AssistantBlockThought, ThoughtKind: ThoughtSimple, ThoughtText: text}
}

// SignedThoughtBlock builds a signed reasoning block (Anthropic extended thinking).
func SignedThoughtBlock(text, signature string) AssistantBlock {
	return AssistantBlock{Type: AssistantBlockThought, ThoughtKind: ThoughtSigned, ThoughtText: text, ThoughtSignature: signature}
}

// RedactedThoughtBlock builds an opaque, redacted reasoning block.
func RedactedThoughtBlock(payload string) AssistantBlock {
	return AssistantBlock{Type: AssistantBlockThought, ThoughtKind: ThoughtRedacted, ThoughtRedacted: payload}
}

// ToolCall extracts the id/name/params triple from a ToolCall block.
// ok is false if b is not a ToolCall block.
func (b AssistantBlock) ToolCall() (id, name string, params json.RawMessage, ok bool) {
	if b.Type != AssistantBlockToolCall {
		return "", "", nil, false
	}
	return b.ToolCallID, b.ToolCallName, b.ToolCallParams, true
}

// ToolErrorKind enumerates the ToolError taxonomy from §4.2/§7.
type ToolErrorKind string

const (
	ToolErrorUnknownTool    ToolErrorKind = "unknown_tool"
	ToolErrorInvalidParams  ToolErrorKind = "invalid_params"
	ToolErrorExecution      ToolErrorKind = "execution"
	ToolErrorIO             ToolErrorKind = "io"
	ToolErrorDeniedByUser   ToolErrorKind = "denied_by_user"
	ToolErrorTimeout        ToolErrorKind = "timeout"
	ToolErrorCancelled      ToolErrorKind = "cancelled"
	ToolErrorInternal       ToolErrorKind = "internal_error"
	ToolErrorTransport      ToolErrorKind = "transport"
	ToolErrorSerialization  ToolErrorKind = "serialization"
)

// ToolError is the structured error a tool execution can fail with.
type ToolError struct {
	Kind ToolErrorKind `json:"kind"`
	Name string        `json:"name,omitempty"`
	Msg  string        `json:"msg,omitempty"`
}

func (e *ToolError) Error() string {
	if e.Name != "" {
		return string(e.Kind) + "(" + e.Name + "): " + e.Msg
	}
	return string(e.Kind) + ": " + e.Msg
}

func NewToolError(kind ToolErrorKind, name, msg string) *ToolError {
	return &ToolError{Kind: kind, Name: name, Msg: msg}
}

func UnknownTool(name string) *ToolError { return NewToolError(ToolErrorUnknownTool, name, "unknown tool") }
func DeniedByUser(name string) *ToolError {
	return NewToolError(ToolErrorDeniedByUser, name, "denied by user")
}
func Cancelled(name string) *ToolError { return NewToolError(ToolErrorCancelled, name, "cancelled") }
func InternalError(msg string) *ToolError {
	return NewToolError(ToolErrorInternal, "", msg)
}

// ToolResult is the outcome of one ToolCall's execution: either Success
// carrying freeform output, or Error carrying a ToolError.
type ToolResult struct {
	ToolUseID string     `json:"tool_use_id"`
	Output    string     `json:"output,omitempty"`
	Err       *ToolError `json:"error,omitempty"`
}

func (r ToolResult) IsError() bool { return r.Err != nil }

func SuccessResult(toolUseID, output string) ToolResult {
	return ToolResult{ToolUseID: toolUseID, Output: output}
}

func ErrorResult(toolUseID string, err *ToolError) ToolResult {
	return ToolResult{ToolUseID: toolUseID, Err: err}
}

// Message is one node in the conversation DAG (spec.md §3).
type Message struct {
	ID       ID   `json:"id"`
	Role     Role `json:"role"`

	UserBlocks      []UserBlock      `json:"user_blocks,omitempty"`
	AssistantBlocks []AssistantBlock `json:"assistant_blocks,omitempty"`
	ToolResult      *ToolResult      `json:"tool_result,omitempty"`

	// SystemText carries a synthesized summary (see conversation.Compact).
	SystemText string `json:"system_text,omitempty"`

	TimestampMs     int64  `json:"timestamp_ms"`
	ThreadID        string `json:"thread_id"`
	ParentMessageID ID     `json:"parent_message_id,omitempty"`
}

// NewUserMessage builds a User message with the given blocks.
func NewUserMessage(id ID, threadID string, parent ID, tsMs int64, blocks ...UserBlock) Message {
	return Message{ID: id, Role: RoleUser, UserBlocks: blocks, TimestampMs: tsMs, ThreadID: threadID, ParentMessageID: parent}
}

// NewAssistantMessage builds an Assistant message with the given blocks.
func NewAssistantMessage(id ID, threadID string, parent ID, tsMs int64, blocks ...AssistantBlock) Message {
	return Message{ID: id, Role: RoleAssistant, AssistantBlocks: blocks, TimestampMs: tsMs, ThreadID: threadID, ParentMessageID: parent}
}

// NewToolMessage builds a Tool message carrying one ToolResult.
func NewToolMessage(id ID, threadID string, parent ID, tsMs int64, result ToolResult) Message {
	return Message{ID: id, Role: RoleTool, ToolResult: &result, TimestampMs: tsMs, ThreadID: threadID, ParentMessageID: parent}
}

// NewSystemMessage builds a synthetic system-role message (compaction summary).
func NewSystemMessage(id ID, threadID string, parent ID, tsMs int64, text string) Message {
	return Message{ID: id, Role: RoleSystem, SystemText: text, TimestampMs: tsMs, ThreadID: threadID, ParentMessageID: parent}
}

// ToolCallIDs returns every ToolCall id proposed by an Assistant message.
func (m Message) ToolCallIDs() []string {
	if m.Role != RoleAssistant {
		return nil
	}
	var ids []string
	for _, b := range m.AssistantBlocks {
		if id, _, _, ok := b.ToolCall(); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// TextContent concatenates the text of a message for summarization/logging.
func (m Message) TextContent() string {
	switch m.Role {
	case RoleUser:
		var s string
		for _, b := range m.UserBlocks {
			if b.Type == UserBlockText {
				s += b.Text
			}
		}
		return s
	case RoleAssistant:
		var s string
		for _, b := range m.AssistantBlocks {
			if b.Type == AssistantBlockText {
				s += b.Text
			}
		}
		return s
	case RoleSystem:
		return m.SystemText
	default:
		return ""
	}
}
