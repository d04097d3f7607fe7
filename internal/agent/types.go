// Package agent implements the Agent Executor from spec.md §4.6: the
// iterative model-call / tool-execution loop that turns a batch of
// tool_use blocks into Tool messages and feeds them back to the model
// until a turn produces no further tool calls.
package agent

import (
	"context"

	"github.com/BrendanGraham14/steer-sub006/internal/approval"
	"github.com/BrendanGraham14/steer-sub006/internal/message"
	"github.com/BrendanGraham14/steer-sub006/internal/tool"
)

// State names a point in the executor's state machine (spec.md §4.6):
// Idle → Thinking → ToolsPending → Executing → (loop back to Thinking)
// | Done | Failed | Cancelled.
type State string

const (
	StateIdle         State = "idle"
	StateThinking     State = "thinking"
	StateToolsPending State = "tools_pending"
	StateExecuting    State = "executing"
	StateDone         State = "done"
	StateFailed       State = "failed"
	StateCancelled    State = "cancelled"
)

// ApprovalCallback resolves whether a proposed tool call may run. It is
// invoked concurrently for every tool_use block in a turn; static rules
// (tool needs no approval, preapproved set, bash pattern match) resolve
// synchronously, interactive approvals block until the user responds.
type ApprovalCallback func(ctx context.Context, call tool.ToolCall) (approval.Decision, error)

// ExecutionCallback runs an approved tool call and returns its result.
// tool.Registry.Execute satisfies this signature directly.
type ExecutionCallback func(ctx context.Context, call tool.ToolCall) (string, *message.ToolError)

// ToolTracker records which tool calls are currently executing, so the
// operation's CancellationInfo.ActiveTools can report them if the
// operation is cancelled mid-flight. opctx.Context satisfies this.
type ToolTracker interface {
	TrackTool(id, name string)
	UntrackTool(id string)
}

// Request is the input to a single Executor.Run call, matching spec.md
// §4.6's {model, initial_messages, system_prompt?, available_tools,
// approval_callback, execution_callback}.
type Request struct {
	Model        string
	Messages     []message.Message
	SystemPrompt string
	Tools        []tool.ToolSchema
	MaxTokens    int

	ThreadID  string
	ParentID  message.ID
	NextID    func() message.ID
	NowMs     func() int64

	ApprovalCallback  ApprovalCallback
	ExecutionCallback ExecutionCallback

	// Tracker, if set, is notified around ExecutionCallback so an
	// in-flight tool call's name is visible to CancellationInfo.
	Tracker ToolTracker

	// OnEvent, if set, receives every AgentEvent emitted during the run.
	OnEvent func(Event)
}

func (r Request) emit(ev Event) {
	if r.OnEvent != nil {
		r.OnEvent(ev)
	}
}

// Result is the outcome of a Run call.
type Result struct {
	// FinalMessage is the last Assistant message produced, valid when
	// State is Done.
	FinalMessage message.Message
	// Messages holds every Assistant/Tool message appended during this
	// run, in order, for the caller to fold into the Conversation Store.
	Messages []message.Message
	State    State
	Err      error
}
