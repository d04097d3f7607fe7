// Package approval implements the Approval Queue from spec.md §4.4:
// serialized, one-at-a-time interactive tool-approval prompts, with
// auto-approval short-circuits for tools, approved-tool sets, and bash
// glob patterns.
package approval

import (
	"context"
	"encoding/json"

	"github.com/BrendanGraham14/steer-sub006/internal/tool"
)

// Decision is the resolved outcome of an approval request.
type Decision int

const (
	Denied Decision = iota
	Approved
)

// Kind is the approval type chosen by the UI in resolve().
type Kind int

const (
	// Once approves this single call without changing session state.
	Once Kind = iota
	// DeniedKind denies this single call without changing session state.
	DeniedKind
	// AlwaysTool approves and remembers the tool name for the session.
	AlwaysTool
	// AlwaysBashPattern approves and remembers a glob pattern for bash
	// commands for the session.
	AlwaysBashPattern
)

// Resolution is what the UI sends back for a pending request.
type Resolution struct {
	Kind    Kind
	Pattern string // only meaningful for AlwaysBashPattern
}

// Request is a pending or queued approval request.
type Request struct {
	ID       string
	Call     tool.ToolCall
	responder chan Decision
}

// bashCommand extracts the "command" field from a bash tool_call's
// parameters, used for pattern auto-approval and for the destructive-
// command guardrail. Returns "", false if call is not a bash invocation
// or carries no command field.
func bashCommand(call tool.ToolCall) (string, bool) {
	if call.Name != "bash" {
		return "", false
	}
	var p struct {
		Command string `json:"command"`
	}
	if err := json.Unmarshal(call.Parameters, &p); err != nil {
		return "", false
	}
	return p.Command, p.Command != ""
}

// wait blocks until the request is resolved or ctx is cancelled. Context
// cancellation is treated as Denied, matching cancel_all's documented
// waiter semantics.
func (r *Request) wait(ctx context.Context) Decision {
	select {
	case d := <-r.responder:
		return d
	case <-ctx.Done():
		return Denied
	}
}
