package approval

import (
	"context"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/BrendanGraham14/steer-sub006/internal/tool"
)

// PendingNotifier is called when a request becomes current and must be
// surfaced to the user, i.e. the RequestToolApproval event from spec.md
// §4.4/§6. The Session Actor supplies this so the Approval Queue stays
// independent of the event-stream type.
type PendingNotifier func(req Request)

// Queue serializes interactive tool approvals to one at a time, per
// spec.md §4.4. It also owns the session-scoped approved-tools and
// approved-bash-patterns sets that the auto-approval path consults,
// matching the ownership note in spec.md §3.
type Queue struct {
	mu sync.Mutex

	current *Request
	queued  []*Request

	approvedTools       map[string]bool
	approvedBashPatterns []string

	notify PendingNotifier
}

// New creates an empty Queue. notify may be nil, in which case requests
// that require interactive approval simply wait without any UI signal
// (useful in tests).
func New(notify PendingNotifier) *Queue {
	return &Queue{
		approvedTools: make(map[string]bool),
		notify:        notify,
	}
}

// RequestApproval is the entry point used by the Agent Executor for a
// tool_use block that a Backend reports as requires_approval. It runs
// the auto-approval chain first and only touches the queue if none of
// the steps apply. It blocks until resolved or ctx is cancelled.
func (q *Queue) RequestApproval(ctx context.Context, id string, call tool.ToolCall, toolRequiresApproval bool) Decision {
	if d, ok := q.autoApprove(call, toolRequiresApproval); ok {
		return d
	}

	req := &Request{ID: id, Call: call, responder: make(chan Decision, 1)}
	q.add(req)
	return req.wait(ctx)
}

// autoApprove implements the 4-step priority chain from spec.md §4.4,
// steps 1-3 (step 4 is "enqueue", signalled by ok=false).
func (q *Queue) autoApprove(call tool.ToolCall, toolRequiresApproval bool) (Decision, bool) {
	// Step 1: the tool itself does not require approval.
	if !toolRequiresApproval {
		return Approved, true
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	// Step 2: tool name already approved for the session.
	if q.approvedTools[call.Name] {
		return Approved, true
	}

	// Step 3: bash command matches a remembered pattern, unless the
	// command is destructive (guardrail from SPEC_FULL.md §11: a loose
	// glob can never auto-approve a destructive command).
	if cmd, ok := bashCommand(call); ok {
		if IsDestructiveCommand(cmd) {
			return Denied, false // fall through to interactive approval, never auto-deny silently
		}
		for _, pattern := range q.approvedBashPatterns {
			if matchesBashPattern(cmd, pattern) {
				return Approved, true
			}
		}
	}

	return Denied, false
}

// matchesBashPattern reports whether cmd matches pattern either by exact
// string equality or by glob match against the whole command string, per
// spec.md §4.4 step 3.
func matchesBashPattern(cmd, pattern string) bool {
	if cmd == pattern {
		return true
	}
	ok, err := doublestar.Match(pattern, cmd)
	return err == nil && ok
}

// add pushes a request onto the queue, then tries to process it.
func (q *Queue) add(req *Request) {
	q.mu.Lock()
	q.queued = append(q.queued, req)
	q.mu.Unlock()
	q.processNext()
}

// processNext promotes the head of the queue to current if nothing is
// currently pending, re-checking the approved-tools set on each pop so a
// tool approved while queued skips the prompt entirely.
func (q *Queue) processNext() {
	for {
		q.mu.Lock()
		if q.current != nil || len(q.queued) == 0 {
			q.mu.Unlock()
			return
		}
		req := q.queued[0]
		q.queued = q.queued[1:]

		if q.approvedTools[req.Call.Name] {
			q.mu.Unlock()
			req.responder <- Approved
			continue
		}

		q.current = req
		notify := q.notify
		q.mu.Unlock()

		if notify != nil {
			notify(*req)
		}
		return
	}
}

// Resolve matches a UI decision to the current request by id. It is a
// no-op if id does not match current.
func (q *Queue) Resolve(id string, res Resolution) {
	q.mu.Lock()
	if q.current == nil || q.current.ID != id {
		q.mu.Unlock()
		return
	}
	req := q.current
	q.current = nil

	var decision Decision
	switch res.Kind {
	case Once:
		decision = Approved
	case DeniedKind:
		decision = Denied
	case AlwaysTool:
		q.approvedTools[req.Call.Name] = true
		decision = Approved
	case AlwaysBashPattern:
		if res.Pattern != "" {
			q.approvedBashPatterns = append(q.approvedBashPatterns, res.Pattern)
		}
		decision = Approved
	default:
		decision = Denied
	}
	q.mu.Unlock()

	req.responder <- decision
	q.processNext()
}

// CancelAll drops the current and every queued responder; each dropped
// waiter observes Denied.
func (q *Queue) CancelAll() {
	q.mu.Lock()
	current := q.current
	queued := q.queued
	q.current = nil
	q.queued = nil
	q.mu.Unlock()

	if current != nil {
		current.responder <- Denied
	}
	for _, req := range queued {
		req.responder <- Denied
	}
}

// Current reports the request currently awaiting a UI decision, if any.
func (q *Queue) Current() (Request, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.current == nil {
		return Request{}, false
	}
	return *q.current, true
}

// ApprovedTools returns a snapshot of the session's always-approved tool
// names.
func (q *Queue) ApprovedTools() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]string, 0, len(q.approvedTools))
	for name := range q.approvedTools {
		out = append(out, name)
	}
	return out
}

// ApprovedBashPatterns returns a snapshot of the session's remembered
// bash glob patterns.
func (q *Queue) ApprovedBashPatterns() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]string(nil), q.approvedBashPatterns...)
}

// Restore replaces the approved-tools and approved-bash-patterns sets
// wholesale, used when a session is restored from persisted state
// (spec.md §6 RestoreConversation).
func (q *Queue) Restore(tools, patterns []string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.approvedTools = make(map[string]bool, len(tools))
	for _, t := range tools {
		q.approvedTools[t] = true
	}
	q.approvedBashPatterns = append([]string(nil), patterns...)
}

// PendingCount reports how many requests (current plus queued) are
// awaiting a UI decision, for CancellationInfo reporting.
func (q *Queue) PendingCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := len(q.queued)
	if q.current != nil {
		n++
	}
	return n
}
