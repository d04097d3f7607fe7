// Package opctx implements the Operation Context described in spec.md §4.5:
// a per-operation cancellation token plus a task group that joins all child
// tasks on shutdown.
package opctx

import (
	"context"
	"sync"
	"time"

	"github.com/BrendanGraham14/steer-sub006/internal/log"
	"go.uber.org/zap"
)

// ShutdownTimeout bounds how long cancel_and_shutdown waits for spawned
// tasks before abandoning them.
const ShutdownTimeout = 5 * time.Second

// Context is a single operation's cancellation scope. The session holds at
// most one active Context; starting a new operation first calls
// CancelAndShutdown on any previous one.
type Context struct {
	ctx    context.Context
	cancel context.CancelFunc

	wg sync.WaitGroup

	mu          sync.Mutex
	activeTools map[string]string // tool_call_id -> tool name
	apiInFlight bool
}

// New creates a fresh Context as a child of parent.
func New(parent context.Context) *Context {
	ctx, cancel := context.WithCancel(parent)
	return &Context{
		ctx:         ctx,
		cancel:      cancel,
		activeTools: make(map[string]string),
	}
}

// Ctx returns the underlying context.Context for select/cancellation checks.
func (c *Context) Ctx() context.Context { return c.ctx }

// Cancelled reports whether the operation has been cancelled.
func (c *Context) Cancelled() bool {
	select {
	case <-c.ctx.Done():
		return true
	default:
		return false
	}
}

// Spawn runs fn in a goroutine tracked by the task group.
func (c *Context) Spawn(fn func(context.Context)) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		fn(c.ctx)
	}()
}

// SetAPIInFlight records whether a provider call is currently outstanding,
// for CancellationInfo reporting.
func (c *Context) SetAPIInFlight(v bool) {
	c.mu.Lock()
	c.apiInFlight = v
	c.mu.Unlock()
}

// TrackTool records a tool call as currently executing.
func (c *Context) TrackTool(id, name string) {
	c.mu.Lock()
	c.activeTools[id] = name
	c.mu.Unlock()
}

// UntrackTool removes a tool call from the active set.
func (c *Context) UntrackTool(id string) {
	c.mu.Lock()
	delete(c.activeTools, id)
	c.mu.Unlock()
}

// CancellationInfo carries what was in flight when an operation was
// cancelled: whether an API call was outstanding, the names of active tool
// executions, and how many approvals were pending. Grounded on the Rust
// App's cancellation.rs-referenced struct.
type CancellationInfo struct {
	APICallInProgress bool
	ActiveTools       []string
	PendingApprovals  int
}

// Snapshot captures the current CancellationInfo (PendingApprovals must be
// filled in by the caller, which owns the Approval Queue).
func (c *Context) Snapshot() CancellationInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	names := make([]string, 0, len(c.activeTools))
	for _, n := range c.activeTools {
		names = append(names, n)
	}
	return CancellationInfo{APICallInProgress: c.apiInFlight, ActiveTools: names}
}

// CancelAndShutdown signals cancellation, then waits for the task group to
// drain, up to ShutdownTimeout. Tasks still running past the timeout are
// abandoned (their goroutines continue but are no longer awaited).
func (c *Context) CancelAndShutdown() {
	c.cancel()

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(ShutdownTimeout):
		log.Logger().Warn("operation shutdown timed out, abandoning remaining tasks",
			zap.Duration("timeout", ShutdownTimeout))
	}
}
