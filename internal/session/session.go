package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BrendanGraham14/steer-sub006/internal/agent"
	"github.com/BrendanGraham14/steer-sub006/internal/approval"
	"github.com/BrendanGraham14/steer-sub006/internal/config"
	"github.com/BrendanGraham14/steer-sub006/internal/conversation"
	"github.com/BrendanGraham14/steer-sub006/internal/log"
	"github.com/BrendanGraham14/steer-sub006/internal/message"
	"github.com/BrendanGraham14/steer-sub006/internal/opctx"
	"github.com/BrendanGraham14/steer-sub006/internal/provider"
	"github.com/BrendanGraham14/steer-sub006/internal/system"
	"github.com/BrendanGraham14/steer-sub006/internal/tool"
)

// eventChannelCapacity bounds the outbound Event Stream per spec.md §5.
const eventChannelCapacity = 256

// eventSendTimeout is how long a blocking (non-MessagePart) emit waits
// before dropping with a warning, per SPEC_FULL.md §13 resolution #2.
const eventSendTimeout = 200 * time.Millisecond

// agentEventChannelCapacity bounds the channel agent.Event forwarding
// uses to cross from executor goroutines into the session's single loop.
const agentEventChannelCapacity = 64

// Session is the Session Actor from spec.md §4.7. It exclusively owns
// the Conversation, Approval Queue, approved-tools/approved-bash-pattern
// sets (inside the Queue), the current OpContext, and the cached system
// prompt. All of that state is touched only from the goroutine running
// Run.
type Session struct {
	conv     *conversation.Store
	approval *approval.Queue
	registry *tool.Registry
	clients  *provider.Clients

	cwd        string
	isGit      bool
	planMode   bool
	model      string
	visibility tool.ToolVisibility

	cachedModel  string
	cachedPrompt string

	currentOp *opctx.Context

	commands    chan Command
	agentEvents chan agent.Event
	execDone    chan execResult
	events      chan Event
	seq         uint64

	nowMs func() int64
}

type execResult struct {
	result *agent.Result
	err    error
}

// Config supplies the fixed inputs a Session needs at construction.
type Config struct {
	Registry     *tool.Registry
	Clients      *provider.Clients
	Cwd          string
	IsGit        bool
	InitialModel string

	// Session, if set, seeds the Approval Queue's pre-approved tool set
	// and static bash patterns, and selects the tool visibility applied
	// to the aggregated schema list sent to the model.
	Session config.SessionConfig
}

// New builds a Session. Call Run in its own goroutine to start the actor
// loop; Events() returns the channel to subscribe to.
func New(cfg Config) *Session {
	s := &Session{
		conv:        conversation.New(),
		registry:    cfg.Registry,
		clients:     cfg.Clients,
		cwd:         cfg.Cwd,
		isGit:       cfg.IsGit,
		model:       cfg.InitialModel,
		visibility:  resolveVisibility(cfg.Session.ToolConfig.Visibility),
		commands:    make(chan Command, 16),
		agentEvents: make(chan agent.Event, agentEventChannelCapacity),
		execDone:    make(chan execResult, 1),
		events:      make(chan Event, eventChannelCapacity),
		nowMs:       func() int64 { return time.Now().UnixMilli() },
	}
	s.approval = approval.New(s.onPendingApproval)
	s.approval.Restore(cfg.Session.ToolConfig.ApprovalPolicy.ApprovedToolNames(), cfg.Session.ToolConfig.BashPatterns.Patterns)
	return s
}

// resolveVisibility maps a SessionConfig's string visibility setting to
// the tool.ToolVisibility policy applied to aggregated schemas.
func resolveVisibility(v string) tool.ToolVisibility {
	switch v {
	case "read_only":
		return tool.ReadOnlyVisibility()
	default:
		return tool.AllVisibility()
	}
}

// Events returns the outbound Event Stream subscribers read from.
func (s *Session) Events() <-chan Event { return s.events }

// Send delivers a Command to the actor loop.
func (s *Session) Send(cmd Command) { s.commands <- cmd }

// Run drives the actor loop until a Shutdown command is processed or ctx
// is cancelled. It is meant to run in its own goroutine for the lifetime
// of the session.
func (s *Session) Run(ctx context.Context) {
	for {
		// Biased select per spec.md §4.7: commands first, then task
		// completions, then executor events. Each tier is tried
		// non-blocking before falling through to a blocking select that
		// still prefers commands via a second non-blocking pass next
		// iteration.
		select {
		case cmd := <-s.commands:
			if s.handle(ctx, cmd) {
				return
			}
			continue
		default:
		}

		select {
		case done := <-s.execDone:
			s.handleExecDone(done)
			continue
		default:
		}

		select {
		case cmd := <-s.commands:
			if s.handle(ctx, cmd) {
				return
			}
		case done := <-s.execDone:
			s.handleExecDone(done)
		case ev := <-s.agentEvents:
			s.handleAgentEvent(ev)
		case <-ctx.Done():
			if s.currentOp != nil {
				s.currentOp.CancelAndShutdown()
			}
			return
		}
	}
}

// handle processes one Command. Returns true if the loop should stop.
func (s *Session) handle(ctx context.Context, cmd Command) bool {
	switch c := cmd.(type) {
	case ProcessUserInput:
		s.handleProcessUserInput(ctx, c)
	case EditMessage:
		s.handleEditMessage(ctx, c)
	case HandleToolResponse:
		s.approval.Resolve(c.ID, c.Approval)
	case ExecuteAppCommand:
		s.handleAppCommand(ctx, c)
	case ExecuteBashCommand:
		s.handleExecuteBashCommand(ctx, c)
	case RestoreConversation:
		s.handleRestoreConversation(c)
	case GetCurrentConversation:
		c.Reply <- s.conv.ActiveThread()
	case RequestWorkspaceFiles:
		files := listWorkspaceFiles(s.cwd)
		c.Reply <- files
		s.emit(Event{Kind: EventWorkspaceFiles, WorkspaceFiles: files})
	case CancelProcessing:
		s.handleCancelProcessing()
	case Shutdown:
		if s.currentOp != nil {
			s.currentOp.CancelAndShutdown()
		}
		return true
	default:
		log.Logger().Warn("session: unknown command", zap.String("type", fmt.Sprintf("%T", cmd)))
	}
	return false
}

func (s *Session) handleProcessUserInput(ctx context.Context, c ProcessUserInput) {
	if len(c.Text) > 0 && c.Text[0] == '/' {
		typ, target, ok := parseSlashCommand(c.Text)
		if ok {
			s.handleAppCommand(ctx, ExecuteAppCommand{Type: typ, Target: target})
			return
		}
	}

	now := s.nowMs()
	id := s.conv.NextID()
	parent := s.lastMessageID()
	msg := message.NewUserMessage(id, s.conv.CurrentThreadID(), parent, now, message.TextUserBlock(c.Text))
	s.conv.Append(msg)
	s.emit(Event{Kind: EventMessageAdded, Message: &msg, Model: s.model})

	s.startTurn(ctx)
}

func (s *Session) handleEditMessage(ctx context.Context, c EditMessage) {
	newID, _, ok := s.conv.Edit(c.ID, c.NewContent, s.nowMs())
	if !ok {
		s.emit(Event{Kind: EventError, ErrorMessage: fmt.Sprintf("edit: unknown message %s", c.ID)})
		return
	}
	thread := s.conv.ActiveThread()
	for i := range thread {
		if thread[i].ID == newID {
			s.emit(Event{Kind: EventMessageAdded, Message: &thread[i], Model: s.model})
			break
		}
	}
	s.startTurn(ctx)
}

func (s *Session) handleExecuteBashCommand(ctx context.Context, c ExecuteBashCommand) {
	params, _ := json.Marshal(struct {
		Command string `json:"command"`
	}{Command: c.Command})

	out, toolErr := s.registry.Execute(ctx, tool.ToolCall{
		Name:       "bash",
		Parameters: params,
	})

	exitCode := 0
	stdout := out
	stderr := ""
	if toolErr != nil {
		exitCode = 1
		stderr = toolErr.Error()
		stdout = ""
	}

	now := s.nowMs()
	id := s.conv.NextID()
	parent := s.lastMessageID()
	msg := message.NewUserMessage(id, s.conv.CurrentThreadID(), parent, now,
		message.CommandExecutionBlock(c.Command, stdout, stderr, exitCode))
	s.conv.Append(msg)
	s.emit(Event{Kind: EventMessageAdded, Message: &msg, Model: s.model})
}

func (s *Session) handleAppCommand(ctx context.Context, c ExecuteAppCommand) {
	switch c.Type {
	case AppCommandClear:
		s.conv = conversation.New()
		s.approval.CancelAll()
		s.emit(Event{Kind: EventCommandResponse, CommandName: "clear", CommandResponse: "conversation cleared"})
	case AppCommandCompact:
		s.handleCompact(ctx)
	case AppCommandModel:
		if c.Target == "" {
			s.emit(Event{Kind: EventCommandResponse, CommandName: "model", CommandResponse: "current model: " + s.model})
		} else if c.Target != s.model {
			s.model = c.Target
			s.emit(Event{Kind: EventModelChanged, Model: s.model})
		}
	case AppCommandCancel:
		s.handleCancelProcessing()
	case AppCommandHelp:
		s.emit(Event{Kind: EventCommandResponse, CommandName: "help", CommandResponse: helpText})
	case AppCommandAuth:
		s.emit(Event{Kind: EventCommandResponse, CommandName: "auth", CommandResponse: "use `steercore auth` to manage provider credentials"})
	}
}

func (s *Session) handleCompact(ctx context.Context) {
	client, err := s.clients.ForModel(ctx, s.model)
	if err != nil {
		s.emit(Event{Kind: EventError, ErrorMessage: err.Error()})
		return
	}
	result, err := s.conv.Compact(ctx, client, s.model, s.currentOp, s.nowMs())
	if err != nil {
		s.emit(Event{Kind: EventError, ErrorMessage: err.Error()})
		return
	}
	switch result.Kind {
	case conversation.CompactSuccess:
		s.emit(Event{Kind: EventCommandResponse, CommandName: "compact", CommandResponse: result.Summary})
	case conversation.CompactInsufficientMessages:
		s.emit(Event{Kind: EventCommandResponse, CommandName: "compact", CommandResponse: "not enough messages to compact"})
	case conversation.CompactCancelled:
		s.emit(Event{Kind: EventCommandResponse, CommandName: "compact", CommandResponse: "compaction cancelled"})
	}
}

func (s *Session) handleRestoreConversation(c RestoreConversation) {
	s.conv = conversation.New()
	for _, m := range c.Messages {
		s.conv.Append(m)
	}
	s.approval.Restore(c.ApprovedTools, c.ApprovedBashPatterns)

	for _, m := range c.Messages {
		mm := m
		s.emit(Event{Kind: EventRestoredMessage, Message: &mm, Model: s.model})
	}
}

func (s *Session) handleCancelProcessing() {
	if s.currentOp == nil {
		return
	}
	info := s.currentOp.Snapshot()
	info.PendingApprovals = s.approval.PendingCount()
	s.approval.CancelAll()
	s.currentOp.CancelAndShutdown()
	s.currentOp = nil
	s.emit(Event{Kind: EventOperationCancelled, CancellationInfo: &info})
}

// startTurn begins a new agent-executor operation over the active
// thread, first injecting synthetic Cancelled results for any orphaned
// tool_use ids per spec.md §4.7's start-of-turn invariant.
func (s *Session) startTurn(ctx context.Context) {
	s.injectCancelledToolResults()

	if s.currentOp != nil {
		s.currentOp.CancelAndShutdown()
	}
	s.currentOp = opctx.New(ctx)

	schemas, err := s.registry.ListSchemas(s.currentOp.Ctx())
	if err != nil {
		s.emit(Event{Kind: EventError, ErrorMessage: err.Error()})
		return
	}
	schemas = s.visibility.Apply(schemas)

	client, err := s.clients.ForModel(s.currentOp.Ctx(), s.model)
	if err != nil {
		s.emit(Event{Kind: EventError, ErrorMessage: err.Error()})
		return
	}

	executor := agent.NewExecutor(client)
	req := agent.Request{
		Model:        s.model,
		Messages:     s.conv.ActiveThread(),
		SystemPrompt: s.systemPrompt(),
		Tools:        schemas,
		ThreadID:     s.conv.CurrentThreadID(),
		ParentID:     s.lastMessageID(),
		NextID:       func() message.ID { return message.ID(uuid.NewString()) },
		NowMs:        s.nowMs,
		ApprovalCallback: func(ctx context.Context, call tool.ToolCall) (approval.Decision, error) {
			requiresApproval := s.registry.RequiresApproval(ctx, call.Name)
			return s.approval.RequestApproval(ctx, uuid.NewString(), call, requiresApproval), nil
		},
		ExecutionCallback: s.registry.Execute,
		Tracker:           s.currentOp,
		OnEvent: func(ev agent.Event) {
			s.agentEvents <- ev
		},
	}

	op := s.currentOp
	s.currentOp.SetAPIInFlight(true)
	op.Spawn(func(opCtx context.Context) {
		result, err := executor.Run(opCtx, req)
		s.execDone <- execResult{result: result, err: err}
	})
}

func (s *Session) handleExecDone(done execResult) {
	if s.currentOp != nil {
		s.currentOp.SetAPIInFlight(false)
	}

	if done.result != nil {
		for _, m := range done.result.Messages {
			s.conv.Append(m)
		}
	}

	switch {
	case done.result == nil:
		s.emit(Event{Kind: EventError, ErrorMessage: done.err.Error()})
		s.emit(Event{Kind: EventThinkingCompleted, Model: s.model})
	case done.result.State == agent.StateFailed:
		s.emit(Event{Kind: EventError, ErrorMessage: done.err.Error()})
		s.emit(Event{Kind: EventThinkingCompleted, Model: s.model})
	case done.result.State == agent.StateCancelled:
		// OperationCancelled was already emitted by handleCancelProcessing.
		s.emit(Event{Kind: EventThinkingCompleted, Model: s.model})
	case done.result.State == agent.StateDone:
		s.emit(Event{Kind: EventThinkingCompleted, Model: s.model})
	}

	s.currentOp = nil
}

func (s *Session) handleAgentEvent(ev agent.Event) {
	switch ev.Kind {
	case agent.EventThinkingStarted:
		s.emit(Event{Kind: EventThinkingStarted, Model: s.model})
	case agent.EventMessageFinal:
		s.emit(Event{Kind: EventMessageAdded, Message: ev.Message, Model: s.model})
	case agent.EventToolCallStarted:
		s.emit(Event{Kind: EventToolCallStarted, ToolCallID: ev.ToolCallID, ToolName: ev.ToolName, Model: s.model})
	case agent.EventToolCallCompleted:
		s.emit(Event{Kind: EventToolCallCompleted, ToolCallID: ev.ToolCallID, ToolName: ev.ToolName, Output: ev.Output, Model: s.model})
	case agent.EventToolCallFailed:
		s.emit(Event{Kind: EventToolCallFailed, ToolCallID: ev.ToolCallID, ToolName: ev.ToolName, Err: ev.Err, Model: s.model})
	}
}

// onPendingApproval is the approval.PendingNotifier wired into the
// Approval Queue at construction; it surfaces a newly-current request as
// a RequestToolApproval event.
func (s *Session) onPendingApproval(req approval.Request) {
	s.emit(Event{
		Kind:       EventRequestToolApproval,
		ToolCallID: req.ID,
		ToolName:   req.Call.Name,
		Params:     req.Call.Parameters,
	})
}

// injectCancelledToolResults scans the active thread for tool_use ids
// with no matching Tool message and appends a synthetic
// Tool{Error(Cancelled)} for each, per spec.md §4.7.
func (s *Session) injectCancelledToolResults() {
	for _, id := range s.conv.FindIncompleteToolCalls() {
		result := message.ErrorResult(id, message.NewToolError(message.ToolErrorCancelled, "", "orphaned tool_use"))
		msg := s.conv.AddToolResult(result, s.nowMs())
		s.emit(Event{Kind: EventMessageAdded, Message: &msg, Model: s.model})
	}
}

// systemPrompt returns the cached prompt for the current model, building
// and caching a fresh one if the model has changed since the last call.
func (s *Session) systemPrompt() string {
	if s.cachedModel == s.model && s.cachedPrompt != "" {
		return s.cachedPrompt
	}
	providerName := ""
	if meta, ok := provider.ModelForID(s.model); ok {
		providerName = string(meta.ProviderKind)
	}
	sys := system.System{Provider: providerName, Model: s.model, Cwd: s.cwd, IsGit: s.isGit, PlanMode: s.planMode}
	s.cachedPrompt = sys.Prompt()
	s.cachedModel = s.model
	return s.cachedPrompt
}

func (s *Session) lastMessageID() message.ID {
	thread := s.conv.ActiveThread()
	if len(thread) == 0 {
		return ""
	}
	return thread[len(thread)-1].ID
}

// emit assigns sequencing/timestamp and delivers ev to the Event Stream.
// MessagePart events are dropped (with a warning) if the channel is
// full; every other event kind blocks up to eventSendTimeout before
// dropping, per SPEC_FULL.md §13 resolution #2.
func (s *Session) emit(ev Event) {
	ev.SequenceNum = atomic.AddUint64(&s.seq, 1)
	ev.TimestampMs = s.nowMs()

	select {
	case s.events <- ev:
		return
	default:
	}

	if ev.Kind == EventMessagePart {
		log.Logger().Warn("session: dropping MessagePart event, event channel full", zap.Uint64("seq", ev.SequenceNum))
		return
	}

	select {
	case s.events <- ev:
	case <-time.After(eventSendTimeout):
		log.Logger().Warn("session: dropping event, event channel full past timeout",
			zap.String("kind", string(ev.Kind)), zap.Uint64("seq", ev.SequenceNum))
	}
}

const helpText = `Commands: /clear /compact /model <name> /cancel /help /auth`
