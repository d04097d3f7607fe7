package agent

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/BrendanGraham14/steer-sub006/internal/approval"
	"github.com/BrendanGraham14/steer-sub006/internal/log"
	"github.com/BrendanGraham14/steer-sub006/internal/message"
	"github.com/BrendanGraham14/steer-sub006/internal/provider"
	"github.com/BrendanGraham14/steer-sub006/internal/tool"
)

// DefaultMaxRetries bounds provider.CompleteWithRetry's attempt count.
const DefaultMaxRetries = 3

// DefaultMaxTokens is used when a Request does not set MaxTokens.
const DefaultMaxTokens = 8192

// Executor runs the iterative model/tool loop described in spec.md §4.6.
type Executor struct {
	provider provider.LLMProvider
}

// NewExecutor builds an Executor bound to a single provider instance
// (memoized per-model by the caller, per spec.md §4.3).
func NewExecutor(p provider.LLMProvider) *Executor {
	return &Executor{provider: p}
}

// Run executes the loop: complete, append the assistant message, execute
// any proposed tool calls, append their results, repeat until a turn
// proposes no tool calls or the run fails/cancels.
func (e *Executor) Run(ctx context.Context, req Request) (*Result, error) {
	messages := append([]message.Message(nil), req.Messages...)
	var produced []message.Message
	parent := req.ParentID
	thinkingEmitted := false

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	for {
		if ctx.Err() != nil {
			return &Result{Messages: produced, State: StateCancelled, Err: ctx.Err()}, ctx.Err()
		}

		if !thinkingEmitted {
			req.emit(Event{Kind: EventThinkingStarted})
			thinkingEmitted = true
		}

		opts := provider.CompletionOptions{
			Model:        req.Model,
			Messages:     messages,
			MaxTokens:    maxTokens,
			Tools:        tool.ToProviderTools(req.Tools),
			SystemPrompt: req.SystemPrompt,
		}

		resp, err := provider.CompleteWithRetry(ctx, e.provider, opts, DefaultMaxRetries)
		if err != nil {
			if apiErr, ok := err.(*provider.ApiError); ok && apiErr.Kind == provider.ErrCancelled {
				return &Result{Messages: produced, State: StateCancelled, Err: err}, err
			}
			log.Logger().Error("agent executor: completion failed", zap.Error(err))
			return &Result{Messages: produced, State: StateFailed, Err: err}, err
		}

		assistantID := req.NextID()
		assistantMsg := message.NewAssistantMessage(assistantID, req.ThreadID, parent, req.NowMs(), resp.ToAssistantBlocks()...)
		messages = append(messages, assistantMsg)
		produced = append(produced, assistantMsg)
		parent = assistantID
		req.emit(Event{Kind: EventMessageFinal, Message: &assistantMsg})

		toolCalls := extractToolCalls(assistantMsg)
		if len(toolCalls) == 0 {
			return &Result{FinalMessage: assistantMsg, Messages: produced, State: StateDone}, nil
		}

		results := e.runToolCalls(ctx, toolCalls, req)
		for _, r := range results {
			toolMsg := message.NewToolMessage(req.NextID(), req.ThreadID, parent, req.NowMs(), r)
			messages = append(messages, toolMsg)
			produced = append(produced, toolMsg)
			parent = toolMsg.ID
		}
	}
}

// extractToolCalls pulls every ToolCall block from an Assistant message,
// in emission order.
func extractToolCalls(msg message.Message) []tool.ToolCall {
	var calls []tool.ToolCall
	for _, b := range msg.AssistantBlocks {
		id, name, params, ok := b.ToolCall()
		if !ok {
			continue
		}
		calls = append(calls, tool.ToolCall{ID: id, Name: name, Parameters: params})
	}
	return calls
}

// runToolCalls implements run_tool_calls from spec.md §4.6: every call
// runs concurrently, results preserve tool_use block order, and a global
// cancel races every await point. Duplicate tool_use ids are executed as
// distinct calls.
func (e *Executor) runToolCalls(ctx context.Context, calls []tool.ToolCall, req Request) []message.ToolResult {
	results := make([]message.ToolResult, len(calls))
	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func(i int, call tool.ToolCall) {
			defer wg.Done()
			results[i] = e.runOneToolCall(ctx, call, req)
		}(i, call)
	}
	wg.Wait()
	return results
}

func (e *Executor) runOneToolCall(ctx context.Context, call tool.ToolCall, req Request) message.ToolResult {
	if ctx.Err() != nil {
		return message.ErrorResult(call.ID, message.Cancelled(call.Name))
	}

	decision, err := req.ApprovalCallback(ctx, call)
	if ctx.Err() != nil {
		return message.ErrorResult(call.ID, message.Cancelled(call.Name))
	}
	if err != nil {
		return message.ErrorResult(call.ID, message.InternalError(err.Error()))
	}
	if decision == approval.Denied {
		return message.ErrorResult(call.ID, message.DeniedByUser(call.Name))
	}

	if req.Tracker != nil {
		req.Tracker.TrackTool(call.ID, call.Name)
		defer req.Tracker.UntrackTool(call.ID)
	}

	req.emit(Event{
		Kind:       EventToolCallStarted,
		ToolCallID: call.ID,
		ToolName:   call.Name,
		Summary:    DescribeToolCall(call),
	})

	output, toolErr := req.ExecutionCallback(ctx, call)
	if toolErr != nil {
		req.emit(Event{Kind: EventToolCallFailed, ToolCallID: call.ID, ToolName: call.Name, Err: toolErr})
		return message.ErrorResult(call.ID, toolErr)
	}

	req.emit(Event{Kind: EventToolCallCompleted, ToolCallID: call.ID, ToolName: call.Name, Output: output})
	return message.SuccessResult(call.ID, output)
}
