package agent

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/BrendanGraham14/steer-sub006/internal/approval"
	"github.com/BrendanGraham14/steer-sub006/internal/message"
	"github.com/BrendanGraham14/steer-sub006/internal/provider"
	"github.com/BrendanGraham14/steer-sub006/internal/tool"
)

// fakeProvider scripts a sequence of completions for the executor loop
// without touching any real vendor SDK.
type fakeProvider struct {
	responses []*provider.CompletionResponse
	errs      []error
	calls     int
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Complete(ctx context.Context, opts provider.CompletionOptions) (*provider.CompletionResponse, error) {
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	return f.responses[i], nil
}

func (f *fakeProvider) ListModels(ctx context.Context) ([]provider.ModelInfo, error) { return nil, nil }

func idSequence() func() message.ID {
	n := 0
	return func() message.ID {
		n++
		return message.ID(string(rune('a'-1+n)) + "id")
	}
}

func alwaysApprove(ctx context.Context, call tool.ToolCall) (approval.Decision, error) {
	return approval.Approved, nil
}

func TestRun_NoToolCallsReturnsDone(t *testing.T) {
	prov := &fakeProvider{
		responses: []*provider.CompletionResponse{
			{Blocks: []provider.ContentBlock{{Type: provider.ContentText, Text: "hello"}}, StopReason: "end_turn"},
		},
	}

	e := NewExecutor(prov)
	req := Request{
		Model:            "fake-model",
		ThreadID:         "thread-1",
		NextID:           idSequence(),
		NowMs:            func() int64 { return 1 },
		ApprovalCallback: alwaysApprove,
	}

	result, err := e.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.State != StateDone {
		t.Fatalf("want StateDone, got %v", result.State)
	}
	if result.FinalMessage.TextContent() != "hello" {
		t.Fatalf("unexpected final message: %+v", result.FinalMessage)
	}
	if len(result.Messages) != 1 {
		t.Fatalf("expected exactly one produced message, got %d", len(result.Messages))
	}
}

func TestRun_ExecutesToolCallThenReturnsDone(t *testing.T) {
	toolParams, _ := json.Marshal(map[string]string{"file_path": "a.txt"})
	prov := &fakeProvider{
		responses: []*provider.CompletionResponse{
			{Blocks: []provider.ContentBlock{{Type: provider.ContentToolUse, ToolUseID: "t1", ToolUseName: "read", ToolUseInput: toolParams}}},
			{Blocks: []provider.ContentBlock{{Type: provider.ContentText, Text: "done"}}},
		},
	}

	var gotCall tool.ToolCall
	exec := func(ctx context.Context, call tool.ToolCall) (string, *message.ToolError) {
		gotCall = call
		return "file contents", nil
	}

	var events []Event
	e := NewExecutor(prov)
	req := Request{
		Model:             "fake-model",
		ThreadID:          "thread-1",
		NextID:            idSequence(),
		NowMs:             func() int64 { return 1 },
		ApprovalCallback:  alwaysApprove,
		ExecutionCallback: exec,
		OnEvent:           func(ev Event) { events = append(events, ev) },
	}

	result, err := e.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.State != StateDone {
		t.Fatalf("want StateDone, got %v", result.State)
	}
	if gotCall.Name != "read" || gotCall.ID != "t1" {
		t.Fatalf("execution callback got unexpected call: %+v", gotCall)
	}
	// Assistant(tool_use) + Tool(result) + Assistant(final) = 3 produced messages.
	if len(result.Messages) != 3 {
		t.Fatalf("expected 3 produced messages, got %d: %+v", len(result.Messages), result.Messages)
	}
	if result.Messages[1].Role != message.RoleTool || result.Messages[1].ToolResult.Output != "file contents" {
		t.Fatalf("unexpected tool message: %+v", result.Messages[1])
	}

	var sawStarted, sawCompleted bool
	for _, ev := range events {
		if ev.Kind == EventToolCallStarted {
			sawStarted = true
		}
		if ev.Kind == EventToolCallCompleted && ev.Output == "file contents" {
			sawCompleted = true
		}
	}
	if !sawStarted || !sawCompleted {
		t.Fatalf("expected ToolCallStarted and ToolCallCompleted events, got %+v", events)
	}
}

func TestRun_DeniedToolCallFeedsErrorBackAndContinues(t *testing.T) {
	params, _ := json.Marshal(map[string]string{"command": "rm -rf /"})
	prov := &fakeProvider{
		responses: []*provider.CompletionResponse{
			{Blocks: []provider.ContentBlock{{Type: provider.ContentToolUse, ToolUseID: "t1", ToolUseName: "bash", ToolUseInput: params}}},
			{Blocks: []provider.ContentBlock{{Type: provider.ContentText, Text: "ok, not running that"}}},
		},
	}

	e := NewExecutor(prov)
	req := Request{
		Model:    "fake-model",
		ThreadID: "thread-1",
		NextID:   idSequence(),
		NowMs:    func() int64 { return 1 },
		ApprovalCallback: func(ctx context.Context, call tool.ToolCall) (approval.Decision, error) {
			return approval.Denied, nil
		},
		ExecutionCallback: func(ctx context.Context, call tool.ToolCall) (string, *message.ToolError) {
			t.Fatal("execution callback must not run for a denied call")
			return "", nil
		},
	}

	result, err := e.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.State != StateDone {
		t.Fatalf("want StateDone, got %v", result.State)
	}
	toolMsg := result.Messages[1]
	if toolMsg.ToolResult.Err == nil || toolMsg.ToolResult.Err.Kind != message.ToolErrorDeniedByUser {
		t.Fatalf("expected DeniedByUser tool error, got %+v", toolMsg.ToolResult)
	}
}

type fakeTracker struct {
	tracked map[string]string
}

func newFakeTracker() *fakeTracker {
	return &fakeTracker{tracked: make(map[string]string)}
}

func (f *fakeTracker) TrackTool(id, name string) {
	f.tracked[id] = name
}

func (f *fakeTracker) UntrackTool(id string) {
	delete(f.tracked, id)
}

func TestRun_TracksToolCallDuringExecution(t *testing.T) {
	toolParams, _ := json.Marshal(map[string]string{"file_path": "a.txt"})
	prov := &fakeProvider{
		responses: []*provider.CompletionResponse{
			{Blocks: []provider.ContentBlock{{Type: provider.ContentToolUse, ToolUseID: "t1", ToolUseName: "read", ToolUseInput: toolParams}}},
			{Blocks: []provider.ContentBlock{{Type: provider.ContentText, Text: "done"}}},
		},
	}

	tracker := newFakeTracker()
	var trackedDuringExec map[string]string
	exec := func(ctx context.Context, call tool.ToolCall) (string, *message.ToolError) {
		trackedDuringExec = map[string]string{call.ID: tracker.tracked[call.ID]}
		return "file contents", nil
	}

	e := NewExecutor(prov)
	req := Request{
		Model:             "fake-model",
		ThreadID:          "thread-1",
		NextID:            idSequence(),
		NowMs:             func() int64 { return 1 },
		ApprovalCallback:  alwaysApprove,
		ExecutionCallback: exec,
		Tracker:           tracker,
	}

	result, err := e.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.State != StateDone {
		t.Fatalf("want StateDone, got %v", result.State)
	}
	if trackedDuringExec["t1"] != "read" {
		t.Fatalf("expected tool to be tracked as active during execution, got %+v", trackedDuringExec)
	}
	if _, stillTracked := tracker.tracked["t1"]; stillTracked {
		t.Fatal("expected tool to be untracked once execution completes")
	}
}

func TestRun_NonCancelledApiErrorReturnsFailed(t *testing.T) {
	prov := &fakeProvider{
		errs: []error{provider.InvalidResponse("malformed")},
	}

	e := NewExecutor(prov)
	req := Request{
		Model:            "fake-model",
		ThreadID:         "thread-1",
		NextID:           idSequence(),
		NowMs:            func() int64 { return 1 },
		ApprovalCallback: alwaysApprove,
	}

	result, err := e.Run(context.Background(), req)
	if err == nil {
		t.Fatal("expected an error")
	}
	if result.State != StateFailed {
		t.Fatalf("want StateFailed, got %v", result.State)
	}
}

func TestRun_CancelledContextReturnsCancelled(t *testing.T) {
	prov := &fakeProvider{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := NewExecutor(prov)
	req := Request{
		Model:            "fake-model",
		ThreadID:         "thread-1",
		NextID:           idSequence(),
		NowMs:            func() int64 { return 1 },
		ApprovalCallback: alwaysApprove,
	}

	result, err := e.Run(ctx, req)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if result.State != StateCancelled {
		t.Fatalf("want StateCancelled, got %v", result.State)
	}
}
