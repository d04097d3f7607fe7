package session

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/BrendanGraham14/steer-sub006/internal/approval"
	"github.com/BrendanGraham14/steer-sub006/internal/message"
	"github.com/BrendanGraham14/steer-sub006/internal/provider"
	"github.com/BrendanGraham14/steer-sub006/internal/tool"
	"github.com/BrendanGraham14/steer-sub006/internal/tool/local"
)

type fakeProvider struct {
	responses []*provider.CompletionResponse
	calls     int
}

func (f *fakeProvider) Name() string { return "fake" }
func (f *fakeProvider) Complete(ctx context.Context, opts provider.CompletionOptions) (*provider.CompletionResponse, error) {
	i := f.calls
	f.calls++
	if i >= len(f.responses) {
		return &provider.CompletionResponse{Blocks: []provider.ContentBlock{{Type: provider.ContentText, Text: "done"}}}, nil
	}
	return f.responses[i], nil
}
func (f *fakeProvider) ListModels(ctx context.Context) ([]provider.ModelInfo, error) { return nil, nil }

func newTestSession(t *testing.T, prov provider.LLMProvider) *Session {
	t.Helper()
	reg := tool.NewRegistry()
	backend := local.NewBackend()
	backend.Register(&local.BashTool{})
	reg.AddBackend(backend, tool.AllFilter())

	clients := provider.NewClients(func(ctx context.Context, key string) (provider.LLMProvider, error) {
		return prov, nil
	})

	return New(Config{Registry: reg, Clients: clients, Cwd: t.TempDir(), InitialModel: "grok-4"})
}

func drainUntil(t *testing.T, events <-chan Event, kind EventKind, timeout time.Duration) Event {
	t.Helper()
	deadline := time.After(timeout)
	for {
		select {
		case ev := <-events:
			if ev.Kind == kind {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for event kind %s", kind)
		}
	}
}

func TestSession_ProcessUserInputProducesFinalMessage(t *testing.T) {
	prov := &fakeProvider{
		responses: []*provider.CompletionResponse{
			{Blocks: []provider.ContentBlock{{Type: provider.ContentText, Text: "hi there"}}},
		},
	}
	s := newTestSession(t, prov)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	s.Send(ProcessUserInput{Text: "hello"})

	// First MessageAdded is the user's own message; the second is the
	// assistant's final reply, forwarded via handleAgentEvent.
	drainUntil(t, s.Events(), EventMessageAdded, time.Second)
	ev := drainUntil(t, s.Events(), EventMessageAdded, time.Second)
	if ev.Message == nil || ev.Message.Role != message.RoleAssistant {
		t.Fatalf("expected assistant message, got %+v", ev.Message)
	}

	drainUntil(t, s.Events(), EventThinkingCompleted, time.Second)
}

func TestSession_ExecuteBashCommandBypassesModel(t *testing.T) {
	prov := &fakeProvider{}
	s := newTestSession(t, prov)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	s.Send(ExecuteBashCommand{Command: "echo hi"})

	ev := drainUntil(t, s.Events(), EventMessageAdded, time.Second)
	if ev.Message == nil || ev.Message.Role != message.RoleUser {
		t.Fatalf("expected a User CommandExecution message, got %+v", ev.Message)
	}
	if prov.calls != 0 {
		t.Fatalf("expected bash execution to bypass the model, but Complete was called %d times", prov.calls)
	}
}

func TestSession_CancelProcessingEmitsOperationCancelled(t *testing.T) {
	block := make(chan struct{})
	prov := blockingProvider{block: block}
	s := newTestSession(t, prov)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	s.Send(ProcessUserInput{Text: "long running"})
	s.Send(CancelProcessing{})

	drainUntil(t, s.Events(), EventOperationCancelled, time.Second)
	close(block)
	drainUntil(t, s.Events(), EventThinkingCompleted, time.Second)
}

type blockingProvider struct {
	block chan struct{}
}

func (b blockingProvider) Name() string { return "blocking" }
func (b blockingProvider) Complete(ctx context.Context, opts provider.CompletionOptions) (*provider.CompletionResponse, error) {
	select {
	case <-b.block:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return &provider.CompletionResponse{Blocks: []provider.ContentBlock{{Type: provider.ContentText, Text: "late"}}}, nil
}
func (b blockingProvider) ListModels(ctx context.Context) ([]provider.ModelInfo, error) { return nil, nil }

// blockingTool stays mid-execution until released, so tests can observe
// an operation's ActiveTools while a call is outstanding.
type blockingTool struct {
	release chan struct{}
}

func (b *blockingTool) Schema() tool.ToolSchema {
	return tool.ToolSchema{Name: "slow_tool", Description: "blocks until released"}
}

func (b *blockingTool) Execute(ctx context.Context, params json.RawMessage) (string, error) {
	select {
	case <-b.release:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	return "done", nil
}

func TestSession_CancelProcessingReportsActiveTools(t *testing.T) {
	release := make(chan struct{})
	reg := tool.NewRegistry()
	backend := local.NewBackend()
	backend.Register(&blockingTool{release: release})
	reg.AddBackend(backend, tool.AllFilter())

	toolParams, _ := json.Marshal(map[string]string{})
	prov := &fakeProvider{
		responses: []*provider.CompletionResponse{
			{Blocks: []provider.ContentBlock{{Type: provider.ContentToolUse, ToolUseID: "t1", ToolUseName: "slow_tool", ToolUseInput: toolParams}}},
		},
	}

	clients := provider.NewClients(func(ctx context.Context, key string) (provider.LLMProvider, error) {
		return prov, nil
	})
	s := New(Config{Registry: reg, Clients: clients, Cwd: t.TempDir(), InitialModel: "grok-4"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	s.Send(ProcessUserInput{Text: "run the slow tool"})
	drainUntil(t, s.Events(), EventToolCallStarted, time.Second)

	s.Send(CancelProcessing{})
	ev := drainUntil(t, s.Events(), EventOperationCancelled, time.Second)
	if ev.CancellationInfo == nil || len(ev.CancellationInfo.ActiveTools) != 1 || ev.CancellationInfo.ActiveTools[0] != "slow_tool" {
		t.Fatalf("expected active_tools to report the in-flight call, got %+v", ev.CancellationInfo)
	}
	close(release)
}

func TestSession_SlashCommandClearResetsConversation(t *testing.T) {
	prov := &fakeProvider{
		responses: []*provider.CompletionResponse{
			{Blocks: []provider.ContentBlock{{Type: provider.ContentText, Text: "hi"}}},
		},
	}
	s := newTestSession(t, prov)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	s.Send(ProcessUserInput{Text: "hello"})
	drainUntil(t, s.Events(), EventMessageAdded, time.Second)
	drainUntil(t, s.Events(), EventMessageAdded, time.Second)

	s.Send(ProcessUserInput{Text: "/clear"})
	ev := drainUntil(t, s.Events(), EventCommandResponse, time.Second)
	if ev.CommandName != "clear" {
		t.Fatalf("expected clear command response, got %+v", ev)
	}

	reply := make(chan []message.Message, 1)
	s.Send(GetCurrentConversation{Reply: reply})
	select {
	case msgs := <-reply:
		if len(msgs) != 0 {
			t.Fatalf("expected empty conversation after /clear, got %d messages", len(msgs))
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for GetCurrentConversation reply")
	}
}

func TestSession_RestoreConversationReplaysMessages(t *testing.T) {
	prov := &fakeProvider{}
	s := newTestSession(t, prov)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	params, _ := json.Marshal(map[string]string{"command": "ls"})
	restored := []message.Message{
		message.NewUserMessage("m1", "t1", "", 1, message.TextUserBlock("hi")),
	}
	s.Send(RestoreConversation{Messages: restored, ApprovedTools: []string{"bash"}})
	drainUntil(t, s.Events(), EventRestoredMessage, time.Second)

	d := s.approval.RequestApproval(ctx, "x", tool.ToolCall{Name: "bash", Parameters: params}, true)
	if d != approval.Approved {
		t.Fatalf("expected bash to be pre-approved after restore, got %v", d)
	}
}
