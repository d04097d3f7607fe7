package conversation

import (
	"testing"

	"github.com/BrendanGraham14/steer-sub006/internal/message"
)

func TestEdit_BranchesThreadAndPreservesOriginal(t *testing.T) {
	s := New()
	originalThread := s.CurrentThreadID()

	u1 := message.NewUserMessage(s.NextID(), originalThread, "", 1, message.TextUserBlock("hi"))
	s.Append(u1)
	a1 := message.NewAssistantMessage(s.NextID(), originalThread, u1.ID, 2, message.TextBlock("hello"))
	s.Append(a1)
	u2 := message.NewUserMessage(s.NextID(), originalThread, a1.ID, 3, message.TextUserBlock("follow up"))
	s.Append(u2)

	newID, newThreadID, ok := s.Edit(u2.ID, []message.UserBlock{message.TextUserBlock("edited follow up")}, 4)
	if !ok {
		t.Fatal("expected Edit to succeed for an existing message")
	}
	if newThreadID == originalThread {
		t.Fatal("expected Edit to allocate a new thread id")
	}
	if s.CurrentThreadID() != newThreadID {
		t.Fatal("expected Edit to switch the active thread")
	}

	active := s.ActiveThread()
	if len(active) != 3 {
		t.Fatalf("expected the new branch to have 3 messages (u1, a1, edited u2), got %d: %+v", len(active), active)
	}
	if active[0].ID != u1.ID || active[1].ID != a1.ID {
		t.Fatalf("expected the new branch to share u1/a1 as ancestors, got %+v", active)
	}
	if active[2].ID != newID || active[2].TextContent() != "edited follow up" {
		t.Fatalf("expected the branch tip to be the edited message, got %+v", active[2])
	}

	if _, ok := s.messages[u2.ID]; !ok {
		t.Fatal("expected the original edited-away message to still exist in the store")
	}
	if _, ok := s.messages[u1.ID]; !ok {
		t.Fatal("expected the shared ancestor to still exist")
	}
}

func TestEdit_UnknownMessageReturnsFalse(t *testing.T) {
	s := New()
	_, _, ok := s.Edit("missing", []message.UserBlock{message.TextUserBlock("x")}, 1)
	if ok {
		t.Fatal("expected Edit to fail for an unknown message id")
	}
}

func TestFindIncompleteToolCalls_DuplicateToolUseIDsTrackedAsMultiset(t *testing.T) {
	s := New()
	thread := s.CurrentThreadID()

	params := []byte(`{}`)
	a1 := message.NewAssistantMessage(s.NextID(), thread, "", 1,
		message.ToolCallBlock("dup", "bash", params))
	s.Append(a1)

	// First occurrence of "dup" gets a result, but a second Assistant
	// message later in the same thread reuses the same tool_use id.
	r1 := s.AddToolResult(message.SuccessResult("dup", "first output"), 2)

	a2 := message.NewAssistantMessage(s.NextID(), thread, r1.ID, 3,
		message.ToolCallBlock("dup", "bash", params))
	s.Append(a2)

	incomplete := s.FindIncompleteToolCalls()
	if len(incomplete) != 1 || incomplete[0] != "dup" {
		t.Fatalf("expected \"dup\" to still be incomplete after only one of two occurrences was resolved, got %+v", incomplete)
	}

	s.AddToolResult(message.SuccessResult("dup", "second output"), 4)
	if got := s.FindIncompleteToolCalls(); len(got) != 0 {
		t.Fatalf("expected no incomplete tool calls once both occurrences are resolved, got %+v", got)
	}
}

func TestFindIncompleteToolCalls_NoPendingCallsReturnsEmpty(t *testing.T) {
	s := New()
	thread := s.CurrentThreadID()
	s.Append(message.NewUserMessage(s.NextID(), thread, "", 1, message.TextUserBlock("hi")))

	if got := s.FindIncompleteToolCalls(); len(got) != 0 {
		t.Fatalf("expected no incomplete tool calls in a thread with no tool_use blocks, got %+v", got)
	}
}

func TestActiveThread_OmitsOtherThreads(t *testing.T) {
	s := New()
	original := s.CurrentThreadID()
	u1 := message.NewUserMessage(s.NextID(), original, "", 1, message.TextUserBlock("hi"))
	s.Append(u1)

	_, _, ok := s.Edit(u1.ID, []message.UserBlock{message.TextUserBlock("edited")}, 2)
	if !ok {
		t.Fatal("expected Edit to succeed")
	}

	active := s.ActiveThread()
	for _, m := range active {
		if m.ThreadID == original && m.ID == u1.ID {
			t.Fatalf("expected the original branched-away message to be excluded from the active thread, got %+v", active)
		}
	}
}
