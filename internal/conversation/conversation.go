// Package conversation implements the branching message DAG described in
// spec.md §4.1: append-only storage, an active-thread view, edit-to-branch,
// incomplete tool-call detection, and model-driven compaction.
package conversation

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/BrendanGraham14/steer-sub006/internal/message"
	"github.com/BrendanGraham14/steer-sub006/internal/opctx"
	"github.com/BrendanGraham14/steer-sub006/internal/provider"
	"github.com/BrendanGraham14/steer-sub006/internal/system"
)

// Compaction tuning, grounded on the Rust App's conversation compaction
// (both the early src/app/conversation.rs and the later conductor-core
// version use a 10-message floor and keep a short verbatim tail).
const (
	CompactionMinMessages = 10
	CompactionTailSize    = 5
)

// Store holds the full message DAG and tracks which thread is active.
// Not safe for concurrent use; the Session Actor is its sole owner.
type Store struct {
	messages        map[message.ID]message.Message
	order           []message.ID // append order, for deterministic iteration
	currentThreadID string
	nextID          int
}

// New creates an empty Store with a fresh root thread id.
func New() *Store {
	return &Store{
		messages:        make(map[message.ID]message.Message),
		currentThreadID: uuid.NewString(),
	}
}

// Append pushes a message. It performs no ordering check and does not
// verify that ParentMessageID, if set, refers to a stored message.
func (s *Store) Append(m message.Message) {
	s.messages[m.ID] = m
	s.order = append(s.order, m.ID)
}

// NextID allocates a fresh, store-local message id.
func (s *Store) NextID() message.ID {
	s.nextID++
	return message.ID(fmt.Sprintf("m%d", s.nextID))
}

// CurrentThreadID returns the thread currently considered active.
func (s *Store) CurrentThreadID() string { return s.currentThreadID }

// ActiveThread walks from the most recent message on the current thread
// backward via ParentMessageID, then reverses. Ancestors reached through
// ParentMessageID are included whatever their thread; messages not on that
// chain (abandoned branches) are omitted even if chronologically interleaved.
func (s *Store) ActiveThread() []message.Message {
	var head *message.Message
	for i := len(s.order) - 1; i >= 0; i-- {
		m := s.messages[s.order[i]]
		if m.ThreadID == s.currentThreadID {
			head = &m
			break
		}
	}
	if head == nil {
		return nil
	}

	var thread []message.Message
	cur := *head
	for {
		thread = append(thread, cur)
		if cur.ParentMessageID == "" {
			break
		}
		parent, ok := s.messages[cur.ParentMessageID]
		if !ok {
			break
		}
		cur = parent
	}
	// reverse
	for i, j := 0, len(thread)-1; i < j; i, j = i+1, j-1 {
		thread[i], thread[j] = thread[j], thread[i]
	}
	return thread
}

// Edit allocates a new thread rooted at the edited message's parent, appends
// a new User message with newContent as that thread's tip, and switches the
// active thread to it. Returns ("", "", false) if targetID does not exist.
func (s *Store) Edit(targetID message.ID, newContent []message.UserBlock, tsMs int64) (message.ID, string, bool) {
	target, ok := s.messages[targetID]
	if !ok {
		return "", "", false
	}
	newThreadID := uuid.NewString()
	newID := s.NextID()
	m := message.NewUserMessage(newID, newThreadID, target.ParentMessageID, tsMs, newContent...)
	s.Append(m)
	s.currentThreadID = newThreadID
	return newID, newThreadID, true
}

// FindIncompleteToolCalls scans the active thread and collects every
// ToolCall id proposed by an Assistant message that lacks a matching Tool
// message. Duplicate tool_use ids across multiple Assistant messages are
// tracked as a multiset: an id is complete only once every occurrence has a
// matching result.
func (s *Store) FindIncompleteToolCalls() []string {
	pending := make(map[string]int)
	seen := make(map[string]bool)
	var order []string
	for _, m := range s.ActiveThread() {
		switch m.Role {
		case message.RoleAssistant:
			for _, id := range m.ToolCallIDs() {
				if !seen[id] {
					seen[id] = true
					order = append(order, id)
				}
				pending[id]++
			}
		case message.RoleTool:
			if m.ToolResult != nil {
				if pending[m.ToolResult.ToolUseID] > 0 {
					pending[m.ToolResult.ToolUseID]--
				}
			}
		}
	}
	var incomplete []string
	for _, id := range order {
		if pending[id] > 0 {
			incomplete = append(incomplete, id)
		}
	}
	return incomplete
}

// AddToolResult appends a Tool message carrying result, parented to the
// latest message in append order.
func (s *Store) AddToolResult(result message.ToolResult, tsMs int64) message.Message {
	var parent message.ID
	if len(s.order) > 0 {
		parent = s.order[len(s.order)-1]
	}
	id := s.NextID()
	m := message.NewToolMessage(id, s.currentThreadID, parent, tsMs, result)
	s.Append(m)
	return m
}

// CompactResult is the outcome of a Compact call.
type CompactResult struct {
	Kind    CompactResultKind
	Summary string
}

type CompactResultKind int

const (
	CompactSuccess CompactResultKind = iota
	CompactCancelled
	CompactInsufficientMessages
)

// CompletionClient is the minimal provider surface compaction needs.
type CompletionClient interface {
	Complete(ctx context.Context, opts provider.CompletionOptions) (*provider.CompletionResponse, error)
}

// Compact summarizes the active thread via the model and collapses history,
// per spec.md §4.1. If the active thread has fewer than CompactionMinMessages
// messages, returns InsufficientMessages without calling the model.
func (s *Store) Compact(ctx context.Context, client CompletionClient, model string, cancel *opctx.Context, nowMs int64) (CompactResult, error) {
	thread := s.ActiveThread()
	if len(thread) < CompactionMinMessages {
		return CompactResult{Kind: CompactInsufficientMessages}, nil
	}

	if cancel != nil && cancel.Cancelled() {
		return CompactResult{Kind: CompactCancelled}, nil
	}

	resp, err := client.Complete(ctx, provider.CompletionOptions{
		Model:        model,
		SystemPrompt: system.CompactPrompt(),
		Messages:     thread,
	})
	if err != nil {
		if ctx.Err() != nil {
			return CompactResult{Kind: CompactCancelled}, nil
		}
		return CompactResult{}, fmt.Errorf("compact: %w", err)
	}
	if cancel != nil && cancel.Cancelled() {
		return CompactResult{Kind: CompactCancelled}, nil
	}

	summary := resp.Text()

	tail := thread
	if len(tail) > CompactionTailSize {
		tail = tail[len(tail)-CompactionTailSize:]
	}

	// Rebuild the thread: synthetic system summary, then the verbatim tail,
	// reparented to keep the DAG consistent.
	summaryID := s.NextID()
	summaryMsg := message.NewSystemMessage(summaryID, s.currentThreadID, "", nowMs, summary)

	newMessages := map[message.ID]message.Message{summaryID: summaryMsg}
	newOrder := []message.ID{summaryID}

	parent := summaryID
	for _, m := range tail {
		m.ParentMessageID = parent
		newMessages[m.ID] = m
		newOrder = append(newOrder, m.ID)
		parent = m.ID
	}

	// Messages on other threads are preserved untouched; only the active
	// thread's backbone is rewritten.
	for id, m := range s.messages {
		if m.ThreadID != s.currentThreadID {
			newMessages[id] = m
		}
	}
	for _, id := range s.order {
		m := s.messages[id]
		if m.ThreadID != s.currentThreadID {
			if _, already := indexOf(newOrder, id); !already {
				newOrder = append(newOrder, id)
			}
		}
	}

	s.messages = newMessages
	s.order = newOrder

	return CompactResult{Kind: CompactSuccess, Summary: summary}, nil
}

func indexOf(ids []message.ID, target message.ID) (int, bool) {
	for i, id := range ids {
		if id == target {
			return i, true
		}
	}
	return -1, false
}
