package approval

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/BrendanGraham14/steer-sub006/internal/tool"
)

func bashCall(cmd string) tool.ToolCall {
	params, _ := json.Marshal(map[string]string{"command": cmd})
	return tool.ToolCall{ID: "t1", Name: "bash", Parameters: params}
}

func TestRequestApproval_ToolDoesNotRequireApproval(t *testing.T) {
	q := New(nil)
	d := q.RequestApproval(context.Background(), "r1", tool.ToolCall{Name: "read"}, false)
	if d != Approved {
		t.Fatalf("want Approved, got %v", d)
	}
}

func TestRequestApproval_AlreadyApprovedTool(t *testing.T) {
	q := New(nil)
	q.approvedTools["bash"] = true
	d := q.RequestApproval(context.Background(), "r1", bashCall("ls -la"), true)
	if d != Approved {
		t.Fatalf("want Approved, got %v", d)
	}
}

func TestRequestApproval_BashPatternMatch(t *testing.T) {
	q := New(nil)
	q.approvedBashPatterns = []string{"git *"}
	d := q.RequestApproval(context.Background(), "r1", bashCall("git status"), true)
	if d != Approved {
		t.Fatalf("want Approved, got %v", d)
	}
}

func TestRequestApproval_DestructiveCommandOverridesPattern(t *testing.T) {
	q := New(nil)
	q.approvedBashPatterns = []string{"*"} // loose glob that would otherwise match anything
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	d := q.RequestApproval(ctx, "r1", bashCall("rm -rf /"), true)
	if d != Denied {
		t.Fatalf("want Denied (ctx times out waiting on queue), got %v", d)
	}
}

func TestRequestApproval_InteractiveFlow(t *testing.T) {
	var notified Request
	q := New(func(req Request) { notified = req })

	done := make(chan Decision, 1)
	go func() {
		done <- q.RequestApproval(context.Background(), "r1", bashCall("rm file.txt"), true)
	}()

	deadline := time.After(time.Second)
	for {
		if _, ok := q.Current(); ok {
			break
		}
		select {
		case <-deadline:
			t.Fatal("request never became current")
		default:
		}
	}

	if notified.Call.Name != "bash" {
		t.Fatalf("expected notify callback to fire with bash call, got %+v", notified)
	}

	q.Resolve("r1", Resolution{Kind: Once})

	select {
	case d := <-done:
		if d != Approved {
			t.Fatalf("want Approved, got %v", d)
		}
	case <-time.After(time.Second):
		t.Fatal("RequestApproval never returned")
	}
}

func TestResolve_AlwaysToolRemembersTool(t *testing.T) {
	q := New(nil)
	go q.RequestApproval(context.Background(), "r1", bashCall("echo hi"), true)

	for {
		if _, ok := q.Current(); ok {
			break
		}
	}
	q.Resolve("r1", Resolution{Kind: AlwaysTool})

	if !q.approvedTools["bash"] {
		t.Fatal("expected bash to be remembered as always-approved")
	}
}

func TestResolve_AlwaysBashPatternRemembersPattern(t *testing.T) {
	q := New(nil)
	go q.RequestApproval(context.Background(), "r1", bashCall("npm install"), true)

	for {
		if _, ok := q.Current(); ok {
			break
		}
	}
	q.Resolve("r1", Resolution{Kind: AlwaysBashPattern, Pattern: "npm *"})

	patterns := q.ApprovedBashPatterns()
	if len(patterns) != 1 || patterns[0] != "npm *" {
		t.Fatalf("expected pattern to be remembered, got %v", patterns)
	}
}

func TestCancelAll_DeniesCurrentAndQueued(t *testing.T) {
	q := New(nil)

	r1 := make(chan Decision, 1)
	r2 := make(chan Decision, 1)
	go func() { r1 <- q.RequestApproval(context.Background(), "r1", bashCall("one"), true) }()

	for {
		if _, ok := q.Current(); ok {
			break
		}
	}
	go func() { r2 <- q.RequestApproval(context.Background(), "r2", bashCall("two"), true) }()
	time.Sleep(10 * time.Millisecond)

	q.CancelAll()

	if d := <-r1; d != Denied {
		t.Fatalf("want current request Denied, got %v", d)
	}
	if d := <-r2; d != Denied {
		t.Fatalf("want queued request Denied, got %v", d)
	}
}

func TestProcessNext_SerializesOneAtATime(t *testing.T) {
	q := New(nil)

	go q.RequestApproval(context.Background(), "r1", bashCall("first"), true)
	for {
		if cur, ok := q.Current(); ok && cur.ID == "r1" {
			break
		}
	}

	r2 := make(chan Decision, 1)
	go func() { r2 <- q.RequestApproval(context.Background(), "r2", bashCall("second"), true) }()
	time.Sleep(10 * time.Millisecond)

	if cur, ok := q.Current(); !ok || cur.ID != "r1" {
		t.Fatalf("expected r1 still current while r2 queued, got %+v ok=%v", cur, ok)
	}

	q.Resolve("r1", Resolution{Kind: Once})

	deadline := time.After(time.Second)
	for {
		if cur, ok := q.Current(); ok && cur.ID == "r2" {
			break
		}
		select {
		case <-deadline:
			t.Fatal("r2 never became current after r1 resolved")
		default:
		}
	}
	q.Resolve("r2", Resolution{Kind: Once})
	if d := <-r2; d != Approved {
		t.Fatalf("want Approved, got %v", d)
	}
}
