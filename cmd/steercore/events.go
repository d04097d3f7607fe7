package main

import (
	"fmt"
	"strings"

	"github.com/BrendanGraham14/steer-sub006/internal/approval"
	"github.com/BrendanGraham14/steer-sub006/internal/session"
)

// dispatch is the terminal driver loop: every stdin line either answers
// a pending tool-approval prompt or, when no approval is pending,
// becomes a ProcessUserInput command. Session events are printed as they
// arrive, interleaved with prompting for approval.
func dispatch(sess *session.Session, lines <-chan string) {
	var pending *session.Event

	for {
		select {
		case line, ok := <-lines:
			if !ok {
				return
			}
			if line == "" {
				continue
			}
			if pending != nil {
				sess.Send(session.HandleToolResponse{ID: pending.ToolCallID, Approval: parseApprovalAnswer(line)})
				pending = nil
				continue
			}
			sess.Send(session.ProcessUserInput{Text: line})

		case ev, ok := <-sess.Events():
			if !ok {
				return
			}
			printEvent(ev)
			if ev.Kind == session.EventRequestToolApproval {
				pe := ev
				pending = &pe
				promptApproval(ev)
			}
		}
	}
}

// parseApprovalAnswer maps a terminal answer to an approval.Resolution.
// "y"/"yes" approves once; "always" remembers the tool; anything else
// denies. The headless driver offers no answer that remembers a bash
// pattern.
func parseApprovalAnswer(line string) approval.Resolution {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return approval.Resolution{Kind: approval.Once}
	case "always":
		return approval.Resolution{Kind: approval.AlwaysTool}
	default:
		return approval.Resolution{Kind: approval.DeniedKind}
	}
}

func promptApproval(ev session.Event) {
	fmt.Printf("approve tool %q? [y/N/always] ", ev.ToolName)
}

func printEvent(ev session.Event) {
	switch ev.Kind {
	case session.EventMessageAdded:
		if ev.Message != nil {
			fmt.Printf("[%s] %s\n", ev.Message.Role, ev.Message.TextContent())
		}
	case session.EventToolCallStarted:
		fmt.Printf("-> running %s\n", ev.ToolName)
	case session.EventToolCallCompleted:
		fmt.Printf("<- %s done\n", ev.ToolName)
	case session.EventToolCallFailed:
		fmt.Printf("<- %s failed: %v\n", ev.ToolName, ev.Err)
	case session.EventThinkingStarted:
		fmt.Println("...")
	case session.EventOperationCancelled:
		fmt.Println("cancelled")
	case session.EventModelChanged:
		fmt.Printf("model switched to %s\n", ev.Model)
	case session.EventCommandResponse:
		fmt.Println(ev.CommandResponse)
	case session.EventError:
		fmt.Printf("error: %s\n", ev.ErrorMessage)
	}
}
