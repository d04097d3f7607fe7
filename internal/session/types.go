// Package session implements the Session Actor from spec.md §4.7: the
// single-threaded run loop that owns the Conversation, Approval Queue,
// approved-tools/approved-bash-patterns sets, current OpContext, and
// cached system prompt, and multiplexes inbound Commands against agent
// events via a biased select.
package session

import (
	"github.com/BrendanGraham14/steer-sub006/internal/approval"
	"github.com/BrendanGraham14/steer-sub006/internal/message"
)

// AppCommandType enumerates the slash-command family from spec.md §6.
type AppCommandType int

const (
	AppCommandClear AppCommandType = iota
	AppCommandCompact
	AppCommandHelp
	AppCommandAuth
	AppCommandCancel
	AppCommandModel
)

// Command is the inbound message family from spec.md §6. Every concrete
// command type implements it as a marker.
type Command interface{ isCommand() }

type ProcessUserInput struct{ Text string }

type EditMessage struct {
	ID         message.ID
	NewContent []message.UserBlock
}

type HandleToolResponse struct {
	ID       string
	Approval approval.Resolution
}

type ExecuteAppCommand struct {
	Type   AppCommandType
	Target string // e.g. a model name for AppCommandModel
}

type ExecuteBashCommand struct{ Command string }

type RestoreConversation struct {
	Messages             []message.Message
	ApprovedTools        []string
	ApprovedBashPatterns []string
	ActiveMessageID      message.ID
}

type GetCurrentConversation struct{ Reply chan<- []message.Message }

type RequestWorkspaceFiles struct{ Reply chan<- []string }

type CancelProcessing struct{}

type Shutdown struct{}

func (ProcessUserInput) isCommand()       {}
func (EditMessage) isCommand()            {}
func (HandleToolResponse) isCommand()     {}
func (ExecuteAppCommand) isCommand()      {}
func (ExecuteBashCommand) isCommand()     {}
func (RestoreConversation) isCommand()    {}
func (GetCurrentConversation) isCommand() {}
func (RequestWorkspaceFiles) isCommand()  {}
func (CancelProcessing) isCommand()       {}
func (Shutdown) isCommand()               {}
