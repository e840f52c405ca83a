// Package command implements prbot's chat-style bot commands: PR comments
// of the form "<nickname> <verb> [args...]" are parsed into a tagged
// Command and executed against the platform and local store.
package command

import "github.com/prbot/prbot/internal/model"

// Command is a single parsed bot command. Each verb is its own type so the
// parser and executor both switch on concrete type rather than a string tag.
type Command interface {
	isCommand()
}

type SetQa struct{ Status model.QaStatus }

type SetChecksEnabled struct{ Enabled bool }

type SetAutomerge struct{ Automerge bool }

type SetLocked struct {
	Locked  bool
	Comment string // "" means no comment was given
}

type AssignReviewers struct{ Reviewers []string }

type UnassignReviewers struct{ Reviewers []string }

type SetStrategy struct{ Strategy *model.MergeStrategy } // nil clears the override

type Merge struct{ Strategy *model.MergeStrategy } // nil uses the resolved strategy

type AssignLabels struct{ Labels []string }

type UnassignLabels struct{ Labels []string }

type Ping struct{}

type Gif struct{ Query string }

type Sync struct{}

func (SetQa) isCommand()             {}
func (SetChecksEnabled) isCommand()  {}
func (SetAutomerge) isCommand()      {}
func (SetLocked) isCommand()         {}
func (AssignReviewers) isCommand()   {}
func (UnassignReviewers) isCommand() {}
func (SetStrategy) isCommand()       {}
func (Merge) isCommand()             {}
func (AssignLabels) isCommand()      {}
func (UnassignLabels) isCommand()    {}
func (Ping) isCommand()              {}
func (Gif) isCommand()               {}
func (Sync) isCommand()              {}
