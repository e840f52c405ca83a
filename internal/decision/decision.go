// Package decision implements the two pure projections of a sync state
// used to drive the GitHub commit status and the step/<label> issue label:
// the commit-status ladder and the step-label ladder. Both are evaluated
// top-down; the first matching condition wins.
package decision

import (
	"github.com/prbot/prbot/internal/model"
	"github.com/prbot/prbot/internal/syncstate"
)

// CommitStatus is the {state, title, message} triple posted to GitHub's
// commit status API.
type CommitStatus struct {
	State   string
	Title   string
	Message string
}

const validationContext = "Validation"

// Commit evaluates the commit-status ladder against s.
func Commit(s *syncstate.State) CommitStatus {
	title := validationContext

	switch {
	case s.Merged:
		return CommitStatus{State: "success", Title: title, Message: "PR merged"}
	case s.Wip:
		return CommitStatus{State: "pending", Title: title, Message: "PR is still in WIP"}
	case !s.ValidPRTitle:
		return CommitStatus{State: "failure", Title: title, Message: "PR title is not valid"}
	case s.CheckStatus == model.CheckStatusFail:
		return CommitStatus{State: "failure", Title: title, Message: "Checks failed"}
	case s.CheckStatus == model.CheckStatusWaiting:
		return CommitStatus{State: "pending", Title: title, Message: "Waiting for checks"}
	case s.ChangesRequested():
		return CommitStatus{State: "failure", Title: title, Message: "Changes required"}
	case !s.Mergeable && !s.Merged:
		return CommitStatus{State: "pending", Title: title, Message: "PR is not mergeable yet"}
	case s.ReviewRequired():
		return CommitStatus{State: "pending", Title: title, Message: "Waiting on reviews"}
	case s.QaStatus == model.QaStatusFail:
		return CommitStatus{State: "failure", Title: title, Message: "Did not pass QA"}
	case s.QaStatus == model.QaStatusWaiting:
		return CommitStatus{State: "pending", Title: title, Message: "Waiting for QA"}
	case s.Locked:
		return CommitStatus{State: "failure", Title: title, Message: "PR ready to merge, but is merge locked"}
	default:
		return CommitStatus{State: "success", Title: title, Message: "All good"}
	}
}

// StepLabel ladder values. "merged" is reserved for a future extension —
// no case below ever returns it, by design: see spec decision notes.
const (
	StepWip             = "wip"
	StepAwaitingChanges = "awaiting-changes"
	StepAwaitingChecks  = "awaiting-checks"
	StepAwaitingReview  = "awaiting-review"
	StepAwaitingQa      = "awaiting-qa"
	StepLocked          = "locked"
	StepAwaitingMerge   = "awaiting-merge"
)

// Step evaluates the step-label ladder against s.
func Step(s *syncstate.State) string {
	switch {
	case s.Wip:
		return StepWip
	case !s.ValidPRTitle:
		return StepAwaitingChanges
	case s.CheckStatus == model.CheckStatusFail:
		return StepAwaitingChanges
	case s.CheckStatus == model.CheckStatusWaiting:
		return StepAwaitingChecks
	case s.ChangesRequested() || (!s.Mergeable && !s.Merged):
		return StepAwaitingChanges
	case s.ReviewRequired():
		return StepAwaitingReview
	case s.QaStatus == model.QaStatusFail:
		return StepAwaitingChanges
	case s.QaStatus == model.QaStatusWaiting:
		return StepAwaitingQa
	case s.Locked:
		return StepLocked
	default:
		return StepAwaitingMerge
	}
}
