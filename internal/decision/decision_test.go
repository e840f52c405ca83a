package decision

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/prbot/prbot/internal/model"
	"github.com/prbot/prbot/internal/syncstate"
)

func baseState() *syncstate.State {
	return &syncstate.State{
		ValidPRTitle: true,
		CheckStatus:  model.CheckStatusPass,
		QaStatus:     model.QaStatusPass,
		Mergeable:    true,
	}
}

func TestCommitAllGoodIsSuccess(t *testing.T) {
	status := Commit(baseState())
	assert.Equal(t, "success", status.State)
	assert.Equal(t, "All good", status.Message)
}

func TestCommitMergedWinsOverEverything(t *testing.T) {
	s := baseState()
	s.Merged = true
	s.Wip = true
	status := Commit(s)
	assert.Equal(t, "success", status.State)
	assert.Equal(t, "PR merged", status.Message)
}

func TestCommitWipIsPending(t *testing.T) {
	s := baseState()
	s.Wip = true
	status := Commit(s)
	assert.Equal(t, "pending", status.State)
	assert.Equal(t, "PR is still in WIP", status.Message)
}

func TestCommitInvalidTitleIsFailure(t *testing.T) {
	s := baseState()
	s.ValidPRTitle = false
	status := Commit(s)
	assert.Equal(t, "failure", status.State)
	assert.Equal(t, "PR title is not valid", status.Message)
}

func TestCommitChecksFailedIsFailure(t *testing.T) {
	s := baseState()
	s.CheckStatus = model.CheckStatusFail
	status := Commit(s)
	assert.Equal(t, "failure", status.State)
}

func TestCommitLockedIsFailureWhenOtherwiseReady(t *testing.T) {
	s := baseState()
	s.Locked = true
	status := Commit(s)
	assert.Equal(t, "failure", status.State)
	assert.Equal(t, "PR ready to merge, but is merge locked", status.Message)
}

func TestStepWipWins(t *testing.T) {
	s := baseState()
	s.Wip = true
	assert.Equal(t, StepWip, Step(s))
}

func TestStepAwaitingMergeWhenAllGood(t *testing.T) {
	assert.Equal(t, StepAwaitingMerge, Step(baseState()))
}

func TestStepAwaitingReviewWhenReviewRequired(t *testing.T) {
	s := baseState()
	s.ReviewDecision = syncstate.ReviewDecisionReviewRequired
	assert.Equal(t, StepAwaitingReview, Step(s))
}

func TestStepAwaitingChangesWhenChangesRequested(t *testing.T) {
	s := baseState()
	s.ReviewDecision = syncstate.ReviewDecisionChangesRequested
	assert.Equal(t, StepAwaitingChanges, Step(s))
}

func TestStepAwaitingChecksWhenWaiting(t *testing.T) {
	s := baseState()
	s.CheckStatus = model.CheckStatusWaiting
	assert.Equal(t, StepAwaitingChecks, Step(s))
}

func TestStepLockedWhenOtherwiseReady(t *testing.T) {
	s := baseState()
	s.Locked = true
	assert.Equal(t, StepLocked, Step(s))
}
