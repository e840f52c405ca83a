// Package syncstate defines the immutable snapshot produced by the
// sync-state builder and consumed by the decision ladder, summary
// renderer, and projectors. It is a leaf package with no behavior beyond
// the derived booleans, kept free of dependencies on the packages that
// consume it to avoid import cycles.
package syncstate

import "github.com/prbot/prbot/internal/model"

// ReviewDecision mirrors the three possible upstream review outcomes, with
// the zero value meaning "no reviewers configured".
type ReviewDecision string

const (
	ReviewDecisionNone             ReviewDecision = ""
	ReviewDecisionApproved         ReviewDecision = "approved"
	ReviewDecisionChangesRequested ReviewDecision = "changes_requested"
	ReviewDecisionReviewRequired   ReviewDecision = "review_required"
)

// State is the immutable fact base the decision ladder, summary renderer,
// and projectors all read from. It is rebuilt fresh on every sync run.
type State struct {
	Owner  string
	Name   string
	Number int

	Title   string
	HeadSHA string

	CheckStatus    model.CheckStatus
	QaStatus       model.QaStatus
	ReviewDecision ReviewDecision
	MergeStrategy  model.MergeStrategy

	Locked        bool
	Wip           bool
	Automerge     bool
	Mergeable     bool
	Merged        bool
	ValidPRTitle  bool

	TitleRegex      string
	Rules           []model.RepositoryRule
	StatusCommentID int64
	CheckURL        string
}

// ChangesRequested reports whether review was explicitly rejected.
func (s *State) ChangesRequested() bool {
	return s.ReviewDecision == ReviewDecisionChangesRequested
}

// ReviewRequired reports whether review is outstanding.
func (s *State) ReviewRequired() bool {
	return s.ReviewDecision == ReviewDecisionReviewRequired
}

// ReviewSkipped reports whether no reviewers are configured at all.
func (s *State) ReviewSkipped() bool {
	return s.ReviewDecision == ReviewDecisionNone
}
