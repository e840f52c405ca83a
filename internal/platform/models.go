package platform

import "time"

// Repository is the subset of a GitHub repository prbot cares about.
type Repository struct {
	ID       int64
	Owner    string
	Name     string
	FullName string
}

// Installation identifies the GitHub App installation covering a repository.
type Installation struct {
	ID int64
}

// PullRequest is the upstream snapshot of a pull request fetched from
// GitHub, as consumed by the sync-state builder.
type PullRequest struct {
	Number     int
	Title      string
	Body       string
	State      string
	Author     string
	BaseBranch string
	BaseSHA    string
	HeadBranch string
	HeadSHA    string
	Merged     bool
	Mergeable  *bool
	Draft      bool
}

// CheckRun is a single GitHub check run against a commit SHA.
type CheckRun struct {
	Name       string
	Status     string
	Conclusion string
	StartedAt  time.Time
}

// ReviewDecision mirrors GitHub's GraphQL reviewDecision values.
type ReviewDecision string

const (
	ReviewDecisionApproved        ReviewDecision = "APPROVED"
	ReviewDecisionChangesRequested ReviewDecision = "CHANGES_REQUESTED"
	ReviewDecisionReviewRequired  ReviewDecision = "REVIEW_REQUIRED"
	ReviewDecisionNone            ReviewDecision = ""
)

// CommitStatusState mirrors the values accepted by the GitHub commit status API.
type CommitStatusState string

const (
	CommitStatusPending CommitStatusState = "pending"
	CommitStatusSuccess CommitStatusState = "success"
	CommitStatusFailure CommitStatusState = "failure"
	CommitStatusError   CommitStatusState = "error"
)

// ReactionType mirrors the content values accepted by the GitHub reactions API.
type ReactionType string

const (
	ReactionThumbsUp   ReactionType = "+1"
	ReactionThumbsDown ReactionType = "-1"
	ReactionConfused   ReactionType = "confused"
	ReactionLaugh      ReactionType = "laugh"
	ReactionEyes       ReactionType = "eyes"
)
