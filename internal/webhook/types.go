package webhook

// Event type names as sent in GitHub's X-GitHub-Event header.
const (
	EventPing               = "ping"
	EventPullRequest        = "pull_request"
	EventCheckSuite         = "check_suite"
	EventIssueComment       = "issue_comment"
	EventPullRequestReview  = "pull_request_review"
)

// Pull request actions the dispatcher treats specially: assigned,
// unassigned, labeled and unlabeled never trigger a sync pass, since they do
// not change anything the decision ladder reads; opened triggers one with
// forced creation of the local pull request record.
const (
	actionAssigned   = "assigned"
	actionUnassigned = "unassigned"
	actionLabeled    = "labeled"
	actionUnlabeled  = "unlabeled"
	actionOpened     = "opened"
)

type repositoryPayload struct {
	Owner struct {
		Login string `json:"login"`
	} `json:"owner"`
	Name string `json:"name"`
}

type pullRequestRefPayload struct {
	Number int `json:"number"`
}

type pullRequestEventPayload struct {
	Action      string                 `json:"action"`
	Repository  repositoryPayload      `json:"repository"`
	PullRequest pullRequestRefPayload  `json:"pull_request"`
}

type checkSuiteEventPayload struct {
	Repository repositoryPayload `json:"repository"`
	CheckSuite struct {
		PullRequests []pullRequestRefPayload `json:"pull_requests"`
	} `json:"check_suite"`
}

type issueCommentEventPayload struct {
	Repository repositoryPayload `json:"repository"`
	Issue      struct {
		Number int `json:"number"`
	} `json:"issue"`
	Comment struct {
		ID   int64  `json:"id"`
		Body string `json:"body"`
		User struct {
			Login string `json:"login"`
		} `json:"user"`
	} `json:"comment"`
}

type pullRequestReviewEventPayload struct {
	Repository  repositoryPayload     `json:"repository"`
	PullRequest pullRequestRefPayload  `json:"pull_request"`
}
