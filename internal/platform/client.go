// Package platform is prbot's GitHub API client: a thin wrapper over
// go-github that the rest of the engine talks to instead of the SDK
// directly, so retry and authentication concerns live in one place.
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/go-github/v57/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/prbot/prbot/internal/auth"
	"github.com/prbot/prbot/internal/model"
	"github.com/prbot/prbot/pkg/errors"
	"github.com/prbot/prbot/pkg/logger"
)

const (
	maxRetryAttempts = 2
	retryBaseDelay   = 250 * time.Millisecond
	maxListPerPage   = 100
)

// Client is the GitHub surface the sync engine consumes. It mirrors only
// the endpoints prbot actually drives, not the full GitHub API.
type Client interface {
	EnsureInstallationAuth(ctx context.Context, owner, name string) error

	GetRepository(ctx context.Context, owner, name string) (*Repository, error)
	GetInstallation(ctx context.Context, owner, name string) (*Installation, error)
	GetPullRequest(ctx context.Context, owner, name string, number int) (*PullRequest, error)
	ReviewDecision(ctx context.Context, owner, name string, number int) (ReviewDecision, error)

	ListCheckRuns(ctx context.Context, owner, name, ref string) ([]CheckRun, error)
	SetCommitStatus(ctx context.Context, owner, name, ref string, state CommitStatusState, title, body string) error

	ListLabels(ctx context.Context, owner, name string, number int) ([]string, error)
	ReplaceLabels(ctx context.Context, owner, name string, number int, labels []string) error
	AddLabels(ctx context.Context, owner, name string, number int, labels []string) error

	CreateComment(ctx context.Context, owner, name string, number int, body string) (int64, error)
	UpdateComment(ctx context.Context, owner, name string, commentID int64, body string) error
	AddReaction(ctx context.Context, owner, name string, commentID int64, reaction ReactionType) error

	AddReviewers(ctx context.Context, owner, name string, number int, reviewers []string) error
	RemoveReviewers(ctx context.Context, owner, name string, number int, reviewers []string) error

	Merge(ctx context.Context, owner, name string, number int, title, message string, strategy model.MergeStrategy) error
}

type client struct {
	gh       *github.Client
	http     *http.Client
	upgrader *auth.Upgrader
}

// upgraderTokenSource adapts the Upgrader's mode-aware Token method to
// oauth2.TokenSource, so the same oauth2.Transport that wraps a plain
// personal access token elsewhere in the pack can also carry a GitHub App's
// self-refreshing installation token. Expiry is left zero: the Upgrader
// decides on every call whether its cached token is still fresh, so the
// transport must never cache one on its own behalf.
type upgraderTokenSource struct {
	ctx      context.Context
	upgrader *auth.Upgrader
}

func (s *upgraderTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.upgrader.Token(s.ctx)
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{AccessToken: token, TokenType: "Bearer"}, nil
}

// apiHeaderTransport stamps the REST API version and media type go-github
// expects onto every request; it runs underneath oauth2.Transport, which
// owns the Authorization header.
type apiHeaderTransport struct {
	base http.RoundTripper
}

func (t *apiHeaderTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	cloned := req.Clone(req.Context())
	cloned.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	cloned.Header.Set("Accept", "application/vnd.github+json")
	return t.base.RoundTrip(cloned)
}

// NewClient builds a platform Client authenticated via upgrader. Token
// delivery is handled by oauth2.Transport the same way the original's
// GitHub provider wires a static personal-access-token oauth2 client; here
// the token source additionally knows how to refresh a GitHub App
// installation token, so one transport covers anonymous, personal-token,
// App, and installation auth uniformly.
func NewClient(upgrader *auth.Upgrader) Client {
	ctx := context.Background()
	httpClient := oauth2.NewClient(ctx, &upgraderTokenSource{ctx: ctx, upgrader: upgrader})
	httpClient.Transport.(*oauth2.Transport).Base = &apiHeaderTransport{base: http.DefaultTransport}

	return &client{
		gh:       github.NewClient(httpClient),
		http:     httpClient,
		upgrader: upgrader,
	}
}

// withRetry runs fn up to maxRetryAttempts times with exponential backoff
// (retryBaseDelay, doubled after each failed attempt), retrying any error
// other than a *github.ErrorResponse. GitHub API errors (4xx/5xx surfaced by go-github as
// *github.ErrorResponse) are not retried since they represent a request
// the server has already rejected on its merits.
func withRetry(ctx context.Context, op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxRetryAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if _, ok := err.(*github.ErrorResponse); ok {
			break
		}
		if attempt < maxRetryAttempts {
			logger.Warn("retrying platform call", zap.String("op", op), zap.Int("attempt", attempt))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryBaseDelay << (attempt - 1)):
			}
		}
	}
	return errors.Wrap(errors.ErrCodePlatform, fmt.Sprintf("%s failed", op), lastErr)
}

func (c *client) EnsureInstallationAuth(ctx context.Context, owner, name string) error {
	if c.upgrader.Mode() != auth.ModeApp {
		return nil
	}
	installation, err := c.GetInstallation(ctx, owner, name)
	if err != nil {
		return err
	}
	return c.upgrader.UpgradeToInstallation(ctx, installation.ID)
}

func (c *client) GetRepository(ctx context.Context, owner, name string) (*Repository, error) {
	var repo *Repository
	err := withRetry(ctx, "get_repository", func() error {
		r, _, err := c.gh.Repositories.Get(ctx, owner, name)
		if err != nil {
			return err
		}
		repo = &Repository{ID: r.GetID(), Owner: owner, Name: name, FullName: r.GetFullName()}
		return nil
	})
	return repo, err
}

func (c *client) GetInstallation(ctx context.Context, owner, name string) (*Installation, error) {
	var installation *Installation
	err := withRetry(ctx, "get_installation", func() error {
		inst, _, err := c.gh.Apps.FindRepositoryInstallation(ctx, owner, name)
		if err != nil {
			return err
		}
		installation = &Installation{ID: inst.GetID()}
		return nil
	})
	return installation, err
}

func (c *client) GetPullRequest(ctx context.Context, owner, name string, number int) (*PullRequest, error) {
	var pr *PullRequest
	err := withRetry(ctx, "get_pull_request", func() error {
		p, _, err := c.gh.PullRequests.Get(ctx, owner, name, number)
		if err != nil {
			return err
		}
		pr = &PullRequest{
			Number:     p.GetNumber(),
			Title:      p.GetTitle(),
			Body:       p.GetBody(),
			State:      p.GetState(),
			Author:     p.GetUser().GetLogin(),
			BaseBranch: p.GetBase().GetRef(),
			BaseSHA:    p.GetBase().GetSHA(),
			HeadBranch: p.GetHead().GetRef(),
			HeadSHA:    p.GetHead().GetSHA(),
			Merged:     p.GetMerged(),
			Mergeable:  p.Mergeable,
			Draft:      p.GetDraft(),
		}
		return nil
	})
	return pr, err
}

type graphQLReviewDecisionResponse struct {
	Data struct {
		Repository struct {
			PullRequest struct {
				ReviewDecision string `json:"reviewDecision"`
			} `json:"pullRequest"`
		} `json:"repository"`
	} `json:"data"`
}

// ReviewDecision queries GitHub's GraphQL API directly: a single fixed
// query does not warrant pulling in a full GraphQL client.
func (c *client) ReviewDecision(ctx context.Context, owner, name string, number int) (ReviewDecision, error) {
	query := fmt.Sprintf(`query {
		repository(owner: %q, name: %q) {
			pullRequest(number: %d) {
				reviewDecision
			}
		}
	}`, owner, name, number)

	body, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		return ReviewDecisionNone, errors.Wrap(errors.ErrCodePlatform, "failed to build review decision query", err)
	}

	var decision ReviewDecision
	err = withRetry(ctx, "review_decision", func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://api.github.com/graphql", bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		var parsed graphQLReviewDecisionResponse
		if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
			return err
		}
		decision = ReviewDecision(parsed.Data.Repository.PullRequest.ReviewDecision)
		return nil
	})
	return decision, err
}

func (c *client) ListCheckRuns(ctx context.Context, owner, name, ref string) ([]CheckRun, error) {
	var runs []CheckRun
	opts := &github.ListCheckRunsOptions{ListOptions: github.ListOptions{PerPage: maxListPerPage}}
	err := withRetry(ctx, "list_check_runs", func() error {
		runs = nil
		for {
			result, resp, err := c.gh.Checks.ListCheckRunsForRef(ctx, owner, name, ref, opts)
			if err != nil {
				return err
			}
			for _, r := range result.CheckRuns {
				runs = append(runs, CheckRun{
					Name:       r.GetName(),
					Status:     r.GetStatus(),
					Conclusion: r.GetConclusion(),
					StartedAt:  r.GetStartedAt().Time,
				})
			}
			if resp.NextPage == 0 {
				break
			}
			opts.Page = resp.NextPage
		}
		return nil
	})
	return runs, err
}

func (c *client) SetCommitStatus(ctx context.Context, owner, name, ref string, state CommitStatusState, title, body string) error {
	const maxDescriptionLen = 139
	if len(body) > maxDescriptionLen {
		body = body[:maxDescriptionLen]
	}
	status := &github.RepoStatus{
		State:       github.String(string(state)),
		Description: github.String(body),
		Context:     github.String(title),
	}
	return withRetry(ctx, "set_commit_status", func() error {
		_, _, err := c.gh.Repositories.CreateStatus(ctx, owner, name, ref, status)
		return err
	})
}

func (c *client) ListLabels(ctx context.Context, owner, name string, number int) ([]string, error) {
	var names []string
	err := withRetry(ctx, "list_labels", func() error {
		names = nil
		opts := &github.ListOptions{PerPage: maxListPerPage}
		for {
			labels, resp, err := c.gh.Issues.ListLabelsByIssue(ctx, owner, name, number, opts)
			if err != nil {
				return err
			}
			for _, l := range labels {
				names = append(names, l.GetName())
			}
			if resp.NextPage == 0 {
				break
			}
			opts.Page = resp.NextPage
		}
		return nil
	})
	return names, err
}

func (c *client) ReplaceLabels(ctx context.Context, owner, name string, number int, labels []string) error {
	return withRetry(ctx, "replace_labels", func() error {
		_, _, err := c.gh.Issues.ReplaceLabelsForIssue(ctx, owner, name, number, labels)
		return err
	})
}

func (c *client) AddLabels(ctx context.Context, owner, name string, number int, labels []string) error {
	return withRetry(ctx, "add_labels", func() error {
		_, _, err := c.gh.Issues.AddLabelsToIssue(ctx, owner, name, number, labels)
		return err
	})
}

func (c *client) CreateComment(ctx context.Context, owner, name string, number int, body string) (int64, error) {
	var id int64
	err := withRetry(ctx, "create_comment", func() error {
		comment, _, err := c.gh.Issues.CreateComment(ctx, owner, name, number, &github.IssueComment{Body: &body})
		if err != nil {
			return err
		}
		id = comment.GetID()
		return nil
	})
	return id, err
}

func (c *client) UpdateComment(ctx context.Context, owner, name string, commentID int64, body string) error {
	return withRetry(ctx, "update_comment", func() error {
		_, _, err := c.gh.Issues.EditComment(ctx, owner, name, commentID, &github.IssueComment{Body: &body})
		return err
	})
}

func (c *client) AddReaction(ctx context.Context, owner, name string, commentID int64, reaction ReactionType) error {
	return withRetry(ctx, "add_reaction", func() error {
		_, _, err := c.gh.Reactions.CreateIssueCommentReaction(ctx, owner, name, commentID, string(reaction))
		return err
	})
}

func (c *client) AddReviewers(ctx context.Context, owner, name string, number int, reviewers []string) error {
	return withRetry(ctx, "add_reviewers", func() error {
		_, _, err := c.gh.PullRequests.RequestReviewers(ctx, owner, name, number, github.ReviewersRequest{Reviewers: reviewers})
		return err
	})
}

func (c *client) RemoveReviewers(ctx context.Context, owner, name string, number int, reviewers []string) error {
	return withRetry(ctx, "remove_reviewers", func() error {
		_, err := c.gh.PullRequests.RemoveReviewers(ctx, owner, name, number, github.ReviewersRequest{Reviewers: reviewers})
		return err
	})
}

func (c *client) Merge(ctx context.Context, owner, name string, number int, title, message string, strategy model.MergeStrategy) error {
	return withRetry(ctx, "merge", func() error {
		_, _, err := c.gh.PullRequests.Merge(ctx, owner, name, number, message, &github.PullRequestOptions{
			CommitTitle: title,
			MergeMethod: string(strategy),
		})
		return err
	})
}
