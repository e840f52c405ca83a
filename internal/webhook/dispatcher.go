// Package webhook verifies and routes incoming GitHub webhook deliveries
// to a sync pass and/or the command executor.
package webhook

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/prbot/prbot/internal/command"
	"github.com/prbot/prbot/internal/sync"
	"github.com/prbot/prbot/pkg/errors"
	"github.com/prbot/prbot/pkg/logger"
)

// Dispatcher routes a parsed webhook delivery to the sync orchestrator
// and/or the command executor, matching the per-event-type rules of
// spec.md §4.10.
type Dispatcher struct {
	orchestrator *sync.Orchestrator
	executor     *command.Executor
	nickname     string
}

// NewDispatcher builds a Dispatcher.
func NewDispatcher(orchestrator *sync.Orchestrator, executor *command.Executor, nickname string) *Dispatcher {
	return &Dispatcher{orchestrator: orchestrator, executor: executor, nickname: nickname}
}

// Dispatch routes a single webhook delivery by its GitHub event type.
func (d *Dispatcher) Dispatch(ctx context.Context, eventType string, body []byte) error {
	switch eventType {
	case EventPing:
		logger.Info("processing ping event")
		return nil
	case EventPullRequest:
		return d.dispatchPullRequest(ctx, body)
	case EventCheckSuite:
		return d.dispatchCheckSuite(ctx, body)
	case EventIssueComment:
		return d.dispatchIssueComment(ctx, body)
	case EventPullRequestReview:
		return d.dispatchPullRequestReview(ctx, body)
	default:
		logger.Warn("unhandled webhook event type", zap.String("event", eventType))
		return nil
	}
}

func (d *Dispatcher) dispatchPullRequest(ctx context.Context, body []byte) error {
	var event pullRequestEventPayload
	if err := json.Unmarshal(body, &event); err != nil {
		return errors.Wrap(errors.ErrCodeValidation, "failed to parse pull_request event", err)
	}

	switch event.Action {
	case actionAssigned, actionUnassigned, actionLabeled, actionUnlabeled:
		return nil
	}

	_, err := d.orchestrator.Process(ctx, event.Repository.Owner.Login, event.Repository.Name,
		event.PullRequest.Number, event.Action == actionOpened)
	return err
}

func (d *Dispatcher) dispatchCheckSuite(ctx context.Context, body []byte) error {
	var event checkSuiteEventPayload
	if err := json.Unmarshal(body, &event); err != nil {
		return errors.Wrap(errors.ErrCodeValidation, "failed to parse check_suite event", err)
	}

	for _, pr := range event.CheckSuite.PullRequests {
		if _, err := d.orchestrator.Process(ctx, event.Repository.Owner.Login, event.Repository.Name, pr.Number, false); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dispatcher) dispatchIssueComment(ctx context.Context, body []byte) error {
	var event issueCommentEventPayload
	if err := json.Unmarshal(body, &event); err != nil {
		return errors.Wrap(errors.ErrCodeValidation, "failed to parse issue_comment event", err)
	}

	needsSync := false
	for _, line := range strings.Split(event.Comment.Body, "\n") {
		cc := command.Context{
			Owner:     event.Repository.Owner.Login,
			Name:      event.Repository.Name,
			Number:    event.Issue.Number,
			Author:    event.Comment.User.Login,
			CommentID: event.Comment.ID,
			RawLine:   strings.TrimRight(line, "\r"),
		}
		commandNeedsSync, err := d.executor.Process(ctx, cc, d.nickname)
		if err != nil {
			return err
		}
		if commandNeedsSync {
			needsSync = true
		}
	}

	if !needsSync {
		return nil
	}
	_, err := d.orchestrator.Process(ctx, event.Repository.Owner.Login, event.Repository.Name, event.Issue.Number, false)
	return err
}

func (d *Dispatcher) dispatchPullRequestReview(ctx context.Context, body []byte) error {
	var event pullRequestReviewEventPayload
	if err := json.Unmarshal(body, &event); err != nil {
		return errors.Wrap(errors.ErrCodeValidation, "failed to parse pull_request_review event", err)
	}

	_, err := d.orchestrator.Process(ctx, event.Repository.Owner.Login, event.Repository.Name, event.PullRequest.Number, false)
	return err
}
