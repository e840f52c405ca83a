package command

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/prbot/prbot/internal/gif"
	"github.com/prbot/prbot/internal/lock"
	"github.com/prbot/prbot/internal/message"
	"github.com/prbot/prbot/internal/model"
	"github.com/prbot/prbot/internal/platform"
	"github.com/prbot/prbot/internal/store"
	"github.com/prbot/prbot/internal/sync"
	"github.com/prbot/prbot/pkg/errors"
	"github.com/prbot/prbot/pkg/logger"
)

// Context identifies where a command came from: the PR it targets, who
// issued it, and the comment to react to and quote in the reply. CommentID
// is 0 and RawLine is "" when the command was triggered without an
// originating comment (as the external set-qa-status endpoint does); no
// reaction is added and the reply carries no quoted line in that case.
type Context struct {
	Owner   string
	Name    string
	Number  int
	Author  string

	CommentID int64
	RawLine   string
}

// Executor runs a parsed Command against the platform and local store.
type Executor struct {
	platform platform.Client
	store    store.Store
	gif      gif.Client
	lock     lock.Client
}

// NewExecutor builds an Executor from its collaborators.
func NewExecutor(plat platform.Client, st store.Store, gifClient gif.Client, lockClient lock.Client) *Executor {
	return &Executor{platform: plat, store: st, gif: gifClient, lock: lockClient}
}

// Process parses line as a bot command and, if it is one, executes it.
// Parse and execution errors are reported back to the author as a comment
// reaction + reply rather than propagated, matching the original's
// top-level error handling; any other error (platform/store failures)
// propagates to the caller.
func (e *Executor) Process(ctx context.Context, cc Context, nickname string) (needsSync bool, err error) {
	cmd, parseErr := Parse(cc.RawLine, nickname)
	if parseErr != nil {
		e.reportError(ctx, cc, parseErr)
		return false, nil
	}
	if cmd == nil {
		return false, nil
	}

	logger.Info("command detected", zap.String("pr", fmt.Sprintf("%s/%s#%d", cc.Owner, cc.Name, cc.Number)))

	needsSync, execErr := e.Execute(ctx, cmd, cc)
	if execErr != nil {
		if appErr, ok := errors.AsAppError(execErr); ok && appErr.Code == errors.ErrCodeCommandExecution {
			e.reportError(ctx, cc, execErr)
			return false, nil
		}
		return false, execErr
	}
	return needsSync, nil
}

func (e *Executor) reportError(ctx context.Context, cc Context, err error) {
	e.addReaction(ctx, cc, platform.ReactionConfused)
	e.respond(ctx, cc, err.Error())
}

// Execute dispatches cmd to its handler.
func (e *Executor) Execute(ctx context.Context, cmd Command, cc Context) (bool, error) {
	switch c := cmd.(type) {
	case SetQa:
		return e.execSetQa(ctx, cc, c)
	case SetChecksEnabled:
		return e.execSetChecksEnabled(ctx, cc, c)
	case SetAutomerge:
		return e.execSetAutomerge(ctx, cc, c)
	case SetLocked:
		return e.execSetLocked(ctx, cc, c)
	case AssignReviewers:
		return e.execAssignReviewers(ctx, cc, c)
	case UnassignReviewers:
		return e.execUnassignReviewers(ctx, cc, c)
	case SetStrategy:
		return e.execSetStrategy(ctx, cc, c)
	case Merge:
		return e.execMerge(ctx, cc, c)
	case AssignLabels:
		return e.execAssignLabels(ctx, cc, c)
	case UnassignLabels:
		return e.execUnassignLabels(ctx, cc, c)
	case Ping:
		return e.execPing(ctx, cc)
	case Gif:
		return e.execGif(ctx, cc, c)
	case Sync:
		return e.execSync(ctx, cc)
	default:
		return false, errors.New(errors.ErrCodeCommandExecution, "unhandled command type")
	}
}

func (e *Executor) pullRequest(cc Context) (*model.Repository, *model.PullRequest, error) {
	repo, err := e.store.Repository().FindByPath(cc.Owner, cc.Name)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeCommandExecution, "unknown repository", err)
	}
	pr, err := e.store.PullRequest().FindByNumber(repo.ID, uint(cc.Number))
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeCommandExecution, "unknown pull request", err)
	}
	return repo, pr, nil
}

func (e *Executor) execSetQa(ctx context.Context, cc Context, c SetQa) (bool, error) {
	_, pr, err := e.pullRequest(cc)
	if err != nil {
		return false, err
	}
	pr.QaStatus = c.Status
	if err := e.store.PullRequest().Save(pr); err != nil {
		return false, err
	}
	e.addReaction(ctx, cc, platform.ReactionEyes)
	e.respond(ctx, cc, fmt.Sprintf("QA status is marked as **%s** by **%s**.", c.Status, cc.Author))
	return true, nil
}

func (e *Executor) execSetChecksEnabled(ctx context.Context, cc Context, c SetChecksEnabled) (bool, error) {
	_, pr, err := e.pullRequest(cc)
	if err != nil {
		return false, err
	}
	pr.ChecksEnabled = c.Enabled
	if err := e.store.PullRequest().Save(pr); err != nil {
		return false, err
	}
	e.addReaction(ctx, cc, platform.ReactionEyes)
	if c.Enabled {
		e.respond(ctx, cc, fmt.Sprintf("Checks were enabled by **%s**.", cc.Author))
	} else {
		e.respond(ctx, cc, fmt.Sprintf("Checks were disabled by **%s**.", cc.Author))
	}
	return true, nil
}

func (e *Executor) execSetAutomerge(ctx context.Context, cc Context, c SetAutomerge) (bool, error) {
	_, pr, err := e.pullRequest(cc)
	if err != nil {
		return false, err
	}
	pr.Automerge = c.Automerge
	if err := e.store.PullRequest().Save(pr); err != nil {
		return false, err
	}
	e.addReaction(ctx, cc, platform.ReactionEyes)
	if c.Automerge {
		e.respond(ctx, cc, "Pull request automerge is enabled.")
	} else {
		e.respond(ctx, cc, "Pull request automerge is disabled.")
	}
	return true, nil
}

func (e *Executor) execSetLocked(ctx context.Context, cc Context, c SetLocked) (bool, error) {
	_, pr, err := e.pullRequest(cc)
	if err != nil {
		return false, err
	}
	pr.Locked = c.Locked
	if err := e.store.PullRequest().Save(pr); err != nil {
		return false, err
	}
	e.addReaction(ctx, cc, platform.ReactionEyes)
	switch {
	case c.Locked && c.Comment != "":
		e.respond(ctx, cc, fmt.Sprintf("Pull request is now locked: %s.", c.Comment))
	case c.Locked:
		e.respond(ctx, cc, "Pull request is now locked.")
	default:
		e.respond(ctx, cc, "Pull request is now unlocked.")
	}
	return true, nil
}

func (e *Executor) execAssignReviewers(ctx context.Context, cc Context, c AssignReviewers) (bool, error) {
	e.addReaction(ctx, cc, platform.ReactionEyes)
	if err := e.platform.AddReviewers(ctx, cc.Owner, cc.Name, cc.Number, c.Reviewers); err != nil {
		return false, err
	}
	return true, nil
}

func (e *Executor) execUnassignReviewers(ctx context.Context, cc Context, c UnassignReviewers) (bool, error) {
	e.addReaction(ctx, cc, platform.ReactionEyes)
	if err := e.platform.RemoveReviewers(ctx, cc.Owner, cc.Name, cc.Number, c.Reviewers); err != nil {
		return false, err
	}
	return true, nil
}

func (e *Executor) execSetStrategy(ctx context.Context, cc Context, c SetStrategy) (bool, error) {
	_, pr, err := e.pullRequest(cc)
	if err != nil {
		return false, err
	}
	pr.StrategyOverride = c.Strategy
	if err := e.store.PullRequest().Save(pr); err != nil {
		return false, err
	}
	e.addReaction(ctx, cc, platform.ReactionEyes)
	return true, nil
}

func (e *Executor) execMerge(ctx context.Context, cc Context, c Merge) (bool, error) {
	state, err := sync.BuildState(ctx, e.store, e.platform, cc.Owner, cc.Name, cc.Number)
	if err != nil {
		return false, err
	}

	mergeStrategy := state.MergeStrategy
	if c.Strategy != nil {
		mergeStrategy = *c.Strategy
	}

	title := fmt.Sprintf("%s (#%d)", state.Title, state.Number)
	if err := e.platform.Merge(ctx, cc.Owner, cc.Name, cc.Number, title, "", mergeStrategy); err != nil {
		e.addReaction(ctx, cc, platform.ReactionConfused)
		e.respond(ctx, cc, fmt.Sprintf("Error: Could not merge pull request.\n\n%v", err))
		return true, nil
	}
	e.addReaction(ctx, cc, platform.ReactionThumbsUp)
	return true, nil
}

func (e *Executor) execAssignLabels(ctx context.Context, cc Context, c AssignLabels) (bool, error) {
	e.addReaction(ctx, cc, platform.ReactionEyes)
	if err := e.platform.AddLabels(ctx, cc.Owner, cc.Name, cc.Number, c.Labels); err != nil {
		return false, err
	}
	return false, nil
}

func (e *Executor) execUnassignLabels(ctx context.Context, cc Context, c UnassignLabels) (bool, error) {
	e.addReaction(ctx, cc, platform.ReactionEyes)

	existing, err := e.platform.ListLabels(ctx, cc.Owner, cc.Name, cc.Number)
	if err != nil {
		return false, err
	}
	remove := make(map[string]bool, len(c.Labels))
	for _, l := range c.Labels {
		remove[l] = true
	}
	kept := make([]string, 0, len(existing))
	for _, l := range existing {
		if !remove[l] {
			kept = append(kept, l)
		}
	}
	if err := e.platform.ReplaceLabels(ctx, cc.Owner, cc.Name, cc.Number, kept); err != nil {
		return false, err
	}
	return false, nil
}

func (e *Executor) execPing(ctx context.Context, cc Context) (bool, error) {
	e.addReaction(ctx, cc, platform.ReactionEyes)
	e.respond(ctx, cc, "Pong!")
	return false, nil
}

func (e *Executor) execGif(ctx context.Context, cc Context, c Gif) (bool, error) {
	url, err := e.gif.QueryFirstMatch(ctx, c.Query)
	if err != nil {
		return false, err
	}
	e.addReaction(ctx, cc, platform.ReactionEyes)
	if url == "" {
		e.respond(ctx, cc, "No GIF found for your query... :cry:")
	} else {
		e.respond(ctx, cc, fmt.Sprintf("![gif](%s)", url))
	}
	return false, nil
}

func (e *Executor) execSync(ctx context.Context, cc Context) (bool, error) {
	orchestrator := sync.NewOrchestrator(e.store, e.platform, e.lock)
	if _, err := orchestrator.Process(ctx, cc.Owner, cc.Name, cc.Number, true); err != nil {
		return false, err
	}
	e.addReaction(ctx, cc, platform.ReactionEyes)
	return false, nil
}

func (e *Executor) addReaction(ctx context.Context, cc Context, reaction platform.ReactionType) {
	if cc.CommentID == 0 {
		return
	}
	if err := e.platform.AddReaction(ctx, cc.Owner, cc.Name, cc.CommentID, reaction); err != nil {
		logger.Warn("failed to add reaction", zap.Error(err))
	}
}

func (e *Executor) respond(ctx context.Context, cc Context, body string) {
	final := body + "\n" + message.Footer()
	if cc.RawLine != "" {
		final = "> " + cc.RawLine + "\n\n" + final
	}
	if _, err := e.platform.CreateComment(ctx, cc.Owner, cc.Name, cc.Number, final); err != nil {
		logger.Warn("failed to post command reply", zap.Error(err))
	}
}
