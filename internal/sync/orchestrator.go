package sync

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/prbot/prbot/internal/decision"
	"github.com/prbot/prbot/internal/lock"
	"github.com/prbot/prbot/internal/model"
	"github.com/prbot/prbot/internal/platform"
	"github.com/prbot/prbot/internal/projector"
	"github.com/prbot/prbot/internal/store"
	"github.com/prbot/prbot/internal/syncstate"
	pkgerrors "github.com/prbot/prbot/pkg/errors"
	"github.com/prbot/prbot/pkg/logger"
)

// Outcome reports what a Process call did.
type Outcome struct {
	Skipped bool
	State   *syncstate.State
	Step    string
}

// Orchestrator runs a full sync pass for one pull request: load-or-create
// the local records, build the sync state, project it onto GitHub, and
// automerge if eligible.
type Orchestrator struct {
	store      store.Store
	platform   platform.Client
	lock       lock.Client
	commit     *projector.CommitStatusProjector
	step       *projector.StepLabelProjector
	summary    *projector.SummaryCommentProjector
}

// NewOrchestrator wires an Orchestrator from its collaborators.
func NewOrchestrator(st store.Store, plat platform.Client, lockClient lock.Client) *Orchestrator {
	return &Orchestrator{
		store:    st,
		platform: plat,
		lock:     lockClient,
		commit:   projector.NewCommitStatusProjector(plat),
		step:     projector.NewStepLabelProjector(plat),
		summary:  projector.NewSummaryCommentProjector(plat, st, lockClient),
	}
}

// Process synchronizes a single pull request end to end. forceCreation
// allows a local PullRequest row to be created for a repository whose
// ManualInteraction flag would otherwise skip unknown PR numbers; webhook
// dispatch sets it true only for the PR "opened" action.
func (o *Orchestrator) Process(ctx context.Context, owner, name string, number int, forceCreation bool) (Outcome, error) {
	if err := o.platform.EnsureInstallationAuth(ctx, owner, name); err != nil {
		return Outcome{}, err
	}

	repo, err := o.ensureRepository(ctx, owner, name)
	if err != nil {
		return Outcome{}, err
	}

	pr, skipped, err := o.ensurePullRequest(ctx, repo, number, forceCreation)
	if err != nil {
		return Outcome{}, err
	}
	if skipped {
		return Outcome{Skipped: true}, nil
	}

	state, err := BuildState(ctx, o.store, o.platform, owner, name, number)
	if err != nil {
		return Outcome{}, err
	}

	if err := o.commit.Project(ctx, state); err != nil {
		return Outcome{}, err
	}
	stepLabel, err := o.step.Project(ctx, state)
	if err != nil {
		return Outcome{}, err
	}
	if err := o.summary.Project(ctx, state); err != nil {
		return Outcome{}, err
	}

	o.maybeAutomerge(ctx, state, stepLabel, pr)

	return Outcome{State: state, Step: stepLabel}, nil
}

func (o *Orchestrator) ensureRepository(ctx context.Context, owner, name string) (*model.Repository, error) {
	repo, err := o.store.Repository().FindByPath(owner, name)
	if err == nil {
		return repo, nil
	}
	if !pkgerrors.IsAppError(err) {
		return nil, err
	}
	appErr, _ := pkgerrors.AsAppError(err)
	if appErr.Code != pkgerrors.ErrCodeUnknownRepository {
		return nil, err
	}

	upstream, err := o.platform.GetRepository(ctx, owner, name)
	if err != nil {
		return nil, err
	}
	repo = &model.Repository{
		Owner:               upstream.Owner,
		Name:                upstream.Name,
		DefaultStrategy:     model.MergeStrategyMerge,
		DefaultEnableQa:     true,
		DefaultEnableChecks: true,
	}
	if err := o.store.Repository().Create(repo); err != nil {
		return nil, err
	}
	return repo, nil
}

func (o *Orchestrator) ensurePullRequest(ctx context.Context, repo *model.Repository, number int, forceCreation bool) (*model.PullRequest, bool, error) {
	pr, err := o.store.PullRequest().FindByNumber(repo.ID, uint(number))
	if err == nil {
		return pr, false, nil
	}
	if !pkgerrors.IsAppError(err) {
		return nil, false, err
	}
	appErr, _ := pkgerrors.AsAppError(err)
	if appErr.Code != pkgerrors.ErrCodeUnknownPullRequest {
		return nil, false, err
	}

	if repo.ManualInteraction && !forceCreation {
		return nil, true, nil
	}

	qaStatus := model.QaStatusSkipped
	if repo.DefaultEnableQa {
		qaStatus = model.QaStatusWaiting
	}
	pr = &model.PullRequest{
		RepositoryID:  repo.ID,
		Number:        uint(number),
		QaStatus:      qaStatus,
		ChecksEnabled: repo.DefaultEnableChecks,
		Automerge:     repo.DefaultAutomerge,
	}
	if err := o.store.PullRequest().Create(pr); err != nil {
		return nil, false, err
	}
	return pr, false, nil
}

// maybeAutomerge merges the PR when automerge is enabled, the decision
// ladder says it is ready to merge, and it is not merged yet. Errors are
// logged rather than surfaced: a lock conflict just means another worker
// is already merging it, and any other failure disables automerge on the
// PR so the next sync pass does not spin retrying a merge that keeps
// failing (e.g. branch protection rejecting it).
func (o *Orchestrator) maybeAutomerge(ctx context.Context, state *syncstate.State, stepLabel string, pr *model.PullRequest) {
	if !state.Automerge || stepLabel != decision.StepAwaitingMerge || state.Merged {
		return
	}

	key := fmt.Sprintf("automerge.%s.%s.%d", state.Owner, state.Name, state.Number)
	err := o.lock.Lock(ctx, key, func() error {
		return o.platform.Merge(ctx, state.Owner, state.Name, state.Number,
			fmt.Sprintf("%s (#%d)", state.Title, state.Number), "", state.MergeStrategy)
	})
	if err == nil {
		return
	}

	var appErr *pkgerrors.AppError
	if errors.As(err, &appErr) && appErr.Code == pkgerrors.ErrCodeLockUnavailable {
		logger.Warn("automerge lock unavailable, skipping this pass",
			zap.String("pr", key))
		return
	}

	logger.Error("automerge failed, disabling automerge to stop retry spin",
		zap.String("pr", key), zap.Error(err))
	pr.Automerge = false
	if saveErr := o.store.PullRequest().Save(pr); saveErr != nil {
		logger.Error("failed to disable automerge after merge failure",
			zap.String("pr", key), zap.Error(saveErr))
	}
}
