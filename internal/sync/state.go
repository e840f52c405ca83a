// Package sync builds the immutable SyncState snapshot for a pull request
// and orchestrates a full sync pass: state construction, projection onto
// GitHub (commit status, step label, summary comment), and automerge.
package sync

import (
	"context"
	"regexp"
	"strconv"

	"github.com/prbot/prbot/internal/check"
	"github.com/prbot/prbot/internal/model"
	"github.com/prbot/prbot/internal/platform"
	"github.com/prbot/prbot/internal/rule"
	"github.com/prbot/prbot/internal/store"
	"github.com/prbot/prbot/internal/strategy"
	"github.com/prbot/prbot/internal/syncstate"
	"github.com/prbot/prbot/pkg/errors"
)

// BuildState assembles the fact base a sync pass decides and projects
// from: it loads the local Repository and PullRequest records, fetches the
// live upstream PR and its checks/review decision, resolves and applies
// any matching repository rules, and resolves the merge strategy.
//
// Applying rules can mutate pr (automerge/qa_status/checks_enabled), so the
// PullRequest is re-read from the store after Apply before the returned
// state is built, matching the original's re-fetch-after-mutation behavior.
func BuildState(ctx context.Context, st store.Store, plat platform.Client, owner, name string, number int) (*syncstate.State, error) {
	repo, err := st.Repository().FindByPath(owner, name)
	if err != nil {
		return nil, err
	}

	pr, err := st.PullRequest().FindByNumber(repo.ID, uint(number))
	if err != nil {
		return nil, err
	}

	upstream, err := plat.GetPullRequest(ctx, owner, name, number)
	if err != nil {
		return nil, err
	}

	repoRules, err := st.RepositoryRule().ListByRepository(repo.ID)
	if err != nil {
		return nil, err
	}

	matched := rule.Resolve(repoRules, upstream)
	changed, err := rule.Apply(st.PullRequest(), pr, matched)
	if err != nil {
		return nil, err
	}
	if changed {
		pr, err = st.PullRequest().FindByNumber(repo.ID, uint(number))
		if err != nil {
			return nil, err
		}
	}

	checkStatus := model.CheckStatusSkipped
	if pr.ChecksEnabled {
		runs, err := plat.ListCheckRuns(ctx, owner, name, upstream.HeadSHA)
		if err != nil {
			return nil, err
		}
		checkStatus = check.Aggregate(runs)
	}

	mergeRules, err := st.MergeRule().ListByRepository(repo.ID)
	if err != nil {
		return nil, err
	}
	mergeStrategy := strategy.Resolve(pr.StrategyOverride, upstream.BaseBranch, upstream.HeadBranch, mergeRules, repo)

	reviewDecision, err := reviewDecisionFor(ctx, plat, owner, name, number)
	if err != nil {
		return nil, err
	}

	validTitle := true
	if repo.PRTitleValidationRegex != "" {
		re, err := regexp.Compile(repo.PRTitleValidationRegex)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeValidation, "invalid pr title validation regex", err)
		}
		// Anchored at the start, matching Python's re.match semantics
		// rather than re.search: a match anywhere in the title is not
		// enough, it must begin at position 0.
		loc := re.FindStringIndex(upstream.Title)
		validTitle = loc != nil && loc[0] == 0
	}

	// GitHub hasn't always computed mergeability yet (e.g. immediately
	// after a push); treat that as mergeable rather than blocking the PR
	// on a transient nil.
	mergeable := upstream.Mergeable == nil || *upstream.Mergeable

	return &syncstate.State{
		Owner:  owner,
		Name:   name,
		Number: number,

		Title:   upstream.Title,
		HeadSHA: upstream.HeadSHA,

		CheckStatus:    checkStatus,
		QaStatus:       pr.QaStatus,
		ReviewDecision: reviewDecision,
		MergeStrategy:  mergeStrategy,

		Locked:       pr.Locked,
		Wip:          upstream.Draft,
		Automerge:    pr.Automerge,
		Mergeable:    mergeable,
		Merged:       upstream.Merged,
		ValidPRTitle: validTitle,

		TitleRegex:      repo.PRTitleValidationRegex,
		Rules:           matched,
		StatusCommentID: pr.StatusCommentID,
		CheckURL:        checkURL(owner, name, number),
	}, nil
}

func reviewDecisionFor(ctx context.Context, plat platform.Client, owner, name string, number int) (syncstate.ReviewDecision, error) {
	decision, err := plat.ReviewDecision(ctx, owner, name, number)
	if err != nil {
		return syncstate.ReviewDecisionNone, err
	}
	switch decision {
	case platform.ReviewDecisionApproved:
		return syncstate.ReviewDecisionApproved, nil
	case platform.ReviewDecisionChangesRequested:
		return syncstate.ReviewDecisionChangesRequested, nil
	case platform.ReviewDecisionReviewRequired:
		return syncstate.ReviewDecisionReviewRequired, nil
	default:
		return syncstate.ReviewDecisionNone, nil
	}
}

func checkURL(owner, name string, number int) string {
	return "https://github.com/" + owner + "/" + name + "/pull/" + strconv.Itoa(number) + "/checks"
}
