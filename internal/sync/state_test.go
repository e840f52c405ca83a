package sync

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prbot/prbot/internal/model"
	"github.com/prbot/prbot/internal/platform"
)

func TestBuildStateAssemblesFromUpstreamAndLocal(t *testing.T) {
	st := newTestSyncStore(t)
	repo, _ := seedRepoAndPR(t, st)
	plat := newMockPlatform()
	plat.reviewDecision = platform.ReviewDecisionApproved
	mergeable := true
	plat.pr.Mergeable = &mergeable

	state, err := BuildState(context.Background(), st, plat, "octocat", "hello-world", 1)
	require.NoError(t, err)

	assert.Equal(t, "octocat", state.Owner)
	assert.Equal(t, "hello-world", state.Name)
	assert.Equal(t, 1, state.Number)
	assert.Equal(t, "Add feature", state.Title)
	assert.Equal(t, "abc123", state.HeadSHA)
	assert.True(t, state.Mergeable)
	assert.True(t, state.ValidPRTitle)
	assert.Equal(t, model.MergeStrategyMerge, state.MergeStrategy)
	assert.NotEmpty(t, state.CheckURL)
	_ = repo
}

func TestBuildStateChecksSkippedWhenDisabled(t *testing.T) {
	st := newTestSyncStore(t)
	repo := &model.Repository{Owner: "octocat", Name: "hello-world", DefaultStrategy: model.MergeStrategyMerge}
	require.NoError(t, st.Repository().Create(repo))
	pr := &model.PullRequest{RepositoryID: repo.ID, Number: 1, ChecksEnabled: false}
	require.NoError(t, st.PullRequest().Create(pr))

	plat := newMockPlatform()
	state, err := BuildState(context.Background(), st, plat, "octocat", "hello-world", 1)
	require.NoError(t, err)
	assert.Equal(t, model.CheckStatusSkipped, state.CheckStatus)
}

func TestBuildStateAppliesInvalidTitleRegex(t *testing.T) {
	st := newTestSyncStore(t)
	repo := &model.Repository{
		Owner: "octocat", Name: "hello-world",
		DefaultStrategy: model.MergeStrategyMerge, PRTitleValidationRegex: "^JIRA-",
	}
	require.NoError(t, st.Repository().Create(repo))
	pr := &model.PullRequest{RepositoryID: repo.ID, Number: 1}
	require.NoError(t, st.PullRequest().Create(pr))

	plat := newMockPlatform()
	state, err := BuildState(context.Background(), st, plat, "octocat", "hello-world", 1)
	require.NoError(t, err)
	assert.False(t, state.ValidPRTitle)
}

func TestBuildStateNilMergeableDefaultsTrue(t *testing.T) {
	st := newTestSyncStore(t)
	seedRepoAndPR(t, st)
	plat := newMockPlatform()
	plat.pr.Mergeable = nil

	state, err := BuildState(context.Background(), st, plat, "octocat", "hello-world", 1)
	require.NoError(t, err)
	assert.True(t, state.Mergeable, "GitHub hasn't computed mergeability yet; that isn't the same as unmergeable")
}

func TestBuildStateTitleRegexRequiresMatchAtStart(t *testing.T) {
	st := newTestSyncStore(t)
	repo := &model.Repository{
		Owner: "octocat", Name: "hello-world",
		DefaultStrategy: model.MergeStrategyMerge, PRTitleValidationRegex: "JIRA-",
	}
	require.NoError(t, st.Repository().Create(repo))
	pr := &model.PullRequest{RepositoryID: repo.ID, Number: 1}
	require.NoError(t, st.PullRequest().Create(pr))

	plat := newMockPlatform()
	plat.pr.Title = "fix thing, see JIRA-123"

	state, err := BuildState(context.Background(), st, plat, "octocat", "hello-world", 1)
	require.NoError(t, err)
	assert.False(t, state.ValidPRTitle, "the pattern must match from the start of the title, not anywhere within it")
}

func TestBuildStateUnknownRepositoryErrors(t *testing.T) {
	st := newTestSyncStore(t)
	plat := newMockPlatform()
	_, err := BuildState(context.Background(), st, plat, "octocat", "missing", 1)
	assert.Error(t, err)
}
