package sync

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prbot/prbot/internal/model"
)

func TestResyncAllProcessesEveryTrackedPullRequest(t *testing.T) {
	st := newTestSyncStore(t)
	repo := &model.Repository{Owner: "octocat", Name: "hello-world", DefaultStrategy: model.MergeStrategyMerge}
	require.NoError(t, st.Repository().Create(repo))
	require.NoError(t, st.PullRequest().Create(&model.PullRequest{RepositoryID: repo.ID, Number: 1, QaStatus: model.QaStatusPass, ChecksEnabled: true}))
	require.NoError(t, st.PullRequest().Create(&model.PullRequest{RepositoryID: repo.ID, Number: 2, QaStatus: model.QaStatusPass, ChecksEnabled: true}))

	plat := newMockPlatform()
	o := NewOrchestrator(st, plat, &mockLock{})
	scheduler := NewResyncScheduler(o, st)

	scheduler.ResyncAll(context.Background())

	assert.ElementsMatch(t, []int{1, 2}, plat.getPullReqCalls)
}

func TestResyncAllContinuesPastIndividualFailures(t *testing.T) {
	st := newTestSyncStore(t)
	repo := &model.Repository{Owner: "octocat", Name: "hello-world", DefaultStrategy: model.MergeStrategyMerge}
	require.NoError(t, st.Repository().Create(repo))
	require.NoError(t, st.PullRequest().Create(&model.PullRequest{RepositoryID: repo.ID, Number: 1, QaStatus: model.QaStatusPass, ChecksEnabled: true}))

	plat := newMockPlatform()
	plat.getPullReqErr = assert.AnError
	o := NewOrchestrator(st, plat, &mockLock{})
	scheduler := NewResyncScheduler(o, st)

	assert.NotPanics(t, func() { scheduler.ResyncAll(context.Background()) })
}
