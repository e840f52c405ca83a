package sync

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/prbot/prbot/internal/model"
	"github.com/prbot/prbot/internal/platform"
	"github.com/prbot/prbot/internal/store"
	pkgerrors "github.com/prbot/prbot/pkg/errors"
)

// mockPlatform is a minimal mock of platform.Client for testing.
type mockPlatform struct {
	repo *platform.Repository
	pr   *platform.PullRequest
	runs []platform.CheckRun

	reviewDecision platform.ReviewDecision
	labels         map[int][]string

	mergeCalls     int
	ensureAuthErr  error
	getPullReqErr  error
	getPullReqCalls []int
}

func newMockPlatform() *mockPlatform {
	mergeable := true
	return &mockPlatform{
		pr:     &platform.PullRequest{Number: 1, Title: "Add feature", BaseBranch: "main", HeadBranch: "feature", HeadSHA: "abc123", Mergeable: &mergeable},
		runs:   []platform.CheckRun{{Name: "build", Status: "completed", Conclusion: "success"}},
		labels: make(map[int][]string),
	}
}

func (m *mockPlatform) EnsureInstallationAuth(ctx context.Context, owner, name string) error {
	return m.ensureAuthErr
}
func (m *mockPlatform) GetRepository(ctx context.Context, owner, name string) (*platform.Repository, error) {
	if m.repo != nil {
		return m.repo, nil
	}
	return &platform.Repository{Owner: owner, Name: name, FullName: owner + "/" + name}, nil
}
func (m *mockPlatform) GetInstallation(ctx context.Context, owner, name string) (*platform.Installation, error) {
	return &platform.Installation{ID: 1}, nil
}
func (m *mockPlatform) GetPullRequest(ctx context.Context, owner, name string, number int) (*platform.PullRequest, error) {
	m.getPullReqCalls = append(m.getPullReqCalls, number)
	if m.getPullReqErr != nil {
		return nil, m.getPullReqErr
	}
	return m.pr, nil
}
func (m *mockPlatform) ReviewDecision(ctx context.Context, owner, name string, number int) (platform.ReviewDecision, error) {
	return m.reviewDecision, nil
}
func (m *mockPlatform) ListCheckRuns(ctx context.Context, owner, name, ref string) ([]platform.CheckRun, error) {
	return m.runs, nil
}
func (m *mockPlatform) SetCommitStatus(ctx context.Context, owner, name, ref string, state platform.CommitStatusState, title, body string) error {
	return nil
}
func (m *mockPlatform) ListLabels(ctx context.Context, owner, name string, number int) ([]string, error) {
	return m.labels[number], nil
}
func (m *mockPlatform) ReplaceLabels(ctx context.Context, owner, name string, number int, labels []string) error {
	m.labels[number] = labels
	return nil
}
func (m *mockPlatform) AddLabels(ctx context.Context, owner, name string, number int, labels []string) error {
	m.labels[number] = append(m.labels[number], labels...)
	return nil
}
func (m *mockPlatform) CreateComment(ctx context.Context, owner, name string, number int, body string) (int64, error) {
	return 55, nil
}
func (m *mockPlatform) UpdateComment(ctx context.Context, owner, name string, commentID int64, body string) error {
	return nil
}
func (m *mockPlatform) AddReaction(ctx context.Context, owner, name string, commentID int64, reaction platform.ReactionType) error {
	return nil
}
func (m *mockPlatform) AddReviewers(ctx context.Context, owner, name string, number int, reviewers []string) error {
	return nil
}
func (m *mockPlatform) RemoveReviewers(ctx context.Context, owner, name string, number int, reviewers []string) error {
	return nil
}
func (m *mockPlatform) Merge(ctx context.Context, owner, name string, number int, title, message string, strategy model.MergeStrategy) error {
	m.mergeCalls++
	return nil
}

var _ platform.Client = (*mockPlatform)(nil)

// mockLock runs fn immediately, optionally reporting it as unavailable.
type mockLock struct {
	unavailable bool
}

func (m *mockLock) Lock(ctx context.Context, key string, fn func() error) error {
	if m.unavailable {
		return pkgerrors.New(pkgerrors.ErrCodeLockUnavailable, "lock unavailable")
	}
	return fn()
}
func (m *mockLock) Ping(ctx context.Context) error { return nil }
func (m *mockLock) Close() error                   { return nil }

func newTestSyncStore(t *testing.T) store.Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.AllModels()...))
	return store.NewStore(db)
}

func seedRepoAndPR(t *testing.T, st store.Store) (*model.Repository, *model.PullRequest) {
	t.Helper()
	repo := &model.Repository{
		Owner: "octocat", Name: "hello-world",
		DefaultStrategy: model.MergeStrategyMerge, DefaultEnableQa: true, DefaultEnableChecks: true,
	}
	require.NoError(t, st.Repository().Create(repo))
	pr := &model.PullRequest{RepositoryID: repo.ID, Number: 1, QaStatus: model.QaStatusPass, ChecksEnabled: true}
	require.NoError(t, st.PullRequest().Create(pr))
	return repo, pr
}
