package projector

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/prbot/prbot/internal/model"
	"github.com/prbot/prbot/internal/store"
	pkgerrors "github.com/prbot/prbot/pkg/errors"
)

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

func newTestSummaryStore(t *testing.T) store.Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.AllModels()...))
	return store.NewStore(db)
}

func TestSummaryCommentProjectorUpdatesExistingComment(t *testing.T) {
	plat := newMockPlatform()
	st := newTestSummaryStore(t)
	p := NewSummaryCommentProjector(plat, st, &mockLock{})

	s := stateAllGood()
	s.StatusCommentID = 999

	require.NoError(t, p.Project(context.Background(), s))
	assert.Zero(t, plat.createdCommentID, "update path must not create a new comment")
	assert.Contains(t, plat.updatedBody, "I am a bot")
	assert.Empty(t, plat.createdBody)
}

func TestSummaryCommentProjectorCreatesAndPersistsCommentID(t *testing.T) {
	plat := newMockPlatform()
	st := newTestSummaryStore(t)
	repo := &model.Repository{Owner: "octocat", Name: "hello-world"}
	require.NoError(t, st.Repository().Create(repo))
	pr := &model.PullRequest{RepositoryID: repo.ID, Number: 1}
	require.NoError(t, st.PullRequest().Create(pr))

	p := NewSummaryCommentProjector(plat, st, &mockLock{})

	s := stateAllGood()
	require.NoError(t, p.Project(context.Background(), s))

	assert.Contains(t, plat.createdBody, "I am a bot")

	reloaded, err := st.PullRequest().FindByNumber(repo.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, plat.createdCommentID, reloaded.StatusCommentID)
}

func TestSummaryCommentProjectorSkipsOnLockUnavailable(t *testing.T) {
	plat := newMockPlatform()
	st := newTestSummaryStore(t)
	p := NewSummaryCommentProjector(plat, st, &mockLock{unavailable: true})

	err := p.Project(context.Background(), stateAllGood())
	assert.NoError(t, err)
	assert.Empty(t, plat.createdBody)
}
