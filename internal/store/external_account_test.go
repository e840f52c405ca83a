package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prbot/prbot/internal/model"
)

func TestExternalAccountStoreCreateAndFind(t *testing.T) {
	st := newTestStore(t)

	account := &model.ExternalAccount{Username: "ci-bot", PublicKey: "pub", PrivateKey: "priv"}
	require.NoError(t, st.ExternalAccount().Create(account))

	found, err := st.ExternalAccount().FindByUsername("ci-bot")
	require.NoError(t, err)
	assert.Equal(t, "pub", found.PublicKey)
}

func TestExternalAccountStoreDelete(t *testing.T) {
	st := newTestStore(t)

	account := &model.ExternalAccount{Username: "ci-bot", PublicKey: "pub", PrivateKey: "priv"}
	require.NoError(t, st.ExternalAccount().Create(account))
	require.NoError(t, st.ExternalAccount().Delete("ci-bot"))

	_, err := st.ExternalAccount().FindByUsername("ci-bot")
	assert.Error(t, err)
}

func TestExternalAccountStoreRights(t *testing.T) {
	st := newTestStore(t)
	repo := seedRepository(t, st, "octocat", "hello-world")

	account := &model.ExternalAccount{Username: "ci-bot", PublicKey: "pub", PrivateKey: "priv"}
	require.NoError(t, st.ExternalAccount().Create(account))

	has, err := st.ExternalAccount().HasRight("ci-bot", repo.ID)
	require.NoError(t, err)
	assert.False(t, has)

	right := &model.ExternalAccountRight{Username: "ci-bot", RepositoryID: repo.ID}
	require.NoError(t, st.ExternalAccount().GrantRight(right))

	has, err = st.ExternalAccount().HasRight("ci-bot", repo.ID)
	require.NoError(t, err)
	assert.True(t, has)

	require.NoError(t, st.ExternalAccount().RevokeRight("ci-bot", repo.ID))

	has, err = st.ExternalAccount().HasRight("ci-bot", repo.ID)
	require.NoError(t, err)
	assert.False(t, has)
}
