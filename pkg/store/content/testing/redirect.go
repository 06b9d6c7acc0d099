package testing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/freelawproject/wiki/pkg/content"
)

// RunRedirectTests executes the redirect index tests.
func (suite *StoreTestSuite) RunRedirectTests(t *testing.T) {
	t.Run("NoChains", suite.testRedirectsNeverChain)
	t.Run("LiveEntityWins", suite.testLiveEntityWins)
	t.Run("Unknown", suite.testUnknownRedirect)
}

// A redirect stores the target's identity, never a destination path, so a
// second rename does not create a chain: both old paths point straight at
// the entity.
func (suite *StoreTestSuite) testRedirectsNeverChain(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()
	ctx := context.Background()

	root := rootOf(t, store)
	dir := createTestDirectory(t, store, root.ID, "First")

	_, _, err := store.UpdateDirectory(ctx, dir.ID, "Second", "", content.VisibilityPublic, nil, "")
	require.NoError(t, err)
	_, _, err = store.UpdateDirectory(ctx, dir.ID, "Third", "", content.VisibilityPublic, nil, "")
	require.NoError(t, err)

	for _, old := range []string{"first", "second"} {
		red, err := store.ResolveRedirect(ctx, old)
		require.NoError(t, err)
		require.Equal(t, content.DirectoryRef(dir.ID), red.Target)
	}

	got, err := store.GetDirectory(ctx, dir.ID)
	require.NoError(t, err)
	require.Equal(t, "third", got.Path)
}

func (suite *StoreTestSuite) testLiveEntityWins(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()
	ctx := context.Background()

	root := rootOf(t, store)
	dir := createTestDirectory(t, store, root.ID, "Original")
	_, _, err := store.UpdateDirectory(ctx, dir.ID, "Renamed", "", content.VisibilityPublic, nil, "")
	require.NoError(t, err)

	// A new directory claims the vacated path; the redirect must yield.
	fresh := createTestDirectory(t, store, root.ID, "Original")

	_, err = store.ResolveRedirect(ctx, "original")
	AssertErrorCode(t, content.ErrNotFound, err)

	got, err := store.GetDirectoryByPath(ctx, "original")
	require.NoError(t, err)
	require.Equal(t, fresh.ID, got.ID)
}

func (suite *StoreTestSuite) testUnknownRedirect(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()
	ctx := context.Background()

	_, err := store.ResolveRedirect(ctx, "never/existed")
	AssertErrorCode(t, content.ErrNotFound, err)

	_, err = store.ResolveSlugRedirect(ctx, "never-existed")
	AssertErrorCode(t, content.ErrNotFound, err)
}
