package testing

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/freelawproject/wiki/pkg/content"
)

// RunViewTests executes the view tally tests.
func (suite *StoreTestSuite) RunViewTests(t *testing.T) {
	t.Run("SyncFoldsTallies", suite.testSyncFoldsTallies)
	t.Run("SyncIsIncremental", suite.testSyncIsIncremental)
	t.Run("EmptySync", suite.testEmptySync)
}

func (suite *StoreTestSuite) testSyncFoldsTallies(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()
	ctx := context.Background()

	root := rootOf(t, store)
	popular := createTestPage(t, store, root.ID, "Popular")
	quiet := createTestPage(t, store, root.ID, "Quiet")

	for range [3]struct{}{} {
		require.NoError(t, store.RecordView(ctx, popular.ID))
	}
	require.NoError(t, store.RecordView(ctx, quiet.ID))

	updated, err := store.SyncViewCounts(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, updated)

	got, err := store.GetPage(ctx, popular.ID)
	require.NoError(t, err)
	require.Equal(t, uint64(3), got.ViewCount)

	got, err = store.GetPage(ctx, quiet.ID)
	require.NoError(t, err)
	require.Equal(t, uint64(1), got.ViewCount)
}

func (suite *StoreTestSuite) testSyncIsIncremental(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()
	ctx := context.Background()

	root := rootOf(t, store)
	page := createTestPage(t, store, root.ID, "Counted")

	require.NoError(t, store.RecordView(ctx, page.ID))
	_, err := store.SyncViewCounts(ctx)
	require.NoError(t, err)

	// Rows are deleted once summed; a second sync adds nothing.
	updated, err := store.SyncViewCounts(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, updated)

	require.NoError(t, store.RecordView(ctx, page.ID))
	require.NoError(t, store.RecordView(ctx, page.ID))
	_, err = store.SyncViewCounts(ctx)
	require.NoError(t, err)

	got, err := store.GetPage(ctx, page.ID)
	require.NoError(t, err)
	require.Equal(t, uint64(3), got.ViewCount)
}

func (suite *StoreTestSuite) testEmptySync(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()

	updated, err := store.SyncViewCounts(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, updated)

	err = store.RecordView(context.Background(), uuid.New())
	AssertErrorCode(t, content.ErrNotFound, err)
}
