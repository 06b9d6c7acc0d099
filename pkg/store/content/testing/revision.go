package testing

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/freelawproject/wiki/pkg/content"
)

// RunRevisionTests executes the revision history tests.
func (suite *StoreTestSuite) RunRevisionTests(t *testing.T) {
	t.Run("ListNewestFirst", suite.testListRevisionsNewestFirst)
	t.Run("GetBySeq", suite.testGetRevisionBySeq)
	t.Run("Author", suite.testRevisionAuthor)
	t.Run("Missing", suite.testRevisionMissing)
}

func (suite *StoreTestSuite) testListRevisionsNewestFirst(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()
	ctx := context.Background()

	root := rootOf(t, store)
	page := createTestPage(t, store, root.ID, "History")

	for _, body := range []string{"v2", "v3", "v4"} {
		_, _, err := store.UpdatePage(ctx, page.ID, "History", body, content.VisibilityPublic, nil, "")
		require.NoError(t, err)
	}

	revs, err := store.ListRevisions(ctx, page.Ref())
	require.NoError(t, err)
	require.Len(t, revs, 4)
	for i, rev := range revs {
		require.Equal(t, uint64(4-i), rev.Seq)
	}
	require.Equal(t, "v4", revs[0].Content)
}

func (suite *StoreTestSuite) testGetRevisionBySeq(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()
	ctx := context.Background()

	root := rootOf(t, store)
	page := createTestPage(t, store, root.ID, "History")
	_, _, err := store.UpdatePage(ctx, page.ID, "History", "second", content.VisibilityPublic, nil, "edit")
	require.NoError(t, err)

	rev, err := store.GetRevision(ctx, page.Ref(), 2)
	require.NoError(t, err)
	require.Equal(t, "second", rev.Content)
	require.Equal(t, "edit", rev.ChangeMessage)

	// Old revisions stay immutable and readable.
	rev, err = store.GetRevision(ctx, page.Ref(), 1)
	require.NoError(t, err)
	require.Equal(t, "content of History", rev.Content)
}

func (suite *StoreTestSuite) testRevisionAuthor(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()
	ctx := context.Background()

	root := rootOf(t, store)
	author := createTestUser(t, store, "editor")
	page := createTestPage(t, store, root.ID, "Attributed")

	_, rev, err := store.UpdatePage(ctx, page.ID, "Attributed", "signed edit", content.VisibilityPublic, &author.ID, "")
	require.NoError(t, err)
	require.NotNil(t, rev.AuthorID)
	require.Equal(t, author.ID, *rev.AuthorID)
}

func (suite *StoreTestSuite) testRevisionMissing(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()
	ctx := context.Background()

	root := rootOf(t, store)
	page := createTestPage(t, store, root.ID, "Short History")

	_, err := store.GetRevision(ctx, page.Ref(), 99)
	AssertErrorCode(t, content.ErrNotFound, err)

	_, err = store.GetRevision(ctx, content.PageRef(uuid.New()), 1)
	AssertErrorCode(t, content.ErrNotFound, err)
}
