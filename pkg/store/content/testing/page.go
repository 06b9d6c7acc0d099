package testing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/freelawproject/wiki/pkg/content"
)

// RunPageTests executes all page operation tests.
func (suite *StoreTestSuite) RunPageTests(t *testing.T) {
	t.Run("CreatePage", suite.testCreatePage)
	t.Run("GlobalSlugUniqueness", suite.testGlobalSlugUniqueness)
	t.Run("DirectoryConflict", suite.testPageDirectoryConflict)
	t.Run("LookupPage", suite.testLookupPage)
	t.Run("PagesIn", suite.testPagesIn)
	t.Run("UpdatePage", suite.testUpdatePage)
	t.Run("UpdatePageSlugChange", suite.testUpdatePageSlugChange)
	t.Run("MovePage", suite.testMovePage)
}

func (suite *StoreTestSuite) testCreatePage(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()
	ctx := context.Background()

	root := rootOf(t, store)
	dir := createTestDirectory(t, store, root.ID, "Docs")

	page, err := store.CreatePage(ctx, dir.ID, "Getting Started", "# Welcome", content.VisibilityPublic, nil)
	require.NoError(t, err)
	require.Equal(t, "getting-started", page.Slug)
	require.Equal(t, dir.ID, page.DirectoryID)
	require.Equal(t, uint64(1), page.CurrentRevision)
	require.Equal(t, uint64(0), page.ViewCount)

	path, err := store.PagePath(ctx, page.ID)
	require.NoError(t, err)
	require.Equal(t, "docs/getting-started", path)

	rev, err := store.GetRevision(ctx, page.Ref(), 1)
	require.NoError(t, err)
	require.Equal(t, "# Welcome", rev.Content)
}

func (suite *StoreTestSuite) testGlobalSlugUniqueness(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()
	ctx := context.Background()

	root := rootOf(t, store)
	dirA := createTestDirectory(t, store, root.ID, "A")
	dirB := createTestDirectory(t, store, root.ID, "B")
	createTestPage(t, store, dirA.ID, "Shared Title")

	// The slug namespace spans the whole tree, not one directory.
	_, err := store.CreatePage(ctx, dirB.ID, "Shared Title", "", content.VisibilityPublic, nil)
	AssertErrorCode(t, content.ErrPathConflict, err)
}

func (suite *StoreTestSuite) testPageDirectoryConflict(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()
	ctx := context.Background()

	root := rootOf(t, store)
	createTestDirectory(t, store, root.ID, "Taken")

	_, err := store.CreatePage(ctx, root.ID, "Taken", "", content.VisibilityPublic, nil)
	AssertErrorCode(t, content.ErrPathConflict, err)
}

func (suite *StoreTestSuite) testLookupPage(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()
	ctx := context.Background()

	root := rootOf(t, store)
	dir := createTestDirectory(t, store, root.ID, "Docs")
	page := createTestPage(t, store, dir.ID, "Guide")

	got, err := store.LookupPage(ctx, "docs", "guide")
	require.NoError(t, err)
	require.Equal(t, page.ID, got.ID)

	bySlug, err := store.GetPageBySlug(ctx, "guide")
	require.NoError(t, err)
	require.Equal(t, page.ID, bySlug.ID)

	// The slug exists, but not under this directory.
	_, err = store.LookupPage(ctx, "", "guide")
	AssertErrorCode(t, content.ErrNotFound, err)
}

func (suite *StoreTestSuite) testPagesIn(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()
	ctx := context.Background()

	root := rootOf(t, store)
	dir := createTestDirectory(t, store, root.ID, "Docs")
	createTestPage(t, store, dir.ID, "Zeta")
	createTestPage(t, store, dir.ID, "Alpha")

	pages, err := store.PagesIn(ctx, dir.ID)
	require.NoError(t, err)
	require.Len(t, pages, 2)
	require.Equal(t, "alpha", pages[0].Slug)
	require.Equal(t, "zeta", pages[1].Slug)
}

func (suite *StoreTestSuite) testUpdatePage(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()
	ctx := context.Background()

	root := rootOf(t, store)
	page := createTestPage(t, store, root.ID, "Stable")

	updated, rev, err := store.UpdatePage(ctx, page.ID, "Stable", "second draft", content.VisibilityPublic, nil, "reworded")
	require.NoError(t, err)
	require.Equal(t, "stable", updated.Slug)
	require.Equal(t, "second draft", updated.Content)
	require.Equal(t, uint64(2), updated.CurrentRevision)
	require.Equal(t, uint64(2), rev.Seq)

	// Sequence numbers keep climbing, one per edit.
	_, rev, err = store.UpdatePage(ctx, page.ID, "Stable", "third draft", content.VisibilityPublic, nil, "")
	require.NoError(t, err)
	require.Equal(t, uint64(3), rev.Seq)
}

func (suite *StoreTestSuite) testUpdatePageSlugChange(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()
	ctx := context.Background()

	root := rootOf(t, store)
	dir := createTestDirectory(t, store, root.ID, "Docs")
	page := createTestPage(t, store, dir.ID, "Old Title")

	updated, _, err := store.UpdatePage(ctx, page.ID, "New Title", "body", content.VisibilityPublic, nil, "renamed")
	require.NoError(t, err)
	require.Equal(t, "new-title", updated.Slug)

	// Both the path namespace and the slug namespace got redirects.
	red, err := store.ResolveRedirect(ctx, "docs/old-title")
	require.NoError(t, err)
	require.Equal(t, content.PageRef(page.ID), red.Target)

	red, err = store.ResolveSlugRedirect(ctx, "old-title")
	require.NoError(t, err)
	require.Equal(t, content.PageRef(page.ID), red.Target)

	_, err = store.GetPageBySlug(ctx, "old-title")
	AssertErrorCode(t, content.ErrNotFound, err)

	got, err := store.GetPageBySlug(ctx, "new-title")
	require.NoError(t, err)
	require.Equal(t, page.ID, got.ID)

	// The freed slug can be reclaimed by a new page; the stale redirect
	// dies with the claim.
	fresh, err := store.CreatePage(ctx, dir.ID, "Old Title", "", content.VisibilityPublic, nil)
	require.NoError(t, err)
	_, err = store.ResolveSlugRedirect(ctx, "old-title")
	AssertErrorCode(t, content.ErrNotFound, err)
	got, err = store.GetPageBySlug(ctx, "old-title")
	require.NoError(t, err)
	require.Equal(t, fresh.ID, got.ID)
}

func (suite *StoreTestSuite) testMovePage(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()
	ctx := context.Background()

	root := rootOf(t, store)
	src := createTestDirectory(t, store, root.ID, "Source")
	dst := createTestDirectory(t, store, root.ID, "Destination")
	page := createTestPage(t, store, src.ID, "Travels")

	moved, err := store.MovePage(ctx, page.ID, dst.ID)
	require.NoError(t, err)
	require.Equal(t, dst.ID, moved.DirectoryID)
	require.Equal(t, "travels", moved.Slug)

	path, err := store.PagePath(ctx, page.ID)
	require.NoError(t, err)
	require.Equal(t, "destination/travels", path)

	red, err := store.ResolveRedirect(ctx, "source/travels")
	require.NoError(t, err)
	require.Equal(t, content.PageRef(page.ID), red.Target)

	_, err = store.LookupPage(ctx, "source", "travels")
	AssertErrorCode(t, content.ErrNotFound, err)
}
