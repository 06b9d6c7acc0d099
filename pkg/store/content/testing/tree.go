package testing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/freelawproject/wiki/pkg/content"
)

// RunTreeTests executes all directory tree tests.
func (suite *StoreTestSuite) RunTreeTests(t *testing.T) {
	t.Run("Root", suite.testRoot)
	t.Run("CreateDirectory", suite.testCreateDirectory)
	t.Run("CreateDirectorySiblingConflict", suite.testCreateDirectorySiblingConflict)
	t.Run("CreateDirectoryPageConflict", suite.testCreateDirectoryPageConflict)
	t.Run("GetDirectoryByPath", suite.testGetDirectoryByPath)
	t.Run("ChildDirectories", suite.testChildDirectories)
	t.Run("Ancestors", suite.testAncestors)
	t.Run("Descendants", suite.testDescendants)
	t.Run("MoveDirectoryRename", suite.testMoveDirectoryRename)
	t.Run("MoveDirectoryReparent", suite.testMoveDirectoryReparent)
	t.Run("MoveDirectoryIntoItself", suite.testMoveDirectoryIntoItself)
	t.Run("MoveRootFails", suite.testMoveRootFails)
	t.Run("UpdateDirectoryKeepsPath", suite.testUpdateDirectoryKeepsPath)
	t.Run("UpdateDirectorySlugChange", suite.testUpdateDirectorySlugChange)
}

func (suite *StoreTestSuite) testRoot(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()
	ctx := context.Background()

	root, err := store.Root(ctx)
	require.NoError(t, err)
	require.Equal(t, "", root.Path)
	require.True(t, root.IsRoot())
	require.Nil(t, root.ParentID)

	// Root is stable across calls.
	again, err := store.Root(ctx)
	require.NoError(t, err)
	require.Equal(t, root.ID, again.ID)
}

func (suite *StoreTestSuite) testCreateDirectory(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()
	ctx := context.Background()

	root := rootOf(t, store)
	dir, err := store.CreateDirectory(ctx, root.ID, "Case Law", "Opinions and dockets", content.VisibilityPublic, nil)
	require.NoError(t, err)
	require.Equal(t, "case-law", dir.Path)
	require.Equal(t, "case-law", dir.Slug())
	require.Equal(t, root.ID, *dir.ParentID)
	require.Equal(t, uint64(1), dir.CurrentRevision)

	rev, err := store.GetRevision(ctx, dir.Ref(), 1)
	require.NoError(t, err)
	require.Equal(t, "Case Law", rev.Title)

	nested, err := store.CreateDirectory(ctx, dir.ID, "Supreme Court", "", content.VisibilityPublic, nil)
	require.NoError(t, err)
	require.Equal(t, "case-law/supreme-court", nested.Path)
}

func (suite *StoreTestSuite) testCreateDirectorySiblingConflict(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()
	ctx := context.Background()

	root := rootOf(t, store)
	createTestDirectory(t, store, root.ID, "Guides")

	// Same slug from a differently-cased title still collides.
	_, err := store.CreateDirectory(ctx, root.ID, "GUIDES", "", content.VisibilityPublic, nil)
	AssertErrorCode(t, content.ErrPathConflict, err)
}

func (suite *StoreTestSuite) testCreateDirectoryPageConflict(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()
	ctx := context.Background()

	root := rootOf(t, store)
	createTestPage(t, store, root.ID, "Guides")

	_, err := store.CreateDirectory(ctx, root.ID, "Guides", "", content.VisibilityPublic, nil)
	AssertErrorCode(t, content.ErrPathConflict, err)
}

func (suite *StoreTestSuite) testGetDirectoryByPath(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()
	ctx := context.Background()

	root := rootOf(t, store)
	parent := createTestDirectory(t, store, root.ID, "Parent")
	child := createTestDirectory(t, store, parent.ID, "Child")

	got, err := store.GetDirectoryByPath(ctx, "parent/child")
	require.NoError(t, err)
	require.Equal(t, child.ID, got.ID)

	// Leading and trailing slashes are normalized away.
	got, err = store.GetDirectoryByPath(ctx, "/parent/child/")
	require.NoError(t, err)
	require.Equal(t, child.ID, got.ID)

	_, err = store.GetDirectoryByPath(ctx, "parent/missing")
	AssertErrorCode(t, content.ErrNotFound, err)
}

func (suite *StoreTestSuite) testChildDirectories(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()
	ctx := context.Background()

	root := rootOf(t, store)
	createTestDirectory(t, store, root.ID, "Bravo")
	createTestDirectory(t, store, root.ID, "Alpha")

	children, err := store.ChildDirectories(ctx, root.ID)
	require.NoError(t, err)
	require.Len(t, children, 2)
	require.Equal(t, "alpha", children[0].Path)
	require.Equal(t, "bravo", children[1].Path)
}

func (suite *StoreTestSuite) testAncestors(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()
	ctx := context.Background()

	root := rootOf(t, store)
	a := createTestDirectory(t, store, root.ID, "A")
	b := createTestDirectory(t, store, a.ID, "B")
	c := createTestDirectory(t, store, b.ID, "C")

	chain, err := store.Ancestors(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, chain, 3)
	require.Equal(t, root.ID, chain[0].ID)
	require.Equal(t, a.ID, chain[1].ID)
	require.Equal(t, b.ID, chain[2].ID)

	chain, err = store.Ancestors(ctx, root.ID)
	require.NoError(t, err)
	require.Empty(t, chain)
}

func (suite *StoreTestSuite) testDescendants(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()
	ctx := context.Background()

	root := rootOf(t, store)
	a := createTestDirectory(t, store, root.ID, "A")
	b := createTestDirectory(t, store, a.ID, "B")
	pageInA := createTestPage(t, store, a.ID, "In A")
	pageInB := createTestPage(t, store, b.ID, "In B")

	refs, err := store.Descendants(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, refs, 3)
	require.Contains(t, refs, content.DirectoryRef(b.ID))
	require.Contains(t, refs, content.PageRef(pageInA.ID))
	require.Contains(t, refs, content.PageRef(pageInB.ID))
	require.NotContains(t, refs, content.DirectoryRef(a.ID))
}

func (suite *StoreTestSuite) testMoveDirectoryRename(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()
	ctx := context.Background()

	root := rootOf(t, store)
	dir := createTestDirectory(t, store, root.ID, "Old Name")
	child := createTestDirectory(t, store, dir.ID, "Child")
	page := createTestPage(t, store, child.ID, "Deep Page")

	moved, err := store.MoveDirectory(ctx, dir.ID, root.ID, "New Name")
	require.NoError(t, err)
	require.Equal(t, "new-name", moved.Path)

	// Derived paths are rewritten all the way down.
	gotChild, err := store.GetDirectoryByPath(ctx, "new-name/child")
	require.NoError(t, err)
	require.Equal(t, child.ID, gotChild.ID)

	path, err := store.PagePath(ctx, page.ID)
	require.NoError(t, err)
	require.Equal(t, "new-name/child/deep-page", path)

	// Redirects are recorded for every old path.
	red, err := store.ResolveRedirect(ctx, "old-name")
	require.NoError(t, err)
	require.Equal(t, content.DirectoryRef(dir.ID), red.Target)

	red, err = store.ResolveRedirect(ctx, "old-name/child")
	require.NoError(t, err)
	require.Equal(t, content.DirectoryRef(child.ID), red.Target)

	red, err = store.ResolveRedirect(ctx, "old-name/child/deep-page")
	require.NoError(t, err)
	require.Equal(t, content.PageRef(page.ID), red.Target)

	// The old path is no longer a live directory.
	_, err = store.GetDirectoryByPath(ctx, "old-name")
	AssertErrorCode(t, content.ErrNotFound, err)
}

func (suite *StoreTestSuite) testMoveDirectoryReparent(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()
	ctx := context.Background()

	root := rootOf(t, store)
	src := createTestDirectory(t, store, root.ID, "Source")
	dst := createTestDirectory(t, store, root.ID, "Destination")

	moved, err := store.MoveDirectory(ctx, src.ID, dst.ID, "Source")
	require.NoError(t, err)
	require.Equal(t, "destination/source", moved.Path)
	require.Equal(t, dst.ID, *moved.ParentID)

	children, err := store.ChildDirectories(ctx, dst.ID)
	require.NoError(t, err)
	require.Len(t, children, 1)
	require.Equal(t, src.ID, children[0].ID)

	children, err = store.ChildDirectories(ctx, root.ID)
	require.NoError(t, err)
	require.Len(t, children, 1)
	require.Equal(t, dst.ID, children[0].ID)
}

func (suite *StoreTestSuite) testMoveDirectoryIntoItself(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()
	ctx := context.Background()

	root := rootOf(t, store)
	a := createTestDirectory(t, store, root.ID, "A")
	b := createTestDirectory(t, store, a.ID, "B")

	_, err := store.MoveDirectory(ctx, a.ID, b.ID, "A")
	AssertErrorCode(t, content.ErrPathConflict, err)

	_, err = store.MoveDirectory(ctx, a.ID, a.ID, "A")
	AssertErrorCode(t, content.ErrPathConflict, err)
}

func (suite *StoreTestSuite) testMoveRootFails(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()
	ctx := context.Background()

	root := rootOf(t, store)
	other := createTestDirectory(t, store, root.ID, "Other")

	_, err := store.MoveDirectory(ctx, root.ID, other.ID, "Home")
	AssertErrorCode(t, content.ErrInvalidArgument, err)
}

func (suite *StoreTestSuite) testUpdateDirectoryKeepsPath(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()
	ctx := context.Background()

	root := rootOf(t, store)
	dir := createTestDirectory(t, store, root.ID, "Stable")

	updated, rev, err := store.UpdateDirectory(ctx, dir.ID, "Stable", "new description", content.VisibilityRestricted, nil, "tightened access")
	require.NoError(t, err)
	require.Equal(t, "stable", updated.Path)
	require.Equal(t, content.VisibilityRestricted, updated.Visibility)
	require.Equal(t, uint64(2), updated.CurrentRevision)
	require.Equal(t, uint64(2), rev.Seq)
	require.Equal(t, "tightened access", rev.ChangeMessage)

	// No redirect for a title edit that keeps the slug.
	_, err = store.ResolveRedirect(ctx, "stable")
	AssertErrorCode(t, content.ErrNotFound, err)
}

func (suite *StoreTestSuite) testUpdateDirectorySlugChange(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()
	ctx := context.Background()

	root := rootOf(t, store)
	dir := createTestDirectory(t, store, root.ID, "Before")
	page := createTestPage(t, store, dir.ID, "Inside")

	updated, rev, err := store.UpdateDirectory(ctx, dir.ID, "After", "", content.VisibilityPublic, nil, "renamed")
	require.NoError(t, err)
	require.Equal(t, "after", updated.Path)
	require.Equal(t, uint64(2), rev.Seq)

	red, err := store.ResolveRedirect(ctx, "before")
	require.NoError(t, err)
	require.Equal(t, content.DirectoryRef(dir.ID), red.Target)

	red, err = store.ResolveRedirect(ctx, "before/inside")
	require.NoError(t, err)
	require.Equal(t, content.PageRef(page.ID), red.Target)

	path, err := store.PagePath(ctx, page.ID)
	require.NoError(t, err)
	require.Equal(t, "after/inside", path)
}
