package testing

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/freelawproject/wiki/pkg/content"
)

// RunGrantsTests executes the permission grant tests.
func (suite *StoreTestSuite) RunGrantsTests(t *testing.T) {
	t.Run("SetAndList", suite.testSetAndListGrants)
	t.Run("UpsertKeepsOthers", suite.testGrantUpsertKeepsOthers)
	t.Run("LevelNoneRemoves", suite.testGrantLevelNoneRemoves)
	t.Run("Recursive", suite.testApplyGrantsRecursively)
	t.Run("MissingTarget", suite.testGrantsMissingTarget)
}

func (suite *StoreTestSuite) testSetAndListGrants(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()
	ctx := context.Background()

	root := rootOf(t, store)
	dir := createTestDirectory(t, store, root.ID, "Protected")
	user := createTestUser(t, store, "reader")
	group := uuid.New()

	err := store.SetGrants(ctx, dir.Ref(), []content.Grant{
		{Subject: content.UserSubject(user.ID), Level: content.LevelView},
		{Subject: content.GroupSubject(group), Level: content.LevelEdit},
	})
	require.NoError(t, err)

	grants, err := store.Grants(ctx, dir.Ref())
	require.NoError(t, err)
	require.Len(t, grants, 2)
	bySubject := map[content.Subject]content.Level{}
	for _, g := range grants {
		bySubject[g.Subject] = g.Level
	}
	require.Equal(t, content.LevelView, bySubject[content.UserSubject(user.ID)])
	require.Equal(t, content.LevelEdit, bySubject[content.GroupSubject(group)])
}

func (suite *StoreTestSuite) testGrantUpsertKeepsOthers(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()
	ctx := context.Background()

	root := rootOf(t, store)
	dir := createTestDirectory(t, store, root.ID, "Protected")
	alice := createTestUser(t, store, "alice")
	bob := createTestUser(t, store, "bob")

	err := store.SetGrants(ctx, dir.Ref(), []content.Grant{
		{Subject: content.UserSubject(alice.ID), Level: content.LevelView},
		{Subject: content.UserSubject(bob.ID), Level: content.LevelView},
	})
	require.NoError(t, err)

	// Raising one subject leaves the other untouched.
	err = store.SetGrants(ctx, dir.Ref(), []content.Grant{
		{Subject: content.UserSubject(alice.ID), Level: content.LevelOwner},
	})
	require.NoError(t, err)

	grants, err := store.Grants(ctx, dir.Ref())
	require.NoError(t, err)
	require.Len(t, grants, 2)
	for _, g := range grants {
		switch g.Subject.ID {
		case alice.ID:
			require.Equal(t, content.LevelOwner, g.Level)
		case bob.ID:
			require.Equal(t, content.LevelView, g.Level)
		}
	}
}

func (suite *StoreTestSuite) testGrantLevelNoneRemoves(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()
	ctx := context.Background()

	root := rootOf(t, store)
	dir := createTestDirectory(t, store, root.ID, "Protected")
	user := createTestUser(t, store, "temp")

	err := store.SetGrants(ctx, dir.Ref(), []content.Grant{
		{Subject: content.UserSubject(user.ID), Level: content.LevelEdit},
	})
	require.NoError(t, err)

	err = store.SetGrants(ctx, dir.Ref(), []content.Grant{
		{Subject: content.UserSubject(user.ID), Level: content.LevelNone},
	})
	require.NoError(t, err)

	grants, err := store.Grants(ctx, dir.Ref())
	require.NoError(t, err)
	require.Empty(t, grants)
}

func (suite *StoreTestSuite) testApplyGrantsRecursively(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()
	ctx := context.Background()

	root := rootOf(t, store)
	top := createTestDirectory(t, store, root.ID, "Top")
	sub := createTestDirectory(t, store, top.ID, "Sub")
	page := createTestPage(t, store, sub.ID, "Leaf")
	outside := createTestPage(t, store, root.ID, "Outside")
	user := createTestUser(t, store, "bulk")

	err := store.ApplyGrantsRecursively(ctx, top.ID, []content.Grant{
		{Subject: content.UserSubject(user.ID), Level: content.LevelEdit},
	})
	require.NoError(t, err)

	for _, target := range []content.TargetRef{top.Ref(), sub.Ref(), page.Ref()} {
		grants, err := store.Grants(ctx, target)
		require.NoError(t, err)
		require.Len(t, grants, 1)
		require.Equal(t, content.LevelEdit, grants[0].Level)
	}

	// Entities outside the subtree are untouched.
	grants, err := store.Grants(ctx, outside.Ref())
	require.NoError(t, err)
	require.Empty(t, grants)
}

func (suite *StoreTestSuite) testGrantsMissingTarget(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()
	ctx := context.Background()

	err := store.SetGrants(ctx, content.PageRef(uuid.New()), []content.Grant{
		{Subject: content.UserSubject(uuid.New()), Level: content.LevelView},
	})
	AssertErrorCode(t, content.ErrNotFound, err)
}
