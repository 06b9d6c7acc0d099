package permissions_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/freelawproject/wiki/pkg/content"
	"github.com/freelawproject/wiki/pkg/permissions"
	"github.com/freelawproject/wiki/pkg/store/content/memory"
)

func newUser(t *testing.T, store content.Store, name string) *content.User {
	t.Helper()
	user := &content.User{ID: uuid.New(), Email: name + "@example.com", DisplayName: name, CreatedAt: time.Now()}
	require.NoError(t, store.PutUser(context.Background(), user))
	return user
}

func TestSystemOwnerAlwaysOwner(t *testing.T) {
	ctx := context.Background()
	store := memory.NewMemoryStore()
	resolver := permissions.NewResolver(store)

	admin := newUser(t, store, "admin")
	claimed, err := store.ClaimSystemOwner(ctx, admin.ID)
	require.NoError(t, err)
	require.True(t, claimed)

	root, err := store.Root(ctx)
	require.NoError(t, err)
	dir, err := store.CreateDirectory(ctx, root.ID, "Locked", "", content.VisibilityPrivate, nil)
	require.NoError(t, err)
	page, err := store.CreatePage(ctx, dir.ID, "Secret", "", content.VisibilityPrivate, nil)
	require.NoError(t, err)

	for _, target := range []content.TargetRef{dir.Ref(), page.Ref()} {
		level, err := resolver.EffectiveLevel(ctx, &admin.ID, target)
		require.NoError(t, err)
		require.Equal(t, content.LevelOwner, level)
	}
}

func TestPageOwnerIsOwner(t *testing.T) {
	ctx := context.Background()
	store := memory.NewMemoryStore()
	resolver := permissions.NewResolver(store)

	owner := newUser(t, store, "owner")
	stranger := newUser(t, store, "stranger")

	root, err := store.Root(ctx)
	require.NoError(t, err)
	page, err := store.CreatePage(ctx, root.ID, "Mine", "", content.VisibilityRestricted, &owner.ID)
	require.NoError(t, err)

	level, err := resolver.EffectiveLevel(ctx, &owner.ID, page.Ref())
	require.NoError(t, err)
	require.Equal(t, content.LevelOwner, level)

	level, err = resolver.EffectiveLevel(ctx, &stranger.ID, page.Ref())
	require.NoError(t, err)
	require.Equal(t, content.LevelNone, level)
}

// A directory grant for a group cascades to every descendant page, and a
// non-member with no grant gets nothing on restricted content.
func TestDirectoryGrantCascades(t *testing.T) {
	ctx := context.Background()
	store := memory.NewMemoryStore()
	resolver := permissions.NewResolver(store)

	engineer := newUser(t, store, "engineer")
	outsider := newUser(t, store, "outsider")
	engineers := &content.Group{ID: uuid.New(), Name: "Engineers", MemberIDs: []uuid.UUID{engineer.ID}}
	require.NoError(t, store.PutGroup(ctx, engineers))

	root, err := store.Root(ctx)
	require.NoError(t, err)
	eng, err := store.CreateDirectory(ctx, root.ID, "Engineering", "", content.VisibilityRestricted, nil)
	require.NoError(t, err)
	page, err := store.CreatePage(ctx, eng.ID, "Deploy Guide", "", content.VisibilityRestricted, nil)
	require.NoError(t, err)

	require.NoError(t, store.SetGrants(ctx, eng.Ref(), []content.Grant{
		{Subject: content.GroupSubject(engineers.ID), Level: content.LevelEdit},
	}))

	level, err := resolver.EffectiveLevel(ctx, &engineer.ID, page.Ref())
	require.NoError(t, err)
	require.Equal(t, content.LevelEdit, level)

	level, err = resolver.EffectiveLevel(ctx, &outsider.ID, page.Ref())
	require.NoError(t, err)
	require.Equal(t, content.LevelNone, level)
}

// Inheritance never downgrades: a weaker page-level grant cannot undercut
// the level inherited from a directory.
func TestInheritanceNeverDowngrades(t *testing.T) {
	ctx := context.Background()
	store := memory.NewMemoryStore()
	resolver := permissions.NewResolver(store)

	user := newUser(t, store, "editor")

	root, err := store.Root(ctx)
	require.NoError(t, err)
	dir, err := store.CreateDirectory(ctx, root.ID, "Team", "", content.VisibilityRestricted, nil)
	require.NoError(t, err)
	page, err := store.CreatePage(ctx, dir.ID, "Notes", "", content.VisibilityRestricted, nil)
	require.NoError(t, err)

	require.NoError(t, store.SetGrants(ctx, dir.Ref(), []content.Grant{
		{Subject: content.UserSubject(user.ID), Level: content.LevelEdit},
	}))
	require.NoError(t, store.SetGrants(ctx, page.Ref(), []content.Grant{
		{Subject: content.UserSubject(user.ID), Level: content.LevelView},
	}))

	level, err := resolver.EffectiveLevel(ctx, &user.ID, page.Ref())
	require.NoError(t, err)
	require.Equal(t, content.LevelEdit, level)

	// A stronger page-level grant does win.
	require.NoError(t, store.SetGrants(ctx, page.Ref(), []content.Grant{
		{Subject: content.UserSubject(user.ID), Level: content.LevelOwner},
	}))
	level, err = resolver.EffectiveLevel(ctx, &user.ID, page.Ref())
	require.NoError(t, err)
	require.Equal(t, content.LevelOwner, level)
}

func TestGrantsCascadeToSubdirectories(t *testing.T) {
	ctx := context.Background()
	store := memory.NewMemoryStore()
	resolver := permissions.NewResolver(store)

	user := newUser(t, store, "deep")

	root, err := store.Root(ctx)
	require.NoError(t, err)
	top, err := store.CreateDirectory(ctx, root.ID, "Top", "", content.VisibilityRestricted, nil)
	require.NoError(t, err)
	mid, err := store.CreateDirectory(ctx, top.ID, "Mid", "", content.VisibilityRestricted, nil)
	require.NoError(t, err)
	leaf, err := store.CreateDirectory(ctx, mid.ID, "Leaf", "", content.VisibilityRestricted, nil)
	require.NoError(t, err)

	require.NoError(t, store.SetGrants(ctx, top.Ref(), []content.Grant{
		{Subject: content.UserSubject(user.ID), Level: content.LevelEdit},
	}))

	level, err := resolver.EffectiveLevel(ctx, &user.ID, leaf.Ref())
	require.NoError(t, err)
	require.Equal(t, content.LevelEdit, level)
}

func TestVisibilityMapping(t *testing.T) {
	ctx := context.Background()
	store := memory.NewMemoryStore()
	resolver := permissions.NewResolver(store)

	viewer := newUser(t, store, "viewer")
	owner := newUser(t, store, "owner")

	root, err := store.Root(ctx)
	require.NoError(t, err)
	public, err := store.CreatePage(ctx, root.ID, "Public Page", "", content.VisibilityPublic, &owner.ID)
	require.NoError(t, err)
	private, err := store.CreatePage(ctx, root.ID, "Private Page", "", content.VisibilityPrivate, &owner.ID)
	require.NoError(t, err)

	// Public floors everyone at View, the anonymous caller included.
	level, err := resolver.EffectiveLevel(ctx, nil, public.Ref())
	require.NoError(t, err)
	require.Equal(t, content.LevelView, level)

	level, err = resolver.EffectiveLevel(ctx, &viewer.ID, public.Ref())
	require.NoError(t, err)
	require.Equal(t, content.LevelView, level)

	// Private admits only owner-level identities, even over a View grant.
	require.NoError(t, store.SetGrants(ctx, private.Ref(), []content.Grant{
		{Subject: content.UserSubject(viewer.ID), Level: content.LevelEdit},
	}))
	level, err = resolver.EffectiveLevel(ctx, &viewer.ID, private.Ref())
	require.NoError(t, err)
	require.Equal(t, content.LevelNone, level)

	level, err = resolver.EffectiveLevel(ctx, &owner.ID, private.Ref())
	require.NoError(t, err)
	require.Equal(t, content.LevelOwner, level)

	level, err = resolver.EffectiveLevel(ctx, nil, private.Ref())
	require.NoError(t, err)
	require.Equal(t, content.LevelNone, level)
}

func TestApplyPermissionsRecursively(t *testing.T) {
	ctx := context.Background()
	store := memory.NewMemoryStore()
	resolver := permissions.NewResolver(store)

	user := newUser(t, store, "granted")

	root, err := store.Root(ctx)
	require.NoError(t, err)
	top, err := store.CreateDirectory(ctx, root.ID, "Bulk", "", content.VisibilityRestricted, nil)
	require.NoError(t, err)
	sub, err := store.CreateDirectory(ctx, top.ID, "Sub", "", content.VisibilityRestricted, nil)
	require.NoError(t, err)
	page, err := store.CreatePage(ctx, sub.ID, "Deep", "", content.VisibilityRestricted, nil)
	require.NoError(t, err)

	err = resolver.ApplyPermissionsRecursively(ctx, top.ID, []content.Grant{
		{Subject: content.UserSubject(user.ID), Level: content.LevelView},
	})
	require.NoError(t, err)

	for _, target := range []content.TargetRef{top.Ref(), sub.Ref(), page.Ref()} {
		grants, err := store.Grants(ctx, target)
		require.NoError(t, err)
		require.Len(t, grants, 1)
		require.Equal(t, content.LevelView, grants[0].Level)
	}
}
