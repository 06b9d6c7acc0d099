package wiki_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/freelawproject/wiki/pkg/content"
	"github.com/freelawproject/wiki/pkg/resolver"
	"github.com/freelawproject/wiki/pkg/store/content/memory"
	"github.com/freelawproject/wiki/pkg/wiki"
)

type fixture struct {
	engine *wiki.Engine
	store  content.Store
	root   *content.Directory
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewMemoryStore()
	root, err := store.Root(context.Background())
	require.NoError(t, err)
	return &fixture{engine: wiki.NewEngine(store), store: store, root: root}
}

func (f *fixture) user(t *testing.T, name string) *content.User {
	t.Helper()
	u := &content.User{ID: uuid.New(), Email: name + "@example.com", DisplayName: name, CreatedAt: time.Now()}
	require.NoError(t, f.store.PutUser(context.Background(), u))
	return u
}

func TestResolvePathHidesPrivateContent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	owner := f.user(t, "owner")
	stranger := f.user(t, "stranger")

	public, err := f.store.CreatePage(ctx, f.root.ID, "Open", "", content.VisibilityPublic, &owner.ID)
	require.NoError(t, err)
	_, err = f.store.CreatePage(ctx, f.root.ID, "Closed", "", content.VisibilityPrivate, &owner.ID)
	require.NoError(t, err)

	// A public page resolves for the anonymous caller.
	res, err := f.engine.ResolvePath(ctx, "open", nil)
	require.NoError(t, err)
	require.Equal(t, resolver.ResultPage, res.Kind)
	require.Equal(t, public.ID, res.Page.ID)

	// A private page is indistinguishable from a missing one, even for an
	// authenticated non-owner.
	_, err = f.engine.ResolvePath(ctx, "closed", &stranger.ID)
	require.True(t, content.IsNotFound(err))
	_, missingErr := f.engine.ResolvePath(ctx, "definitely-absent", &stranger.ID)
	require.True(t, content.IsNotFound(missingErr))

	// The owner sees it.
	res, err = f.engine.ResolvePath(ctx, "closed", &owner.ID)
	require.NoError(t, err)
	require.Equal(t, resolver.ResultPage, res.Kind)
}

func TestResolvePathFollowsRename(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	page, err := f.store.CreatePage(ctx, f.root.ID, "Deploy Guide", "", content.VisibilityPublic, nil)
	require.NoError(t, err)
	_, _, err = f.store.UpdatePage(ctx, page.ID, "Deployment Guide", "", content.VisibilityPublic, nil, "")
	require.NoError(t, err)

	res, err := f.engine.ResolvePath(ctx, "deploy-guide", nil)
	require.NoError(t, err)
	require.Equal(t, resolver.ResultRedirect, res.Kind)
	require.Equal(t, "deployment-guide", res.CurrentPath)
}

func TestCreateRevisionRequiresEdit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	viewer := f.user(t, "viewer")
	editor := f.user(t, "editor")

	page, err := f.store.CreatePage(ctx, f.root.ID, "Guarded", "v1", content.VisibilityPublic, nil)
	require.NoError(t, err)
	require.NoError(t, f.store.SetGrants(ctx, page.Ref(), []content.Grant{
		{Subject: content.UserSubject(editor.ID), Level: content.LevelEdit},
	}))

	// Public gives View, and View is not enough to write.
	_, err = f.engine.CreateRevision(ctx, &viewer.ID, page.Ref(), "Guarded", "defaced", "")
	require.True(t, content.IsPermissionDenied(err))

	rev, err := f.engine.CreateRevision(ctx, &editor.ID, page.Ref(), "Guarded", "v2", "tweak")
	require.NoError(t, err)
	require.Equal(t, uint64(2), rev.Seq)

	got, err := f.store.GetPage(ctx, page.ID)
	require.NoError(t, err)
	require.Equal(t, "v2", got.Content)
	require.Equal(t, content.VisibilityPublic, got.Visibility)
}

func TestCreateRevisionNotifiesListeners(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	editor := f.user(t, "editor")
	page, err := f.store.CreatePage(ctx, f.root.ID, "Watched", "v1", content.VisibilityPublic, &editor.ID)
	require.NoError(t, err)

	var got []*content.Revision
	f.engine.AddRevisionListener(func(rev *content.Revision) {
		got = append(got, rev)
	})

	rev, err := f.engine.CreateRevision(ctx, &editor.ID, page.Ref(), "Watched", "v2", "")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, rev.Seq, got[0].Seq)
}

func TestCreateRevisionSyncsPageLinks(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	author := f.user(t, "author")
	target, err := f.store.CreatePage(ctx, f.root.ID, "Target", "", content.VisibilityPublic, nil)
	require.NoError(t, err)
	page, err := f.store.CreatePage(ctx, f.root.ID, "Source", "", content.VisibilityPublic, &author.ID)
	require.NoError(t, err)

	_, err = f.engine.CreateRevision(ctx, &author.ID, page.Ref(), "Source", "links to #target now", "")
	require.NoError(t, err)

	back, err := f.store.Backlinks(ctx, target.ID)
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{page.ID}, back)

	// Dropping the reference clears the row.
	_, err = f.engine.CreateRevision(ctx, &author.ID, page.Ref(), "Source", "no links anymore", "")
	require.NoError(t, err)
	back, err = f.store.Backlinks(ctx, target.ID)
	require.NoError(t, err)
	require.Empty(t, back)
}

func TestRevertCreatesNewRevision(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	author := f.user(t, "author")
	page, err := f.store.CreatePage(ctx, f.root.ID, "Doc", "original", content.VisibilityPublic, &author.ID)
	require.NoError(t, err)
	_, err = f.engine.CreateRevision(ctx, &author.ID, page.Ref(), "Doc", "vandalized", "")
	require.NoError(t, err)

	rev, err := f.engine.Revert(ctx, &author.ID, page.Ref(), 1)
	require.NoError(t, err)
	require.Equal(t, uint64(3), rev.Seq)
	require.Equal(t, "original", rev.Content)
	require.Equal(t, "Reverted to version 1", rev.ChangeMessage)

	// History: untouched, one longer, byte-identical content.
	old, err := f.store.GetRevision(ctx, page.Ref(), 1)
	require.NoError(t, err)
	require.Equal(t, "original", old.Content)
	revs, err := f.store.ListRevisions(ctx, page.Ref())
	require.NoError(t, err)
	require.Len(t, revs, 3)

	got, err := f.store.GetPage(ctx, page.ID)
	require.NoError(t, err)
	require.Equal(t, "original", got.Content)
}

// Directory revert restores title and description but leaves visibility
// and grants exactly as they were.
func TestDirectoryRevertIsContentOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	owner := f.user(t, "owner")
	dir, err := f.store.CreateDirectory(ctx, f.root.ID, "Team", "original charter", content.VisibilityPublic, &owner.ID)
	require.NoError(t, err)
	_, err = f.engine.CreateRevision(ctx, &owner.ID, dir.Ref(), "Team", "rewritten charter", "")
	require.NoError(t, err)

	// Tighten visibility and grants after the edit history was made.
	_, _, err = f.store.UpdateDirectory(ctx, dir.ID, "Team", "rewritten charter", content.VisibilityRestricted, &owner.ID, "locked down")
	require.NoError(t, err)
	grantee := f.user(t, "grantee")
	require.NoError(t, f.store.SetGrants(ctx, dir.Ref(), []content.Grant{
		{Subject: content.UserSubject(grantee.ID), Level: content.LevelView},
	}))

	_, err = f.engine.Revert(ctx, &owner.ID, dir.Ref(), 1)
	require.NoError(t, err)

	got, err := f.store.GetDirectory(ctx, dir.ID)
	require.NoError(t, err)
	require.Equal(t, "original charter", got.Description)
	require.Equal(t, content.VisibilityRestricted, got.Visibility)

	grants, err := f.store.Grants(ctx, dir.Ref())
	require.NoError(t, err)
	require.Len(t, grants, 1)
}

func TestDiffThroughEngine(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	author := f.user(t, "author")
	page, err := f.store.CreatePage(ctx, f.root.ID, "Doc", "a\nb\n", content.VisibilityPublic, &author.ID)
	require.NoError(t, err)
	_, err = f.engine.CreateRevision(ctx, &author.ID, page.Ref(), "Doc", "a\nc\n", "")
	require.NoError(t, err)

	diff, err := f.engine.Diff(ctx, &author.ID, page.Ref(), 1, 2)
	require.NoError(t, err)
	patched, err := diff.Apply("a\nb\n")
	require.NoError(t, err)
	require.Equal(t, "a\nc\n", patched)
}

func TestApplyPermissionsRequiresOwner(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	owner := f.user(t, "owner")
	editor := f.user(t, "editor")
	dir, err := f.store.CreateDirectory(ctx, f.root.ID, "Managed", "", content.VisibilityPublic, &owner.ID)
	require.NoError(t, err)
	require.NoError(t, f.store.SetGrants(ctx, dir.Ref(), []content.Grant{
		{Subject: content.UserSubject(editor.ID), Level: content.LevelEdit},
	}))

	grants := []content.Grant{{Subject: content.UserSubject(editor.ID), Level: content.LevelOwner}}

	err = f.engine.ApplyPermissionsRecursively(ctx, &editor.ID, dir.ID, grants)
	require.True(t, content.IsPermissionDenied(err))

	err = f.engine.ApplyPermissionsRecursively(ctx, &owner.ID, dir.ID, grants)
	require.NoError(t, err)
}

func TestClaimSystemOwnerThroughEngine(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	first := f.user(t, "first")
	second := f.user(t, "second")

	claimed, err := f.engine.ClaimSystemOwner(ctx, first.ID)
	require.NoError(t, err)
	require.True(t, claimed)

	claimed, err = f.engine.ClaimSystemOwner(ctx, second.ID)
	require.NoError(t, err)
	require.False(t, claimed)
}

func TestViewCountsThroughEngine(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	page, err := f.store.CreatePage(ctx, f.root.ID, "Counted", "", content.VisibilityPublic, nil)
	require.NoError(t, err)

	require.NoError(t, f.engine.RecordView(ctx, page.ID))
	require.NoError(t, f.engine.RecordView(ctx, page.ID))

	updated, err := f.engine.SyncViewCounts(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, updated)

	got, err := f.store.GetPage(ctx, page.ID)
	require.NoError(t, err)
	require.Equal(t, uint64(2), got.ViewCount)
}
