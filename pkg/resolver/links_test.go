package resolver_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/freelawproject/wiki/pkg/content"
	"github.com/freelawproject/wiki/pkg/permissions"
	"github.com/freelawproject/wiki/pkg/resolver"
	"github.com/freelawproject/wiki/pkg/store/content/memory"
)

func newLinkResolver(store content.Store) *resolver.WikiLinkResolver {
	return resolver.NewWikiLinkResolver(store, permissions.NewResolver(store))
}

func TestRenderKnownSlug(t *testing.T) {
	ctx := context.Background()
	store := memory.NewMemoryStore()
	lr := newLinkResolver(store)

	root, err := store.Root(ctx)
	require.NoError(t, err)
	dir, err := store.CreateDirectory(ctx, root.ID, "Engineering", "", content.VisibilityPublic, nil)
	require.NoError(t, err)
	_, err = store.CreatePage(ctx, dir.ID, "Deploy Guide", "", content.VisibilityPublic, nil)
	require.NoError(t, err)

	out, err := lr.RenderLinks(ctx, "See #deploy-guide for details.", nil)
	require.NoError(t, err)
	require.Equal(t, "See [Deploy Guide](/engineering/deploy-guide) for details.", out)
}

// A historical slug resolves through the redirect index and renders the
// page's current title and path, never the stale ones.
func TestRenderRedirectedSlug(t *testing.T) {
	ctx := context.Background()
	store := memory.NewMemoryStore()
	lr := newLinkResolver(store)

	root, err := store.Root(ctx)
	require.NoError(t, err)
	dir, err := store.CreateDirectory(ctx, root.ID, "Engineering", "", content.VisibilityPublic, nil)
	require.NoError(t, err)
	page, err := store.CreatePage(ctx, dir.ID, "Deploy Guide", "", content.VisibilityPublic, nil)
	require.NoError(t, err)
	_, _, err = store.UpdatePage(ctx, page.ID, "Deployment Guide", "", content.VisibilityPublic, nil, "renamed")
	require.NoError(t, err)

	out, err := lr.RenderLinks(ctx, "See #deploy-guide.", nil)
	require.NoError(t, err)
	require.Equal(t, "See [Deployment Guide](/engineering/deployment-guide).", out)
}

func TestRenderUnknownSlug(t *testing.T) {
	ctx := context.Background()
	store := memory.NewMemoryStore()
	lr := newLinkResolver(store)

	out, err := lr.RenderLinks(ctx, "See #no-such-page.", nil)
	require.NoError(t, err)
	require.Equal(t, `See <span class="text-red-500 dark:text-red-400" title="Page not found">#no-such-page</span>.`, out)
}

// An existing page the viewer cannot see renders byte-identically to a
// page that does not exist.
func TestRenderInaccessibleSlugLooksUnknown(t *testing.T) {
	ctx := context.Background()
	store := memory.NewMemoryStore()
	lr := newLinkResolver(store)

	root, err := store.Root(ctx)
	require.NoError(t, err)
	_, err = store.CreatePage(ctx, root.ID, "Hidden Notes", "", content.VisibilityRestricted, nil)
	require.NoError(t, err)

	hidden, err := lr.RenderLinks(ctx, "#hidden-notes", nil)
	require.NoError(t, err)
	missing, err := lr.RenderLinks(ctx, "#missing-notes", nil)
	require.NoError(t, err)

	require.Contains(t, hidden, `title="Page not found"`)
	require.Equal(t,
		missing,
		// Same rendering modulo the slug text itself.
		`<span class="text-red-500 dark:text-red-400" title="Page not found">#missing-notes</span>`,
	)
	require.Equal(t,
		hidden,
		`<span class="text-red-500 dark:text-red-400" title="Page not found">#hidden-notes</span>`,
	)
}

func TestTokenBoundaries(t *testing.T) {
	ctx := context.Background()
	store := memory.NewMemoryStore()
	lr := newLinkResolver(store)

	root, err := store.Root(ctx)
	require.NoError(t, err)
	_, err = store.CreatePage(ctx, root.ID, "Guide", "", content.VisibilityPublic, nil)
	require.NoError(t, err)

	// Mid-word hashes are not wiki links.
	out, err := lr.RenderLinks(ctx, "C#guide stays, but #guide resolves.", nil)
	require.NoError(t, err)
	require.Equal(t, "C#guide stays, but [Guide](/guide) resolves.", out)

	// Uppercase never matches; slugs are stored lowercase.
	out, err = lr.RenderLinks(ctx, "#Guide", nil)
	require.NoError(t, err)
	require.Equal(t, "#Guide", out)

	// No tokens at all returns the input unchanged.
	out, err = lr.RenderLinks(ctx, "plain text", nil)
	require.NoError(t, err)
	require.Equal(t, "plain text", out)
}
