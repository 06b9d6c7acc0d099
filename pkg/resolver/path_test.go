package resolver_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/freelawproject/wiki/pkg/content"
	"github.com/freelawproject/wiki/pkg/resolver"
	"github.com/freelawproject/wiki/pkg/store/content/memory"
)

func TestResolveDirectory(t *testing.T) {
	ctx := context.Background()
	store := memory.NewMemoryStore()
	pr := resolver.NewPathResolver(store)

	root, err := store.Root(ctx)
	require.NoError(t, err)
	dir, err := store.CreateDirectory(ctx, root.ID, "Engineering", "", content.VisibilityPublic, nil)
	require.NoError(t, err)

	res, err := pr.Resolve(ctx, "engineering")
	require.NoError(t, err)
	require.Equal(t, resolver.ResultDirectory, res.Kind)
	require.Equal(t, dir.ID, res.Directory.ID)
	require.Equal(t, "engineering", res.CurrentPath)

	// The root resolves at the empty path.
	res, err = pr.Resolve(ctx, "/")
	require.NoError(t, err)
	require.Equal(t, resolver.ResultDirectory, res.Kind)
	require.True(t, res.Directory.IsRoot())
}

func TestResolvePage(t *testing.T) {
	ctx := context.Background()
	store := memory.NewMemoryStore()
	pr := resolver.NewPathResolver(store)

	root, err := store.Root(ctx)
	require.NoError(t, err)
	dir, err := store.CreateDirectory(ctx, root.ID, "Engineering", "", content.VisibilityPublic, nil)
	require.NoError(t, err)
	page, err := store.CreatePage(ctx, dir.ID, "Deploy Guide", "", content.VisibilityPublic, nil)
	require.NoError(t, err)

	res, err := pr.Resolve(ctx, "engineering/deploy-guide")
	require.NoError(t, err)
	require.Equal(t, resolver.ResultPage, res.Kind)
	require.Equal(t, page.ID, res.Page.ID)
	require.Equal(t, "engineering/deploy-guide", res.CurrentPath)
}

func TestResolveRedirectCarriesLivePath(t *testing.T) {
	ctx := context.Background()
	store := memory.NewMemoryStore()
	pr := resolver.NewPathResolver(store)

	root, err := store.Root(ctx)
	require.NoError(t, err)
	dir, err := store.CreateDirectory(ctx, root.ID, "Engineering", "", content.VisibilityPublic, nil)
	require.NoError(t, err)
	page, err := store.CreatePage(ctx, dir.ID, "Deploy Guide", "", content.VisibilityPublic, nil)
	require.NoError(t, err)

	_, _, err = store.UpdatePage(ctx, page.ID, "Deployment Guide", "", content.VisibilityPublic, nil, "renamed")
	require.NoError(t, err)

	res, err := pr.Resolve(ctx, "engineering/deploy-guide")
	require.NoError(t, err)
	require.Equal(t, resolver.ResultRedirect, res.Kind)
	require.Equal(t, content.PageRef(page.ID), res.Target)
	require.Equal(t, "engineering/deployment-guide", res.CurrentPath)

	// A second rename repoints both historical paths at the newest
	// location; old links never chain through the intermediate one.
	_, _, err = store.UpdatePage(ctx, page.ID, "Deployment Handbook", "", content.VisibilityPublic, nil, "renamed again")
	require.NoError(t, err)

	for _, old := range []string{"engineering/deploy-guide", "engineering/deployment-guide"} {
		res, err := pr.Resolve(ctx, old)
		require.NoError(t, err)
		require.Equal(t, resolver.ResultRedirect, res.Kind)
		require.Equal(t, "engineering/deployment-handbook", res.CurrentPath)
	}
}

func TestResolveNotFound(t *testing.T) {
	ctx := context.Background()
	store := memory.NewMemoryStore()
	pr := resolver.NewPathResolver(store)

	_, err := pr.Resolve(ctx, "no/such/path")
	require.Error(t, err)
	require.True(t, content.IsNotFound(err))
}

// Directory wins over page interpretation: the exact directory match is
// checked before the final segment is read as a page slug.
func TestResolveOrderIsDeterministic(t *testing.T) {
	ctx := context.Background()
	store := memory.NewMemoryStore()
	pr := resolver.NewPathResolver(store)

	root, err := store.Root(ctx)
	require.NoError(t, err)
	parent, err := store.CreateDirectory(ctx, root.ID, "Docs", "", content.VisibilityPublic, nil)
	require.NoError(t, err)
	sub, err := store.CreateDirectory(ctx, parent.ID, "Intro", "", content.VisibilityPublic, nil)
	require.NoError(t, err)

	res, err := pr.Resolve(ctx, "docs/intro")
	require.NoError(t, err)
	require.Equal(t, resolver.ResultDirectory, res.Kind)
	require.Equal(t, sub.ID, res.Directory.ID)
}
