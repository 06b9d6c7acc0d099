package badger_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/freelawproject/wiki/pkg/content"
	badgerstore "github.com/freelawproject/wiki/pkg/store/content/badger"
	contenttesting "github.com/freelawproject/wiki/pkg/store/content/testing"
)

func TestBadgerContentStore(t *testing.T) {
	suite := &contenttesting.StoreTestSuite{
		NewStore: func() content.Store {
			store, err := badgerstore.NewBadgerContentStore(context.Background(), badgerstore.BadgerContentStoreConfig{
				DBPath: filepath.Join(t.TempDir(), "wiki.db"),
			})
			if err != nil {
				t.Fatalf("Failed to create BadgerContentStore: %v", err)
			}
			return store
		},
	}

	suite.Run(t)
}

// Data written through one store handle must be readable after reopening
// the database from the same path.
func TestBadgerContentStorePersistence(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "wiki.db")

	store, err := badgerstore.NewBadgerContentStore(ctx, badgerstore.BadgerContentStoreConfig{DBPath: dbPath})
	if err != nil {
		t.Fatalf("Failed to create BadgerContentStore: %v", err)
	}

	root, err := store.Root(ctx)
	if err != nil {
		t.Fatalf("Root: %v", err)
	}
	dir, err := store.CreateDirectory(ctx, root.ID, "Persistent", "", content.VisibilityPublic, nil)
	if err != nil {
		t.Fatalf("CreateDirectory: %v", err)
	}
	page, err := store.CreatePage(ctx, dir.ID, "Kept Page", "survives restarts", content.VisibilityPublic, nil)
	if err != nil {
		t.Fatalf("CreatePage: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := badgerstore.NewBadgerContentStore(ctx, badgerstore.BadgerContentStoreConfig{DBPath: dbPath})
	if err != nil {
		t.Fatalf("Failed to reopen BadgerContentStore: %v", err)
	}
	defer reopened.Close()

	gotRoot, err := reopened.Root(ctx)
	if err != nil {
		t.Fatalf("Root after reopen: %v", err)
	}
	if gotRoot.ID != root.ID {
		t.Errorf("root id changed across restart: %s != %s", gotRoot.ID, root.ID)
	}
	gotDir, err := reopened.GetDirectoryByPath(ctx, "persistent")
	if err != nil {
		t.Fatalf("GetDirectoryByPath after reopen: %v", err)
	}
	if gotDir.ID != dir.ID {
		t.Errorf("directory id changed across restart: %s != %s", gotDir.ID, dir.ID)
	}
	gotPage, err := reopened.GetPageBySlug(ctx, "kept-page")
	if err != nil {
		t.Fatalf("GetPageBySlug after reopen: %v", err)
	}
	if gotPage.Content != "survives restarts" {
		t.Errorf("page content changed across restart: %q", gotPage.Content)
	}
	if gotPage.ID != page.ID {
		t.Errorf("page id changed across restart: %s != %s", gotPage.ID, page.ID)
	}
}
