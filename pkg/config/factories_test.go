package config

import (
	"context"
	"path/filepath"
	"testing"
)

func TestCreateContentStore_Memory(t *testing.T) {
	ctx := context.Background()

	store, err := CreateContentStore(ctx, &StoreConfig{Type: "memory"})
	if err != nil {
		t.Fatalf("Failed to create memory store: %v", err)
	}
	defer store.Close()

	root, err := store.Root(ctx)
	if err != nil {
		t.Fatalf("Failed to get root directory: %v", err)
	}
	if root.Path != "" {
		t.Errorf("Expected empty root path, got %q", root.Path)
	}
}

func TestCreateContentStore_Badger(t *testing.T) {
	ctx := context.Background()

	store, err := CreateContentStore(ctx, &StoreConfig{
		Type: "badger",
		Badger: map[string]any{
			"db_path": filepath.Join(t.TempDir(), "db"),
		},
	})
	if err != nil {
		t.Fatalf("Failed to create badger store: %v", err)
	}
	defer store.Close()

	if err := store.Healthcheck(ctx); err != nil {
		t.Errorf("Healthcheck failed: %v", err)
	}
}

func TestCreateContentStore_BadgerMissingPath(t *testing.T) {
	_, err := CreateContentStore(context.Background(), &StoreConfig{
		Type:   "badger",
		Badger: map[string]any{},
	})
	if err == nil {
		t.Fatal("Expected error for missing db_path")
	}
}

func TestCreateContentStore_UnknownType(t *testing.T) {
	_, err := CreateContentStore(context.Background(), &StoreConfig{Type: "postgres"})
	if err == nil {
		t.Fatal("Expected error for unknown store type")
	}
}

func TestCreateBlobStore_Memory(t *testing.T) {
	store, err := CreateBlobStore(context.Background(), &AttachmentsConfig{Type: "memory"})
	if err != nil {
		t.Fatalf("Failed to create memory blob store: %v", err)
	}
	if err := store.Healthcheck(context.Background()); err != nil {
		t.Errorf("Healthcheck failed: %v", err)
	}
}

func TestCreateBlobStore_Filesystem(t *testing.T) {
	store, err := CreateBlobStore(context.Background(), &AttachmentsConfig{
		Type: "filesystem",
		Filesystem: map[string]any{
			"path": t.TempDir(),
		},
	})
	if err != nil {
		t.Fatalf("Failed to create filesystem blob store: %v", err)
	}
	if err := store.Healthcheck(context.Background()); err != nil {
		t.Errorf("Healthcheck failed: %v", err)
	}
}

func TestCreateBlobStore_FilesystemMissingPath(t *testing.T) {
	_, err := CreateBlobStore(context.Background(), &AttachmentsConfig{
		Type:       "filesystem",
		Filesystem: map[string]any{},
	})
	if err == nil {
		t.Fatal("Expected error for missing filesystem path")
	}
}

func TestCreateBlobStore_UnknownType(t *testing.T) {
	_, err := CreateBlobStore(context.Background(), &AttachmentsConfig{Type: "gcs"})
	if err == nil {
		t.Fatal("Expected error for unknown attachment store type")
	}
}
