package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/freelawproject/wiki/pkg/content"
)

// FilesystemBlobStore stores attachment bytes as files under a root
// directory. Keys map onto relative file paths; writes go through a
// temporary file and a rename, so readers never observe a partial blob.
type FilesystemBlobStore struct {
	root string
}

// NewFilesystemBlobStore creates the root directory if needed.
func NewFilesystemBlobStore(root string) (*FilesystemBlobStore, error) {
	if root == "" {
		return nil, fmt.Errorf("root directory is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create root directory: %w", err)
	}
	return &FilesystemBlobStore{root: root}, nil
}

// blobPath validates the key and maps it inside the root. Keys must stay
// relative: anything escaping the root is rejected.
func (s *FilesystemBlobStore) blobPath(key string) (string, error) {
	if key == "" {
		return "", &content.StoreError{Code: content.ErrInvalidArgument, Message: "empty blob key"}
	}
	clean := filepath.Clean(filepath.FromSlash(key))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", &content.StoreError{Code: content.ErrInvalidArgument, Message: "blob key escapes the store root", Path: key}
	}
	return filepath.Join(s.root, clean), nil
}

// Put writes the blob atomically.
func (s *FilesystemBlobStore) Put(ctx context.Context, key string, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.blobPath(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return ioErr("create blob directory", key, err)
	}

	tmp := path + ".tmp-" + uuid.NewString()
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return ioErr("create blob file", key, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(tmp)
		return ioErr("write blob", key, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return ioErr("close blob file", key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return ioErr("publish blob", key, err)
	}
	return nil
}

// Get opens the blob for reading.
func (s *FilesystemBlobStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.blobPath(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &content.StoreError{Code: content.ErrNotFound, Message: "attachment blob not found", Path: key}
		}
		return nil, ioErr("open blob", key, err)
	}
	return f, nil
}

// Delete removes the blob. Missing blobs are fine.
func (s *FilesystemBlobStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.blobPath(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return ioErr("delete blob", key, err)
	}
	return nil
}

// Healthcheck verifies the root directory is still a directory.
func (s *FilesystemBlobStore) Healthcheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	info, err := os.Stat(s.root)
	if err != nil {
		return ioErr("stat store root", "", err)
	}
	if !info.IsDir() {
		return &content.StoreError{Code: content.ErrIO, Message: "store root is not a directory", Path: s.root}
	}
	return nil
}

func ioErr(op, key string, err error) error {
	return &content.StoreError{Code: content.ErrIO, Message: op + " failed: " + err.Error(), Path: key}
}
