package memory

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/freelawproject/wiki/pkg/content"
)

// MemoryBlobStore keeps attachment bytes in process memory. Intended for
// tests and ephemeral setups.
type MemoryBlobStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{blobs: make(map[string][]byte)}
}

func (s *MemoryBlobStore) Put(ctx context.Context, key string, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if key == "" {
		return &content.StoreError{Code: content.ErrInvalidArgument, Message: "empty blob key"}
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return &content.StoreError{Code: content.ErrIO, Message: "read blob: " + err.Error(), Path: key}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = data
	return nil
}

func (s *MemoryBlobStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	data, ok := s.blobs[key]
	s.mu.RUnlock()
	if !ok {
		return nil, &content.StoreError{Code: content.ErrNotFound, Message: "attachment blob not found", Path: key}
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *MemoryBlobStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, key)
	return nil
}

func (s *MemoryBlobStore) Healthcheck(ctx context.Context) error {
	return ctx.Err()
}
