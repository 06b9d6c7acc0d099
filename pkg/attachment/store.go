package attachment

import (
	"context"
	"io"
)

// BlobStore holds the raw bytes of page attachments. The content store
// only records attachment metadata; the bytes live behind this interface
// so the backing storage (S3, local filesystem, memory) can change
// without touching the wiki core.
//
// Keys are opaque to callers and unique per attachment; the engine
// derives them from the page and attachment ids. Implementations must be
// safe for concurrent use. Concurrent writes to the same key are
// last-write-wins.
type BlobStore interface {
	// Put stores the blob read from r under key, overwriting any
	// previous blob with the same key.
	Put(ctx context.Context, key string, r io.Reader) error

	// Get returns a reader for the blob stored under key. The caller
	// closes the reader. A missing key is ErrNotFound.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the blob stored under key. Deleting a missing key
	// is not an error.
	Delete(ctx context.Context, key string) error

	// Healthcheck verifies the backing storage is reachable.
	Healthcheck(ctx context.Context) error
}
