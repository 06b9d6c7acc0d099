package fs_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	attfs "github.com/freelawproject/wiki/pkg/attachment/fs"
	"github.com/freelawproject/wiki/pkg/content"
)

func TestPutGetDelete(t *testing.T) {
	ctx := context.Background()
	store, err := attfs.NewFilesystemBlobStore(t.TempDir())
	require.NoError(t, err)

	key := "pages/abc/report.pdf"
	require.NoError(t, store.Put(ctx, key, strings.NewReader("pdf bytes")))

	r, err := store.Get(ctx, key)
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	require.Equal(t, "pdf bytes", string(data))

	// Overwrite is last-write-wins.
	require.NoError(t, store.Put(ctx, key, strings.NewReader("newer bytes")))
	r, err = store.Get(ctx, key)
	require.NoError(t, err)
	data, _ = io.ReadAll(r)
	r.Close()
	require.Equal(t, "newer bytes", string(data))

	require.NoError(t, store.Delete(ctx, key))
	_, err = store.Get(ctx, key)
	require.True(t, content.IsNotFound(err))

	// Deleting again is fine.
	require.NoError(t, store.Delete(ctx, key))
}

func TestKeyEscapesRoot(t *testing.T) {
	ctx := context.Background()
	store, err := attfs.NewFilesystemBlobStore(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"", "../outside", "a/../../outside", "/etc/passwd"} {
		err := store.Put(ctx, key, strings.NewReader("x"))
		require.Error(t, err, "key %q must be rejected", key)
	}
}

func TestHealthcheck(t *testing.T) {
	store, err := attfs.NewFilesystemBlobStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Healthcheck(context.Background()))
}
