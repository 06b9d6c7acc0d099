package memory_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	attmem "github.com/freelawproject/wiki/pkg/attachment/memory"
	"github.com/freelawproject/wiki/pkg/content"
)

func TestPutGetDelete(t *testing.T) {
	ctx := context.Background()
	store := attmem.NewMemoryBlobStore()

	require.NoError(t, store.Put(ctx, "k", strings.NewReader("hello")))

	r, err := store.Get(ctx, "k")
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	require.Equal(t, "hello", string(data))

	require.NoError(t, store.Put(ctx, "k", strings.NewReader("hello again")))
	r, err = store.Get(ctx, "k")
	require.NoError(t, err)
	data, _ = io.ReadAll(r)
	r.Close()
	require.Equal(t, "hello again", string(data))

	require.NoError(t, store.Delete(ctx, "k"))
	_, err = store.Get(ctx, "k")
	require.True(t, content.IsNotFound(err))
	require.NoError(t, store.Delete(ctx, "k"))
}

func TestIndependentReads(t *testing.T) {
	ctx := context.Background()
	store := attmem.NewMemoryBlobStore()
	require.NoError(t, store.Put(ctx, "k", strings.NewReader("abc")))

	// Two readers over the same blob do not interfere.
	r1, err := store.Get(ctx, "k")
	require.NoError(t, err)
	r2, err := store.Get(ctx, "k")
	require.NoError(t, err)
	b1, _ := io.ReadAll(r1)
	b2, _ := io.ReadAll(r2)
	require.Equal(t, "abc", string(b1))
	require.Equal(t, "abc", string(b2))
}

func TestHealthcheck(t *testing.T) {
	require.NoError(t, attmem.NewMemoryBlobStore().Healthcheck(context.Background()))
}
