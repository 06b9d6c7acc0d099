package testing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/freelawproject/wiki/pkg/content"
)

// AssertErrorCode asserts that err is a *StoreError carrying the expected
// code.
func AssertErrorCode(t *testing.T, expected content.ErrorCode, err error) {
	t.Helper()
	require.Error(t, err)
	var se *content.StoreError
	require.True(t, errors.As(err, &se), "expected *content.StoreError, got %T: %v", err, err)
	require.Equal(t, expected, se.Code, "unexpected error code: %v", err)
}

// createTestDirectory creates a public directory under parentID and fails
// the test on error.
func createTestDirectory(t *testing.T, store content.Store, parentID uuid.UUID, title string) *content.Directory {
	t.Helper()
	dir, err := store.CreateDirectory(context.Background(), parentID, title, "", content.VisibilityPublic, nil)
	require.NoError(t, err)
	return dir
}

// createTestPage creates a public page in directoryID and fails the test
// on error.
func createTestPage(t *testing.T, store content.Store, directoryID uuid.UUID, title string) *content.Page {
	t.Helper()
	page, err := store.CreatePage(context.Background(), directoryID, title, "content of "+title, content.VisibilityPublic, nil)
	require.NoError(t, err)
	return page
}

// createTestUser registers a user and fails the test on error.
func createTestUser(t *testing.T, store content.Store, name string) *content.User {
	t.Helper()
	user := &content.User{
		ID:          uuid.New(),
		Email:       name + "@example.com",
		DisplayName: name,
		CreatedAt:   time.Now(),
	}
	require.NoError(t, store.PutUser(context.Background(), user))
	return user
}

// rootOf returns the store's root directory.
func rootOf(t *testing.T, store content.Store) *content.Directory {
	t.Helper()
	root, err := store.Root(context.Background())
	require.NoError(t, err)
	return root
}
