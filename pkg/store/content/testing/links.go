package testing

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/freelawproject/wiki/pkg/content"
)

// RunLinkTests executes the page link and attachment tests.
func (suite *StoreTestSuite) RunLinkTests(t *testing.T) {
	t.Run("Backlinks", suite.testBacklinks)
	t.Run("ReplaceLinks", suite.testReplaceLinks)
	t.Run("SelfLinksDropped", suite.testSelfLinksDropped)
	t.Run("Attachments", suite.testAttachments)
}

func (suite *StoreTestSuite) testBacklinks(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()
	ctx := context.Background()

	root := rootOf(t, store)
	target := createTestPage(t, store, root.ID, "Target")
	one := createTestPage(t, store, root.ID, "One")
	two := createTestPage(t, store, root.ID, "Two")

	require.NoError(t, store.SetPageLinks(ctx, one.ID, []uuid.UUID{target.ID}))
	require.NoError(t, store.SetPageLinks(ctx, two.ID, []uuid.UUID{target.ID}))

	back, err := store.Backlinks(ctx, target.ID)
	require.NoError(t, err)
	require.ElementsMatch(t, []uuid.UUID{one.ID, two.ID}, back)
}

func (suite *StoreTestSuite) testReplaceLinks(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()
	ctx := context.Background()

	root := rootOf(t, store)
	from := createTestPage(t, store, root.ID, "From")
	old := createTestPage(t, store, root.ID, "Old Target")
	fresh := createTestPage(t, store, root.ID, "Fresh Target")

	require.NoError(t, store.SetPageLinks(ctx, from.ID, []uuid.UUID{old.ID}))
	require.NoError(t, store.SetPageLinks(ctx, from.ID, []uuid.UUID{fresh.ID}))

	back, err := store.Backlinks(ctx, old.ID)
	require.NoError(t, err)
	require.Empty(t, back)

	back, err = store.Backlinks(ctx, fresh.ID)
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{from.ID}, back)

	// An empty replacement clears everything.
	require.NoError(t, store.SetPageLinks(ctx, from.ID, nil))
	back, err = store.Backlinks(ctx, fresh.ID)
	require.NoError(t, err)
	require.Empty(t, back)
}

func (suite *StoreTestSuite) testSelfLinksDropped(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()
	ctx := context.Background()

	root := rootOf(t, store)
	page := createTestPage(t, store, root.ID, "Recursive")

	require.NoError(t, store.SetPageLinks(ctx, page.ID, []uuid.UUID{page.ID}))

	back, err := store.Backlinks(ctx, page.ID)
	require.NoError(t, err)
	require.Empty(t, back)
}

func (suite *StoreTestSuite) testAttachments(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()
	ctx := context.Background()

	root := rootOf(t, store)
	page := createTestPage(t, store, root.ID, "With Files")
	uploader := createTestUser(t, store, "uploader")

	att := &content.Attachment{
		ID:               uuid.New(),
		PageID:           page.ID,
		Key:              "attachments/" + page.ID.String() + "/report.pdf",
		OriginalFilename: "report.pdf",
		ContentType:      "application/pdf",
		Size:             2048,
		UploadedBy:       &uploader.ID,
	}
	require.NoError(t, store.PutAttachment(ctx, att))

	atts, err := store.Attachments(ctx, page.ID)
	require.NoError(t, err)
	require.Len(t, atts, 1)
	require.Equal(t, "report.pdf", atts[0].OriginalFilename)
	require.Equal(t, int64(2048), atts[0].Size)

	// Attachments for an unknown page are an error, not an empty list.
	_, err = store.Attachments(ctx, uuid.New())
	AssertErrorCode(t, content.ErrNotFound, err)
}
