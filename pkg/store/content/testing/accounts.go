package testing

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/freelawproject/wiki/pkg/content"
)

// RunAccountTests executes the user, group and system owner tests.
func (suite *StoreTestSuite) RunAccountTests(t *testing.T) {
	t.Run("Users", suite.testUsers)
	t.Run("Groups", suite.testGroups)
	t.Run("ClaimSystemOwner", suite.testClaimSystemOwner)
	t.Run("ClaimSystemOwnerConcurrent", suite.testClaimSystemOwnerConcurrent)
}

func (suite *StoreTestSuite) testUsers(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()
	ctx := context.Background()

	user := createTestUser(t, store, "jdoe")
	got, err := store.GetUser(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, "jdoe@example.com", got.Email)
	require.False(t, got.IsSystemOwner)

	_, err = store.GetUser(ctx, uuid.New())
	AssertErrorCode(t, content.ErrNotFound, err)
}

func (suite *StoreTestSuite) testGroups(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()
	ctx := context.Background()

	member := createTestUser(t, store, "member")
	outsider := createTestUser(t, store, "outsider")

	group := &content.Group{ID: uuid.New(), Name: "editors", MemberIDs: []uuid.UUID{member.ID}}
	require.NoError(t, store.PutGroup(ctx, group))

	got, err := store.GetGroup(ctx, group.ID)
	require.NoError(t, err)
	require.Equal(t, "editors", got.Name)
	require.Equal(t, []uuid.UUID{member.ID}, got.MemberIDs)

	ids, err := store.GroupsFor(ctx, member.ID)
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{group.ID}, ids)

	ids, err = store.GroupsFor(ctx, outsider.ID)
	require.NoError(t, err)
	require.Empty(t, ids)
}

func (suite *StoreTestSuite) testClaimSystemOwner(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()
	ctx := context.Background()

	_, ok, err := store.SystemOwner(ctx)
	require.NoError(t, err)
	require.False(t, ok)

	first := createTestUser(t, store, "first")
	second := createTestUser(t, store, "second")

	claimed, err := store.ClaimSystemOwner(ctx, first.ID)
	require.NoError(t, err)
	require.True(t, claimed)

	// The role is first-come, single-winner, immutable.
	claimed, err = store.ClaimSystemOwner(ctx, second.ID)
	require.NoError(t, err)
	require.False(t, claimed)

	claimed, err = store.ClaimSystemOwner(ctx, first.ID)
	require.NoError(t, err)
	require.False(t, claimed)

	ownerID, ok, err := store.SystemOwner(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, first.ID, ownerID)

	got, err := store.GetUser(ctx, first.ID)
	require.NoError(t, err)
	require.True(t, got.IsSystemOwner)

	got, err = store.GetUser(ctx, second.ID)
	require.NoError(t, err)
	require.False(t, got.IsSystemOwner)

	// Claiming for an unknown user never succeeds.
	_, err = store.ClaimSystemOwner(ctx, uuid.New())
	AssertErrorCode(t, content.ErrNotFound, err)
}

func (suite *StoreTestSuite) testClaimSystemOwnerConcurrent(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()
	ctx := context.Background()

	const claimants = 8
	users := make([]*content.User, claimants)
	for i := range users {
		users[i] = createTestUser(t, store, "claimant")
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for _, user := range users {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			// Badger aborts losing transactions with ErrConflict; a
			// retry then observes the winner and returns false.
			for {
				claimed, err := store.ClaimSystemOwner(ctx, id)
				if err != nil {
					if se, ok := err.(*content.StoreError); ok && se.Code == content.ErrConflict {
						continue
					}
					t.Errorf("claim: %v", err)
					return
				}
				if claimed {
					mu.Lock()
					wins++
					mu.Unlock()
				}
				return
			}
		}(user.ID)
	}
	wg.Wait()

	require.Equal(t, 1, wins)
	_, ok, err := store.SystemOwner(ctx)
	require.NoError(t, err)
	require.True(t, ok)
}
