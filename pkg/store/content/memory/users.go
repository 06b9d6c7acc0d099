package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/freelawproject/wiki/pkg/content"
)

// PutUser inserts or updates a user record.
func (s *MemoryStore) PutUser(ctx context.Context, user *content.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if user.ID == uuid.Nil {
		return invalidArgument("user id must be set")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	u := *user
	u.IsSystemOwner = false // derived on read, never stored
	s.users[u.ID] = &u
	return nil
}

// GetUser retrieves a user by id, with IsSystemOwner populated.
func (s *MemoryStore) GetUser(ctx context.Context, id uuid.UUID) (*content.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, notFound("user not found", "")
	}
	out := *user
	out.IsSystemOwner = s.owner != nil && *s.owner == id
	return &out, nil
}

// PutGroup inserts or updates a group record.
func (s *MemoryStore) PutGroup(ctx context.Context, group *content.Group) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if group.ID == uuid.Nil {
		return invalidArgument("group id must be set")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	g := *group
	g.MemberIDs = append([]uuid.UUID(nil), group.MemberIDs...)
	s.groups[g.ID] = &g
	return nil
}

// GetGroup retrieves a group by id.
func (s *MemoryStore) GetGroup(ctx context.Context, id uuid.UUID) (*content.Group, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	group, ok := s.groups[id]
	if !ok {
		return nil, notFound("group not found", "")
	}
	out := *group
	out.MemberIDs = append([]uuid.UUID(nil), group.MemberIDs...)
	return &out, nil
}

// GroupsFor returns the ids of every group the user belongs to.
func (s *MemoryStore) GroupsFor(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []uuid.UUID
	for _, g := range s.groups {
		for _, m := range g.MemberIDs {
			if m == userID {
				ids = append(ids, g.ID)
				break
			}
		}
	}
	return ids, nil
}

// ClaimSystemOwner makes userID the system owner if no owner exists yet.
func (s *MemoryStore) ClaimSystemOwner(ctx context.Context, userID uuid.UUID) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[userID]; !ok {
		return false, notFound("user not found", "")
	}
	if s.owner != nil {
		return false, nil
	}
	id := userID
	s.owner = &id
	return true, nil
}

// SystemOwner returns the system owner's id, if one has been claimed.
func (s *MemoryStore) SystemOwner(ctx context.Context) (uuid.UUID, bool, error) {
	if err := ctx.Err(); err != nil {
		return uuid.Nil, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.owner == nil {
		return uuid.Nil, false, nil
	}
	return *s.owner, true, nil
}
