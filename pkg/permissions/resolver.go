package permissions

import (
	"context"

	"github.com/google/uuid"

	"github.com/freelawproject/wiki/pkg/content"
)

// Resolver computes the effective access level an identity holds over a
// directory or page. Resolution is a pure read over current grant state;
// callers cache per-request if they need to.
//
// The policy is "most permissive wins": direct grants, group grants and
// inherited directory grants are combined by maximum. A directory grant
// cascades to every descendant and an explicit page grant can only add
// access on top, never remove it.
type Resolver struct {
	store content.Store
}

func NewResolver(store content.Store) *Resolver {
	return &Resolver{store: store}
}

// EffectiveLevel computes the access level for userID on target. A nil
// userID is an anonymous caller, who only ever receives the public floor.
func (r *Resolver) EffectiveLevel(ctx context.Context, userID *uuid.UUID, target content.TargetRef) (content.Level, error) {
	visibility, ownerID, chain, err := r.loadTarget(ctx, target)
	if err != nil {
		return content.LevelNone, err
	}

	level := content.LevelNone
	if userID != nil {
		ownerUUID, ok, err := r.store.SystemOwner(ctx)
		if err != nil {
			return content.LevelNone, err
		}
		if ok && ownerUUID == *userID {
			return content.LevelOwner, nil
		}
		if ownerID != nil && *ownerID == *userID {
			return content.LevelOwner, nil
		}

		subjects, err := r.subjectsFor(ctx, *userID)
		if err != nil {
			return content.LevelNone, err
		}

		level, err = r.grantedLevel(ctx, target, subjects)
		if err != nil {
			return content.LevelNone, err
		}
		for _, dir := range chain {
			inherited, err := r.grantedLevel(ctx, dir.Ref(), subjects)
			if err != nil {
				return content.LevelNone, err
			}
			level = level.Max(inherited)
		}
	}

	switch visibility {
	case content.VisibilityPublic:
		return level.Max(content.LevelView), nil
	case content.VisibilityPrivate:
		if level == content.LevelOwner {
			return content.LevelOwner, nil
		}
		return content.LevelNone, nil
	default:
		return level, nil
	}
}

// ApplyPermissionsRecursively upserts grants on a directory and its whole
// subtree in one transaction.
func (r *Resolver) ApplyPermissionsRecursively(ctx context.Context, directoryID uuid.UUID, grants []content.Grant) error {
	return r.store.ApplyGrantsRecursively(ctx, directoryID, grants)
}

// loadTarget returns the target's visibility, owner, and the directory
// chain whose grants cascade onto it: the owning directory plus every
// ancestor for a page, every ancestor for a directory.
func (r *Resolver) loadTarget(ctx context.Context, target content.TargetRef) (content.Visibility, *uuid.UUID, []*content.Directory, error) {
	switch target.Kind {
	case content.KindPage:
		page, err := r.store.GetPage(ctx, target.ID)
		if err != nil {
			return "", nil, nil, err
		}
		owning, err := r.store.GetDirectory(ctx, page.DirectoryID)
		if err != nil {
			return "", nil, nil, err
		}
		ancestors, err := r.store.Ancestors(ctx, owning.ID)
		if err != nil {
			return "", nil, nil, err
		}
		return page.Visibility, page.OwnerID, append(ancestors, owning), nil
	case content.KindDirectory:
		dir, err := r.store.GetDirectory(ctx, target.ID)
		if err != nil {
			return "", nil, nil, err
		}
		ancestors, err := r.store.Ancestors(ctx, dir.ID)
		if err != nil {
			return "", nil, nil, err
		}
		return dir.Visibility, dir.OwnerID, ancestors, nil
	default:
		return "", nil, nil, &content.StoreError{
			Code:    content.ErrInvalidArgument,
			Message: "unknown target kind " + string(target.Kind),
		}
	}
}

func (r *Resolver) subjectsFor(ctx context.Context, userID uuid.UUID) (map[content.Subject]bool, error) {
	subjects := map[content.Subject]bool{
		content.UserSubject(userID): true,
	}
	groups, err := r.store.GroupsFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, groupID := range groups {
		subjects[content.GroupSubject(groupID)] = true
	}
	return subjects, nil
}

func (r *Resolver) grantedLevel(ctx context.Context, target content.TargetRef, subjects map[content.Subject]bool) (content.Level, error) {
	grants, err := r.store.Grants(ctx, target)
	if err != nil {
		return content.LevelNone, err
	}
	level := content.LevelNone
	for _, g := range grants {
		if subjects[g.Subject] {
			level = level.Max(g.Level)
		}
	}
	return level, nil
}
