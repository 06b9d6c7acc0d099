package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/freelawproject/wiki/pkg/content"
)

// SetGrants upserts subject→level grants on a target.
func (s *MemoryStore) SetGrants(ctx context.Context, target content.TargetRef, grants []content.Grant) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkTargetLocked(target); err != nil {
		return err
	}
	s.setGrantsLocked(target, grants)
	return nil
}

func (s *MemoryStore) setGrantsLocked(target content.TargetRef, grants []content.Grant) {
	for _, g := range grants {
		key := grantKey{target: target, subject: g.Subject}
		if g.Level == content.LevelNone {
			delete(s.grants, key)
			continue
		}
		s.grants[key] = g.Level
	}
}

// Grants lists the direct grants on a target.
func (s *MemoryStore) Grants(ctx context.Context, target content.TargetRef) ([]content.Grant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.checkTargetLocked(target); err != nil {
		return nil, err
	}

	var grants []content.Grant
	for key, level := range s.grants {
		if key.target == target {
			grants = append(grants, content.Grant{Subject: key.subject, Level: level})
		}
	}
	sort.Slice(grants, func(i, j int) bool {
		a, b := grants[i].Subject, grants[j].Subject
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.ID.String() < b.ID.String()
	})
	return grants, nil
}

// ApplyGrantsRecursively upserts grants on a directory and every
// descendant. The whole write happens under one lock acquisition, so it
// is atomic with respect to every other store operation.
func (s *MemoryStore) ApplyGrantsRecursively(ctx context.Context, directoryID uuid.UUID, grants []content.Grant) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	// Snapshot the subtree first, then write; no recursion, bounded work.
	refs, err := s.descendantsLocked(directoryID)
	if err != nil {
		return err
	}
	s.setGrantsLocked(content.DirectoryRef(directoryID), grants)
	for _, ref := range refs {
		s.setGrantsLocked(ref, grants)
	}
	return nil
}

func (s *MemoryStore) checkTargetLocked(target content.TargetRef) error {
	switch target.Kind {
	case content.KindDirectory:
		if _, ok := s.directories[target.ID]; !ok {
			return notFound("directory not found", "")
		}
	case content.KindPage:
		if _, ok := s.pages[target.ID]; !ok {
			return notFound("page not found", "")
		}
	default:
		return invalidArgument("unknown target kind " + string(target.Kind))
	}
	return nil
}
