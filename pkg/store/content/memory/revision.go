package memory

import (
	"context"
	"sort"

	"github.com/freelawproject/wiki/pkg/content"
)

func (s *MemoryStore) putRevisionLocked(rev *content.Revision) {
	key := revisionKey{kind: rev.Entity.Kind, id: rev.Entity.ID, seq: rev.Seq}
	s.revisions[key] = rev
}

// GetRevision retrieves one revision of an entity by sequence number.
func (s *MemoryStore) GetRevision(ctx context.Context, entity content.TargetRef, seq uint64) (*content.Revision, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rev, ok := s.revisions[revisionKey{kind: entity.Kind, id: entity.ID, seq: seq}]
	if !ok {
		return nil, notFound("revision not found", "")
	}
	return copyRevision(rev), nil
}

// ListRevisions lists an entity's revisions, newest first.
func (s *MemoryStore) ListRevisions(ctx context.Context, entity content.TargetRef) ([]*content.Revision, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var revs []*content.Revision
	for key, rev := range s.revisions {
		if key.kind == entity.Kind && key.id == entity.ID {
			revs = append(revs, copyRevision(rev))
		}
	}
	sort.Slice(revs, func(i, j int) bool { return revs[i].Seq > revs[j].Seq })
	return revs, nil
}
