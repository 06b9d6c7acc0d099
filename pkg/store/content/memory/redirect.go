package memory

import (
	"context"

	"github.com/freelawproject/wiki/pkg/content"
)

// ResolveRedirect looks up a historical full path.
func (s *MemoryStore) ResolveRedirect(ctx context.Context, oldPath string) (*content.SlugRedirect, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	oldPath = content.CleanPath(oldPath)

	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.redirects[oldPath]
	if !ok {
		return nil, notFound("no redirect recorded", oldPath)
	}
	out := *r
	return &out, nil
}

// ResolveSlugRedirect looks up a historical page slug.
func (s *MemoryStore) ResolveSlugRedirect(ctx context.Context, oldSlug string) (*content.SlugRedirect, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.slugRedirects[oldSlug]
	if !ok {
		return nil, notFound("no redirect recorded", oldSlug)
	}
	out := *r
	return &out, nil
}
