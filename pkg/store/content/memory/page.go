package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/freelawproject/wiki/pkg/content"
)

// CreatePage creates a page and records revision 1 atomically.
func (s *MemoryStore) CreatePage(ctx context.Context, directoryID uuid.UUID, title, markdown string, visibility content.Visibility, ownerID *uuid.UUID) (*content.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	slug := content.Slugify(title)
	if slug == "" {
		return nil, invalidArgument("page title produces an empty slug")
	}
	if !visibility.Valid() {
		return nil, invalidArgument("unknown visibility " + string(visibility))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureRootLocked()

	dir, ok := s.directories[directoryID]
	if !ok {
		return nil, notFound("directory not found", "")
	}

	if _, taken := s.pageBySlug[slug]; taken {
		return nil, pathConflict("a page with this slug already exists", slug)
	}
	path := content.JoinPath(dir.Path, slug)
	if _, ok := s.dirByPath[path]; ok {
		return nil, pathConflict("a directory already exists at this path", path)
	}

	// Live entity wins over any historical redirect.
	delete(s.redirects, path)
	delete(s.slugRedirects, slug)

	now := time.Now()
	page := &content.Page{
		ID:              uuid.New(),
		Slug:            slug,
		DirectoryID:     dir.ID,
		Title:           title,
		Content:         markdown,
		OwnerID:         ownerID,
		Visibility:      visibility,
		CurrentRevision: 1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	s.pages[page.ID] = page
	s.pageBySlug[slug] = page.ID
	s.putRevisionLocked(&content.Revision{
		Entity:        page.Ref(),
		Seq:           1,
		Title:         title,
		Content:       markdown,
		ChangeMessage: "Created",
		AuthorID:      ownerID,
		CreatedAt:     now,
	})

	return copyPage(page), nil
}

// GetPage retrieves a page by id.
func (s *MemoryStore) GetPage(ctx context.Context, id uuid.UUID) (*content.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	page, ok := s.pages[id]
	if !ok {
		return nil, notFound("page not found", "")
	}
	return copyPage(page), nil
}

// GetPageBySlug retrieves a page by its globally unique slug.
func (s *MemoryStore) GetPageBySlug(ctx context.Context, slug string) (*content.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.pageBySlug[slug]
	if !ok {
		return nil, notFound("page not found", slug)
	}
	return copyPage(s.pages[id]), nil
}

// LookupPage resolves a (directory path, slug) pair to a page.
func (s *MemoryStore) LookupPage(ctx context.Context, dirPath, slug string) (*content.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dirPath = content.CleanPath(dirPath)

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.pageBySlug[slug]
	if !ok {
		return nil, notFound("page not found", content.JoinPath(dirPath, slug))
	}
	page := s.pages[id]
	owner, ok := s.directories[page.DirectoryID]
	if !ok || owner.Path != dirPath {
		return nil, notFound("page not found", content.JoinPath(dirPath, slug))
	}
	return copyPage(page), nil
}

// PagesIn lists the pages directly inside a directory.
func (s *MemoryStore) PagesIn(ctx context.Context, id uuid.UUID) ([]*content.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.directories[id]; !ok {
		return nil, notFound("directory not found", "")
	}

	var pages []*content.Page
	for _, p := range s.pages {
		if p.DirectoryID == id {
			pages = append(pages, copyPage(p))
		}
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].Slug < pages[j].Slug })
	return pages, nil
}

// UpdatePage records a content edit and appends a revision. A slug change
// records redirects for the old path and old slug.
func (s *MemoryStore) UpdatePage(ctx context.Context, id uuid.UUID, title, markdown string, visibility content.Visibility, authorID *uuid.UUID, changeMessage string) (*content.Page, *content.Revision, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	newSlug := content.Slugify(title)
	if newSlug == "" {
		return nil, nil, invalidArgument("page title produces an empty slug")
	}
	if !visibility.Valid() {
		return nil, nil, invalidArgument("unknown visibility " + string(visibility))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	page, ok := s.pages[id]
	if !ok {
		return nil, nil, notFound("page not found", "")
	}
	owner := s.directories[page.DirectoryID]

	now := time.Now()
	if newSlug != page.Slug {
		if other, taken := s.pageBySlug[newSlug]; taken && other != id {
			return nil, nil, pathConflict("a page with this slug already exists", newSlug)
		}
		newPath := content.JoinPath(owner.Path, newSlug)
		if _, ok := s.dirByPath[newPath]; ok {
			return nil, nil, pathConflict("a directory already exists at this path", newPath)
		}

		oldPath := page.PathIn(owner.Path)
		s.redirects[oldPath] = &content.SlugRedirect{OldPath: oldPath, Target: page.Ref(), CreatedAt: now}
		s.slugRedirects[page.Slug] = &content.SlugRedirect{OldPath: page.Slug, Target: page.Ref(), CreatedAt: now}

		// Live entity wins at the destination.
		delete(s.redirects, newPath)
		delete(s.slugRedirects, newSlug)

		delete(s.pageBySlug, page.Slug)
		page.Slug = newSlug
		s.pageBySlug[newSlug] = page.ID
	}

	page.Title = title
	page.Content = markdown
	page.Visibility = visibility
	page.UpdatedAt = now
	page.CurrentRevision++

	rev := &content.Revision{
		Entity:        page.Ref(),
		Seq:           page.CurrentRevision,
		Title:         title,
		Content:       markdown,
		ChangeMessage: changeMessage,
		AuthorID:      authorID,
		CreatedAt:     now,
	}
	s.putRevisionLocked(rev)

	return copyPage(page), copyRevision(rev), nil
}

// MovePage moves a page to another directory, keeping its slug.
func (s *MemoryStore) MovePage(ctx context.Context, id, newDirectoryID uuid.UUID) (*content.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	page, ok := s.pages[id]
	if !ok {
		return nil, notFound("page not found", "")
	}
	dir, ok := s.directories[newDirectoryID]
	if !ok {
		return nil, notFound("target directory not found", "")
	}
	if page.DirectoryID == newDirectoryID {
		return copyPage(page), nil
	}

	newPath := page.PathIn(dir.Path)
	if _, ok := s.dirByPath[newPath]; ok {
		return nil, pathConflict("a directory already exists at this path", newPath)
	}

	now := time.Now()
	oldOwner := s.directories[page.DirectoryID]
	oldPath := page.PathIn(oldOwner.Path)
	s.redirects[oldPath] = &content.SlugRedirect{OldPath: oldPath, Target: page.Ref(), CreatedAt: now}
	delete(s.redirects, newPath)

	page.DirectoryID = dir.ID
	page.UpdatedAt = now
	return copyPage(page), nil
}

// PagePath returns the page's current full content path.
func (s *MemoryStore) PagePath(ctx context.Context, id uuid.UUID) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pagePathLocked(id)
}

func (s *MemoryStore) pagePathLocked(id uuid.UUID) (string, error) {
	page, ok := s.pages[id]
	if !ok {
		return "", notFound("page not found", "")
	}
	owner, ok := s.directories[page.DirectoryID]
	if !ok {
		return "", &content.StoreError{Code: content.ErrIO, Message: "dangling directory reference"}
	}
	return page.PathIn(owner.Path), nil
}
