package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/freelawproject/wiki/pkg/content"
)

// Root returns the root directory, creating it on first use.
func (s *MemoryStore) Root(ctx context.Context) (*content.Directory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyDirectory(s.ensureRootLocked()), nil
}

// CreateDirectory creates a child directory under parentID.
func (s *MemoryStore) CreateDirectory(ctx context.Context, parentID uuid.UUID, title, description string, visibility content.Visibility, ownerID *uuid.UUID) (*content.Directory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	slug := content.Slugify(title)
	if slug == "" {
		return nil, invalidArgument("directory title produces an empty slug")
	}
	if !visibility.Valid() {
		return nil, invalidArgument("unknown visibility " + string(visibility))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureRootLocked()

	parent, ok := s.directories[parentID]
	if !ok {
		return nil, notFound("parent directory not found", "")
	}

	path := content.JoinPath(parent.Path, slug)
	if err := s.checkPathFreeLocked(path); err != nil {
		return nil, err
	}

	// Live entity wins: clear any redirect parked at the new path.
	delete(s.redirects, path)

	now := time.Now()
	dir := &content.Directory{
		ID:              uuid.New(),
		Path:            path,
		Title:           title,
		Description:     description,
		Visibility:      visibility,
		ParentID:        &parent.ID,
		OwnerID:         ownerID,
		CurrentRevision: 1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	s.directories[dir.ID] = dir
	s.dirByPath[path] = dir.ID
	s.putRevisionLocked(&content.Revision{
		Entity:        dir.Ref(),
		Seq:           1,
		Title:         title,
		Content:       description,
		ChangeMessage: "Created",
		AuthorID:      ownerID,
		CreatedAt:     now,
	})

	return copyDirectory(dir), nil
}

// GetDirectory retrieves a directory by id.
func (s *MemoryStore) GetDirectory(ctx context.Context, id uuid.UUID) (*content.Directory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	dir, ok := s.directories[id]
	if !ok {
		return nil, notFound("directory not found", "")
	}
	return copyDirectory(dir), nil
}

// GetDirectoryByPath retrieves a directory by its exact path.
func (s *MemoryStore) GetDirectoryByPath(ctx context.Context, path string) (*content.Directory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path = content.CleanPath(path)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureRootLocked()

	id, ok := s.dirByPath[path]
	if !ok {
		return nil, notFound("directory not found", path)
	}
	return copyDirectory(s.directories[id]), nil
}

// ChildDirectories lists the direct subdirectories of a directory.
func (s *MemoryStore) ChildDirectories(ctx context.Context, id uuid.UUID) ([]*content.Directory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.directories[id]; !ok {
		return nil, notFound("directory not found", "")
	}

	var children []*content.Directory
	for _, d := range s.directories {
		if d.ParentID != nil && *d.ParentID == id {
			children = append(children, copyDirectory(d))
		}
	}
	sort.Slice(children, func(i, j int) bool { return children[i].Path < children[j].Path })
	return children, nil
}

// Ancestors returns the root-first ancestor chain of a directory.
func (s *MemoryStore) Ancestors(ctx context.Context, id uuid.UUID) ([]*content.Directory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ancestorsLocked(id)
}

func (s *MemoryStore) ancestorsLocked(id uuid.UUID) ([]*content.Directory, error) {
	dir, ok := s.directories[id]
	if !ok {
		return nil, notFound("directory not found", "")
	}

	var chain []*content.Directory
	for dir.ParentID != nil {
		parent, ok := s.directories[*dir.ParentID]
		if !ok {
			return nil, &content.StoreError{Code: content.ErrIO, Message: "dangling parent reference"}
		}
		chain = append(chain, copyDirectory(parent))
		dir = parent
	}
	// Walked child-to-root; callers expect root first.
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

// Descendants returns a snapshot of every entity below a directory.
func (s *MemoryStore) Descendants(ctx context.Context, id uuid.UUID) ([]content.TargetRef, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.descendantsLocked(id)
}

func (s *MemoryStore) descendantsLocked(id uuid.UUID) ([]content.TargetRef, error) {
	root, ok := s.directories[id]
	if !ok {
		return nil, notFound("directory not found", "")
	}

	var refs []content.TargetRef
	dirIDs := map[uuid.UUID]bool{id: true}
	for _, d := range s.directories {
		if d.ID != id && content.IsPathPrefix(root.Path, d.Path) && s.isBelowLocked(d, id) {
			refs = append(refs, d.Ref())
			dirIDs[d.ID] = true
		}
	}
	for _, p := range s.pages {
		if dirIDs[p.DirectoryID] {
			refs = append(refs, p.Ref())
		}
	}
	return refs, nil
}

// isBelowLocked reports whether dir sits somewhere below ancestorID.
func (s *MemoryStore) isBelowLocked(dir *content.Directory, ancestorID uuid.UUID) bool {
	for dir.ParentID != nil {
		if *dir.ParentID == ancestorID {
			return true
		}
		parent, ok := s.directories[*dir.ParentID]
		if !ok {
			return false
		}
		dir = parent
	}
	return false
}

// MoveDirectory renames and/or reparents a directory atomically.
func (s *MemoryStore) MoveDirectory(ctx context.Context, id, newParentID uuid.UUID, newTitle string) (*content.Directory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	slug := content.Slugify(newTitle)
	if slug == "" {
		return nil, invalidArgument("directory title produces an empty slug")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir, ok := s.directories[id]
	if !ok {
		return nil, notFound("directory not found", "")
	}
	if dir.ParentID == nil {
		return nil, invalidArgument("the root directory cannot be moved")
	}
	parent, ok := s.directories[newParentID]
	if !ok {
		return nil, notFound("target parent directory not found", "")
	}

	// Cycle check: the new parent must not be the directory itself or
	// anything below it.
	if newParentID == id || s.isBelowLocked(parent, id) {
		return nil, pathConflict("move would make directory its own ancestor", dir.Path)
	}

	newPath := content.JoinPath(parent.Path, slug)
	if newPath == dir.Path && newTitle == dir.Title {
		return copyDirectory(dir), nil
	}
	if newPath != dir.Path {
		if err := s.checkPathFreeLocked(newPath); err != nil {
			return nil, err
		}
		s.rewriteSubtreeLocked(dir, newPath)
	}
	dir.ParentID = &parent.ID
	dir.Title = newTitle
	dir.UpdatedAt = time.Now()

	return copyDirectory(dir), nil
}

// UpdateDirectory records a content edit and appends a revision.
func (s *MemoryStore) UpdateDirectory(ctx context.Context, id uuid.UUID, title, description string, visibility content.Visibility, authorID *uuid.UUID, changeMessage string) (*content.Directory, *content.Revision, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if !visibility.Valid() {
		return nil, nil, invalidArgument("unknown visibility " + string(visibility))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir, ok := s.directories[id]
	if !ok {
		return nil, nil, notFound("directory not found", "")
	}

	if dir.ParentID != nil {
		slug := content.Slugify(title)
		if slug == "" {
			return nil, nil, invalidArgument("directory title produces an empty slug")
		}
		if slug != dir.Slug() {
			parentPath, _ := content.SplitLast(dir.Path)
			newPath := content.JoinPath(parentPath, slug)
			if err := s.checkPathFreeLocked(newPath); err != nil {
				return nil, nil, err
			}
			s.rewriteSubtreeLocked(dir, newPath)
		}
	}

	now := time.Now()
	dir.Title = title
	dir.Description = description
	dir.Visibility = visibility
	dir.UpdatedAt = now
	dir.CurrentRevision++

	rev := &content.Revision{
		Entity:        dir.Ref(),
		Seq:           dir.CurrentRevision,
		Title:         title,
		Content:       description,
		ChangeMessage: changeMessage,
		AuthorID:      authorID,
		CreatedAt:     now,
	}
	s.putRevisionLocked(rev)

	return copyDirectory(dir), copyRevision(rev), nil
}

// checkPathFreeLocked fails with ErrPathConflict if a live directory or
// page currently owns path.
func (s *MemoryStore) checkPathFreeLocked(path string) error {
	if _, ok := s.dirByPath[path]; ok {
		return pathConflict("a directory already exists at this path", path)
	}
	dirPath, slug := content.SplitLast(path)
	if id, ok := s.pageBySlug[slug]; ok {
		page := s.pages[id]
		if owner, ok := s.directories[page.DirectoryID]; ok && owner.Path == dirPath {
			return pathConflict("a page already exists at this path", path)
		}
	}
	return nil
}

// rewriteSubtreeLocked moves dir to newPath: the directory's own derived
// path and every descendant's derived path are rewritten, and redirects
// are recorded (by reference) for every old path. Redirects parked at any
// of the new paths are dropped: the live entity wins.
func (s *MemoryStore) rewriteSubtreeLocked(dir *content.Directory, newPath string) {
	oldPath := dir.Path
	now := time.Now()

	record := func(old string, target content.TargetRef, newOwned string) {
		s.redirects[old] = &content.SlugRedirect{OldPath: old, Target: target, CreatedAt: now}
		delete(s.redirects, newOwned)
	}

	for _, d := range s.directories {
		if !content.IsPathPrefix(oldPath, d.Path) {
			continue
		}
		if d.ID != dir.ID && !s.isBelowLocked(d, dir.ID) {
			continue
		}
		moved := content.ReplacePathPrefix(d.Path, oldPath, newPath)
		record(d.Path, d.Ref(), moved)
		delete(s.dirByPath, d.Path)
		d.Path = moved
		d.UpdatedAt = now
		s.dirByPath[moved] = d.ID
	}
	for _, p := range s.pages {
		owner, ok := s.directories[p.DirectoryID]
		if !ok || !content.IsPathPrefix(newPath, owner.Path) {
			// owner paths were rewritten above, so membership in the
			// subtree is now expressed in terms of newPath
			continue
		}
		if owner.ID != dir.ID && !s.isBelowLocked(owner, dir.ID) {
			continue
		}
		oldOwnerPath := content.ReplacePathPrefix(owner.Path, newPath, oldPath)
		record(p.PathIn(oldOwnerPath), p.Ref(), p.PathIn(owner.Path))
	}
}
