package badger

import (
	"context"
	"errors"
	"sort"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/freelawproject/wiki/pkg/content"
)

func getDirectoryTxn(txn *badger.Txn, id uuid.UUID) (*content.Directory, error) {
	var dir content.Directory
	err := txnGetJSON(txn, keyDirectory(id), &dir)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, notFound("directory not found", "")
	}
	if err != nil {
		return nil, err
	}
	return &dir, nil
}

func dirIDByPathTxn(txn *badger.Txn, path string) (uuid.UUID, error) {
	id, err := txnGetUUID(txn, keyDirectoryPath(path))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return uuid.Nil, notFound("directory not found", path)
	}
	return id, err
}

func putDirectoryTxn(txn *badger.Txn, dir *content.Directory) error {
	return txnSetJSON(txn, keyDirectory(dir.ID), dir)
}

// checkPathFreeTxn fails with ErrPathConflict if a live directory or page
// owns path.
func checkPathFreeTxn(txn *badger.Txn, path string) error {
	if _, err := txn.Get(keyDirectoryPath(path)); err == nil {
		return pathConflict("a directory already exists at this path", path)
	} else if !errors.Is(err, badger.ErrKeyNotFound) {
		return err
	}

	dirPath, slug := content.SplitLast(path)
	ownerID, err := dirIDByPathTxn(txn, dirPath)
	if err != nil {
		if content.IsNotFound(err) {
			return nil // no such directory, so no page can live there
		}
		return err
	}
	if _, err := txn.Get(keyPageInDir(ownerID, slug)); err == nil {
		return pathConflict("a page already exists at this path", path)
	} else if !errors.Is(err, badger.ErrKeyNotFound) {
		return err
	}
	return nil
}

// Root returns the root directory.
func (s *BadgerContentStore) Root(ctx context.Context) (*content.Directory, error) {
	return s.GetDirectoryByPath(ctx, "")
}

// GetDirectory retrieves a directory by id.
func (s *BadgerContentStore) GetDirectory(ctx context.Context, id uuid.UUID) (*content.Directory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var dir *content.Directory
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		dir, err = getDirectoryTxn(txn, id)
		return err
	})
	return dir, mapErr(err)
}

// GetDirectoryByPath retrieves a directory by its exact path.
func (s *BadgerContentStore) GetDirectoryByPath(ctx context.Context, path string) (*content.Directory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path = content.CleanPath(path)

	var dir *content.Directory
	err := s.db.View(func(txn *badger.Txn) error {
		id, err := dirIDByPathTxn(txn, path)
		if err != nil {
			return err
		}
		dir, err = getDirectoryTxn(txn, id)
		return err
	})
	return dir, mapErr(err)
}

// CreateDirectory creates a child directory under parentID.
func (s *BadgerContentStore) CreateDirectory(ctx context.Context, parentID uuid.UUID, title, description string, visibility content.Visibility, ownerID *uuid.UUID) (*content.Directory, error) {
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

	var dir *content.Directory
	err := s.db.Update(func(txn *badger.Txn) error {
		parent, err := getDirectoryTxn(txn, parentID)
		if err != nil {
			return err
		}
		path := content.JoinPath(parent.Path, slug)
		if err := checkPathFreeTxn(txn, path); err != nil {
			return err
		}
		// Live entity wins over any historical redirect at this path.
		if err := txn.Delete(keyRedirect(path)); err != nil {
			return err
		}

		now := time.Now()
		dir = &content.Directory{
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
		if err := putDirectoryTxn(txn, dir); err != nil {
			return err
		}
		if err := txn.Set(keyDirectoryPath(path), encodeUUID(dir.ID)); err != nil {
			return err
		}
		if err := txn.Set(keyDirChild(parent.ID, slug), encodeUUID(dir.ID)); err != nil {
			return err
		}
		return putRevisionTxn(txn, &content.Revision{
			Entity:        dir.Ref(),
			Seq:           1,
			Title:         title,
			Content:       description,
			ChangeMessage: "Created",
			AuthorID:      ownerID,
			CreatedAt:     now,
		})
	})
	if err != nil {
		return nil, mapErr(err)
	}
	return dir, nil
}

// ChildDirectories lists the direct subdirectories of a directory.
func (s *BadgerContentStore) ChildDirectories(ctx context.Context, id uuid.UUID) ([]*content.Directory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var children []*content.Directory
	err := s.db.View(func(txn *badger.Txn) error {
		if _, err := getDirectoryTxn(txn, id); err != nil {
			return err
		}
		ids, _, err := childDirIDsTxn(txn, id)
		if err != nil {
			return err
		}
		for _, childID := range ids {
			child, err := getDirectoryTxn(txn, childID)
			if err != nil {
				return err
			}
			children = append(children, child)
		}
		return nil
	})
	if err != nil {
		return nil, mapErr(err)
	}
	sort.Slice(children, func(i, j int) bool { return children[i].Path < children[j].Path })
	return children, nil
}

// childDirIDsTxn scans the child index of a directory.
func childDirIDsTxn(txn *badger.Txn, id uuid.UUID) ([]uuid.UUID, []string, error) {
	var (
		ids   []uuid.UUID
		slugs []string
	)
	prefix := keyDirChildPrefix(id)
	it := txn.NewIterator(badger.IteratorOptions{Prefix: prefix})
	defer it.Close()
	for it.Rewind(); it.Valid(); it.Next() {
		item := it.Item()
		slug := string(item.Key()[len(prefix):])
		var childID uuid.UUID
		err := item.Value(func(val []byte) error {
			var derr error
			childID, derr = decodeUUID(val)
			return derr
		})
		if err != nil {
			return nil, nil, err
		}
		ids = append(ids, childID)
		slugs = append(slugs, slug)
	}
	return ids, slugs, nil
}

// Ancestors returns the root-first ancestor chain of a directory.
func (s *BadgerContentStore) Ancestors(ctx context.Context, id uuid.UUID) ([]*content.Directory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var chain []*content.Directory
	err := s.db.View(func(txn *badger.Txn) error {
		dir, err := getDirectoryTxn(txn, id)
		if err != nil {
			return err
		}
		for dir.ParentID != nil {
			dir, err = getDirectoryTxn(txn, *dir.ParentID)
			if err != nil {
				return err
			}
			chain = append(chain, dir)
		}
		return nil
	})
	if err != nil {
		return nil, mapErr(err)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

// Descendants returns a snapshot of every entity below a directory.
func (s *BadgerContentStore) Descendants(ctx context.Context, id uuid.UUID) ([]content.TargetRef, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var refs []content.TargetRef
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		refs, err = descendantsTxn(txn, id)
		return err
	})
	if err != nil {
		return nil, mapErr(err)
	}
	return refs, nil
}

// descendantsTxn walks the subtree iteratively over the child indexes.
// The directory itself is excluded.
func descendantsTxn(txn *badger.Txn, id uuid.UUID) ([]content.TargetRef, error) {
	if _, err := getDirectoryTxn(txn, id); err != nil {
		return nil, err
	}

	var refs []content.TargetRef
	stack := []uuid.UUID{id}
	for len(stack) > 0 {
		dirID := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if dirID != id {
			refs = append(refs, content.DirectoryRef(dirID))
		}
		pageIDs, _, err := pageIDsInTxn(txn, dirID)
		if err != nil {
			return nil, err
		}
		for _, pageID := range pageIDs {
			refs = append(refs, content.PageRef(pageID))
		}
		childIDs, _, err := childDirIDsTxn(txn, dirID)
		if err != nil {
			return nil, err
		}
		stack = append(stack, childIDs...)
	}
	return refs, nil
}

// isAncestorTxn reports whether ancestorID appears in dir's parent chain
// (dir itself included).
func isAncestorTxn(txn *badger.Txn, ancestorID uuid.UUID, dir *content.Directory) (bool, error) {
	for {
		if dir.ID == ancestorID {
			return true, nil
		}
		if dir.ParentID == nil {
			return false, nil
		}
		var err error
		dir, err = getDirectoryTxn(txn, *dir.ParentID)
		if err != nil {
			return false, err
		}
	}
}

// MoveDirectory renames and/or reparents a directory atomically.
func (s *BadgerContentStore) MoveDirectory(ctx context.Context, id, newParentID uuid.UUID, newTitle string) (*content.Directory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	slug := content.Slugify(newTitle)
	if slug == "" {
		return nil, invalidArgument("directory title produces an empty slug")
	}

	var dir *content.Directory
	err := s.db.Update(func(txn *badger.Txn) error {
		var err error
		dir, err = getDirectoryTxn(txn, id)
		if err != nil {
			return err
		}
		if dir.ParentID == nil {
			return invalidArgument("the root directory cannot be moved")
		}
		parent, err := getDirectoryTxn(txn, newParentID)
		if err != nil {
			if content.IsNotFound(err) {
				return notFound("target parent directory not found", "")
			}
			return err
		}
		cyclic, err := isAncestorTxn(txn, id, parent)
		if err != nil {
			return err
		}
		if cyclic {
			return pathConflict("move would make directory its own ancestor", dir.Path)
		}

		newPath := content.JoinPath(parent.Path, slug)
		if newPath == dir.Path && newTitle == dir.Title {
			return nil
		}

		oldParentID := *dir.ParentID
		oldSlug := dir.Slug()
		dir.Title = newTitle
		dir.ParentID = &parent.ID

		if newPath != dir.Path {
			if err := checkPathFreeTxn(txn, newPath); err != nil {
				return err
			}
			if err := moveSubtreeTxn(txn, dir, newPath); err != nil {
				return err
			}
		} else {
			dir.UpdatedAt = time.Now()
			if err := putDirectoryTxn(txn, dir); err != nil {
				return err
			}
		}

		// Reindex under the new parent/slug.
		if err := txn.Delete(keyDirChild(oldParentID, oldSlug)); err != nil {
			return err
		}
		return txn.Set(keyDirChild(parent.ID, slug), encodeUUID(dir.ID))
	})
	if err != nil {
		return nil, mapErr(err)
	}
	return dir, nil
}

// UpdateDirectory records a content edit and appends a revision.
func (s *BadgerContentStore) UpdateDirectory(ctx context.Context, id uuid.UUID, title, description string, visibility content.Visibility, authorID *uuid.UUID, changeMessage string) (*content.Directory, *content.Revision, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if !visibility.Valid() {
		return nil, nil, invalidArgument("unknown visibility " + string(visibility))
	}

	var (
		dir *content.Directory
		rev *content.Revision
	)
	err := s.db.Update(func(txn *badger.Txn) error {
		var err error
		dir, err = getDirectoryTxn(txn, id)
		if err != nil {
			return err
		}

		if dir.ParentID != nil {
			slug := content.Slugify(title)
			if slug == "" {
				return invalidArgument("directory title produces an empty slug")
			}
			if slug != dir.Slug() {
				parentPath, _ := content.SplitLast(dir.Path)
				newPath := content.JoinPath(parentPath, slug)
				if err := checkPathFreeTxn(txn, newPath); err != nil {
					return err
				}
				oldSlug := dir.Slug()
				if err := moveSubtreeTxn(txn, dir, newPath); err != nil {
					return err
				}
				if err := txn.Delete(keyDirChild(*dir.ParentID, oldSlug)); err != nil {
					return err
				}
				if err := txn.Set(keyDirChild(*dir.ParentID, slug), encodeUUID(dir.ID)); err != nil {
					return err
				}
			}
		}

		now := time.Now()
		dir.Title = title
		dir.Description = description
		dir.Visibility = visibility
		dir.UpdatedAt = now
		dir.CurrentRevision++
		if err := putDirectoryTxn(txn, dir); err != nil {
			return err
		}

		rev = &content.Revision{
			Entity:        dir.Ref(),
			Seq:           dir.CurrentRevision,
			Title:         title,
			Content:       description,
			ChangeMessage: changeMessage,
			AuthorID:      authorID,
			CreatedAt:     now,
		}
		return putRevisionTxn(txn, rev)
	})
	if err != nil {
		return nil, nil, mapErr(err)
	}
	return dir, rev, nil
}

// moveSubtreeTxn rewrites the derived paths of dir and every descendant
// to sit under newPath, records redirects for every old path, and drops
// redirects parked at any of the new paths (the live entity wins). The
// caller is responsible for dir's parent/title fields and child-index
// entries; this helper persists the updated records and path indexes.
func moveSubtreeTxn(txn *badger.Txn, dir *content.Directory, newPath string) error {
	oldPath := dir.Path
	now := time.Now()

	type node struct {
		dir     *content.Directory
		oldPath string
	}
	stack := []node{{dir: dir, oldPath: oldPath}}

	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		moved := content.ReplacePathPrefix(n.oldPath, oldPath, newPath)
		if err := putRedirectTxn(txn, n.oldPath, n.dir.Ref(), now); err != nil {
			return err
		}
		if err := txn.Delete(keyRedirect(moved)); err != nil {
			return err
		}
		if err := txn.Delete(keyDirectoryPath(n.oldPath)); err != nil {
			return err
		}
		n.dir.Path = moved
		n.dir.UpdatedAt = now
		if err := putDirectoryTxn(txn, n.dir); err != nil {
			return err
		}
		if err := txn.Set(keyDirectoryPath(moved), encodeUUID(n.dir.ID)); err != nil {
			return err
		}

		pageIDs, slugs, err := pageIDsInTxn(txn, n.dir.ID)
		if err != nil {
			return err
		}
		for i, pageID := range pageIDs {
			oldPagePath := content.JoinPath(n.oldPath, slugs[i])
			newPagePath := content.JoinPath(moved, slugs[i])
			if err := putRedirectTxn(txn, oldPagePath, content.PageRef(pageID), now); err != nil {
				return err
			}
			if err := txn.Delete(keyRedirect(newPagePath)); err != nil {
				return err
			}
		}

		childIDs, _, err := childDirIDsTxn(txn, n.dir.ID)
		if err != nil {
			return err
		}
		for _, childID := range childIDs {
			child, err := getDirectoryTxn(txn, childID)
			if err != nil {
				return err
			}
			stack = append(stack, node{dir: child, oldPath: child.Path})
		}
	}
	return nil
}
