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

func getPageTxn(txn *badger.Txn, id uuid.UUID) (*content.Page, error) {
	var page content.Page
	err := txnGetJSON(txn, keyPage(id), &page)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, notFound("page not found", "")
	}
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func putPageTxn(txn *badger.Txn, page *content.Page) error {
	return txnSetJSON(txn, keyPage(page.ID), page)
}

// pageIDsInTxn scans the per-directory page index.
func pageIDsInTxn(txn *badger.Txn, dirID uuid.UUID) ([]uuid.UUID, []string, error) {
	var (
		ids   []uuid.UUID
		slugs []string
	)
	prefix := keyPageInDirPrefix(dirID)
	it := txn.NewIterator(badger.IteratorOptions{Prefix: prefix})
	defer it.Close()
	for it.Rewind(); it.Valid(); it.Next() {
		item := it.Item()
		slug := string(item.Key()[len(prefix):])
		var pageID uuid.UUID
		err := item.Value(func(val []byte) error {
			var derr error
			pageID, derr = decodeUUID(val)
			return derr
		})
		if err != nil {
			return nil, nil, err
		}
		ids = append(ids, pageID)
		slugs = append(slugs, slug)
	}
	return ids, slugs, nil
}

func pagePathTxn(txn *badger.Txn, page *content.Page) (string, error) {
	dir, err := getDirectoryTxn(txn, page.DirectoryID)
	if err != nil {
		return "", err
	}
	return page.PathIn(dir.Path), nil
}

// CreatePage creates a page inside a directory. Page slugs are unique
// across the whole tree, not just within the owning directory.
func (s *BadgerContentStore) CreatePage(ctx context.Context, directoryID uuid.UUID, title, markdown string, visibility content.Visibility, ownerID *uuid.UUID) (*content.Page, error) {
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

	var page *content.Page
	err := s.db.Update(func(txn *badger.Txn) error {
		dir, err := getDirectoryTxn(txn, directoryID)
		if err != nil {
			return err
		}
		if _, err := txn.Get(keyPageSlug(slug)); err == nil {
			return pathConflict("a page with this slug already exists", slug)
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		path := content.JoinPath(dir.Path, slug)
		if _, err := txn.Get(keyDirectoryPath(path)); err == nil {
			return pathConflict("a directory already exists at this path", path)
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		// Live entity wins over historical redirects at this slot.
		if err := txn.Delete(keyRedirect(path)); err != nil {
			return err
		}
		if err := txn.Delete(keySlugRedirect(slug)); err != nil {
			return err
		}

		now := time.Now()
		page = &content.Page{
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
		if err := putPageTxn(txn, page); err != nil {
			return err
		}
		if err := txn.Set(keyPageSlug(slug), encodeUUID(page.ID)); err != nil {
			return err
		}
		if err := txn.Set(keyPageInDir(dir.ID, slug), encodeUUID(page.ID)); err != nil {
			return err
		}
		return putRevisionTxn(txn, &content.Revision{
			Entity:        page.Ref(),
			Seq:           1,
			Title:         title,
			Content:       markdown,
			ChangeMessage: "Created",
			AuthorID:      ownerID,
			CreatedAt:     now,
		})
	})
	if err != nil {
		return nil, mapErr(err)
	}
	return page, nil
}

// GetPage retrieves a page by id.
func (s *BadgerContentStore) GetPage(ctx context.Context, id uuid.UUID) (*content.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var page *content.Page
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		page, err = getPageTxn(txn, id)
		return err
	})
	return page, mapErr(err)
}

// GetPageBySlug retrieves a page by its globally unique slug.
func (s *BadgerContentStore) GetPageBySlug(ctx context.Context, slug string) (*content.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var page *content.Page
	err := s.db.View(func(txn *badger.Txn) error {
		id, err := txnGetUUID(txn, keyPageSlug(slug))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return notFound("page not found", slug)
		}
		if err != nil {
			return err
		}
		page, err = getPageTxn(txn, id)
		return err
	})
	return page, mapErr(err)
}

// LookupPage finds a page by the path of its owning directory plus its slug.
func (s *BadgerContentStore) LookupPage(ctx context.Context, dirPath, slug string) (*content.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dirPath = content.CleanPath(dirPath)

	var page *content.Page
	err := s.db.View(func(txn *badger.Txn) error {
		dirID, err := dirIDByPathTxn(txn, dirPath)
		if err != nil {
			return err
		}
		pageID, err := txnGetUUID(txn, keyPageInDir(dirID, slug))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return notFound("page not found", content.JoinPath(dirPath, slug))
		}
		if err != nil {
			return err
		}
		page, err = getPageTxn(txn, pageID)
		return err
	})
	return page, mapErr(err)
}

// PagesIn lists the pages directly inside a directory.
func (s *BadgerContentStore) PagesIn(ctx context.Context, dirID uuid.UUID) ([]*content.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var pages []*content.Page
	err := s.db.View(func(txn *badger.Txn) error {
		if _, err := getDirectoryTxn(txn, dirID); err != nil {
			return err
		}
		ids, _, err := pageIDsInTxn(txn, dirID)
		if err != nil {
			return err
		}
		for _, id := range ids {
			page, err := getPageTxn(txn, id)
			if err != nil {
				return err
			}
			pages = append(pages, page)
		}
		return nil
	})
	if err != nil {
		return nil, mapErr(err)
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].Slug < pages[j].Slug })
	return pages, nil
}

// UpdatePage records an edit and appends a revision. A title change that
// alters the slug leaves redirects behind for both the old path and the
// old slug.
func (s *BadgerContentStore) UpdatePage(ctx context.Context, id uuid.UUID, title, markdown string, visibility content.Visibility, authorID *uuid.UUID, changeMessage string) (*content.Page, *content.Revision, error) {
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

	var (
		page *content.Page
		rev  *content.Revision
	)
	err := s.db.Update(func(txn *badger.Txn) error {
		var err error
		page, err = getPageTxn(txn, id)
		if err != nil {
			return err
		}
		dir, err := getDirectoryTxn(txn, page.DirectoryID)
		if err != nil {
			return err
		}

		now := time.Now()
		if newSlug != page.Slug {
			if _, err := txn.Get(keyPageSlug(newSlug)); err == nil {
				return pathConflict("a page with this slug already exists", newSlug)
			} else if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
			newPath := content.JoinPath(dir.Path, newSlug)
			if _, err := txn.Get(keyDirectoryPath(newPath)); err == nil {
				return pathConflict("a directory already exists at this path", newPath)
			} else if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}

			oldPath := page.PathIn(dir.Path)
			if err := putRedirectTxn(txn, oldPath, page.Ref(), now); err != nil {
				return err
			}
			if err := putSlugRedirectTxn(txn, page.Slug, page.Ref(), now); err != nil {
				return err
			}
			if err := txn.Delete(keyRedirect(newPath)); err != nil {
				return err
			}
			if err := txn.Delete(keySlugRedirect(newSlug)); err != nil {
				return err
			}
			if err := txn.Delete(keyPageSlug(page.Slug)); err != nil {
				return err
			}
			if err := txn.Delete(keyPageInDir(dir.ID, page.Slug)); err != nil {
				return err
			}
			if err := txn.Set(keyPageSlug(newSlug), encodeUUID(page.ID)); err != nil {
				return err
			}
			if err := txn.Set(keyPageInDir(dir.ID, newSlug), encodeUUID(page.ID)); err != nil {
				return err
			}
			page.Slug = newSlug
		}

		page.Title = title
		page.Content = markdown
		page.Visibility = visibility
		page.UpdatedAt = now
		page.CurrentRevision++
		if err := putPageTxn(txn, page); err != nil {
			return err
		}

		rev = &content.Revision{
			Entity:        page.Ref(),
			Seq:           page.CurrentRevision,
			Title:         title,
			Content:       markdown,
			ChangeMessage: changeMessage,
			AuthorID:      authorID,
			CreatedAt:     now,
		}
		return putRevisionTxn(txn, rev)
	})
	if err != nil {
		return nil, nil, mapErr(err)
	}
	return page, rev, nil
}

// MovePage reparents a page into another directory, keeping its slug.
func (s *BadgerContentStore) MovePage(ctx context.Context, id, newDirectoryID uuid.UUID) (*content.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var page *content.Page
	err := s.db.Update(func(txn *badger.Txn) error {
		var err error
		page, err = getPageTxn(txn, id)
		if err != nil {
			return err
		}
		if page.DirectoryID == newDirectoryID {
			return nil
		}
		oldDir, err := getDirectoryTxn(txn, page.DirectoryID)
		if err != nil {
			return err
		}
		newDir, err := getDirectoryTxn(txn, newDirectoryID)
		if err != nil {
			if content.IsNotFound(err) {
				return notFound("target directory not found", "")
			}
			return err
		}

		newPath := content.JoinPath(newDir.Path, page.Slug)
		if _, err := txn.Get(keyDirectoryPath(newPath)); err == nil {
			return pathConflict("a directory already exists at this path", newPath)
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		now := time.Now()
		oldPath := page.PathIn(oldDir.Path)
		if err := putRedirectTxn(txn, oldPath, page.Ref(), now); err != nil {
			return err
		}
		if err := txn.Delete(keyRedirect(newPath)); err != nil {
			return err
		}
		if err := txn.Delete(keyPageInDir(oldDir.ID, page.Slug)); err != nil {
			return err
		}
		if err := txn.Set(keyPageInDir(newDir.ID, page.Slug), encodeUUID(page.ID)); err != nil {
			return err
		}

		page.DirectoryID = newDir.ID
		page.UpdatedAt = now
		return putPageTxn(txn, page)
	})
	if err != nil {
		return nil, mapErr(err)
	}
	return page, nil
}

// PagePath returns the current full path of a page.
func (s *BadgerContentStore) PagePath(ctx context.Context, id uuid.UUID) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var path string
	err := s.db.View(func(txn *badger.Txn) error {
		page, err := getPageTxn(txn, id)
		if err != nil {
			return err
		}
		path, err = pagePathTxn(txn, page)
		return err
	})
	return path, mapErr(err)
}
