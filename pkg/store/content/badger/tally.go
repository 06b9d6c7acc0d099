package badger

import (
	"context"
	"strings"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/freelawproject/wiki/pkg/content"
)

// RecordView appends a tally row for a page. Rows are summed into the
// denormalized per-page counter by SyncViewCounts.
func (s *BadgerContentStore) RecordView(ctx context.Context, pageID uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := getPageTxn(txn, pageID); err != nil {
			return err
		}
		return txn.Set(keyTally(pageID, uuid.New()), encodeUint64(1))
	})
	return mapErr(err)
}

// SyncViewCounts folds tally rows into Page.ViewCount and deletes exactly
// the rows it summed. The transaction's snapshot bounds the working set:
// rows written after it began are left for the next sync.
func (s *BadgerContentStore) SyncViewCounts(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	updated := 0
	err := s.db.Update(func(txn *badger.Txn) error {
		sums := make(map[uuid.UUID]uint64)
		var keys [][]byte

		it := txn.NewIterator(badger.IteratorOptions{Prefix: keyTallyPrefix(), PrefetchValues: true})
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			suffix := string(item.Key()[len(keyTallyPrefix()):])
			pageStr, _, ok := strings.Cut(suffix, ":")
			if !ok {
				continue
			}
			pageID, err := uuid.Parse(pageStr)
			if err != nil {
				continue
			}
			var count uint64
			err = item.Value(func(val []byte) error {
				var derr error
				count, derr = decodeUint64(val)
				return derr
			})
			if err != nil {
				it.Close()
				return err
			}
			sums[pageID] += count
			keys = append(keys, item.KeyCopy(nil))
		}
		it.Close()

		for pageID, count := range sums {
			page, err := getPageTxn(txn, pageID)
			if err != nil {
				if content.IsNotFound(err) {
					continue
				}
				return err
			}
			page.ViewCount += count
			if err := putPageTxn(txn, page); err != nil {
				return err
			}
			updated++
		}
		for _, key := range keys {
			if err := txn.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, mapErr(err)
	}
	return updated, nil
}

// SetPageLinks replaces the outgoing wiki-link rows of a page, keeping
// the backlink index in step. Self-links are dropped.
func (s *BadgerContentStore) SetPageLinks(ctx context.Context, fromPage uuid.UUID, toPages []uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := getPageTxn(txn, fromPage); err != nil {
			return err
		}

		// Clear existing links and their backlink mirrors.
		prefix := keyLinkPrefix(fromPage)
		it := txn.NewIterator(badger.IteratorOptions{Prefix: prefix})
		var stale [][]byte
		for it.Rewind(); it.Valid(); it.Next() {
			stale = append(stale, it.Item().KeyCopy(nil))
		}
		it.Close()
		for _, key := range stale {
			toStr := string(key[len(prefix):])
			toID, err := uuid.Parse(toStr)
			if err == nil {
				if err := txn.Delete(keyBacklink(toID, fromPage)); err != nil {
					return err
				}
			}
			if err := txn.Delete(key); err != nil {
				return err
			}
		}

		for _, to := range toPages {
			if to == fromPage {
				continue
			}
			if err := txn.Set(keyLink(fromPage, to), nil); err != nil {
				return err
			}
			if err := txn.Set(keyBacklink(to, fromPage), nil); err != nil {
				return err
			}
		}
		return nil
	})
	return mapErr(err)
}

// Backlinks returns the ids of pages whose content links to pageID.
func (s *BadgerContentStore) Backlinks(ctx context.Context, pageID uuid.UUID) ([]uuid.UUID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var ids []uuid.UUID
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := keyBacklinkPrefix(pageID)
		it := txn.NewIterator(badger.IteratorOptions{Prefix: prefix})
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			fromID, err := uuid.Parse(string(it.Item().Key()[len(prefix):]))
			if err != nil {
				continue
			}
			ids = append(ids, fromID)
		}
		return nil
	})
	if err != nil {
		return nil, mapErr(err)
	}
	return ids, nil
}

// PutAttachment records attachment metadata for a page.
func (s *BadgerContentStore) PutAttachment(ctx context.Context, att *content.Attachment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if att.ID == uuid.Nil {
		return invalidArgument("attachment id must be set")
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := getPageTxn(txn, att.PageID); err != nil {
			return err
		}
		return txnSetJSON(txn, keyAttachment(att.PageID, att.ID), att)
	})
	return mapErr(err)
}

// Attachments lists the attachments recorded for a page.
func (s *BadgerContentStore) Attachments(ctx context.Context, pageID uuid.UUID) ([]*content.Attachment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var atts []*content.Attachment
	err := s.db.View(func(txn *badger.Txn) error {
		if _, err := getPageTxn(txn, pageID); err != nil {
			return err
		}
		prefix := keyAttachmentPrefix(pageID)
		it := txn.NewIterator(badger.IteratorOptions{Prefix: prefix, PrefetchValues: true})
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			var att content.Attachment
			err := it.Item().Value(func(val []byte) error {
				return decodeJSON(val, &att)
			})
			if err != nil {
				return err
			}
			atts = append(atts, &att)
		}
		return nil
	})
	if err != nil {
		return nil, mapErr(err)
	}
	return atts, nil
}
