package badger

import (
	"context"
	"errors"
	"sort"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/freelawproject/wiki/pkg/content"
)

func putRevisionTxn(txn *badger.Txn, rev *content.Revision) error {
	return txnSetJSON(txn, keyRevision(rev.Entity, rev.Seq), rev)
}

// GetRevision retrieves one revision of an entity by sequence number.
func (s *BadgerContentStore) GetRevision(ctx context.Context, entity content.TargetRef, seq uint64) (*content.Revision, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var rev content.Revision
	err := s.db.View(func(txn *badger.Txn) error {
		err := txnGetJSON(txn, keyRevision(entity, seq), &rev)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return notFound("revision not found", "")
		}
		return err
	})
	if err != nil {
		return nil, mapErr(err)
	}
	return &rev, nil
}

// ListRevisions lists an entity's revisions, newest first.
func (s *BadgerContentStore) ListRevisions(ctx context.Context, entity content.TargetRef) ([]*content.Revision, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var revs []*content.Revision
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := keyRevisionPrefix(entity)
		it := txn.NewIterator(badger.IteratorOptions{Prefix: prefix, PrefetchValues: true, PrefetchSize: 64})
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			var rev content.Revision
			err := it.Item().Value(func(val []byte) error {
				return decodeJSON(val, &rev)
			})
			if err != nil {
				return err
			}
			revs = append(revs, &rev)
		}
		return nil
	})
	if err != nil {
		return nil, mapErr(err)
	}
	// Keys sort ascending by big-endian sequence; flip to newest first.
	sort.Slice(revs, func(i, j int) bool { return revs[i].Seq > revs[j].Seq })
	return revs, nil
}
