package badger

import (
	"context"
	"errors"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/freelawproject/wiki/pkg/content"
)

func putRedirectTxn(txn *badger.Txn, oldPath string, target content.TargetRef, at time.Time) error {
	return txnSetJSON(txn, keyRedirect(oldPath), &content.SlugRedirect{
		OldPath:   oldPath,
		Target:    target,
		CreatedAt: at,
	})
}

func putSlugRedirectTxn(txn *badger.Txn, oldSlug string, target content.TargetRef, at time.Time) error {
	return txnSetJSON(txn, keySlugRedirect(oldSlug), &content.SlugRedirect{
		OldPath:   oldSlug,
		Target:    target,
		CreatedAt: at,
	})
}

// ResolveRedirect looks up a historical full path.
func (s *BadgerContentStore) ResolveRedirect(ctx context.Context, oldPath string) (*content.SlugRedirect, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	oldPath = content.CleanPath(oldPath)

	var red content.SlugRedirect
	err := s.db.View(func(txn *badger.Txn) error {
		err := txnGetJSON(txn, keyRedirect(oldPath), &red)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return notFound("no redirect recorded", oldPath)
		}
		return err
	})
	if err != nil {
		return nil, mapErr(err)
	}
	return &red, nil
}

// ResolveSlugRedirect looks up a historical page slug.
func (s *BadgerContentStore) ResolveSlugRedirect(ctx context.Context, oldSlug string) (*content.SlugRedirect, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var red content.SlugRedirect
	err := s.db.View(func(txn *badger.Txn) error {
		err := txnGetJSON(txn, keySlugRedirect(oldSlug), &red)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return notFound("no redirect recorded", oldSlug)
		}
		return err
	})
	if err != nil {
		return nil, mapErr(err)
	}
	return &red, nil
}
