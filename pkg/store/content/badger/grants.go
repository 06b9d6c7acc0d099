package badger

import (
	"context"
	"strings"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/freelawproject/wiki/pkg/content"
)

// checkTargetTxn verifies the grant target refers to a live entity.
func checkTargetTxn(txn *badger.Txn, target content.TargetRef) error {
	switch target.Kind {
	case content.KindDirectory:
		_, err := getDirectoryTxn(txn, target.ID)
		return err
	case content.KindPage:
		_, err := getPageTxn(txn, target.ID)
		return err
	default:
		return invalidArgument("unknown target kind " + string(target.Kind))
	}
}

func applyGrantsTxn(txn *badger.Txn, target content.TargetRef, grants []content.Grant) error {
	for _, g := range grants {
		if g.Subject.Kind != content.SubjectUser && g.Subject.Kind != content.SubjectGroup {
			return invalidArgument("unknown subject kind " + string(g.Subject.Kind))
		}
		key := keyGrant(target, g.Subject)
		if g.Level == content.LevelNone {
			if err := txn.Delete(key); err != nil {
				return err
			}
			continue
		}
		if err := txn.Set(key, encodeLevel(g.Level)); err != nil {
			return err
		}
	}
	return nil
}

// SetGrants upserts subject grants on a target. LevelNone removes the
// subject's grant; subjects not named are left intact.
func (s *BadgerContentStore) SetGrants(ctx context.Context, target content.TargetRef, grants []content.Grant) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		if err := checkTargetTxn(txn, target); err != nil {
			return err
		}
		return applyGrantsTxn(txn, target, grants)
	})
	return mapErr(err)
}

// Grants lists the direct grants on a target, ordered by subject.
func (s *BadgerContentStore) Grants(ctx context.Context, target content.TargetRef) ([]content.Grant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var grants []content.Grant
	err := s.db.View(func(txn *badger.Txn) error {
		if err := checkTargetTxn(txn, target); err != nil {
			return err
		}
		prefix := keyGrantPrefix(target)
		it := txn.NewIterator(badger.IteratorOptions{Prefix: prefix, PrefetchValues: true})
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			subject, err := parseSubjectSuffix(string(item.Key()[len(prefix):]))
			if err != nil {
				return err
			}
			var level content.Level
			err = item.Value(func(val []byte) error {
				var derr error
				level, derr = decodeLevel(val)
				return derr
			})
			if err != nil {
				return err
			}
			grants = append(grants, content.Grant{Subject: subject, Level: level})
		}
		return nil
	})
	if err != nil {
		return nil, mapErr(err)
	}
	return grants, nil
}

// ApplyGrantsRecursively upserts grants on a directory and every
// descendant inside a single transaction.
func (s *BadgerContentStore) ApplyGrantsRecursively(ctx context.Context, directoryID uuid.UUID, grants []content.Grant) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		refs, err := descendantsTxn(txn, directoryID)
		if err != nil {
			return err
		}
		if err := applyGrantsTxn(txn, content.DirectoryRef(directoryID), grants); err != nil {
			return err
		}
		for _, ref := range refs {
			if err := applyGrantsTxn(txn, ref, grants); err != nil {
				return err
			}
		}
		return nil
	})
	return mapErr(err)
}

func parseSubjectSuffix(suffix string) (content.Subject, error) {
	kind, rest, ok := strings.Cut(suffix, ":")
	if !ok {
		return content.Subject{}, invalidArgument("malformed grant key " + suffix)
	}
	id, err := uuid.Parse(rest)
	if err != nil {
		return content.Subject{}, invalidArgument("malformed grant key " + suffix)
	}
	return content.Subject{Kind: content.SubjectKind(kind), ID: id}, nil
}
