package badger

import (
	"context"
	"errors"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/freelawproject/wiki/pkg/content"
)

func systemOwnerTxn(txn *badger.Txn) (uuid.UUID, bool, error) {
	id, err := txnGetUUID(txn, keySystemOwner())
	if errors.Is(err, badger.ErrKeyNotFound) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, err
	}
	return id, true, nil
}

// PutUser inserts or updates a user record. The system-owner flag is
// derived from the singleton record on read and never stored on the user.
func (s *BadgerContentStore) PutUser(ctx context.Context, user *content.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if user.ID == uuid.Nil {
		return invalidArgument("user id must be set")
	}
	stored := *user
	stored.IsSystemOwner = false
	err := s.db.Update(func(txn *badger.Txn) error {
		return txnSetJSON(txn, keyUser(stored.ID), &stored)
	})
	return mapErr(err)
}

// GetUser retrieves a user by id, with IsSystemOwner populated.
func (s *BadgerContentStore) GetUser(ctx context.Context, id uuid.UUID) (*content.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var user content.User
	err := s.db.View(func(txn *badger.Txn) error {
		err := txnGetJSON(txn, keyUser(id), &user)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return notFound("user not found", "")
		}
		if err != nil {
			return err
		}
		ownerID, ok, err := systemOwnerTxn(txn)
		if err != nil {
			return err
		}
		user.IsSystemOwner = ok && ownerID == id
		return nil
	})
	if err != nil {
		return nil, mapErr(err)
	}
	return &user, nil
}

// PutGroup inserts or updates a group record.
func (s *BadgerContentStore) PutGroup(ctx context.Context, group *content.Group) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if group.ID == uuid.Nil {
		return invalidArgument("group id must be set")
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txnSetJSON(txn, keyGroup(group.ID), group)
	})
	return mapErr(err)
}

// GetGroup retrieves a group by id.
func (s *BadgerContentStore) GetGroup(ctx context.Context, id uuid.UUID) (*content.Group, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var group content.Group
	err := s.db.View(func(txn *badger.Txn) error {
		err := txnGetJSON(txn, keyGroup(id), &group)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return notFound("group not found", "")
		}
		return err
	})
	if err != nil {
		return nil, mapErr(err)
	}
	return &group, nil
}

// GroupsFor returns the ids of every group the user belongs to.
func (s *BadgerContentStore) GroupsFor(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var ids []uuid.UUID
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: []byte(prefixGroup), PrefetchValues: true})
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			var group content.Group
			err := it.Item().Value(func(val []byte) error {
				return decodeJSON(val, &group)
			})
			if err != nil {
				return err
			}
			for _, member := range group.MemberIDs {
				if member == userID {
					ids = append(ids, group.ID)
					break
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, mapErr(err)
	}
	return ids, nil
}

// ClaimSystemOwner makes userID the system owner if no owner exists yet.
// The read and write share one transaction, so concurrent claimants
// serialize and exactly one wins.
func (s *BadgerContentStore) ClaimSystemOwner(ctx context.Context, userID uuid.UUID) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	claimed := false
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(keyUser(userID)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return notFound("user not found", "")
			}
			return err
		}
		_, ok, err := systemOwnerTxn(txn)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		claimed = true
		return txn.Set(keySystemOwner(), encodeUUID(userID))
	})
	if err != nil {
		return false, mapErr(err)
	}
	return claimed, nil
}

// SystemOwner returns the system owner's id, with ok=false before any
// successful claim.
func (s *BadgerContentStore) SystemOwner(ctx context.Context) (uuid.UUID, bool, error) {
	if err := ctx.Err(); err != nil {
		return uuid.Nil, false, err
	}
	var (
		id uuid.UUID
		ok bool
	)
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		id, ok, err = systemOwnerTxn(txn)
		return err
	})
	if err != nil {
		return uuid.Nil, false, mapErr(err)
	}
	return id, ok, nil
}
