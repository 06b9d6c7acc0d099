// Package badger implements content.Store on BadgerDB.
//
// This is the persistent backend: a fast embedded key-value store with
// ACID transactions, suitable for production deployments where the wiki
// tree must survive restarts. The storage model uses prefixed key
// namespaces (see keys.go) with JSON values for records and compact
// binary values for references and counters.
package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/google/uuid"

	"github.com/freelawproject/wiki/pkg/content"
)

// BadgerContentStore implements content.Store using BadgerDB.
//
// Thread Safety: BadgerDB transactions provide snapshot isolation with
// conflict detection. Every mutating operation runs inside a single
// db.Update transaction, so multi-key writes (rename + redirect + path
// index) commit or roll back as one unit; a losing concurrent writer
// surfaces as ErrConflict.
type BadgerContentStore struct {
	db *badger.DB
}

// BadgerContentStoreConfig configures a BadgerDB content store.
type BadgerContentStoreConfig struct {
	// DBPath is the directory where BadgerDB stores its files.
	DBPath string `mapstructure:"db_path"`

	// BadgerOptions allows customization of BadgerDB behavior.
	// If nil, sensible defaults for a metadata-sized workload are used.
	BadgerOptions *badger.Options

	// BlockCacheSizeMB is BadgerDB's block cache size in MB (default: 64).
	BlockCacheSizeMB int64 `mapstructure:"block_cache_size_mb"`

	// IndexCacheSizeMB is BadgerDB's index cache size in MB (default: 32).
	IndexCacheSizeMB int64 `mapstructure:"index_cache_size_mb"`
}

// NewBadgerContentStore opens (or creates) a BadgerDB content store at the
// configured path. The returned store is immediately ready for use and
// safe for concurrent access.
func NewBadgerContentStore(ctx context.Context, config BadgerContentStoreConfig) (*BadgerContentStore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var opts badger.Options
	if config.BadgerOptions != nil {
		opts = *config.BadgerOptions
	} else {
		opts = badger.DefaultOptions(config.DBPath)
		// Wiki metadata is small text; compression gains little here.
		opts = opts.WithLoggingLevel(badger.WARNING)
		opts = opts.WithCompression(options.None)

		blockCacheMB := config.BlockCacheSizeMB
		if blockCacheMB == 0 {
			blockCacheMB = 64
		}
		indexCacheMB := config.IndexCacheSizeMB
		if indexCacheMB == 0 {
			indexCacheMB = 32
		}
		opts = opts.WithBlockCacheSize(blockCacheMB << 20)
		opts = opts.WithIndexCacheSize(indexCacheMB << 20)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open BadgerDB at %s: %w", config.DBPath, err)
	}

	store := &BadgerContentStore{db: db}
	if err := store.initializeRoot(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize root directory: %w", err)
	}

	return store, nil
}

// initializeRoot creates the root directory record if it doesn't exist.
func (s *BadgerContentStore) initializeRoot(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(keyDirectoryPath(""))
		if err == nil {
			return nil
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		now := time.Now()
		root := &content.Directory{
			ID:         uuid.New(),
			Path:       "",
			Title:      "Home",
			Visibility: content.VisibilityPublic,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := txnSetJSON(txn, keyDirectory(root.ID), root); err != nil {
			return err
		}
		return txn.Set(keyDirectoryPath(""), encodeUUID(root.ID))
	})
}

// Healthcheck verifies the database can serve a read.
func (s *BadgerContentStore) Healthcheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(keyDirectoryPath(""))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return &content.StoreError{Code: content.ErrIO, Message: "root directory record missing"}
		}
		return err
	})
}

// Close closes the BadgerDB database and releases all resources.
func (s *BadgerContentStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close BadgerDB: %w", err)
	}
	return nil
}

// mapErr translates badger-level failures into store errors. Domain
// errors pass through untouched; ErrKeyNotFound must be translated by the
// caller (it needs entity context), so reaching here with one is a bug.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	var se *content.StoreError
	if errors.As(err, &se) {
		return se
	}
	if errors.Is(err, badger.ErrConflict) {
		return &content.StoreError{Code: content.ErrConflict, Message: "transaction conflict, safe to retry"}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &content.StoreError{Code: content.ErrIO, Message: err.Error()}
}

func notFound(msg, path string) error {
	return &content.StoreError{Code: content.ErrNotFound, Message: msg, Path: path}
}

func pathConflict(msg, path string) error {
	return &content.StoreError{Code: content.ErrPathConflict, Message: msg, Path: path}
}

func invalidArgument(msg string) error {
	return &content.StoreError{Code: content.ErrInvalidArgument, Message: msg}
}
