package badger

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/freelawproject/wiki/pkg/content"
)

// Serialization Strategy
// ======================
//
// Complex records (directories, pages, revisions, redirects, users,
// groups, attachments) are stored as JSON: human-readable, easy to debug,
// and tolerant of schema evolution. Simple values (uuid references, grant
// levels, tally counts) use compact binary encodings.

func encodeJSON(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %T: %w", v, err)
	}
	return data, nil
}

func decodeJSON(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %T: %w", v, err)
	}
	return nil
}

func encodeUUID(id uuid.UUID) []byte {
	return id[:]
}

func decodeUUID(data []byte) (uuid.UUID, error) {
	id, err := uuid.FromBytes(data)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to decode uuid value: %w", err)
	}
	return id, nil
}

func putUint64(dst []byte, v uint64) {
	binary.BigEndian.PutUint64(dst, v)
}

func encodeUint64(v uint64) []byte {
	buf := make([]byte, 8)
	putUint64(buf, v)
	return buf
}

func decodeUint64(data []byte) (uint64, error) {
	if len(data) != 8 {
		return 0, fmt.Errorf("invalid uint64 value length %d", len(data))
	}
	return binary.BigEndian.Uint64(data), nil
}

func encodeLevel(l content.Level) []byte {
	return []byte{byte(l)}
}

func decodeLevel(data []byte) (content.Level, error) {
	if len(data) != 1 {
		return content.LevelNone, fmt.Errorf("invalid level value length %d", len(data))
	}
	l := content.Level(data[0])
	if l < content.LevelNone || l > content.LevelOwner {
		return content.LevelNone, fmt.Errorf("invalid level value %d", data[0])
	}
	return l, nil
}

// txnGetJSON reads and decodes a JSON value. Returns badger.ErrKeyNotFound
// unchanged so callers can translate it to a domain error.
func txnGetJSON(txn *badger.Txn, key []byte, v any) error {
	item, err := txn.Get(key)
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return decodeJSON(val, v)
	})
}

// txnGetUUID reads a uuid reference value.
func txnGetUUID(txn *badger.Txn, key []byte) (uuid.UUID, error) {
	item, err := txn.Get(key)
	if err != nil {
		return uuid.Nil, err
	}
	var id uuid.UUID
	err = item.Value(func(val []byte) error {
		var derr error
		id, derr = decodeUUID(val)
		return derr
	})
	return id, err
}

func txnSetJSON(txn *badger.Txn, key []byte, v any) error {
	data, err := encodeJSON(v)
	if err != nil {
		return err
	}
	return txn.Set(key, data)
}
