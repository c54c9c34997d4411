package settings

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

const keyPrefix = "pref:"

// BadgerStore keeps preferences in an embedded Badger database.
type BadgerStore struct {
	db     *badger.DB
	logger *slog.Logger
}

var _ Store = (*BadgerStore)(nil)

// Open opens (or creates) a Badger database at path.
func Open(path string, logger *slog.Logger) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Preferences are tiny, always sync
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	if logger != nil {
		logger.Info("Preference store opened", "path", path)
	}

	return &BadgerStore{db: db, logger: logger}, nil
}

// Close gracefully closes the database.
func (s *BadgerStore) Close() error {
	if s.logger != nil {
		s.logger.Info("Closing preference store")
	}
	return s.db.Close()
}

// GetInt64 reads an integer preference.
func (s *BadgerStore) GetInt64(ctx context.Context, key string) (int64, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}

	var (
		value int64
		found bool
	)
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			if len(val) != 8 {
				return fmt.Errorf("preference %q: unexpected value length %d", key, len(val))
			}
			value = int64(binary.BigEndian.Uint64(val))
			found = true
			return nil
		})
	})
	if err != nil {
		return 0, false, err
	}
	return value, found, nil
}

// SetInt64 writes an integer preference.
func (s *BadgerStore) SetInt64(ctx context.Context, key string, value int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(value))

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+key), buf)
	})
}

// Delete removes a preference. Deleting a missing key is not an error.
func (s *BadgerStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(keyPrefix + key))
	})
}
