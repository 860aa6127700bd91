// Package store provides Badger-backed persistence for progress records, the
// global XP ledger, and per-server configuration.
package store

import (
	"encoding/json/v2"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

// Key prefixes. Progress records are namespaced by server; ledger rows are
// global per user; contributions are namespaced by server so a single prefix
// scan yields one server's leaderboard.
const (
	progressPrefix     = "progress:"      // progress:<serverID>:<userID>
	ledgerPrefix       = "ledger:"        // ledger:<userID>
	contributionPrefix = "contrib:"       // contrib:<serverID>:<userID>
	serverConfigPrefix = "server_config:" // server_config:<serverID>
)

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
}

// New creates a new Store at the given database path.
func New(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Ledger updates assume the preceding record write is durable
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	if logger != nil {
		logger.Info("Badger database opened successfully", "path", path)
	}

	return &Store{db: db, logger: logger}, nil
}

// Close gracefully closes the database connection.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("Closing database connection")
	}
	return s.db.Close()
}

// Backup streams a consistent snapshot of every key to w. Safe to run while
// the database is serving writes.
func (s *Store) Backup(w io.Writer) (uint64, error) {
	return s.db.Backup(w, 0)
}

// Ping verifies the database is usable with a cheap read.
func (s *Store) Ping() error {
	return s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte("__ping__"))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}

// Helper methods for database operations.

// get retrieves a value by key.
func (s *Store) get(key []byte, dest any) error {
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, dest)
		})
	})
}

// set stores a value by key.
func (s *Store) set(key []byte, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
}

// scanPrefix iterates all values under a prefix in key order, decoding each
// into a fresh T. Key order is deterministic for a given data snapshot, which
// is what makes leaderboard tie-breaking stable.
func scanPrefix[T any](s *Store, prefix []byte) ([]*T, error) {
	var results []*T

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = true

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			value := new(T)
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, value)
			})
			if err != nil {
				return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
			}
			results = append(results, value)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}
