package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/levelupapp/levelup-server/internal/domain"
)

// applyContributionRetries bounds the optimistic-concurrency retry loop for
// ledger updates. The engine already serializes per-user writes, so conflicts
// are only possible for callers bypassing it.
const applyContributionRetries = 5

func ledgerKey(userID string) []byte {
	return []byte(ledgerPrefix + userID)
}

func contributionKey(serverID, userID string) []byte {
	return []byte(contributionPrefix + serverID + ":" + userID)
}

// ApplyContribution replaces one server's contribution to a user's global
// ledger total: totalXP_new = totalXP_old - previousContribution + newTotal.
// The read of both rows and the write of both rows happen in a single Badger
// transaction, so concurrent progression events for the same user can never
// double-subtract or double-add. Returns the updated ledger entry.
func (s *Store) ApplyContribution(ctx context.Context, userID, serverID string, newTotal int64) (*domain.LedgerEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var updated *domain.LedgerEntry

	apply := func(txn *badger.Txn) error {
		entry := &domain.LedgerEntry{UserID: userID}
		if err := readJSON(txn, ledgerKey(userID), entry); err != nil {
			return err
		}

		contrib := &domain.ServerContribution{UserID: userID, ServerID: serverID}
		if err := readJSON(txn, contributionKey(serverID, userID), contrib); err != nil {
			return err
		}

		entry.TotalXP = entry.TotalXP - contrib.XP + newTotal
		entry.UpdatedAt = time.Now()
		contrib.XP = newTotal

		entryData, err := json.Marshal(entry)
		if err != nil {
			return err
		}
		contribData, err := json.Marshal(contrib)
		if err != nil {
			return err
		}

		if err := txn.Set(ledgerKey(userID), entryData); err != nil {
			return err
		}
		if err := txn.Set(contributionKey(serverID, userID), contribData); err != nil {
			return err
		}

		updated = entry
		return nil
	}

	var err error
	for attempt := 0; attempt < applyContributionRetries; attempt++ {
		err = s.db.Update(apply)
		if !errors.Is(err, badger.ErrConflict) {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("applying contribution for %s/%s: %w", serverID, userID, err)
	}
	return updated, nil
}

// GetLedgerEntry returns a user's global ledger entry, or ErrLedgerNotFound
// if the user has never earned XP anywhere.
func (s *Store) GetLedgerEntry(ctx context.Context, userID string) (*domain.LedgerEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entry domain.LedgerEntry
	err := s.get(ledgerKey(userID), &entry)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrLedgerNotFound
		}
		return nil, fmt.Errorf("getting ledger entry for %s: %w", userID, err)
	}
	return &entry, nil
}

// ListLedgerEntries returns every ledger entry in key (userID) order.
// The iteration order is deterministic for a given snapshot; the leaderboard
// stable-sort relies on that for its tie-break.
func (s *Store) ListLedgerEntries(ctx context.Context) ([]*domain.LedgerEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return scanPrefix[domain.LedgerEntry](s, []byte(ledgerPrefix))
}

// GetContribution returns one server's last-known contribution for a user,
// or ErrContributionNotFound if the user never earned XP there.
func (s *Store) GetContribution(ctx context.Context, serverID, userID string) (*domain.ServerContribution, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var contrib domain.ServerContribution
	err := s.get(contributionKey(serverID, userID), &contrib)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrContributionNotFound
		}
		return nil, fmt.Errorf("getting contribution for %s/%s: %w", serverID, userID, err)
	}
	return &contrib, nil
}

// ListServerContributions returns all contributions for one server in key
// (userID) order.
func (s *Store) ListServerContributions(ctx context.Context, serverID string) ([]*domain.ServerContribution, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return scanPrefix[domain.ServerContribution](s, []byte(contributionPrefix+serverID+":"))
}

// readJSON decodes the value at key into dest, leaving dest untouched when
// the key does not exist.
func readJSON(txn *badger.Txn, key []byte, dest any) error {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, dest)
	})
}
