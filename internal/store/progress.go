package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/levelupapp/levelup-server/internal/domain"
)

func progressKey(serverID, userID string) []byte {
	return []byte(progressPrefix + serverID + ":" + userID)
}

// GetProgress retrieves a user's progress record for one server.
// A missing record is not an error: the default zero record is returned so
// first-time users flow through the same path as everyone else.
func (s *Store) GetProgress(ctx context.Context, serverID, userID string) (*domain.Progress, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var p domain.Progress
	err := s.get(progressKey(serverID, userID), &p)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return domain.NewProgress(serverID, userID), nil
		}
		return nil, fmt.Errorf("getting progress for %s/%s: %w", serverID, userID, err)
	}
	return &p, nil
}

// UpsertProgress writes a complete progress record, replacing any existing
// one. Callers read-modify-write; partial patches are not supported.
func (s *Store) UpsertProgress(ctx context.Context, p *domain.Progress) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.UpdatedAt = time.Now()
	return s.set(progressKey(p.ServerID, p.UserID), p)
}

// ListServerProgress returns all progress records for one server in key
// (userID) order.
func (s *Store) ListServerProgress(ctx context.Context, serverID string) ([]*domain.Progress, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return scanPrefix[domain.Progress](s, []byte(progressPrefix+serverID+":"))
}
