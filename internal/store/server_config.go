package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/levelupapp/levelup-server/internal/domain"
)

func serverConfigKey(serverID string) []byte {
	return []byte(serverConfigPrefix + serverID)
}

// GetServerConfig returns a server's settings document, or ErrConfigNotFound
// if the server was never configured.
func (s *Store) GetServerConfig(ctx context.Context, serverID string) (*domain.ServerConfig, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var cfg domain.ServerConfig
	err := s.get(serverConfigKey(serverID), &cfg)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrConfigNotFound
		}
		return nil, fmt.Errorf("getting config for server %s: %w", serverID, err)
	}
	return &cfg, nil
}

// SaveServerConfig writes a server's settings document.
func (s *Store) SaveServerConfig(ctx context.Context, cfg *domain.ServerConfig) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cfg.UpdatedAt = time.Now()
	return s.set(serverConfigKey(cfg.ServerID), cfg)
}
