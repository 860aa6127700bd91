package service

import (
	"context"
	"log/slog"

	"github.com/levelupapp/levelup-server/internal/domain"
	"github.com/levelupapp/levelup-server/internal/errors"
	"github.com/levelupapp/levelup-server/internal/store"
)

// SettingsService manages per-server configuration: the role ladder and the
// announcement channels.
type SettingsService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewSettingsService creates a settings service.
func NewSettingsService(st *store.Store, logger *slog.Logger) *SettingsService {
	return &SettingsService{store: st, logger: logger}
}

// GetServerConfig returns a server's settings.
func (s *SettingsService) GetServerConfig(ctx context.Context, serverID string) (*domain.ServerConfig, error) {
	if serverID == "" {
		return nil, errors.Validation("server ID is required")
	}

	cfg, err := s.store.GetServerConfig(ctx, serverID)
	if err != nil {
		if errors.Is(err, store.ErrConfigNotFound) {
			return nil, errors.NotFoundf("server %s has no configuration", serverID)
		}
		return nil, errors.Wrap(err, errors.CodeInternal, "loading server config")
	}
	return cfg, nil
}

// UpdateServerConfig validates and saves a server's settings.
func (s *SettingsService) UpdateServerConfig(ctx context.Context, cfg *domain.ServerConfig) (*domain.ServerConfig, error) {
	if cfg.ServerID == "" {
		return nil, errors.Validation("server ID is required")
	}
	for threshold, roleID := range cfg.RoleMappings {
		if threshold < 0 {
			return nil, errors.Validationf("role threshold %d is negative", threshold)
		}
		if roleID == "" {
			return nil, errors.Validationf("role mapping for level %d has an empty role ID", threshold)
		}
	}

	if err := s.store.SaveServerConfig(ctx, cfg); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "saving server config")
	}

	s.logger.Info("server config updated",
		"server_id", cfg.ServerID,
		"role_mappings", len(cfg.RoleMappings),
	)
	return cfg, nil
}
