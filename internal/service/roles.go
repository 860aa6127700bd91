package service

import (
	"context"
	"log/slog"
	"slices"

	"github.com/levelupapp/levelup-server/internal/domain"
)

// RoleSyncer reconciles a user's Discord roles after a level transition.
// Implementations must be idempotent: the engine may hand over the same
// change more than once after retries.
type RoleSyncer interface {
	Sync(ctx context.Context, change domain.RoleChange) error
}

// RolePlan is the concrete reconciliation for one user: grant the role for
// their current level, revoke every other mapped role.
type RolePlan struct {
	Grant  string
	Revoke []string
}

// PlanRoles computes the role plan for a user at the given level.
// With no qualifying threshold the plan revokes all mapped roles.
func PlanRoles(cfg *domain.ServerConfig, level int) RolePlan {
	var plan RolePlan

	grant, ok := cfg.ResolveRole(level)
	if ok {
		plan.Grant = grant
	}
	for _, roleID := range cfg.MappedRoles() {
		if roleID == plan.Grant {
			continue
		}
		if !slices.Contains(plan.Revoke, roleID) {
			plan.Revoke = append(plan.Revoke, roleID)
		}
	}
	return plan
}

// configSource is the slice of the settings layer the role syncer needs.
type configSource interface {
	GetServerConfig(ctx context.Context, serverID string) (*domain.ServerConfig, error)
}

// LoggingRoleSyncer computes the role plan and logs it. It stands in until a
// gateway-connected syncer performs the actual Discord role mutations; the
// bot process consumes the same RoleChange payloads.
type LoggingRoleSyncer struct {
	configs configSource
	logger  *slog.Logger
}

// NewLoggingRoleSyncer creates a role syncer that only records its plans.
func NewLoggingRoleSyncer(configs configSource, logger *slog.Logger) *LoggingRoleSyncer {
	return &LoggingRoleSyncer{configs: configs, logger: logger}
}

// Sync resolves the plan for the change and logs it.
func (s *LoggingRoleSyncer) Sync(ctx context.Context, change domain.RoleChange) error {
	cfg, err := s.configs.GetServerConfig(ctx, change.ServerID)
	if err != nil {
		// Unconfigured servers have no role ladder; nothing to reconcile.
		s.logger.Debug("no role ladder for server", "server_id", change.ServerID)
		return nil
	}

	plan := PlanRoles(cfg, change.NewLevel)
	s.logger.Info("role sync planned",
		"server_id", change.ServerID,
		"user_id", change.UserID,
		"level", change.NewLevel,
		"grant", plan.Grant,
		"revoke_count", len(plan.Revoke),
		"leveled_up", change.LeveledUp,
		"leveled_down", change.LeveledDown,
	)
	return nil
}
