package service

import (
	"context"
	"log/slog"
	"testing"

	"github.com/levelupapp/levelup-server/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanRoles(t *testing.T) {
	cfg := &domain.ServerConfig{
		ServerID: "srv-1",
		RoleMappings: map[int]string{
			1:  "role-bronze",
			5:  "role-silver",
			10: "role-gold",
		},
	}

	tests := []struct {
		name       string
		level      int
		wantGrant  string
		wantRevoke []string
	}{
		{"below all thresholds", 0, "", []string{"role-bronze", "role-gold", "role-silver"}},
		{"exact threshold", 5, "role-silver", []string{"role-bronze", "role-gold"}},
		{"between thresholds", 7, "role-silver", []string{"role-bronze", "role-gold"}},
		{"above all thresholds", 25, "role-gold", []string{"role-bronze", "role-silver"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := PlanRoles(cfg, tt.level)
			assert.Equal(t, tt.wantGrant, plan.Grant)
			assert.Equal(t, tt.wantRevoke, plan.Revoke)
		})
	}
}

func TestPlanRoles_NoMappings(t *testing.T) {
	plan := PlanRoles(&domain.ServerConfig{ServerID: "srv-1"}, 10)
	assert.Empty(t, plan.Grant)
	assert.Empty(t, plan.Revoke)
}

func TestLoggingRoleSyncer_UnconfiguredServer(t *testing.T) {
	st := setupTestStore(t)
	settings := NewSettingsService(st, slog.Default())
	syncer := NewLoggingRoleSyncer(settings, slog.Default())

	err := syncer.Sync(context.Background(), domain.RoleChange{
		ServerID: "srv-none", UserID: "user-1", NewLevel: 3, LeveledUp: true,
	})
	assert.NoError(t, err)
}

func TestLoggingRoleSyncer_ConfiguredServer(t *testing.T) {
	st := setupTestStore(t)
	settings := NewSettingsService(st, slog.Default())

	_, err := settings.UpdateServerConfig(context.Background(), &domain.ServerConfig{
		ServerID:     "srv-1",
		RoleMappings: map[int]string{2: "role-regular"},
	})
	require.NoError(t, err)

	syncer := NewLoggingRoleSyncer(settings, slog.Default())
	err = syncer.Sync(context.Background(), domain.RoleChange{
		ServerID: "srv-1", UserID: "user-1", NewLevel: 3, LeveledUp: true,
	})
	assert.NoError(t, err)
}
