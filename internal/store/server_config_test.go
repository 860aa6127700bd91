package store

import (
	"context"
	"testing"

	"github.com/levelupapp/levelup-server/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerConfig_RoundTrip(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	cfg := &domain.ServerConfig{
		ServerID: "srv-1",
		RoleMappings: map[int]string{
			1: "role-bronze",
			5: "role-silver",
		},
		LevelUpChannelID: "chan-1",
	}
	require.NoError(t, s.SaveServerConfig(ctx, cfg))

	got, err := s.GetServerConfig(ctx, "srv-1")
	require.NoError(t, err)
	assert.Equal(t, "role-silver", got.RoleMappings[5])
	assert.Equal(t, "chan-1", got.LevelUpChannelID)
	assert.False(t, got.UpdatedAt.IsZero())
}

func TestGetServerConfig_NotFound(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.GetServerConfig(context.Background(), "srv-none")
	assert.ErrorIs(t, err, ErrConfigNotFound)
}
