package store

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyContribution_FirstServer(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	entry, err := s.ApplyContribution(ctx, "user-1", "srv-1", 3050)
	require.NoError(t, err)
	assert.Equal(t, int64(3050), entry.TotalXP)

	got, err := s.GetLedgerEntry(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3050), got.TotalXP)

	contrib, err := s.GetContribution(ctx, "srv-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3050), contrib.XP)
}

func TestApplyContribution_ReplacesNotAdds(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	_, err := s.ApplyContribution(ctx, "user-1", "srv-1", 1000)
	require.NoError(t, err)

	// Re-reporting the same server must replace the old contribution, never
	// stack on top of it.
	entry, err := s.ApplyContribution(ctx, "user-1", "srv-1", 1500)
	require.NoError(t, err)
	assert.Equal(t, int64(1500), entry.TotalXP)

	entry, err = s.ApplyContribution(ctx, "user-1", "srv-1", 1500)
	require.NoError(t, err)
	assert.Equal(t, int64(1500), entry.TotalXP)
}

func TestApplyContribution_MultipleServers(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	_, err := s.ApplyContribution(ctx, "user-1", "srv-1", 1000)
	require.NoError(t, err)
	entry, err := s.ApplyContribution(ctx, "user-1", "srv-2", 2500)
	require.NoError(t, err)
	assert.Equal(t, int64(3500), entry.TotalXP)

	// Dropping srv-1's total must only affect srv-1's share.
	entry, err = s.ApplyContribution(ctx, "user-1", "srv-1", 400)
	require.NoError(t, err)
	assert.Equal(t, int64(2900), entry.TotalXP)
}

// The global total must always equal the sum of per-server contributions,
// regardless of the order or volume of updates.
func TestApplyContribution_LedgerConsistency(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))

	servers := []string{"srv-a", "srv-b", "srv-c", "srv-d"}
	latest := make(map[string]int64)

	for i := 0; i < 200; i++ {
		serverID := servers[rng.Intn(len(servers))]
		total := rng.Int63n(500_000)
		latest[serverID] = total

		_, err := s.ApplyContribution(ctx, "user-1", serverID, total)
		require.NoError(t, err)
	}

	var want int64
	for _, total := range latest {
		want += total
	}

	entry, err := s.GetLedgerEntry(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, want, entry.TotalXP)

	contribs, err := s.ListServerContributions(ctx, "srv-a")
	require.NoError(t, err)
	if total, ok := latest["srv-a"]; ok {
		require.Len(t, contribs, 1)
		assert.Equal(t, total, contribs[0].XP)
	}
}

func TestGetLedgerEntry_NotFound(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.GetLedgerEntry(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrLedgerNotFound)
}

func TestGetContribution_NotFound(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.GetContribution(context.Background(), "srv-1", "nobody")
	assert.ErrorIs(t, err, ErrContributionNotFound)
}

func TestListLedgerEntries_KeyOrder(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	for i := 5; i >= 1; i-- {
		userID := fmt.Sprintf("user-%d", i)
		_, err := s.ApplyContribution(ctx, userID, "srv-1", int64(i*100))
		require.NoError(t, err)
	}

	entries, err := s.ListLedgerEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 5)
	for i, entry := range entries {
		assert.Equal(t, fmt.Sprintf("user-%d", i+1), entry.UserID)
	}
}

func TestListServerContributions_ScopedToServer(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	_, err := s.ApplyContribution(ctx, "user-1", "srv-1", 100)
	require.NoError(t, err)
	_, err = s.ApplyContribution(ctx, "user-2", "srv-1", 200)
	require.NoError(t, err)
	_, err = s.ApplyContribution(ctx, "user-1", "srv-2", 300)
	require.NoError(t, err)

	contribs, err := s.ListServerContributions(ctx, "srv-1")
	require.NoError(t, err)
	require.Len(t, contribs, 2)
	for _, c := range contribs {
		assert.Equal(t, "srv-1", c.ServerID)
	}
}

func TestApplyContribution_ConcurrentUsers(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	done := make(chan error, 2)
	for _, userID := range []string{"user-1", "user-2"} {
		go func(userID string) {
			var err error
			for i := 1; i <= 50 && err == nil; i++ {
				_, err = s.ApplyContribution(ctx, userID, "srv-1", int64(i*10))
			}
			done <- err
		}(userID)
	}
	require.NoError(t, <-done)
	require.NoError(t, <-done)

	for _, userID := range []string{"user-1", "user-2"} {
		entry, err := s.GetLedgerEntry(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, int64(500), entry.TotalXP, "user %s", userID)
	}
}
