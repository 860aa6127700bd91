package sqlite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/levelupapp/levelup-server/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestJournal(t *testing.T) *Journal {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "levelup-journal-test-*")
	require.NoError(t, err)

	j, err := Open(filepath.Join(tmpDir, "journal.db"), nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = j.Close()            //nolint:errcheck // Test cleanup
		_ = os.RemoveAll(tmpDir) //nolint:errcheck // Test cleanup
	})

	return j
}

func TestJournal_RecordAndList(t *testing.T) {
	j := setupTestJournal(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		entry := &domain.JournalEntry{
			ID:        fmt.Sprintf("evt-%d", i),
			ServerID:  "srv-1",
			UserID:    "user-1",
			XPDelta:   150,
			OldLevel:  0,
			NewLevel:  0,
			NewXP:     int64((i + 1) * 150),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, j.Record(ctx, entry))
	}

	entries, err := j.ListRecent(ctx, "srv-1", 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// Newest first.
	assert.Equal(t, "evt-2", entries[0].ID)
	assert.Equal(t, "evt-0", entries[2].ID)
	assert.Equal(t, int64(450), entries[0].NewXP)
	assert.Equal(t, base.Add(2*time.Minute), entries[0].CreatedAt)
}

func TestJournal_ListRecent_Limit(t *testing.T) {
	j := setupTestJournal(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, j.Record(ctx, &domain.JournalEntry{
			ID:        fmt.Sprintf("evt-%d", i),
			ServerID:  "srv-1",
			UserID:    "user-1",
			CreatedAt: time.Now(),
		}))
	}

	entries, err := j.ListRecent(ctx, "srv-1", 2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestJournal_ListRecentForUser(t *testing.T) {
	j := setupTestJournal(t)
	ctx := context.Background()

	require.NoError(t, j.Record(ctx, &domain.JournalEntry{
		ID: "evt-a", ServerID: "srv-1", UserID: "user-1", DirectSet: true, CreatedAt: time.Now(),
	}))
	require.NoError(t, j.Record(ctx, &domain.JournalEntry{
		ID: "evt-b", ServerID: "srv-1", UserID: "user-2", CreatedAt: time.Now(),
	}))

	entries, err := j.ListRecentForUser(ctx, "srv-1", "user-1", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "evt-a", entries[0].ID)
	assert.True(t, entries[0].DirectSet)
}

func TestJournal_ListRecent_OtherServerExcluded(t *testing.T) {
	j := setupTestJournal(t)
	ctx := context.Background()

	require.NoError(t, j.Record(ctx, &domain.JournalEntry{
		ID: "evt-a", ServerID: "srv-1", UserID: "user-1", CreatedAt: time.Now(),
	}))

	entries, err := j.ListRecent(ctx, "srv-2", 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
