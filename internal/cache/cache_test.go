package cache

import (
	"testing"

	"github.com/levelupapp/levelup-server/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressCache_GetPut(t *testing.T) {
	c := NewProgressCache()

	_, ok := c.Get("srv-1", "user-1")
	assert.False(t, ok)

	c.Put(domain.Progress{ServerID: "srv-1", UserID: "user-1", XP: 500, Level: 2})

	p, ok := c.Get("srv-1", "user-1")
	require.True(t, ok)
	assert.Equal(t, int64(500), p.XP)
	assert.Equal(t, 2, p.Level)

	// Same user in a different server is a distinct key.
	_, ok = c.Get("srv-2", "user-1")
	assert.False(t, ok)
}

func TestProgressCache_PutRefreshes(t *testing.T) {
	c := NewProgressCache()

	c.Put(domain.Progress{ServerID: "srv-1", UserID: "user-1", XP: 100})
	c.Put(domain.Progress{ServerID: "srv-1", UserID: "user-1", XP: 250})

	p, ok := c.Get("srv-1", "user-1")
	require.True(t, ok)
	assert.Equal(t, int64(250), p.XP)
	assert.Equal(t, 1, c.Len())
}

func TestProgressCache_Invalidate(t *testing.T) {
	c := NewProgressCache()

	c.Put(domain.Progress{ServerID: "srv-1", UserID: "user-1", XP: 100})
	c.Invalidate("srv-1", "user-1")

	_, ok := c.Get("srv-1", "user-1")
	assert.False(t, ok)
}

func TestMessageRing_EvictsOldest(t *testing.T) {
	r := NewMessageRing(5)

	for i := 0; i < 7; i++ {
		r.Record("user-1", Message{ChannelID: "ch", Content: string(rune('a' + i))})
	}

	recent := r.Recent("user-1")
	require.Len(t, recent, 5)
	assert.Equal(t, "c", recent[0].Content)
	assert.Equal(t, "g", recent[4].Content)
}

func TestMessageRing_PerUserIsolation(t *testing.T) {
	r := NewMessageRing(0) // falls back to default capacity

	r.Record("user-1", Message{Content: "hello"})

	assert.Len(t, r.Recent("user-1"), 1)
	assert.Empty(t, r.Recent("user-2"))
}
