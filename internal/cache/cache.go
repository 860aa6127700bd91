// Package cache provides the in-process caches used by the XP engine: a
// read-through cache of per-user progress records and a bounded ring of
// recent message metadata per user. Both are owned, injectable objects so
// tests can substitute a fresh instance per case.
package cache

import (
	"sync"

	"github.com/levelupapp/levelup-server/internal/domain"
)

// ProgressCache maps (serverID, userID) to the last-known progress record.
// Entries are populated on read and refreshed on write; they never expire.
// All writes go through the owning process and refresh the cache immediately,
// so staleness only occurs across processes, where the backing store remains
// authoritative.
type ProgressCache struct {
	mu      sync.RWMutex
	entries map[string]domain.Progress
}

// NewProgressCache creates an empty progress cache.
func NewProgressCache() *ProgressCache {
	return &ProgressCache{
		entries: make(map[string]domain.Progress),
	}
}

// Get returns the cached record for the key, if present.
func (c *ProgressCache) Get(serverID, userID string) (domain.Progress, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.entries[progressKey(serverID, userID)]
	return p, ok
}

// Put stores or refreshes the record for the key.
func (c *ProgressCache) Put(p domain.Progress) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[progressKey(p.ServerID, p.UserID)] = p
}

// Invalidate drops the cached record for the key.
func (c *ProgressCache) Invalidate(serverID, userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, progressKey(serverID, userID))
}

// Len returns the number of cached records.
func (c *ProgressCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func progressKey(serverID, userID string) string {
	return serverID + ":" + userID
}

// Message is one observed chat message's metadata kept for spam heuristics.
// Content is retained verbatim; the ring never persists it.
type Message struct {
	ChannelID string
	Content   string
}

// MessageRing keeps the last N messages per user.
type MessageRing struct {
	mu       sync.Mutex
	perUser  map[string][]Message
	capacity int
}

// DefaultMessageHistory is how many recent messages are kept per user.
const DefaultMessageHistory = 5

// NewMessageRing creates a ring keeping capacity messages per user.
// A non-positive capacity falls back to DefaultMessageHistory.
func NewMessageRing(capacity int) *MessageRing {
	if capacity <= 0 {
		capacity = DefaultMessageHistory
	}
	return &MessageRing{
		perUser:  make(map[string][]Message),
		capacity: capacity,
	}
}

// Record appends a message for the user, evicting the oldest beyond capacity.
func (r *MessageRing) Record(userID string, msg Message) {
	r.mu.Lock()
	defer r.mu.Unlock()

	history := append(r.perUser[userID], msg)
	if len(history) > r.capacity {
		history = history[len(history)-r.capacity:]
	}
	r.perUser[userID] = history
}

// Recent returns a copy of the user's recent messages, oldest first.
func (r *MessageRing) Recent(userID string) []Message {
	r.mu.Lock()
	defer r.mu.Unlock()

	history := r.perUser[userID]
	out := make([]Message, len(history))
	copy(out, history)
	return out
}
