// Package domain contains the core types and pure progression logic for the
// LevelUp server. Nothing in this package performs I/O.
package domain

import "time"

// GlobalScope is the reserved server ID used for global-scope bookkeeping.
// Real Discord server IDs are numeric snowflakes and can never collide with it.
const GlobalScope = "_global"

// Progress is one user's standing within one server scope.
// XP counts experience within the current level, not lifetime XP.
type Progress struct {
	UserID   string `json:"user_id"`
	ServerID string `json:"server_id"`
	XP       int64  `json:"xp"`
	Level    int    `json:"level"`

	UpdatedAt time.Time `json:"updated_at,omitzero"`
}

// NewProgress returns the default record for a user that has no history yet.
func NewProgress(serverID, userID string) *Progress {
	return &Progress{
		UserID:   userID,
		ServerID: serverID,
		XP:       0,
		Level:    0,
	}
}

// Event is a single progression event: an observed chat message or an
// administrative override.
type Event struct {
	ServerID string `json:"server_id" validate:"required"`
	UserID   string `json:"user_id" validate:"required"`

	// XPDelta is extra XP on top of the per-message award for organic events,
	// or the replacement XP value when DirectSet is true.
	XPDelta int64 `json:"xp_delta"`

	// DirectSet replaces the user's XP with XPDelta instead of adding to it.
	DirectSet bool `json:"direct_set"`

	// ExplicitLevel optionally overrides the level before normalization.
	// Only honored together with DirectSet (admin setxp command).
	ExplicitLevel *int `json:"explicit_level,omitempty" validate:"omitempty,gte=0"`
}

// Result is the outcome of applying an Event to a Progress record.
// Level transition flags always compare against the level before the event,
// never against an intermediate state.
type Result struct {
	XP          int64 `json:"xp"`
	Level       int   `json:"level"`
	LeveledUp   bool  `json:"leveled_up"`
	LeveledDown bool  `json:"leveled_down"`
}

// LedgerEntry is one user's running XP total across all server scopes,
// maintained incrementally by the leaderboard aggregator.
type LedgerEntry struct {
	UserID  string `json:"user_id"`
	TotalXP int64  `json:"total_xp"`

	UpdatedAt time.Time `json:"updated_at,omitzero"`
}

// ServerContribution is the last-known total XP one server scope contributes
// to a user's ledger entry. It is the subtrahend for incremental ledger updates.
type ServerContribution struct {
	UserID   string `json:"user_id"`
	ServerID string `json:"server_id"`
	XP       int64  `json:"xp"`
}
