package domain

import "time"

// JournalEntry is one recorded progression event. The journal is an
// append-only audit trail; the Badger records remain the source of truth
// for current state.
type JournalEntry struct {
	ID        string    `json:"id"`
	ServerID  string    `json:"serverId"`
	UserID    string    `json:"userId"`
	XPDelta   int64     `json:"xpDelta"`
	DirectSet bool      `json:"directSet"`
	OldLevel  int       `json:"oldLevel"`
	NewLevel  int       `json:"newLevel"`
	NewXP     int64     `json:"newXp"`
	CreatedAt time.Time `json:"createdAt"`
}
