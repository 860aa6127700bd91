package domain

import (
	"sort"
	"time"
)

// ServerConfig holds per-server settings managed by server admins through the
// dashboard: the level-to-role ladder, the channel for level-up announcements,
// and the greeting for new members.
type ServerConfig struct {
	ServerID string `json:"server_id"`

	// RoleMappings maps a level threshold to the Discord role granted at and
	// above that level.
	RoleMappings map[int]string `json:"role_mappings,omitempty"`

	LevelUpChannelID string `json:"level_up_channel_id,omitempty"`
	WelcomeChannelID string `json:"welcome_channel_id,omitempty"`
	WelcomeMessage   string `json:"welcome_message,omitempty"`

	UpdatedAt time.Time `json:"updated_at,omitzero"`
}

// ResolveRole picks the role a user at the given level should hold: the
// mapping with the highest threshold not exceeding the level. Returns false
// when no threshold qualifies or no mappings exist.
func (c *ServerConfig) ResolveRole(level int) (roleID string, ok bool) {
	if c == nil || len(c.RoleMappings) == 0 {
		return "", false
	}

	thresholds := make([]int, 0, len(c.RoleMappings))
	for threshold := range c.RoleMappings {
		thresholds = append(thresholds, threshold)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(thresholds)))

	for _, threshold := range thresholds {
		if threshold <= level {
			return c.RoleMappings[threshold], true
		}
	}
	return "", false
}

// MappedRoles returns every role ID in the ladder. The role synchronizer
// revokes these before granting the resolved one.
func (c *ServerConfig) MappedRoles() []string {
	if c == nil {
		return nil
	}
	roles := make([]string, 0, len(c.RoleMappings))
	for _, roleID := range c.RoleMappings {
		roles = append(roles, roleID)
	}
	sort.Strings(roles)
	return roles
}

// RoleChange is the payload handed to the role synchronizer after a
// progression event. It is derived once from the committed record and must be
// passed through unchanged so downstream role I/O can be retried safely.
type RoleChange struct {
	ServerID    string `json:"server_id"`
	UserID      string `json:"user_id"`
	NewLevel    int    `json:"new_level"`
	LeveledUp   bool   `json:"leveled_up"`
	LeveledDown bool   `json:"leveled_down"`
}
