// Package profile resolves user IDs to display profiles for leaderboard
// enrichment. Lookups are best-effort: a failed lookup never fails the
// request that asked for it.
package profile

import "context"

// Profile is the displayable identity of a user.
type Profile struct {
	UserID    string `json:"userId"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// Lookup resolves user IDs to profiles.
type Lookup interface {
	Get(ctx context.Context, userID string) (*Profile, error)
}

// Noop is a Lookup that resolves nothing. Used when no bot token is
// configured; leaderboards then carry numeric identity only.
type Noop struct{}

func (Noop) Get(_ context.Context, userID string) (*Profile, error) {
	return &Profile{UserID: userID}, nil
}
