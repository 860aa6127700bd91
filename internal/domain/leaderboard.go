package domain

// GlobalRow is one entry of the global leaderboard, ordered by ledger total.
// Username and AvatarURL are best-effort enrichment; consumers must tolerate
// them being empty. AvatarColor is always set and serves as the placeholder
// when AvatarURL is empty.
type GlobalRow struct {
	Rank        int    `json:"rank"`
	UserID      string `json:"user_id"`
	TotalXP     int64  `json:"total_xp"`
	Username    string `json:"username,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	AvatarColor string `json:"avatar_color"`
}

// ServerRow is one entry of a per-server leaderboard.
type ServerRow struct {
	Rank        int    `json:"rank"`
	UserID      string `json:"user_id"`
	ServerID    string `json:"server_id"`
	Level       int    `json:"level"`
	XP          int64  `json:"xp"`
	TotalXP     int64  `json:"total_xp"`
	Username    string `json:"username,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	AvatarColor string `json:"avatar_color"`
}
