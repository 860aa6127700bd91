package profile

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://discord.com/api/v10"

// DiscordClient resolves profiles through the Discord REST API.
// Results are cached for the lifetime of the process; usernames change
// rarely enough that staleness is acceptable for leaderboard display.
type DiscordClient struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	logger      *slog.Logger
	baseURL     string
	token       string

	mu    sync.RWMutex
	cache map[string]*Profile
}

// NewDiscordClient creates a profile lookup backed by the Discord REST API.
// Rate limited well under Discord's global 50 requests per second.
func NewDiscordClient(token, baseURL string, timeout time.Duration, logger *slog.Logger) *DiscordClient {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &DiscordClient{
		httpClient:  &http.Client{Timeout: timeout},
		rateLimiter: rate.NewLimiter(rate.Limit(20), 10),
		logger:      logger,
		baseURL:     baseURL,
		token:       token,
		cache:       make(map[string]*Profile),
	}
}

type userResponse struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	GlobalName    string `json:"global_name"`
	Avatar        string `json:"avatar"`
	Discriminator string `json:"discriminator"`
}

// Get resolves one user ID, consulting the in-process cache first.
func (c *DiscordClient) Get(ctx context.Context, userID string) (*Profile, error) {
	c.mu.RLock()
	cached, ok := c.cache[userID]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/users/"+userID, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bot "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lookup request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("lookup failed: status %d", resp.StatusCode)
	}

	var user userResponse
	if err := json.UnmarshalRead(resp.Body, &user); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	p := &Profile{
		UserID:   userID,
		Username: user.Username,
	}
	if user.GlobalName != "" {
		p.Username = user.GlobalName
	}
	if user.Avatar != "" {
		p.AvatarURL = fmt.Sprintf("https://cdn.discordapp.com/avatars/%s/%s.png", userID, user.Avatar)
	}

	c.mu.Lock()
	c.cache[userID] = p
	c.mu.Unlock()

	c.logger.Debug("resolved profile", "user_id", userID, "username", p.Username)
	return p, nil
}
