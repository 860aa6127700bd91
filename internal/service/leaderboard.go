package service

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/levelupapp/levelup-server/internal/color"
	"github.com/levelupapp/levelup-server/internal/domain"
	"github.com/levelupapp/levelup-server/internal/errors"
	"github.com/levelupapp/levelup-server/internal/profile"
	"github.com/levelupapp/levelup-server/internal/store"
)

const (
	// DefaultPageSize is the leaderboard page size when none is requested.
	DefaultPageSize = 10
	// MaxPageSize caps a single leaderboard page.
	MaxPageSize = 100
)

// LeaderboardService serves ranked views over the global ledger and
// per-server records. Rankings are computed on demand from the incrementally
// maintained totals; nothing here mutates state.
type LeaderboardService struct {
	store         *store.Store
	lookup        profile.Lookup
	lookupTimeout time.Duration
	curve         domain.Curve
	logger        *slog.Logger
}

// NewLeaderboardService creates a leaderboard service. lookup may be a
// profile.Noop when no enrichment source is configured.
func NewLeaderboardService(st *store.Store, lookup profile.Lookup, lookupTimeout time.Duration, curve domain.Curve, logger *slog.Logger) *LeaderboardService {
	return &LeaderboardService{
		store:         st,
		lookup:        lookup,
		lookupTimeout: lookupTimeout,
		curve:         curve,
		logger:        logger,
	}
}

// clampPage normalizes pagination parameters.
func clampPage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

// sortLedger orders entries by total XP descending. The input arrives in
// userID order from the store scan, and the sort is stable, so ties keep a
// deterministic userID-ascending order.
func sortLedger(entries []*domain.LedgerEntry) {
	slices.SortStableFunc(entries, func(a, b *domain.LedgerEntry) int {
		switch {
		case b.TotalXP > a.TotalXP:
			return 1
		case b.TotalXP < a.TotalXP:
			return -1
		default:
			return 0
		}
	})
}

// GetGlobalLeaderboard returns one page of the global leaderboard plus the
// total number of ranked users. Ranks are 1-based and survive pagination:
// page 2 of size 10 starts at rank 11.
func (s *LeaderboardService) GetGlobalLeaderboard(ctx context.Context, page, pageSize int) ([]*domain.GlobalRow, int, error) {
	page, pageSize = clampPage(page, pageSize)

	entries, err := s.store.ListLedgerEntries(ctx)
	if err != nil {
		return nil, 0, errors.Wrap(err, errors.CodeInternal, "listing ledger entries")
	}
	sortLedger(entries)

	total := len(entries)
	start := (page - 1) * pageSize
	if start >= total {
		return []*domain.GlobalRow{}, total, nil
	}
	end := min(start+pageSize, total)

	rows := make([]*domain.GlobalRow, 0, end-start)
	for i, entry := range entries[start:end] {
		rows = append(rows, &domain.GlobalRow{
			Rank:    start + i + 1,
			UserID:  entry.UserID,
			TotalXP: entry.TotalXP,
		})
	}

	s.enrichGlobal(ctx, rows)
	return rows, total, nil
}

// GetServerLeaderboard returns the full ranked standings for one server.
func (s *LeaderboardService) GetServerLeaderboard(ctx context.Context, serverID string) ([]*domain.ServerRow, error) {
	if serverID == "" {
		return nil, errors.Validation("server ID is required")
	}

	records, err := s.store.ListServerProgress(ctx, serverID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "listing server progress")
	}

	rows := make([]*domain.ServerRow, 0, len(records))
	for _, p := range records {
		rows = append(rows, &domain.ServerRow{
			UserID:   p.UserID,
			ServerID: p.ServerID,
			Level:    p.Level,
			XP:       p.XP,
			TotalXP:  s.curve.TotalXPForLevel(p.Level, p.XP),
		})
	}

	// Records arrive in userID order; the stable sort keeps that as the
	// tie-break.
	slices.SortStableFunc(rows, func(a, b *domain.ServerRow) int {
		switch {
		case b.TotalXP > a.TotalXP:
			return 1
		case b.TotalXP < a.TotalXP:
			return -1
		default:
			return 0
		}
	})
	for i, row := range rows {
		row.Rank = i + 1
	}

	s.enrichServer(ctx, rows)
	return rows, nil
}

// GetGlobalRank returns a user's 1-based position on the global leaderboard.
// Returns a not-found error for users with no ledger entry.
func (s *LeaderboardService) GetGlobalRank(ctx context.Context, userID string) (int, *domain.LedgerEntry, error) {
	if userID == "" {
		return 0, nil, errors.Validation("user ID is required")
	}

	entry, err := s.store.GetLedgerEntry(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrLedgerNotFound) {
			return 0, nil, errors.NotFoundf("user %s has no ranked XP", userID)
		}
		return 0, nil, errors.Wrap(err, errors.CodeInternal, "loading ledger entry")
	}

	entries, err := s.store.ListLedgerEntries(ctx)
	if err != nil {
		return 0, nil, errors.Wrap(err, errors.CodeInternal, "listing ledger entries")
	}

	// Rank = 1 + users strictly ahead + tied users preceding in userID
	// order. Matches the position a full sorted listing would produce.
	rank := 1
	for _, other := range entries {
		if other.TotalXP > entry.TotalXP {
			rank++
		} else if other.TotalXP == entry.TotalXP && strings.Compare(other.UserID, userID) < 0 {
			rank++
		}
	}
	return rank, entry, nil
}

// GetServerRank returns a user's 1-based position within one server.
func (s *LeaderboardService) GetServerRank(ctx context.Context, serverID, userID string) (int, *domain.Progress, error) {
	if serverID == "" || userID == "" {
		return 0, nil, errors.Validation("server ID and user ID are required")
	}

	records, err := s.store.ListServerProgress(ctx, serverID)
	if err != nil {
		return 0, nil, errors.Wrap(err, errors.CodeInternal, "listing server progress")
	}

	var target *domain.Progress
	for _, p := range records {
		if p.UserID == userID {
			target = p
			break
		}
	}
	if target == nil {
		return 0, nil, errors.NotFoundf("user %s has no XP in server %s", userID, serverID)
	}

	targetTotal := s.curve.TotalXPForLevel(target.Level, target.XP)
	rank := 1
	for _, p := range records {
		total := s.curve.TotalXPForLevel(p.Level, p.XP)
		if total > targetTotal {
			rank++
		} else if total == targetTotal && strings.Compare(p.UserID, userID) < 0 {
			rank++
		}
	}
	return rank, target, nil
}

// TotalXP returns the sum of every user's ledger total: the community-wide
// XP counter shown on the dashboard.
func (s *LeaderboardService) TotalXP(ctx context.Context) (int64, error) {
	entries, err := s.store.ListLedgerEntries(ctx)
	if err != nil {
		return 0, errors.Wrap(err, errors.CodeInternal, "listing ledger entries")
	}

	var total int64
	for _, entry := range entries {
		total += entry.TotalXP
	}
	return total, nil
}

// ListServerUsers returns every tracked record for one server in userID
// order, unranked. The dashboard's raw user listing.
func (s *LeaderboardService) ListServerUsers(ctx context.Context, serverID string) ([]*domain.Progress, error) {
	if serverID == "" {
		return nil, errors.Validation("server ID is required")
	}

	records, err := s.store.ListServerProgress(ctx, serverID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "listing server progress")
	}
	return records, nil
}

// GetServerUser returns one user's standing in a server. Unknown users get
// the default zero record, matching the engine's read path.
func (s *LeaderboardService) GetServerUser(ctx context.Context, serverID, userID string) (*domain.Progress, error) {
	if serverID == "" || userID == "" {
		return nil, errors.Validation("server ID and user ID are required")
	}

	p, err := s.store.GetProgress(ctx, serverID, userID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "loading progress record")
	}
	return p, nil
}

// enrichGlobal decorates rows with profile data, best-effort. Each lookup is
// bounded; a failure leaves the row with only the accent color.
func (s *LeaderboardService) enrichGlobal(ctx context.Context, rows []*domain.GlobalRow) {
	for _, row := range rows {
		row.AvatarColor = color.ForUser(row.UserID)

		p, ok := s.resolveProfile(ctx, row.UserID)
		if !ok {
			continue
		}
		row.Username = p.Username
		row.AvatarURL = p.AvatarURL
	}
}

func (s *LeaderboardService) enrichServer(ctx context.Context, rows []*domain.ServerRow) {
	for _, row := range rows {
		row.AvatarColor = color.ForUser(row.UserID)

		p, ok := s.resolveProfile(ctx, row.UserID)
		if !ok {
			continue
		}
		row.Username = p.Username
		row.AvatarURL = p.AvatarURL
	}
}

func (s *LeaderboardService) resolveProfile(ctx context.Context, userID string) (*profile.Profile, bool) {
	lookupCtx, cancel := context.WithTimeout(ctx, s.lookupTimeout)
	defer cancel()

	p, err := s.lookup.Get(lookupCtx, userID)
	if err != nil {
		s.logger.Debug("profile lookup failed", "user_id", userID, "error", err)
		return nil, false
	}
	return p, true
}
