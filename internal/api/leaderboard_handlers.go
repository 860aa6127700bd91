package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/levelupapp/levelup-server/internal/domain"
	"github.com/levelupapp/levelup-server/internal/format"
	"github.com/levelupapp/levelup-server/internal/service"
)

func (s *Server) registerLeaderboardRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getGlobalLeaderboard",
		Method:      http.MethodGet,
		Path:        "/api/v1/leaderboard/global",
		Summary:     "Global leaderboard",
		Description: "Returns one page of the cross-server leaderboard ordered by total XP",
		Tags:        []string{"Leaderboard"},
	}, s.handleGlobalLeaderboard)

	huma.Register(s.api, huma.Operation{
		OperationID: "getServerLeaderboard",
		Method:      http.MethodGet,
		Path:        "/api/v1/leaderboard/servers/{serverID}",
		Summary:     "Server leaderboard",
		Description: "Returns the full ranked standings for one server",
		Tags:        []string{"Leaderboard"},
	}, s.handleServerLeaderboard)

	huma.Register(s.api, huma.Operation{
		OperationID: "getGlobalRank",
		Method:      http.MethodGet,
		Path:        "/api/v1/ranks/global/{userID}",
		Summary:     "Global rank",
		Description: "Returns a user's 1-based position on the global leaderboard",
		Tags:        []string{"Leaderboard"},
	}, s.handleGlobalRank)

	huma.Register(s.api, huma.Operation{
		OperationID: "getServerRank",
		Method:      http.MethodGet,
		Path:        "/api/v1/ranks/servers/{serverID}/{userID}",
		Summary:     "Server rank",
		Description: "Returns a user's 1-based position within one server",
		Tags:        []string{"Leaderboard"},
	}, s.handleServerRank)

	huma.Register(s.api, huma.Operation{
		OperationID: "getTotalXP",
		Method:      http.MethodGet,
		Path:        "/api/v1/xp/total",
		Summary:     "Community total XP",
		Description: "Returns the sum of every user's global XP",
		Tags:        []string{"Leaderboard"},
	}, s.handleTotalXP)
}

// GlobalLeaderboardInput carries pagination for the global leaderboard.
type GlobalLeaderboardInput struct {
	Page     int `query:"page" default:"1" minimum:"1" doc:"1-based page number"`
	PageSize int `query:"page_size" default:"10" minimum:"1" maximum:"100" doc:"Rows per page"`
}

// GlobalLeaderboardResponse is one page of the global leaderboard.
type GlobalLeaderboardResponse struct {
	Rows     []*domain.GlobalRow `json:"rows"`
	Page     int                 `json:"page"`
	PageSize int                 `json:"page_size"`
	Total    int                 `json:"total" doc:"Total ranked users"`
}

// GlobalLeaderboardOutput wraps the global leaderboard page for Huma.
type GlobalLeaderboardOutput struct {
	Body GlobalLeaderboardResponse
}

func (s *Server) handleGlobalLeaderboard(ctx context.Context, input *GlobalLeaderboardInput) (*GlobalLeaderboardOutput, error) {
	rows, total, err := s.services.Leaderboard.GetGlobalLeaderboard(ctx, input.Page, input.PageSize)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to build leaderboard", err)
	}

	page, pageSize := input.Page, input.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = service.DefaultPageSize
	}

	return &GlobalLeaderboardOutput{
		Body: GlobalLeaderboardResponse{
			Rows:     rows,
			Page:     page,
			PageSize: pageSize,
			Total:    total,
		},
	}, nil
}

// ServerLeaderboardInput identifies the server to rank.
type ServerLeaderboardInput struct {
	ServerID string `path:"serverID" doc:"Discord server (guild) ID"`
}

// ServerLeaderboardOutput wraps a server's standings for Huma.
type ServerLeaderboardOutput struct {
	Body struct {
		Rows []*domain.ServerRow `json:"rows"`
	}
}

func (s *Server) handleServerLeaderboard(ctx context.Context, input *ServerLeaderboardInput) (*ServerLeaderboardOutput, error) {
	rows, err := s.services.Leaderboard.GetServerLeaderboard(ctx, input.ServerID)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to build leaderboard", err)
	}

	out := &ServerLeaderboardOutput{}
	out.Body.Rows = rows
	return out, nil
}

// GlobalRankInput identifies the user to rank globally.
type GlobalRankInput struct {
	UserID string `path:"userID" doc:"Discord user ID"`
}

// RankResponse is one user's leaderboard position.
type RankResponse struct {
	UserID    string `json:"user_id"`
	Rank      int    `json:"rank" doc:"1-based position"`
	TotalXP   int64  `json:"total_xp"`
	XPDisplay string `json:"xp_display" doc:"Total XP with thousands separators"`
}

// RankOutput wraps a rank response for Huma.
type RankOutput struct {
	Body RankResponse
}

func (s *Server) handleGlobalRank(ctx context.Context, input *GlobalRankInput) (*RankOutput, error) {
	rank, entry, err := s.services.Leaderboard.GetGlobalRank(ctx, input.UserID)
	if err != nil {
		return nil, huma.Error404NotFound("rank unavailable", err)
	}

	return &RankOutput{
		Body: RankResponse{
			UserID:    input.UserID,
			Rank:      rank,
			TotalXP:   entry.TotalXP,
			XPDisplay: format.XP(entry.TotalXP),
		},
	}, nil
}

// ServerRankInput identifies the user and server to rank.
type ServerRankInput struct {
	ServerID string `path:"serverID" doc:"Discord server (guild) ID"`
	UserID   string `path:"userID" doc:"Discord user ID"`
}

// ServerRankResponse is one user's position within a server.
type ServerRankResponse struct {
	UserID    string `json:"user_id"`
	ServerID  string `json:"server_id"`
	Rank      int    `json:"rank" doc:"1-based position"`
	Level     int    `json:"level"`
	XP        int64  `json:"xp" doc:"XP within the current level"`
	TotalXP   int64  `json:"total_xp"`
	XPDisplay string `json:"xp_display" doc:"Total XP with thousands separators"`
}

// ServerRankOutput wraps a server rank response for Huma.
type ServerRankOutput struct {
	Body ServerRankResponse
}

func (s *Server) handleServerRank(ctx context.Context, input *ServerRankInput) (*ServerRankOutput, error) {
	rank, p, err := s.services.Leaderboard.GetServerRank(ctx, input.ServerID, input.UserID)
	if err != nil {
		return nil, huma.Error404NotFound("rank unavailable", err)
	}

	total := s.services.Progression.Curve().TotalXPForLevel(p.Level, p.XP)
	return &ServerRankOutput{
		Body: ServerRankResponse{
			UserID:    input.UserID,
			ServerID:  input.ServerID,
			Rank:      rank,
			Level:     p.Level,
			XP:        p.XP,
			TotalXP:   total,
			XPDisplay: format.XP(total),
		},
	}, nil
}

// TotalXPOutput wraps the community total for Huma.
type TotalXPOutput struct {
	Body struct {
		TotalXP   int64  `json:"total_xp"`
		XPDisplay string `json:"xp_display" doc:"Total XP with thousands separators"`
	}
}

func (s *Server) handleTotalXP(ctx context.Context, _ *struct{}) (*TotalXPOutput, error) {
	total, err := s.services.Leaderboard.TotalXP(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to sum XP", err)
	}

	out := &TotalXPOutput{}
	out.Body.TotalXP = total
	out.Body.XPDisplay = format.XP(total)
	return out, nil
}
