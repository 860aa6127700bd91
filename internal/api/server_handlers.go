package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/levelupapp/levelup-server/internal/domain"
)

func (s *Server) registerServerRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listServerUsers",
		Method:      http.MethodGet,
		Path:        "/api/v1/servers/{serverID}/users",
		Summary:     "List server users",
		Description: "Returns every tracked progress record for one server",
		Tags:        []string{"Servers"},
	}, s.handleListServerUsers)

	huma.Register(s.api, huma.Operation{
		OperationID: "getServerUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/servers/{serverID}/users/{userID}",
		Summary:     "Get server user",
		Description: "Returns one user's standing in a server; unknown users get the default record",
		Tags:        []string{"Servers"},
	}, s.handleGetServerUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "setUserXP",
		Method:      http.MethodPost,
		Path:        "/api/v1/servers/{serverID}/users/{userID}/xp",
		Summary:     "Set user XP",
		Description: "Replaces a user's XP and optionally level (admin)",
		Tags:        []string{"Servers"},
	}, s.handleSetUserXP)

	huma.Register(s.api, huma.Operation{
		OperationID: "getServerConfig",
		Method:      http.MethodGet,
		Path:        "/api/v1/servers/{serverID}/config",
		Summary:     "Get server config",
		Tags:        []string{"Servers"},
	}, s.handleGetServerConfig)

	huma.Register(s.api, huma.Operation{
		OperationID: "putServerConfig",
		Method:      http.MethodPut,
		Path:        "/api/v1/servers/{serverID}/config",
		Summary:     "Update server config",
		Description: "Replaces a server's role ladder and channel settings (admin)",
		Tags:        []string{"Servers"},
	}, s.handlePutServerConfig)

	huma.Register(s.api, huma.Operation{
		OperationID: "getServerActivity",
		Method:      http.MethodGet,
		Path:        "/api/v1/servers/{serverID}/activity",
		Summary:     "Recent progression events",
		Description: "Returns the newest journal entries for one server",
		Tags:        []string{"Servers"},
	}, s.handleGetServerActivity)
}

// ServerUsersInput identifies the server to list.
type ServerUsersInput struct {
	ServerID string `path:"serverID" doc:"Discord server (guild) ID"`
}

// ServerUsersOutput wraps the user listing for Huma.
type ServerUsersOutput struct {
	Body struct {
		Users []*domain.Progress `json:"users"`
	}
}

func (s *Server) handleListServerUsers(ctx context.Context, input *ServerUsersInput) (*ServerUsersOutput, error) {
	users, err := s.services.Leaderboard.ListServerUsers(ctx, input.ServerID)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to list users", err)
	}

	out := &ServerUsersOutput{}
	out.Body.Users = users
	return out, nil
}

// ServerUserInput identifies one user in one server.
type ServerUserInput struct {
	ServerID string `path:"serverID" doc:"Discord server (guild) ID"`
	UserID   string `path:"userID" doc:"Discord user ID"`
}

// ServerUserOutput wraps one progress record for Huma.
type ServerUserOutput struct {
	Body *domain.Progress
}

func (s *Server) handleGetServerUser(ctx context.Context, input *ServerUserInput) (*ServerUserOutput, error) {
	p, err := s.services.Leaderboard.GetServerUser(ctx, input.ServerID, input.UserID)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to load user", err)
	}
	return &ServerUserOutput{Body: p}, nil
}

// SetXPInput is the admin override request.
type SetXPInput struct {
	ServerID string `path:"serverID" doc:"Discord server (guild) ID"`
	UserID   string `path:"userID" doc:"Discord user ID"`
	AdminKey string `header:"X-Admin-Key" doc:"Admin API key"`
	Body     struct {
		XP    int64 `json:"xp" doc:"Replacement XP value; negatives clamp at the floor"`
		Level *int  `json:"level,omitempty" minimum:"0" doc:"Optional explicit level before normalization"`
	}
}

// SetXPOutput wraps the override outcome for Huma.
type SetXPOutput struct {
	Body domain.Result
}

func (s *Server) handleSetUserXP(ctx context.Context, input *SetXPInput) (*SetXPOutput, error) {
	if err := s.requireAdminKey(input.AdminKey); err != nil {
		return nil, huma.Error401Unauthorized("unauthorized", err)
	}

	result, err := s.services.Progression.AdminSet(ctx, input.ServerID, input.UserID, input.Body.XP, input.Body.Level)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to set XP", err)
	}
	return &SetXPOutput{Body: *result}, nil
}

// ServerConfigInput identifies the server whose config is requested.
type ServerConfigInput struct {
	ServerID string `path:"serverID" doc:"Discord server (guild) ID"`
}

// ServerConfigOutput wraps a server config for Huma.
type ServerConfigOutput struct {
	Body *domain.ServerConfig
}

func (s *Server) handleGetServerConfig(ctx context.Context, input *ServerConfigInput) (*ServerConfigOutput, error) {
	cfg, err := s.services.Settings.GetServerConfig(ctx, input.ServerID)
	if err != nil {
		return nil, huma.Error404NotFound("config unavailable", err)
	}
	return &ServerConfigOutput{Body: cfg}, nil
}

// PutServerConfigInput is the config replacement request.
type PutServerConfigInput struct {
	ServerID string `path:"serverID" doc:"Discord server (guild) ID"`
	AdminKey string `header:"X-Admin-Key" doc:"Admin API key"`
	Body     struct {
		RoleMappings     map[int]string `json:"role_mappings,omitempty" doc:"Level threshold to Discord role ID"`
		LevelUpChannelID string         `json:"level_up_channel_id,omitempty"`
		WelcomeChannelID string         `json:"welcome_channel_id,omitempty"`
		WelcomeMessage   string         `json:"welcome_message,omitempty"`
	}
}

func (s *Server) handlePutServerConfig(ctx context.Context, input *PutServerConfigInput) (*ServerConfigOutput, error) {
	if err := s.requireAdminKey(input.AdminKey); err != nil {
		return nil, huma.Error401Unauthorized("unauthorized", err)
	}

	cfg, err := s.services.Settings.UpdateServerConfig(ctx, &domain.ServerConfig{
		ServerID:         input.ServerID,
		RoleMappings:     input.Body.RoleMappings,
		LevelUpChannelID: input.Body.LevelUpChannelID,
		WelcomeChannelID: input.Body.WelcomeChannelID,
		WelcomeMessage:   input.Body.WelcomeMessage,
	})
	if err != nil {
		return nil, huma.Error400BadRequest("invalid config", err)
	}
	return &ServerConfigOutput{Body: cfg}, nil
}

// ServerActivityInput identifies the server and bounds the listing.
type ServerActivityInput struct {
	ServerID string `path:"serverID" doc:"Discord server (guild) ID"`
	Limit    int    `query:"limit" default:"25" minimum:"1" maximum:"100" doc:"Maximum entries returned"`
}

// ServerActivityOutput wraps the journal listing for Huma.
type ServerActivityOutput struct {
	Body struct {
		Events []*domain.JournalEntry `json:"events"`
	}
}

func (s *Server) handleGetServerActivity(ctx context.Context, input *ServerActivityInput) (*ServerActivityOutput, error) {
	out := &ServerActivityOutput{}
	out.Body.Events = []*domain.JournalEntry{}

	if s.journal == nil {
		return out, nil
	}

	limit := input.Limit
	if limit < 1 {
		limit = 25
	}

	events, err := s.journal.ListRecent(ctx, input.ServerID, limit)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to list activity", err)
	}
	if events != nil {
		out.Body.Events = events
	}
	return out, nil
}
