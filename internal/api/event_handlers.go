package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/levelupapp/levelup-server/internal/cache"
	"github.com/levelupapp/levelup-server/internal/domain"
)

func (s *Server) registerEventRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "ingestEvent",
		Method:      http.MethodPost,
		Path:        "/api/v1/events",
		Summary:     "Ingest a message event",
		Description: "Reports one observed chat message; awards XP subject to the cooldown",
		Tags:        []string{"Events"},
	}, s.handleIngestEvent)
}

// EventRequest is one observed chat message reported by the bot process.
type EventRequest struct {
	ServerID  string `json:"server_id" minLength:"1" doc:"Discord server (guild) ID"`
	UserID    string `json:"user_id" minLength:"1" doc:"Discord user ID"`
	ChannelID string `json:"channel_id,omitempty" doc:"Channel the message was posted in"`
	Content   string `json:"content,omitempty" doc:"Message content, kept only in the in-memory history"`
	XPDelta   int64  `json:"xp_delta,omitempty" doc:"Bonus XP on top of the per-message award"`
}

// EventResponse reports the outcome of one ingested event.
type EventResponse struct {
	Awarded     bool  `json:"awarded" doc:"Whether the message earned XP (false when cooled down)"`
	XP          int64 `json:"xp" doc:"XP within the current level after the event"`
	Level       int   `json:"level" doc:"Level after the event"`
	LeveledUp   bool  `json:"leveled_up" doc:"Whether the event crossed a level boundary upward"`
	LeveledDown bool  `json:"leveled_down" doc:"Whether the event crossed a level boundary downward"`
}

// EventInput wraps the ingestion request body for Huma.
type EventInput struct {
	Body EventRequest
}

// EventOutput wraps the ingestion response for Huma.
type EventOutput struct {
	Body EventResponse
}

func (s *Server) handleIngestEvent(ctx context.Context, input *EventInput) (*EventOutput, error) {
	ev := domain.Event{
		ServerID: input.Body.ServerID,
		UserID:   input.Body.UserID,
		XPDelta:  input.Body.XPDelta,
	}
	msg := cache.Message{
		ChannelID: input.Body.ChannelID,
		Content:   input.Body.Content,
	}

	result, awarded, err := s.services.Progression.HandleMessage(ctx, ev, msg)
	if err != nil {
		s.logger.Error("event ingestion failed",
			"server_id", input.Body.ServerID,
			"user_id", input.Body.UserID,
			"error", err,
		)
		return nil, huma.Error500InternalServerError("failed to process event", err)
	}

	return &EventOutput{
		Body: EventResponse{
			Awarded:     awarded,
			XP:          result.XP,
			Level:       result.Level,
			LeveledUp:   result.LeveledUp,
			LeveledDown: result.LeveledDown,
		},
	}, nil
}
