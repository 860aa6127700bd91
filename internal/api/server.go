// Package api provides the HTTP API server and handlers for the LevelUp
// dashboard and bot ingestion.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"github.com/levelupapp/levelup-server/internal/backup"
	"github.com/levelupapp/levelup-server/internal/service"
	"github.com/levelupapp/levelup-server/internal/store"
	"github.com/levelupapp/levelup-server/internal/store/sqlite"
)

// Version is the API version reported in the OpenAPI document.
const Version = "1.0.0"

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Progression *service.ProgressionService
	Leaderboard *service.LeaderboardService
	Settings    *service.SettingsService
	Backups     *backup.Service
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store    *store.Store
	journal  *sqlite.Journal // nil when no journal is configured
	services *Services
	router   *chi.Mux
	api      huma.API
	logger   *slog.Logger

	// adminKeyHash is the bcrypt hash privileged requests must match.
	// Empty disables admin endpoints.
	adminKeyHash string

	bootID    string
	startedAt time.Time
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(st *store.Store, journal *sqlite.Journal, services *Services, corsOrigins []string, adminKeyHash string, logger *slog.Logger) *Server {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Admin-Key"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	humaConfig := huma.DefaultConfig("LevelUp API", Version)
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	humaAPI := humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s := &Server{
		store:        st,
		journal:      journal,
		services:     services,
		router:       router,
		api:          humaAPI,
		logger:       logger,
		adminKeyHash: adminKeyHash,
		bootID:       uuid.NewString(),
		startedAt:    time.Now(),
	}

	s.registerHealthRoutes()
	s.registerEventRoutes()
	s.registerLeaderboardRoutes()
	s.registerServerRoutes()
	s.registerBackupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
