package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/levelupapp/levelup-server/internal/api"
	"github.com/levelupapp/levelup-server/internal/backup"
	"github.com/levelupapp/levelup-server/internal/config"
	"github.com/levelupapp/levelup-server/internal/logger"
	"github.com/levelupapp/levelup-server/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	journalHandle := do.MustInvoke[*JournalHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	services := &api.Services{
		Progression: do.MustInvoke[*service.ProgressionService](i),
		Leaderboard: do.MustInvoke[*service.LeaderboardService](i),
		Settings:    do.MustInvoke[*service.SettingsService](i),
		Backups:     do.MustInvoke[*backup.Service](i),
	}

	handler := api.NewServer(
		storeHandle.Store,
		journalHandle.Journal,
		services,
		cfg.Server.CORSOrigins,
		cfg.Auth.AdminKeyHash,
		log.Logger,
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr)

	return &HTTPServerHandle{Server: srv}, nil
}
