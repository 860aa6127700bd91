// Package di provides dependency injection configuration for the LevelUp server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/levelupapp/levelup-server/internal/backup"
	"github.com/levelupapp/levelup-server/internal/cache"
	"github.com/levelupapp/levelup-server/internal/config"
	"github.com/levelupapp/levelup-server/internal/di/providers"
	"github.com/levelupapp/levelup-server/internal/logger"
	"github.com/levelupapp/levelup-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Database layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideJournal)
	do.Provide(injector, providers.ProvideBackupService)

	// Engine plumbing
	do.Provide(injector, providers.ProvideProgressCache)
	do.Provide(injector, providers.ProvideMessageRing)
	do.Provide(injector, providers.ProvideCooldown)
	do.Provide(injector, providers.ProvideProfileLookup)
	do.Provide(injector, providers.ProvideRoleSyncer)

	// Business services
	do.Provide(injector, providers.ProvideSettingsService)
	do.Provide(injector, providers.ProvideProgressionService)
	do.Provide(injector, providers.ProvideLeaderboardService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.JournalHandle](injector)
	_ = do.MustInvoke[*backup.Service](injector)
	_ = do.MustInvoke[*cache.ProgressCache](injector)
	_ = do.MustInvoke[*cache.MessageRing](injector)
	_ = do.MustInvoke[*providers.CooldownHandle](injector)
	_ = do.MustInvoke[*providers.ProfileLookupHandle](injector)
	_ = do.MustInvoke[*providers.RoleSyncerHandle](injector)

	// Business services
	_ = do.MustInvoke[*service.SettingsService](injector)
	_ = do.MustInvoke[*service.ProgressionService](injector)
	_ = do.MustInvoke[*service.LeaderboardService](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
