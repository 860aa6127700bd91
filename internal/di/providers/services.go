package providers

import (
	"github.com/samber/do/v2"

	"github.com/levelupapp/levelup-server/internal/cache"
	"github.com/levelupapp/levelup-server/internal/config"
	"github.com/levelupapp/levelup-server/internal/domain"
	"github.com/levelupapp/levelup-server/internal/logger"
	"github.com/levelupapp/levelup-server/internal/profile"
	"github.com/levelupapp/levelup-server/internal/ratelimit"
	"github.com/levelupapp/levelup-server/internal/service"
)

// ProvideProgressCache provides the read-through record cache.
func ProvideProgressCache(i do.Injector) (*cache.ProgressCache, error) {
	return cache.NewProgressCache(), nil
}

// ProvideMessageRing provides the recent-message history.
func ProvideMessageRing(i do.Injector) (*cache.MessageRing, error) {
	return cache.NewMessageRing(cache.DefaultMessageHistory), nil
}

// CooldownHandle wraps the XP cooldown limiter. Limiter is nil when the
// cooldown is disabled by configuration.
type CooldownHandle struct {
	Limiter *ratelimit.KeyedLimiter
}

// ProvideCooldown provides the per-user XP cooldown.
func ProvideCooldown(i do.Injector) (*CooldownHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.XP.CooldownRPS <= 0 {
		log.Info("XP cooldown disabled")
		return &CooldownHandle{}, nil
	}

	log.Info("XP cooldown enabled",
		"rps", cfg.XP.CooldownRPS,
		"burst", cfg.XP.CooldownBurst,
	)
	return &CooldownHandle{
		Limiter: ratelimit.New(cfg.XP.CooldownRPS, cfg.XP.CooldownBurst),
	}, nil
}

// ProfileLookupHandle wraps the enrichment lookup.
type ProfileLookupHandle struct {
	Lookup profile.Lookup
}

// ProvideProfileLookup provides the leaderboard enrichment source: the
// Discord REST client when a bot token is configured, a no-op otherwise.
func ProvideProfileLookup(i do.Injector) (*ProfileLookupHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Discord.BotToken == "" {
		log.Info("Profile enrichment disabled, no bot token configured")
		return &ProfileLookupHandle{Lookup: profile.Noop{}}, nil
	}

	client := profile.NewDiscordClient(
		cfg.Discord.BotToken,
		cfg.Discord.APIBaseURL,
		cfg.Discord.LookupTimeout,
		log.Logger,
	)
	log.Info("Profile enrichment enabled", "api_url", cfg.Discord.APIBaseURL)
	return &ProfileLookupHandle{Lookup: client}, nil
}

// ProvideSettingsService provides server configuration management.
func ProvideSettingsService(i do.Injector) (*service.SettingsService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSettingsService(storeHandle.Store, log.Logger), nil
}

// RoleSyncerHandle wraps the role syncer implementation.
type RoleSyncerHandle struct {
	Syncer service.RoleSyncer
}

// ProvideRoleSyncer provides the role reconciliation hook.
func ProvideRoleSyncer(i do.Injector) (*RoleSyncerHandle, error) {
	settings := do.MustInvoke[*service.SettingsService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return &RoleSyncerHandle{
		Syncer: service.NewLoggingRoleSyncer(settings, log.Logger),
	}, nil
}

// ProvideProgressionService provides the XP engine.
func ProvideProgressionService(i do.Injector) (*service.ProgressionService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	journalHandle := do.MustInvoke[*JournalHandle](i)
	progressCache := do.MustInvoke[*cache.ProgressCache](i)
	messages := do.MustInvoke[*cache.MessageRing](i)
	cooldown := do.MustInvoke[*CooldownHandle](i)
	roleSyncer := do.MustInvoke[*RoleSyncerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	curve := domain.Curve{
		PerMessage:   cfg.XP.PerMessage,
		PerLevelUnit: cfg.XP.PerLevelUnit,
	}

	return service.NewProgressionService(
		storeHandle.Store,
		journalHandle.Journal,
		progressCache,
		messages,
		cooldown.Limiter,
		roleSyncer.Syncer,
		curve,
		log.Logger,
	), nil
}

// ProvideLeaderboardService provides ranked views over the ledger.
func ProvideLeaderboardService(i do.Injector) (*service.LeaderboardService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	lookupHandle := do.MustInvoke[*ProfileLookupHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	curve := domain.Curve{
		PerMessage:   cfg.XP.PerMessage,
		PerLevelUnit: cfg.XP.PerLevelUnit,
	}

	return service.NewLeaderboardService(
		storeHandle.Store,
		lookupHandle.Lookup,
		cfg.Discord.LookupTimeout,
		curve,
		log.Logger,
	), nil
}
