// Package main seeds the database with test progression data.
//
// It runs synthetic message events through the real engine, so records, the
// global ledger, and the journal all stay consistent. Useful for exercising
// leaderboard and role-ladder features against a populated database.
//
// Usage:
//
//	DB_PATH=~/LevelUp/data go run ./cmd/seed
//	DB_PATH=~/LevelUp/data go run ./cmd/seed --create-configs  # Also seed role ladders
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/levelupapp/levelup-server/internal/cache"
	"github.com/levelupapp/levelup-server/internal/domain"
	"github.com/levelupapp/levelup-server/internal/service"
	"github.com/levelupapp/levelup-server/internal/store"
	"github.com/levelupapp/levelup-server/internal/store/sqlite"
)

var (
	createConfigs = flag.Bool("create-configs", false, "Seed a role ladder for each test server")
	numUsers      = flag.Int("users", 5, "Number of test users per server")
	numDays       = flag.Int("days", 14, "Days of simulated activity")
)

// testServerIDs are fake guild snowflakes for generated activity.
var testServerIDs = []string{
	"100000000000000001",
	"100000000000000002",
}

// testUserNames are display-friendly user IDs for generated activity.
var testUserNames = []string{
	"seed-alex",
	"seed-jordan",
	"seed-sam",
	"seed-casey",
	"seed-riley",
	"seed-quinn",
	"seed-avery",
	"seed-drew",
}

func main() {
	flag.Parse()

	basePath := os.Getenv("DB_PATH")
	if basePath == "" {
		basePath = os.ExpandEnv("$HOME/LevelUp/data")
	}

	fmt.Printf("Opening database at: %s\n", basePath)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	s, err := store.New(filepath.Join(basePath, "db"), logger)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	journal, err := sqlite.Open(filepath.Join(basePath, "journal.db"), logger)
	if err != nil {
		log.Fatalf("Failed to open journal: %v", err)
	}
	defer journal.Close()

	ctx := context.Background()
	curve := domain.DefaultCurve()

	settings := service.NewSettingsService(s, logger)
	engine := service.NewProgressionService(
		s,
		journal,
		cache.NewProgressCache(),
		cache.NewMessageRing(cache.DefaultMessageHistory),
		nil, // no cooldown while seeding
		service.NewLoggingRoleSyncer(settings, logger),
		curve,
		logger,
	)

	if *createConfigs {
		seedConfigs(ctx, settings)
	}

	users := testUserNames
	if *numUsers < len(users) {
		users = users[:*numUsers]
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	for _, serverID := range testServerIDs {
		fmt.Printf("\nSeeding server %s\n", serverID)

		for _, userID := range users {
			eventsCreated := 0

			for day := *numDays - 1; day >= 0; day-- {
				// Recent days always have activity so streak-style views have
				// data; older days are hit-or-miss.
				if day > 1 && rng.Float32() > 0.8 {
					continue
				}

				// 1-12 qualifying messages per active day.
				messages := 1 + rng.Intn(12)
				for range messages {
					if _, err := engine.Apply(ctx, domain.Event{
						ServerID: serverID,
						UserID:   userID,
					}); err != nil {
						log.Printf("Failed to apply event: %v", err)
						continue
					}
					eventsCreated++
				}
			}

			progress, err := engine.GetProgress(ctx, serverID, userID)
			if err != nil {
				log.Printf("Failed to read back %s: %v", userID, err)
				continue
			}
			fmt.Printf("  %s: %d events, level %d (%d XP)\n",
				userID, eventsCreated, progress.Level, progress.XP)
		}
	}

	fmt.Println("\nSeeding complete!")
}

// seedConfigs installs a three-tier role ladder on each test server.
func seedConfigs(ctx context.Context, settings *service.SettingsService) {
	fmt.Println("\n=== Seeding Server Configs ===")

	for _, serverID := range testServerIDs {
		cfg := &domain.ServerConfig{
			ServerID: serverID,
			RoleMappings: map[int]string{
				1: "role-bronze",
				3: "role-silver",
				5: "role-gold",
			},
			LevelUpChannelID: "chan-level-up",
		}

		if _, err := settings.UpdateServerConfig(ctx, cfg); err != nil {
			log.Printf("Failed to seed config for %s: %v", serverID, err)
			continue
		}
		fmt.Printf("  Configured role ladder for %s\n", serverID)
	}
}
