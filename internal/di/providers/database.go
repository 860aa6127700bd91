package providers

import (
	"os"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/levelupapp/levelup-server/internal/backup"
	"github.com/levelupapp/levelup-server/internal/config"
	"github.com/levelupapp/levelup-server/internal/logger"
	"github.com/levelupapp/levelup-server/internal/store"
	"github.com/levelupapp/levelup-server/internal/store/sqlite"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the Badger-backed record store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if err := os.MkdirAll(cfg.Storage.BasePath, 0o750); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(cfg.Storage.BasePath, "db")
	db, err := store.New(dbPath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "path", dbPath)

	return &StoreHandle{Store: db}, nil
}

// ProvideBackupService provides snapshot backups of the record store.
func ProvideBackupService(i do.Injector) (*backup.Service, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	backupDir := filepath.Join(cfg.Storage.BasePath, "backups")
	return backup.NewService(storeHandle.Store, backupDir, log.Logger), nil
}

// JournalHandle wraps the progression journal with shutdown capability.
type JournalHandle struct {
	*sqlite.Journal
}

// Shutdown implements do.Shutdownable.
func (h *JournalHandle) Shutdown() error {
	return h.Close()
}

// ProvideJournal provides the SQLite progression journal.
func ProvideJournal(i do.Injector) (*JournalHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	journalPath := filepath.Join(cfg.Storage.BasePath, "journal.db")
	journal, err := sqlite.Open(journalPath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Journal initialized", "path", journalPath)

	return &JournalHandle{Journal: journal}, nil
}
