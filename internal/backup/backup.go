package backup

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// fileSuffix marks backup archives in the backup directory.
const fileSuffix = ".levelup.bak"

// Snapshotter streams a consistent snapshot of the database. Satisfied by
// store.Store.
type Snapshotter interface {
	Backup(w io.Writer) (uint64, error)
}

// Service manages backup creation and listing.
type Service struct {
	source    Snapshotter
	backupDir string
	logger    *slog.Logger
}

// NewService creates a backup service writing archives under backupDir.
func NewService(source Snapshotter, backupDir string, logger *slog.Logger) *Service {
	return &Service{
		source:    source,
		backupDir: backupDir,
		logger:    logger,
	}
}

// BackupResult describes a completed backup.
type BackupResult struct {
	ID       string        `json:"id"`
	Path     string        `json:"path"`
	Size     int64         `json:"size"`
	Checksum string        `json:"checksum"`
	Duration time.Duration `json:"duration"`
}

// Info describes an existing backup archive.
type Info struct {
	ID        string    `json:"id"`
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// Create writes a new backup archive. The snapshot is consistent even while
// the engine is applying events.
func (s *Service) Create(ctx context.Context) (*BackupResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(s.backupDir, 0o755); err != nil {
		return nil, fmt.Errorf("create backup dir: %w", err)
	}

	id := "backup-" + time.Now().Format("2006-01-02-150405")
	path := filepath.Join(s.backupDir, id+fileSuffix)

	s.logger.Info("creating backup", "output", path)
	start := time.Now()

	f, err := os.Create(path) //#nosec G304 -- Path is built from a timestamp under the configured backup dir
	if err != nil {
		return nil, fmt.Errorf("create backup file: %w", err)
	}

	hash := sha256.New()
	if _, err := s.source.Backup(io.MultiWriter(f, hash)); err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("write backup stream: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("close backup file: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	result := &BackupResult{
		ID:       id,
		Path:     path,
		Size:     info.Size(),
		Checksum: hex.EncodeToString(hash.Sum(nil)),
		Duration: time.Since(start),
	}

	s.logger.Info("backup complete",
		"path", result.Path,
		"size", result.Size,
		"duration", result.Duration,
		"checksum", result.Checksum)

	return result, nil
}

// List returns all available backups, newest first.
func (s *Service) List(ctx context.Context) ([]Info, error) {
	entries, err := os.ReadDir(s.backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var backups []Info
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileSuffix) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		backups = append(backups, Info{
			ID:        strings.TrimSuffix(entry.Name(), fileSuffix),
			Path:      filepath.Join(s.backupDir, entry.Name()),
			Size:      info.Size(),
			CreatedAt: info.ModTime(),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].CreatedAt.After(backups[j].CreatedAt)
	})

	return backups, nil
}

// Get returns a backup by ID.
func (s *Service) Get(ctx context.Context, id string) (*Info, error) {
	path := filepath.Join(s.backupDir, id+fileSuffix)

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrBackupNotFound
		}
		return nil, err
	}

	return &Info{
		ID:        id,
		Path:      path,
		Size:      info.Size(),
		CreatedAt: info.ModTime(),
	}, nil
}

// Delete removes a backup archive.
func (s *Service) Delete(ctx context.Context, id string) error {
	path := filepath.Join(s.backupDir, id+fileSuffix)

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return ErrBackupNotFound
		}
		return err
	}

	return os.Remove(path)
}
