// Package sqlite persists the progression journal, an append-only record of
// every XP event the engine processes.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/levelupapp/levelup-server/internal/domain"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// Journal provides SQLite-backed storage for progression events.
type Journal struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open creates a new journal at the given path.
// It configures WAL mode, sets pragmas, and runs schema migrations.
func Open(path string, logger *slog.Logger) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("exec schema: %w", err)
	}

	return &Journal{db: db, logger: logger}, nil
}

// Close closes the underlying database connection.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Ping verifies the database connection is alive.
func (j *Journal) Ping(ctx context.Context) error {
	return j.db.PingContext(ctx)
}

// Record appends one progression event to the journal.
func (j *Journal) Record(ctx context.Context, entry *domain.JournalEntry) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO progression_events (
			id, server_id, user_id, xp_delta, direct_set,
			old_level, new_level, new_xp, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.ServerID,
		entry.UserID,
		entry.XPDelta,
		boolToInt(entry.DirectSet),
		entry.OldLevel,
		entry.NewLevel,
		entry.NewXP,
		formatTime(entry.CreatedAt),
	)
	return err
}

// journalColumns is the ordered list of columns selected in journal queries.
// Must match the scan order in scanEntry.
const journalColumns = `id, server_id, user_id, xp_delta, direct_set,
	old_level, new_level, new_xp, created_at`

func scanEntry(scanner interface{ Scan(dest ...any) error }) (*domain.JournalEntry, error) {
	var (
		entry     domain.JournalEntry
		directSet int
		createdAt string
	)

	err := scanner.Scan(
		&entry.ID,
		&entry.ServerID,
		&entry.UserID,
		&entry.XPDelta,
		&directSet,
		&entry.OldLevel,
		&entry.NewLevel,
		&entry.NewXP,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	entry.DirectSet = directSet != 0
	entry.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListRecent retrieves the newest events for a server, newest first.
func (j *Journal) ListRecent(ctx context.Context, serverID string, limit int) ([]*domain.JournalEntry, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT `+journalColumns+` FROM progression_events
		WHERE server_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`,
		serverID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.JournalEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// ListRecentForUser retrieves the newest events for one user on one server,
// newest first.
func (j *Journal) ListRecentForUser(ctx context.Context, serverID, userID string, limit int) ([]*domain.JournalEntry, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT `+journalColumns+` FROM progression_events
		WHERE server_id = ? AND user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`,
		serverID, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.JournalEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// formatTime formats a time.Time to RFC3339Nano for storage.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime parses a RFC3339Nano string back to time.Time.
func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
