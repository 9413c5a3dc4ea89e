// Package journal keeps a sqlite history of every event the daemon handled
// and the effects it produced.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/manav03panchal/babyreminder/internal/logging"
	"github.com/manav03panchal/babyreminder/internal/reminder"
)

// Entry is one handled event.
type Entry struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Kind      string    `json:"kind"`
	Device    string    `json:"device,omitempty"`
	Source    string    `json:"source,omitempty"`
	Effects   string    `json:"effects"`
	Error     string    `json:"error,omitempty"`
}

// Failed reports whether handling the event returned an error.
func (e Entry) Failed() bool {
	return e.Error != ""
}

// Journal is the sqlite event history.
type Journal struct {
	db   *sql.DB
	path string
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME NOT NULL,
		kind TEXT NOT NULL,
		device TEXT,
		effects TEXT NOT NULL DEFAULT '',
		error TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_events_timestamp ON events (timestamp);`,
	`ALTER TABLE events ADD COLUMN source TEXT;`,
}

// Open opens (creating if needed) the journal at path and migrates the
// schema.
func Open(ctx context.Context, path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal=WAL&_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping journal: %w", err)
	}

	j := &Journal{db: db, path: path}
	if err := j.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return j, nil
}

// migrate applies the migrations newer than PRAGMA user_version.
func (j *Journal) migrate(ctx context.Context) error {
	var version int
	if err := j.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("failed to read journal version: %w", err)
	}

	for i := version; i < len(migrations); i++ {
		tx, err := j.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin migration %d: %w", i+1, err)
		}
		if _, err := tx.ExecContext(ctx, migrations[i]); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to apply migration %d: %w", i+1, err)
		}
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", i+1)); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to bump journal version: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", i+1, err)
		}
		logging.DebugLog("journal migrated", "version", i+1)
	}
	return nil
}

// Path returns the sqlite file path.
func (j *Journal) Path() string {
	return j.path
}

// Close closes the journal.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Record stores a handled event with its effects and error.
func (j *Journal) Record(ctx context.Context, ev reminder.Event, effects []reminder.Effect, handleErr error) (int64, error) {
	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	var errText sql.NullString
	if handleErr != nil {
		errText = sql.NullString{String: handleErr.Error(), Valid: true}
	}

	res, err := j.db.ExecContext(ctx,
		`INSERT INTO events (timestamp, kind, device, source, effects, error) VALUES (?, ?, ?, ?, ?, ?)`,
		at.UTC(), string(ev.Kind), nullable(ev.Device), nullable(ev.Source), reminder.Summarize(effects), errText)
	if err != nil {
		return 0, fmt.Errorf("failed to insert journal entry: %w", err)
	}
	return res.LastInsertId()
}

// Recent returns up to limit entries, newest first. kinds optionally
// filters by event kind.
func (j *Journal) Recent(ctx context.Context, limit int, kinds ...string) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT id, timestamp, kind, device, source, effects, error FROM events`
	var args []any
	if len(kinds) > 0 {
		query += " WHERE kind IN (" + strings.Repeat("?,", len(kinds)-1) + "?)"
		for _, k := range kinds {
			args = append(args, k)
		}
	}
	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var device, source, errText sql.NullString
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.Kind, &device, &source, &e.Effects, &errText); err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}
		e.Device = device.String
		e.Source = source.String
		e.Error = errText.String
		e.Timestamp = e.Timestamp.Local()
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Prune deletes entries older than before and returns how many were removed.
func (j *Journal) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := j.db.ExecContext(ctx, `DELETE FROM events WHERE timestamp < ?`, before.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to prune journal: %w", err)
	}
	return res.RowsAffected()
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
