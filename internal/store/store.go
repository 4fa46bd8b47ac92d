// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists digest run history and the subscriber list in
// SQLite. Articles themselves are never written.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/market-digest/pkg/types"
)

// Store manages the SQLite database.
type Store struct {
	db *sql.DB

	// now stamps subscriber rows; replaced in tests.
	now func() time.Time
}

// NewStore opens or creates the database at cfg.Path, creating its
// directory and schema when missing.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	path := cfg.Path
	if path == "" {
		path = types.DefaultConfig().Store.Path
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			query TEXT,
			country TEXT,
			topic TEXT,
			article_count INTEGER NOT NULL DEFAULT 0,
			digest_length INTEGER NOT NULL DEFAULT 0,
			fallback INTEGER NOT NULL DEFAULT 0,
			provider_errors TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at)`,
		`CREATE TABLE IF NOT EXISTS subscribers (
			chat_id INTEGER PRIMARY KEY,
			added_at TEXT NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
