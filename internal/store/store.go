// Package store persists contacts, stories, activities, and sync state in
// sqlite. Deduplication of ingested activities is enforced by a unique
// index, not application-level locking.
package store

import (
	"database/sql"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Store handles all database operations
type Store struct {
	db *sql.DB
}

// New creates a new Store with SQLite backend
func New(dbPath string) (*Store, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS contacts (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		title TEXT,
		company TEXT,
		industry TEXT,
		last_contact TEXT,
		birthday DATETIME,
		handles TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS value_domains (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS stories (
		id TEXT PRIMARY KEY,
		domain_id TEXT REFERENCES value_domains(id),
		user_id TEXT NOT NULL,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		tags TEXT,
		usage_count INTEGER NOT NULL DEFAULT 0,
		success_rate REAL NOT NULL DEFAULT 0,
		last_used_at DATETIME,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS story_outcomes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		story_id TEXT NOT NULL REFERENCES stories(id),
		success BOOLEAN NOT NULL,
		recorded_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS activities (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		contact_id TEXT,
		platform TEXT NOT NULL,
		activity_type TEXT NOT NULL,
		content TEXT,
		url TEXT,
		native_id TEXT NOT NULL,
		importance INTEGER,
		importance_reason TEXT,
		suggested_action TEXT,
		timestamp DATETIME NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS connections (
		user_id TEXT NOT NULL,
		provider TEXT NOT NULL,
		access_token TEXT,
		refresh_token TEXT,
		expires_at DATETIME,
		last_synced_at DATETIME,
		notify_email TEXT,
		PRIMARY KEY (user_id, provider)
	);

	CREATE TABLE IF NOT EXISTS sync_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at DATETIME NOT NULL,
		finished_at DATETIME NOT NULL,
		processed INTEGER NOT NULL,
		linkedin INTEGER NOT NULL,
		facebook INTEGER NOT NULL,
		error_count INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_activities_dedup ON activities(user_id, platform, native_id);
	CREATE INDEX IF NOT EXISTS idx_activities_user_time ON activities(user_id, timestamp);
	CREATE INDEX IF NOT EXISTS idx_stories_user ON stories(user_id);
	CREATE INDEX IF NOT EXISTS idx_contacts_user ON contacts(user_id);
	`

	_, err := s.db.Exec(schema)
	return err
}
