// Package store persists frameworks, controls and mappings in SQLite.
// Parse results stay in memory until imported; everything queryable
// lives here.
package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Store wraps the mapping database
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies migrations
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite allows one writer; serialize through a single connection.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS frameworks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			short_name TEXT NOT NULL UNIQUE,
			version TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			is_active INTEGER NOT NULL DEFAULT 1
		)`,
		`CREATE TABLE IF NOT EXISTS controls (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			framework_id INTEGER NOT NULL REFERENCES frameworks(id),
			control_id TEXT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL DEFAULT '',
			UNIQUE(framework_id, control_id)
		)`,
		`CREATE TABLE IF NOT EXISTS mappings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			source_control_id INTEGER NOT NULL REFERENCES controls(id),
			target_control_id INTEGER NOT NULL REFERENCES controls(id),
			confidence REAL NOT NULL DEFAULT 1.0,
			source_type TEXT NOT NULL DEFAULT 'official',
			source_document TEXT NOT NULL DEFAULT '',
			notes TEXT NOT NULL DEFAULT '',
			UNIQUE(source_control_id, target_control_id)
		)`,
		`CREATE TABLE IF NOT EXISTS version_changes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			framework_id INTEGER NOT NULL REFERENCES frameworks(id),
			old_version TEXT NOT NULL,
			new_version TEXT NOT NULL,
			change_type TEXT NOT NULL,
			old_control_id TEXT NOT NULL DEFAULT '',
			new_control_id TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_controls_control_id ON controls(control_id)`,
		`CREATE INDEX IF NOT EXISTS idx_mappings_source ON mappings(source_control_id)`,
		`CREATE INDEX IF NOT EXISTS idx_mappings_target ON mappings(target_control_id)`,
	}

	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// Framework is a stored compliance framework
type Framework struct {
	ID           int64
	Name         string
	ShortName    string
	Version      string
	Description  string
	IsActive     bool
	ControlCount int
}

// Control is a stored control with its framework short name resolved
type Control struct {
	ID                 int64
	FrameworkID        int64
	ControlID          string
	Title              string
	Description        string
	Category           string
	FrameworkShortName string
}

// MappedControl is one side of a mapping as seen from a given control
type MappedControl struct {
	ControlID          string
	Title              string
	Description        string
	Category           string
	FrameworkShortName string
	Confidence         float64
	SourceType         string
	SourceDocument     string
}

// VersionChange records one control change between framework editions
type VersionChange struct {
	ID           int64
	OldVersion   string
	NewVersion   string
	ChangeType   string
	OldControlID string
	NewControlID string
	Description  string
	Category     string
}

// Transition summarizes the changes between two framework editions
type Transition struct {
	OldVersion  string
	NewVersion  string
	ChangeCount int
}
