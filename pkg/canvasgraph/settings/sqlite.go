package settings

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteStore persists settings to SQLite. It is the production store:
// one small local database per workstation, shared by every project the
// user opens.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewSQLiteStore creates a new SQLite settings store.
// The path should be a file path (e.g. "./canvas-settings.db") or
// ":memory:" for testing.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent read performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS canvas_settings (
			project_id TEXT NOT NULL PRIMARY KEY,
			locked INTEGER NOT NULL,
			viewport_x REAL NOT NULL,
			viewport_y REAL NOT NULL,
			zoom REAL NOT NULL,
			updated_at TEXT NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Save implements Store.
func (s *SQLiteStore) Save(projectID string, set Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	locked := 0
	if set.Locked {
		locked = 1
	}

	_, err := s.db.Exec(`
		INSERT INTO canvas_settings (project_id, locked, viewport_x, viewport_y, zoom, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(project_id) DO UPDATE SET
			locked = excluded.locked,
			viewport_x = excluded.viewport_x,
			viewport_y = excluded.viewport_y,
			zoom = excluded.zoom,
			updated_at = excluded.updated_at
	`, projectID, locked, set.ViewportX, set.ViewportY, set.Zoom,
		time.Now().UTC().Format(time.RFC3339Nano))

	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// Load implements Store.
func (s *SQLiteStore) Load(projectID string) (Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return Settings{}, ErrStoreClosed
	}

	var set Settings
	var locked int
	var updatedAt string
	err := s.db.QueryRow(`
		SELECT locked, viewport_x, viewport_y, zoom, updated_at
		FROM canvas_settings
		WHERE project_id = ?
	`, projectID).Scan(&locked, &set.ViewportX, &set.ViewportY, &set.Zoom, &updatedAt)

	if err == sql.ErrNoRows {
		return Settings{}, ErrNotFound
	}
	if err != nil {
		return Settings{}, fmt.Errorf("load settings: %w", err)
	}

	set.Locked = locked != 0
	set.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return set, nil
}

// Delete implements Store.
func (s *SQLiteStore) Delete(projectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	_, err := s.db.Exec(`
		DELETE FROM canvas_settings WHERE project_id = ?
	`, projectID)
	if err != nil {
		return fmt.Errorf("delete settings: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	return s.db.Close()
}
