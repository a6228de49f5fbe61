// Package instanceprefs provides persistent storage for per-instance
// dashboard preferences.
//
// Preferences such as the byte display unit and the safe-line toggle
// are stored keyed by (backend, instance_id) so that different
// instances can open their dashboard the way they were left.
//
// Storage is backed by the shared SQLite database at
// ~/.config/sqldash/sqldash.db (separate table from the audit log).
package instanceprefs

import (
	"database/sql"
	"fmt"
	"time"

	"sqldash/internal/database"
)

// Repository defines the persistence interface for instance preferences.
type Repository interface {
	// Get returns preferences for a (backend, instanceID) pair, or nil if not found.
	Get(backend, instanceID string) (*InstancePrefs, error)

	// Save upserts preferences for an instance.
	Save(prefs *InstancePrefs) error

	// Close releases database resources.
	Close() error
}

// SQLiteRepository implements Repository backed by a local SQLite database.
type SQLiteRepository struct {
	db *sql.DB
}

// Open creates or opens the repository at the default path.
func Open() (*SQLiteRepository, error) {
	path, err := database.DefaultPath()
	if err != nil {
		return nil, fmt.Errorf("instanceprefs: %w", err)
	}
	return OpenAt(path)
}

// OpenAt creates or opens a SQLite database at the given path.
func OpenAt(path string) (*SQLiteRepository, error) {
	db, err := database.Open(path)
	if err != nil {
		return nil, fmt.Errorf("instanceprefs: %w", err)
	}

	r := &SQLiteRepository{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

// migrate creates the instance_prefs table if it doesn't exist.
func (r *SQLiteRepository) migrate() error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS instance_prefs (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			backend        TEXT    NOT NULL,
			instance_id    TEXT    NOT NULL,
			unit           TEXT    NOT NULL DEFAULT '',
			show_safe_line INTEGER NOT NULL DEFAULT 0,
			updated_at     TEXT    NOT NULL DEFAULT (datetime('now')),
			UNIQUE(backend, instance_id)
		);
	`
	if _, err := r.db.Exec(ddl); err != nil {
		return fmt.Errorf("instanceprefs: migration failed: %w", err)
	}
	return nil
}

// Get returns preferences for a (backend, instanceID) pair, or nil if not found.
func (r *SQLiteRepository) Get(backend, instanceID string) (*InstancePrefs, error) {
	row := r.db.QueryRow(`
		SELECT id, backend, instance_id, unit, show_safe_line, updated_at
		FROM instance_prefs WHERE backend = ? AND instance_id = ?`,
		backend, instanceID)

	var prefs InstancePrefs
	var safeLine int
	var updatedStr string
	err := row.Scan(&prefs.ID, &prefs.Backend, &prefs.InstanceID, &prefs.Unit, &safeLine, &updatedStr)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("instanceprefs: query failed: %w", err)
	}
	prefs.ShowSafeLine = safeLine != 0
	prefs.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedStr)
	return &prefs, nil
}

// Save upserts preferences for an instance.
func (r *SQLiteRepository) Save(prefs *InstancePrefs) error {
	prefs.UpdatedAt = time.Now().UTC()

	safeLine := 0
	if prefs.ShowSafeLine {
		safeLine = 1
	}

	result, err := r.db.Exec(`
		INSERT INTO instance_prefs (backend, instance_id, unit, show_safe_line, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(backend, instance_id) DO UPDATE SET
			unit = excluded.unit,
			show_safe_line = excluded.show_safe_line,
			updated_at = excluded.updated_at`,
		prefs.Backend, prefs.InstanceID, prefs.Unit, safeLine, prefs.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("instanceprefs: upsert failed: %w", err)
	}

	if prefs.ID == 0 {
		id, err := result.LastInsertId()
		if err == nil {
			prefs.ID = id
		}
	}
	return nil
}

// Close releases database resources.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}
