package db

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// StoreFile is the name of Folio's own database in the data directory.
// The front-end cannot load it through the sql plugin.
const StoreFile = "folio-state.db"

// Settings keys
const (
	SettingLastDirectory = "last_directory"
)

// Store holds application state such as the last folder a dialog used
type Store struct {
	db *DB
}

// OpenStore opens (creating if needed) the state store in dataDir and
// migrates its schema
func OpenStore(driver, dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	database, err := Open(driver, filepath.Join(dataDir, StoreFile))
	if err != nil {
		return nil, err
	}
	if err := database.migrate(); err != nil {
		database.Close()
		return nil, err
	}
	return &Store{db: database}, nil
}

// Path returns the store's file path
func (s *Store) Path() string {
	return s.db.Path
}

// Optimize runs SQLite housekeeping on the store
func (s *Store) Optimize() error {
	return s.db.Optimize()
}

// Close closes the store
func (s *Store) Close() error {
	return s.db.Close()
}

// GetSetting returns the value for key, or "" if it is not set
func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get setting %q: %w", key, err)
	}
	return value, nil
}

// SetSetting creates or replaces the value for key
func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to set setting %q: %w", key, err)
	}
	return nil
}
