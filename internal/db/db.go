package db

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3" // registers "sqlite3" (cgo)
	_ "modernc.org/sqlite"          // registers "sqlite" (pure Go)
)

// DB wraps a single SQLite database opened for the front-end
type DB struct {
	*sql.DB
	Path string
}

// Open opens (creating if needed) the SQLite database at path with the
// given driver name and applies connection pragmas. The schema is left
// entirely to the caller.
func Open(driver, path string) (*DB, error) {
	sqlDB, err := sql.Open(driver, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection keeps per-connection pragmas and :memory: databases
	// consistent; SQLite serializes writers anyway.
	sqlDB.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
	} {
		if _, err := sqlDB.Exec(pragma); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	return &DB{DB: sqlDB, Path: path}, nil
}

// Optimize runs SQLite's housekeeping: query planner statistics and a WAL
// checkpoint that truncates the log.
func (db *DB) Optimize() error {
	if _, err := db.Exec("PRAGMA optimize"); err != nil {
		return fmt.Errorf("optimize failed: %w", err)
	}
	if _, err := db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return fmt.Errorf("wal checkpoint failed: %w", err)
	}
	return nil
}
