// Package trackstore persists scans and track history to sqlite, so a
// run can be replayed deterministically (§6, §8's golden-replay
// property) without re-running the simulator that generated it.
package trackstore

import (
	"database/sql"
	"embed"
	"fmt"

	_ "modernc.org/sqlite"
)

// schemaSQL documents the cumulative effect of migrations/ for anyone
// reading the repository; Open always applies the real schema through
// MigrateUp rather than executing this directly, so the two can never
// drift into applying conflicting DDL.
//
//go:embed schema.sql
var schemaSQL string

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store wraps a sqlite connection holding persisted scans and track
// history for one or more runs (keyed by run ID).
type Store struct {
	*sql.DB
}

// Open opens (creating if necessary) a sqlite database at path and
// brings it up to the latest migration.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	s := &Store{db}
	if err := applyPragmas(db); err != nil {
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := s.MigrateUp(); err != nil {
		return nil, fmt.Errorf("migrate up: %w", err)
	}

	return s, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%q: %w", p, err)
		}
	}
	return nil
}
