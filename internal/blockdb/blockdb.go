// Package blockdb persists data blocks to SQLite so pipeline stages can be
// run one at a time: an upstream stage saves its block, a downstream stage
// loads it by ID.
package blockdb

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite connection holding saved blocks.
type DB struct {
	*sql.DB
}

// Open opens (or creates) the block database at path and applies the
// connection PRAGMAs. It does not run migrations; call MigrateUp first on a
// fresh database.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open block database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA temp_store=MEMORY",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}

	return &DB{db}, nil
}
