package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Config controls how the store is opened.
type Config struct {
	// Path is the SQLite file. MemoryPath selects an in-memory database.
	Path string
}

// OpenDB opens the SQLite database described by cfg.
// Sets WAL mode and enables foreign keys.
// Runs migrations automatically.
func OpenDB(cfg Config) (*sql.DB, error) {
	path := cfg.Path
	if path == "" {
		return nil, fmt.Errorf("database path is required")
	}
	if path != MemoryPath {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Every connection to ":memory:" is a separate database.
	if path == MemoryPath {
		db.SetMaxOpenConns(1)
	} else {
		if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting WAL mode: %w", err)
		}
	}

	// Enable foreign key enforcement
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	if err := Migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return db, nil
}

// dsn applies per-connection pragmas through the driver so that every pooled
// connection enforces foreign keys, not only the first one. Transactions take
// the write lock at BEGIN so busy_timeout covers the whole read-check-write.
func dsn(path string) string {
	if path == MemoryPath {
		return path
	}
	return path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_txlock=immediate"
}
