package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations. Every statement is safe to re-run.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS projects (
		id            TEXT PRIMARY KEY,
		name          TEXT NOT NULL UNIQUE,
		created_at    TEXT NOT NULL
	)`,

	// Columns added after the first release. Fresh databases get them here too.
	`ALTER TABLE projects ADD COLUMN priority INTEGER NOT NULL DEFAULT 3`,
	`ALTER TABLE projects ADD COLUMN is_background INTEGER NOT NULL DEFAULT 0`,

	`CREATE TABLE IF NOT EXISTS tags (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL UNIQUE COLLATE NOCASE,
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tags_name ON tags(name)`,

	`CREATE TABLE IF NOT EXISTS project_tags (
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		tag_id     TEXT NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
		created_at TEXT NOT NULL,
		PRIMARY KEY (project_id, tag_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_project_tags_project ON project_tags(project_id)`,
	`CREATE INDEX IF NOT EXISTS idx_project_tags_tag ON project_tags(tag_id)`,

	// Sessions reference projects by name so that sessions survive project
	// deletion and show up as orphans in summaries.
	`CREATE TABLE IF NOT EXISTS sessions (
		id           TEXT PRIMARY KEY,
		project_name TEXT NOT NULL,
		start_time   TEXT NOT NULL,
		end_time     TEXT,
		notes        TEXT NOT NULL DEFAULT '',
		created_at   TEXT NOT NULL
	)`,
	`ALTER TABLE sessions ADD COLUMN is_paused INTEGER NOT NULL DEFAULT 0`,
	`ALTER TABLE sessions ADD COLUMN paused_seconds INTEGER NOT NULL DEFAULT 0`,

	`CREATE INDEX IF NOT EXISTS idx_sessions_project ON sessions(project_name)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_start_time ON sessions(start_time)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_end_time ON sessions(end_time)`,

	`CREATE TABLE IF NOT EXISTS session_pauses (
		id         TEXT PRIMARY KEY,
		session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		paused_at  TEXT NOT NULL,
		resumed_at TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_session_pauses_session ON session_pauses(session_id)`,

	`CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,
}
