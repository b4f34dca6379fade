package db

import (
	"database/sql"
	"fmt"
)

// SchemaSQL is the complete mailbox schema for fresh installs.
//
// This is the single source of truth for the mailbox layout. Tests apply it
// via GetSchemaSQL() instead of hardcoding CREATE TABLE statements, so a
// repository referencing a column that is missing here fails immediately
// with "no such column" rather than drifting silently.
//
// The engine process and the console process rendezvous through these three
// tables and nothing else: the engine appends participants and requests, the
// console appends responses and flips request status. No code path deletes
// rows; the tables are the audit trail.
//
// Keep this in sync with migrations.go: SchemaSQL reflects the state after
// all migrations have been applied.
const SchemaSQL = `
-- Participants (stable agent identities)
CREATE TABLE IF NOT EXISTS participants (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	agent_id TEXT NOT NULL UNIQUE,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	last_seen_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Cue requests (agent -> human)
CREATE TABLE IF NOT EXISTS cue_requests (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	request_id TEXT NOT NULL UNIQUE,
	agent_id TEXT NOT NULL,
	prompt TEXT NOT NULL,
	payload TEXT,
	status TEXT NOT NULL CHECK(status IN ('pending', 'answered', 'cancelled', 'expired')) DEFAULT 'pending',
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Cue responses (human -> agent)
-- Deliberately no foreign key on request_id: the console writes
-- fire-and-forget, and the engine ignores responses it has no waiter for.
CREATE TABLE IF NOT EXISTS cue_responses (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	response_id TEXT NOT NULL UNIQUE,
	request_id TEXT NOT NULL,
	content TEXT NOT NULL,
	cancelled INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_cue_requests_agent_status ON cue_requests(agent_id, status);
CREATE INDEX IF NOT EXISTS idx_cue_requests_status ON cue_requests(status);
CREATE INDEX IF NOT EXISTS idx_cue_responses_request ON cue_responses(request_id);
`

// InitSchema brings the given database up to the current schema version.
// Fresh databases get SchemaSQL directly with all migrations marked applied;
// existing databases run any pending migrations.
func InitSchema(database *sql.DB) error {
	var tableCount int
	err := database.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableCount)
	if err != nil {
		return fmt.Errorf("failed to check schema version table: %w", err)
	}

	if tableCount == 0 {
		if _, err := database.Exec(SchemaSQL); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
		if _, err := database.Exec(`
			CREATE TABLE IF NOT EXISTS schema_version (
				version INTEGER PRIMARY KEY,
				applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
			)
		`); err != nil {
			return fmt.Errorf("failed to create schema_version table: %w", err)
		}
		// Fresh install starts at the latest version
		for _, m := range migrations {
			if _, err := database.Exec("INSERT INTO schema_version (version) VALUES (?)", m.Version); err != nil {
				return fmt.Errorf("failed to record schema version %d: %w", m.Version, err)
			}
		}
		return nil
	}

	return RunMigrations(database)
}

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
// Tests should use this instead of hardcoding their own schema to prevent drift.
func GetSchemaSQL() string {
	return SchemaSQL
}
