package db

import (
	"database/sql"
	"fmt"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	Up      func(*sql.DB) error
}

// migrations is the list of all migrations in order
var migrations = []Migration{
	{
		Version: 1,
		Name:    "initial_mailbox_schema",
		Up:      migrationV1,
	},
	{
		Version: 2,
		Name:    "add_structured_payload_to_requests",
		Up:      migrationV2,
	},
}

// RunMigrations applies any migrations not yet recorded in schema_version.
func RunMigrations(database *sql.DB) error {
	applied := make(map[int]bool)
	rows, err := database.Query("SELECT version FROM schema_version")
	if err != nil {
		return fmt.Errorf("failed to read schema versions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return fmt.Errorf("failed to scan schema version: %w", err)
		}
		applied[v] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate schema versions: %w", err)
	}

	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}
		if err := m.Up(database); err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", m.Version, m.Name, err)
		}
		if _, err := database.Exec("INSERT INTO schema_version (version) VALUES (?)", m.Version); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
		}
	}

	return nil
}

// migrationV1 bootstraps the mailbox tables. SchemaSQL is idempotent
// (CREATE IF NOT EXISTS), so this is safe on databases that predate
// schema versioning.
func migrationV1(database *sql.DB) error {
	_, err := database.Exec(SchemaSQL)
	return err
}

// migrationV2 adds the structured payload column to cue_requests.
// Early mailboxes carried the prompt only.
func migrationV2(database *sql.DB) error {
	hasColumn, err := columnExists(database, "cue_requests", "payload")
	if err != nil {
		return err
	}
	if hasColumn {
		return nil
	}
	_, err = database.Exec("ALTER TABLE cue_requests ADD COLUMN payload TEXT")
	return err
}

// columnExists reports whether table has a column with the given name.
func columnExists(database *sql.DB, table, column string) (bool, error) {
	rows, err := database.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, fmt.Errorf("failed to inspect table %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid       int
			name      string
			colType   string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return false, fmt.Errorf("failed to scan column info: %w", err)
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}
