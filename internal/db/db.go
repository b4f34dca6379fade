package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// dsnOptions puts the mailbox in WAL mode so the agent-side engine and the
// human-side console can hold open handles on the same file at the same time.
// busy_timeout makes writers queue briefly instead of failing with SQLITE_BUSY.
const dsnOptions = "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"

// Open opens the mailbox database at path, creating the file and its parent
// directory if needed, and brings the schema up to date. The caller owns the
// returned handle. Every process that should see the same mailbox must be
// given the same path; there is no cross-check.
func Open(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create mailbox directory: %w", err)
		}
	}

	database, err := sql.Open("sqlite3", path+dsnOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to open mailbox database: %w", err)
	}

	if err := database.Ping(); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to reach mailbox database: %w", err)
	}

	if err := InitSchema(database); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return database, nil
}
