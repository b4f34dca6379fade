// Package sqlite_test contains integration tests for SQLite repositories.
//
// # Schema Protection
//
// This file is the SINGLE POINT where the database schema is loaded for
// tests. All test setup uses db.GetSchemaSQL() so tests run against the
// authoritative schema; a repository referencing a column the schema lacks
// fails here first.
package sqlite_test

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/cue/internal/db"
)

// setupTestDB creates an in-memory database with the authoritative schema.
// This is the single shared test database setup function for all repository
// tests.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	// Use the authoritative schema from schema.go
	_, err = testDB.Exec(db.GetSchemaSQL())
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// seedParticipant inserts a test participant and returns its agent id.
func seedParticipant(t *testing.T, db *sql.DB, agentID string) string {
	t.Helper()
	if agentID == "" {
		agentID = "brave-fox-17"
	}
	_, err := db.Exec("INSERT INTO participants (agent_id) VALUES (?)", agentID)
	if err != nil {
		t.Fatalf("failed to seed participant: %v", err)
	}
	return agentID
}

// seedRequest inserts a test cue request and returns its request id.
func seedRequest(t *testing.T, db *sql.DB, requestID, agentID, prompt, status string) string {
	t.Helper()
	if requestID == "" {
		requestID = "req_000000000001"
	}
	if agentID == "" {
		agentID = "brave-fox-17"
	}
	if prompt == "" {
		prompt = "Test prompt"
	}
	if status == "" {
		status = "pending"
	}
	_, err := db.Exec(
		"INSERT INTO cue_requests (request_id, agent_id, prompt, status) VALUES (?, ?, ?, ?)",
		requestID, agentID, prompt, status,
	)
	if err != nil {
		t.Fatalf("failed to seed request: %v", err)
	}
	return requestID
}

// seedResponse inserts a test cue response and returns its response id.
func seedResponse(t *testing.T, db *sql.DB, responseID, requestID, content string) string {
	t.Helper()
	if responseID == "" {
		responseID = "resp_0000000000000000000000001"
	}
	if requestID == "" {
		requestID = "req_000000000001"
	}
	if content == "" {
		content = `{"text":"ok"}`
	}
	_, err := db.Exec(
		"INSERT INTO cue_responses (response_id, request_id, content) VALUES (?, ?, ?)",
		responseID, requestID, content,
	)
	if err != nil {
		t.Fatalf("failed to seed response: %v", err)
	}
	return responseID
}
