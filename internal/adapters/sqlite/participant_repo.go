// Package sqlite contains SQLite implementations of the repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/cue/internal/ports/secondary"
)

// ParticipantRepository implements secondary.ParticipantRepository with SQLite.
type ParticipantRepository struct {
	db *sql.DB
}

// NewParticipantRepository creates a new SQLite participant repository.
func NewParticipantRepository(db *sql.DB) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

// Create persists a new participant.
func (r *ParticipantRepository) Create(ctx context.Context, participant *secondary.ParticipantRecord) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO participants (agent_id) VALUES (?)",
		participant.AgentID,
	)
	if err != nil {
		return fmt.Errorf("failed to create participant: %w", err)
	}

	return nil
}

// GetByAgentID retrieves a participant by its agent id.
// Returns nil without error when the agent id is unknown; absence is a
// normal outcome for the registry, not a failure.
func (r *ParticipantRepository) GetByAgentID(ctx context.Context, agentID string) (*secondary.ParticipantRecord, error) {
	var (
		createdAt  time.Time
		lastSeenAt time.Time
	)

	record := &secondary.ParticipantRecord{}
	err := r.db.QueryRowContext(ctx,
		"SELECT agent_id, created_at, last_seen_at FROM participants WHERE agent_id = ?",
		agentID,
	).Scan(&record.AgentID, &createdAt, &lastSeenAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}

	record.CreatedAt = createdAt.Format(time.RFC3339)
	record.LastSeenAt = lastSeenAt.Format(time.RFC3339)

	return record, nil
}

// Touch refreshes a participant's last_seen_at timestamp.
func (r *ParticipantRepository) Touch(ctx context.Context, agentID string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE participants SET last_seen_at = CURRENT_TIMESTAMP WHERE agent_id = ?",
		agentID,
	)
	if err != nil {
		return fmt.Errorf("failed to touch participant: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("participant %s not found", agentID)
	}

	return nil
}

// List retrieves participants ordered by last_seen_at, newest first.
func (r *ParticipantRepository) List(ctx context.Context, limit int) ([]*secondary.ParticipantRecord, error) {
	query := "SELECT agent_id, created_at, last_seen_at FROM participants ORDER BY last_seen_at DESC, id DESC"
	args := []any{}

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	var participants []*secondary.ParticipantRecord
	for rows.Next() {
		var (
			createdAt  time.Time
			lastSeenAt time.Time
		)

		record := &secondary.ParticipantRecord{}
		if err := rows.Scan(&record.AgentID, &createdAt, &lastSeenAt); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}

		record.CreatedAt = createdAt.Format(time.RFC3339)
		record.LastSeenAt = lastSeenAt.Format(time.RFC3339)

		participants = append(participants, record)
	}

	return participants, nil
}

// Ensure ParticipantRepository implements the interface
var _ secondary.ParticipantRepository = (*ParticipantRepository)(nil)
