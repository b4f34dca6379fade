package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/cue/internal/ports/secondary"
)

// ResponseRepository implements secondary.ResponseRepository with SQLite.
type ResponseRepository struct {
	db *sql.DB
}

// NewResponseRepository creates a new SQLite cue response repository.
func NewResponseRepository(db *sql.DB) *ResponseRepository {
	return &ResponseRepository{db: db}
}

// Create persists a new cue response. No referential check against
// cue_requests: the console writes fire-and-forget, and a response nobody
// waits for is simply never read.
func (r *ResponseRepository) Create(ctx context.Context, response *secondary.ResponseRecord) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO cue_responses (response_id, request_id, content, cancelled) VALUES (?, ?, ?, ?)",
		response.ResponseID, response.RequestID, response.Content, response.Cancelled,
	)
	if err != nil {
		return fmt.Errorf("failed to create cue response: %w", err)
	}

	return nil
}

// EarliestForRequest returns the first durably written response for a
// request, or nil when none exists yet. Rowid order ties the race: when two
// consumers answer the same request, the earlier insert wins and the later
// one is never surfaced.
func (r *ResponseRepository) EarliestForRequest(ctx context.Context, requestID string) (*secondary.ResponseRecord, error) {
	var createdAt time.Time

	record := &secondary.ResponseRecord{}
	err := r.db.QueryRowContext(ctx,
		"SELECT response_id, request_id, content, cancelled, created_at FROM cue_responses WHERE request_id = ? ORDER BY id ASC LIMIT 1",
		requestID,
	).Scan(&record.ResponseID, &record.RequestID, &record.Content, &record.Cancelled, &createdAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cue response: %w", err)
	}

	record.CreatedAt = createdAt.Format(time.RFC3339)

	return record, nil
}

// ListForRequest retrieves all responses for a request in write order.
func (r *ResponseRepository) ListForRequest(ctx context.Context, requestID string) ([]*secondary.ResponseRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT response_id, request_id, content, cancelled, created_at FROM cue_responses WHERE request_id = ? ORDER BY id ASC",
		requestID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list cue responses: %w", err)
	}
	defer rows.Close()

	var responses []*secondary.ResponseRecord
	for rows.Next() {
		var createdAt time.Time

		record := &secondary.ResponseRecord{}
		if err := rows.Scan(&record.ResponseID, &record.RequestID, &record.Content, &record.Cancelled, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan cue response: %w", err)
		}

		record.CreatedAt = createdAt.Format(time.RFC3339)

		responses = append(responses, record)
	}

	return responses, rows.Err()
}

// Ensure ResponseRepository implements the interface
var _ secondary.ResponseRepository = (*ResponseRepository)(nil)
