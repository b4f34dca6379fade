package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/cue/internal/ports/secondary"
)

// RequestRepository implements secondary.RequestRepository with SQLite.
type RequestRepository struct {
	db *sql.DB
}

// NewRequestRepository creates a new SQLite cue request repository.
func NewRequestRepository(db *sql.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

const requestColumns = "request_id, agent_id, prompt, payload, status, created_at, updated_at"

// Create persists a new cue request with status pending.
func (r *RequestRepository) Create(ctx context.Context, request *secondary.RequestRecord) error {
	var payload sql.NullString
	if request.Payload != "" {
		payload = sql.NullString{String: request.Payload, Valid: true}
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO cue_requests (request_id, agent_id, prompt, payload, status) VALUES (?, ?, ?, ?, 'pending')",
		request.RequestID, request.AgentID, request.Prompt, payload,
	)
	if err != nil {
		return fmt.Errorf("failed to create cue request: %w", err)
	}

	return nil
}

// GetByRequestID retrieves a request by its request id.
// Returns nil without error when the request id is unknown.
func (r *RequestRepository) GetByRequestID(ctx context.Context, requestID string) (*secondary.RequestRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+requestColumns+" FROM cue_requests WHERE request_id = ?",
		requestID,
	)

	record, err := scanRequest(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cue request: %w", err)
	}

	return record, nil
}

// LatestPendingForAgent returns the newest pending request for an agent, or
// nil when the agent has no pending request. Rowid order is creation order,
// which is what reconnect-attach needs; created_at only has second precision.
func (r *RequestRepository) LatestPendingForAgent(ctx context.Context, agentID string) (*secondary.RequestRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+requestColumns+" FROM cue_requests WHERE agent_id = ? AND status = 'pending' ORDER BY id DESC LIMIT 1",
		agentID,
	)

	record, err := scanRequest(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pending cue request: %w", err)
	}

	return record, nil
}

// List retrieves requests matching the given filters, newest first.
func (r *RequestRepository) List(ctx context.Context, filters secondary.RequestFilters) ([]*secondary.RequestRecord, error) {
	query := "SELECT " + requestColumns + " FROM cue_requests WHERE 1=1"
	args := []any{}

	if filters.AgentID != "" {
		query += " AND agent_id = ?"
		args = append(args, filters.AgentID)
	}

	if filters.Status != "" {
		query += " AND status = ?"
		args = append(args, filters.Status)
	}

	query += " ORDER BY id DESC"

	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list cue requests: %w", err)
	}
	defer rows.Close()

	return collectRequests(rows)
}

// UpdateStatus sets a request's status and refreshes updated_at.
func (r *RequestRepository) UpdateStatus(ctx context.Context, requestID, status string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE cue_requests SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE request_id = ?",
		status, requestID,
	)
	if err != nil {
		return fmt.Errorf("failed to update cue request status: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("cue request %s not found", requestID)
	}

	return nil
}

// SearchPrompts returns requests whose prompt contains the hint, newest first.
func (r *RequestRepository) SearchPrompts(ctx context.Context, hint string, limit int) ([]*secondary.RequestRecord, error) {
	query := "SELECT " + requestColumns + " FROM cue_requests WHERE prompt LIKE ? ORDER BY id DESC"
	args := []any{"%" + hint + "%"}

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search cue requests: %w", err)
	}
	defer rows.Close()

	return collectRequests(rows)
}

// CountByStatus returns the number of requests per status.
func (r *RequestRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM cue_requests GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("failed to count cue requests: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan request count: %w", err)
		}
		counts[status] = count
	}

	return counts, rows.Err()
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (*secondary.RequestRecord, error) {
	var (
		payload   sql.NullString
		createdAt time.Time
		updatedAt time.Time
	)

	record := &secondary.RequestRecord{}
	err := row.Scan(&record.RequestID, &record.AgentID, &record.Prompt, &payload, &record.Status, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	record.Payload = payload.String
	record.CreatedAt = createdAt.Format(time.RFC3339)
	record.UpdatedAt = updatedAt.Format(time.RFC3339)

	return record, nil
}

func collectRequests(rows *sql.Rows) ([]*secondary.RequestRecord, error) {
	var requests []*secondary.RequestRecord
	for rows.Next() {
		record, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cue request: %w", err)
		}
		requests = append(requests, record)
	}

	return requests, rows.Err()
}

// Ensure RequestRepository implements the interface
var _ secondary.RequestRepository = (*RequestRepository)(nil)
