// Package secondary defines the secondary ports (driven adapters) for the
// application. These are the interfaces through which the application drives
// the mailbox store.
package secondary

import "context"

// ParticipantRepository defines the secondary port for participant persistence.
type ParticipantRepository interface {
	// Create persists a new participant.
	Create(ctx context.Context, participant *ParticipantRecord) error

	// GetByAgentID retrieves a participant by its agent id.
	// Returns nil (no error) when the agent id is unknown.
	GetByAgentID(ctx context.Context, agentID string) (*ParticipantRecord, error)

	// Touch refreshes a participant's last_seen_at timestamp.
	Touch(ctx context.Context, agentID string) error

	// List retrieves participants ordered by last_seen_at, newest first.
	List(ctx context.Context, limit int) ([]*ParticipantRecord, error)
}

// ParticipantRecord represents a participant as stored in persistence.
type ParticipantRecord struct {
	AgentID    string
	CreatedAt  string
	LastSeenAt string
}

// RequestRepository defines the secondary port for cue request persistence.
// Requests are append-mostly: the engine only ever inserts, the console
// flips status. Nothing deletes rows.
type RequestRepository interface {
	// Create persists a new cue request with status pending.
	Create(ctx context.Context, request *RequestRecord) error

	// GetByRequestID retrieves a request by its request id.
	// Returns nil (no error) when the request id is unknown.
	GetByRequestID(ctx context.Context, requestID string) (*RequestRecord, error)

	// LatestPendingForAgent returns the newest pending request for an agent,
	// or nil when the agent has no pending request.
	LatestPendingForAgent(ctx context.Context, agentID string) (*RequestRecord, error)

	// List retrieves requests matching the given filters.
	List(ctx context.Context, filters RequestFilters) ([]*RequestRecord, error)

	// UpdateStatus sets a request's status and refreshes updated_at.
	UpdateStatus(ctx context.Context, requestID, status string) error

	// SearchPrompts returns requests whose prompt contains the hint,
	// newest first. Used by identity recall.
	SearchPrompts(ctx context.Context, hint string, limit int) ([]*RequestRecord, error)

	// CountByStatus returns the number of requests per status.
	CountByStatus(ctx context.Context) (map[string]int, error)
}

// RequestRecord represents a cue request as stored in persistence.
type RequestRecord struct {
	RequestID string
	AgentID   string
	Prompt    string
	Payload   string // optional structured JSON, empty when absent
	Status    string
	CreatedAt string
	UpdatedAt string
}

// RequestFilters contains filter options for querying cue requests.
type RequestFilters struct {
	AgentID string
	Status  string
	Limit   int
}

// ResponseRepository defines the secondary port for cue response persistence.
// The engine only ever reads responses; the console only ever appends them.
type ResponseRepository interface {
	// Create persists a new cue response.
	Create(ctx context.Context, response *ResponseRecord) error

	// EarliestForRequest returns the first durably written response for a
	// request, or nil when none exists yet. Later duplicates are never
	// returned (first-write-wins).
	EarliestForRequest(ctx context.Context, requestID string) (*ResponseRecord, error)

	// ListForRequest retrieves all responses for a request in write order.
	ListForRequest(ctx context.Context, requestID string) ([]*ResponseRecord, error)
}

// ResponseRecord represents a cue response as stored in persistence.
type ResponseRecord struct {
	ResponseID string
	RequestID  string
	Content    string // JSON reply document
	Cancelled  bool
	CreatedAt  string
}
