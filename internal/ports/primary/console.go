package primary

import "context"

// ConsoleService defines the primary port for the human-facing mailbox
// operations. This is the consumer side of the rendezvous: it reads pending
// requests and appends responses, and never deletes anything.
type ConsoleService interface {
	// ListPending retrieves pending requests, oldest first.
	ListPending(ctx context.Context) ([]*Request, error)

	// ListRequests lists requests with optional filters, newest first.
	ListRequests(ctx context.Context, filters RequestFilters) ([]*Request, error)

	// GetRequest retrieves a request and any responses written for it.
	GetRequest(ctx context.Context, requestID string) (*Request, []*Response, error)

	// Respond appends exactly one response for a pending request and marks
	// the request answered. The waiting engine picks the response up within
	// one poll interval.
	Respond(ctx context.Context, req RespondRequest) (*RespondResult, error)

	// Dismiss records a cancelled response for a request and marks the
	// request cancelled. The waiting agent is told the human ended the
	// conversation.
	Dismiss(ctx context.Context, requestID string) error

	// Expire marks a pending request expired without writing a response.
	// Housekeeping for requests whose waiter is long gone.
	Expire(ctx context.Context, requestID string) error

	// Counts returns mailbox totals per request status.
	Counts(ctx context.Context) (*MailboxCounts, error)

	// ListParticipants lists registered identities, most recently seen first.
	ListParticipants(ctx context.Context, limit int) ([]*Participant, error)
}

// RespondRequest contains parameters for answering a cue request.
type RespondRequest struct {
	RequestID string
	Text      string
	Images    []ImageAttachment
}

// RespondResult contains the outcome of answering.
type RespondResult struct {
	ResponseID string
	RequestID  string
}

// MailboxCounts holds per-status request totals.
type MailboxCounts struct {
	Pending   int
	Answered  int
	Cancelled int
	Expired   int
	Total     int
}
