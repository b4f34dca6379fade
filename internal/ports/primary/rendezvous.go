package primary

import (
	"context"
	"time"
)

// Request status values as stored in the mailbox.
const (
	StatusPending   = "pending"
	StatusAnswered  = "answered"
	StatusCancelled = "cancelled"
	StatusExpired   = "expired"
)

// AttachPolicy controls what Cue does when the participant already has a
// pending request.
type AttachPolicy string

const (
	// AttachPolicyAttach polls the existing pending request instead of
	// creating a new row. This is the reconnect contract: a restarted agent
	// re-issues its cue and transparently resumes the old wait.
	AttachPolicyAttach AttachPolicy = "attach"
	// AttachPolicyReject fails the call with ErrRequestPending.
	AttachPolicyReject AttachPolicy = "reject"
	// AttachPolicyDuplicate always creates a new request row.
	AttachPolicyDuplicate AttachPolicy = "duplicate"
)

// UnknownAgentPolicy controls how an unrecognized agent id is handled.
type UnknownAgentPolicy string

const (
	// UnknownAgentRemint silently registers a fresh identity and returns the
	// new id. Callers must use the returned agent id, not the one they sent.
	UnknownAgentRemint UnknownAgentPolicy = "remint"
	// UnknownAgentReject fails the call with ErrUnknownParticipant.
	UnknownAgentReject UnknownAgentPolicy = "reject"
)

// RendezvousService defines the primary port for the blocking cue operation.
type RendezvousService interface {
	// Cue durably records a collaboration request and blocks until a human
	// response arrives, the timeout expires, or ctx is cancelled.
	Cue(ctx context.Context, req CueRequest) (*CueResult, error)
}

// CueRequest contains parameters for emitting a cue.
type CueRequest struct {
	AgentID string
	Prompt  string
	Payload string        // optional structured JSON, opaque to the engine
	Timeout time.Duration // 0 for the configured default
}

// CueResult contains the human's reply.
type CueResult struct {
	RequestID string
	AgentID   string // authoritative id; may differ from the request under the remint policy
	Attached  bool   // true when an existing pending request was resumed
	Cancelled bool   // true when the human ended the conversation
	Text      string
	Images    []ImageAttachment
}

// ImageAttachment is an image carried in a reply.
type ImageAttachment struct {
	MimeType   string
	Base64Data string
}

// Request represents a cue request at the port boundary.
type Request struct {
	RequestID string
	AgentID   string
	Prompt    string
	Payload   string
	Status    string
	CreatedAt string
	UpdatedAt string
}

// Response represents a cue response at the port boundary.
type Response struct {
	ResponseID string
	RequestID  string
	Cancelled  bool
	Text       string
	Images     []ImageAttachment
	CreatedAt  string
}

// Participant represents a registered agent identity at the port boundary.
type Participant struct {
	AgentID    string
	CreatedAt  string
	LastSeenAt string
}

// RequestFilters contains filter options for listing requests.
type RequestFilters struct {
	AgentID string
	Status  string
	Limit   int
}
