package primary

import "context"

// IdentityService defines the primary port for participant identity.
type IdentityService interface {
	// Join registers or re-identifies a participant and returns a usable
	// agent id. Joining with an empty id mints a fresh identity; joining
	// with a known id is idempotent apart from refreshing last_seen_at.
	Join(ctx context.Context, req JoinRequest) (*JoinResult, error)

	// Recall recovers a lost agent id by searching recent request prompts
	// for the given hints. Falls back to minting a fresh identity when
	// nothing matches.
	Recall(ctx context.Context, req RecallRequest) (*RecallResult, error)
}

// JoinRequest contains parameters for joining.
type JoinRequest struct {
	AgentID string // empty requests a fresh identity
}

// JoinResult contains the outcome of joining.
type JoinResult struct {
	AgentID string
	Created bool // true when a fresh identity was minted
}

// RecallRequest contains parameters for identity recall.
type RecallRequest struct {
	Hints string
}

// RecallResult contains the outcome of identity recall.
type RecallResult struct {
	AgentID  string
	Recalled bool   // true when an existing identity matched the hints
	Matched  string // the prompt that matched, empty when Recalled is false
}
