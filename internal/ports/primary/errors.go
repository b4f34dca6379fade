package primary

import "errors"

// Sentinel errors surfaced by the services. Callers discriminate with
// errors.Is; services wrap these with context via fmt.Errorf("...: %w", err).
var (
	// ErrStoreUnavailable means the mailbox could not be opened, read, or
	// written, and bounded retries were exhausted.
	ErrStoreUnavailable = errors.New("mailbox store unavailable")

	// ErrTimeoutExpired means no response arrived within the deadline. The
	// request row stays pending so a reconnecting caller can attach to it.
	ErrTimeoutExpired = errors.New("timed out waiting for response")

	// ErrCancelled means the caller's context was cancelled mid-wait.
	// Distinct from ErrTimeoutExpired so callers can tell "gave up" from
	// "was interrupted".
	ErrCancelled = errors.New("wait cancelled")

	// ErrUnknownParticipant means an unrecognized agent id was presented
	// under the reject policy.
	ErrUnknownParticipant = errors.New("unknown participant")

	// ErrRequestPending means the participant already has a pending request
	// under the reject attach policy.
	ErrRequestPending = errors.New("participant already has a pending request")
)
