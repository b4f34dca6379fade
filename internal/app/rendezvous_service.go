package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/cue/internal/core/reply"
	"github.com/example/cue/internal/naming"
	"github.com/example/cue/internal/ports/primary"
	"github.com/example/cue/internal/ports/secondary"
)

// RendezvousOptions tunes the engine's waiting behavior.
type RendezvousOptions struct {
	PollInterval  time.Duration
	CueTimeout    time.Duration // default deadline when the request carries none
	AttachPolicy  primary.AttachPolicy
	RetryAttempts int
	RetryBackoff  time.Duration
}

// RendezvousServiceImpl implements the RendezvousService interface.
//
// The engine only ever inserts rows. Request status belongs to the console
// side: a timeout or cancellation here leaves the request pending so a
// reconnecting agent can attach to it and still collect a late answer.
type RendezvousServiceImpl struct {
	identity     primary.IdentityService
	requestRepo  secondary.RequestRepository
	responseRepo secondary.ResponseRepository
	opts         RendezvousOptions
	logger       zerolog.Logger
}

// NewRendezvousService creates a new RendezvousService with injected dependencies.
func NewRendezvousService(
	identity primary.IdentityService,
	requestRepo secondary.RequestRepository,
	responseRepo secondary.ResponseRepository,
	opts RendezvousOptions,
	logger zerolog.Logger,
) *RendezvousServiceImpl {
	return &RendezvousServiceImpl{
		identity:     identity,
		requestRepo:  requestRepo,
		responseRepo: responseRepo,
		opts:         opts,
		logger:       logger.With().Str("component", "rendezvous").Logger(),
	}
}

// Cue durably records a collaboration request and blocks until a human
// response arrives, the deadline passes, or ctx is cancelled.
func (s *RendezvousServiceImpl) Cue(ctx context.Context, req primary.CueRequest) (*primary.CueResult, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, fmt.Errorf("prompt must not be empty")
	}

	// Join settles the identity questions up front: empty ids mint, known
	// ids refresh last_seen_at, unknown ids remint or reject per policy.
	joined, err := s.identity.Join(ctx, primary.JoinRequest{AgentID: req.AgentID})
	if err != nil {
		return nil, err
	}
	agentID := joined.AgentID

	requestID, attached, err := s.placeRequest(ctx, agentID, req)
	if err != nil {
		return nil, err
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = s.opts.CueTimeout
	}

	record, err := s.awaitResponse(ctx, requestID, timeout)
	if err != nil {
		return nil, err
	}

	parsed := reply.Decode(record.Content)
	images := make([]primary.ImageAttachment, len(parsed.Images))
	for i, img := range parsed.Images {
		images[i] = primary.ImageAttachment{MimeType: img.MimeType, Base64Data: img.Base64Data}
	}

	// An empty reply carries the same meaning as an explicit cancel: the
	// human is done with this conversation.
	result := &primary.CueResult{
		RequestID: requestID,
		AgentID:   agentID,
		Attached:  attached,
		Cancelled: record.Cancelled || parsed.IsEmpty(),
		Text:      strings.TrimSpace(parsed.Text),
		Images:    images,
	}

	s.logger.Info().
		Str("request_id", requestID).
		Str("agent_id", agentID).
		Bool("cancelled", result.Cancelled).
		Msg("cue resolved")
	return result, nil
}

// placeRequest decides which request row this cue waits on. Under the
// attach policy an existing pending request is resumed instead of creating
// a duplicate; under reject it is an error; under duplicate a new row is
// always appended.
func (s *RendezvousServiceImpl) placeRequest(ctx context.Context, agentID string, req primary.CueRequest) (string, bool, error) {
	if s.opts.AttachPolicy != primary.AttachPolicyDuplicate {
		pending, err := s.requestRepo.LatestPendingForAgent(ctx, agentID)
		if err != nil {
			return "", false, storeFailure("check pending requests", err)
		}
		if pending != nil {
			if s.opts.AttachPolicy == primary.AttachPolicyReject {
				return "", false, fmt.Errorf("%w: %s", primary.ErrRequestPending, pending.RequestID)
			}
			s.logger.Info().
				Str("request_id", pending.RequestID).
				Str("agent_id", agentID).
				Msg("attached to pending cue request")
			return pending.RequestID, true, nil
		}
	}

	requestID := naming.RequestID()
	record := &secondary.RequestRecord{
		RequestID: requestID,
		AgentID:   agentID,
		Prompt:    req.Prompt,
		Payload:   req.Payload,
	}
	if err := s.requestRepo.Create(ctx, record); err != nil {
		return "", false, storeFailure("append cue request", err)
	}

	s.logger.Info().
		Str("request_id", requestID).
		Str("agent_id", agentID).
		Msg("cue request created")
	return requestID, false, nil
}

// awaitResponse polls until a response row exists for requestID. The first
// durably committed response wins; later ones are never read. Transient
// store errors are retried with bounded backoff before giving up.
func (s *RendezvousServiceImpl) awaitResponse(ctx context.Context, requestID string, timeout time.Duration) (*secondary.ResponseRecord, error) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(s.opts.PollInterval)
	defer ticker.Stop()

	for {
		// Check before waiting: when attaching to an old request the answer
		// may already be durable.
		var record *secondary.ResponseRecord
		err := retryStore(ctx, s.opts.RetryAttempts, s.opts.RetryBackoff, func() error {
			var opErr error
			record, opErr = s.responseRepo.EarliestForRequest(ctx, requestID)
			return opErr
		})
		if err != nil {
			return nil, err
		}
		if record != nil {
			return record, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", primary.ErrCancelled, ctx.Err())
		case <-deadline.C:
			return nil, fmt.Errorf("%w: no response for %s within %s; the request remains pending", primary.ErrTimeoutExpired, requestID, timeout)
		case <-ticker.C:
		}
	}
}

// Ensure RendezvousServiceImpl implements the interface
var _ primary.RendezvousService = (*RendezvousServiceImpl)(nil)
