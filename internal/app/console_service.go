package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/example/cue/internal/core/reply"
	"github.com/example/cue/internal/naming"
	"github.com/example/cue/internal/ports/primary"
	"github.com/example/cue/internal/ports/secondary"
)

// ConsoleServiceImpl implements the ConsoleService interface. This is the
// human side of the mailbox: it reads what agents parked there, writes
// responses, and is the only component that ever changes request status.
type ConsoleServiceImpl struct {
	participantRepo secondary.ParticipantRepository
	requestRepo     secondary.RequestRepository
	responseRepo    secondary.ResponseRepository
	logger          zerolog.Logger
}

// NewConsoleService creates a new ConsoleService with injected dependencies.
func NewConsoleService(
	participantRepo secondary.ParticipantRepository,
	requestRepo secondary.RequestRepository,
	responseRepo secondary.ResponseRepository,
	logger zerolog.Logger,
) *ConsoleServiceImpl {
	return &ConsoleServiceImpl{
		participantRepo: participantRepo,
		requestRepo:     requestRepo,
		responseRepo:    responseRepo,
		logger:          logger.With().Str("component", "console").Logger(),
	}
}

// ListPending returns all requests still waiting for a human, oldest first,
// the order a person works through a queue.
func (s *ConsoleServiceImpl) ListPending(ctx context.Context) ([]*primary.Request, error) {
	requests, err := s.ListRequests(ctx, primary.RequestFilters{Status: primary.StatusPending})
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(requests)-1; i < j; i, j = i+1, j-1 {
		requests[i], requests[j] = requests[j], requests[i]
	}
	return requests, nil
}

// ListRequests lists requests with optional filters.
func (s *ConsoleServiceImpl) ListRequests(ctx context.Context, filters primary.RequestFilters) ([]*primary.Request, error) {
	records, err := s.requestRepo.List(ctx, secondary.RequestFilters{
		AgentID: filters.AgentID,
		Status:  filters.Status,
		Limit:   filters.Limit,
	})
	if err != nil {
		return nil, storeFailure("list cue requests", err)
	}

	requests := make([]*primary.Request, len(records))
	for i, r := range records {
		requests[i] = recordToRequest(r)
	}
	return requests, nil
}

// GetRequest returns a request and every response written for it.
func (s *ConsoleServiceImpl) GetRequest(ctx context.Context, requestID string) (*primary.Request, []*primary.Response, error) {
	record, err := s.requestRepo.GetByRequestID(ctx, requestID)
	if err != nil {
		return nil, nil, storeFailure("look up cue request", err)
	}
	if record == nil {
		return nil, nil, fmt.Errorf("cue request %s not found", requestID)
	}

	responseRecords, err := s.responseRepo.ListForRequest(ctx, requestID)
	if err != nil {
		return nil, nil, storeFailure("list cue responses", err)
	}

	responses := make([]*primary.Response, len(responseRecords))
	for i, r := range responseRecords {
		responses[i] = recordToResponse(r)
	}
	return recordToRequest(record), responses, nil
}

// Respond writes the human's reply and marks the request answered. Responding
// to an already settled request is an error; responding to a request whose
// waiter timed out is fine, that is the reconnect contract working.
func (s *ConsoleServiceImpl) Respond(ctx context.Context, req primary.RespondRequest) (*primary.RespondResult, error) {
	if _, err := s.requirePending(ctx, req.RequestID); err != nil {
		return nil, err
	}

	content := reply.Reply{Text: req.Text}
	for _, img := range req.Images {
		content.Images = append(content.Images, reply.Image{
			MimeType:   img.MimeType,
			Base64Data: img.Base64Data,
		})
	}
	encoded, err := content.Encode()
	if err != nil {
		return nil, fmt.Errorf("failed to encode reply: %w", err)
	}

	responseID := naming.ResponseID()
	record := &secondary.ResponseRecord{
		ResponseID: responseID,
		RequestID:  req.RequestID,
		Content:    encoded,
	}
	if err := s.responseRepo.Create(ctx, record); err != nil {
		return nil, storeFailure("append cue response", err)
	}

	if err := s.requestRepo.UpdateStatus(ctx, req.RequestID, primary.StatusAnswered); err != nil {
		return nil, storeFailure("mark request answered", err)
	}

	s.logger.Info().
		Str("request_id", req.RequestID).
		Str("response_id", responseID).
		Msg("cue request answered")
	return &primary.RespondResult{ResponseID: responseID, RequestID: req.RequestID}, nil
}

// Dismiss ends the conversation for a request: a cancelled response row is
// written so a waiting engine wakes up, and the request is marked cancelled.
func (s *ConsoleServiceImpl) Dismiss(ctx context.Context, requestID string) error {
	if _, err := s.requirePending(ctx, requestID); err != nil {
		return err
	}

	encoded, err := (&reply.Reply{}).Encode()
	if err != nil {
		return fmt.Errorf("failed to encode reply: %w", err)
	}

	record := &secondary.ResponseRecord{
		ResponseID: naming.ResponseID(),
		RequestID:  requestID,
		Content:    encoded,
		Cancelled:  true,
	}
	if err := s.responseRepo.Create(ctx, record); err != nil {
		return storeFailure("append cue response", err)
	}

	if err := s.requestRepo.UpdateStatus(ctx, requestID, primary.StatusCancelled); err != nil {
		return storeFailure("mark request cancelled", err)
	}

	s.logger.Info().Str("request_id", requestID).Msg("cue request dismissed")
	return nil
}

// Expire marks an abandoned request expired without writing a response.
// Housekeeping only: any engine still waiting on it keeps polling until its
// own deadline, exactly as if nothing had happened.
func (s *ConsoleServiceImpl) Expire(ctx context.Context, requestID string) error {
	if _, err := s.requirePending(ctx, requestID); err != nil {
		return err
	}

	if err := s.requestRepo.UpdateStatus(ctx, requestID, primary.StatusExpired); err != nil {
		return storeFailure("mark request expired", err)
	}

	s.logger.Info().Str("request_id", requestID).Msg("cue request expired")
	return nil
}

// Counts summarizes the mailbox by request status.
func (s *ConsoleServiceImpl) Counts(ctx context.Context) (*primary.MailboxCounts, error) {
	byStatus, err := s.requestRepo.CountByStatus(ctx)
	if err != nil {
		return nil, storeFailure("count cue requests", err)
	}

	counts := &primary.MailboxCounts{
		Pending:   byStatus[primary.StatusPending],
		Answered:  byStatus[primary.StatusAnswered],
		Cancelled: byStatus[primary.StatusCancelled],
		Expired:   byStatus[primary.StatusExpired],
	}
	counts.Total = counts.Pending + counts.Answered + counts.Cancelled + counts.Expired
	return counts, nil
}

// ListParticipants lists registered identities, most recently seen first.
func (s *ConsoleServiceImpl) ListParticipants(ctx context.Context, limit int) ([]*primary.Participant, error) {
	records, err := s.participantRepo.List(ctx, limit)
	if err != nil {
		return nil, storeFailure("list participants", err)
	}

	participants := make([]*primary.Participant, len(records))
	for i, r := range records {
		participants[i] = &primary.Participant{
			AgentID:    r.AgentID,
			CreatedAt:  r.CreatedAt,
			LastSeenAt: r.LastSeenAt,
		}
	}
	return participants, nil
}

// requirePending fetches a request and rejects settle attempts on rows that
// are not pending anymore.
func (s *ConsoleServiceImpl) requirePending(ctx context.Context, requestID string) (*secondary.RequestRecord, error) {
	record, err := s.requestRepo.GetByRequestID(ctx, requestID)
	if err != nil {
		return nil, storeFailure("look up cue request", err)
	}
	if record == nil {
		return nil, fmt.Errorf("cue request %s not found", requestID)
	}
	if record.Status != primary.StatusPending {
		return nil, fmt.Errorf("cue request %s is already %s", requestID, record.Status)
	}
	return record, nil
}

// Helper methods

func recordToRequest(r *secondary.RequestRecord) *primary.Request {
	return &primary.Request{
		RequestID: r.RequestID,
		AgentID:   r.AgentID,
		Prompt:    r.Prompt,
		Payload:   r.Payload,
		Status:    r.Status,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func recordToResponse(r *secondary.ResponseRecord) *primary.Response {
	parsed := reply.Decode(r.Content)
	images := make([]primary.ImageAttachment, len(parsed.Images))
	for i, img := range parsed.Images {
		images[i] = primary.ImageAttachment{MimeType: img.MimeType, Base64Data: img.Base64Data}
	}
	return &primary.Response{
		ResponseID: r.ResponseID,
		RequestID:  r.RequestID,
		Cancelled:  r.Cancelled,
		Text:       parsed.Text,
		Images:     images,
		CreatedAt:  r.CreatedAt,
	}
}

// Ensure ConsoleServiceImpl implements the interface
var _ primary.ConsoleService = (*ConsoleServiceImpl)(nil)
