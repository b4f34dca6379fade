package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/example/cue/internal/naming"
	"github.com/example/cue/internal/ports/primary"
	"github.com/example/cue/internal/ports/secondary"
)

// mintAttempts bounds how many random names Join tries before giving up.
// The name space holds ~20k combinations, so collisions are rare and a
// handful of draws is plenty.
const mintAttempts = 5

// recallSearchLimit caps how many prompt matches Recall fetches. Matches
// come back newest first and only the first is used.
const recallSearchLimit = 1

// IdentityServiceImpl implements the IdentityService interface.
type IdentityServiceImpl struct {
	participantRepo secondary.ParticipantRepository
	requestRepo     secondary.RequestRepository
	unknownPolicy   primary.UnknownAgentPolicy
	logger          zerolog.Logger
}

// NewIdentityService creates a new IdentityService with injected dependencies.
func NewIdentityService(
	participantRepo secondary.ParticipantRepository,
	requestRepo secondary.RequestRepository,
	unknownPolicy primary.UnknownAgentPolicy,
	logger zerolog.Logger,
) *IdentityServiceImpl {
	return &IdentityServiceImpl{
		participantRepo: participantRepo,
		requestRepo:     requestRepo,
		unknownPolicy:   unknownPolicy,
		logger:          logger.With().Str("component", "identity").Logger(),
	}
}

// Join registers or re-identifies a participant. An empty agent id mints a
// fresh identity. A known id is returned unchanged with last_seen_at
// refreshed. An unknown id is handled per the configured policy: reminted
// as a fresh identity, or rejected.
func (s *IdentityServiceImpl) Join(ctx context.Context, req primary.JoinRequest) (*primary.JoinResult, error) {
	agentID := strings.TrimSpace(req.AgentID)

	if agentID == "" {
		minted, err := s.mintIdentity(ctx)
		if err != nil {
			return nil, err
		}
		s.logger.Info().Str("agent_id", minted).Msg("minted fresh identity")
		return &primary.JoinResult{AgentID: minted, Created: true}, nil
	}

	existing, err := s.participantRepo.GetByAgentID(ctx, agentID)
	if err != nil {
		return nil, storeFailure("look up participant", err)
	}

	if existing != nil {
		if err := s.participantRepo.Touch(ctx, agentID); err != nil {
			return nil, storeFailure("refresh participant", err)
		}
		return &primary.JoinResult{AgentID: agentID}, nil
	}

	// Never silently adopt an id this registry did not issue: a stale or
	// foreign id could collide with a future participant.
	if s.unknownPolicy == primary.UnknownAgentReject {
		return nil, fmt.Errorf("%w: %s", primary.ErrUnknownParticipant, agentID)
	}

	minted, err := s.mintIdentity(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info().
		Str("presented_id", agentID).
		Str("agent_id", minted).
		Msg("unknown identity reminted")
	return &primary.JoinResult{AgentID: minted, Created: true}, nil
}

// Recall recovers an identity by searching request prompts for the hints.
// The newest matching request wins. When nothing matches (or the hints are
// blank) a fresh identity is minted instead, so the caller always leaves
// with a usable agent id.
func (s *IdentityServiceImpl) Recall(ctx context.Context, req primary.RecallRequest) (*primary.RecallResult, error) {
	hints := strings.TrimSpace(req.Hints)

	if hints != "" {
		matches, err := s.requestRepo.SearchPrompts(ctx, hints, recallSearchLimit)
		if err != nil {
			return nil, storeFailure("search prompts", err)
		}
		if len(matches) > 0 {
			match := matches[0]
			if err := s.adoptIdentity(ctx, match.AgentID); err != nil {
				return nil, err
			}
			s.logger.Info().Str("agent_id", match.AgentID).Msg("identity recalled from prompt history")
			return &primary.RecallResult{
				AgentID:  match.AgentID,
				Recalled: true,
				Matched:  match.Prompt,
			}, nil
		}
	}

	minted, err := s.mintIdentity(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("agent_id", minted).Msg("no recall match, minted fresh identity")
	return &primary.RecallResult{AgentID: minted}, nil
}

// mintIdentity draws random names until one is free and registers it.
func (s *IdentityServiceImpl) mintIdentity(ctx context.Context) (string, error) {
	for attempt := 0; attempt < mintAttempts; attempt++ {
		name := naming.AgentName()

		existing, err := s.participantRepo.GetByAgentID(ctx, name)
		if err != nil {
			return "", storeFailure("check identity availability", err)
		}
		if existing != nil {
			continue
		}

		if err := s.participantRepo.Create(ctx, &secondary.ParticipantRecord{AgentID: name}); err != nil {
			return "", storeFailure("register identity", err)
		}
		return name, nil
	}
	return "", fmt.Errorf("failed to find a free identity after %d attempts", mintAttempts)
}

// adoptIdentity makes sure a recalled agent id has a registry row. Requests
// written before the registry existed can reference ids with no participant
// record.
func (s *IdentityServiceImpl) adoptIdentity(ctx context.Context, agentID string) error {
	existing, err := s.participantRepo.GetByAgentID(ctx, agentID)
	if err != nil {
		return storeFailure("look up participant", err)
	}
	if existing == nil {
		if err := s.participantRepo.Create(ctx, &secondary.ParticipantRecord{AgentID: agentID}); err != nil {
			return storeFailure("register recalled identity", err)
		}
		return nil
	}
	if err := s.participantRepo.Touch(ctx, agentID); err != nil {
		return storeFailure("refresh participant", err)
	}
	return nil
}

// Ensure IdentityServiceImpl implements the interface
var _ primary.IdentityService = (*IdentityServiceImpl)(nil)
