package app

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/rs/zerolog"

	"github.com/example/cue/internal/ports/primary"
)

var agentIDPattern = regexp.MustCompile(`^[a-z]+-[a-z]+-\d{2}$`)

// ============================================================================
// Test Helper
// ============================================================================

func newTestIdentityService(policy primary.UnknownAgentPolicy) (*IdentityServiceImpl, *mockParticipantRepository, *mockRequestRepository) {
	participantRepo := newMockParticipantRepository()
	requestRepo := newMockRequestRepository()
	service := NewIdentityService(participantRepo, requestRepo, policy, zerolog.Nop())
	return service, participantRepo, requestRepo
}

// ============================================================================
// Join Tests
// ============================================================================

func TestJoin_EmptyIDMintsFreshIdentity(t *testing.T) {
	service, participantRepo, _ := newTestIdentityService(primary.UnknownAgentRemint)
	ctx := context.Background()

	result, err := service.Join(ctx, primary.JoinRequest{})
	if err != nil {
		t.Fatalf("Join failed: %v", err)
	}

	if !result.Created {
		t.Error("expected Created for a fresh identity")
	}
	if !agentIDPattern.MatchString(result.AgentID) {
		t.Errorf("expected adjective-animal-NN id, got %q", result.AgentID)
	}
	if _, ok := participantRepo.participants[result.AgentID]; !ok {
		t.Error("expected minted identity to be registered")
	}
}

func TestJoin_TwiceMintsDistinctIdentities(t *testing.T) {
	service, _, _ := newTestIdentityService(primary.UnknownAgentRemint)
	ctx := context.Background()

	first, err := service.Join(ctx, primary.JoinRequest{})
	if err != nil {
		t.Fatalf("first Join failed: %v", err)
	}
	second, err := service.Join(ctx, primary.JoinRequest{})
	if err != nil {
		t.Fatalf("second Join failed: %v", err)
	}

	if first.AgentID == second.AgentID {
		t.Errorf("expected distinct identities, both got %q", first.AgentID)
	}
}

func TestJoin_KnownIDIsIdempotent(t *testing.T) {
	service, participantRepo, _ := newTestIdentityService(primary.UnknownAgentRemint)
	ctx := context.Background()

	minted, err := service.Join(ctx, primary.JoinRequest{})
	if err != nil {
		t.Fatalf("Join failed: %v", err)
	}

	again, err := service.Join(ctx, primary.JoinRequest{AgentID: minted.AgentID})
	if err != nil {
		t.Fatalf("re-Join failed: %v", err)
	}

	if again.AgentID != minted.AgentID {
		t.Errorf("expected same identity back, got %q", again.AgentID)
	}
	if again.Created {
		t.Error("expected Created to be false for a known identity")
	}
	if len(participantRepo.touched) != 1 || participantRepo.touched[0] != minted.AgentID {
		t.Errorf("expected re-join to refresh last_seen_at, touched: %v", participantRepo.touched)
	}
	if len(participantRepo.participants) != 1 {
		t.Errorf("expected exactly one registered identity, got %d", len(participantRepo.participants))
	}
}

func TestJoin_UnknownIDReminted(t *testing.T) {
	service, participantRepo, _ := newTestIdentityService(primary.UnknownAgentRemint)
	ctx := context.Background()

	result, err := service.Join(ctx, primary.JoinRequest{AgentID: "stale-ghost-99"})
	if err != nil {
		t.Fatalf("Join failed: %v", err)
	}

	if result.AgentID == "stale-ghost-99" {
		t.Error("expected a fresh identity, not the unrecognized one")
	}
	if !result.Created {
		t.Error("expected Created for a reminted identity")
	}
	if _, ok := participantRepo.participants["stale-ghost-99"]; ok {
		t.Error("expected the unrecognized id to stay unregistered")
	}
}

func TestJoin_UnknownIDRejected(t *testing.T) {
	service, _, _ := newTestIdentityService(primary.UnknownAgentReject)
	ctx := context.Background()

	_, err := service.Join(ctx, primary.JoinRequest{AgentID: "stale-ghost-99"})
	if err == nil {
		t.Fatal("expected error under the reject policy, got nil")
	}
	if !errors.Is(err, primary.ErrUnknownParticipant) {
		t.Errorf("expected ErrUnknownParticipant, got %v", err)
	}
}

func TestJoin_StoreFailure(t *testing.T) {
	service, participantRepo, _ := newTestIdentityService(primary.UnknownAgentRemint)
	ctx := context.Background()

	participantRepo.getErr = errors.New("database is locked")

	_, err := service.Join(ctx, primary.JoinRequest{AgentID: "brave-fox-17"})
	if err == nil {
		t.Fatal("expected error when the store is down, got nil")
	}
	if !errors.Is(err, primary.ErrStoreUnavailable) {
		t.Errorf("expected ErrStoreUnavailable, got %v", err)
	}
}

// ============================================================================
// Recall Tests
// ============================================================================

func TestRecall_MatchesPromptHistory(t *testing.T) {
	service, participantRepo, requestRepo := newTestIdentityService(primary.UnknownAgentRemint)
	ctx := context.Background()

	requestRepo.seedRequestRecord("req_aaaaaaaaaaaa", "brave-fox-17", "Refactored the login module", "answered")

	result, err := service.Recall(ctx, primary.RecallRequest{Hints: "login module"})
	if err != nil {
		t.Fatalf("Recall failed: %v", err)
	}

	if !result.Recalled {
		t.Error("expected Recalled for a matching hint")
	}
	if result.AgentID != "brave-fox-17" {
		t.Errorf("expected brave-fox-17, got %q", result.AgentID)
	}
	if result.Matched != "Refactored the login module" {
		t.Errorf("expected matching prompt to be reported, got %q", result.Matched)
	}
	// Requests can predate the registry; a recalled id gets a row
	if _, ok := participantRepo.participants["brave-fox-17"]; !ok {
		t.Error("expected recalled identity to be registered")
	}
}

func TestRecall_NewestMatchWins(t *testing.T) {
	service, _, requestRepo := newTestIdentityService(primary.UnknownAgentRemint)
	ctx := context.Background()

	requestRepo.seedRequestRecord("req_aaaaaaaaaaaa", "brave-fox-17", "Discussed database design", "answered")
	requestRepo.seedRequestRecord("req_bbbbbbbbbbbb", "swift-owl-42", "Discussed database migration", "answered")

	result, err := service.Recall(ctx, primary.RecallRequest{Hints: "database"})
	if err != nil {
		t.Fatalf("Recall failed: %v", err)
	}

	if result.AgentID != "swift-owl-42" {
		t.Errorf("expected the newest matching request to win, got %q", result.AgentID)
	}
}

func TestRecall_RefreshesKnownIdentity(t *testing.T) {
	service, participantRepo, requestRepo := newTestIdentityService(primary.UnknownAgentRemint)
	ctx := context.Background()

	joined, err := service.Join(ctx, primary.JoinRequest{})
	if err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	requestRepo.seedRequestRecord("req_aaaaaaaaaaaa", joined.AgentID, "Shipped the billing fix", "answered")

	result, err := service.Recall(ctx, primary.RecallRequest{Hints: "billing"})
	if err != nil {
		t.Fatalf("Recall failed: %v", err)
	}

	if result.AgentID != joined.AgentID {
		t.Errorf("expected %q, got %q", joined.AgentID, result.AgentID)
	}
	if len(participantRepo.touched) == 0 {
		t.Error("expected recall to refresh last_seen_at")
	}
}

func TestRecall_NoMatchMintsFreshIdentity(t *testing.T) {
	service, participantRepo, requestRepo := newTestIdentityService(primary.UnknownAgentRemint)
	ctx := context.Background()

	requestRepo.seedRequestRecord("req_aaaaaaaaaaaa", "brave-fox-17", "Refactored the login module", "answered")

	result, err := service.Recall(ctx, primary.RecallRequest{Hints: "kubernetes migration"})
	if err != nil {
		t.Fatalf("Recall failed: %v", err)
	}

	if result.Recalled {
		t.Error("expected no recall for an unmatched hint")
	}
	if result.AgentID == "brave-fox-17" {
		t.Error("expected a fresh identity, not someone else's")
	}
	if !agentIDPattern.MatchString(result.AgentID) {
		t.Errorf("expected adjective-animal-NN id, got %q", result.AgentID)
	}
	if _, ok := participantRepo.participants[result.AgentID]; !ok {
		t.Error("expected minted identity to be registered")
	}
}

func TestRecall_BlankHintsMintFreshIdentity(t *testing.T) {
	service, _, requestRepo := newTestIdentityService(primary.UnknownAgentRemint)
	ctx := context.Background()

	requestRepo.seedRequestRecord("req_aaaaaaaaaaaa", "brave-fox-17", "Anything at all", "answered")

	result, err := service.Recall(ctx, primary.RecallRequest{Hints: "   "})
	if err != nil {
		t.Fatalf("Recall failed: %v", err)
	}

	if result.Recalled {
		t.Error("expected blank hints to skip the search")
	}
}

func TestRecall_StoreFailure(t *testing.T) {
	service, _, requestRepo := newTestIdentityService(primary.UnknownAgentRemint)
	ctx := context.Background()

	requestRepo.searchErr = errors.New("database is locked")

	_, err := service.Recall(ctx, primary.RecallRequest{Hints: "anything"})
	if err == nil {
		t.Fatal("expected error when the store is down, got nil")
	}
	if !errors.Is(err, primary.ErrStoreUnavailable) {
		t.Errorf("expected ErrStoreUnavailable, got %v", err)
	}
}
