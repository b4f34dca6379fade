package app

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/example/cue/internal/ports/secondary"
)

// ============================================================================
// Mock Implementations
// ============================================================================

// Ensure the mocks implement the interfaces
var (
	_ secondary.ParticipantRepository = (*mockParticipantRepository)(nil)
	_ secondary.RequestRepository     = (*mockRequestRepository)(nil)
	_ secondary.ResponseRepository    = (*mockResponseRepository)(nil)
)

// mockParticipantRepository implements secondary.ParticipantRepository for testing.
type mockParticipantRepository struct {
	participants map[string]*secondary.ParticipantRecord
	order        []string
	touched      []string
	createErr    error
	getErr       error
	touchErr     error
	listErr      error
}

func newMockParticipantRepository() *mockParticipantRepository {
	return &mockParticipantRepository{
		participants: make(map[string]*secondary.ParticipantRecord),
	}
}

func (m *mockParticipantRepository) Create(ctx context.Context, participant *secondary.ParticipantRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	if _, exists := m.participants[participant.AgentID]; exists {
		return errors.New("UNIQUE constraint failed: participants.agent_id")
	}
	stored := &secondary.ParticipantRecord{
		AgentID:    participant.AgentID,
		CreatedAt:  "2026-01-20T10:00:00Z",
		LastSeenAt: "2026-01-20T10:00:00Z",
	}
	m.participants[participant.AgentID] = stored
	m.order = append(m.order, participant.AgentID)
	return nil
}

func (m *mockParticipantRepository) GetByAgentID(ctx context.Context, agentID string) (*secondary.ParticipantRecord, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if participant, ok := m.participants[agentID]; ok {
		return participant, nil
	}
	return nil, nil
}

func (m *mockParticipantRepository) Touch(ctx context.Context, agentID string) error {
	if m.touchErr != nil {
		return m.touchErr
	}
	participant, ok := m.participants[agentID]
	if !ok {
		return errors.New("participant not found")
	}
	participant.LastSeenAt = "2026-01-20T11:00:00Z"
	m.touched = append(m.touched, agentID)
	return nil
}

func (m *mockParticipantRepository) List(ctx context.Context, limit int) ([]*secondary.ParticipantRecord, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []*secondary.ParticipantRecord
	for i := len(m.order) - 1; i >= 0; i-- {
		if limit > 0 && len(result) >= limit {
			break
		}
		result = append(result, m.participants[m.order[i]])
	}
	return result, nil
}

// mockRequestRepository implements secondary.RequestRepository for testing.
// Records are kept in insertion order, mirroring rowid order in the real
// store. Access is mutex-guarded: engine tests answer requests from a second
// goroutine while the engine reads.
type mockRequestRepository struct {
	mu        sync.Mutex
	requests  []*secondary.RequestRecord
	createErr error
	getErr    error
	latestErr error
	listErr   error
	updateErr error
	searchErr error
	countErr  error
}

func newMockRequestRepository() *mockRequestRepository {
	return &mockRequestRepository{}
}

func (m *mockRequestRepository) Create(ctx context.Context, request *secondary.RequestRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, &secondary.RequestRecord{
		RequestID: request.RequestID,
		AgentID:   request.AgentID,
		Prompt:    request.Prompt,
		Payload:   request.Payload,
		Status:    "pending",
		CreatedAt: "2026-01-20T10:00:00Z",
		UpdatedAt: "2026-01-20T10:00:00Z",
	})
	return nil
}

func (m *mockRequestRepository) GetByRequestID(ctx context.Context, requestID string) (*secondary.RequestRecord, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.requests {
		if r.RequestID == requestID {
			return r, nil
		}
	}
	return nil, nil
}

func (m *mockRequestRepository) LatestPendingForAgent(ctx context.Context, agentID string) (*secondary.RequestRecord, error) {
	if m.latestErr != nil {
		return nil, m.latestErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.requests) - 1; i >= 0; i-- {
		if m.requests[i].AgentID == agentID && m.requests[i].Status == "pending" {
			return m.requests[i], nil
		}
	}
	return nil, nil
}

func (m *mockRequestRepository) List(ctx context.Context, filters secondary.RequestFilters) ([]*secondary.RequestRecord, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*secondary.RequestRecord
	for i := len(m.requests) - 1; i >= 0; i-- {
		r := m.requests[i]
		if filters.AgentID != "" && r.AgentID != filters.AgentID {
			continue
		}
		if filters.Status != "" && r.Status != filters.Status {
			continue
		}
		if filters.Limit > 0 && len(result) >= filters.Limit {
			break
		}
		result = append(result, r)
	}
	return result, nil
}

func (m *mockRequestRepository) UpdateStatus(ctx context.Context, requestID, status string) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.requests {
		if r.RequestID == requestID {
			r.Status = status
			r.UpdatedAt = "2026-01-20T11:00:00Z"
			return nil
		}
	}
	return errors.New("cue request not found")
}

func (m *mockRequestRepository) SearchPrompts(ctx context.Context, hint string, limit int) ([]*secondary.RequestRecord, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*secondary.RequestRecord
	for i := len(m.requests) - 1; i >= 0; i-- {
		if !strings.Contains(m.requests[i].Prompt, hint) {
			continue
		}
		if limit > 0 && len(result) >= limit {
			break
		}
		result = append(result, m.requests[i])
	}
	return result, nil
}

func (m *mockRequestRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	if m.countErr != nil {
		return nil, m.countErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[string]int)
	for _, r := range m.requests {
		counts[r.Status]++
	}
	return counts, nil
}

// seedRequestRecord adds a request in a given status directly, bypassing Create.
func (m *mockRequestRepository) seedRequestRecord(requestID, agentID, prompt, status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, &secondary.RequestRecord{
		RequestID: requestID,
		AgentID:   agentID,
		Prompt:    prompt,
		Status:    status,
		CreatedAt: "2026-01-20T09:00:00Z",
		UpdatedAt: "2026-01-20T09:00:00Z",
	})
}

// requestCount returns how many request rows exist.
func (m *mockRequestRepository) requestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// statusOf returns the stored status for a request, or "" if absent.
func (m *mockRequestRepository) statusOf(requestID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.requests {
		if r.RequestID == requestID {
			return r.Status
		}
	}
	return ""
}

// mockResponseRepository implements secondary.ResponseRepository for testing.
// It is safe for concurrent use: engine tests write responses from a second
// goroutine while the poll loop reads. earliestFailures makes the next N
// lookups fail, for retry scenarios.
type mockResponseRepository struct {
	mu               sync.Mutex
	responses        []*secondary.ResponseRecord
	createErr        error
	earliestErr      error
	listErr          error
	earliestFailures int
}

func newMockResponseRepository() *mockResponseRepository {
	return &mockResponseRepository{}
}

func (m *mockResponseRepository) Create(ctx context.Context, response *secondary.ResponseRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, &secondary.ResponseRecord{
		ResponseID: response.ResponseID,
		RequestID:  response.RequestID,
		Content:    response.Content,
		Cancelled:  response.Cancelled,
		CreatedAt:  "2026-01-20T10:05:00Z",
	})
	return nil
}

func (m *mockResponseRepository) EarliestForRequest(ctx context.Context, requestID string) (*secondary.ResponseRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.earliestErr != nil {
		return nil, m.earliestErr
	}
	if m.earliestFailures > 0 {
		m.earliestFailures--
		return nil, errors.New("disk I/O error")
	}
	for _, r := range m.responses {
		if r.RequestID == requestID {
			return r, nil
		}
	}
	return nil, nil
}

func (m *mockResponseRepository) ListForRequest(ctx context.Context, requestID string) ([]*secondary.ResponseRecord, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*secondary.ResponseRecord
	for _, r := range m.responses {
		if r.RequestID == requestID {
			result = append(result, r)
		}
	}
	return result, nil
}
