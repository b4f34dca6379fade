package db

import (
	"database/sql"
	"fmt"
)

// SeedFixtures populates a fresh mailbox with development fixtures: a few
// participants, requests in every status, and the responses that settled
// them. Used by `cue dev reset`, never in production.
func SeedFixtures(database *sql.DB) error {
	if err := seedParticipants(database); err != nil {
		return fmt.Errorf("failed to seed participants: %w", err)
	}
	if err := seedRequests(database); err != nil {
		return fmt.Errorf("failed to seed requests: %w", err)
	}
	if err := seedResponses(database); err != nil {
		return fmt.Errorf("failed to seed responses: %w", err)
	}
	return nil
}

func seedParticipants(database *sql.DB) error {
	_, err := database.Exec(`
		INSERT INTO participants (agent_id, created_at, last_seen_at) VALUES
		('brave-fox-17', datetime('now', '-3 days'), datetime('now', '-5 minutes')),
		('swift-owl-42', datetime('now', '-2 days'), datetime('now', '-1 hour')),
		('calm-elk-03', datetime('now', '-1 day'), datetime('now', '-1 day')),
		('proud-wolf-88', datetime('now', '-4 hours'), datetime('now', '-4 hours'))
	`)
	return err
}

func seedRequests(database *sql.DB) error {
	_, err := database.Exec(`
		INSERT INTO cue_requests (request_id, agent_id, prompt, payload, status, created_at, updated_at) VALUES
		('req_dev000000001', 'brave-fox-17', 'I refactored the login module as requested. Should I also update the session handling?', NULL, 'answered', datetime('now', '-3 days'), datetime('now', '-3 days')),
		('req_dev000000002', 'brave-fox-17', 'Session handling updated. Run the integration suite now?', '{"type":"confirm","text":"Run the integration suite?"}', 'answered', datetime('now', '-2 days'), datetime('now', '-2 days')),
		('req_dev000000003', 'swift-owl-42', 'Database schema draft is ready. Which migration strategy do you prefer?', '{"type":"choice","options":[{"id":"A","label":"Expand and contract"},{"id":"B","label":"Single big migration"}]}', 'answered', datetime('now', '-2 days'), datetime('now', '-2 days')),
		('req_dev000000004', 'calm-elk-03', 'Summary of the benchmark run attached. Anything else before I wrap up?', NULL, 'cancelled', datetime('now', '-1 day'), datetime('now', '-1 day')),
		('req_dev000000005', 'swift-owl-42', 'I need the staging credentials to continue the deploy.', '{"type":"form","fields":[{"id":"user","label":"Username","kind":"text"},{"id":"token","label":"API token","kind":"secret"}]}', 'expired', datetime('now', '-1 day'), datetime('now', '-6 hours')),
		('req_dev000000006', 'proud-wolf-88', 'Build finished, all tests green. What should I pick up next?', NULL, 'pending', datetime('now', '-10 minutes'), datetime('now', '-10 minutes')),
		('req_dev000000007', 'brave-fox-17', 'The flaky test is quarantined. Want a ticket filed for the root cause?', '{"type":"confirm","text":"File a ticket for the root cause?"}', 'pending', datetime('now', '-5 minutes'), datetime('now', '-5 minutes'))
	`)
	return err
}

func seedResponses(database *sql.DB) error {
	_, err := database.Exec(`
		INSERT INTO cue_responses (response_id, request_id, content, cancelled, created_at) VALUES
		('resp_dev00000001', 'req_dev000000001', '{"text":"Yes, update the session handling too."}', 0, datetime('now', '-3 days')),
		('resp_dev00000002', 'req_dev000000002', '{"text":"Go ahead."}', 0, datetime('now', '-2 days')),
		('resp_dev00000003', 'req_dev000000003', '{"text":"Expand and contract"}', 0, datetime('now', '-2 days')),
		('resp_dev00000004', 'req_dev000000004', '{"text":""}', 1, datetime('now', '-1 day'))
	`)
	return err
}
