package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/cue/internal/ports/primary"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.MailboxPath != filepath.Join(dir, "cue.db") {
		t.Errorf("expected mailbox under config dir, got %s", cfg.MailboxPath)
	}
	if cfg.PollInterval != 500*time.Millisecond {
		t.Errorf("expected 500ms poll interval, got %s", cfg.PollInterval)
	}
	if cfg.CueTimeout != 600*time.Second {
		t.Errorf("expected 600s cue timeout, got %s", cfg.CueTimeout)
	}
	if cfg.AttachPolicy != primary.AttachPolicyAttach {
		t.Errorf("expected attach policy 'attach', got %q", cfg.AttachPolicy)
	}
	if cfg.UnknownAgentPolicy != primary.UnknownAgentRemint {
		t.Errorf("expected unknown-agent policy 'remint', got %q", cfg.UnknownAgentPolicy)
	}
	if cfg.RetryAttempts != 3 {
		t.Errorf("expected 3 retry attempts, got %d", cfg.RetryAttempts)
	}
	if cfg.RetryBackoff != 250*time.Millisecond {
		t.Errorf("expected 250ms retry backoff, got %s", cfg.RetryBackoff)
	}
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()

	content := `{
  "mailbox_path": "/tmp/custom/mailbox.db",
  "poll_interval": "100ms",
  "cue_timeout": "30s",
  "attach_policy": "reject",
  "unknown_agent_policy": "reject",
  "retry_attempts": 5,
  "retry_backoff": "1s",
  "log_level": "debug"
}`
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.MailboxPath != "/tmp/custom/mailbox.db" {
		t.Errorf("expected custom mailbox path, got %s", cfg.MailboxPath)
	}
	if cfg.PollInterval != 100*time.Millisecond {
		t.Errorf("expected 100ms poll interval, got %s", cfg.PollInterval)
	}
	if cfg.CueTimeout != 30*time.Second {
		t.Errorf("expected 30s cue timeout, got %s", cfg.CueTimeout)
	}
	if cfg.AttachPolicy != primary.AttachPolicyReject {
		t.Errorf("expected attach policy 'reject', got %q", cfg.AttachPolicy)
	}
	if cfg.UnknownAgentPolicy != primary.UnknownAgentReject {
		t.Errorf("expected unknown-agent policy 'reject', got %q", cfg.UnknownAgentPolicy)
	}
	if cfg.RetryAttempts != 5 {
		t.Errorf("expected 5 retry attempts, got %d", cfg.RetryAttempts)
	}
	if cfg.RetryBackoff != time.Second {
		t.Errorf("expected 1s retry backoff, got %s", cfg.RetryBackoff)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.LogLevel)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()

	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{"poll_interval": "50ms"}`), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.PollInterval != 50*time.Millisecond {
		t.Errorf("expected 50ms poll interval, got %s", cfg.PollInterval)
	}
	if cfg.CueTimeout != DefaultCueTimeout {
		t.Errorf("expected default cue timeout, got %s", cfg.CueTimeout)
	}
	if cfg.AttachPolicy != primary.AttachPolicyAttach {
		t.Errorf("expected default attach policy, got %q", cfg.AttachPolicy)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()

	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{"poll_interval": "100ms", "attach_policy": "reject"}`), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Setenv("CUE_POLL_INTERVAL", "25ms")
	t.Setenv("CUE_ATTACH_POLICY", "duplicate")
	t.Setenv("CUE_DB_PATH", "/tmp/env/mailbox.db")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.PollInterval != 25*time.Millisecond {
		t.Errorf("expected env to override file, got %s", cfg.PollInterval)
	}
	if cfg.AttachPolicy != primary.AttachPolicyDuplicate {
		t.Errorf("expected env to override file, got %q", cfg.AttachPolicy)
	}
	if cfg.MailboxPath != "/tmp/env/mailbox.db" {
		t.Errorf("expected env mailbox path, got %s", cfg.MailboxPath)
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	dir := t.TempDir()

	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{not json`), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if _, err := Load(dir); err == nil {
		t.Fatal("expected error for malformed config, got nil")
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	dir := t.TempDir()

	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{"cue_timeout": "soon"}`), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if _, err := Load(dir); err == nil {
		t.Fatal("expected error for invalid duration, got nil")
	}
}

func TestLoad_InvalidPolicy(t *testing.T) {
	dir := t.TempDir()

	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{"attach_policy": "maybe"}`), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if _, err := Load(dir); err == nil {
		t.Fatal("expected error for invalid attach policy, got nil")
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()

	original := &Config{
		MailboxPath:        filepath.Join(dir, "cue.db"),
		PollInterval:       200 * time.Millisecond,
		CueTimeout:         2 * time.Minute,
		AttachPolicy:       primary.AttachPolicyDuplicate,
		UnknownAgentPolicy: primary.UnknownAgentReject,
		RetryAttempts:      1,
		RetryBackoff:       50 * time.Millisecond,
		LogLevel:           "warn",
	}
	if err := Save(dir, original); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if *loaded != *original {
		t.Errorf("round trip mismatch:\n  saved:  %+v\n  loaded: %+v", original, loaded)
	}
}

func TestValidate_NegativeRetries(t *testing.T) {
	cfg := &Config{
		MailboxPath:        "/tmp/cue.db",
		PollInterval:       DefaultPollInterval,
		CueTimeout:         DefaultCueTimeout,
		AttachPolicy:       primary.AttachPolicyAttach,
		UnknownAgentPolicy: primary.UnknownAgentRemint,
		RetryAttempts:      -1,
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative retry attempts, got nil")
	}
}
