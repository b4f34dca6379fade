package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/example/cue/internal/ports/primary"
)

// Defaults for everything the config file and environment leave unset.
const (
	DefaultPollInterval  = 500 * time.Millisecond
	DefaultCueTimeout    = 600 * time.Second
	DefaultRetryAttempts = 3
	DefaultRetryBackoff  = 250 * time.Millisecond
	DefaultLogLevel      = "info"
)

// Config is the resolved runtime configuration. Resolution order:
// built-in defaults, then config.json, then environment variables.
type Config struct {
	// MailboxPath is the SQLite file both sides rendezvous through.
	// Processes that should talk to each other must agree on this path.
	MailboxPath        string
	PollInterval       time.Duration
	CueTimeout         time.Duration
	AttachPolicy       primary.AttachPolicy
	UnknownAgentPolicy primary.UnknownAgentPolicy
	RetryAttempts      int
	RetryBackoff       time.Duration
	LogLevel           string
}

// fileConfig is the on-disk shape of config.json. Durations are Go duration
// strings ("500ms", "10m") so the file stays hand-editable.
type fileConfig struct {
	MailboxPath        string `json:"mailbox_path,omitempty"`
	PollInterval       string `json:"poll_interval,omitempty"`
	CueTimeout         string `json:"cue_timeout,omitempty"`
	AttachPolicy       string `json:"attach_policy,omitempty"`
	UnknownAgentPolicy string `json:"unknown_agent_policy,omitempty"`
	RetryAttempts      int    `json:"retry_attempts,omitempty"`
	RetryBackoff       string `json:"retry_backoff,omitempty"`
	LogLevel           string `json:"log_level,omitempty"`
}

// DefaultDir returns the per-user cue directory (~/.cue), which holds the
// mailbox, the config file, and the serve-mode log.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".cue"), nil
}

// Load resolves the configuration rooted at dir. An empty dir means
// DefaultDir(). A missing config.json is not an error; a malformed one is.
// A .env file in the working directory is loaded first so environment
// overrides work the same in development and deployment.
func Load(dir string) (*Config, error) {
	_ = godotenv.Load()

	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}

	cfg := &Config{
		MailboxPath:        filepath.Join(dir, "cue.db"),
		PollInterval:       DefaultPollInterval,
		CueTimeout:         DefaultCueTimeout,
		AttachPolicy:       primary.AttachPolicyAttach,
		UnknownAgentPolicy: primary.UnknownAgentRemint,
		RetryAttempts:      DefaultRetryAttempts,
		RetryBackoff:       DefaultRetryBackoff,
		LogLevel:           DefaultLogLevel,
	}

	data, err := os.ReadFile(filepath.Join(dir, "config.json"))
	if err == nil {
		var fc fileConfig
		if err := json.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
		if err := cfg.applyFile(&fc); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes config.json under dir, creating the directory if needed.
func Save(dir string, cfg *Config) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	fc := fileConfig{
		MailboxPath:        cfg.MailboxPath,
		PollInterval:       cfg.PollInterval.String(),
		CueTimeout:         cfg.CueTimeout.String(),
		AttachPolicy:       string(cfg.AttachPolicy),
		UnknownAgentPolicy: string(cfg.UnknownAgentPolicy),
		RetryAttempts:      cfg.RetryAttempts,
		RetryBackoff:       cfg.RetryBackoff.String(),
		LogLevel:           cfg.LogLevel,
	}

	data, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

func (c *Config) applyFile(fc *fileConfig) error {
	if fc.MailboxPath != "" {
		c.MailboxPath = fc.MailboxPath
	}
	if fc.PollInterval != "" {
		d, err := time.ParseDuration(fc.PollInterval)
		if err != nil {
			return fmt.Errorf("invalid poll_interval: %w", err)
		}
		c.PollInterval = d
	}
	if fc.CueTimeout != "" {
		d, err := time.ParseDuration(fc.CueTimeout)
		if err != nil {
			return fmt.Errorf("invalid cue_timeout: %w", err)
		}
		c.CueTimeout = d
	}
	if fc.AttachPolicy != "" {
		c.AttachPolicy = primary.AttachPolicy(fc.AttachPolicy)
	}
	if fc.UnknownAgentPolicy != "" {
		c.UnknownAgentPolicy = primary.UnknownAgentPolicy(fc.UnknownAgentPolicy)
	}
	if fc.RetryAttempts != 0 {
		c.RetryAttempts = fc.RetryAttempts
	}
	if fc.RetryBackoff != "" {
		d, err := time.ParseDuration(fc.RetryBackoff)
		if err != nil {
			return fmt.Errorf("invalid retry_backoff: %w", err)
		}
		c.RetryBackoff = d
	}
	if fc.LogLevel != "" {
		c.LogLevel = fc.LogLevel
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("CUE_DB_PATH"); v != "" {
		c.MailboxPath = v
	}
	if v := os.Getenv("CUE_POLL_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid CUE_POLL_INTERVAL: %w", err)
		}
		c.PollInterval = d
	}
	if v := os.Getenv("CUE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid CUE_TIMEOUT: %w", err)
		}
		c.CueTimeout = d
	}
	if v := os.Getenv("CUE_ATTACH_POLICY"); v != "" {
		c.AttachPolicy = primary.AttachPolicy(v)
	}
	if v := os.Getenv("CUE_UNKNOWN_AGENT_POLICY"); v != "" {
		c.UnknownAgentPolicy = primary.UnknownAgentPolicy(v)
	}
	if v := os.Getenv("CUE_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	return nil
}

// Validate rejects configurations the services cannot run with.
func (c *Config) Validate() error {
	if c.MailboxPath == "" {
		return fmt.Errorf("mailbox path must not be empty")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", c.PollInterval)
	}
	if c.CueTimeout <= 0 {
		return fmt.Errorf("cue timeout must be positive, got %s", c.CueTimeout)
	}
	switch c.AttachPolicy {
	case primary.AttachPolicyAttach, primary.AttachPolicyReject, primary.AttachPolicyDuplicate:
	default:
		return fmt.Errorf("invalid attach policy %q", c.AttachPolicy)
	}
	switch c.UnknownAgentPolicy {
	case primary.UnknownAgentRemint, primary.UnknownAgentReject:
	default:
		return fmt.Errorf("invalid unknown-agent policy %q", c.UnknownAgentPolicy)
	}
	if c.RetryAttempts < 0 {
		return fmt.Errorf("retry attempts must not be negative, got %d", c.RetryAttempts)
	}
	if c.RetryBackoff < 0 {
		return fmt.Errorf("retry backoff must not be negative, got %s", c.RetryBackoff)
	}
	return nil
}
