package cli

import (
	"fmt"

	"github.com/example/cue/internal/config"
	"github.com/example/cue/internal/logging"
	"github.com/example/cue/internal/wire"
)

// setupServices loads configuration and points the service registry at the
// configured mailbox, logging to stderr. Commands that own stdout for a
// protocol stream (serve) do their own setup instead.
func setupServices() error {
	cfg, err := config.Load("")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	wire.SetConfig(cfg)
	wire.SetLogger(logging.NewConsole(cfg.LogLevel))
	return nil
}
