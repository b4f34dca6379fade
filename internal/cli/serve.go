package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/example/cue/internal/adapters/mcp"
	"github.com/example/cue/internal/config"
	"github.com/example/cue/internal/logging"
	"github.com/example/cue/internal/wire"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	var logFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server over stdin/stdout",
		Long: `Run the agent-facing MCP server. The host process owns stdin/stdout, so
all logging goes to a file; by default serve.log next to the mailbox.

Exposes three tools: join (get an agent_id), recall (recover a forgotten
agent_id) and cue (park a message for the human and block until they
respond in the console).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load("")
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			if logFile == "" {
				logFile = filepath.Join(filepath.Dir(cfg.MailboxPath), "serve.log")
			}
			logger, closer, err := logging.NewFile(logFile, cfg.LogLevel)
			if err != nil {
				return fmt.Errorf("failed to open log file: %w", err)
			}
			defer closer.Close()

			wire.SetConfig(cfg)
			wire.SetLogger(logger)

			logger.Info().
				Str("mailbox", cfg.MailboxPath).
				Dur("poll_interval", cfg.PollInterval).
				Dur("cue_timeout", cfg.CueTimeout).
				Msg("starting MCP server")

			server := mcp.NewServer(os.Stdin, os.Stdout, wire.IdentityService(), wire.RendezvousService(), logger)
			return server.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&logFile, "log-file", "", "Log file path (default: serve.log next to the mailbox)")

	return cmd
}
