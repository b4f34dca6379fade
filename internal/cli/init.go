package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/example/cue/internal/config"
	"github.com/example/cue/internal/db"
	"github.com/example/cue/internal/ports/primary"
)

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the cue mailbox",
		Long: `Create the cue directory with a default config.json and an empty
mailbox database. Safe to re-run: an existing config is left alone and
migrations only apply what is missing.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				d, err := config.DefaultDir()
				if err != nil {
					return err
				}
				dir = d
			}

			fmt.Printf("Initializing cue mailbox at %s\n", dir)

			configPath := filepath.Join(dir, "config.json")
			if _, err := os.Stat(configPath); err == nil {
				fmt.Println("✓ Config already exists, leaving it alone")
			} else {
				cfg := &config.Config{
					MailboxPath:        filepath.Join(dir, "cue.db"),
					PollInterval:       config.DefaultPollInterval,
					CueTimeout:         config.DefaultCueTimeout,
					AttachPolicy:       primary.AttachPolicyAttach,
					UnknownAgentPolicy: primary.UnknownAgentRemint,
					RetryAttempts:      config.DefaultRetryAttempts,
					RetryBackoff:       config.DefaultRetryBackoff,
					LogLevel:           config.DefaultLogLevel,
				}
				if err := config.Save(dir, cfg); err != nil {
					return fmt.Errorf("failed to write config: %w", err)
				}
				fmt.Printf("✓ Config written to %s\n", configPath)
			}

			cfg, err := config.Load(dir)
			if err != nil {
				return err
			}
			database, err := db.Open(cfg.MailboxPath)
			if err != nil {
				return fmt.Errorf("failed to create mailbox: %w", err)
			}
			defer database.Close()

			fmt.Printf("✓ Mailbox ready at %s\n", cfg.MailboxPath)
			fmt.Println()
			fmt.Println("Next steps:")
			fmt.Println("  cue serve               # expose the mailbox to agents over stdio")
			fmt.Println("  cue console             # answer waiting requests")
			fmt.Println("  cue ask \"ready?\"        # try a rendezvous end to end")

			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Cue directory (default: ~/.cue)")

	return cmd
}
