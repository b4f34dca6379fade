package cli

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/example/cue/internal/config"
	"github.com/example/cue/internal/db"
)

// CheckResult represents the outcome of a single check
type CheckResult struct {
	Name    string
	Status  string // "✓", "⚠", "✗"
	Details string // Only shown if Status != "✓"
}

// DoctorCmd returns the doctor command for environment validation
func DoctorCmd() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Validate the cue environment and mailbox",
		Long: `Health check for the cue rendezvous setup.

Validates:
- Configuration parses and passes validation
- The cue directory and mailbox file exist
- The mailbox opens and runs in WAL mode
- Pending requests are not piling up unanswered

Examples:
  cue doctor              # Run full health check
  cue doctor --quiet      # Exit code only (0=healthy, 1=issues)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			results := []CheckResult{}
			hasErrors := false

			cfg, cfgResult := checkConfig()
			results = append(results, cfgResult)
			if cfg != nil {
				results = append(results, checkMailboxFile(cfg))
				results = append(results, checkMailbox(cfg)...)
			}

			for _, r := range results {
				if r.Status == "✗" {
					hasErrors = true
					break
				}
			}

			if !quiet {
				fmt.Println()
				fmt.Println("Check              Status")
				fmt.Println("─────────────────────────")
				for _, r := range results {
					fmt.Printf("%-18s %s\n", r.Name, r.Status)
				}
				fmt.Println()

				hasDetails := false
				for _, r := range results {
					if r.Status != "✓" && r.Details != "" {
						if !hasDetails {
							fmt.Println("Details:")
							hasDetails = true
						}
						fmt.Printf("\n%s:\n%s\n", r.Name, r.Details)
					}
				}

				if hasErrors {
					fmt.Println("\n⚠ Issues found.")
				} else {
					fmt.Println("All checks passed.")
				}
			}

			if hasErrors {
				return fmt.Errorf("environment validation failed")
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Quiet mode - exit code only")

	return cmd
}

// checkConfig validates that configuration loads and passes validation.
func checkConfig() (*config.Config, CheckResult) {
	cfg, err := config.Load("")
	if err != nil {
		return nil, CheckResult{
			Name:    "Config",
			Status:  "✗",
			Details: fmt.Sprintf("  %v\n  FIX: Run 'cue init' or repair config.json", err),
		}
	}
	return cfg, CheckResult{Name: "Config", Status: "✓"}
}

// checkMailboxFile validates the mailbox file exists on disk.
func checkMailboxFile(cfg *config.Config) CheckResult {
	dir := filepath.Dir(cfg.MailboxPath)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return CheckResult{
			Name:    "Cue directory",
			Status:  "✗",
			Details: fmt.Sprintf("  Missing: %s\n  FIX: Run 'cue init'", dir),
		}
	}

	info, err := os.Stat(cfg.MailboxPath)
	if err != nil {
		return CheckResult{
			Name:    "Mailbox file",
			Status:  "⚠",
			Details: fmt.Sprintf("  Missing: %s\n  FIX: Run 'cue init' (any cue command creates it too)", cfg.MailboxPath),
		}
	}
	return CheckResult{Name: "Mailbox file", Status: "✓", Details: fmt.Sprintf("  %d KB", info.Size()/1024)}
}

// checkMailbox opens the mailbox and inspects journal mode and queue depth.
// Skipped when the file does not exist so doctor never creates it.
func checkMailbox(cfg *config.Config) []CheckResult {
	if _, err := os.Stat(cfg.MailboxPath); err != nil {
		return []CheckResult{
			{Name: "WAL mode", Status: "⚠", Details: "  Skipped (mailbox doesn't exist)"},
			{Name: "Request queue", Status: "⚠", Details: "  Skipped (mailbox doesn't exist)"},
		}
	}

	database, err := db.Open(cfg.MailboxPath)
	if err != nil {
		return []CheckResult{{
			Name:    "WAL mode",
			Status:  "✗",
			Details: fmt.Sprintf("  Cannot open mailbox: %v", err),
		}}
	}
	defer database.Close()

	results := []CheckResult{checkJournalMode(database)}
	results = append(results, checkQueueDepth(database))
	return results
}

func checkJournalMode(database *sql.DB) CheckResult {
	var mode string
	if err := database.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		return CheckResult{Name: "WAL mode", Status: "✗", Details: fmt.Sprintf("  %v", err)}
	}
	if mode != "wal" {
		return CheckResult{
			Name:    "WAL mode",
			Status:  "✗",
			Details: fmt.Sprintf("  journal_mode is %q, not wal\n  Cross-process polling needs WAL; reopen through cue to fix", mode),
		}
	}
	return CheckResult{Name: "WAL mode", Status: "✓"}
}

func checkQueueDepth(database *sql.DB) CheckResult {
	var pending, stale int
	err := database.QueryRow(
		"SELECT COUNT(*) FROM cue_requests WHERE status = 'pending'").Scan(&pending)
	if err != nil {
		return CheckResult{Name: "Request queue", Status: "✗", Details: fmt.Sprintf("  %v", err)}
	}
	err = database.QueryRow(
		"SELECT COUNT(*) FROM cue_requests WHERE status = 'pending' AND datetime(updated_at) < datetime('now', '-1 hour')").Scan(&stale)
	if err != nil {
		return CheckResult{Name: "Request queue", Status: "✗", Details: fmt.Sprintf("  %v", err)}
	}

	if stale > 0 {
		return CheckResult{
			Name:    "Request queue",
			Status:  "⚠",
			Details: fmt.Sprintf("  %d pending request(s), %d older than an hour\n  Their waiters may be gone; 'cue console' to answer or 'cue request expire' to retire", pending, stale),
		}
	}
	return CheckResult{Name: "Request queue", Status: "✓"}
}
