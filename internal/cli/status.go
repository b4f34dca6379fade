package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/cue/internal/wire"
)

// StatusCmd returns the status command
func StatusCmd() *cobra.Command {
	var showParticipants bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show mailbox totals and waiting requests",
		Long: `Display a snapshot of the rendezvous mailbox:
- Request counts per status
- Requests currently waiting for a human
- Recently seen participants (with --participants)

This answers "is anyone waiting on me right now?"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := setupServices(); err != nil {
				return err
			}
			ctx := cmd.Context()

			fmt.Println("Cue Status")
			fmt.Printf("  Mailbox: %s\n", wire.Config().MailboxPath)
			fmt.Println()

			counts, err := wire.ConsoleService().Counts(ctx)
			if err != nil {
				return fmt.Errorf("failed to read mailbox: %w", err)
			}

			fmt.Printf("Requests: %d total\n", counts.Total)
			fmt.Printf("  %s\n", color.New(color.FgHiYellow).Sprintf("pending: %d", counts.Pending))
			fmt.Printf("  %s\n", color.New(color.FgHiGreen).Sprintf("answered: %d", counts.Answered))
			fmt.Printf("  %s\n", color.New(color.FgHiBlack).Sprintf("cancelled: %d", counts.Cancelled))
			fmt.Printf("  %s\n", color.New(color.FgHiBlack).Sprintf("expired: %d", counts.Expired))
			fmt.Println()

			pending, err := wire.ConsoleService().ListPending(ctx)
			if err != nil {
				fmt.Printf("Waiting: (error loading: %v)\n", err)
			} else if len(pending) == 0 {
				fmt.Println("Waiting: nobody")
			} else {
				fmt.Printf("Waiting (%d):\n", len(pending))
				for _, r := range pending {
					fmt.Printf("  - %s  %s  %s\n", r.RequestID, color.New(color.FgHiCyan).Sprint(r.AgentID), truncatePrompt(r.Prompt, 60))
				}
				fmt.Println()
				fmt.Println("Run `cue console` to answer them.")
			}

			if showParticipants {
				fmt.Println()
				participants, err := wire.ConsoleService().ListParticipants(ctx, 10)
				if err == nil && len(participants) > 0 {
					fmt.Println("Recently seen:")
					for _, p := range participants {
						fmt.Printf("  - %s  last seen %s\n", p.AgentID, p.LastSeenAt)
					}
				}
			}

			return nil
		},
	}

	cmd.Flags().BoolVarP(&showParticipants, "participants", "p", false, "Show recently seen participants")

	return cmd
}
