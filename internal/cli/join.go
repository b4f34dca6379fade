package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/cue/internal/ports/primary"
	"github.com/example/cue/internal/wire"
)

// JoinCmd returns the join command
func JoinCmd() *cobra.Command {
	var hints string

	cmd := &cobra.Command{
		Use:   "join [agent-id]",
		Short: "Mint or resume an agent identity",
		Long: `Register an agent identity in the mailbox. Without arguments a fresh
adjective-animal name is minted. Pass a previously issued agent-id to
resume it, or --hints to recover a forgotten one from earlier prompts.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := setupServices(); err != nil {
				return err
			}
			ctx := cmd.Context()

			if hints != "" {
				result, err := wire.IdentityService().Recall(ctx, primary.RecallRequest{Hints: hints})
				if err != nil {
					return fmt.Errorf("failed to recall identity: %w", err)
				}
				if result.Recalled {
					fmt.Printf("✓ Recalled %s\n", result.AgentID)
					fmt.Printf("  Matched: %q\n", result.Matched)
				} else {
					fmt.Printf("✓ Nothing matched those hints; minted %s instead\n", result.AgentID)
				}
				return nil
			}

			var agentID string
			if len(args) > 0 {
				agentID = args[0]
			}
			result, err := wire.IdentityService().Join(ctx, primary.JoinRequest{AgentID: agentID})
			if err != nil {
				return fmt.Errorf("failed to join: %w", err)
			}

			if result.Created {
				fmt.Printf("✓ Joined as %s\n", result.AgentID)
			} else {
				fmt.Printf("✓ Rejoined as %s\n", result.AgentID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&hints, "hints", "", "Recover a forgotten identity by matching earlier prompts")

	return cmd
}
