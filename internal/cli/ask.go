package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/cue/internal/core/payload"
	"github.com/example/cue/internal/ports/primary"
	"github.com/example/cue/internal/wire"
)

// AskCmd returns the ask command
func AskCmd() *cobra.Command {
	var agentID string
	var payloadJSON string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "ask [prompt]",
		Short: "Send a single cue and wait for the response",
		Long: `Park one request in the mailbox and block until a human answers it in
the console. This exercises the same engine as the MCP server, which
makes it handy for scripts and for trying the rendezvous end to end:

  cue ask "Deploy to staging?" --agent brave-fox-17
  cue ask "Pick one" --payload '{"type":"choice","options":[{"id":"A","label":"Ship"},{"id":"B","label":"Wait"}]}'

The response text is printed to stdout; progress notes go to stderr.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := setupServices(); err != nil {
				return err
			}

			// Catch malformed payloads here; the engine stores them opaquely
			if payloadJSON != "" {
				if _, err := payload.Parse(payloadJSON); err != nil {
					return fmt.Errorf("invalid payload: %w", err)
				}
			}

			effective := timeout
			if effective == 0 {
				effective = wire.Config().CueTimeout
			}
			fmt.Fprintf(os.Stderr, "Waiting for a response (timeout %s, answer with `cue console`)...\n", effective)

			result, err := wire.RendezvousService().Cue(cmd.Context(), primary.CueRequest{
				AgentID: agentID,
				Prompt:  args[0],
				Payload: payloadJSON,
				Timeout: timeout,
			})
			if err != nil {
				return err
			}

			if result.AgentID != agentID {
				fmt.Fprintf(os.Stderr, "Identity: %s\n", result.AgentID)
			}
			if result.Attached {
				fmt.Fprintf(os.Stderr, "Resumed pending request %s\n", result.RequestID)
			}

			if result.Cancelled {
				fmt.Println("(the user ended the conversation)")
				return nil
			}
			fmt.Println(result.Text)
			for _, img := range result.Images {
				fmt.Fprintf(os.Stderr, "Attached image: %s (%d bytes base64)\n", img.MimeType, len(img.Base64Data))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&agentID, "agent", "a", "", "Agent identity (minted fresh when omitted)")
	cmd.Flags().StringVarP(&payloadJSON, "payload", "p", "", "Structured payload JSON (choice, confirm, or form)")
	cmd.Flags().DurationVarP(&timeout, "timeout", "t", 0, "How long to wait (default: configured cue timeout)")

	return cmd
}
