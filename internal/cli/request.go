package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/cue/internal/ports/primary"
	"github.com/example/cue/internal/wire"
)

var requestCmd = &cobra.Command{
	Use:   "request",
	Short: "Manage cue requests in the mailbox",
	Long:  "List, inspect, answer, and retire cue requests without the interactive console",
}

var requestListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cue requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetString("status")
		agentID, _ := cmd.Flags().GetString("agent")
		limit, _ := cmd.Flags().GetInt("limit")

		if err := setupServices(); err != nil {
			return err
		}

		requests, err := wire.ConsoleService().ListRequests(cmd.Context(), primary.RequestFilters{
			AgentID: agentID,
			Status:  status,
			Limit:   limit,
		})
		if err != nil {
			return fmt.Errorf("failed to list requests: %w", err)
		}

		if len(requests) == 0 {
			fmt.Println("No requests found")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tAGENT\tSTATUS\tCREATED\tPROMPT")
		fmt.Fprintln(w, "--\t-----\t------\t-------\t------")
		for _, r := range requests {
			fmt.Fprintf(w, "%s\t%s\t%s %s\t%s\t%s\n",
				r.RequestID, r.AgentID, statusIcon(r.Status), r.Status, r.CreatedAt, truncatePrompt(r.Prompt, 48))
		}
		w.Flush()
		return nil
	},
}

var requestShowCmd = &cobra.Command{
	Use:   "show [request-id]",
	Short: "Show request details and responses",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := setupServices(); err != nil {
			return err
		}

		request, responses, err := wire.ConsoleService().GetRequest(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("request not found: %w", err)
		}

		fmt.Printf("Request: %s\n", request.RequestID)
		fmt.Printf("Agent: %s\n", request.AgentID)
		fmt.Printf("Status: %s %s\n", statusIcon(request.Status), request.Status)
		fmt.Printf("Prompt: %s\n", request.Prompt)
		if request.Payload != "" {
			fmt.Printf("Payload: %s\n", request.Payload)
		}
		fmt.Printf("Created: %s\n", request.CreatedAt)
		fmt.Printf("Updated: %s\n", request.UpdatedAt)

		if len(responses) == 0 {
			return nil
		}
		fmt.Printf("\nResponses (%d):\n", len(responses))
		for _, resp := range responses {
			fmt.Printf("  %s  %s\n", resp.ResponseID, resp.CreatedAt)
			if resp.Cancelled {
				fmt.Printf("    (conversation ended)\n")
			} else if resp.Text != "" {
				fmt.Printf("    %s\n", resp.Text)
			}
			for _, img := range resp.Images {
				fmt.Printf("    [image %s, %d bytes base64]\n", img.MimeType, len(img.Base64Data))
			}
		}
		return nil
	},
}

var requestRespondCmd = &cobra.Command{
	Use:   "respond [request-id]",
	Short: "Answer a pending request from the command line",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, _ := cmd.Flags().GetString("text")

		if text == "" {
			return fmt.Errorf("must specify --text")
		}

		if err := setupServices(); err != nil {
			return err
		}

		result, err := wire.ConsoleService().Respond(cmd.Context(), primary.RespondRequest{
			RequestID: args[0],
			Text:      text,
		})
		if err != nil {
			return fmt.Errorf("failed to respond: %w", err)
		}

		fmt.Printf("✓ Request %s answered as %s\n", result.RequestID, result.ResponseID)
		return nil
	},
}

var requestDismissCmd = &cobra.Command{
	Use:   "dismiss [request-id]",
	Short: "End the conversation for a pending request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := setupServices(); err != nil {
			return err
		}

		if err := wire.ConsoleService().Dismiss(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("failed to dismiss request: %w", err)
		}

		fmt.Printf("✓ Request %s dismissed\n", args[0])
		return nil
	},
}

var requestExpireCmd = &cobra.Command{
	Use:   "expire [request-id]",
	Short: "Mark a pending request expired without answering",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := setupServices(); err != nil {
			return err
		}

		if err := wire.ConsoleService().Expire(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("failed to expire request: %w", err)
		}

		fmt.Printf("✓ Request %s expired\n", args[0])
		return nil
	},
}

func statusIcon(status string) string {
	switch status {
	case primary.StatusPending:
		return "⏳"
	case primary.StatusAnswered:
		return "✅"
	case primary.StatusCancelled:
		return "🚫"
	case primary.StatusExpired:
		return "💤"
	default:
		return "❓"
	}
}

func truncatePrompt(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func init() {
	// request list flags
	requestListCmd.Flags().StringP("status", "s", "", "Filter by status (pending, answered, cancelled, expired)")
	requestListCmd.Flags().StringP("agent", "a", "", "Filter by agent id")
	requestListCmd.Flags().IntP("limit", "n", 0, "Maximum rows to return")

	// request respond flags
	requestRespondCmd.Flags().StringP("text", "t", "", "The reply to record")

	// Register subcommands
	requestCmd.AddCommand(requestListCmd)
	requestCmd.AddCommand(requestShowCmd)
	requestCmd.AddCommand(requestRespondCmd)
	requestCmd.AddCommand(requestDismissCmd)
	requestCmd.AddCommand(requestExpireCmd)
}

// RequestCmd returns the request command
func RequestCmd() *cobra.Command {
	return requestCmd
}
