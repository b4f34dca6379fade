package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/cue/internal/core/payload"
	"github.com/example/cue/internal/ports/primary"
	"github.com/example/cue/internal/wire"
)

var errConsoleQuit = errors.New("console quit")

// ConsoleCmd returns the console command
func ConsoleCmd() *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "console",
		Short: "Answer pending cue requests interactively",
		Long: `Run the human side of the mailbox. The console polls for pending cue
requests, shows them oldest first, and writes your reply back so the
waiting agent can continue.

For each request:
  - type a reply and press Enter to answer it
  - press Enter on an empty line to end that agent's conversation
  - /skip leaves it pending, /expire retires it, /quit exits the console`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := setupServices(); err != nil {
				return err
			}
			cfg := wire.Config()

			c := &console{
				service:      wire.ConsoleService(),
				in:           bufio.NewReader(os.Stdin),
				out:          os.Stdout,
				pollInterval: cfg.PollInterval,
				once:         once,
			}
			return c.run(cmd.Context())
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "Drain the current backlog and exit")

	return cmd
}

type console struct {
	service      primary.ConsoleService
	in           *bufio.Reader
	out          io.Writer
	pollInterval time.Duration
	once         bool
}

func (c *console) run(ctx context.Context) error {
	fmt.Fprintln(c.out, "cue console. Waiting for agents to check in.")
	fmt.Fprintln(c.out, "Reply and press Enter to answer. Empty reply ends that conversation, /skip /expire /quit do what they say.")

	for {
		pending, err := c.service.ListPending(ctx)
		if err != nil {
			return err
		}

		if len(pending) == 0 {
			if c.once {
				fmt.Fprintln(c.out, "No pending requests.")
				return nil
			}
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(c.pollInterval):
			}
			continue
		}

		for _, request := range pending {
			if err := c.settle(ctx, request); err != nil {
				if errors.Is(err, errConsoleQuit) {
					return nil
				}
				return err
			}
		}

		if c.once {
			return nil
		}
	}
}

// settle shows one request and applies the human's decision. Skipped
// requests stay pending and come back on the next poll cycle.
func (c *console) settle(ctx context.Context, request *primary.Request) error {
	c.render(request)

	for {
		fmt.Fprint(c.out, "> ")
		line, err := c.in.ReadString('\n')
		if err == io.EOF {
			return errConsoleQuit
		}
		if err != nil {
			return err
		}
		input := strings.TrimRight(line, "\r\n")

		switch strings.TrimSpace(input) {
		case "/quit":
			return errConsoleQuit

		case "/skip":
			fmt.Fprintf(c.out, "%s %s stays pending\n", color.New(color.FgHiBlack).Sprint("·"), request.RequestID)
			return nil

		case "/expire":
			if err := c.service.Expire(ctx, request.RequestID); err != nil {
				return c.reportSettleError(err)
			}
			fmt.Fprintf(c.out, "%s expired %s\n", color.New(color.FgHiGreen).Sprint("✓"), request.RequestID)
			return nil

		case "":
			// Ending a conversation is not undoable, so confirm first
			fmt.Fprintf(c.out, "End the conversation for %s? [y/N] ", request.AgentID)
			confirm, err := c.in.ReadString('\n')
			if err != nil && err != io.EOF {
				return err
			}
			if t := strings.TrimSpace(confirm); t != "y" && t != "Y" {
				continue
			}
			if err := c.service.Dismiss(ctx, request.RequestID); err != nil {
				return c.reportSettleError(err)
			}
			fmt.Fprintf(c.out, "%s conversation ended for %s\n", color.New(color.FgHiGreen).Sprint("✓"), request.AgentID)
			return nil

		default:
			result, err := c.service.Respond(ctx, primary.RespondRequest{
				RequestID: request.RequestID,
				Text:      resolveReply(request, input),
			})
			if err != nil {
				return c.reportSettleError(err)
			}
			fmt.Fprintf(c.out, "%s answered as %s\n", color.New(color.FgHiGreen).Sprint("✓"), result.ResponseID)
			return nil
		}
	}
}

func (c *console) render(request *primary.Request) {
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, color.New(color.FgHiBlack).Sprint(strings.Repeat("─", 60)))
	fmt.Fprintf(c.out, "%s  %s  %s\n",
		color.New(color.FgHiCyan, color.Bold).Sprint(request.AgentID),
		color.New(color.FgHiBlack).Sprint(request.RequestID),
		color.New(color.FgHiBlack).Sprint(request.CreatedAt),
	)
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, request.Prompt)
	c.renderPayload(request.Payload)
	fmt.Fprintln(c.out)
}

func (c *console) renderPayload(raw string) {
	if raw == "" {
		return
	}

	p, err := payload.Parse(raw)
	if err != nil {
		// Agents sometimes send malformed payloads; show them as-is
		fmt.Fprintf(c.out, "\n%s %s\n", color.New(color.FgYellow).Sprint("payload:"), raw)
		return
	}

	switch p.Type {
	case payload.KindChoice:
		fmt.Fprintln(c.out)
		for i, opt := range p.Options {
			fmt.Fprintf(c.out, "  %s %s\n", color.New(color.FgHiYellow).Sprintf("%d.", i+1), opt.Label)
		}
		hint := "answer with a number or free text"
		if p.AllowMultiple {
			hint = "answer with numbers like 1,3 or free text"
		}
		fmt.Fprintf(c.out, "  %s\n", color.New(color.FgHiBlack).Sprint(hint))

	case payload.KindConfirm:
		if p.Text != "" {
			fmt.Fprintf(c.out, "\n%s\n", p.Text)
		}
		confirm, cancel := p.ConfirmLabels()
		fmt.Fprintf(c.out, "  %s\n", color.New(color.FgHiBlack).Sprintf("[%s / %s]", confirm, cancel))

	case payload.KindForm:
		fmt.Fprintln(c.out)
		for _, f := range p.Fields {
			kind := f.Kind
			if kind == "" {
				kind = "text"
			}
			fmt.Fprintf(c.out, "  %s %s\n", color.New(color.FgHiYellow).Sprintf("%s:", f.Label), color.New(color.FgHiBlack).Sprintf("(%s)", kind))
		}
		fmt.Fprintf(c.out, "  %s\n", color.New(color.FgHiBlack).Sprint("answer the fields in one reply"))
	}
}

// reportSettleError keeps the loop alive through contention: another console
// settling the same request first is a notice, not a crash. Store failures
// still abort.
func (c *console) reportSettleError(err error) error {
	if errors.Is(err, primary.ErrStoreUnavailable) {
		return err
	}
	fmt.Fprintf(c.out, "%s %v\n", color.New(color.FgYellow).Sprint("!"), err)
	return nil
}

// resolveReply maps numeric selections onto choice option labels; any input
// that is not a clean selection passes through as written.
func resolveReply(request *primary.Request, input string) string {
	p, err := payload.Parse(request.Payload)
	if err != nil || p == nil || p.Type != payload.KindChoice {
		return input
	}

	parts := strings.Split(input, ",")
	if !p.AllowMultiple && len(parts) > 1 {
		return input
	}

	var labels []string
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 1 || n > len(p.Options) {
			return input
		}
		labels = append(labels, p.Options[n-1].Label)
	}
	return strings.Join(labels, ", ")
}
