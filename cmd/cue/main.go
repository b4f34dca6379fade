package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/cue/internal/cli"
	"github.com/example/cue/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "cue",
		Short:   "Cue - rendezvous broker between coding agents and their humans",
		Version: version.String(),
		Long: `Cue parks an agent's question in a shared SQLite mailbox and blocks until
a human answers it from another terminal. Agents reach it over MCP stdio
(cue serve); humans answer with cue console.`,
	}

	// Add subcommands
	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.DoctorCmd())
	rootCmd.AddCommand(cli.ServeCmd())
	rootCmd.AddCommand(cli.ConsoleCmd())
	rootCmd.AddCommand(cli.JoinCmd())
	rootCmd.AddCommand(cli.AskCmd())
	rootCmd.AddCommand(cli.RequestCmd())
	rootCmd.AddCommand(cli.StatusCmd())

	// Developer tools
	rootCmd.AddCommand(cli.DevCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
