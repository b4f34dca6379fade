package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/cue/internal/db"
)

// DevCmd returns the dev command group for development utilities.
func DevCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Development utilities",
		Long: `Development utilities for working with a throwaway cue mailbox.

These commands require CUE_DB_PATH to point at the dev mailbox. Running
without it errors to prevent accidental modification of the real mailbox.`,
	}

	cmd.AddCommand(devResetCmd())
	return cmd
}

func devResetCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset the dev mailbox with fresh fixtures",
		Long: `Delete the dev mailbox and recreate it with fixture data.

This command:
1. Deletes the existing dev mailbox file
2. Creates a fresh mailbox with the current schema
3. Seeds requests in every status plus a few participants

Safety: requires CUE_DB_PATH to be set so the real mailbox cannot be
reset by accident.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Safety check: require CUE_DB_PATH to be set
			dbPath := os.Getenv("CUE_DB_PATH")
			if dbPath == "" {
				return fmt.Errorf("CUE_DB_PATH not set\n\nThis safety check prevents accidental reset of your real mailbox; point CUE_DB_PATH at a throwaway file first")
			}

			// Confirmation unless --force
			if !force {
				fmt.Printf("This will delete and recreate: %s\n", dbPath)
				fmt.Print("Continue? [y/N] ")
				var response string
				fmt.Scanln(&response)
				if response != "y" && response != "Y" {
					fmt.Println("Aborted.")
					return nil
				}
			}

			// Delete existing mailbox along with its WAL sidecars
			for _, path := range []string{dbPath, dbPath + "-wal", dbPath + "-shm"} {
				if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("failed to delete %s: %w", path, err)
				}
			}
			fmt.Printf("✓ Deleted %s\n", dbPath)

			// Create fresh mailbox with schema
			database, err := db.Open(dbPath)
			if err != nil {
				return fmt.Errorf("failed to create mailbox: %w", err)
			}
			defer database.Close()
			fmt.Println("✓ Created fresh mailbox with schema")

			// Seed fixtures
			if err := db.SeedFixtures(database); err != nil {
				return fmt.Errorf("failed to seed fixtures: %w", err)
			}
			fmt.Println("✓ Seeded fixture data")

			fmt.Println("\nDev mailbox reset complete!")
			fmt.Println("\nSeeded entities:")
			fmt.Println("  - 4 participants")
			fmt.Println("  - 7 requests across every status")
			fmt.Println("  - 4 responses, one of them a dismissal")
			fmt.Println("\nTry: CUE_DB_PATH=" + dbPath + " cue console")

			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")
	return cmd
}
