// +build ignore

package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// Orphan represents an agent_id seen in cue_requests but never registered
type Orphan struct {
	AgentID   string
	Requests  int
	FirstSeen string
	LastSeen  string
}

// Early mailboxes recorded requests before the participants table existed,
// so their agent ids were never registered. This backfills those identities
// using the request timestamps, after which recall() can find them again.

func main() {
	dryRun := flag.Bool("dry-run", false, "Preview backfill without executing")
	flag.Parse()

	dbPath := os.Getenv("CUE_DB_PATH")
	if dbPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home dir: %v\n", err)
			os.Exit(1)
		}
		dbPath = filepath.Join(homeDir, ".cue", "cue.db")
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening mailbox: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	orphans, err := findOrphanAgents(db)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error finding unregistered agents: %v\n", err)
		os.Exit(1)
	}

	if len(orphans) == 0 {
		fmt.Println("No unregistered agents found")
		return
	}

	fmt.Printf("Found %d unregistered agent(s):\n\n", len(orphans))

	for _, o := range orphans {
		fmt.Printf("  %s: %d request(s)\n", o.AgentID, o.Requests)
		fmt.Printf("    -> First seen: %s\n", o.FirstSeen)
		fmt.Printf("    -> Last seen: %s\n", o.LastSeen)
		fmt.Println()
	}

	if *dryRun {
		fmt.Println("=== DRY RUN - No changes made ===")
		return
	}

	fmt.Println("=== Executing backfill ===")
	fmt.Println()

	registered := 0
	for _, o := range orphans {
		_, err := db.Exec(
			"INSERT INTO participants (agent_id, created_at, last_seen_at) VALUES (?, ?, ?)",
			o.AgentID, o.FirstSeen, o.LastSeen,
		)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error registering %s: %v\n", o.AgentID, err)
			continue
		}
		fmt.Printf("✓ Registered %s\n", o.AgentID)
		registered++
	}

	fmt.Printf("\n=== Backfill complete: %d/%d agents registered ===\n", registered, len(orphans))
}

func findOrphanAgents(db *sql.DB) ([]Orphan, error) {
	query := `
		SELECT r.agent_id, COUNT(*), MIN(r.created_at), MAX(r.created_at)
		FROM cue_requests r
		LEFT JOIN participants p ON p.agent_id = r.agent_id
		WHERE p.agent_id IS NULL
		GROUP BY r.agent_id
		ORDER BY MIN(r.created_at) ASC
	`

	rows, err := db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orphans []Orphan
	for rows.Next() {
		var o Orphan
		if err := rows.Scan(&o.AgentID, &o.Requests, &o.FirstSeen, &o.LastSeen); err != nil {
			return nil, err
		}
		orphans = append(orphans, o)
	}
	return orphans, rows.Err()
}
