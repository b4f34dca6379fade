// Package naming mints the identifiers used across the mailbox: friendly
// participant names, request ids, and response ids.
package naming

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

var adjectives = []string{
	"brave", "swift", "clever", "calm", "wild",
	"curious", "bright", "gentle", "bold", "keen",
	"noble", "quiet", "sharp", "warm", "wise",
}

var animals = []string{
	"fox", "owl", "wolf", "hawk", "panda",
	"tiger", "deer", "bear", "eagle", "lion",
	"crane", "otter", "raven", "lynx", "heron",
}

// AgentName generates a human-friendly participant name.
//
// Format: {adjective}-{animal}-{number}
// Examples: brave-fox-17, swift-owl-42
func AgentName() string {
	adj := adjectives[rand.Intn(len(adjectives))]
	animal := animals[rand.Intn(len(animals))]
	num := 10 + rand.Intn(90)
	return fmt.Sprintf("%s-%s-%d", adj, animal, num)
}

// RequestID generates a cue request identifier: "req_" plus the first 12 hex
// characters of a random UUID. Short enough to read aloud, unique enough for
// a per-user mailbox.
func RequestID() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "req_" + raw[:12]
}

// ResponseID generates a cue response identifier. ULIDs sort by creation
// time, so scanning responses in id order is also first-written-first.
func ResponseID() string {
	return "resp_" + ulid.Make().String()
}
