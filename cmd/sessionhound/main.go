// sessionhound imports computer session edges (HasSession) from a CSV file
// into a BloodHound Neo4j database.
//
// Usage:
//
//	sessionhound <csv> [--uri bolt://host:7687] [-u user] [-p pass] [--dry-run] [--debug]
package main

import (
	"fmt"
	"os"

	"github.com/yungbote/edgehound/internal/cli"
)

func main() {
	if err := cli.NewSessionHoundCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
