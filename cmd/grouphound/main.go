// grouphound imports local group access edges (AdminTo, CanRDP, CanPSRemote,
// ExecuteDCOM) from a CSV file into a BloodHound Neo4j database.
//
// Usage:
//
//	grouphound <csv> <edge-type> [--uri bolt://host:7687] [-u user] [-p pass] [--dry-run] [--debug]
package main

import (
	"fmt"
	"os"

	"github.com/yungbote/edgehound/internal/cli"
)

func main() {
	if err := cli.NewGroupHoundCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
