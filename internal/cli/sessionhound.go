package cli

import (
	"github.com/spf13/cobra"

	"github.com/yungbote/edgehound/internal/app"
	"github.com/yungbote/edgehound/internal/domain"
)

// NewSessionHoundCommand imports (Computer)-[:HasSession]->(User) edges.
func NewSessionHoundCommand(opts ...app.Option) *cobra.Command {
	var f commonFlags

	cmd := &cobra.Command{
		Use:   "sessionhound <csv>",
		Short: "Import computer session data from a CSV file into BloodHound's Neo4j database",
		Long: "sessionhound creates one (Computer)-[:HasSession]->(User) relation per CSV row unless it already exists.\n\n" +
			"The CSV header must be exactly: username,hostname",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, &f, args[0], domain.NewSessionSpec(), opts)
		},
	}
	bindCommon(cmd, &f)
	return cmd
}
