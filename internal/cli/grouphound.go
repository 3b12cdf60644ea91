package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yungbote/edgehound/internal/app"
	"github.com/yungbote/edgehound/internal/domain"
)

// NewGroupHoundCommand imports principal->host access edges. opts are passed
// through to the importer.
func NewGroupHoundCommand(opts ...app.Option) *cobra.Command {
	var f commonFlags
	var edgeType string

	cmd := &cobra.Command{
		Use:   "grouphound <csv> [edge-type]",
		Short: "Import computer local group access from a CSV file into BloodHound's Neo4j database",
		Long: "grouphound creates one (principal)-[edge]->(Computer) relation per CSV row unless it already exists.\n\n" +
			"The CSV header must be exactly: username,hostname,type\n" +
			"Edge type is one of: " + accessEdgeNames() + ".",
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := accessSpec(args, edgeType)
			if err != nil {
				return err
			}
			return run(cmd, &f, args[0], spec, opts)
		},
	}
	bindCommon(cmd, &f)
	cmd.Flags().StringVarP(&edgeType, "type", "t", "", "Edge type: "+accessEdgeNames())
	return cmd
}

// accessSpec resolves the edge type from the positional argument or --type.
func accessSpec(args []string, flagType string) (domain.EdgeSpec, error) {
	raw := strings.TrimSpace(flagType)
	if len(args) == 2 {
		if raw != "" && !strings.EqualFold(raw, args[1]) {
			return domain.EdgeSpec{}, fmt.Errorf("edge type given twice: %q and --type %q", args[1], raw)
		}
		raw = args[1]
	}
	if raw == "" {
		return domain.EdgeSpec{}, fmt.Errorf("edge type required: %s", accessEdgeNames())
	}
	edge, err := domain.ParseEdgeLabel(raw)
	if err != nil {
		return domain.EdgeSpec{}, fmt.Errorf("%w (want %s)", err, accessEdgeNames())
	}
	return domain.NewAccessSpec(edge)
}

func accessEdgeNames() string {
	names := make([]string, 0, 4)
	for _, l := range domain.AccessEdgeLabels() {
		names = append(names, l.String())
	}
	return strings.Join(names, ", ")
}
