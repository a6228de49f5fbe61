package instance

import (
	"fmt"
	"text/tabwriter"

	"sqldash/internal/auditlog"
	"sqldash/internal/providers"
	"sqldash/internal/services/auth"

	"github.com/spf13/cobra"
)

func ListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all instances",
		Long: `List all database instances discovered through the selected backend.

Examples:
  sqldash instance list
  sqldash instance list --backend prometheus -o json`,
		Run: runList,
	}

	cmd.Flags().StringP("output", "o", "table", "Output format: table or json")

	return cmd
}

func runList(cmd *cobra.Command, args []string) {
	backendName := cmd.Flag("backend").Value.String()

	provider, err := providers.Get(backendName, auth.DefaultStore())
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		return
	}

	cmd.SetContext(auditlog.WithMetadata(cmd.Context(), auditlog.Metadata{Backend: backendName}))

	instances, err := provider.ListInstances(cmd.Context())
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error listing instances: %v\n", err)
		return
	}

	output, _ := cmd.Flags().GetString("output")
	if output == "json" {
		printJSON(cmd, instances)
		return
	}

	if len(instances) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No instances found.")
		return
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSTATUS\tREGION\tTIER\tAVAILABILITY\tVERSION")
	fmt.Fprintln(w, "--\t----\t------\t------\t----\t------------\t-------")

	for _, inst := range instances {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			inst.ID,
			inst.Name,
			inst.Status,
			inst.Region,
			inst.Tier,
			inst.Availability,
			inst.DatabaseVersion,
		)
	}

	w.Flush()
}
