package cmd

import (
	"os"
	"strings"
	"time"

	"sqldash/cmd/commands/audit"
	"sqldash/cmd/commands/auth"
	cfgcmd "sqldash/cmd/commands/config"
	"sqldash/cmd/commands/instance"
	"sqldash/internal/auditlog"
	"sqldash/internal/providers"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
func rootCmd() *cobra.Command {
	var cmd = &cobra.Command{
		Use:   "sqldash",
		Short: "A terminal dashboard for managed database instance metrics",
		Long: `sqldash is a terminal dashboard for managed database instances.
It discovers instances through a metrics backend, renders disk, I/O,
transaction, and statement panels, and writes shareable report tables.

Supported backends: Prometheus (more coming soon).

Quick start:
  sqldash auth login prometheus         # Store your API token
  sqldash instance list                 # List discovered instances
  sqldash instance dashboard            # Interactive metrics dashboard
  sqldash instance report --id my-db    # Write report tables`,
	}

	cmd.AddCommand(auth.NewCommand())
	cmd.AddCommand(cfgcmd.NewCommand())
	cmd.AddCommand(instance.NewCommand())
	cmd.AddCommand(audit.NewCommand())

	return cmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	providers.RegisterPrometheus()

	var root = rootCmd()
	start := time.Now()
	err := root.Execute()
	recordAudit(root, start, err)
	if err != nil {
		os.Exit(1)
	}
}

// recordAudit persists one audit entry per subcommand invocation.
// Commands attach backend and instance metadata to their context;
// everything else comes from the process arguments. Audit writes are
// best-effort: a failure to record never fails the command.
func recordAudit(root *cobra.Command, start time.Time, runErr error) {
	target, _, findErr := root.Find(os.Args[1:])
	if findErr != nil || target == nil || target == root {
		return
	}
	switch target.Name() {
	case "help", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
		return
	}

	repo, err := auditlog.Open()
	if err != nil {
		return
	}
	defer repo.Close()

	meta := auditlog.MetadataFromContext(target.Context())
	entry := auditlog.AuditEntry{
		Timestamp:    start.UTC(),
		Command:      target.CommandPath(),
		Args:         strings.Join(auditlog.SanitizeArgs(os.Args[1:]), " "),
		Backend:      meta.Backend,
		InstanceID:   meta.InstanceID,
		InstanceName: meta.InstanceName,
		Outcome:      auditlog.OutcomeSuccess,
		DurationMs:   time.Since(start).Milliseconds(),
	}
	if runErr != nil {
		entry.Outcome = auditlog.OutcomeError
		entry.Detail = runErr.Error()
	}

	_ = repo.Save(&entry)
}
