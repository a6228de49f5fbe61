package config

import (
	"fmt"
	"strings"

	"sqldash/internal/config"
	"sqldash/internal/providers"
	"sqldash/internal/series"
	"sqldash/internal/util"

	"github.com/spf13/cobra"
)

// SetCommand returns the "config set" command.
func SetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: "Set a persistent configuration value.\n\n" +
			config.KeysHelp() +
			"\nExamples:\n" +
			"  sqldash config set default-backend prometheus\n" +
			"  sqldash config set default-unit GiB",
		Args: cobra.ExactArgs(2),
		Run:  runSet,
	}

	return cmd
}

// validators maps key names to optional pre-save validation functions.
// A validator returns the canonical form of the value to store. Keys
// not present in this map are stored verbatim (URLs and paths keep
// their case).
var validators = map[string]func(cmd *cobra.Command, value string) (string, error){
	"default-backend": validateBackend,
	"default-unit":    validateUnit,
}

func runSet(cmd *cobra.Command, args []string) {
	key := util.NormalizeKey(args[0])
	value := strings.TrimSpace(args[1])

	spec := config.Lookup(key)
	if spec == nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: unknown configuration key %q\n", args[0])
		fmt.Fprintf(cmd.ErrOrStderr(), "Valid keys: %s\n", strings.Join(config.KeyNames(), ", "))
		return
	}

	if validate, ok := validators[spec.Name]; ok {
		canonical, err := validate(cmd, value)
		if err != nil {
			return // validate already printed the error
		}
		value = canonical
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		return
	}

	spec.Set(cfg, value)
	if err := cfg.Save(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		return
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s set to %q\n", spec.Name, value)
}

// validateBackend checks that the given name is a registered backend.
func validateBackend(cmd *cobra.Command, name string) (string, error) {
	normalized := util.NormalizeKey(name)
	known := providers.List()
	for _, b := range known {
		if b == normalized {
			return normalized, nil
		}
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: unknown backend %q\n", name)
	fmt.Fprintf(cmd.ErrOrStderr(), "Registered backends: %v\n", known)
	return "", fmt.Errorf("unknown backend %q", name)
}

// validateUnit maps a unit name to its canonical casing.
func validateUnit(cmd *cobra.Command, value string) (string, error) {
	switch util.NormalizeKey(value) {
	case "b", "bytes":
		return string(series.Bytes), nil
	case "mib":
		return string(series.MiB), nil
	case "gib":
		return string(series.GiB), nil
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: unknown unit %q (valid: B, MiB, GiB)\n", value)
	return "", fmt.Errorf("unknown unit %q", value)
}
