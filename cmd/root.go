// Package cmd contains the guard command-line interface.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jamesdabbs/guard/config"
)

// NewRootCmd returns the root guard command with standard flags and
// subcommands attached.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "guard",
		Short: "Watches directories and dispatches file changes to plugins",
		Long: "guard is a development-automation daemon: it watches a set of " +
			"directories and dispatches batched file-system changes to the " +
			"plugins declared in a guardfile, with interactive scope control.",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "", "Path to the guard.yml guardfile")

	cmd.AddCommand(NewStartCmd())
	cmd.AddCommand(NewShowCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// verboseEnabled reads the persistent --verbose flag.
func verboseEnabled(flags *pflag.FlagSet) bool {
	v, _ := flags.GetBool("verbose")
	return v
}

// guardfilePath resolves the guardfile from the --config flag or by walking
// up from dir.
func guardfilePath(cmd *cobra.Command, dir string) (string, error) {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		return path, nil
	}
	return config.FindConfigFile(dir)
}
