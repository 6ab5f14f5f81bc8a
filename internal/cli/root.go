package cli

import (
	"github.com/spf13/cobra"
)

var version = "0.1.0"

// NewRootCmd builds the command tree. Each call returns a fresh tree so
// flag state never leaks between executions.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "ratesweep",
		Short:   "Run a load test once per arrival rate and collect the reports",
		Version: version,
		Long: `Ratesweep drives an external load-test tool across a schedule of
arrival rates. For each rate it rewrites the tool's YAML configuration,
runs the tool, saves a JSON report and appends the tool's summary block
to a per-sweep summary log.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// If no subcommand is provided, print help
			return cmd.Help()
		},
	}

	root.PersistentFlags().String(flagConfig, "", "YAML settings file")

	root.AddCommand(newRunCmd())
	root.AddCommand(newValidateCmd())
	root.AddCommand(newReportCmd())
	root.AddCommand(newHookCmd())
	return root
}

// Execute runs the command line and returns the first error.
// This is called by main.Main().
func Execute() error {
	return NewRootCmd().Execute()
}
