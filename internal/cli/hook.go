package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/ratesweep/internal/hook"
)

func newHookCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hook [name...]",
		Short: "Run scenario hooks and print the headers they set",
		Long: `Hook runs the named scenario hooks against a fresh session context and
prints the resulting headers as JSON. Without arguments it runs
setClientId.`,
		RunE: runHooks,
	}
	cmd.Flags().Bool("list", false, "list the registered hooks")
	return cmd
}

func runHooks(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if list, _ := cmd.Flags().GetBool("list"); list {
		fmt.Fprintln(out, strings.Join(hook.Default.Names(), "\n"))
		return nil
	}

	names := args
	if len(names) == 0 {
		names = []string{"setClientId"}
	}

	c := hook.NewContext()
	for _, name := range names {
		if err := hook.Default.Run(name, c); err != nil {
			return err
		}
	}

	data, err := json.MarshalIndent(c.Headers, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode headers: %w", err)
	}
	fmt.Fprintln(out, string(data))
	return nil
}
