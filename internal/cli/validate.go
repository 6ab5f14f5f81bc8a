package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/ratesweep/internal/output"
	"github.com/wesleyorama2/ratesweep/internal/rewrite"
)

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the settings and template without running anything",
		Long: `Validate resolves the settings, checks the template against the
expected shape and derives the configuration for every scheduled rate in
memory. Nothing is written.`,
		Args: cobra.NoArgs,
		RunE: validateSweep,
	}
	addSettingFlags(cmd.Flags())
	return cmd
}

func validateSweep(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd.Flags())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	path := s.TemplatePath()
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read template: %w", err)
	}
	if err := rewrite.ValidateBytes(data); err != nil {
		return fmt.Errorf("invalid template %s: %w", path, err)
	}

	for _, rate := range s.Rates {
		if _, err := rewrite.Apply(data, rate); err != nil {
			return fmt.Errorf("arrival rate %d: %w", rate, err)
		}
	}

	fmt.Fprintf(out, "%s %s is valid for rates %v\n", output.SuccessIcon(s.NoColor), path, s.Rates)
	return nil
}
