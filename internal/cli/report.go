package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/ratesweep/internal/output"
	"github.com/wesleyorama2/ratesweep/internal/report"
)

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report [dir]",
		Short: "List the reports of a sweep or query one of them",
		Example: `  ratesweep report
  ratesweep report ../report --rate 50 --query duration
  ratesweep report --rate 50 --query '$.stdout'
  ratesweep report --html sweep.html`,
		Args: cobra.MaximumNArgs(1),
		RunE: showReports,
	}

	f := cmd.Flags()
	addSettingFlags(f)
	f.Int("rate", 0, "arrival rate of the report to query")
	f.String("query", "", "JSONPath expression evaluated against the report")
	f.String("html", "", "write an HTML overview of the reports to this file")
	return cmd
}

func showReports(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd.Flags())
	if err != nil {
		return err
	}

	dir := s.ReportPath()
	if len(args) == 1 {
		dir = args[0]
	}

	query, _ := cmd.Flags().GetString("query")
	if query != "" {
		if !cmd.Flags().Changed("rate") {
			return fmt.Errorf("--query requires --rate")
		}
		rate, _ := cmd.Flags().GetInt("rate")
		value, err := report.Query(report.Path(dir, rate), query)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), value)
		return nil
	}

	if htmlPath, _ := cmd.Flags().GetString("html"); htmlPath != "" {
		if err := report.WriteHTML(dir, htmlPath, time.Now()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "HTML report written to %s\n", htmlPath)
		return nil
	}

	entries, problems, err := report.List(dir)
	if err != nil {
		return err
	}

	console := output.NewConsole(output.ConsoleConfig{Writer: cmd.OutOrStdout(), NoColor: s.NoColor})
	console.PrintReports(dir, entries, problems)
	return nil
}
