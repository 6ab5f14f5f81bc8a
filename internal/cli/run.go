package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/ratesweep/internal/logging"
	"github.com/wesleyorama2/ratesweep/internal/output"
	"github.com/wesleyorama2/ratesweep/internal/rewrite"
	"github.com/wesleyorama2/ratesweep/internal/runner"
	"github.com/wesleyorama2/ratesweep/internal/sweep"
)

// ErrSweepFailed is returned by run when --fail-on-error is set and at
// least one rate failed.
var ErrSweepFailed = errors.New("sweep failed")

// ErrSweepCanceled is returned by run when the sweep was interrupted.
var ErrSweepCanceled = errors.New("sweep canceled")

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the load test once per arrival rate",
		Long: `Run rewrites the configured template for every arrival rate, runs the
load-test command, writes report_<rate>.json on success and appends the
tool's summary block to the summary log. A failing rate is logged and the
schedule continues.`,
		Example: `  ratesweep run
  ratesweep run --rates 10,20 --delay 5s --workdir perf-test/src/scripts
  RATESWEEP_COMMAND="make load" ratesweep run --config sweep.yaml`,
		Args: cobra.NoArgs,
		RunE: runSweep,
	}

	addSettingFlags(cmd.Flags())
	cmd.Flags().BoolP(flagQuiet, "q", false, "only print the final status")
	return cmd
}

func runSweep(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd.Flags())
	if err != nil {
		return err
	}
	quiet, _ := cmd.Flags().GetBool(flagQuiet)

	log, err := logging.New(s.LogLevel, s.NoColor)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if s.ValidateTemplate {
		if err := rewrite.Validate(s.TemplatePath()); err != nil {
			return fmt.Errorf("invalid template %s: %w", s.TemplatePath(), err)
		}
	}

	plan, err := sweep.NewPlan(sweep.PlanOptions{
		Rates:        s.Rates,
		TemplatePath: s.TemplatePath(),
		ConfigPath:   s.OutputPath(),
		ReportDir:    s.ReportPath(),
		LogName:      s.SummaryLog,
		Delay:        s.Delay,
	})
	if err != nil {
		return err
	}

	r := runner.New(s.Command, plan.ReportDir)
	r.Shell = s.Shell
	r.Dir = s.WorkDir

	console := output.NewConsole(output.ConsoleConfig{
		Writer:  cmd.OutOrStdout(),
		NoColor: s.NoColor,
		Quiet:   quiet,
	})
	console.PrintBanner(plan, s.Command)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orchestrator := sweep.New(
		sweep.RewriterFunc(rewrite.Rewrite),
		r,
		sweep.WithLog(log),
		sweep.WithObserver(console.PrintRate),
	)
	result := orchestrator.Run(ctx, plan)
	console.PrintSummary(result)

	if result.Canceled() {
		return ErrSweepCanceled
	}
	if failed := result.Failed(); s.FailOnError && len(failed) > 0 {
		return fmt.Errorf("%w: arrival rates %v", ErrSweepFailed, failed)
	}
	return nil
}
