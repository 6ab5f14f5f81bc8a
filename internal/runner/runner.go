// Package runner launches the external load-test command for one arrival
// rate, records how long it took and persists the resulting report.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/wesleyorama2/ratesweep/internal/report"
	"github.com/wesleyorama2/ratesweep/internal/summary"
)

// DefaultCommand is the command that starts the load test.
const DefaultCommand = "npm run test"

// waitDelay bounds how long output is drained after the command is killed.
const waitDelay = 2 * time.Second

// DefaultShell runs Command through a POSIX shell.
var DefaultShell = []string{"sh", "-c"}

// Runner executes the load-test command.
type Runner struct {
	// Command is the shell command line launching the load test.
	Command string

	// Shell is the interpreter and flag used to run Command.
	Shell []string

	// Dir is the working directory of the subprocess. Empty means the
	// current directory.
	Dir string

	// ReportDir receives report_<rate>.json for every successful run.
	ReportDir string

	// Env, when non-nil, replaces the subprocess environment.
	Env []string

	now func() time.Time
}

// Outcome is the result of a successful run.
type Outcome struct {
	Report     *report.Report
	ReportPath string

	// Excerpt is the summary block scraped from stdout; Found reports
	// whether both markers were present.
	Excerpt string
	Found   bool
}

// SubprocessError is returned when the command fails to launch or exits
// with a non-zero status. Stdout and Stderr hold whatever was captured.
type SubprocessError struct {
	ArrivalRate int
	ExitCode    int
	Duration    float64
	Stdout      string
	Stderr      string
	Err         error
}

func (e *SubprocessError) Error() string {
	if e.ExitCode > 0 {
		return fmt.Sprintf("subprocess failed for arrival rate %d (exit code %d): %v", e.ArrivalRate, e.ExitCode, e.Err)
	}
	return fmt.Sprintf("subprocess failed for arrival rate %d: %v", e.ArrivalRate, e.Err)
}

func (e *SubprocessError) Unwrap() error {
	return e.Err
}

// New creates a runner for command with reports written to reportDir.
func New(command, reportDir string) *Runner {
	return &Runner{
		Command:   command,
		Shell:     DefaultShell,
		ReportDir: reportDir,
	}
}

// RunOnce runs the command, blocking until it exits. On success the report
// for arrivalRate is written and the summary excerpt extracted. On failure
// a *SubprocessError is returned and nothing is written.
func (r *Runner) RunOnce(ctx context.Context, arrivalRate int) (*Outcome, error) {
	if r.Command == "" {
		return nil, fmt.Errorf("no load-test command configured")
	}

	shell := r.Shell
	if len(shell) == 0 {
		shell = DefaultShell
	}
	args := append(append([]string{}, shell[1:]...), r.Command)

	cmd := exec.CommandContext(ctx, shell[0], args...)
	cmd.Dir = r.Dir
	if r.Env != nil {
		cmd.Env = r.Env
	}
	// Grandchildren left behind by a killed shell may keep the output
	// pipes open.
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := r.clock()
	runErr := cmd.Run()
	duration := seconds(r.clock().Sub(start))

	if runErr != nil {
		serr := &SubprocessError{
			ArrivalRate: arrivalRate,
			Duration:    duration,
			Stdout:      stdout.String(),
			Stderr:      stderr.String(),
			Err:         runErr,
		}
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			serr.ExitCode = exitErr.ExitCode()
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			serr.Err = fmt.Errorf("%w: %v", ctxErr, runErr)
		}
		return nil, serr
	}

	rep := &report.Report{
		ArrivalRate: arrivalRate,
		Duration:    duration,
		Stdout:      stdout.String(),
		Stderr:      stderr.String(),
	}

	path, err := report.Write(r.ReportDir, rep)
	if err != nil {
		return nil, err
	}

	excerpt, found := summary.Extract(rep.Stdout)
	return &Outcome{
		Report:     rep,
		ReportPath: path,
		Excerpt:    excerpt,
		Found:      found,
	}, nil
}

func (r *Runner) clock() time.Time {
	if r.now != nil {
		return r.now()
	}
	return time.Now()
}

// seconds converts d to seconds at millisecond precision.
func seconds(d time.Duration) float64 {
	return float64(d.Milliseconds()) / 1000
}
