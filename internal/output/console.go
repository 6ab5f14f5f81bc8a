// Package output renders sweep progress and results for the operator.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/wesleyorama2/ratesweep/internal/report"
	"github.com/wesleyorama2/ratesweep/internal/sweep"
)

const ruleWidth = 56

// Console writes human-readable sweep output.
type Console struct {
	writer  io.Writer
	scheme  *ColorScheme
	noColor bool
	quiet   bool

	mu sync.Mutex
}

// ConsoleConfig contains configuration for Console.
type ConsoleConfig struct {
	Writer      io.Writer
	NoColor     bool
	ForceColors bool
	Quiet       bool
}

// NewConsole creates a console. Colors are used only when the writer is a
// terminal that supports them, unless ForceColors is set.
func NewConsole(config ConsoleConfig) *Console {
	if config.Writer == nil {
		config.Writer = os.Stdout
	}

	useColors := !config.NoColor &&
		(config.ForceColors || (isTerminal(config.Writer) && supportsColors()))

	scheme := NoColorScheme()
	if useColors {
		scheme = DefaultColorScheme().forceColors()
	}

	return &Console{
		writer:  config.Writer,
		scheme:  scheme,
		noColor: !useColors,
		quiet:   config.Quiet,
	}
}

// PrintBanner prints the sweep header before the first rate runs.
func (c *Console) PrintBanner(plan sweep.Plan, command string) {
	if c.quiet {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	rates := make([]string, len(plan.Rates))
	for i, r := range plan.Rates {
		rates[i] = fmt.Sprint(r)
	}

	c.rule()
	c.writeln(c.scheme.Title.Sprintf("Arrival-rate sweep - %d rates", len(plan.Rates)))
	c.rule()
	c.field("Rates", strings.Join(rates, ", "))
	c.field("Command", command)
	c.field("Template", plan.TemplatePath)
	c.field("Config", plan.ConfigPath)
	c.field("Reports", plan.ReportDir)
	c.field("Summary log", plan.SummaryLogPath)
	c.field("Delay", formatDuration(plan.Delay))
	c.writeln("")
}

// PrintRate prints one status line for a finished rate.
func (c *Console) PrintRate(rr sweep.RateResult) {
	if c.quiet {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	rate := c.scheme.Rate.Sprintf("%6d/s", rr.Rate)
	switch rr.Status {
	case sweep.StatusSucceeded:
		line := fmt.Sprintf("%s %s  %s  %s",
			SuccessIcon(c.noColor), rate,
			c.scheme.Value.Sprint(formatSeconds(rr.Duration)),
			rr.ReportPath)
		if !rr.Found {
			line += " " + c.scheme.Warning.Sprint("(no summary block)")
		}
		c.writeln(line)
	case sweep.StatusFailed:
		c.writeln(fmt.Sprintf("%s %s  %s", ErrorIcon(c.noColor), rate, c.scheme.Error.Sprint(rr.Err)))
	default:
		c.writeln(fmt.Sprintf("%s %s  %s", WarningIcon(c.noColor), rate, c.scheme.Warning.Sprint("canceled")))
	}
}

// PrintSummary prints the outcome of the whole sweep.
func (c *Console) PrintSummary(result *sweep.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.quiet {
		if len(result.Failed()) == 0 && !result.Canceled() {
			c.writeln(c.scheme.Success.Sprint("PASSED"))
		} else {
			c.writeln(c.scheme.Error.Sprint("FAILED"))
		}
		return
	}

	status := c.scheme.Success.Sprint("Completed ✓")
	switch {
	case result.Canceled():
		status = c.scheme.Warning.Sprint("Canceled ⚠")
	case len(result.Failed()) > 0:
		status = c.scheme.Error.Sprint("Completed with failures ✗")
	}

	c.writeln("")
	c.rule()
	c.writeln(fmt.Sprintf("%s - %s", c.scheme.Title.Sprint("Sweep"), status))
	c.rule()
	c.writeln("")

	c.field("Elapsed", formatDuration(result.FinishedAt.Sub(result.StartedAt)))
	c.field("Succeeded", fmt.Sprintf("%d/%d", result.Succeeded(), len(result.Rates)))
	if failed := result.Failed(); len(failed) > 0 {
		c.field("Failed rates", fmt.Sprint(failed))
	}
	c.field("Summary log", result.Plan.SummaryLogPath)
	c.writeln("")

	d := result.Durations
	if d.Count > 0 {
		c.writeln(c.scheme.Title.Sprint("Run Durations:"))
		c.writeln(fmt.Sprintf("  Min:       %s", formatDuration(d.Min)))
		c.writeln(fmt.Sprintf("  P50:       %s", formatDuration(d.P50)))
		c.writeln(fmt.Sprintf("  P95:       %s", formatDuration(d.P95)))
		c.writeln(fmt.Sprintf("  Max:       %s", formatDuration(d.Max)))
		c.writeln(fmt.Sprintf("  Mean:      %s", formatDuration(d.Mean)))
		c.writeln(fmt.Sprintf("  Total:     %s", formatDuration(d.Total)))
		c.writeln("")
	}
}

// PrintReports lists the reports found in a directory.
func (c *Console) PrintReports(dir string, entries []report.Entry, problems []error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(entries) == 0 {
		c.writeln(fmt.Sprintf("No reports found in %s", dir))
	} else {
		c.writeln(c.scheme.Title.Sprintf("%-10s %-10s %-10s %-10s %s", "RATE", "DURATION", "STDOUT", "STDERR", "FILE"))
		for _, e := range entries {
			c.writeln(fmt.Sprintf("%s %-10s %-10s %-10s %s",
				c.scheme.Rate.Sprintf("%-10d", e.ArrivalRate),
				formatSeconds(e.Duration),
				formatBytes(e.StdoutBytes),
				formatBytes(e.StderrBytes),
				e.Path))
		}
	}

	for _, err := range problems {
		c.writeln(fmt.Sprintf("%s %s", WarningIcon(c.noColor), c.scheme.Warning.Sprint(err)))
	}
}

func (c *Console) rule() {
	c.writeln(c.scheme.Rule.Sprint(strings.Repeat("━", ruleWidth)))
}

func (c *Console) field(label, value string) {
	c.writeln(fmt.Sprintf("%s %s", c.scheme.Label.Sprintf("%-13s", label+":"), value))
}

func (c *Console) writeln(s string) {
	fmt.Fprintln(c.writer, s)
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm %02ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh %02dm %02ds", h, m, s)
}

// formatSeconds renders a report duration, which is stored in seconds.
func formatSeconds(s float64) string {
	return formatDuration(time.Duration(s * float64(time.Second)))
}

func formatBytes(n int) string {
	switch {
	case n < 1024:
		return fmt.Sprintf("%dB", n)
	case n < 1024*1024:
		return fmt.Sprintf("%.1fKB", float64(n)/1024)
	default:
		return fmt.Sprintf("%.1fMB", float64(n)/(1024*1024))
	}
}
