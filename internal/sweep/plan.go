package sweep

import (
	"fmt"
	"time"

	"github.com/wesleyorama2/ratesweep/internal/report"
	"github.com/wesleyorama2/ratesweep/internal/summary"
)

// DefaultDelay is the pause after every rate.
const DefaultDelay = 30 * time.Second

// Plan is everything one sweep needs to know. It is built once, before the
// first run, and never modified afterwards.
type Plan struct {
	// Rates is the arrival-rate schedule, run in order.
	Rates []int

	// TemplatePath is the YAML template read before every run.
	TemplatePath string

	// ConfigPath is the derived configuration the load-test tool reads.
	ConfigPath string

	// ReportDir holds report_<rate>.json files and the summary log.
	ReportDir string

	// SummaryLogPath is the log every successful run is appended to.
	SummaryLogPath string

	// Delay is the pause after each rate.
	Delay time.Duration
}

// PlanOptions are the inputs to NewPlan.
type PlanOptions struct {
	Rates        []int
	TemplatePath string
	ConfigPath   string
	ReportDir    string
	LogName      string
	Delay        time.Duration
}

// NewPlan creates the report directory and picks the summary log for this
// invocation: LogName if it is free, otherwise the lowest free numbered
// variant.
func NewPlan(opts PlanOptions) (Plan, error) {
	if len(opts.Rates) == 0 {
		return Plan{}, fmt.Errorf("at least one arrival rate is required")
	}

	if err := report.EnsureDir(opts.ReportDir); err != nil {
		return Plan{}, err
	}

	logName := opts.LogName
	if logName == "" {
		logName = summary.DefaultLogName
	}
	logPath, err := summary.NextLogPath(opts.ReportDir, logName)
	if err != nil {
		return Plan{}, err
	}

	return Plan{
		Rates:          append([]int(nil), opts.Rates...),
		TemplatePath:   opts.TemplatePath,
		ConfigPath:     opts.ConfigPath,
		ReportDir:      opts.ReportDir,
		SummaryLogPath: logPath,
		Delay:          opts.Delay,
	}, nil
}
