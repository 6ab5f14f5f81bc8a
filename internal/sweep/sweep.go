// Package sweep runs the load test once per arrival rate, strictly one
// rate at a time, and records the outcome of each run.
//
// For every rate in the plan the orchestrator rewrites the tool's
// configuration, runs the tool, appends the scraped summary to the summary
// log on success and then pauses. A failing rate is logged and skipped;
// it never stops the remaining schedule.
package sweep

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/wesleyorama2/ratesweep/internal/runner"
	"github.com/wesleyorama2/ratesweep/internal/summary"
)

// Rewriter derives the tool configuration for one rate.
type Rewriter interface {
	Rewrite(templatePath, outputPath string, arrivalRate int) error
}

// RewriterFunc adapts a function to Rewriter.
type RewriterFunc func(templatePath, outputPath string, arrivalRate int) error

// Rewrite calls f.
func (f RewriterFunc) Rewrite(templatePath, outputPath string, arrivalRate int) error {
	return f(templatePath, outputPath, arrivalRate)
}

// Invoker runs the load test for one rate.
type Invoker interface {
	RunOnce(ctx context.Context, arrivalRate int) (*runner.Outcome, error)
}

// Clock abstracts wall-clock time and the pause between rates.
type Clock interface {
	Now() time.Time
	// Sleep blocks for d or until ctx is done, returning ctx.Err() in
	// the latter case.
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Status is the outcome of one rate.
type Status int

const (
	StatusSucceeded Status = iota
	StatusFailed
	StatusCanceled
)

func (s Status) String() string {
	switch s {
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	case StatusCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// RateResult is what happened to one rate of the schedule.
type RateResult struct {
	Rate       int
	Status     Status
	StartedAt  time.Time
	Duration   float64
	ReportPath string
	Excerpt    string
	Found      bool
	Err        error
}

// Result is the outcome of a whole sweep.
type Result struct {
	Plan       Plan
	Rates      []RateResult
	Durations  DurationStats
	StartedAt  time.Time
	FinishedAt time.Time
}

// Succeeded returns the number of rates that completed.
func (r *Result) Succeeded() int {
	n := 0
	for _, rr := range r.Rates {
		if rr.Status == StatusSucceeded {
			n++
		}
	}
	return n
}

// Failed returns the rates that failed, in schedule order.
func (r *Result) Failed() []int {
	var rates []int
	for _, rr := range r.Rates {
		if rr.Status == StatusFailed {
			rates = append(rates, rr.Rate)
		}
	}
	return rates
}

// Canceled reports whether the sweep was interrupted before finishing.
func (r *Result) Canceled() bool {
	for _, rr := range r.Rates {
		if rr.Status == StatusCanceled {
			return true
		}
	}
	return false
}

type options struct {
	Log      *zap.SugaredLogger
	Clock    Clock
	Observer func(RateResult)
}

func newOptions() *options {
	return &options{
		Log:   zap.NewNop().Sugar(),
		Clock: realClock{},
	}
}

// Option configures an Orchestrator.
type Option func(*options)

// WithLog sets the operator logger.
func WithLog(log *zap.SugaredLogger) Option {
	return func(o *options) {
		o.Log = log
	}
}

// WithClock replaces the wall clock, mainly for tests.
func WithClock(c Clock) Option {
	return func(o *options) {
		o.Clock = c
	}
}

// WithObserver registers a callback invoked after every rate, before the
// pause.
func WithObserver(fn func(RateResult)) Option {
	return func(o *options) {
		o.Observer = fn
	}
}

// Orchestrator drives a sweep.
type Orchestrator struct {
	rewriter Rewriter
	invoker  Invoker
	log      *zap.SugaredLogger
	clock    Clock
	observer func(RateResult)
}

// New creates an orchestrator.
func New(rewriter Rewriter, invoker Invoker, opts ...Option) *Orchestrator {
	o := newOptions()
	for _, opt := range opts {
		opt(o)
	}

	return &Orchestrator{
		rewriter: rewriter,
		invoker:  invoker,
		log:      o.Log,
		clock:    o.Clock,
		observer: o.Observer,
	}
}

// Run executes the plan. Per-rate failures are recorded in the result and
// never returned; only cancellation of ctx cuts the schedule short.
func (o *Orchestrator) Run(ctx context.Context, plan Plan) *Result {
	result := &Result{
		Plan:      plan,
		Rates:     make([]RateResult, 0, len(plan.Rates)),
		StartedAt: o.clock.Now(),
	}
	durations := newDurationRecorder()

	o.log.Infow("starting sweep",
		"rates", plan.Rates,
		"summaryLog", plan.SummaryLogPath,
		"delay", plan.Delay,
	)

	for i, rate := range plan.Rates {
		if ctx.Err() != nil {
			result.Rates = append(result.Rates, canceled(plan.Rates[i:])...)
			break
		}

		rr := o.runRate(ctx, plan, rate)
		result.Rates = append(result.Rates, rr)
		if rr.Status == StatusSucceeded {
			durations.Record(rr.Duration)
		}
		if o.observer != nil {
			o.observer(rr)
		}
		if rr.Status == StatusCanceled {
			result.Rates = append(result.Rates, canceled(plan.Rates[i+1:])...)
			break
		}

		o.log.Infof("Test for arrival rate %d completed. Waiting %s before next test...", rate, plan.Delay)
		if err := o.clock.Sleep(ctx, plan.Delay); err != nil {
			o.log.Warnw("sweep interrupted during pause", "arrivalRate", rate, "error", err)
			result.Rates = append(result.Rates, canceled(plan.Rates[i+1:])...)
			break
		}
	}

	result.FinishedAt = o.clock.Now()
	result.Durations = durations.Stats()

	if result.Canceled() {
		o.log.Warnw("sweep canceled", "completed", result.Succeeded(), "failed", result.Failed())
	} else {
		o.log.Infof("All tests completed. Reports are saved in %s", plan.ReportDir)
	}
	return result
}

func (o *Orchestrator) runRate(ctx context.Context, plan Plan, rate int) RateResult {
	rr := RateResult{Rate: rate, StartedAt: o.clock.Now()}

	if err := o.rewriter.Rewrite(plan.TemplatePath, plan.ConfigPath, rate); err != nil {
		return o.fail(rr, err)
	}

	o.log.Infof("Running test with arrival rate: %d", rate)
	outcome, err := o.invoker.RunOnce(ctx, rate)
	if err != nil {
		var serr *runner.SubprocessError
		if errors.As(err, &serr) {
			rr.Duration = serr.Duration
		}
		if ctx.Err() != nil {
			rr.Status = StatusCanceled
			rr.Err = err
			o.log.Warnw("run canceled", "arrivalRate", rate, "error", err)
			return rr
		}
		return o.fail(rr, err)
	}

	rr.Duration = outcome.Report.Duration
	rr.ReportPath = outcome.ReportPath
	rr.Excerpt = outcome.Excerpt
	rr.Found = outcome.Found
	if !outcome.Found {
		o.log.Warnw("summary block not found in output", "arrivalRate", rate)
	}

	if err := summary.Append(plan.SummaryLogPath, rate, o.clock.Now(), outcome.Excerpt); err != nil {
		return o.fail(rr, err)
	}

	rr.Status = StatusSucceeded
	o.log.Debugw("run recorded",
		"arrivalRate", rate,
		"duration", rr.Duration,
		"report", rr.ReportPath,
	)
	return rr
}

func (o *Orchestrator) fail(rr RateResult, err error) RateResult {
	rr.Status = StatusFailed
	rr.Err = err
	o.log.Errorw("Failed to run test for arrival rate", "arrivalRate", rr.Rate, "error", err)
	return rr
}

func canceled(rates []int) []RateResult {
	out := make([]RateResult, 0, len(rates))
	for _, rate := range rates {
		out = append(out, RateResult{
			Rate:   rate,
			Status: StatusCanceled,
			Err:    context.Canceled,
		})
	}
	return out
}
