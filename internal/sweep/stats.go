package sweep

import (
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Histogram bounds in milliseconds: 1ms to 24h at 3 significant figures.
const (
	histogramMin     = 1
	histogramMax     = int64(24 * time.Hour / time.Millisecond)
	histogramSigFigs = 3
)

// DurationStats summarizes the wall-clock duration of successful runs.
type DurationStats struct {
	Count int64
	Min   time.Duration
	Max   time.Duration
	Mean  time.Duration
	P50   time.Duration
	P95   time.Duration
	Total time.Duration
}

// durationRecorder accumulates run durations.
type durationRecorder struct {
	hist  *hdrhistogram.Histogram
	total time.Duration
}

func newDurationRecorder() *durationRecorder {
	return &durationRecorder{
		hist: hdrhistogram.New(histogramMin, histogramMax, histogramSigFigs),
	}
}

// Record adds a duration expressed in seconds.
func (r *durationRecorder) Record(seconds float64) {
	ms := int64(seconds * 1000)
	if ms < histogramMin {
		ms = histogramMin
	}
	if ms > histogramMax {
		ms = histogramMax
	}
	_ = r.hist.RecordValue(ms)
	r.total += time.Duration(seconds * float64(time.Second))
}

// Stats returns a snapshot of the recorded durations.
func (r *durationRecorder) Stats() DurationStats {
	if r.hist.TotalCount() == 0 {
		return DurationStats{}
	}

	toDuration := func(ms int64) time.Duration {
		return time.Duration(ms) * time.Millisecond
	}

	return DurationStats{
		Count: r.hist.TotalCount(),
		Min:   toDuration(r.hist.Min()),
		Max:   toDuration(r.hist.Max()),
		Mean:  time.Duration(r.hist.Mean() * float64(time.Millisecond)),
		P50:   toDuration(r.hist.ValueAtQuantile(50)),
		P95:   toDuration(r.hist.ValueAtQuantile(95)),
		Total: r.total,
	}
}
