package runner

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wesleyorama2/ratesweep/internal/report"
)

func skipWithoutShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
}

// fakeClock returns start on the first call and start+step afterwards.
func fakeClock(start time.Time, step time.Duration) func() time.Time {
	calls := 0
	return func() time.Time {
		calls++
		if calls == 1 {
			return start
		}
		return start.Add(step)
	}
}

func TestRunOnce_Success(t *testing.T) {
	skipWithoutShell(t)

	dir := t.TempDir()
	r := New(`printf 'warm up\n--------------------------------\nSummary report @ 10:00:00\nhttp.requests: 600\nLog file: none\n'; printf 'a warning' >&2`, dir)
	r.now = fakeClock(time.Unix(0, 0), 61284*time.Millisecond+700*time.Microsecond)

	out, err := r.RunOnce(context.Background(), 20)
	require.NoError(t, err)

	assert.True(t, out.Found)
	assert.Equal(t, "--------------------------------\nSummary report @ 10:00:00\nhttp.requests: 600", out.Excerpt)
	assert.Equal(t, filepath.Join(dir, "report_20.json"), out.ReportPath)

	assert.Equal(t, 20, out.Report.ArrivalRate)
	assert.Equal(t, 61.284, out.Report.Duration)
	assert.Equal(t, "a warning", out.Report.Stderr)
	assert.Contains(t, out.Report.Stdout, "warm up\n")

	onDisk, err := report.Load(out.ReportPath)
	require.NoError(t, err)
	assert.Equal(t, out.Report, onDisk)
}

func TestRunOnce_MissingMarkersIsNotAnError(t *testing.T) {
	skipWithoutShell(t)

	dir := t.TempDir()
	r := New(`echo "no summary here"`, dir)

	out, err := r.RunOnce(context.Background(), 10)
	require.NoError(t, err)
	assert.False(t, out.Found)
	assert.Empty(t, out.Excerpt)
	assert.FileExists(t, filepath.Join(dir, "report_10.json"))
}

func TestRunOnce_NonZeroExit(t *testing.T) {
	skipWithoutShell(t)

	dir := t.TempDir()
	r := New(`echo partial; echo boom >&2; exit 3`, dir)

	out, err := r.RunOnce(context.Background(), 50)
	assert.Nil(t, out)

	var serr *SubprocessError
	require.True(t, errors.As(err, &serr), "expected *SubprocessError, got %T", err)
	assert.Equal(t, 50, serr.ArrivalRate)
	assert.Equal(t, 3, serr.ExitCode)
	assert.Equal(t, "partial\n", serr.Stdout)
	assert.Equal(t, "boom\n", serr.Stderr)
	assert.Contains(t, serr.Error(), "exit code 3")

	_, statErr := os.Stat(filepath.Join(dir, "report_50.json"))
	assert.True(t, errors.Is(statErr, fs.ErrNotExist), "no report for a failed run")
}

func TestRunOnce_LaunchFailure(t *testing.T) {
	dir := t.TempDir()
	r := New("irrelevant", dir)
	r.Shell = []string{"/definitely/not/a/shell", "-c"}

	_, err := r.RunOnce(context.Background(), 10)

	var serr *SubprocessError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, 0, serr.ExitCode)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRunOnce_WorkingDir(t *testing.T) {
	skipWithoutShell(t)

	workDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(workDir, "dev-load-test.yml"), []byte("config: {}\n"), 0644))

	r := New(`cat dev-load-test.yml`, t.TempDir())
	r.Dir = workDir

	out, err := r.RunOnce(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, "config: {}\n", out.Report.Stdout)
}

func TestRunOnce_ReportDirMissing(t *testing.T) {
	skipWithoutShell(t)

	r := New(`true`, filepath.Join(t.TempDir(), "missing"))

	_, err := r.RunOnce(context.Background(), 10)
	require.Error(t, err)

	var serr *SubprocessError
	assert.False(t, errors.As(err, &serr), "write failures are not subprocess failures")
}

func TestRunOnce_Canceled(t *testing.T) {
	skipWithoutShell(t)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	r := New(`sleep 5`, t.TempDir())

	start := time.Now()
	_, err := r.RunOnce(ctx, 10)
	require.Error(t, err)
	assert.Less(t, time.Since(start), 4*time.Second)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRunOnce_NoCommand(t *testing.T) {
	r := New("", t.TempDir())
	_, err := r.RunOnce(context.Background(), 10)
	assert.Error(t, err)
}

func TestSeconds(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want float64
	}{
		{0, 0},
		{1500 * time.Millisecond, 1.5},
		{999 * time.Microsecond, 0},
		{30*time.Second + 1*time.Millisecond + 900*time.Microsecond, 30.001},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, seconds(tt.in), "seconds(%v)", tt.in)
	}
}
