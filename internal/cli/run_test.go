package cli

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wesleyorama2/ratesweep/internal/report"
)

const testTemplate = `config:
  target: http://localhost:3000
  phases:
    - duration: 60
      arrivalRate: 1
scenarios:
  - flow:
      - get:
          url: /health
`

const summaryCommand = `printf 'done\n--------------------------------\nSummary report @ 14:00:00(+0000)\nhttp.requests: 600\nLog file: /tmp/x.log\n'`

// newWorkDir creates a working directory holding the template. Reports go
// to a report directory inside it.
func newWorkDir(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dev-load-test-template.yml"), []byte(testTemplate), 0644))
	return dir
}

func sweepArgs(dir string, extra ...string) []string {
	args := []string{
		"run",
		"--workdir", dir,
		"--report-dir", "report",
		"--delay", "0s",
		"--no-color",
		"--log-level", "error",
	}
	return append(args, extra...)
}

func TestRunCmd_Sweep(t *testing.T) {
	dir := newWorkDir(t)

	out, err := execute(t, sweepArgs(dir, "--rates", "10,20", "--command", summaryCommand)...)
	require.NoError(t, err, out)

	reportDir := filepath.Join(dir, "report")
	for _, rate := range []int{10, 20} {
		rep, err := report.Load(report.Path(reportDir, rate))
		require.NoError(t, err)
		assert.Equal(t, rate, rep.ArrivalRate)
		assert.Contains(t, rep.Stdout, "http.requests: 600")
	}

	log, err := os.ReadFile(filepath.Join(reportDir, "summary.log"))
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(log), "Summary report for arrival rate"))

	derived, err := os.ReadFile(filepath.Join(dir, "dev-load-test.yml"))
	require.NoError(t, err)
	assert.Contains(t, string(derived), "arrivalRate: 20")

	assert.Contains(t, out, "Arrival-rate sweep - 2 rates")
	assert.Contains(t, out, "Completed ✓")
}

func TestRunCmd_SecondSweepUsesNewLog(t *testing.T) {
	dir := newWorkDir(t)
	args := sweepArgs(dir, "--rates", "10", "--command", summaryCommand)

	_, err := execute(t, args...)
	require.NoError(t, err)
	_, err = execute(t, args...)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, "report", "summary.log"))
	assert.FileExists(t, filepath.Join(dir, "report", "summary_1.log"))
}

func TestRunCmd_FailingRate(t *testing.T) {
	dir := newWorkDir(t)
	command := `grep -q 'arrivalRate: 20' dev-load-test.yml && exit 3; ` + summaryCommand

	out, err := execute(t, sweepArgs(dir, "--rates", "10,20,50", "--command", command)...)
	require.NoError(t, err, "failures do not change the exit status by default")
	assert.Contains(t, out, "Completed with failures")

	reportDir := filepath.Join(dir, "report")
	assert.FileExists(t, report.Path(reportDir, 10))
	assert.NoFileExists(t, report.Path(reportDir, 20))
	assert.FileExists(t, report.Path(reportDir, 50))

	_, err = execute(t, sweepArgs(dir, "--rates", "20", "--command", command, "--fail-on-error")...)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSweepFailed))
	assert.Contains(t, err.Error(), "[20]")
}

func TestRunCmd_ConfigFileAndEnvironment(t *testing.T) {
	dir := newWorkDir(t)
	configPath := filepath.Join(t.TempDir(), "sweep.yaml")
	config := "rates: [5, 15]\nreportDir: out\ndelay: 0\nnoColor: true\nlogLevel: error\n"
	require.NoError(t, os.WriteFile(configPath, []byte(config), 0644))

	t.Setenv("RATESWEEP_COMMAND", summaryCommand)
	t.Setenv("RATESWEEP_WORKDIR", dir)

	_, err := execute(t, "run", "--config", configPath)
	require.NoError(t, err)

	assert.FileExists(t, report.Path(filepath.Join(dir, "out"), 5))
	assert.FileExists(t, report.Path(filepath.Join(dir, "out"), 15))
}

func TestRunCmd_InvalidTemplate(t *testing.T) {
	dir := newWorkDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dev-load-test-template.yml"), []byte("config:\n  phases: []\n"), 0644))

	_, err := execute(t, sweepArgs(dir, "--rates", "10", "--command", "true")...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid template")
	assert.NoDirExists(t, filepath.Join(dir, "report"), "nothing runs after a setup error")
}

func TestRunCmd_TemplateCheckDisabled(t *testing.T) {
	dir := newWorkDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dev-load-test-template.yml"), []byte("config:\n  phases: []\n"), 0644))

	out, err := execute(t, sweepArgs(dir, "--rates", "10", "--command", "true", "--validate=false")...)
	require.NoError(t, err, "the bad template fails the rate, not the sweep")
	assert.Contains(t, out, "Completed with failures")
	assert.NoFileExists(t, report.Path(filepath.Join(dir, "report"), 10))
}

func TestRunCmd_InvalidSettings(t *testing.T) {
	dir := newWorkDir(t)

	_, err := execute(t, sweepArgs(dir, "--rates", "10,-5", "--summary-log", "nested/summary.log")...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rates[1]")
	assert.Contains(t, err.Error(), "summaryLog")
}

func TestRunCmd_RejectsArguments(t *testing.T) {
	_, err := execute(t, "run", "extra")
	assert.Error(t, err)
}
