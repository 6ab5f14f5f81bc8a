// Package report persists and reads the per-rate run reports.
//
// A report is written once, after the load-test subprocess for a rate has
// exited successfully, to <dir>/report_<rate>.json:
//
//	{
//	  "arrivalRate": 50,
//	  "duration": 61.284,
//	  "stdout": "...",
//	  "stderr": ""
//	}
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/wesleyorama2/ratesweep/pkg/jsonpath"
)

const (
	filePrefix = "report_"
	fileExt    = ".json"
)

// Report is the record of one successful load-test run.
type Report struct {
	ArrivalRate int     `json:"arrivalRate"`
	Duration    float64 `json:"duration"`
	Stdout      string  `json:"stdout"`
	Stderr      string  `json:"stderr"`
}

// Entry is a lightweight view of a report on disk used for listings.
type Entry struct {
	Path        string
	ArrivalRate int
	Duration    float64
	StdoutBytes int
	StderrBytes int
}

// FileName returns the report file name for a rate.
func FileName(rate int) string {
	return filePrefix + strconv.Itoa(rate) + fileExt
}

// Path returns the report path for a rate inside dir.
func Path(dir string, rate int) string {
	return filepath.Join(dir, FileName(rate))
}

// EnsureDir creates the report directory if it does not exist.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	return nil
}

// Write serializes r to dir and returns the path written.
func Write(dir string, r *Report) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}

	path := Path(dir, r.ArrivalRate)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}

// Load reads a report file.
func Load(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}

	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse report %s: %w", path, err)
	}
	return &r, nil
}

// Query returns a single field of the report at path using a JSONPath
// expression such as "$.duration".
func Query(path, expr string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read report: %w", err)
	}

	value, err := jsonpath.Extract(string(data), expr)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return value, nil
}

// List reads every report in dir and returns them sorted by arrival rate.
// Files that do not parse are skipped and reported in the returned error
// list; a missing directory yields an empty listing.
func List(dir string) ([]Entry, []error, error) {
	names, err := filepath.Glob(filepath.Join(dir, filePrefix+"*"+fileExt))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list reports: %w", err)
	}

	var (
		entries []Entry
		skipped []error
	)
	for _, name := range names {
		entry, err := readEntry(name)
		if err != nil {
			skipped = append(skipped, err)
			continue
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].ArrivalRate < entries[j].ArrivalRate
	})
	return entries, skipped, nil
}

func readEntry(path string) (Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Entry{}, err
	}

	doc, err := jsonpath.Parse(data)
	if err != nil {
		return Entry{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	rate, err := doc.Int("$.arrivalRate")
	if err != nil {
		return Entry{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	duration, err := doc.Float("$.duration")
	if err != nil {
		return Entry{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	entry := Entry{
		Path:        path,
		ArrivalRate: int(rate),
		Duration:    duration,
	}
	if stdout, err := doc.String("$.stdout"); err == nil {
		entry.StdoutBytes = len(stdout)
	}
	if stderr, err := doc.String("$.stderr"); err == nil {
		entry.StderrBytes = len(stderr)
	}
	return entry, nil
}
