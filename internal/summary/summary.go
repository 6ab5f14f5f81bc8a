// Package summary extracts the load-test tool's summary block from its
// output and maintains the append-only summary log of a sweep.
package summary

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// StartMarker opens the summary block printed at the end of a run.
	StartMarker = "--------------------------------\nSummary report @"

	// EndMarker begins the trailing section after the summary block.
	EndMarker = "Log file:"

	// DefaultLogName is the summary log used when no earlier sweep left one.
	DefaultLogName = "summary.log"

	// HeaderTimeLayout renders the local wall-clock time in each header.
	HeaderTimeLayout = "3:04:05 PM"
)

// Extract returns the trimmed text starting at StartMarker and ending
// before the first EndMarker that follows it. ok is false, and the excerpt
// empty, when either marker is missing.
func Extract(stdout string) (excerpt string, ok bool) {
	start := strings.Index(stdout, StartMarker)
	if start < 0 {
		return "", false
	}

	end := strings.Index(stdout[start:], EndMarker)
	if end < 0 {
		return "", false
	}

	return strings.TrimSpace(stdout[start : start+end]), true
}

// NextLogPath returns filepath.Join(dir, name) if it does not exist yet.
// Otherwise it probes name_1, name_2, ... (suffix inserted before the
// extension) and returns the first path that is free.
func NextLogPath(dir, name string) (string, error) {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)

	candidate := filepath.Join(dir, name)
	for n := 1; ; n++ {
		exists, err := fileExists(candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = filepath.Join(dir, fmt.Sprintf("%s_%d%s", base, n, ext))
	}
}

func fileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("failed to check summary log %s: %w", path, err)
	}
}

// Header is the first line of a summary block.
func Header(rate int, at time.Time) string {
	return fmt.Sprintf("Summary report for arrival rate %d @ %s\n", rate, at.Format(HeaderTimeLayout))
}

// Block is the full text appended to the log for one rate.
func Block(rate int, at time.Time, excerpt string) string {
	return Header(rate, at) + excerpt + "\n\n"
}

// Append opens path for appending, writes one block and closes it again,
// so every completed rate is on disk before the next run starts.
func Append(path string, rate int, at time.Time, excerpt string) (err error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open summary log: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close summary log: %w", cerr)
		}
	}()

	if _, err := f.WriteString(Block(rate, at, excerpt)); err != nil {
		return fmt.Errorf("failed to write summary log: %w", err)
	}
	return nil
}
