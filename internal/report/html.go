package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/wesleyorama2/ratesweep/internal/summary"
)

// HTMLRow is one report as shown on the overview page.
type HTMLRow struct {
	Entry
	Excerpt string
	Found   bool
}

// htmlData contains all data needed to render the HTML report.
type htmlData struct {
	Title     string
	Dir       string
	Rows      []HTMLRow
	Problems  []error
	Generated time.Time
	ChartJSON template.JS
}

type chartPoint struct {
	Rate     int     `json:"rate"`
	Duration float64 `json:"duration"`
}

var overviewTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"formatSeconds": formatSeconds,
	"formatBytes":   formatBytes,
}).Parse(htmlTemplate))

// BuildRows loads each listed report and scrapes its summary block.
// Reports that disappear between listing and loading are returned as
// problems.
func BuildRows(entries []Entry) ([]HTMLRow, []error) {
	rows := make([]HTMLRow, 0, len(entries))
	var problems []error
	for _, e := range entries {
		r, err := Load(e.Path)
		if err != nil {
			problems = append(problems, err)
			continue
		}
		excerpt, found := summary.Extract(r.Stdout)
		rows = append(rows, HTMLRow{Entry: e, Excerpt: excerpt, Found: found})
	}
	return rows, problems
}

// RenderHTML renders the overview page for the reports in dir.
func RenderHTML(dir string, rows []HTMLRow, problems []error, generated time.Time) (string, error) {
	points := make([]chartPoint, len(rows))
	for i, row := range rows {
		points[i] = chartPoint{Rate: row.ArrivalRate, Duration: row.Duration}
	}
	chartJSON, err := json.Marshal(points)
	if err != nil {
		return "", fmt.Errorf("failed to encode chart data: %w", err)
	}

	data := htmlData{
		Title:     filepath.Base(filepath.Clean(dir)),
		Dir:       dir,
		Rows:      rows,
		Problems:  problems,
		Generated: generated,
		ChartJSON: template.JS(chartJSON),
	}

	var buf bytes.Buffer
	if err := overviewTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

// WriteHTML lists the reports in dir and writes the overview page to
// outputPath.
func WriteHTML(dir, outputPath string, generated time.Time) error {
	entries, problems, err := List(dir)
	if err != nil {
		return err
	}
	rows, loadProblems := BuildRows(entries)

	html, err := RenderHTML(dir, rows, append(problems, loadProblems...), generated)
	if err != nil {
		return fmt.Errorf("failed to generate HTML: %w", err)
	}

	if err := os.WriteFile(outputPath, []byte(html), 0644); err != nil {
		return fmt.Errorf("failed to write HTML file: %w", err)
	}
	return nil
}

func formatSeconds(s float64) string {
	d := time.Duration(s * float64(time.Second))
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	mins := int(d.Minutes())
	secs := int(d.Seconds()) % 60
	if secs == 0 {
		return fmt.Sprintf("%dm", mins)
	}
	return fmt.Sprintf("%dm %ds", mins, secs)
}

func formatBytes(n int) string {
	const (
		KB = 1024
		MB = KB * 1024
	)

	switch {
	case n >= MB:
		return fmt.Sprintf("%.2f MB", float64(n)/MB)
	case n >= KB:
		return fmt.Sprintf("%.2f KB", float64(n)/KB)
	default:
		return fmt.Sprintf("%d B", n)
	}
}
