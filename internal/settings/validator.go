package settings

import (
	"fmt"
	"path/filepath"
	"strings"
)

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// ValidationError represents a settings validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid setting '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("invalid settings: %s", e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors struct {
	Errors []*ValidationError
}

func (e *ValidationErrors) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d invalid settings:\n", len(e.Errors)))
	for i, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// Add adds an error to the collection.
func (e *ValidationErrors) Add(field, message string) {
	e.Errors = append(e.Errors, &ValidationError{Field: field, Message: message})
}

// HasErrors returns true if there are any errors.
func (e *ValidationErrors) HasErrors() bool {
	return len(e.Errors) > 0
}

// Validate checks the settings and returns all problems at once.
func (s *Settings) Validate() error {
	errs := &ValidationErrors{}

	if len(s.Rates) == 0 {
		errs.Add(KeyRates, "at least one arrival rate is required")
	}
	for i, rate := range s.Rates {
		if rate <= 0 {
			errs.Add(fmt.Sprintf("%s[%d]", KeyRates, i), fmt.Sprintf("must be positive, got %d", rate))
		}
	}

	if s.Command == "" {
		errs.Add(KeyCommand, "is required")
	}
	if len(s.Shell) == 0 {
		errs.Add(KeyShell, "is required")
	}

	for field, value := range map[string]string{
		KeyTemplate:  s.Template,
		KeyOutput:    s.Output,
		KeyReportDir: s.ReportDir,
	} {
		if strings.TrimSpace(value) == "" {
			errs.Add(field, "is required")
		}
	}

	if s.Template != "" && s.TemplatePath() == s.OutputPath() {
		errs.Add(KeyOutput, "must differ from the template")
	}

	switch {
	case s.SummaryLog == "":
		errs.Add(KeySummaryLog, "is required")
	case filepath.Base(s.SummaryLog) != s.SummaryLog:
		errs.Add(KeySummaryLog, "must be a file name inside the report directory")
	}

	if s.Delay < 0 {
		errs.Add(KeyDelay, "must not be negative")
	}

	if !validLogLevels[s.LogLevel] {
		errs.Add(KeyLogLevel, fmt.Sprintf("unknown level %q (debug, info, warn, error)", s.LogLevel))
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}
