// Package settings loads the sweep configuration from defaults, an
// optional YAML file, RATESWEEP_* environment variables and command-line
// flags, in increasing order of precedence.
//
// Example file:
//
//	rates: [10, 20, 50, 100, 200, 500]
//	command: "npm run test"
//	workdir: ./perf-test/src/scripts
//	template: dev-load-test-template.yml
//	output: dev-load-test.yml
//	reportDir: ../report
//	delay: 30s
package settings

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Keys understood in config files, environment variables and flags.
const (
	KeyRates       = "rates"
	KeyCommand     = "command"
	KeyShell       = "shell"
	KeyWorkDir     = "workdir"
	KeyTemplate    = "template"
	KeyOutput      = "output"
	KeyReportDir   = "reportDir"
	KeySummaryLog  = "summaryLog"
	KeyDelay       = "delay"
	KeyLogLevel    = "logLevel"
	KeyNoColor     = "noColor"
	KeyFailOnError = "failOnError"
	KeyValidate    = "validate"
)

// EnvPrefix is prepended to environment variable names (RATESWEEP_DELAY).
const EnvPrefix = "RATESWEEP"

// DefaultRates is the arrival-rate schedule used when none is configured.
var DefaultRates = []int{10, 20, 50, 100, 200, 500}

// Settings is the resolved sweep configuration.
type Settings struct {
	Rates            []int
	Command          string
	Shell            []string
	WorkDir          string
	Template         string
	Output           string
	ReportDir        string
	SummaryLog       string
	Delay            time.Duration
	LogLevel         string
	NoColor          bool
	FailOnError      bool
	ValidateTemplate bool
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyRates, DefaultRates)
	v.SetDefault(KeyCommand, "npm run test")
	v.SetDefault(KeyShell, []string{"sh", "-c"})
	v.SetDefault(KeyWorkDir, ".")
	v.SetDefault(KeyTemplate, "dev-load-test-template.yml")
	v.SetDefault(KeyOutput, "dev-load-test.yml")
	v.SetDefault(KeyReportDir, filepath.Join("..", "report"))
	v.SetDefault(KeySummaryLog, "summary.log")
	v.SetDefault(KeyDelay, 30*time.Second)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyNoColor, false)
	v.SetDefault(KeyFailOnError, false)
	v.SetDefault(KeyValidate, true)
}

// New returns a viper instance with defaults and environment lookup set up.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configFile (if not empty) into v and decodes the result.
func Load(v *viper.Viper, configFile string) (*Settings, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	rates, err := parseRates(v.Get(KeyRates))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", KeyRates, err)
	}

	delay, err := parseDelay(v.Get(KeyDelay))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", KeyDelay, err)
	}

	s := &Settings{
		Rates:            rates,
		Command:          strings.TrimSpace(v.GetString(KeyCommand)),
		Shell:            parseShell(v.Get(KeyShell)),
		WorkDir:          v.GetString(KeyWorkDir),
		Template:         v.GetString(KeyTemplate),
		Output:           v.GetString(KeyOutput),
		ReportDir:        v.GetString(KeyReportDir),
		SummaryLog:       v.GetString(KeySummaryLog),
		Delay:            delay,
		LogLevel:         strings.ToLower(v.GetString(KeyLogLevel)),
		NoColor:          v.GetBool(KeyNoColor),
		FailOnError:      v.GetBool(KeyFailOnError),
		ValidateTemplate: v.GetBool(KeyValidate),
	}
	return s, nil
}

// Resolve returns p relative to the working directory unless it is
// already absolute.
func (s *Settings) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(s.WorkDir, p)
}

// TemplatePath is the template location resolved against WorkDir.
func (s *Settings) TemplatePath() string { return s.Resolve(s.Template) }

// OutputPath is the derived config location resolved against WorkDir.
func (s *Settings) OutputPath() string { return s.Resolve(s.Output) }

// ReportPath is the report directory resolved against WorkDir.
func (s *Settings) ReportPath() string { return s.Resolve(s.ReportDir) }

// parseRates accepts a YAML/flag list or a comma separated string.
func parseRates(raw interface{}) ([]int, error) {
	var items []string
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case []int:
		return append([]int(nil), v...), nil
	case []interface{}:
		for _, item := range v {
			items = append(items, fmt.Sprint(item))
		}
	case []string:
		items = v
	case string:
		v = strings.Trim(strings.TrimSpace(v), "[]")
		if v == "" {
			return nil, nil
		}
		items = strings.Split(v, ",")
	case int:
		return []int{v}, nil
	default:
		return nil, fmt.Errorf("unsupported value %v (%T)", raw, raw)
	}

	rates := make([]int, 0, len(items))
	for _, item := range items {
		n, err := strconv.Atoi(strings.TrimSpace(item))
		if err != nil {
			return nil, fmt.Errorf("invalid rate %q", item)
		}
		rates = append(rates, n)
	}
	return rates, nil
}

// parseDelay accepts a time.Duration, a duration string ("30s") or a
// bare number of seconds.
func parseDelay(raw interface{}) (time.Duration, error) {
	switch v := raw.(type) {
	case time.Duration:
		return v, nil
	case int:
		return time.Duration(v) * time.Second, nil
	case float64:
		return time.Duration(v * float64(time.Second)), nil
	case string:
		v = strings.TrimSpace(v)
		if d, err := time.ParseDuration(v); err == nil {
			return d, nil
		}
		secs, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", v)
		}
		return time.Duration(secs * float64(time.Second)), nil
	default:
		return 0, fmt.Errorf("unsupported value %v (%T)", raw, raw)
	}
}

func parseShell(raw interface{}) []string {
	switch v := raw.(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprint(item))
		}
		return out
	case string:
		return strings.Fields(v)
	default:
		return nil
	}
}
