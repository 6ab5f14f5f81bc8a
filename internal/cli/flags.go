package cli

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/wesleyorama2/ratesweep/internal/settings"
)

const (
	flagConfig = "config"
	flagQuiet  = "quiet"
)

// settingFlags maps command-line flag names to settings keys.
var settingFlags = map[string]string{
	"rates":         settings.KeyRates,
	"command":       settings.KeyCommand,
	"shell":         settings.KeyShell,
	"workdir":       settings.KeyWorkDir,
	"template":      settings.KeyTemplate,
	"output":        settings.KeyOutput,
	"report-dir":    settings.KeyReportDir,
	"summary-log":   settings.KeySummaryLog,
	"delay":         settings.KeyDelay,
	"log-level":     settings.KeyLogLevel,
	"no-color":      settings.KeyNoColor,
	"fail-on-error": settings.KeyFailOnError,
	"validate":      settings.KeyValidate,
}

// addSettingFlags declares the flags that override settings. Defaults live
// in settings.SetDefaults, so the flag defaults here are zero values.
func addSettingFlags(f *pflag.FlagSet) {
	f.IntSlice("rates", nil, "arrival rates to run, in order (default 10,20,50,100,200,500)")
	f.String("command", "", `command launching the load test (default "npm run test")`)
	f.StringSlice("shell", nil, `interpreter and flag used to run the command (default "sh,-c")`)
	f.String("workdir", "", "working directory of the load test; relative paths resolve against it")
	f.String("template", "", `YAML template (default "dev-load-test-template.yml")`)
	f.String("output", "", `derived YAML configuration (default "dev-load-test.yml")`)
	f.String("report-dir", "", `report directory (default "../report")`)
	f.String("summary-log", "", `summary log name (default "summary.log")`)
	f.Duration("delay", 0, "pause after every rate (default 30s)")
	f.String("log-level", "", `log level: debug, info, warn, error (default "info")`)
	f.Bool("no-color", false, "disable colored output")
	f.Bool("fail-on-error", false, "exit 1 when any rate failed")
	f.Bool("validate", true, "check the template shape before the first run")
}

// bindSettingFlags binds every declared setting flag present in f to v.
func bindSettingFlags(v *viper.Viper, f *pflag.FlagSet) error {
	for name, key := range settingFlags {
		flag := f.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	return nil
}

// loadSettings resolves settings from defaults, the --config file, the
// environment and f, then validates them.
func loadSettings(f *pflag.FlagSet) (*settings.Settings, error) {
	v := settings.New()
	if err := bindSettingFlags(v, f); err != nil {
		return nil, err
	}

	configFile, _ := f.GetString(flagConfig)
	s, err := settings.Load(v, configFile)
	if err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}
