package cliconfig

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Environment variable names
const (
	EnvAdminURL  = "CAPTAIN_ADMIN_URL"
	EnvTimeout   = "CAPTAIN_TIMEOUT"
	EnvLogLevel  = "CAPTAIN_LOG_LEVEL"
	EnvLogFormat = "CAPTAIN_LOG_FORMAT"
	EnvJSON      = "CAPTAIN_JSON"
	EnvDefaults  = "CAPTAIN_DEFAULTS"
)

// LoadEnvConfig applies the CAPTAIN_* variables that are set.
// CAPTAIN_TIMEOUT takes a Go duration ("5s") or whole seconds ("5").
func LoadEnvConfig(cfg *CLIConfig) error {
	if cfg.Sources == nil {
		cfg.Sources = make(map[string]string)
	}

	if v := os.Getenv(EnvAdminURL); v != "" {
		cfg.AdminURL = v
		cfg.Sources[KeyAdminURL] = SourceEnv
	}

	if v := os.Getenv(EnvTimeout); v != "" {
		d, err := parseTimeout(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		cfg.Timeout = d
		cfg.Sources[KeyTimeout] = SourceEnv
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
		cfg.Sources[KeyLogLevel] = SourceEnv
	}

	if v := os.Getenv(EnvLogFormat); v != "" {
		cfg.LogFormat = v
		cfg.Sources[KeyLogFormat] = SourceEnv
	}

	if v := os.Getenv(EnvJSON); v != "" {
		cfg.JSON = v == "true" || v == "1" || v == "yes"
		cfg.Sources[KeyJSON] = SourceEnv
	}

	if v := os.Getenv(EnvDefaults); v != "" {
		cfg.DefaultsFile = v
		cfg.Sources[KeyDefaultsFile] = SourceEnv
	}
	return nil
}

func parseTimeout(v string) (time.Duration, error) {
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(v)
}
