package cliconfig

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/getmockd/captain/pkg/logging"
)

// DefaultAdminURL is WireMock's default listen address.
const DefaultAdminURL = "http://localhost:8080"

// DefaultTimeout is the default per-call admin API timeout.
const DefaultTimeout = 30 * time.Second

// DefaultLogLevel and DefaultLogFormat configure the CLI logger.
const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// NewDefault creates a new CLIConfig with default values.
func NewDefault() *CLIConfig {
	return &CLIConfig{
		AdminURL:  DefaultAdminURL,
		Timeout:   DefaultTimeout,
		LogLevel:  DefaultLogLevel,
		LogFormat: DefaultLogFormat,
		Sources: map[string]string{
			KeyAdminURL:  SourceDefault,
			KeyTimeout:   SourceDefault,
			KeyLogLevel:  SourceDefault,
			KeyLogFormat: SourceDefault,
			KeyJSON:      SourceDefault,
		},
	}
}

// Validate checks the resolved configuration.
func (c *CLIConfig) Validate() error {
	var errs []error

	u, err := url.Parse(c.AdminURL)
	switch {
	case c.AdminURL == "":
		errs = append(errs, errors.New("adminUrl is required"))
	case err != nil:
		errs = append(errs, fmt.Errorf("adminUrl %q is invalid: %w", c.AdminURL, err))
	case u.Scheme != "http" && u.Scheme != "https":
		errs = append(errs, fmt.Errorf("adminUrl %q must use http or https", c.AdminURL))
	case u.Host == "":
		errs = append(errs, fmt.Errorf("adminUrl %q has no host", c.AdminURL))
	}

	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout %s must be positive", c.Timeout))
	}
	if !logging.ValidLevel(c.LogLevel) {
		errs = append(errs, fmt.Errorf("logLevel %q is not one of debug, info, warn, error", c.LogLevel))
	}
	if !logging.ValidFormat(c.LogFormat) {
		errs = append(errs, fmt.Errorf("logFormat %q is not one of text, json", c.LogFormat))
	}
	return errors.Join(errs...)
}
