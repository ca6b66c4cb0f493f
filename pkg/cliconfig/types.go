// Package cliconfig provides configuration types and loading for the captain CLI.
//
// Values are layered with the following precedence (highest first):
//
//  1. Command-line flags
//  2. Environment variables (CAPTAIN_* prefix)
//  3. Local config file (.captainrc.yaml in the current directory)
//  4. Global config file ($XDG_CONFIG_HOME/captain/config.yaml)
//  5. Default values
//
// The source of every value is tracked for `captain config`.
package cliconfig

import "time"

// CLIConfig represents the complete configuration for the captain CLI.
type CLIConfig struct {
	// AdminURL is the WireMock base URL; /__admin is appended by the client.
	AdminURL string            `yaml:"adminUrl" json:"adminUrl"`
	Timeout  time.Duration     `yaml:"timeout" json:"timeout"`
	Headers  map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`

	// DefaultsFile is a stub file whose defaults become the client's default features.
	DefaultsFile string `yaml:"defaults,omitempty" json:"defaults,omitempty"`

	LogLevel  string `yaml:"logLevel" json:"logLevel"`
	LogFormat string `yaml:"logFormat" json:"logFormat"`
	JSON      bool   `yaml:"json" json:"json"`

	// Sources tracks where each value came from.
	Sources map[string]string `yaml:"-" json:"-"`

	// SetFields records the keys explicitly present in the source, so an
	// explicit false can override a true.
	SetFields map[string]bool `yaml:"-" json:"-"`
}

// ConfigSource identifies where a config value originated.
const (
	SourceDefault = "default"
	SourceEnv     = "env"
	SourceGlobal  = "global"
	SourceLocal   = "local"
	SourceFlag    = "flag"
)

// Keys, as used in config files and Sources.
const (
	KeyAdminURL     = "adminUrl"
	KeyTimeout      = "timeout"
	KeyHeaders      = "headers"
	KeyDefaultsFile = "defaults"
	KeyLogLevel     = "logLevel"
	KeyLogFormat    = "logFormat"
	KeyJSON         = "json"
)
