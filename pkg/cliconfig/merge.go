package cliconfig

import "maps"

// MergeConfig merges source config into target, updating sources tracking.
// Only non-zero values from source are applied. Headers are merged key by key.
func MergeConfig(target, source *CLIConfig, sourceType string) {
	if source == nil {
		return
	}
	if target.Sources == nil {
		target.Sources = make(map[string]string)
	}

	if source.AdminURL != "" {
		target.AdminURL = source.AdminURL
		target.Sources[KeyAdminURL] = sourceType
	}
	if source.Timeout != 0 {
		target.Timeout = source.Timeout
		target.Sources[KeyTimeout] = sourceType
	}
	if len(source.Headers) > 0 {
		if target.Headers == nil {
			target.Headers = make(map[string]string, len(source.Headers))
		}
		maps.Copy(target.Headers, source.Headers)
		target.Sources[KeyHeaders] = sourceType
	}
	if source.DefaultsFile != "" {
		target.DefaultsFile = source.DefaultsFile
		target.Sources[KeyDefaultsFile] = sourceType
	}
	if source.LogLevel != "" {
		target.LogLevel = source.LogLevel
		target.Sources[KeyLogLevel] = sourceType
	}
	if source.LogFormat != "" {
		target.LogFormat = source.LogFormat
		target.Sources[KeyLogFormat] = sourceType
	}
	if boolIsSet(source, KeyJSON) {
		target.JSON = source.JSON
		target.Sources[KeyJSON] = sourceType
	}
}

// boolIsSet reports whether a boolean field was explicitly set in source.
// Without SetFields (programmatic configs) only true counts as set.
func boolIsSet(cfg *CLIConfig, key string) bool {
	if cfg.SetFields != nil {
		return cfg.SetFields[key]
	}
	switch key {
	case KeyJSON:
		return cfg.JSON
	}
	return false
}
