// Package logging provides structured logging configuration for captain.
//
// It wraps log/slog. Library code (the admin client, stub file loading)
// accepts a *slog.Logger and defaults to Nop(); only the CLI builds a real
// logger, from --log-level and --log-format:
//
//	logger := logging.FromStrings("debug", "json", os.Stderr)
//	client := wiremockclient.New(url, wiremockclient.WithLogger(logger))
//
// Admin calls are logged at debug level, so the default info level keeps
// the CLI quiet.
package logging
