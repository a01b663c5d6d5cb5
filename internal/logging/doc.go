// Package logging provides structured logging utilities for travelcal.
//
// Every component logs through log/slog. This package builds the process
// logger from the --log-format and --debug flags and keeps the attribute
// vocabulary in one place so web, CLI and MCP logs line up.
//
// # Usage Patterns
//
//	logger := logging.WithOperation(slog.Default(), "pipeline.convert")
//	logger.Info("conversion finished",
//	    logging.File(path),
//	    logging.Counts(len(it.Flights), len(it.Hotels), len(events)))
//
//	for _, d := range diags {
//	    logger.Warn("discarded booking", logging.Diagnostic(d.Kind, d.Anchor, d.Field))
//	}
//
// # Security Considerations
//
//   - OAuth tokens are never logged directly, only through SanitizeToken
//   - File logs the base name of a path, never the directory
package logging
