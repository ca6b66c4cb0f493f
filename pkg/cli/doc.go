// Package cli implements the captain command tree.
//
// Commands:
//
//	register                 Register a stub mapping from flags (or a form)
//	apply FILE|GLOB...       Register every stub from stub files
//	mappings list|get|delete|clear|reset|find|remove
//	requests list|unmatched|clear
//	scenarios list|reset
//	clear [--keep-defaults]  Remove mappings and empty the journal
//	config                   Show the effective configuration
//	version                  Show version information
//
// Every command honours the persistent flags: --admin-url, --timeout,
// --json, --log-level, --log-format, --admin-header Name=Value (repeatable)
// and --defaults FILE, whose stub-file defaults become client defaults.
// With --json only the JSON result is written to stdout; progress and
// log output go to stderr.
package cli
