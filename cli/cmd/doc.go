// Package cmd implements the lingo subcommands.
//
// Commands receive their environment through the [context.Context] passed to
// Run: the parsed [kong.Context] ([WithContext]), the translation [Source]
// ([WithSource]) and the output writer ([WithOutput]).
package cmd

// DefaultLocale is the locale rendered when none is configured.
const DefaultLocale = "en"

var (
	// ConfigIdentifier is the kong variable identifier containing the
	// default path of the configuration file written by init.
	ConfigIdentifier = "config"

	// HistoryIdentifier is the kong variable identifier containing the
	// path to the REPL history file.
	HistoryIdentifier = "history"
)
