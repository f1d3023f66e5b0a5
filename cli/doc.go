// Package cli contains the command line interface for lingo.
//
// # Usage
//
// Without a command, lingo starts an interactive session rendering phrases
// against the translations of the configured locale:
//
//	lingo --translations=./i18n --locale=fr
//
// The remaining commands work on a single phrase or translation:
//
//	lingo render greeting --set 'name="World"'
//	lingo eval 'Hello ${name}!' -s 'name="World"'
//	lingo tokens 'Hello ${name}!'
//	lingo ast --output=json greeting --key
//	lingo check
//	lingo locales --keys
//	lingo serve --addr=:8080
//
// # Configuration
//
// Flag values are resolved, in order of precedence, from the command line,
// the environment (LINGO_LOCALE, LINGO_TRANSLATIONS, LINGO_ADDR, including
// variables set in a .env file of the working directory) and the
// configuration files config.json and config.yaml of the user configuration
// directory. The init command writes the current flag values to such a file.
//
// YAML configuration keys may be nested; nested keys are joined with '-':
//
//	locale: fr
//	log:
//	  level: debug
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (text, json)
//   - --log-time-layout: Set timestamp format (RFC3339, Kitchen, ...)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize log output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o lingo .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default: ~/.cache/lingo/pprof)
//
// With the tag, the serve command also exposes /debug/pprof.
package cli
