// Package log wraps [log/slog] with a small leveled logger.
//
// A [Logger] is a value type. Settings are applied with functional options
// when the logger is made and copied by [Logger.Wrap]; a Logger is never
// reconfigured in place, so sharing one across goroutines needs no extra
// locking. The zero Logger discards everything, so libraries can hold one in
// an options struct without checking whether the caller configured it.
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatJSON),
//		log.WithTimeLayout("RFC3339Nano"))
//
//	logger.Info("listening", slog.String("addr", addr))
//
// # Levels
//
// Besides the slog levels there is [LevelTrace], used for per-token and
// per-lookup detail that is too noisy for debugging in production.
//
// # Formats
//
// [FormatText] and [FormatJSON] select the slog text and JSON handlers.
// [WithPretty] replaces either with a colorized handler meant for a
// terminal.
//
// # Package logger
//
// The package-level functions ([Info], [Error] and so on) write through the
// logger returned by [Default], which [Config] reconfigures. Command-line
// flags apply there.
package log
