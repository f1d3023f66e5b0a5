package cli

import (
	"context"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/lingo/log"
)

// logLevel configures the logger level as a side effect of parsing, so the
// level applies to messages emitted while the remaining flags are parsed.
type logLevel struct{ log.Level }

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *logLevel) UnmarshalText(text []byte) error {
	if err := l.Level.UnmarshalText(text); err != nil {
		return err
	}

	log.Config(log.WithLevel(l.Level))

	return nil
}

// logFormat configures the logger format as a side effect of parsing.
type logFormat struct{ log.Format }

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *logFormat) UnmarshalText(text []byte) error {
	if err := f.Format.UnmarshalText(text); err != nil {
		return err
	}

	log.Config(log.WithFormat(f.Format))

	return nil
}

type logConfig struct {
	Level      logLevel  `default:"info"    help:"Set log level (${logLevels})."   placeholder:"LEVEL"`
	Format     logFormat `default:"text"    help:"Set log format (${logFormats})." placeholder:"FORMAT"`
	TimeLayout string    `default:"RFC3339" help:"Set timestamp format."`
	Caller     bool      `default:"false"   help:"Include caller information."       negatable:""`
	Pretty     bool      `default:"true"    help:"Enable colorized pretty printing." negatable:""`
}

func (*logConfig) vars() kong.Vars {
	return kong.Vars{
		"logLevels":  strings.Join(slices.Collect(log.Levels()), ","),
		"logFormats": strings.Join(slices.Collect(log.Formats()), ","),
	}
}

func (*logConfig) group() kong.Group {
	return kong.Group{Key: "log", Title: "Logging options"}
}

// start applies the parsed configuration, including the options that are
// not applied while parsing.
func (f *logConfig) start(ctx context.Context) {
	log.Config(
		log.WithLevel(f.Level.Level),
		log.WithFormat(f.Format.Format),
		log.WithTimeLayout(f.TimeLayout),
		log.WithCaller(f.Caller),
		log.WithPretty(f.Pretty),
	)

	log.DebugContext(ctx, "logger initialized",
		slog.String("level", f.Level.String()),
		slog.String("format", f.Format.String()),
		slog.String("time", f.TimeLayout),
		slog.Bool("caller", f.Caller),
		slog.Bool("pretty", f.Pretty),
	)
}

// scan applies logger flags found in args before kong parses them, so the
// logger is configured regardless of flag position. Invalid values are left
// for kong to report.
func (f *logConfig) scan(args []string) {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return
		}

		name, value, assigned := strings.Cut(arg, "=")

		negated := strings.HasPrefix(name, "--no-log-")
		if !negated && !strings.HasPrefix(name, "--log-") {
			continue
		}

		// Values of non-boolean flags may be the next argument.
		next := func() string {
			if !assigned && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				i++

				return args[i]
			}

			return value
		}

		switch name {
		case "--log-level":
			_ = f.Level.UnmarshalText([]byte(next()))

		case "--log-format":
			_ = f.Format.UnmarshalText([]byte(next()))

		case "--log-pretty", "--no-log-pretty":
			if v, ok := scanBool(value, assigned, negated); ok {
				f.Pretty = v
				log.Config(log.WithPretty(v))
			}

		case "--log-caller", "--no-log-caller":
			if v, ok := scanBool(value, assigned, negated); ok {
				f.Caller = v
				log.Config(log.WithCaller(v))
			}
		}
	}
}

// scanBool returns the value of a boolean flag, inverted for its negated
// form.
func scanBool(value string, assigned, negated bool) (bool, bool) {
	v := true

	if assigned {
		var err error
		if v, err = strconv.ParseBool(value); err != nil {
			return false, false
		}
	}

	return v != negated, true
}
