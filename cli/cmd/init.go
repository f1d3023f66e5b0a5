package cmd

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/lingo/log"
	"github.com/ardnew/lingo/pkg"
)

// Init generates a configuration file with current flag values.
type Init struct {
	Force  bool   `help:"Overwrite existing configuration file" short:"f"`
	Format string `default:"yaml" enum:"json,yaml" help:"Configuration file format (${enum})."`
	Path   string `arg:"" help:"Output file (default: ${config}.<format>)" optional:"" type:"path"`
}

// ignoredFlags are flag name prefixes never written to the configuration.
var ignoredFlags = []string{"help", "version", "pprof"}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)
	if ktx == nil {
		panic("internal error: kong context undefined")
	}

	confPath := i.Path
	if confPath == "" {
		base, ok := ktx.Model.Vars()[ConfigIdentifier]
		if !ok {
			panic("internal error: config path undefined")
		}

		confPath = base + "." + i.Format
	}

	// Check if file exists and force not set
	if _, err := os.Stat(confPath); err == nil && !i.Force {
		return ErrWriteConfig.Wrap(ErrFileExists).With(
			slog.String("file", confPath),
			slog.Bool("exists", true),
		)
	}

	data, err := i.encode(i.values(ktx))
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(confPath), pkg.DirMode); err != nil {
		return ErrWriteConfig.Wrap(err).With(slog.String("file", confPath))
	}

	if err := os.WriteFile(confPath, data, 0o600); err != nil {
		return ErrWriteConfig.Wrap(err).With(slog.String("file", confPath))
	}

	log.DebugContext(ctx, "initialized configuration file",
		slog.String("path", confPath),
		slog.String("format", i.Format))

	return nil
}

// values returns the non-empty values of the global flags keyed by flag
// name.
func (i *Init) values(ktx *kong.Context) map[string]any {
	values := make(map[string]any)

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || slices.ContainsFunc(ignoredFlags, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		if v := flagValue(ktx.FlagValue(flag)); v != nil {
			values[flag.Name] = v
		}
	}

	return values
}

// flagValue converts a parsed flag value into a value both encoders accept,
// or nil if the flag is unset.
func flagValue(val any) any {
	switch v := val.(type) {
	case nil:
		return nil

	case bool, int, int64, uint, uint64, float64:
		return v

	case string:
		if v == "" {
			return nil
		}

		return v

	case []string:
		if len(v) == 0 {
			return nil
		}

		return v

	case interface{ MarshalText() ([]byte, error) }:
		text, err := v.MarshalText()
		if err != nil {
			return nil
		}

		return string(text)

	default:
		return nil
	}
}

func (i *Init) encode(values map[string]any) ([]byte, error) {
	if i.Format == "json" {
		data, err := json.MarshalIndent(values, "", "  ")
		if err != nil {
			return nil, ErrMarshal.Wrap(err).With(slog.String("format", i.Format))
		}

		return append(data, '\n'), nil
	}

	data, err := yaml.Marshal(values)
	if err != nil {
		return nil, ErrMarshal.Wrap(err).With(slog.String("format", i.Format))
	}

	return data, nil
}
