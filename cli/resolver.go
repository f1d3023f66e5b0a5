package cli

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/lingo/lang"
)

// ErrConfig is returned when a configuration file cannot be decoded.
var ErrConfig = lang.NewError("cannot decode configuration")

// resolveYAML is a [kong.ConfigurationLoader] for YAML configuration files,
// such as the one written by the init command.
//
// Nested mappings are flattened by joining keys with '-', so both
//
//	log-level: debug
//
// and
//
//	log:
//	  level: debug
//
// set --log-level. Keys may use '_' in place of '-'. Command-line flags
// override configuration values.
func resolveYAML(r io.Reader) (kong.Resolver, error) {
	var values map[string]any

	if err := yaml.NewDecoder(r).Decode(&values); err != nil {
		if errors.Is(err, io.EOF) {
			return config{}, nil
		}

		return nil, ErrConfig.Wrap(err)
	}

	c := config{}
	c.flatten("", values)

	return c, nil
}

// config implements [kong.Resolver] over flattened configuration values.
type config map[string]any

func (c config) flatten(prefix string, values map[string]any) {
	for key, value := range values {
		name := strings.ReplaceAll(key, "_", "-")
		if prefix != "" {
			name = prefix + "-" + name
		}

		if m, ok := value.(map[string]any); ok {
			c.flatten(name, m)

			continue
		}

		c[name] = configValue(value)
	}
}

// configValue converts a decoded value into a form kong's mappers accept.
// Numbers are formatted as strings.
func configValue(v any) any {
	switch x := v.(type) {
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = configValue(e)
		}

		return out
	}

	return v
}

// Validate implements [kong.Resolver].
func (c config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (c config) Resolve(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
	if value, ok := c[flag.Name]; ok {
		return value, nil
	}

	return nil, nil
}
