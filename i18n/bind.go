package i18n

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/ardnew/lingo/lang"
)

// Names of the default bindings.
const (
	BindFormatNumber     = "formatNumber"
	BindFormatCurrency   = "formatCurrency"
	BindFormatPercentage = "formatPercentage"
	BindFormatDate       = "formatDate"
	BindFormatUTCDate    = "formatUTCDate"
	BindPluralRule       = "getPluralRule"
	BindOrdinalRule      = "getOrdinalRule"
	BindSelectPhrase     = "selectPhrase"
	BindT                = "t"
	BindTToParts         = "tToParts"
)

// bindings returns the default bindings of t. Each is a [lang.Func] closed
// over t, so phrases can format values and render other keys.
func (t *Translator) bindings() lang.Locals {
	return lang.Locals{
		BindFormatNumber: lang.Func(func(_ context.Context, args ...any) (any, error) {
			v, err := argFloat(BindFormatNumber, args, 0)
			if err != nil {
				return nil, err
			}

			return t.FormatNumber(v, argString(args, 1))
		}),

		BindFormatCurrency: lang.Func(func(_ context.Context, args ...any) (any, error) {
			v, err := argFloat(BindFormatCurrency, args, 0)
			if err != nil {
				return nil, err
			}

			return t.FormatCurrency(v, argString(args, 1), argString(args, 2))
		}),

		BindFormatPercentage: lang.Func(func(_ context.Context, args ...any) (any, error) {
			v, err := argFloat(BindFormatPercentage, args, 0)
			if err != nil {
				return nil, err
			}

			return t.FormatPercentage(v, argString(args, 1))
		}),

		BindFormatDate: lang.Func(func(_ context.Context, args ...any) (any, error) {
			v, err := argTime(BindFormatDate, args, 0)
			if err != nil {
				return nil, err
			}

			return t.FormatDate(v, argString(args, 1))
		}),

		BindFormatUTCDate: lang.Func(func(_ context.Context, args ...any) (any, error) {
			v, err := argTime(BindFormatUTCDate, args, 0)
			if err != nil {
				return nil, err
			}

			return t.FormatUTCDate(v, argString(args, 1))
		}),

		BindPluralRule: lang.Func(func(_ context.Context, args ...any) (any, error) {
			n, err := argFloat(BindPluralRule, args, 0)
			if err != nil {
				return nil, err
			}

			return t.PluralRule(n), nil
		}),

		BindOrdinalRule: lang.Func(func(_ context.Context, args ...any) (any, error) {
			n, err := argFloat(BindOrdinalRule, args, 0)
			if err != nil {
				return nil, err
			}

			return t.OrdinalRule(n), nil
		}),

		BindSelectPhrase: lang.Func(func(_ context.Context, args ...any) (any, error) {
			phrases, err := argPhrases(BindSelectPhrase, args, 2)
			if err != nil {
				return nil, err
			}

			return t.SelectPhrase(arg(args, 0), SelectKind(argString(args, 1)), phrases)
		}),

		BindT: lang.Func(func(ctx context.Context, args ...any) (any, error) {
			locals, err := argLocals(BindT, args, 1)
			if err != nil {
				return nil, err
			}

			return t.T(ctx, argString(args, 0), locals)
		}),

		BindTToParts: lang.Func(func(ctx context.Context, args ...any) (any, error) {
			locals, err := argLocals(BindTToParts, args, 1)
			if err != nil {
				return nil, err
			}

			return t.TToParts(ctx, argString(args, 0), locals)
		}),
	}
}

// arg returns args[i], or [lang.Undefined] when absent.
func arg(args []any, i int) any {
	if i < len(args) {
		return args[i]
	}

	return lang.Undefined
}

func missingArg(v any) bool {
	return v == nil || lang.IsUndefined(v)
}

func invalidArg(name string, i int, v any, want string) error {
	return ErrInvalidArgument.Wrap(
		fmt.Errorf("%s: argument %d is %T, want %s", name, i+1, v, want),
	).With(slog.String("function", name), slog.Int("argument", i+1))
}

// argString returns the text of args[i], or "" when absent.
func argString(args []any, i int) string {
	v := arg(args, i)
	if missingArg(v) {
		return ""
	}

	return lang.Stringify(v)
}

func argFloat(name string, args []any, i int) (float64, error) {
	v := arg(args, i)

	n, err := toFloat(v)
	if err != nil {
		return 0, invalidArg(name, i, v, "number")
	}

	return n, nil
}

// toFloat converts a number or numeric string to float64.
func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(x), 64)
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	}

	return math.NaN(), ErrInvalidArgument.With(
		slog.String("type", fmt.Sprintf("%T", v)),
	)
}

// Layouts accepted for date strings, tried in order.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.DateTime,
	time.DateOnly,
}

// argTime converts args[i] to a time. Numbers are milliseconds since the Unix
// epoch.
func argTime(name string, args []any, i int) (time.Time, error) {
	switch x := arg(args, i).(type) {
	case time.Time:
		return x, nil
	case *time.Time:
		if x != nil {
			return *x, nil
		}
	case string:
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, x); err == nil {
				return t, nil
			}
		}
	default:
		if ms, err := toFloat(x); err == nil {
			return time.UnixMilli(int64(ms)), nil
		}
	}

	return time.Time{}, invalidArg(name, i, arg(args, i), "date")
}

// argLocals converts an optional record argument to bindings.
func argLocals(name string, args []any, i int) (lang.Locals, error) {
	v := arg(args, i)
	if missingArg(v) {
		return nil, nil
	}

	switch x := v.(type) {
	case *lang.Record:
		return lang.Locals(x.Map()), nil
	case lang.Locals:
		return x, nil
	case map[string]any:
		return lang.Locals(x), nil
	}

	return nil, invalidArg(name, i, v, "object")
}

// argPhrases converts a record argument of strings to a phrase table.
func argPhrases(name string, args []any, i int) (map[string]string, error) {
	var table map[string]any

	switch x := arg(args, i).(type) {
	case *lang.Record:
		table = x.Map()
	case lang.Locals:
		table = x
	case map[string]any:
		table = x
	case map[string]string:
		return maps.Clone(x), nil
	default:
		return nil, invalidArg(name, i, x, "object")
	}

	out := make(map[string]string, len(table))

	for k, v := range table {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}

	return out, nil
}

// Deflate flattens nested translation maps into dot-separated keys.
//
// Leaves must be strings, numbers or booleans; numbers and booleans are
// stored as their text. Nil leaves are skipped.
func Deflate(tree map[string]any) (map[string]string, error) {
	out := make(map[string]string)

	if err := deflate(out, "", tree); err != nil {
		return nil, err
	}

	return out, nil
}

func deflate(out map[string]string, prefix string, tree map[string]any) error {
	for k, v := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}

		switch x := v.(type) {
		case nil:
		case string:
			out[key] = x
		case bool, float64, float32, int, int64, uint64:
			out[key] = lang.Stringify(x)
		case map[string]any:
			if err := deflate(out, key, x); err != nil {
				return err
			}
		case map[string]string:
			for sk, sv := range x {
				out[key+"."+sk] = sv
			}
		default:
			return ErrInvalidArgument.Wrap(
				fmt.Errorf("translation %q is %T, want string or table", key, v),
			).With(slog.String("key", key))
		}
	}

	return nil
}
