package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ardnew/lingo/lang"
	"github.com/ardnew/lingo/loader"
)

// Check parses every translation of every locale and reports syntax errors.
type Check struct {
	Locale []string `help:"Check only these locales." placeholder:"LOCALE" sep:","`
}

// Run executes the check command.
func (c *Check) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	src := sourceFrom(ctx)

	translations, err := src.load(ctx)
	if err != nil {
		return err
	}

	locales := c.Locale
	if len(locales) == 0 {
		locales = loader.Locales(translations)
	}

	w := outputFrom(ctx)
	failed := 0

	for _, locale := range locales {
		phrases, ok := translations[locale]
		if !ok {
			return lang.ErrReadInput.With(
				slog.String("locale", locale),
				slog.String("reason", "no translations"),
			)
		}

		tr, err := loader.Translations{locale: phrases}.Translators()
		if err != nil {
			return err
		}

		var problems []error
		if joined := tr[locale].Check(ctx); joined != nil {
			problems = unjoin(joined)
		}

		failed += len(problems)

		src.Logger.DebugContext(ctx, "checked locale",
			slog.String("locale", locale),
			slog.Int("errors", len(problems)))

		for _, p := range problems {
			fmt.Fprintf(w, "%s: %s\n", locale, describe(tr[locale].Source, p))
		}
	}

	if failed > 0 {
		return ErrCheckFailed.With(slog.Int("errors", failed))
	}

	fmt.Fprintf(w, "%d locale(s) ok\n", len(locales))

	return nil
}

// unjoin returns the errors joined by [errors.Join].
func unjoin(err error) []error {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}

	return []error{err}
}

// describe renders a phrase error with its key, followed by the failing
// source line when the offset is known.
func describe(source func(string) (string, bool), err error) string {
	var le *lang.Error

	key := "?"
	if errors.As(err, &le) {
		if v, ok := le.Attr("key"); ok {
			key = v.String()
		}
	}

	out := key + ": " + err.Error()

	text, ok := source(key)
	if !ok {
		return out
	}

	if offset, ok := lang.Offset(err); ok {
		out += "\n" + lang.Caret(text, offset)
	}

	return out
}
