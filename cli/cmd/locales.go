package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ardnew/lingo/loader"
)

// Locales lists the locales found in the translation directory.
type Locales struct {
	Keys bool `help:"Also print the number of translation keys of each locale." short:"k"`
}

// Run executes the locales command.
func (l *Locales) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	src := sourceFrom(ctx)

	translations, err := src.load(ctx)
	if err != nil {
		return err
	}

	translators, err := translations.Translators()
	if err != nil {
		return err
	}

	w := outputFrom(ctx)

	for _, locale := range loader.Locales(translations) {
		if !l.Keys {
			fmt.Fprintln(w, locale)

			continue
		}

		fmt.Fprintf(w, "%s\t%d\n", locale, len(translators[locale].Keys()))
	}

	src.Logger.DebugContext(ctx, "listed locales",
		slog.String("dir", src.Dir),
		slog.Int("count", len(translations)))

	return nil
}
