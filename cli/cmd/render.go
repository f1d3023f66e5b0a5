package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/ardnew/lingo/lang"
)

// Render renders a translation of the configured locale.
type Render struct {
	Key string `arg:"" help:"Translation key to render" name:"key"`

	Bindings `embed:""`

	Parts bool `help:"Print the value of each part as JSON instead of the joined text."`
}

// Run executes the render command.
func (r *Render) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	src := sourceFrom(ctx)

	tr, err := src.translator(ctx)
	if err != nil {
		return err
	}

	locals, err := r.locals(ctx)
	if err != nil {
		return err
	}

	parts, err := tr.TToParts(ctx, r.Key, locals)
	if err != nil {
		return lang.WrapError(err).With(
			slog.String("command", "render"),
			slog.String("locale", tr.Locale()),
		)
	}

	return writeParts(outputFrom(ctx), parts, r.Parts)
}

// writeParts prints the joined text of parts, or the parts themselves as a
// JSON array.
func writeParts(w io.Writer, parts []any, asJSON bool) error {
	if !asJSON {
		_, err := fmt.Fprintln(w, lang.Join(parts))

		return err
	}

	data, err := json.Marshal(parts)
	if err != nil {
		return ErrMarshal.Wrap(err)
	}

	_, err = fmt.Fprintln(w, string(data))

	return err
}
