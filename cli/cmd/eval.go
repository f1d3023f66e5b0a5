package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/lingo/lang"
)

// Eval renders a phrase given on the command line.
type Eval struct {
	Phrase string `arg:"" help:"Phrase text or '-' for stdin" name:"phrase"`

	Bindings `embed:""`

	Parts bool `help:"Print the value of each part as JSON instead of the joined text."`
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	text, err := phraseText(e.Phrase)
	if err != nil {
		return err
	}

	tr, err := sourceFrom(ctx).translator(ctx)
	if err != nil {
		return err
	}

	locals, err := e.locals(ctx)
	if err != nil {
		return err
	}

	parts, err := tr.Evaluate(ctx, text, locals)
	if err != nil {
		return lang.WrapError(err).With(slog.String("command", "eval"))
	}

	return writeParts(outputFrom(ctx), parts, e.Parts)
}
