package cmd

import (
	"context"

	"github.com/ardnew/lingo/cli/cmd/repl"
)

// Repl starts an interactive session for rendering phrases.
type Repl struct {
	History string `default:"${history}" help:"History file. Empty keeps history in memory." placeholder:"FILE" type:"path"`
	Editor  string `env:"EDITOR"         help:"Editor used to edit session bindings."`

	Bindings `embed:""`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
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

	return repl.Run(ctx, repl.Options{
		Translator: tr,
		Locals:     locals,
		History:    r.History,
		Bind:       evalBinding,
		Editor:     r.Editor,
		Logger:     src.Logger,
	})
}
