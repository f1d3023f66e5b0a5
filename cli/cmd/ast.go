package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/lingo/lang"
)

// AST parses a phrase and prints its syntax tree.
type AST struct {
	Phrase string `arg:"" help:"Phrase text or '-' for stdin" name:"phrase"`

	Format  string `default:"tree" enum:"tree,json,yaml,go" help:"Output format (${enum})." short:"o"`
	Indent  int    `default:"2"                             help:"Indent width for tree, JSON and YAML output." short:"i"`
	Compact bool   `help:"Print Go syntax on a single line."`
	Key     bool   `help:"Treat the argument as a translation key of the configured locale." short:"k"`
}

// Run executes the ast command.
func (a *AST) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	phrase, err := a.parse(ctx)
	if err != nil {
		return lang.WrapError(err).With(slog.String("format", a.Format))
	}

	w := outputFrom(ctx)

	switch a.Format {
	case "json":
		return phrase.FormatJSON(ctx, w, a.Indent)
	case "yaml":
		return phrase.FormatYAML(ctx, w, a.Indent)
	case "go":
		return phrase.FormatGo(ctx, w, a.Compact)
	default:
		return phrase.FormatTree(ctx, w, a.Indent)
	}
}

func (a *AST) parse(ctx context.Context) (lang.Phrase, error) {
	src := sourceFrom(ctx)

	if a.Key {
		tr, err := src.translator(ctx)
		if err != nil {
			return nil, err
		}

		return tr.Phrase(ctx, a.Phrase)
	}

	text, err := phraseText(a.Phrase)
	if err != nil {
		return nil, err
	}

	return lang.Parse(ctx, text, lang.WithLogger(src.Logger))
}
