package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ardnew/lingo/lang"
)

// Tokens prints the tokens of a phrase, one per line.
type Tokens struct {
	Phrase string `arg:"" help:"Phrase text or '-' for stdin" name:"phrase"`

	JSON bool `help:"Print each token as a JSON object." short:"j"`
}

type tokenJSON struct {
	Kind   string `json:"kind"`
	Text   string `json:"text"`
	Offset int    `json:"offset"`
}

// Run executes the tokens command.
func (t *Tokens) Run(ctx context.Context) (err error) {
	_, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	text, err := phraseText(t.Phrase)
	if err != nil {
		return err
	}

	tokens, err := lang.Tokenize(text)
	if err != nil {
		return err
	}

	w := outputFrom(ctx)

	for _, tok := range tokens {
		line := tok.String()

		if t.JSON {
			data, err := json.Marshal(tokenJSON{tok.Kind.String(), tok.Text, tok.Offset})
			if err != nil {
				return ErrMarshal.Wrap(err)
			}

			line = string(data)
		}

		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	return nil
}
