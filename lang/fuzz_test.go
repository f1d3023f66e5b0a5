package lang

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

// FuzzTokenize checks that the tokenizer never panics and that successful
// token offsets are increasing and in range.
func FuzzTokenize(f *testing.F) {
	f.Add("plain text")
	f.Add("Hi ${name}!")
	f.Add("${f(,,)}")
	f.Add("${`a ${f(`b ${c}`)}`}")
	f.Add(`${"esc\"aped" 'q\'s'}`)
	f.Add("${ {a: 1, b: [true, null, undefined]} }")
	f.Add("${-1.25}")
	f.Add("} ] ) `")
	f.Add("${")

	f.Fuzz(func(t *testing.T, input string) {
		if !utf8.ValidString(input) {
			t.Skip("invalid UTF-8")
		}

		defer func() {
			if r := recover(); r != nil {
				t.Errorf("tokenizer panicked on input %q: %v", input, r)
			}
		}()

		tokens, err := Tokenize(input)
		if err != nil {
			if !errors.Is(err, ErrInvalidSyntax) {
				t.Errorf("unexpected error kind: %v", err)
			}

			if off, ok := Offset(err); !ok || off < 0 || off > len(input) {
				t.Errorf("error offset %d out of range for %q", off, input)
			}

			return
		}

		last := -1
		for i, tok := range tokens {
			if tok.Offset < last || tok.Offset > len(input) {
				t.Errorf("token %d (%s) has offset out of order", i, tok)
			}

			last = tok.Offset
		}
	})
}

// FuzzParse checks that parsing never panics, that text without
// interpolations is a single literal, and that rendering a parsed phrase
// back to source parses again.
func FuzzParse(f *testing.F) {
	f.Add("plain text")
	f.Add("You have ${count} new ${selectPhrase(count, 'plural', {one: `message`, default: `messages`})}")
	f.Add("${[,1,,]}")
	f.Add("${{h}}")
	f.Add("${`f${bar`}")
	f.Add("You have ${ total")
	f.Add("${a}${b}")

	f.Fuzz(func(t *testing.T, input string) {
		if !utf8.ValidString(input) {
			t.Skip("invalid UTF-8")
		}

		defer func() {
			if r := recover(); r != nil {
				t.Errorf("parser panicked on input %q: %v", input, r)
			}
		}()

		ctx := context.Background()

		p, err := Parse(ctx, input)
		if err != nil {
			if !errors.Is(err, ErrInvalidSyntax) {
				t.Errorf("unexpected error kind: %v", err)
			}

			return
		}

		if !strings.Contains(input, "${") {
			if len(p) != 1 {
				t.Fatalf("expected a single literal for %q, got %v", input, p)
			}

			if lit, ok := p[0].(*Literal); !ok || lit.Value != input {
				t.Errorf("expected literal %q, got %v", input, p[0])
			}

			return
		}

		if _, err := Parse(ctx, p.String()); err != nil {
			t.Errorf("reparse of %q (from %q) failed: %v", p.String(), input, err)
		}

		if _, err := Render(ctx, p, nil); err != nil && !errors.Is(err, ErrNotCallable) {
			t.Errorf("render of %q failed: %v", input, err)
		}
	})
}
