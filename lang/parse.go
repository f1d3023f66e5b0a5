package lang

import (
	"context"
	"io"
	"log/slog"
	"strconv"
)

// ParseReader parses a phrase read from r.
func ParseReader(
	ctx context.Context,
	r io.Reader,
	opts ...Option,
) (Phrase, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).
			With(slog.String("source", "reader"))
	}

	return Parse(ctx, string(data), opts...)
}

// Parse tokenizes and parses a phrase.
//
// Text without interpolations yields a single [Literal]. Any structural
// violation fails the whole parse with [ErrInvalidSyntax]; no partial result
// is returned.
func Parse(ctx context.Context, text string, opts ...Option) (Phrase, error) {
	cfg := makeOptions(opts...)

	tokens, err := Tokenize(text)
	if err != nil {
		cfg.logger.TraceContext(ctx, "tokenize failed",
			slog.Any("error", err))

		return nil, err
	}

	cfg.logger.TraceContext(ctx, "tokenize complete",
		slog.Int("source_bytes", len(text)),
		slog.Int("token_count", len(tokens)))

	phrase, err := ParseTokens(tokens)
	if err != nil {
		return nil, err
	}

	cfg.logger.TraceContext(ctx, "parse complete",
		slog.Int("part_count", len(phrase)))

	return phrase, nil
}

// ParseTokens builds a phrase from a token sequence. The slice is not
// modified, so the same tokens can be parsed repeatedly.
func ParseTokens(tokens []Token) (Phrase, error) {
	p := &parser{tokens: tokens}

	return p.parsePhrase()
}

// parser holds the parser state: an immutable token slice and a cursor that
// only moves forward.
type parser struct {
	tokens []Token
	pos    int
}

func (p *parser) eof() bool { return p.pos >= len(p.tokens) }

func (p *parser) peek() (Token, bool) {
	if p.eof() {
		return Token{}, false
	}

	return p.tokens[p.pos], true
}

func (p *parser) next() (Token, bool) {
	tok, ok := p.peek()
	if ok {
		p.pos++
	}

	return tok, ok
}

// offset returns the source offset of the cursor, or of the end of the last
// token at end of input.
func (p *parser) offset() int {
	if tok, ok := p.peek(); ok {
		return tok.Offset
	}

	if n := len(p.tokens); n > 0 {
		last := p.tokens[n-1]

		return last.Offset + len(last.Text)
	}

	return 0
}

func (p *parser) unexpected(tok Token, expected ...TokenKind) *Error {
	err := ErrInvalidSyntax.With(
		slog.String("reason", "unexpected token"),
		slog.Int("offset", tok.Offset),
		slog.String("token", tok.Kind.String()),
		slog.String("text", tok.Text),
	)

	return withExpected(err, expected)
}

func (p *parser) unterminated(expected ...TokenKind) *Error {
	err := ErrInvalidSyntax.With(
		slog.String("reason", "unexpected end of input"),
		slog.Int("offset", p.offset()),
	)

	return withExpected(err, expected)
}

func withExpected(err *Error, expected []TokenKind) *Error {
	if len(expected) == 0 {
		return err
	}

	names := make([]string, len(expected))
	for i, k := range expected {
		names[i] = k.String()
	}

	return err.With(slog.Any("expected", names))
}

// expect consumes the next token if it has the given kind.
func (p *parser) expect(kind TokenKind) error {
	tok, ok := p.next()
	if !ok {
		return p.unterminated(kind)
	}

	if tok.Kind != kind {
		return p.unexpected(tok, kind)
	}

	return nil
}

// parsePhrase parses the top-level sequence of text and interpolations.
func (p *parser) parsePhrase() (Phrase, error) {
	if len(p.tokens) == 0 {
		return Phrase{&Literal{Value: ""}}, nil
	}

	phrase := make(Phrase, 0, 1)

	for {
		tok, ok := p.next()
		if !ok {
			return phrase, nil
		}

		switch tok.Kind {
		case TokenString:
			phrase = append(phrase, &Literal{Value: tok.Text})

		case TokenExprStart:
			e, err := p.parseExpression()
			if err != nil {
				return nil, err
			}

			if err := p.expect(TokenExprEnd); err != nil {
				return nil, err
			}

			phrase = append(phrase, e)

		case TokenExprEnd, TokenBraceEnd:
			// Stray closer outside any interpolation.

		default:
			return nil, p.unexpected(tok, TokenString, TokenExprStart)
		}
	}
}

// parseExpression parses a single value expression.
func (p *parser) parseExpression() (Expr, error) {
	tok, ok := p.next()
	if !ok {
		return nil, p.unterminated()
	}

	switch tok.Kind {
	case TokenIdentifier:
		return &Identifier{Name: tok.Text}, nil

	case TokenCall:
		args, err := p.parseList(TokenParenEnd)
		if err != nil {
			return nil, err
		}

		return &Call{Callee: tok.Text, Args: args}, nil

	case TokenBracketStart:
		elems, err := p.parseList(TokenBracketEnd)
		if err != nil {
			return nil, err
		}

		return &Array{Elements: elems}, nil

	case TokenBraceStart:
		return p.parseObject()

	case TokenTemplateStart:
		return p.parseTemplate()

	case TokenString, TokenNumber, TokenBoolean, TokenNull, TokenUndefined:
		return p.parseLiteral(tok)

	default:
		return nil, p.unexpected(tok)
	}
}

// parseList parses comma-separated expressions up to and including closer.
// An elided element (a leading comma, two consecutive commas, or a comma
// directly before closer) stands for [Undefined].
func (p *parser) parseList(closer TokenKind) ([]Expr, error) {
	list := make([]Expr, 0)

	if tok, ok := p.peek(); ok && tok.Kind == TokenComma {
		list = append(list, &Literal{Value: Undefined})
	}

	for {
		tok, ok := p.peek()
		if !ok {
			return nil, p.unterminated(closer)
		}

		switch tok.Kind {
		case closer:
			p.pos++

			return list, nil

		case TokenComma:
			p.pos++

			if after, ok := p.peek(); ok &&
				(after.Kind == TokenComma || after.Kind == closer) {
				list = append(list, &Literal{Value: Undefined})
			}

		default:
			if tok.Kind.isCloser() {
				return nil, p.unexpected(tok, closer)
			}

			e, err := p.parseExpression()
			if err != nil {
				return nil, err
			}

			list = append(list, e)
		}
	}
}

// parseObject parses "name: value" pairs up to the closing brace. Later
// duplicates of a key replace the earlier value.
func (p *parser) parseObject() (Expr, error) {
	obj := &Object{Properties: make([]Property, 0)}

	for {
		tok, ok := p.next()
		if !ok {
			return nil, p.unterminated(TokenBraceEnd)
		}

		switch tok.Kind {
		case TokenComma:
			continue

		case TokenBraceEnd:
			return obj, nil

		case TokenProperty:
			value, err := p.parseExpression()
			if err != nil {
				return nil, err
			}

			obj.Set(tok.Text, value)

		default:
			return nil, p.unexpected(tok, TokenProperty, TokenBraceEnd)
		}
	}
}

// parseTemplate parses the parts of a backtick template.
func (p *parser) parseTemplate() (Expr, error) {
	tmpl := &Template{Parts: make([]Expr, 0)}

	for {
		tok, ok := p.next()
		if !ok {
			return nil, p.unterminated(TokenTemplateEnd)
		}

		switch tok.Kind {
		case TokenString:
			tmpl.Parts = append(tmpl.Parts, &Literal{Value: tok.Text})

		case TokenTemplateEnd:
			return tmpl, nil

		case TokenExprStart:
			e, err := p.parseExpression()
			if err != nil {
				return nil, err
			}

			end, ok := p.next()
			if !ok {
				return nil, p.unterminated(TokenExprEnd)
			}

			if end.Kind != TokenExprEnd {
				err := p.unexpected(end, TokenExprEnd)
				if end.Kind == TokenTemplateEnd {
					err = err.With(slog.String("reason",
						"template closed inside an open interpolation"))
				}

				return nil, err
			}

			tmpl.Parts = append(tmpl.Parts, e)

		default:
			return nil, p.unexpected(tok,
				TokenString, TokenExprStart, TokenTemplateEnd)
		}
	}
}

// parseLiteral converts a scalar token to its value.
func (p *parser) parseLiteral(tok Token) (Expr, error) {
	switch tok.Kind {
	case TokenString:
		return &Literal{Value: tok.Text}, nil

	case TokenNumber:
		f, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil {
			return nil, ErrInvalidSyntax.Wrap(err).With(
				slog.String("reason", "invalid number"),
				slog.Int("offset", tok.Offset),
				slog.String("text", tok.Text),
			)
		}

		return &Literal{Value: f}, nil

	case TokenBoolean:
		return &Literal{Value: tok.Text == "true"}, nil

	case TokenNull:
		return &Literal{Value: nil}, nil

	case TokenUndefined:
		return &Literal{Value: Undefined}, nil

	default:
		return nil, p.unexpected(tok)
	}
}
