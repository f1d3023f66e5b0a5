package lang

import (
	"log/slog"
	"strings"
)

// mode is a lexical state of the tokenizer.
type mode int

const (
	modeBody mode = iota
	modeExpression
	modeTemplate
)

// frame is an entry on the tokenizer's mode stack. The opener records which
// token pushed the frame so the matching closer can be verified.
type frame struct {
	mode   mode
	opener TokenKind
}

// lexer is a finite-state tokenizer with an explicit mode stack.
// A lexer holds no shared state and is used for a single input.
type lexer struct {
	input  string
	pos    int
	stack  []frame
	tokens []Token
}

// Tokenize splits a phrase into its token sequence.
//
// Tokenizing succeeds for unterminated interpolations; the parser reports
// those. It fails with [ErrInvalidSyntax] when no rule of the active mode
// matches or a closing delimiter does not match the innermost opener.
func Tokenize(input string) ([]Token, error) {
	l := &lexer{
		input:  input,
		stack:  []frame{{mode: modeBody}},
		tokens: make([]Token, 0, 8),
	}

	for !l.eof() {
		var err error

		switch l.top().mode {
		case modeBody:
			err = l.lexBody()
		case modeTemplate:
			err = l.lexTemplate()
		case modeExpression:
			err = l.lexExpression()
		}

		if err != nil {
			return nil, err
		}
	}

	return l.tokens, nil
}

func (l *lexer) eof() bool { return l.pos >= len(l.input) }

func (l *lexer) top() frame { return l.stack[len(l.stack)-1] }

func (l *lexer) push(m mode, opener TokenKind) {
	l.stack = append(l.stack, frame{mode: m, opener: opener})
}

// pop removes the innermost frame if it was opened by want.
func (l *lexer) pop(want TokenKind, at int) error {
	if len(l.stack) < 2 || l.top().opener != want {
		return l.fail(at, "unmatched closing delimiter",
			slog.String("text", l.input[at:l.pos]))
	}

	l.stack = l.stack[:len(l.stack)-1]

	return nil
}

func (l *lexer) emit(kind TokenKind, text string, at int) {
	l.tokens = append(l.tokens, Token{Kind: kind, Text: text, Offset: at})
}

func (l *lexer) fail(at int, reason string, attrs ...slog.Attr) error {
	return ErrInvalidSyntax.With(
		append([]slog.Attr{
			slog.String("reason", reason),
			slog.Int("offset", at),
		}, attrs...)...,
	)
}

func (l *lexer) hasPrefix(s string) bool {
	return strings.HasPrefix(l.input[l.pos:], s)
}

func (l *lexer) skipSpace() {
	for !l.eof() && isSpace(l.input[l.pos]) {
		l.pos++
	}
}

// lexBody scans top-level phrase text.
func (l *lexer) lexBody() error {
	if l.hasPrefix("${") {
		l.emit(TokenExprStart, "${", l.pos)
		l.pos += 2
		l.push(modeExpression, TokenExprStart)

		return nil
	}

	// A closer at token start, with any whitespace before it, is a stray
	// brace the parser drops. Closers later in a text run are ordinary text.
	if end := l.strayBraceEnd(); end > l.pos {
		l.emit(TokenBraceEnd, l.input[l.pos:end], l.pos)
		l.pos = end

		return nil
	}

	l.lexText(false)

	return nil
}

// strayBraceEnd returns the offset just past a "}" preceded only by
// whitespace from the current position, or the current position if there is
// no such brace.
func (l *lexer) strayBraceEnd() int {
	i := l.pos
	for i < len(l.input) && isSpace(l.input[i]) {
		i++
	}

	if i < len(l.input) && l.input[i] == '}' {
		return i + 1
	}

	return l.pos
}

// lexTemplate scans the inside of a backtick template.
func (l *lexer) lexTemplate() error {
	switch {
	case l.hasPrefix("${"):
		l.emit(TokenExprStart, "${", l.pos)
		l.pos += 2
		l.push(modeExpression, TokenExprStart)

	case l.input[l.pos] == '`':
		at := l.pos
		l.pos++

		if err := l.pop(TokenTemplateStart, at); err != nil {
			return err
		}

		l.emit(TokenTemplateEnd, "`", at)
		l.skipTrailingSpace()

	default:
		l.lexText(true)
	}

	return nil
}

// lexText emits a string segment running up to the next "${" and, inside a
// template, the next backtick.
func (l *lexer) lexText(template bool) {
	start := l.pos

	for !l.eof() {
		c := l.input[l.pos]
		if c == '$' && l.pos+1 < len(l.input) && l.input[l.pos+1] == '{' {
			break
		}

		if template && c == '`' {
			break
		}

		l.pos++
	}

	l.emit(TokenString, l.input[start:l.pos], start)
}

// skipTrailingSpace consumes whitespace following a token when the active
// mode treats whitespace as insignificant.
func (l *lexer) skipTrailingSpace() {
	if l.top().mode == modeExpression {
		l.skipSpace()
	}
}

// lexExpression scans one token inside an interpolation.
func (l *lexer) lexExpression() error {
	l.skipSpace()

	if l.eof() {
		return nil
	}

	at := l.pos

	switch c := l.input[l.pos]; c {
	case '"', '\'':
		text, err := l.scanQuoted(c)
		if err != nil {
			return err
		}

		l.emit(TokenString, text, at)

	case '[':
		l.pos++
		l.emit(TokenBracketStart, "[", at)
		l.push(modeExpression, TokenBracketStart)

	case ']':
		l.pos++

		if err := l.pop(TokenBracketStart, at); err != nil {
			return err
		}

		l.emit(TokenBracketEnd, "]", at)

	case '{':
		l.pos++
		l.emit(TokenBraceStart, "{", at)
		l.push(modeExpression, TokenBraceStart)

	case '}':
		l.pos++

		switch l.top().opener {
		case TokenExprStart:
			_ = l.pop(TokenExprStart, at)
			l.emit(TokenExprEnd, "}", at)

		case TokenBraceStart:
			_ = l.pop(TokenBraceStart, at)
			l.emit(TokenBraceEnd, "}", at)

		default:
			return l.fail(at, "unmatched closing delimiter",
				slog.String("text", "}"))
		}

	case ')':
		l.pos++

		if err := l.pop(TokenCall, at); err != nil {
			return err
		}

		l.emit(TokenParenEnd, ")", at)

	case '`':
		l.pos++
		l.emit(TokenTemplateStart, "`", at)
		l.push(modeTemplate, TokenTemplateStart)

	case ',':
		l.pos++
		l.emit(TokenComma, ",", at)

	default:
		if err := l.scanWord(); err != nil {
			return err
		}
	}

	l.skipTrailingSpace()

	return nil
}

// scanQuoted consumes a quoted string beginning at the current position and
// returns its decoded value.
func (l *lexer) scanQuoted(quote byte) (string, error) {
	at := l.pos
	l.pos++

	var b strings.Builder

	for !l.eof() {
		c := l.input[l.pos]

		switch c {
		case quote:
			l.pos++

			return b.String(), nil

		case '\\':
			if l.pos+1 >= len(l.input) {
				return "", l.fail(at, "unterminated string")
			}

			switch e := l.input[l.pos+1]; e {
			case quote, '\\':
				b.WriteByte(e)
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			default:
				return "", l.fail(l.pos, "invalid escape sequence",
					slog.String("text", l.input[l.pos:l.pos+2]))
			}

			l.pos += 2

		default:
			b.WriteByte(c)
			l.pos++
		}
	}

	return "", l.fail(at, "unterminated string")
}

// scanWord consumes a number, keyword, call name, property name or
// identifier.
func (l *lexer) scanWord() error {
	at := l.pos

	if n := l.matchNumber(); n > 0 {
		l.emit(TokenNumber, l.input[at:at+n], at)
		l.pos += n

		return nil
	}

	end := at
	for end < len(l.input) && isWordChar(l.input[end]) {
		end++
	}

	if end == at {
		return l.fail(at, "unexpected character",
			slog.String("text", string(l.input[at])))
	}

	word := l.input[at:end]
	l.pos = end

	switch word {
	case "true", "false":
		l.emit(TokenBoolean, word, at)

		return nil

	case "null":
		l.emit(TokenNull, word, at)

		return nil

	case "undefined":
		l.emit(TokenUndefined, word, at)

		return nil
	}

	// Look past whitespace for a call paren or property colon.
	next := end
	for next < len(l.input) && isSpace(l.input[next]) {
		next++
	}

	if next < len(l.input) {
		switch l.input[next] {
		case '(':
			l.pos = next + 1
			l.emit(TokenCall, word, at)
			l.push(modeExpression, TokenCall)

			return nil

		case ':':
			l.pos = next + 1
			l.emit(TokenProperty, word, at)

			return nil
		}
	}

	l.emit(TokenIdentifier, word, at)

	return nil
}

// matchNumber returns the length of a number literal (-?\d+(\.\d+)?) at the
// current position, or 0 if there is none.
func (l *lexer) matchNumber() int {
	s := l.input[l.pos:]
	i := 0

	if i < len(s) && s[i] == '-' {
		i++
	}

	digits := i
	for i < len(s) && isDigit(s[i]) {
		i++
	}

	if i == digits {
		return 0
	}

	if i+1 < len(s) && s[i] == '.' && isDigit(s[i+1]) {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
		}
	}

	return i
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	default:
		return false
	}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isWordChar(c byte) bool {
	return c == '_' || isDigit(c) ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
