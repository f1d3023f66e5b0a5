package lang

//go:generate go tool stringer --linecomment --type TokenKind --output tokenkind_string.go

import (
	"strconv"
)

// TokenKind identifies the lexical class of a [Token].
type TokenKind int

const (
	TokenString        TokenKind = iota // string
	TokenExprStart                      // exprStart
	TokenExprEnd                        // exprEnd
	TokenTemplateStart                  // templateStart
	TokenTemplateEnd                    // templateEnd
	TokenBracketStart                   // bracketStart
	TokenBracketEnd                     // bracketEnd
	TokenBraceStart                     // braceStart
	TokenBraceEnd                       // braceEnd
	TokenParenEnd                       // parenEnd
	TokenComma                          // comma
	TokenBoolean                        // boolean
	TokenNull                           // null
	TokenUndefined                      // undefined
	TokenNumber                         // number
	TokenCall                           // call
	TokenProperty                       // property
	TokenIdentifier                     // identifier
)

// isCloser reports whether the kind terminates a list, object or
// interpolation.
func (k TokenKind) isCloser() bool {
	switch k {
	case TokenExprEnd, TokenBraceEnd, TokenBracketEnd, TokenParenEnd,
		TokenTemplateEnd:
		return true
	default:
		return false
	}
}

// Token is a single lexeme of a phrase.
//
// Text holds the token's value with insignificant whitespace removed. For
// quoted strings the quotes are stripped and escapes decoded; for calls and
// property names the trailing '(' or ':' is dropped.
// Offset is the byte offset of the token in the source text.
type Token struct {
	Kind   TokenKind
	Text   string
	Offset int
}

// String returns a compact human-readable form of the token.
func (t Token) String() string {
	return t.Kind.String() + "(" + strconv.Quote(t.Text) + ")@" +
		strconv.Itoa(t.Offset)
}
