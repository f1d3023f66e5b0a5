// Package lang implements the phrase interpolation language: a tokenizer,
// parser, tree-walking interpreter and a per-key parse cache.
//
// # Syntax
//
// A phrase is plain text with interpolations:
//
//	You have ${count} new ${selectPhrase(count, "plural", {one: "message", default: "messages"})}
//
// Inside ${...} an expression is one of:
//
//   - a string in single or double quotes (escapes \" \' \\ \r \n)
//   - a number: optional '-', digits, optional fraction; no exponent
//   - true, false, null or undefined
//   - an identifier resolved in the locals table
//   - a call name(arg, ...) of a callable binding
//   - a list [a, b, c]
//   - a record {name: value, ...}; shorthand {name} is rejected
//   - a backtick template `text ${expr} text`, nested to any depth
//
// In lists and call arguments an omitted element (a leading comma, two
// consecutive commas, or a comma before the closer) is undefined, so f(,,)
// receives three undefined arguments.
//
// # Pipeline
//
// [Tokenize] runs a finite-state lexer with an explicit mode stack (body,
// expression, template). [ParseTokens] walks the immutable token slice with a
// forward-only cursor and builds a [Phrase]: a sequence of [Expr] nodes, a
// closed set of types ([Literal], [Identifier], [Call], [Array], [Object],
// [Template]). [Interpret] evaluates a phrase against [Locals]; [Render] joins
// the results into a string. [Parse] combines tokenizing and parsing.
//
// A [Cache] maps translation keys to parsed phrases so repeated renders skip
// tokenizing and parsing.
//
// # Errors
//
// Malformed phrases fail with [ErrInvalidSyntax]. The error's "offset"
// attribute locates the problem; see [Offset] and [Caret]. Calling an unbound
// or non-function binding fails with [ErrNotCallable]. An identifier without a
// binding is not an error and evaluates to [Undefined].
package lang
