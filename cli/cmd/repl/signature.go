package repl

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/lingo/i18n"
)

// bindingParams lists the parameters of the translator's default bindings.
// Optional parameters end with '?'.
var bindingParams = map[string][]string{
	i18n.BindFormatNumber:     {"value", "format?"},
	i18n.BindFormatCurrency:   {"value", "currency?", "format?"},
	i18n.BindFormatPercentage: {"value", "format?"},
	i18n.BindFormatDate:       {"value", "format?"},
	i18n.BindFormatUTCDate:    {"value", "format?"},
	i18n.BindPluralRule:       {"n"},
	i18n.BindOrdinalRule:      {"n"},
	i18n.BindSelectPhrase:     {"value", "type", "phrases"},
	i18n.BindT:                {"key", "locals?"},
	i18n.BindTToParts:         {"key", "locals?"},
}

// keyFunctions take a translation key as their first argument.
var keyFunctions = map[string]bool{
	i18n.BindT:        true,
	i18n.BindTToParts: true,
}

// Signature hint styles.
var (
	signatureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	signatureNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("6")).
				Bold(true)
	currentParamStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)
)

// functionCall is a call whose argument list contains the cursor.
type functionCall struct {
	name     string // callee identifier
	argIndex int    // 0-based index of the argument under the cursor
	inCall   bool   // whether the cursor is inside an argument list
}

// scope is an unclosed bracket before the cursor and the number of commas
// seen directly inside it.
type scope struct {
	pos  int
	args int
}

// scan returns the brackets left open before cursor and the quote character
// of the string the cursor is in, or 0. Outside interpolations everything but
// "${" is text; inside them parentheses, brackets and braces nest and quoted
// strings are skipped.
func scan(input string, cursor int) (stack []scope, quote byte) {
	cursor = min(max(cursor, 0), len(input))

	for i := 0; i < cursor; i++ {
		c := input[i]

		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}

			continue
		}

		if len(stack) == 0 {
			if c == '$' && i+1 < len(input) && input[i+1] == '{' {
				stack = append(stack, scope{pos: i + 1})
				i++
			}

			continue
		}

		switch c {
		case '\'', '"', '`':
			quote = c
		case '(', '[', '{':
			stack = append(stack, scope{pos: i})
		case ')', ']', '}':
			stack = stack[:len(stack)-1]
		case ',':
			stack[len(stack)-1].args++
		}
	}

	return stack, quote
}

// detectFunctionCall finds the innermost unclosed call before cursor and
// the argument the cursor is in.
func detectFunctionCall(input string, cursor int) functionCall {
	stack, _ := scan(input, cursor)
	if len(stack) == 0 {
		return functionCall{}
	}

	top := stack[len(stack)-1]
	if input[top.pos] != '(' {
		return functionCall{}
	}

	start := top.pos
	for start > 0 && isIdentChar(input[start-1]) {
		start--
	}

	if start == top.pos {
		return functionCall{}
	}

	return functionCall{
		name:     input[start:top.pos],
		argIndex: top.args,
		inCall:   true,
	}
}

// signature returns the parameter list of a callable name in scope. Names
// bound to a function without a known parameter list get a single variadic
// parameter.
func signature(name string, scope map[string]any) ([]string, bool) {
	if params, ok := bindingParams[name]; ok {
		return params, true
	}

	v, ok := scope[name]
	if !ok || !isCallable(v) {
		return nil, false
	}

	return []string{"...args"}, true
}

// renderSignatureHint renders name(params) with the parameter at argIndex
// highlighted. A variadic parameter stays highlighted for every later
// argument.
func renderSignatureHint(name string, params []string, argIndex int) string {
	var b strings.Builder

	b.WriteString(signatureNameStyle.Render(name))
	b.WriteString(signatureStyle.Render("("))

	for i, param := range params {
		if i > 0 {
			b.WriteString(signatureStyle.Render(", "))
		}

		variadic := strings.HasPrefix(param, "...")

		if argIndex == i || variadic && argIndex >= i {
			b.WriteString(currentParamStyle.Render(param))
		} else {
			b.WriteString(signatureStyle.Render(param))
		}
	}

	b.WriteString(signatureStyle.Render(")"))

	return b.String()
}
