package repl

import (
	"reflect"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/lingo/lang"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{
	"help", "keys", "locals", "set", "unset", "t", "ast", "edit", "clear", "quit",
}

// keyCommands take a translation key as their first argument.
var keyCommands = map[string]bool{"t": true, "keys": true}

// isIdentChar reports whether c can appear in an identifier.
func isIdentChar(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' ||
		c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// isKeyChar reports whether c can appear in a translation key.
func isKeyChar(c byte) bool {
	return isIdentChar(c) || c == '.' || c == '-'
}

// isCallable reports whether v can be called from a phrase.
func isCallable(v any) bool {
	if _, ok := v.(lang.Func); ok {
		return true
	}

	return v != nil && reflect.TypeOf(v).Kind() == reflect.Func
}

// wordBounds returns the run of bytes satisfying inWord around cursor and
// its boundaries within input.
func wordBounds(
	input string,
	cursor int,
	inWord func(byte) bool,
) (word string, start, end int) {
	cursor = min(max(cursor, 0), len(input))

	start = cursor
	for start > 0 && inWord(input[start-1]) {
		start--
	}

	end = cursor
	for end < len(input) && inWord(input[end]) {
		end++
	}

	return input[start:end], start, end
}

// computeMatches calculates the fuzzy match results for the word at the
// cursor, ranked best first, and the word boundaries.
//
// In eval mode names in scope complete inside interpolations, and
// translation keys complete inside the quoted first argument of t and
// tToParts. In control mode the first word completes to a command and the
// argument of a key command to a translation key.
func (m model) computeMatches() (matches fuzzy.Matches, wordStart, wordEnd int) {
	input := m.input.Value()
	cursor := m.input.Position()

	var (
		word       string
		candidates []string
		showAll    bool
	)

	if m.mode == modeCtrl {
		word, wordStart, wordEnd = wordBounds(input, cursor, isKeyChar)

		switch fields := strings.Fields(input[:wordStart]); {
		case len(fields) == 0:
			candidates = ctrlCommands
		case len(fields) == 1 && keyCommands[fields[0]]:
			candidates = m.keys()
		}
	} else {
		stack, quote := scan(input, cursor)

		switch {
		case len(stack) == 0:
			return nil, cursor, cursor

		case quote != 0:
			call := detectFunctionCall(input, cursor)
			if !call.inCall || !keyFunctions[call.name] || call.argIndex != 0 {
				return nil, cursor, cursor
			}

			word, wordStart, wordEnd = wordBounds(input, cursor, isKeyChar)
			candidates = m.keys()
			showAll = true

		default:
			word, wordStart, wordEnd = wordBounds(input, cursor, isIdentChar)
			if word != "" && word[0] >= '0' && word[0] <= '9' {
				return nil, wordStart, wordEnd
			}

			candidates = m.scopeNames()
		}
	}

	if len(candidates) == 0 || word == "" && !showAll {
		return nil, wordStart, wordEnd
	}

	if word == "" {
		matches = make(fuzzy.Matches, len(candidates))
		for i, c := range candidates {
			matches[i] = fuzzy.Match{Str: c, Index: i}
		}

		return matches, wordStart, wordEnd
	}

	return fuzzy.Find(word, candidates), wordStart, wordEnd
}

// renderCandidateBar builds the single-line completion bar, ellipsized to
// fit within width. The selected candidate (when tabbing) uses the selected
// style.
func (m model) renderCandidateBar() string {
	if len(m.matches) == 0 || m.width <= 0 {
		return ""
	}

	const sep = "  "

	ellipsis := hintStyle.Render("...")
	reserve := lipgloss.Width(sep) + lipgloss.Width(ellipsis)

	scope := m.scope()

	var b strings.Builder

	for i, match := range m.matches {
		rendered := m.renderCandidate(match, scope, m.tabActive && i == m.suggIdx)

		if i > 0 {
			if lipgloss.Width(b.String())+lipgloss.Width(sep+rendered)+reserve > m.width {
				b.WriteString(sep + ellipsis)

				break
			}

			b.WriteString(sep)
		}

		b.WriteString(rendered)
	}

	return b.String()
}

// renderCandidate renders one candidate with its matched characters
// highlighted. Callable names get a "()" suffix that is not inserted on
// completion.
func (m model) renderCandidate(
	match fuzzy.Match,
	scope lang.Locals,
	selected bool,
) string {
	base, highlight := suggestionStyle, matchStyle
	if selected {
		base, highlight = selectedStyle, selectedMatchStyle
	}

	matched := make(map[int]bool, len(match.MatchedIndexes))
	for _, idx := range match.MatchedIndexes {
		matched[idx] = true
	}

	var b strings.Builder

	for i, r := range match.Str {
		if matched[i] {
			b.WriteString(highlight.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}

	if m.mode == modeEval && isCallable(scope[match.Str]) {
		b.WriteString(base.Render("()"))
	}

	return b.String()
}

// preview shortens phrase text to a single line of at most n bytes.
func preview(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	if len(text) <= n {
		return text
	}

	return text[:n-3] + "..."
}
