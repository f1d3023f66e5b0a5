package repl

import (
	"context"
	"testing"

	"github.com/ardnew/lingo/i18n"
	"github.com/ardnew/lingo/lang"
)

func newTestModel(t *testing.T, locals lang.Locals) model {
	t.Helper()

	tr, err := i18n.New("en", i18n.WithTranslations(map[string]any{
		"greeting": "Hello ${name}!",
		"nav": map[string]any{
			"home":  "Home",
			"about": "About ${org}",
		},
	}))
	if err != nil {
		t.Fatalf("i18n.New: %v", err)
	}

	return newModel(context.Background(), Options{
		Translator: tr,
		Locals:     locals,
	}, NewHistory(""))
}

func typed(m model, text string) model {
	return m.setInput(text, len(text), false)
}

func TestWordBounds(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		cursor    int
		inWord    func(byte) bool
		wantWord  string
		wantStart int
		wantEnd   int
	}{
		{"simple", "foo", 3, isIdentChar, "foo", 0, 3},
		{"after_brace", "${na", 4, isIdentChar, "na", 2, 4},
		{"after_paren", "${t(fo", 6, isIdentChar, "fo", 4, 6},
		{"after_comma", "${f(a, fo", 9, isIdentChar, "fo", 7, 9},
		{"empty_at_boundary", "${a + ", 6, isIdentChar, "", 6, 6},
		{"mid_word", "foobar", 3, isIdentChar, "foobar", 0, 6},
		{"at_start", "foo", 0, isIdentChar, "foo", 0, 3},
		{"cursor_past_end", "foo", 9, isIdentChar, "foo", 0, 3},
		{"dot_splits_ident", "a.bc", 4, isIdentChar, "bc", 2, 4},
		// Keys keep dots and hyphens.
		{"dotted_key", "t nav.ho", 8, isKeyChar, "nav.ho", 2, 8},
		{"hyphenated_key", "t sign-in.ti", 12, isKeyChar, "sign-in.ti", 2, 12},
		{"quoted_key", "${t('nav.h", 10, isKeyChar, "nav.h", 5, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			word, start, end := wordBounds(tt.input, tt.cursor, tt.inWord)
			if word != tt.wantWord || start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("wordBounds(%q, %d) = (%q, %d, %d), want (%q, %d, %d)",
					tt.input, tt.cursor, word, start, end,
					tt.wantWord, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestComputeMatches_Eval(t *testing.T) {
	m := newTestModel(t, lang.Locals{"name": "World", "count": 3})

	tests := []struct {
		name  string
		input string
		want  string // best match, or "" for none
	}{
		{"outside_interpolation", "nam", ""},
		{"local_name", "Hi ${nam", "name"},
		{"binding_name", "${formatCur", i18n.BindFormatCurrency},
		{"number_literal", "${12", ""},
		{"key_argument", "${t('nav.ab", "nav.about"},
		{"second_argument", "${t('greeting', 'na", ""},
		{"closed_interpolation", "${name} nam", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := typed(m, tt.input)

			matches, _, _ := m.computeMatches()

			got := ""
			if len(matches) > 0 {
				got = matches[0].Str
			}

			if got != tt.want {
				t.Errorf("computeMatches(%q) best = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestComputeMatches_KeyArgumentShowsAll(t *testing.T) {
	m := typed(newTestModel(t, nil), "${t('")

	matches, start, end := m.computeMatches()
	if len(matches) != 3 {
		t.Fatalf("got %d matches, want all 3 keys", len(matches))
	}

	if start != 5 || end != 5 {
		t.Errorf("bounds = (%d, %d), want (5, 5)", start, end)
	}
}

func TestComputeMatches_Ctrl(t *testing.T) {
	m := newTestModel(t, nil).switchToMode(modeCtrl)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"command", "loc", "locals"},
		{"key_command_argument", "t nav.ho", "nav.home"},
		{"keys_filter", "keys greet", "greeting"},
		{"other_command_argument", "ast nav", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := typed(m, tt.input)

			matches, _, _ := m.computeMatches()

			got := ""
			if len(matches) > 0 {
				got = matches[0].Str
			}

			if got != tt.want {
				t.Errorf("computeMatches(%q) best = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCycle_CompletesWord(t *testing.T) {
	m := typed(newTestModel(t, lang.Locals{"name": "World"}), "Hi ${nam}")
	m = m.setInput(m.input.Value(), len("Hi ${nam"), false)

	m = m.cycle(1)

	if got, want := m.input.Value(), "Hi ${name}"; got != want {
		t.Errorf("input = %q, want %q", got, want)
	}

	if got, want := m.input.Position(), len("Hi ${name"); got != want {
		t.Errorf("cursor = %d, want %d", got, want)
	}
}

func TestIsCallable(t *testing.T) {
	var f lang.Func = func(context.Context, ...any) (any, error) { return nil, nil }

	for _, tt := range []struct {
		v    any
		want bool
	}{
		{f, true},
		{func() string { return "" }, true},
		{"text", false},
		{nil, false},
	} {
		if got := isCallable(tt.v); got != tt.want {
			t.Errorf("isCallable(%T) = %v, want %v", tt.v, got, tt.want)
		}
	}
}

func TestPreview(t *testing.T) {
	if got := preview("Hello\n  World", 20); got != "Hello World" {
		t.Errorf("preview = %q", got)
	}

	if got := preview("abcdefghij", 8); got != "abcde..." {
		t.Errorf("preview = %q, want %q", got, "abcde...")
	}
}
