package loader

import (
	"log/slog"
	"regexp"

	"github.com/nicksnyder/go-i18n/v2/i18n"
)

// messageDecoders adapts [Decoders] to the go-i18n parser.
var messageDecoders = func() map[string]i18n.UnmarshalFunc {
	out := make(map[string]i18n.UnmarshalFunc, len(Decoders))
	for ext, fn := range Decoders {
		out[ext] = i18n.UnmarshalFunc(fn)
	}

	return out
}()

// ImportMessageFile converts a go-i18n message file into phrases. name must
// follow the go-i18n convention of ending in ".<locale>.<ext>".
//
// Each message is stored under its ID with the text of its "other" form, and
// every plural form that is set is also stored under "ID.<form>". Template
// actions of the form {{.Name}} become interpolations of Name.
func ImportMessageFile(name string, data []byte) (string, Phrases, error) {
	file, err := i18n.ParseMessageFileBytes(data, name, messageDecoders)
	if err != nil {
		return "", nil, ErrDecode.Wrap(err).With(slog.String("file", name))
	}

	phrases := make(Phrases, len(file.Messages))

	for _, m := range file.Messages {
		conv := templateConverter(m.LeftDelim, m.RightDelim)

		forms := []struct{ name, text string }{
			{"zero", m.Zero},
			{"one", m.One},
			{"two", m.Two},
			{"few", m.Few},
			{"many", m.Many},
		}

		plural := false

		for _, f := range forms {
			if f.text != "" {
				phrases[m.ID+"."+f.name] = conv(f.text)
				plural = true
			}
		}

		if plural {
			phrases[m.ID+".other"] = conv(m.Other)
		}

		phrases[m.ID] = conv(m.Other)
	}

	return file.Tag.String(), phrases, nil
}

// templateConverter returns a function rewriting {{.Name}} template actions,
// with the given delimiters, as ${Name}.
func templateConverter(left, right string) func(string) string {
	if left == "" {
		left = "{{"
	}

	if right == "" {
		right = "}}"
	}

	re := regexp.MustCompile(regexp.QuoteMeta(left) +
		`\s*\.([A-Za-z_][A-Za-z0-9_]*)\s*` + regexp.QuoteMeta(right))

	return func(s string) string {
		return re.ReplaceAllString(s, "$${$1}")
	}
}
