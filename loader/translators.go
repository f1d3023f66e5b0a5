package loader

import (
	"github.com/ardnew/lingo/i18n"
)

// Translators returns a translator for each locale of t. opts apply to every
// translator, after the locale's phrases are set.
func (t Translations) Translators(opts ...i18n.Option) (map[string]*i18n.Translator, error) {
	out := make(map[string]*i18n.Translator, len(t))

	for _, locale := range Locales(t) {
		tr, err := i18n.New(locale,
			append([]i18n.Option{i18n.WithTranslations(t[locale])}, opts...)...)
		if err != nil {
			return nil, err
		}

		out[locale] = tr
	}

	return out, nil
}
