package loader

import (
	"log/slog"
	"slices"

	"golang.org/x/text/language"
)

// Match returns the available locale that best fits the preferred locales,
// in order of preference. Variation keys such as "en.formal" are not
// candidates. If nothing matches, the first candidate is returned with
// ok false.
func Match(available []string, preferred ...string) (string, bool, error) {
	candidates, tags := parseTags(available)
	if len(candidates) == 0 {
		return "", false, ErrNoLocales.With(slog.Any("available", available))
	}

	want := make([]language.Tag, 0, len(preferred))

	for _, p := range preferred {
		if t, err := language.Parse(p); err == nil {
			want = append(want, t)
		}
	}

	return match(candidates, tags, want)
}

// MatchAcceptLanguage is [Match] for the value of an Accept-Language header.
func MatchAcceptLanguage(available []string, header string) (string, bool, error) {
	candidates, tags := parseTags(available)
	if len(candidates) == 0 {
		return "", false, ErrNoLocales.With(slog.Any("available", available))
	}

	want, _, _ := language.ParseAcceptLanguage(header)

	return match(candidates, tags, want)
}

func parseTags(available []string) ([]string, []language.Tag) {
	candidates := make([]string, 0, len(available))
	tags := make([]language.Tag, 0, len(available))

	for _, key := range slices.Sorted(slices.Values(available)) {
		locale, variation := SplitLocale(key)
		if variation != "" {
			continue
		}

		t, err := language.Parse(locale)
		if err != nil {
			continue
		}

		candidates = append(candidates, key)
		tags = append(tags, t)
	}

	return candidates, tags
}

func match(candidates []string, tags []language.Tag, want []language.Tag) (string, bool, error) {
	if len(want) == 0 {
		return candidates[0], false, nil
	}

	_, index, conf := language.NewMatcher(tags).Match(want...)
	if conf == language.No {
		return candidates[0], false, nil
	}

	return candidates[index], true, nil
}
