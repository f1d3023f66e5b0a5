package loader

import (
	"context"
	"log/slog"
	"maps"
	"path"
	"regexp"
	"slices"
	"strings"

	"github.com/spf13/afero"

	"github.com/ardnew/lingo/lang"
	"github.com/ardnew/lingo/log"
)

// Predefined errors (sentinel values).
var (
	ErrDecode     = lang.NewError("cannot decode translation file")
	ErrNoLocales  = lang.NewError("no locales available")
	ErrBadPattern = lang.NewError("file pattern is missing a named group")
)

// DefaultPattern matches translation files named by locale, with an optional
// country and variation: en.json, en-GB.yaml, fr.formal.toml,
// pt-BR.casual.yml.
var DefaultPattern = regexp.MustCompile(
	`(?i)^(?P<lang>[a-z]{2})(?:-(?P<country>[a-z]{2}))?` +
		`(?:\.(?P<variation>[a-z]+))?\.(?P<ext>json|ya?ml|toml)$`,
)

// DefaultMessagePattern matches go-i18n message files: active.en.toml,
// translate.en-GB.json.
var DefaultMessagePattern = regexp.MustCompile(
	`(?i)^(?:active|translate)\.[a-z]{2,3}(?:-[a-z0-9]+)*\.(?:json|ya?ml|toml)$`,
)

// Phrases is a tree of translations: leaves are phrase text, inner nodes are
// maps keyed by key segment.
type Phrases = map[string]any

// Translations maps a locale key to its phrases. Keys are "lang",
// "lang.variation", "lang-COUNTRY" and "lang-COUNTRY.variation".
type Translations map[string]Phrases

// Options configures [Load].
type Options struct {
	// FS is the file system read. The default is the OS file system.
	FS afero.Fs
	// Dir is the directory holding the translation files.
	Dir string
	// Pattern selects translation files by base name. It must have a "lang"
	// group and may have "country" and "variation" groups.
	Pattern *regexp.Regexp
	// MessagePattern selects go-i18n message files by base name. Nil
	// uses DefaultMessagePattern.
	MessagePattern *regexp.Regexp
	// Logger receives per-file debug output.
	Logger log.Logger
}

func (o Options) withDefaults() Options {
	if o.FS == nil {
		o.FS = afero.NewOsFs()
	}

	if o.Dir == "" {
		o.Dir = "."
	}

	if o.Pattern == nil {
		o.Pattern = DefaultPattern
	}

	if o.MessagePattern == nil {
		o.MessagePattern = DefaultMessagePattern
	}

	return o
}

// Load reads every translation file in the directory and returns the phrases
// of each locale.
//
// Country and variation files inherit the phrases of their parents, merged
// in the order: base, base variation, country, country variation. Files for
// the same locale are merged in name order.
func Load(ctx context.Context, opts Options) (Translations, error) {
	opts = opts.withDefaults()

	if slices.Index(opts.Pattern.SubexpNames(), "lang") < 0 {
		return nil, ErrBadPattern.With(
			slog.String("group", "lang"),
			slog.String("pattern", opts.Pattern.String()),
		)
	}

	entries, err := afero.ReadDir(opts.FS, opts.Dir)
	if err != nil {
		return nil, lang.ErrReadInput.Wrap(err).With(slog.String("dir", opts.Dir))
	}

	tree := make(tree)

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		file := path.Join(opts.Dir, name)

		switch {
		case opts.Pattern.MatchString(name):
			slot := slotOf(opts.Pattern, name)

			phrases, err := readFile(opts.FS, file)
			if err != nil {
				return nil, err
			}

			tree.add(slot, phrases)

			opts.Logger.DebugContext(ctx, "loaded translations",
				slog.String("file", file),
				slog.Int("count", len(phrases)))

		case opts.MessagePattern.MatchString(name):
			data, err := afero.ReadFile(opts.FS, file)
			if err != nil {
				return nil, lang.ErrReadInput.Wrap(err).With(slog.String("file", file))
			}

			locale, phrases, err := ImportMessageFile(name, data)
			if err != nil {
				return nil, err
			}

			tree.add(slotOfLocale(locale), phrases)

			opts.Logger.DebugContext(ctx, "imported messages",
				slog.String("file", file),
				slog.String("locale", locale),
				slog.Int("count", len(phrases)))
		}
	}

	return tree.build(), nil
}

// slot identifies where a file's phrases attach in the tree.
type slot struct {
	lang, country, variation string
}

func slotOf(re *regexp.Regexp, name string) slot {
	m := re.FindStringSubmatch(name)

	group := func(g string) string {
		if i := re.SubexpIndex(g); i >= 0 && i < len(m) {
			return m[i]
		}

		return ""
	}

	return slot{
		lang:      strings.ToLower(group("lang")),
		country:   strings.ToUpper(group("country")),
		variation: strings.ToLower(group("variation")),
	}
}

func slotOfLocale(locale string) slot {
	base, variation, _ := strings.Cut(locale, ".")
	lang, country, _ := strings.Cut(base, "-")

	return slot{
		lang:      strings.ToLower(lang),
		country:   strings.ToUpper(country),
		variation: strings.ToLower(variation),
	}
}

// node holds the phrases of one language or country and its variations.
type node struct {
	phrases    Phrases
	variations map[string]Phrases
}

type langNode struct {
	node

	countries map[string]*node
}

type tree map[string]*langNode

func newNode() node {
	return node{phrases: Phrases{}, variations: map[string]Phrases{}}
}

func (t tree) add(s slot, phrases Phrases) {
	ln, ok := t[s.lang]
	if !ok {
		ln = &langNode{node: newNode(), countries: map[string]*node{}}
		t[s.lang] = ln
	}

	n := &ln.node

	if s.country != "" {
		cn, ok := ln.countries[s.country]
		if !ok {
			nn := newNode()
			cn = &nn
			ln.countries[s.country] = cn
		}

		n = cn
	}

	if s.variation == "" {
		n.phrases = Merge(n.phrases, phrases)

		return
	}

	n.variations[s.variation] = Merge(n.variations[s.variation], phrases)
}

func (t tree) build() Translations {
	out := make(Translations)

	for lang, ln := range t {
		if len(ln.phrases) > 0 {
			out[lang] = Merge(ln.phrases)
		}

		for variation, phrases := range ln.variations {
			if len(phrases) > 0 {
				out[lang+"."+variation] = Merge(ln.phrases, phrases)
			}
		}

		for country, cn := range ln.countries {
			locale := lang + "-" + country

			if len(cn.phrases) > 0 {
				out[locale] = Merge(ln.phrases, cn.phrases)
			}

			for variation, phrases := range cn.variations {
				if len(phrases) == 0 {
					continue
				}

				out[locale+"."+variation] = Merge(
					ln.phrases,
					ln.variations[variation],
					cn.phrases,
					phrases,
				)
			}
		}
	}

	return out
}

// Merge deep-merges phrase trees into a new tree. Later trees take
// precedence; nested maps are merged key by key and any other value
// replaces the earlier one.
func Merge(trees ...Phrases) Phrases {
	out := make(Phrases)

	for _, t := range trees {
		for k, v := range t {
			src, isMap := v.(map[string]any)
			if !isMap {
				out[k] = v

				continue
			}

			dst, _ := out[k].(map[string]any)
			out[k] = Merge(dst, src)
		}
	}

	return out
}

// Locales returns the locale keys of t in sorted order.
func Locales(t Translations) []string {
	return slices.Sorted(maps.Keys(t))
}

// SplitLocale separates a locale key into its language tag and variation:
// "en-GB.formal" is ("en-GB", "formal").
func SplitLocale(key string) (locale, variation string) {
	locale, variation, _ = strings.Cut(key, ".")

	return locale, variation
}
