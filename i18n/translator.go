package i18n

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/sahilm/fuzzy"
	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"

	"github.com/ardnew/lingo/lang"
	"github.com/ardnew/lingo/log"
)

// maxSuggestions bounds the keys offered for a missing translation.
const maxSuggestions = 3

// maxTranslationDepth bounds translations evaluated inside one another
// through the t and tToParts bindings.
const maxTranslationDepth = 32

// Translator renders the translations of one locale.
//
// Translations are stored flat under dot-separated keys and parsed on first
// use. Each lookup evaluates the parsed phrase against the default bindings
// merged with the bindings given to the call. A Translator is safe for
// concurrent use.
type Translator struct {
	locale string
	tag    language.Tag
	format *formatter
	cache  *lang.Cache
	logger log.Logger

	mu           sync.RWMutex
	translations map[string]string
	context      lang.Locals
}

type options struct {
	translations map[string]any
	context      lang.Locals
	formats      Formats
	logger       log.Logger
	cache        *lang.Cache
	location     *time.Location
}

// Option configures a [Translator].
type Option func(*options)

// WithTranslations sets the initial translations. Nested maps are flattened
// into dot-separated keys.
func WithTranslations(translations map[string]any) Option {
	return func(o *options) {
		o.translations = translations
	}
}

// WithContext adds default bindings, replacing built-in bindings of the same
// name.
func WithContext(locals lang.Locals) Option {
	return func(o *options) {
		o.context = lang.Merge(o.context, locals)
	}
}

// WithFormats adds named formats, replacing built-in formats of the same kind
// and name.
func WithFormats(formats Formats) Option {
	return func(o *options) {
		o.formats = o.formats.Merge(formats)
	}
}

// WithLogger sets the logger used for lookups and evaluation.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithCache sets the parse cache. Translators of different locales may share
// one cache.
func WithCache(cache *lang.Cache) Option {
	return func(o *options) {
		o.cache = cache
	}
}

// WithLocation sets the time zone used by formatDate. The default is the
// local time zone.
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		o.location = loc
	}
}

// New returns a translator for locale, a BCP 47 language tag optionally
// followed by a dot and a variation name ("en-GB.formal"). The variation
// does not affect formatting.
func New(locale string, opts ...Option) (*Translator, error) {
	base, _, _ := strings.Cut(locale, ".")

	tag, err := language.Parse(base)
	if err != nil {
		return nil, ErrUnsupportedLocale.Wrap(err).
			With(slog.String("locale", locale))
	}

	o := options{formats: DefaultFormats()}
	for _, opt := range opts {
		opt(&o)
	}

	if o.cache == nil {
		o.cache = lang.NewCache(lang.WithCacheLogger(o.logger))
	}

	t := &Translator{
		locale:       locale,
		tag:          tag,
		format:       newFormatter(tag, o.formats, o.location),
		cache:        o.cache,
		logger:       o.logger.With(slog.String("locale", locale)),
		translations: make(map[string]string),
	}

	t.context = lang.Merge(t.bindings(), o.context)

	if err := t.Extend(o.translations); err != nil {
		return nil, err
	}

	return t, nil
}

// Locale returns the locale the translator was made for.
func (t *Translator) Locale() string { return t.locale }

// Tag returns the parsed language tag of the locale.
func (t *Translator) Tag() language.Tag { return t.tag }

// Extend adds translations, replacing existing keys. Replaced keys are
// evicted from the parse cache before Extend returns.
func (t *Translator) Extend(translations map[string]any) error {
	flat, err := Deflate(translations)
	if err != nil {
		return err
	}

	if len(flat) == 0 {
		return nil
	}

	keys := make([]string, 0, len(flat))

	t.mu.Lock()
	for k, v := range flat {
		t.translations[k] = v
		keys = append(keys, t.cacheKey(k))
	}
	t.mu.Unlock()

	t.cache.Evict(keys...)

	t.logger.Debug("translations extended", slog.Int("count", len(flat)))

	return nil
}

// ExtendContext adds default bindings, replacing bindings of the same name.
func (t *Translator) ExtendContext(locals lang.Locals) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.context = lang.Merge(t.context, locals)
}

// Context returns a copy of the default bindings.
func (t *Translator) Context() lang.Locals {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return maps.Clone(t.context)
}

// Has reports whether a translation exists for key.
func (t *Translator) Has(key string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	_, ok := t.translations[key]

	return ok
}

// Keys returns the translation keys in sorted order.
func (t *Translator) Keys() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return slices.Sorted(maps.Keys(t.translations))
}

// Source returns the unparsed text of the translation for key.
func (t *Translator) Source(key string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	text, ok := t.translations[key]

	return text, ok
}

// Phrase returns the parsed translation for key.
func (t *Translator) Phrase(ctx context.Context, key string) (lang.Phrase, error) {
	text, ok := t.Source(key)
	if !ok {
		return nil, t.missing(ctx, key)
	}

	phrase, err := t.cache.GetOrParse(ctx, t.cacheKey(key), text)
	if err != nil {
		return nil, lang.WrapError(err).With(slog.String("key", key))
	}

	return phrase, nil
}

// TToParts evaluates the translation for key and returns the value of each
// part. locals override the default bindings for this call only.
func (t *Translator) TToParts(
	ctx context.Context,
	key string,
	locals lang.Locals,
) ([]any, error) {
	ctx, err := t.enter(ctx, key)
	if err != nil {
		return nil, err
	}

	phrase, err := t.Phrase(ctx, key)
	if err != nil {
		return nil, err
	}

	t.logger.TraceContext(ctx, "translate", slog.String("key", key))

	t.mu.RLock()
	scope := lang.Merge(t.context, locals)
	t.mu.RUnlock()

	return lang.Interpret(ctx, phrase, scope, lang.WithLogger(t.logger))
}

// activeKey identifies a translation being evaluated.
type activeKey struct {
	tr  *Translator
	key string
}

// activeKeysKey is the context key of the []activeKey chain of translations
// under evaluation, outermost first.
type activeKeysKey struct{}

// enter returns ctx extended with key on the chain of active translations.
// It fails with [ErrCyclicTranslation] if key is already active on t or the
// chain is at its depth limit.
func (t *Translator) enter(ctx context.Context, key string) (context.Context, error) {
	chain, _ := ctx.Value(activeKeysKey{}).([]activeKey)
	next := activeKey{tr: t, key: key}

	if slices.Contains(chain, next) || len(chain) >= maxTranslationDepth {
		keys := make([]string, 0, len(chain)+1)
		for _, a := range chain {
			keys = append(keys, a.key)
		}

		return nil, ErrCyclicTranslation.With(
			slog.String("key", key),
			slog.String("chain", strings.Join(append(keys, key), " > ")),
			slog.Int("depth", len(chain)),
		)
	}

	return context.WithValue(ctx, activeKeysKey{}, append(slices.Clip(chain), next)), nil
}

// T evaluates the translation for key and joins the text of its parts.
func (t *Translator) T(
	ctx context.Context,
	key string,
	locals lang.Locals,
) (string, error) {
	parts, err := t.TToParts(ctx, key, locals)
	if err != nil {
		return "", err
	}

	return lang.Join(parts), nil
}

// Evaluate parses text as a phrase and evaluates it with the default
// bindings overridden by locals. The parse is not cached.
func (t *Translator) Evaluate(
	ctx context.Context,
	text string,
	locals lang.Locals,
) ([]any, error) {
	phrase, err := lang.Parse(ctx, text, lang.WithLogger(t.logger))
	if err != nil {
		return nil, err
	}

	t.mu.RLock()
	scope := lang.Merge(t.context, locals)
	t.mu.RUnlock()

	return lang.Interpret(ctx, phrase, scope, lang.WithLogger(t.logger))
}

// Check parses every translation and returns the syntax errors found, joined.
func (t *Translator) Check(ctx context.Context) error {
	var errs []error

	for _, key := range t.Keys() {
		if err := ctx.Err(); err != nil {
			return err
		}

		if _, err := t.Phrase(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Suggest returns up to n keys that fuzzy-match key, best match first.
func (t *Translator) Suggest(key string, n int) []string {
	matches := fuzzy.Find(key, t.Keys())

	out := make([]string, 0, min(n, len(matches)))
	for _, m := range matches {
		if len(out) == n {
			break
		}

		out = append(out, m.Str)
	}

	return out
}

func (t *Translator) missing(ctx context.Context, key string) error {
	cause := fmt.Errorf("locale %q has no translation with key %q", t.locale, key)

	attrs := []slog.Attr{
		slog.String("locale", t.locale),
		slog.String("key", key),
	}

	if hint := t.Suggest(key, maxSuggestions); len(hint) > 0 {
		cause = fmt.Errorf("%w (did you mean %s?)", cause, strings.Join(quoteAll(hint), ", "))
		attrs = append(attrs, slog.Any("suggestions", hint))
	}

	t.logger.DebugContext(ctx, "missing translation", attrs[1:]...)

	return ErrMissingTranslation.Wrap(cause).With(attrs...)
}

func (t *Translator) cacheKey(key string) string {
	return t.locale + "\x00" + key
}

func quoteAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = fmt.Sprintf("%q", s)
	}

	return out
}

// FormatNumber writes v with the named number format.
func (t *Translator) FormatNumber(v float64, format string) (string, error) {
	return t.format.number(v, format)
}

// FormatCurrency writes v as an amount of the ISO 4217 currency code with the
// named currency format. An empty code uses the currency of the format.
func (t *Translator) FormatCurrency(v float64, code, format string) (string, error) {
	return t.format.currency(v, code, format)
}

// FormatPercentage writes v, where 1 is 100%, with the named percentage
// format.
func (t *Translator) FormatPercentage(v float64, format string) (string, error) {
	return t.format.percentage(v, format)
}

// FormatDate writes v in the translator's time zone with the named date
// format.
func (t *Translator) FormatDate(v time.Time, format string) (string, error) {
	return t.format.date(v, format, false)
}

// FormatUTCDate writes v in UTC with the named date format.
func (t *Translator) FormatUTCDate(v time.Time, format string) (string, error) {
	return t.format.date(v, format, true)
}

// PluralRule returns the CLDR plural category of n: zero, one, two, few, many
// or other.
func (t *Translator) PluralRule(n float64) string {
	return pluralRule(plural.Cardinal, t.tag, n)
}

// OrdinalRule returns the CLDR ordinal category of n.
func (t *Translator) OrdinalRule(n float64) string {
	return pluralRule(plural.Ordinal, t.tag, n)
}

// SelectKind chooses how [Translator.SelectPhrase] derives its key.
type SelectKind string

// Selection kinds.
const (
	SelectPlural  SelectKind = "plural"
	SelectOrdinal SelectKind = "ordinal"
	SelectKey     SelectKind = "key"
)

// SelectPhrase returns the phrase stored under the key derived from value:
// its plural or ordinal category, or its text for [SelectKey]. The "default"
// phrase is used when the key has none.
func (t *Translator) SelectPhrase(
	value any,
	kind SelectKind,
	phrases map[string]string,
) (string, error) {
	var key string

	switch kind {
	case SelectPlural, SelectOrdinal:
		n, err := toFloat(value)
		if err != nil {
			return "", err
		}

		if kind == SelectPlural {
			key = t.PluralRule(n)
		} else {
			key = t.OrdinalRule(n)
		}

	default:
		key = lang.Stringify(value)
	}

	if p, ok := phrases[key]; ok {
		return p, nil
	}

	if p, ok := phrases[DefaultFormat]; ok {
		return p, nil
	}

	return "", ErrMissingPhrase.With(
		slog.String("key", key),
		slog.String("kind", string(kind)),
	)
}
