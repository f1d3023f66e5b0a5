package cmd

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/spf13/afero"

	"github.com/ardnew/lingo/i18n"
	"github.com/ardnew/lingo/lang"
	"github.com/ardnew/lingo/loader"
	"github.com/ardnew/lingo/log"
)

// contextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

type (
	sourceKey struct{}
	outputKey struct{}
)

// Source locates the translations the commands operate on.
type Source struct {
	// FS is the file system holding Dir. Nil means the OS file system.
	FS afero.Fs
	// Dir is the translation directory.
	Dir string
	// Locale is the locale rendered by default.
	Locale string
	// Logger receives loader and translator output.
	Logger log.Logger
}

// WithSource returns a new context.Context carrying src.
func WithSource(ctx context.Context, src Source) context.Context {
	return context.WithValue(ctx, sourceKey{}, src)
}

// sourceFrom returns the Source stored by WithSource, or the zero Source
// with the default locale.
func sourceFrom(ctx context.Context) Source {
	src, ok := ctx.Value(sourceKey{}).(Source)
	if !ok {
		return Source{Locale: DefaultLocale}
	}

	if src.Locale == "" {
		src.Locale = DefaultLocale
	}

	return src
}

// WithOutput returns a new context.Context whose commands write to w.
func WithOutput(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, outputKey{}, w)
}

// outputFrom returns the writer stored by WithOutput, or [os.Stdout].
func outputFrom(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(outputKey{}).(io.Writer); ok && w != nil {
		return w
	}

	return os.Stdout
}

func (s Source) options() loader.Options {
	return loader.Options{FS: s.FS, Dir: s.Dir, Logger: s.Logger}
}

// load reads every translation file of the source. A missing directory
// yields no translations.
func (s Source) load(ctx context.Context) (loader.Translations, error) {
	translations, err := loader.Load(ctx, s.options())
	if errors.Is(err, fs.ErrNotExist) {
		s.Logger.DebugContext(ctx, "no translation directory",
			slog.String("dir", s.Dir))

		return loader.Translations{}, nil
	}

	return translations, err
}

// translator returns the translator for the source locale. When the source
// has no translations for that exact locale, the closest available one is
// used; when none is close, the translator starts empty.
func (s Source) translator(
	ctx context.Context,
	opts ...i18n.Option,
) (*i18n.Translator, error) {
	translations, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	locale := s.Locale

	if _, ok := translations[locale]; !ok && len(translations) > 0 {
		match, ok, err := loader.Match(loader.Locales(translations), locale)
		if err == nil && ok {
			s.Logger.DebugContext(ctx, "matched locale",
				slog.String("requested", locale),
				slog.String("matched", match))

			locale = match
		}
	}

	opts = append([]i18n.Option{
		i18n.WithLogger(s.Logger),
		i18n.WithTranslations(translations[locale]),
	}, opts...)

	return i18n.New(locale, opts...)
}

// phraseText returns text, or the contents of standard input when text is
// the stdin marker.
func phraseText(text string) (string, error) {
	if text != stdinSource {
		return text, nil
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", lang.ErrReadInput.Wrap(err).With(slog.String("source", "stdin"))
	}

	return string(data), nil
}

// stdinSource is the special argument indicating the phrase is read from
// stdin.
const stdinSource = "-"
