package server

import (
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/text/language"

	"github.com/ardnew/lingo/i18n"
	"github.com/ardnew/lingo/lang"
	"github.com/ardnew/lingo/loader"
	"github.com/ardnew/lingo/log"
)

// contextKey is the gin context key holding the request translator.
const contextKey = "lingo.translator"

// Options configures a [Handler].
type Options struct {
	// Translations holds the phrases of every locale.
	Translations loader.Translations
	// DefaultLocale is used when the request prefers no available locale. It
	// must be one of the available locales.
	DefaultLocale string
	// PreferredVariation selects "<locale>.<variation>" translations when
	// they exist.
	PreferredVariation string
	// Variation overrides PreferredVariation per request when it returns a
	// non-empty name.
	Variation func(c *gin.Context) string
	// Fallback picks a locale when the Accept-Language header matches none.
	// It receives the available and the preferred locales and must return an
	// available locale or "".
	Fallback func(c *gin.Context, available, preferred []string) string
	// Translator holds options applied to every translator made.
	Translator []i18n.Option
	// Registry receives request and parse cache metrics and is served at
	// /metrics. Nil disables metrics.
	Registry *prometheus.Registry
	// Logger receives request logs.
	Logger log.Logger
}

// Handler negotiates the locale of each request and serves translations.
type Handler struct {
	opts     Options
	cache    *lang.Cache
	requests *prometheus.CounterVec

	mu           sync.RWMutex
	translations loader.Translations
	available    []string
	translators  map[string]*i18n.Translator
}

// New returns a handler for opts.Translations.
func New(opts Options) (*Handler, error) {
	h := &Handler{opts: opts}

	cacheOpts := []lang.CacheOption{lang.WithCacheLogger(opts.Logger)}

	if opts.Registry != nil {
		cacheOpts = append(cacheOpts, lang.WithRegisterer(opts.Registry))

		h.requests = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lingo",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Requests served, by route and status code.",
		}, []string{"route", "code"})

		opts.Registry.MustRegister(h.requests)
	}

	h.cache = lang.NewCache(cacheOpts...)

	if err := h.Reload(opts.Translations); err != nil {
		return nil, err
	}

	return h, nil
}

// Reload replaces the translations. Translators made for the previous
// translations are discarded.
func (h *Handler) Reload(translations loader.Translations) error {
	available := make([]string, 0, len(translations))

	for _, key := range loader.Locales(translations) {
		if _, variation := loader.SplitLocale(key); variation == "" {
			available = append(available, key)
		}
	}

	if !slices.Contains(available, h.opts.DefaultLocale) {
		return i18n.ErrUnsupportedLocale.With(
			slog.String("locale", h.opts.DefaultLocale),
			slog.String("reason", "default locale has no translations"),
			slog.Any("available", available),
		)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.translations = translations
	h.available = available
	h.translators = make(map[string]*i18n.Translator)
	h.cache.Clear()

	return nil
}

// Available returns the locales that can be negotiated, without variations.
func (h *Handler) Available() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return slices.Clone(h.available)
}

// Locale returns the translation key chosen for the request: the negotiated
// locale, followed by the preferred variation when that exists.
func (h *Handler) Locale(c *gin.Context) (string, error) {
	available := h.Available()

	locale, ok, err := loader.MatchAcceptLanguage(available,
		c.GetHeader("Accept-Language"))
	if err != nil {
		return "", err
	}

	if !ok {
		locale = h.opts.DefaultLocale

		if h.opts.Fallback != nil {
			preferred := acceptedLocales(c.GetHeader("Accept-Language"))

			if custom := h.opts.Fallback(c, available, preferred); custom != "" {
				if !slices.Contains(available, custom) {
					return "", i18n.ErrUnsupportedLocale.With(
						slog.String("locale", custom),
						slog.String("reason", "fallback locale has no translations"),
					)
				}

				locale = custom
			}
		}
	}

	variation := h.opts.PreferredVariation
	if h.opts.Variation != nil {
		if v := h.opts.Variation(c); v != "" {
			variation = v
		}
	}

	if variation != "" {
		h.mu.RLock()
		_, ok := h.translations[locale+"."+variation]
		h.mu.RUnlock()

		if ok {
			return locale + "." + variation, nil
		}
	}

	return locale, nil
}

// Translator returns the translator for the request, making it on first use.
func (h *Handler) Translator(c *gin.Context) (*i18n.Translator, error) {
	key, err := h.Locale(c)
	if err != nil {
		return nil, err
	}

	h.mu.RLock()
	tr, ok := h.translators[key]
	h.mu.RUnlock()

	if ok {
		return tr, nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if tr, ok := h.translators[key]; ok {
		return tr, nil
	}

	opts := append([]i18n.Option{
		i18n.WithCache(h.cache),
		i18n.WithLogger(h.opts.Logger),
		i18n.WithTranslations(h.translations[key]),
	}, h.opts.Translator...)

	tr, err = i18n.New(key, opts...)
	if err != nil {
		return nil, err
	}

	h.translators[key] = tr

	return tr, nil
}

// Middleware stores the request translator in the gin context. Requests for
// which no translator can be made fail with 500.
func (h *Handler) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tr, err := h.Translator(c)
		if err != nil {
			h.opts.Logger.ErrorContext(c.Request.Context(), "locale negotiation failed",
				slog.Any("error", err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody(err))

			return
		}

		c.Set(contextKey, tr)
		c.Header("Content-Language", tr.Locale())
		c.Next()
	}
}

// NewEngine returns a gin engine serving the routes of h behind panic
// recovery.
func NewEngine(h *Handler) *gin.Engine {
	e := gin.New()
	e.Use(gin.Recovery())
	h.Register(e)

	return e
}

// FromContext returns the translator stored by [Handler.Middleware].
func FromContext(c *gin.Context) (*i18n.Translator, bool) {
	v, ok := c.Get(contextKey)
	if !ok {
		return nil, false
	}

	tr, ok := v.(*i18n.Translator)

	return tr, ok
}

// Register adds the translation routes to r:
//
//	GET /locales          available locales and the default
//	GET /translate/:key   render key; query parameters become bindings
//	GET /metrics          Prometheus metrics, when a registry is set
func (h *Handler) Register(r gin.IRouter) {
	if h.opts.Registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.opts.Registry,
			promhttp.HandlerOpts{Registry: h.opts.Registry})))
	}

	r.GET("/locales", h.observe("/locales"), h.locales)
	r.GET("/translate/:key", h.observe("/translate/:key"), h.Middleware(), h.translate)
}

func (h *Handler) locales(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"locales": h.Available(),
		"default": h.opts.DefaultLocale,
	})
}

func (h *Handler) translate(c *gin.Context) {
	tr, _ := FromContext(c)
	key := c.Param("key")

	locals := lang.Locals{}
	for name, values := range c.Request.URL.Query() {
		if len(values) > 0 {
			locals[name] = values[len(values)-1]
		}
	}

	text, err := tr.T(c.Request.Context(), key, locals)
	if err != nil {
		c.JSON(statusOf(err), errorBody(err))

		return
	}

	c.JSON(http.StatusOK, gin.H{
		"locale": tr.Locale(),
		"key":    key,
		"text":   text,
	})
}

// observe logs each request and counts it by route and status code.
func (h *Handler) observe(route string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		code := c.Writer.Status()

		if h.requests != nil {
			h.requests.WithLabelValues(route, strconv.Itoa(code)).Inc()
		}

		h.opts.Logger.DebugContext(c.Request.Context(), "request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", code),
			slog.Duration("latency", time.Since(start)))
	}
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, i18n.ErrMissingTranslation):
		return http.StatusNotFound
	case errors.Is(err, lang.ErrInvalidSyntax),
		errors.Is(err, lang.ErrNotCallable),
		errors.Is(err, lang.ErrCall):
		return http.StatusUnprocessableEntity
	}

	return http.StatusInternalServerError
}

func errorBody(err error) gin.H {
	return gin.H{"error": err.Error()}
}

func acceptedLocales(header string) []string {
	tags, _, _ := language.ParseAcceptLanguage(header)

	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = t.String()
	}

	return out
}
