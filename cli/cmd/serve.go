package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/ardnew/lingo/loader"
	"github.com/ardnew/lingo/profile"
	"github.com/ardnew/lingo/server"
)

// shutdownTimeout bounds the wait for in-flight requests on exit.
const shutdownTimeout = 5 * time.Second

// Serve runs the HTTP translation server.
type Serve struct {
	Addr      string `default:":8080" env:"LINGO_ADDR" help:"Listen address."               short:"a"`
	Variation string `                                 help:"Preferred locale variation."`
	Header    string `default:"X-Lingo-Variation"      help:"Request header overriding the preferred variation."`
	Watch     bool   `default:"true"                   help:"Reload translations when files change." negatable:""`
}

// Run executes the serve command. It returns when ctx is cancelled.
func (s *Serve) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	src := sourceFrom(ctx)

	translations, err := src.load(ctx)
	if err != nil {
		return err
	}

	engine, h, err := s.engine(src, translations)
	if err != nil {
		return err
	}

	if s.Watch {
		go s.watch(ctx, src, h)
	}

	srv := &http.Server{
		Addr:              s.Addr,
		Handler:           engine,
		ReadHeaderTimeout: shutdownTimeout,
	}

	errc := make(chan error, 1)

	go func() {
		src.Logger.InfoContext(ctx, "listening",
			slog.String("addr", s.Addr),
			slog.Any("locales", h.Available()))

		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return ErrServe.Wrap(err).With(slog.String("addr", s.Addr))

	case <-ctx.Done():
	}

	shutdown, done := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer done()

	if err := srv.Shutdown(shutdown); err != nil {
		return ErrServe.Wrap(err).With(slog.String("addr", s.Addr))
	}

	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return ErrServe.Wrap(err).With(slog.String("addr", s.Addr))
	}

	return nil
}

// engine builds the gin engine serving translations with request and cache
// metrics.
func (s *Serve) engine(
	src Source,
	translations loader.Translations,
) (*gin.Engine, *server.Handler, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	opts := server.Options{
		Translations:       translations,
		DefaultLocale:      src.Locale,
		PreferredVariation: s.Variation,
		Registry:           reg,
		Logger:             src.Logger,
	}

	if s.Header != "" {
		opts.Variation = func(c *gin.Context) string {
			return c.GetHeader(s.Header)
		}
	}

	h, err := server.New(opts)
	if err != nil {
		return nil, nil, err
	}

	gin.SetMode(gin.ReleaseMode)

	engine := server.NewEngine(h)

	if len(profile.Modes()) > 0 {
		engine.Any("/debug/pprof/*profile", gin.WrapH(http.DefaultServeMux))
	}

	return engine, h, nil
}

// watch reloads the handler's translations whenever a translation file
// changes, until ctx is done.
func (s *Serve) watch(ctx context.Context, src Source, h *server.Handler) {
	err := loader.Watch(ctx, src.options(), func(path string) {
		translations, err := src.load(ctx)
		if err == nil {
			err = h.Reload(translations)
		}

		if err != nil {
			src.Logger.WarnContext(ctx, "reload failed",
				slog.String("file", path),
				slog.Any("error", err))

			return
		}

		src.Logger.InfoContext(ctx, "translations reloaded",
			slog.String("file", path),
			slog.Any("locales", h.Available()))
	})
	if err != nil {
		src.Logger.WarnContext(ctx, "watch stopped", slog.Any("error", err))
	}
}
