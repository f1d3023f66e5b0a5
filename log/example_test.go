package log_test

import (
	"context"
	"log/slog"
	"os"

	"github.com/ardnew/lingo/log"
)

func Example() {
	logger := log.Make(os.Stdout, log.WithTimeLayout("none"))
	logger.Info("translator ready", slog.String("locale", "en-US"))
	// Output: level=INFO msg="translator ready" locale=en-US
}

func Example_levels() {
	logger := log.Make(os.Stdout,
		log.WithLevel(log.LevelWarn),
		log.WithTimeLayout("none"))

	logger.Info("dropped")
	logger.Warn("missing translation", slog.String("key", "greeting"))
	// Output: level=WARN msg="missing translation" key=greeting
}

func Example_json() {
	logger := log.Make(os.Stdout,
		log.WithFormat(log.FormatJSON),
		log.WithLevel(log.LevelTrace),
		log.WithTimeLayout("none"))

	logger.TraceContext(context.Background(), "cache hit",
		slog.String("key", "greeting"))
	// Output: {"level":"TRACE","msg":"cache hit","key":"greeting"}
}
