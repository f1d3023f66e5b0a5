package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestMake_Defaults(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf)

	if logger.Level() != DefaultLevel {
		t.Errorf("expected level %v, got %v", DefaultLevel, logger.Level())
	}

	if logger.Format() != DefaultFormat {
		t.Errorf("expected format %v, got %v", DefaultFormat, logger.Format())
	}

	if logger.caller {
		t.Error("expected caller disabled by default")
	}

	if logger.Writer() != &buf {
		t.Error("expected logger to write to the given writer")
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		level Level
		want  []string
	}{
		{LevelTrace, []string{"t", "d", "i", "w", "e"}},
		{LevelDebug, []string{"d", "i", "w", "e"}},
		{LevelInfo, []string{"i", "w", "e"}},
		{LevelWarn, []string{"w", "e"}},
		{LevelError, []string{"e"}},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			var buf bytes.Buffer

			logger := Make(&buf,
				WithLevel(tt.level),
				WithFormat(FormatJSON),
				WithTimeLayout("none"))

			logger.Trace("t")
			logger.Debug("d")
			logger.Info("i")
			logger.Warn("w")
			logger.Error("e")

			var got []string

			for line := range strings.Lines(buf.String()) {
				var rec map[string]any
				if err := json.Unmarshal([]byte(line), &rec); err != nil {
					t.Fatalf("invalid record %q: %v", line, err)
				}

				if _, ok := rec["time"]; ok {
					t.Errorf("expected no time field, got %v", rec["time"])
				}

				got = append(got, rec["msg"].(string))
			}

			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestLogger_TraceLevelName(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithLevel(LevelTrace), WithFormat(FormatJSON))
	logger.TraceContext(context.Background(), "tokenize complete",
		slog.Int("token_count", 3))

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("invalid record %q: %v", buf.String(), err)
	}

	if rec["level"] != "TRACE" {
		t.Errorf("expected level TRACE, got %v", rec["level"])
	}

	if rec["token_count"] != 3.0 {
		t.Errorf("expected token_count 3, got %v", rec["token_count"])
	}
}

func TestLogger_Caller(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithCaller(true), WithFormat(FormatText))
	logger.Info("where")

	if !strings.Contains(buf.String(), "log_test.go") {
		t.Errorf("expected caller file in output, got %q", buf.String())
	}
}

func TestLogger_TimeLayout(t *testing.T) {
	tests := []struct {
		layout string
		want   string
	}{
		{"RFC3339", "2024-03-05T07:08:09Z"},
		{"rfc-3339", "2024-03-05T07:08:09Z"},
		{"Kitchen", "7:08AM"},
		{"DateOnly", "2024-03-05"},
		{"15h04", "07h08"},
		{"none", ""},
		{"", ""},
	}

	ts := time.Date(2024, 3, 5, 7, 8, 9, 0, time.UTC)

	for _, tt := range tests {
		if got := makeFormatTimeFunc(tt.layout)(ts); got != tt.want {
			t.Errorf("layout %q: expected %q, got %q", tt.layout, tt.want, got)
		}
	}
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithFormat(FormatJSON)).
		With(slog.String("component", "cache")).
		WithGroup("req")

	logger.Info("hit", slog.String("key", "greeting"))

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("invalid record %q: %v", buf.String(), err)
	}

	if rec["component"] != "cache" {
		t.Errorf("expected component attribute, got %v", rec)
	}

	group, _ := rec["req"].(map[string]any)
	if group["key"] != "greeting" {
		t.Errorf("expected grouped key attribute, got %v", rec)
	}
}

func TestLogger_Wrap(t *testing.T) {
	var buf bytes.Buffer

	base := Make(&buf, WithLevel(LevelError))
	wrapped := base.Wrap(WithLevel(LevelDebug))

	if base.Level() != LevelError {
		t.Errorf("wrap modified the original level: %v", base.Level())
	}

	if wrapped.Level() != LevelDebug {
		t.Errorf("expected wrapped level debug, got %v", wrapped.Level())
	}

	if wrapped.Writer() != &buf {
		t.Error("expected wrapped logger to keep the writer")
	}
}

func TestLogger_ZeroValue(t *testing.T) {
	var logger Logger

	logger.Trace("x")
	logger.Info("x", slog.String("k", "v"))
	logger.ErrorContext(context.Background(), "x")

	if logger.With(slog.Int("n", 1)).Logger != nil {
		t.Error("expected With on zero logger to stay zero")
	}

	if logger.Level() != DefaultLevel {
		t.Errorf("expected default level, got %v", logger.Level())
	}

	wrapped := logger.Wrap(WithLevel(LevelWarn))
	if wrapped.Level() != LevelWarn {
		t.Errorf("expected wrapped zero logger level warn, got %v", wrapped.Level())
	}
}

func TestLogger_Concurrent(t *testing.T) {
	var (
		buf syncBuffer
		wg  sync.WaitGroup
	)

	logger := Make(&buf, WithFormat(FormatJSON))

	for i := range 32 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			logger.With(slog.Int("worker", i)).Info("work")
			_ = logger.Level()
		}()
	}

	wg.Wait()

	if n := strings.Count(buf.String(), "\n"); n != 32 {
		t.Errorf("expected 32 records, got %d", n)
	}
}

func TestPretty(t *testing.T) {
	for _, format := range []Format{FormatText, FormatJSON} {
		t.Run(format.String(), func(t *testing.T) {
			var buf bytes.Buffer

			logger := Make(&buf,
				WithPretty(true),
				WithFormat(format),
				WithTimeLayout("none")).With(slog.String("scope", "test"))

			logger.Warn("careful", slog.Bool("ok", false), slog.Int("n", 7))

			out := buf.String()
			for _, want := range []string{"careful", "WARN", "scope", "test", "ok", "false", "7"} {
				if !strings.Contains(out, want) {
					t.Errorf("expected %q in %q", want, out)
				}
			}

			if strings.Contains(out, "time") {
				t.Errorf("expected no time field in %q", out)
			}
		})
	}
}

func TestPackage_DefaultLogger(t *testing.T) {
	original := Default()
	defer Config(WithDefaults(original.Writer()))

	var buf bytes.Buffer

	Config(WithOutput(&buf), WithLevel(LevelDebug), WithFormat(FormatJSON))

	tests := []struct {
		fn    func(string, ...slog.Attr)
		level string
	}{
		{Debug, "DEBUG"},
		{Info, "INFO"},
		{Warn, "WARN"},
		{Error, "ERROR"},
	}

	for _, tt := range tests {
		buf.Reset()
		tt.fn("message", slog.String("key", "value"))

		out := buf.String()
		if !strings.Contains(out, `"level":"`+tt.level+`"`) ||
			!strings.Contains(out, `"key":"value"`) {
			t.Errorf("unexpected %s record: %s", tt.level, out)
		}
	}
}

// syncBuffer is a bytes.Buffer safe for concurrent writes.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.String()
}

func BenchmarkLogger_Info(b *testing.B) {
	logger := Make(&bytes.Buffer{}, WithFormat(FormatJSON))

	for b.Loop() {
		logger.Info("benchmark", slog.String("key", "value"), slog.Int("n", 1))
	}
}

func BenchmarkLogger_TraceDisabled(b *testing.B) {
	logger := Make(&bytes.Buffer{})

	for b.Loop() {
		logger.Trace("skipped", slog.String("key", "value"))
	}
}

func TestLevel_Text(t *testing.T) {
	tests := []struct {
		in   string
		want Level
		ok   bool
	}{
		{"trace", LevelTrace, true},
		{"TRACE", LevelTrace, true},
		{"debug", LevelDebug, true},
		{"Info", LevelInfo, true},
		{"warn", LevelWarn, true},
		{"error", LevelError, true},
		{"debug+2", LevelDebug + 2, true},
		{"loud", 0, false},
	}

	for _, tt := range tests {
		var l Level

		err := l.UnmarshalText([]byte(tt.in))
		if (err == nil) != tt.ok {
			t.Errorf("%q: unexpected error state %v", tt.in, err)

			continue
		}

		if tt.ok && l != tt.want {
			t.Errorf("%q: expected %v, got %v", tt.in, tt.want, l)
		}
	}

	if ParseLevel("loud") != DefaultLevel {
		t.Error("expected unknown level to parse as the default")
	}

	if got := slices.Collect(Levels()); strings.Join(got, ",") != "trace,debug,info,warn,error" {
		t.Errorf("unexpected level names %v", got)
	}
}

func TestFormat_Text(t *testing.T) {
	var f Format

	if err := f.UnmarshalText([]byte(" JSON ")); err != nil || f != FormatJSON {
		t.Errorf("expected json, got %v (%v)", f, err)
	}

	if err := f.UnmarshalText([]byte("xml")); err == nil {
		t.Error("expected error for unknown format")
	}

	if ParseFormat("xml") != DefaultFormat {
		t.Error("expected unknown format to parse as the default")
	}

	for f, want := range map[Format]string{
		FormatText: "text",
		FormatJSON: "json",
		Format(7):  "Format(7)",
	} {
		if got := f.String(); got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	}
}
