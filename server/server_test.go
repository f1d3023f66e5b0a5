package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ardnew/lingo/i18n"
	"github.com/ardnew/lingo/lang"
	"github.com/ardnew/lingo/loader"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testTranslations() loader.Translations {
	return loader.Translations{
		"en":        {"hello": "Hello ${name}", "bad": "${oops(}", "call": "${nope()}"},
		"en.formal": {"hello": "Good day ${name}"},
		"fr":        {"hello": "Bonjour ${name}"},
		"de":        {"hello": "Hallo ${name}"},
	}
}

func serve(t *testing.T, e *gin.Engine, target, acceptLanguage string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, target, nil)
	if acceptLanguage != "" {
		req.Header.Set("Accept-Language", acceptLanguage)
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var body map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("invalid JSON %q: %v", rec.Body.String(), err)
		}
	}

	return rec, body
}

func TestNew_DefaultLocaleRequired(t *testing.T) {
	_, err := New(Options{Translations: testTranslations(), DefaultLocale: "es"})
	if !errors.Is(err, i18n.ErrUnsupportedLocale) {
		t.Fatalf("expected ErrUnsupportedLocale, got %v", err)
	}
}

func TestTranslate(t *testing.T) {
	h, err := New(Options{Translations: testTranslations(), DefaultLocale: "en"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	e := NewEngine(h)

	tests := []struct {
		accept string
		locale string
		text   string
	}{
		{"", "en", "Hello Ann"},
		{"fr-CA,fr;q=0.9", "fr", "Bonjour Ann"},
		{"de-AT, en;q=0.5", "de", "Hallo Ann"},
		{"ja", "en", "Hello Ann"},
	}

	for _, tt := range tests {
		t.Run(tt.accept, func(t *testing.T) {
			rec, body := serve(t, e, "/translate/hello?name=Ann", tt.accept)

			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
			}

			if body["locale"] != tt.locale || body["text"] != tt.text || body["key"] != "hello" {
				t.Errorf("unexpected body %v", body)
			}

			if got := rec.Header().Get("Content-Language"); got != tt.locale {
				t.Errorf("expected Content-Language %q, got %q", tt.locale, got)
			}
		})
	}
}

func TestTranslate_Errors(t *testing.T) {
	h, err := New(Options{Translations: testTranslations(), DefaultLocale: "en"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	e := NewEngine(h)

	tests := []struct {
		key  string
		code int
	}{
		{"missing", http.StatusNotFound},
		{"bad", http.StatusUnprocessableEntity},
		{"call", http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		rec, body := serve(t, e, "/translate/"+tt.key, "")

		if rec.Code != tt.code {
			t.Errorf("%s: expected %d, got %d", tt.key, tt.code, rec.Code)
		}

		if body["error"] == nil {
			t.Errorf("%s: expected error message, got %v", tt.key, body)
		}
	}
}

func TestVariation(t *testing.T) {
	h, err := New(Options{
		Translations:       testTranslations(),
		DefaultLocale:      "en",
		PreferredVariation: "formal",
		Variation: func(c *gin.Context) string {
			return c.GetHeader("X-Variation")
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	e := NewEngine(h)

	_, body := serve(t, e, "/translate/hello?name=Ann", "en")
	if body["locale"] != "en.formal" || body["text"] != "Good day Ann" {
		t.Errorf("expected formal English, got %v", body)
	}

	// No formal French exists, so the plain locale is used.
	_, body = serve(t, e, "/translate/hello?name=Ann", "fr")
	if body["locale"] != "fr" {
		t.Errorf("expected fr, got %v", body)
	}

	req := httptest.NewRequest(http.MethodGet, "/translate/hello?name=Ann", nil)
	req.Header.Set("X-Variation", "casual")

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if !strings.Contains(rec.Body.String(), `"Hello Ann"`) {
		t.Errorf("expected casual variation to fall back to en, got %s", rec.Body)
	}
}

func TestFallback(t *testing.T) {
	var preferred []string

	h, err := New(Options{
		Translations:  testTranslations(),
		DefaultLocale: "en",
		Fallback: func(_ *gin.Context, _, pref []string) string {
			preferred = pref

			return "de"
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, body := serve(t, NewEngine(h), "/translate/hello", "ja, ko;q=0.5")
	if body["locale"] != "de" {
		t.Errorf("expected fallback locale de, got %v", body)
	}

	if strings.Join(preferred, ",") != "ja,ko" {
		t.Errorf("expected preferred ja,ko, got %v", preferred)
	}
}

func TestMiddleware_FromContext(t *testing.T) {
	h, err := New(Options{Translations: testTranslations(), DefaultLocale: "en"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	e := gin.New()
	e.GET("/greet", h.Middleware(), func(c *gin.Context) {
		tr, ok := FromContext(c)
		if !ok {
			c.Status(http.StatusTeapot)

			return
		}

		text, err := tr.T(c.Request.Context(), "hello", lang.Locals{"name": "Bo"})
		if err != nil {
			c.Status(http.StatusInternalServerError)

			return
		}

		c.String(http.StatusOK, text)
	})

	rec, _ := serve(t, e, "/greet", "fr")
	if rec.Code != http.StatusOK || rec.Body.String() != "Bonjour Bo" {
		t.Errorf("expected Bonjour Bo, got %d %q", rec.Code, rec.Body)
	}

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if _, ok := FromContext(c); ok {
		t.Error("expected no translator without the middleware")
	}
}

func TestLocalesAndMetrics(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()

	h, err := New(Options{
		Translations:  testTranslations(),
		DefaultLocale: "en",
		Registry:      reg,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	e := NewEngine(h)

	_, body := serve(t, e, "/locales", "")

	locales, _ := body["locales"].([]any)
	if len(locales) != 3 || body["default"] != "en" {
		t.Errorf("unexpected locales body %v", body)
	}

	serve(t, e, "/translate/hello", "")
	serve(t, e, "/translate/hello", "")

	rec, _ := serve(t, e, "/metrics", "")
	out := rec.Body.String()

	for _, want := range []string{
		`lingo_http_requests_total{code="200",route="/translate/:key"} 2`,
		`lingo_http_requests_total{code="200",route="/locales"} 1`,
		`lingo_parse_cache_hits_total 1`,
		`lingo_parse_cache_misses_total 1`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in metrics:\n%s", want, out)
		}
	}
}

func TestReload(t *testing.T) {
	h, err := New(Options{Translations: testTranslations(), DefaultLocale: "en"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	e := NewEngine(h)
	serve(t, e, "/translate/hello?name=A", "")

	if err := h.Reload(loader.Translations{"en": {"hello": "Hi ${name}"}}); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	_, body := serve(t, e, "/translate/hello?name=A", "fr")
	if body["text"] != "Hi A" || body["locale"] != "en" {
		t.Errorf("expected reloaded English, got %v", body)
	}

	if err := h.Reload(loader.Translations{"fr": {}}); !errors.Is(err, i18n.ErrUnsupportedLocale) {
		t.Errorf("expected ErrUnsupportedLocale, got %v", err)
	}
}
