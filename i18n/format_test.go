package i18n

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"

	"github.com/ardnew/lingo/lang"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		locale string
		value  float64
		format string
		want   string
	}{
		{"en-US", 1200, "integer", "1,200"},
		{"en-US", 1200.6, "integer", "1,201"},
		{"en-US", 3, "decimal", "3.0"},
		{"en-US", 1234.5, "", "1,234.5"},
		{"en-US", -42, "default", "-42"},
		{"de-DE", 1234.5, "decimal", "1.234,5"},
		{"en-US", 7, "signed", "+7"},
		{"en-US", 0, "signed", "+0"},
		{"en-US", 0, "delta", "0"},
		{"en-US", -3, "delta", "-3"},
		{"en-US", -3, "abs", "3"},
		{"en-US", 1234567, "plain", "1234567"},
	}

	custom := WithFormats(Formats{Number: map[string]NumberFormat{
		"signed": {SignDisplay: SignAlways},
		"delta":  {SignDisplay: SignExceptZero},
		"abs":    {SignDisplay: SignNever},
		"plain":  {NoGrouping: true},
	}})

	for _, tt := range tests {
		tr := mustNew(t, tt.locale, custom)

		got, err := tr.FormatNumber(tt.value, tt.format)
		if err != nil {
			t.Errorf("%s %v %q: %v", tt.locale, tt.value, tt.format, err)

			continue
		}

		if got != tt.want {
			t.Errorf("%s %v %q: expected %q, got %q",
				tt.locale, tt.value, tt.format, tt.want, got)
		}
	}
}

func TestFormatNumber_UnknownFormat(t *testing.T) {
	tr := mustNew(t, "en")

	if _, err := tr.FormatNumber(1, "bogus"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestFormatPercentage(t *testing.T) {
	tr := mustNew(t, "en-US")

	tests := []struct {
		value float64
		want  string
	}{
		{0.125, "12.5%"},
		{1, "100%"},
		{0.33333, "33.33%"},
		{-0.5, "-50%"},
	}

	for _, tt := range tests {
		got, err := tr.FormatPercentage(tt.value, "")
		if err != nil || got != tt.want {
			t.Errorf("%v: expected %q, got %q (%v)", tt.value, tt.want, got, err)
		}
	}
}

func TestFormatCurrency(t *testing.T) {
	tr := mustNew(t, "en-US", WithFormats(Formats{Currency: map[string]NumberFormat{
		"code":  {CurrencyDisplay: CurrencyCode},
		"delta": {CurrencyDisplay: CurrencyCode, SignDisplay: SignExceptZero},
	}}))

	got, err := tr.FormatCurrency(12.5, "", "")
	if err != nil {
		t.Fatalf("FormatCurrency: %v", err)
	}

	if !strings.HasPrefix(got, "$") || !strings.HasSuffix(got, "12.50") {
		t.Errorf("expected $12.50, got %q", got)
	}

	tests := []struct {
		value  float64
		code   string
		format string
		want   string
	}{
		{12.5, "USD", "code", "USD 12.50"},
		{1234, "JPY", "code", "JPY 1,234"},
		{-12.5, "EUR", "code", "-EUR 12.50"},
		{3, "USD", "delta", "+USD 3.00"},
		{0, "USD", "delta", "USD 0.00"},
	}

	for _, tt := range tests {
		got, err := tr.FormatCurrency(tt.value, tt.code, tt.format)
		if err != nil || got != tt.want {
			t.Errorf("%v %s: expected %q, got %q (%v)", tt.value, tt.code, tt.want, got, err)
		}
	}

	if _, err := tr.FormatCurrency(1, "dollars", ""); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestFormatCurrency_SymbolAfter(t *testing.T) {
	tr := mustNew(t, "de-DE", WithFormats(Formats{Currency: map[string]NumberFormat{
		"code": {CurrencyDisplay: CurrencyCode},
	}}))

	got, err := tr.FormatCurrency(1234.5, "EUR", "code")
	if err != nil || got != "1.234,50 EUR" {
		t.Errorf("expected 1.234,50 EUR, got %q (%v)", got, err)
	}
}

func TestFormatDate(t *testing.T) {
	date := time.Date(2020, time.December, 17, 15, 4, 5, 0, time.UTC)

	tests := []struct {
		locale string
		format string
		want   string
	}{
		{"en-US", "default", "12/17/2020"},
		{"en-US", "short", "12/17/2020"},
		{"en-US", "medium", "Dec 17, 2020"},
		{"en-US", "long", "December 17, 2020"},
		{"en-US", "full", "Thursday, December 17, 2020"},
		{"en-GB", "default", "17/12/2020"},
		{"en-GB", "medium", "17 Dec 2020"},
		{"en-GB", "full", "Thursday, 17 December 2020"},
		{"de-DE", "default", "17.12.2020"},
		{"nl-NL", "default", "17-12-2020"},
		{"ja-JP", "default", "2020/12/17"},
		{"en-US", "monthYear", "December 2020"},
	}

	custom := WithFormats(Formats{Date: map[string]DateFormat{
		"monthYear": {Month: DateLong, Year: DateNumeric},
	}})

	for _, tt := range tests {
		tr := mustNew(t, tt.locale, custom, WithLocation(time.UTC))

		got, err := tr.FormatDate(date, tt.format)
		if err != nil || got != tt.want {
			t.Errorf("%s %s: expected %q, got %q (%v)",
				tt.locale, tt.format, tt.want, got, err)
		}
	}
}

func TestFormatDate_Bindings(t *testing.T) {
	ctx := context.Background()

	tr := mustNew(t, "en-US",
		WithLocation(time.FixedZone("EST", -5*60*60)),
		WithTranslations(map[string]any{
			"local": "${formatDate(d)}",
			"utc":   "${formatUTCDate(d, 'long')}",
		}))

	// 23:30 on the 17th in New York is the 18th in UTC.
	d := time.Date(2020, time.December, 18, 4, 30, 0, 0, time.UTC)

	tests := []struct {
		key   string
		value any
		want  string
	}{
		{"local", d, "12/17/2020"},
		{"utc", d, "December 18, 2020"},
		{"utc", "2020-12-17T23:30:00-05:00", "December 18, 2020"},
		{"utc", "2021-01-02", "January 2, 2021"},
		{"utc", float64(d.UnixMilli()), "December 18, 2020"},
	}

	for _, tt := range tests {
		got, err := tr.T(ctx, tt.key, lang.Locals{"d": tt.value})
		if err != nil || got != tt.want {
			t.Errorf("%s %v: expected %q, got %q (%v)", tt.key, tt.value, tt.want, got, err)
		}
	}

	_, err := tr.T(ctx, "utc", lang.Locals{"d": "yesterday"})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestBindings(t *testing.T) {
	ctx := context.Background()

	tr := mustNew(t, "en-US", WithTranslations(map[string]any{
		"n":     "${formatNumber(n, 'integer')}",
		"pct":   "${formatPercentage(p)}",
		"money": "${formatCurrency(m, 'USD', 'default')}",
		"rule":  "${getPluralRule(n)}/${getOrdinalRule(n)}",
	}))

	tests := []struct {
		key    string
		locals lang.Locals
		want   string
	}{
		{"n", lang.Locals{"n": 1234.4}, "1,234"},
		{"n", lang.Locals{"n": "99"}, "99"},
		{"pct", lang.Locals{"p": 0.5}, "50%"},
		{"rule", lang.Locals{"n": 2}, "other/two"},
		{"rule", lang.Locals{"n": 1}, "one/one"},
	}

	for _, tt := range tests {
		got, err := tr.T(ctx, tt.key, tt.locals)
		if err != nil || got != tt.want {
			t.Errorf("%s %v: expected %q, got %q (%v)", tt.key, tt.locals, tt.want, got, err)
		}
	}

	money, err := tr.T(ctx, "money", lang.Locals{"m": 5})
	if err != nil || !strings.Contains(money, "5.00") {
		t.Errorf("expected an amount of 5.00, got %q (%v)", money, err)
	}

	_, err = tr.T(ctx, "n", lang.Locals{"n": "many"})
	if !errors.Is(err, ErrInvalidArgument) || !errors.Is(err, lang.ErrCall) {
		t.Errorf("expected ErrInvalidArgument from call, got %v", err)
	}
}

func TestPluralRule(t *testing.T) {
	tr := mustNew(t, "en-GB")

	cardinal := map[float64]string{
		0: "other", 1: "one", 2: "other", 1.5: "other", 100: "other",
	}

	for n, want := range cardinal {
		if got := tr.PluralRule(n); got != want {
			t.Errorf("cardinal %v: expected %s, got %s", n, want, got)
		}
	}

	ordinal := map[float64]string{
		1: "one", 2: "two", 3: "few", 4: "other",
		11: "other", 12: "other", 13: "other",
		21: "one", 22: "two", 23: "few", 101: "one", 111: "other",
	}

	for n, want := range ordinal {
		if got := tr.OrdinalRule(n); got != want {
			t.Errorf("ordinal %v: expected %s, got %s", n, want, got)
		}
	}

	if got := pluralRule(plural.Cardinal, language.Make("pl"), 3); got != "few" {
		t.Errorf("pl cardinal 3: expected few, got %s", got)
	}
}

func TestPluralOperands(t *testing.T) {
	tests := []struct {
		n             float64
		i, v, w, f, t int
	}{
		{1, 1, 0, 0, 0, 0},
		{1.5, 1, 1, 1, 5, 5},
		{-2.25, 2, 2, 2, 25, 25},
		{12345678, 2345678, 0, 0, 0, 0},
	}

	for _, tt := range tests {
		i, v, w, f, tv := pluralOperands(tt.n)
		if i != tt.i || v != tt.v || w != tt.w || f != tt.f || tv != tt.t {
			t.Errorf("%v: got i=%d v=%d w=%d f=%d t=%d", tt.n, i, v, w, f, tv)
		}
	}
}
