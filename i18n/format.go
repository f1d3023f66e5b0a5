package i18n

import (
	"log/slog"
	"maps"
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DefaultFormat is the format name used when a formatting binding is called
// without one.
const DefaultFormat = "default"

// SignDisplay selects when a sign is written in front of a formatted number.
type SignDisplay string

// Sign display modes.
const (
	SignAuto       SignDisplay = "auto"       // "-" for negative values only
	SignNever      SignDisplay = "never"      // never a sign
	SignAlways     SignDisplay = "always"     // "+" or "-", including zero
	SignExceptZero SignDisplay = "exceptZero" // "+" or "-", zero unsigned
)

// CurrencyDisplay selects how the currency of an amount is shown.
type CurrencyDisplay string

// Currency display modes.
const (
	CurrencySymbol       CurrencyDisplay = "symbol"       // US$, CA$
	CurrencyNarrowSymbol CurrencyDisplay = "narrowSymbol" // $
	CurrencyCode         CurrencyDisplay = "code"         // USD
)

// NumberFormat describes how numbers, currency amounts and percentages are
// written.
//
// MaxFractionDigits below MinFractionDigits is raised to it, so the zero
// NumberFormat writes integers. For currency amounts, a format with neither
// bound set uses the standard number of digits of the currency.
type NumberFormat struct {
	MinFractionDigits int             `json:"minimumFractionDigits,omitempty" toml:"minimumFractionDigits,omitempty" yaml:"minimumFractionDigits,omitempty"`
	MaxFractionDigits int             `json:"maximumFractionDigits,omitempty" toml:"maximumFractionDigits,omitempty" yaml:"maximumFractionDigits,omitempty"`
	NoGrouping        bool            `json:"noGrouping,omitempty"            toml:"noGrouping,omitempty"            yaml:"noGrouping,omitempty"`
	Currency          string          `json:"currency,omitempty"              toml:"currency,omitempty"              yaml:"currency,omitempty"`
	CurrencyDisplay   CurrencyDisplay `json:"currencyDisplay,omitempty"       toml:"currencyDisplay,omitempty"       yaml:"currencyDisplay,omitempty"`
	SignDisplay       SignDisplay     `json:"signDisplay,omitempty"           toml:"signDisplay,omitempty"           yaml:"signDisplay,omitempty"`
}

// DateStyle is the width of one date field.
type DateStyle string

// Date field widths. Short and long apply to months and weekdays only.
const (
	DateOmit    DateStyle = ""
	DateNumeric DateStyle = "numeric"
	Date2Digit  DateStyle = "2-digit"
	DateShort   DateStyle = "short"
	DateLong    DateStyle = "long"
)

// DateFormat selects the fields of a formatted date and their widths.
//
// A numeric month writes the fields in the order and with the separator of
// the locale (month first for en-US, year first for Chinese, Japanese and
// Korean, day first otherwise). A named month writes "January 2, 2006" for
// en-US and "2 January 2006" elsewhere. Month and weekday names are English.
type DateFormat struct {
	Weekday DateStyle `json:"weekday,omitempty" toml:"weekday,omitempty" yaml:"weekday,omitempty"`
	Day     DateStyle `json:"day,omitempty"     toml:"day,omitempty"     yaml:"day,omitempty"`
	Month   DateStyle `json:"month,omitempty"   toml:"month,omitempty"   yaml:"month,omitempty"`
	Year    DateStyle `json:"year,omitempty"    toml:"year,omitempty"    yaml:"year,omitempty"`
}

// Formats holds the named formats of each kind of value.
type Formats struct {
	Number     map[string]NumberFormat `json:"number,omitempty"     toml:"number,omitempty"     yaml:"number,omitempty"`
	Currency   map[string]NumberFormat `json:"currency,omitempty"   toml:"currency,omitempty"   yaml:"currency,omitempty"`
	Percentage map[string]NumberFormat `json:"percentage,omitempty" toml:"percentage,omitempty" yaml:"percentage,omitempty"`
	Date       map[string]DateFormat   `json:"date,omitempty"       toml:"date,omitempty"       yaml:"date,omitempty"`
}

// DefaultFormats returns the built-in named formats:
//
//	number:     default, decimal, integer
//	currency:   default
//	percentage: default
//	date:       default, short, medium, long, full
func DefaultFormats() Formats {
	numeric := DateFormat{Day: Date2Digit, Month: Date2Digit, Year: DateNumeric}

	return Formats{
		Number: map[string]NumberFormat{
			DefaultFormat: {MaxFractionDigits: 3},
			"decimal":     {MinFractionDigits: 1, MaxFractionDigits: 3},
			"integer":     {},
		},
		Currency: map[string]NumberFormat{
			DefaultFormat: {Currency: "USD", CurrencyDisplay: CurrencyNarrowSymbol},
		},
		Percentage: map[string]NumberFormat{
			DefaultFormat: {MaxFractionDigits: 2},
		},
		Date: map[string]DateFormat{
			DefaultFormat: numeric,
			"short":       numeric,
			"medium":      {Day: DateNumeric, Month: DateShort, Year: DateNumeric},
			"long":        {Day: DateNumeric, Month: DateLong, Year: DateNumeric},
			"full": {
				Weekday: DateLong,
				Day:     DateNumeric,
				Month:   DateLong,
				Year:    DateNumeric,
			},
		},
	}
}

// Merge returns f with the named formats of other added, replacing formats
// of the same kind and name.
func (f Formats) Merge(other Formats) Formats {
	return Formats{
		Number:     mergeFormats(f.Number, other.Number),
		Currency:   mergeFormats(f.Currency, other.Currency),
		Percentage: mergeFormats(f.Percentage, other.Percentage),
		Date:       mergeFormats(f.Date, other.Date),
	}
}

func mergeFormats[F any](base, over map[string]F) map[string]F {
	out := make(map[string]F, len(base)+len(over))
	maps.Copy(out, base)
	maps.Copy(out, over)

	return out
}

func lookupFormat[F any](kind string, formats map[string]F, name string) (F, error) {
	if name == "" {
		name = DefaultFormat
	}

	f, ok := formats[name]
	if !ok {
		var zero F

		return zero, ErrUnknownFormat.With(
			slog.String("kind", kind),
			slog.String("format", name),
		)
	}

	return f, nil
}

// formatter writes values by the conventions of one locale.
type formatter struct {
	tag     language.Tag
	printer *message.Printer
	formats Formats
	loc     *time.Location
}

func newFormatter(tag language.Tag, formats Formats, loc *time.Location) *formatter {
	if loc == nil {
		loc = time.Local
	}

	return &formatter{
		tag:     tag,
		printer: message.NewPrinter(tag),
		formats: formats,
		loc:     loc,
	}
}

func (f *formatter) decimal(v float64, nf NumberFormat, minDigits, maxDigits int) string {
	opts := []number.Option{
		number.MinFractionDigits(minDigits),
		number.MaxFractionDigits(max(maxDigits, minDigits)),
	}

	if nf.NoGrouping {
		opts = append(opts, number.NoSeparator())
	}

	return f.printer.Sprint(number.Decimal(v, opts...))
}

func (f *formatter) number(v float64, name string) (string, error) {
	nf, err := lookupFormat("number", f.formats.Number, name)
	if err != nil {
		return "", err
	}

	out := f.decimal(math.Abs(v), nf, nf.MinFractionDigits, nf.MaxFractionDigits)

	return withSign(nf.SignDisplay, v, out), nil
}

func (f *formatter) percentage(v float64, name string) (string, error) {
	nf, err := lookupFormat("percentage", f.formats.Percentage, name)
	if err != nil {
		return "", err
	}

	opts := []number.Option{
		number.MinFractionDigits(nf.MinFractionDigits),
		number.MaxFractionDigits(max(nf.MaxFractionDigits, nf.MinFractionDigits)),
	}

	out := f.printer.Sprint(number.Percent(math.Abs(v), opts...))

	return withSign(nf.SignDisplay, v, out), nil
}

func (f *formatter) currency(v float64, code, name string) (string, error) {
	nf, err := lookupFormat("currency", f.formats.Currency, name)
	if err != nil {
		return "", err
	}

	if code == "" {
		code = nf.Currency
	}

	if code == "" {
		code = "USD"
	}

	unit, err := currency.ParseISO(code)
	if err != nil {
		return "", ErrInvalidArgument.Wrap(err).With(
			slog.String("currency", code),
		)
	}

	minDigits, maxDigits := nf.MinFractionDigits, nf.MaxFractionDigits
	if minDigits == 0 && maxDigits == 0 {
		scale, _ := currency.Standard.Rounding(unit)
		minDigits, maxDigits = scale, scale
	}

	amount := f.decimal(math.Abs(v), nf, minDigits, maxDigits)

	var symbol string

	switch nf.CurrencyDisplay {
	case CurrencyCode:
		symbol = unit.String()
	case CurrencyNarrowSymbol:
		symbol = f.printer.Sprint(currency.NarrowSymbol(unit))
	default:
		symbol = f.printer.Sprint(currency.Symbol(unit))
	}

	var out string

	switch {
	case symbolAfter(f.tag):
		out = amount + " " + symbol
	case nf.CurrencyDisplay == CurrencyCode:
		out = symbol + " " + amount
	default:
		out = symbol + amount
	}

	return withSign(nf.SignDisplay, v, out), nil
}

// symbolAfter reports whether the locale writes the currency after the
// amount.
func symbolAfter(tag language.Tag) bool {
	base, region := localeParts(tag)

	switch base {
	case "cs", "da", "de", "es", "fi", "fr", "it", "nb", "no", "pl", "pt",
		"ru", "sk", "sv", "uk":
		return base != "pt" || region != "BR"
	}

	return false
}

// localeParts returns the language and region subtags of tag, inferring the
// region when the tag has none.
func localeParts(tag language.Tag) (base, region string) {
	b, _ := tag.Base()
	r, _ := tag.Region()

	return b.String(), r.String()
}

func isAmericanEnglish(tag language.Tag) bool {
	base, region := localeParts(tag)

	return base == "en" && region == "US"
}

func withSign(sd SignDisplay, v float64, out string) string {
	switch sd {
	case SignNever:
		return out
	case SignAlways:
		if v < 0 {
			return "-" + out
		}

		return "+" + out
	case SignExceptZero:
		switch {
		case v < 0:
			return "-" + out
		case v > 0:
			return "+" + out
		}

		return out
	}

	if v < 0 {
		return "-" + out
	}

	return out
}

func (f *formatter) date(t time.Time, name string, utc bool) (string, error) {
	df, err := lookupFormat("date", f.formats.Date, name)
	if err != nil {
		return "", err
	}

	if utc {
		t = t.UTC()
	} else {
		t = t.In(f.loc)
	}

	return formatDate(f.tag, t, df), nil
}

func formatDate(tag language.Tag, t time.Time, df DateFormat) string {
	var b strings.Builder

	switch df.Weekday {
	case DateShort:
		b.WriteString(t.Weekday().String()[:3])
	case DateLong, DateNumeric, Date2Digit:
		b.WriteString(t.Weekday().String())
	}

	day := dateField(df.Day, t.Day())
	year := dateField(df.Year, t.Year())

	var body string

	switch df.Month {
	case DateShort, DateLong:
		month := t.Month().String()
		if df.Month == DateShort {
			month = month[:3]
		}

		body = namedDate(tag, day, month, year)

	default:
		body = numericDate(tag, day, dateField(df.Month, int(t.Month())), year)
	}

	if b.Len() > 0 && body != "" {
		b.WriteString(", ")
	}

	b.WriteString(body)

	return b.String()
}

func dateField(style DateStyle, n int) string {
	switch style {
	case DateOmit:
		return ""
	case Date2Digit:
		s := strconv.Itoa(n % 100)
		if len(s) < 2 {
			s = "0" + s
		}

		return s
	}

	return strconv.Itoa(n)
}

func namedDate(tag language.Tag, day, month, year string) string {
	var fields []string

	if isAmericanEnglish(tag) {
		fields = nonEmpty(month, day)
		s := strings.Join(fields, " ")

		if year != "" {
			if day != "" {
				s += ","
			}

			s = strings.TrimSpace(s + " " + year)
		}

		return s
	}

	return strings.Join(nonEmpty(day, month, year), " ")
}

func numericDate(tag language.Tag, day, month, year string) string {
	if isAmericanEnglish(tag) {
		return strings.Join(nonEmpty(month, day, year), "/")
	}

	base, _ := localeParts(tag)

	switch base {
	case "ja", "ko", "zh":
		return strings.Join(nonEmpty(year, month, day), "/")
	case "cs", "de", "fi", "nb", "no", "pl", "ru", "sk", "uk":
		return strings.Join(nonEmpty(day, month, year), ".")
	case "nl":
		return strings.Join(nonEmpty(day, month, year), "-")
	}

	return strings.Join(nonEmpty(day, month, year), "/")
}

func nonEmpty(fields ...string) []string {
	out := fields[:0:0]

	for _, f := range fields {
		if f != "" {
			out = append(out, f)
		}
	}

	return out
}

// Plural category names.
var pluralNames = map[plural.Form]string{
	plural.Other: "other",
	plural.Zero:  "zero",
	plural.One:   "one",
	plural.Two:   "two",
	plural.Few:   "few",
	plural.Many:  "many",
}

// pluralRule returns the CLDR category of n for the language of tag.
func pluralRule(rules *plural.Rules, tag language.Tag, n float64) string {
	base, _ := tag.Base()

	i, v, w, f, t := pluralOperands(n)

	return pluralNames[rules.MatchPlural(language.Make(base.String()), i, v, w, f, t)]
}

// pluralOperands returns the CLDR operands of n: the integer digits and the
// count and value of the fraction digits with and without trailing zeros.
func pluralOperands(n float64) (i, v, w, f, t int) {
	const limit = 10_000_000

	s := strconv.FormatFloat(math.Abs(n), 'f', -1, 64)

	whole, frac, _ := strings.Cut(s, ".")
	if len(whole) > 7 {
		whole = whole[len(whole)-7:]
	}

	i, _ = strconv.Atoi(whole)

	if frac == "" {
		return i % limit, 0, 0, 0, 0
	}

	if len(frac) > 7 {
		frac = frac[:7]
	}

	trimmed := strings.TrimRight(frac, "0")

	f, _ = strconv.Atoi(frac)
	t, _ = strconv.Atoi(trimmed)

	return i % limit, len(frac), len(trimmed), f, t
}
