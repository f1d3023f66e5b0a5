package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Styles used by the pretty handler.
var (
	styleKey     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleString  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	styleNumber  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	styleTrue    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	styleFalse   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	styleTime    = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	styleMessage = lipgloss.NewStyle().Bold(true)

	styleLevel = map[Level]lipgloss.Style{
		LevelTrace: lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
		LevelDebug: lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		LevelInfo:  lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		LevelWarn:  lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		LevelError: lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
	}
)

// prettyHandler writes colorized records for a terminal. In text format each
// record is one line of key=value pairs; in JSON format each record is an
// indented object.
type prettyHandler struct {
	opts   slog.HandlerOptions
	format Format
	mu     *sync.Mutex
	w      io.Writer
	attrs  []slog.Attr
	groups []string
}

func newPrettyHandler(
	w io.Writer,
	format Format,
	opts *slog.HandlerOptions,
) *prettyHandler {
	return &prettyHandler{
		opts:   *opts,
		format: format,
		mu:     &sync.Mutex{},
		w:      w,
	}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = append(slices.Clip(h.attrs), h.qualify(attrs)...)

	return &c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.groups = append(slices.Clip(h.groups), name)

	return &c
}

// qualify prefixes attribute keys with the open groups.
func (h *prettyHandler) qualify(attrs []slog.Attr) []slog.Attr {
	if len(h.groups) == 0 {
		return attrs
	}

	prefix := strings.Join(h.groups, ".") + "."
	out := make([]slog.Attr, len(attrs))

	for i, a := range attrs {
		out[i] = slog.Attr{Key: prefix + a.Key, Value: a.Value}
	}

	return out
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make([]slog.Attr, 0, 4+len(h.attrs)+r.NumAttrs())

	if !r.Time.IsZero() {
		fields = append(fields, h.replace(slog.Time(slog.TimeKey, r.Time)))
	}

	fields = append(fields, h.replace(slog.Any(slog.LevelKey, r.Level)))

	if h.opts.AddSource {
		if src := r.Source(); src != nil {
			fields = append(fields,
				slog.String(slog.SourceKey, fmt.Sprintf("%s:%d", src.File, src.Line)))
		}
	}

	fields = append(fields, slog.String(slog.MessageKey, r.Message))
	fields = append(fields, h.attrs...)

	var recAttrs []slog.Attr

	r.Attrs(func(a slog.Attr) bool {
		recAttrs = append(recAttrs, a)

		return true
	})

	fields = append(fields, h.qualify(recAttrs)...)

	var buf bytes.Buffer

	if h.format == FormatJSON {
		h.writeJSON(&buf, fields, Level(r.Level))
	} else {
		h.writeText(&buf, fields, Level(r.Level))
	}

	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyHandler) replace(a slog.Attr) slog.Attr {
	if h.opts.ReplaceAttr == nil {
		return a
	}

	return h.opts.ReplaceAttr(nil, a)
}

func (h *prettyHandler) writeText(buf *bytes.Buffer, fields []slog.Attr, level Level) {
	for _, a := range fields {
		if a.Equal(slog.Attr{}) {
			continue
		}

		if buf.Len() > 0 {
			buf.WriteByte(' ')
		}

		buf.WriteString(styleKey.Render(a.Key + "="))
		buf.WriteString(h.renderValue(a, level))
	}
}

func (h *prettyHandler) writeJSON(buf *bytes.Buffer, fields []slog.Attr, level Level) {
	buf.WriteString("{")

	first := true

	for _, a := range fields {
		if a.Equal(slog.Attr{}) {
			continue
		}

		if !first {
			buf.WriteByte(',')
		}

		first = false

		buf.WriteString("\n  ")
		buf.WriteString(styleKey.Render(strconv.Quote(a.Key)))
		buf.WriteString(": ")
		buf.WriteString(h.renderValue(a, level))
	}

	buf.WriteString("\n}")
}

func (h *prettyHandler) renderValue(a slog.Attr, level Level) string {
	v := a.Value.Resolve()

	switch {
	case a.Key == slog.LevelKey:
		style, ok := styleLevel[level]
		if !ok {
			style = styleLevel[LevelInfo]
		}

		return style.Render(h.quote(v.String()))

	case a.Key == slog.MessageKey:
		return styleMessage.Render(h.quote(v.String()))
	}

	switch v.Kind() {
	case slog.KindString:
		return styleString.Render(h.quote(v.String()))

	case slog.KindInt64, slog.KindUint64, slog.KindFloat64:
		return styleNumber.Render(v.String())

	case slog.KindDuration:
		return styleNumber.Render(h.quote(v.Duration().String()))

	case slog.KindBool:
		if v.Bool() {
			return styleTrue.Render("true")
		}

		return styleFalse.Render("false")

	case slog.KindTime:
		return styleTime.Render(h.quote(v.Time().Format(time.RFC3339)))

	case slog.KindGroup:
		part := make([]string, 0, len(v.Group()))
		for _, g := range v.Group() {
			part = append(part, g.Key+"="+g.Value.String())
		}

		return styleString.Render(h.quote("{" + strings.Join(part, " ") + "}"))

	default:
		return styleString.Render(h.quote(v.String()))
	}
}

// quote quotes s in JSON format. Text format shows strings bare.
func (h *prettyHandler) quote(s string) string {
	if h.format == FormatJSON {
		return strconv.Quote(s)
	}

	return s
}
