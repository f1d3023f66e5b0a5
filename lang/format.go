package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/sanity-io/litter"
)

// MarshalJSON implements json.Marshaler for Phrase.
func (p Phrase) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.ToNative())
}

// ToNative converts the phrase to a slice of nested maps with a "type" key per
// node, suitable for generic encoders.
func (p Phrase) ToNative() []any {
	out := make([]any, len(p))
	for i, e := range p {
		out[i] = ToNative(e)
	}

	return out
}

// ToNative converts a node to nested maps.
func ToNative(e Expr) map[string]any {
	switch n := e.(type) {
	case *Literal:
		v := n.Value
		if IsUndefined(v) {
			return map[string]any{"type": "Literal", "undefined": true}
		}

		return map[string]any{"type": "Literal", "value": v}

	case *Identifier:
		return map[string]any{"type": "Identifier", "name": n.Name}

	case *Call:
		return map[string]any{
			"type":   "CallExpression",
			"callee": n.Callee,
			"args":   nativeList(n.Args),
		}

	case *Array:
		return map[string]any{
			"type":     "ArrayExpression",
			"elements": nativeList(n.Elements),
		}

	case *Object:
		props := make([]any, len(n.Properties))
		for i, p := range n.Properties {
			props[i] = map[string]any{"key": p.Key, "value": ToNative(p.Value)}
		}

		return map[string]any{"type": "ObjectExpression", "properties": props}

	case *Template:
		return map[string]any{
			"type":  "TemplateLiteral",
			"parts": nativeList(n.Parts),
		}

	default:
		return map[string]any{"type": fmt.Sprintf("%T", e)}
	}
}

func nativeList(exprs []Expr) []any {
	out := make([]any, len(exprs))
	for i, e := range exprs {
		out[i] = ToNative(e)
	}

	return out
}

// FormatJSON writes the phrase tree as JSON to the writer.
func (p Phrase) FormatJSON(_ context.Context, w io.Writer, indent int) error {
	var (
		jsonData []byte
		err      error
	)

	if indent > 0 {
		jsonData, err = json.MarshalIndent(p, "", strings.Repeat(" ", indent))
	} else {
		jsonData, err = json.Marshal(p)
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(jsonData))

	return err
}

// FormatYAML writes the phrase tree as YAML to the writer.
func (p Phrase) FormatYAML(ctx context.Context, w io.Writer, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	yamlData, err := yaml.MarshalContext(ctx, p.ToNative(), opts...)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(w, string(yamlData))

	return err
}

// FormatGo writes the phrase as Go composite literals.
func (p Phrase) FormatGo(_ context.Context, w io.Writer, compact bool) error {
	opts := litter.Options{
		Compact:           compact,
		StripPackageNames: false,
		HidePrivateFields: true,
		Separator:         " ",
	}

	_, err := fmt.Fprintln(w, opts.Sdump(p))

	return err
}

// FormatTree writes an indented outline of the phrase, one node per line.
func (p Phrase) FormatTree(_ context.Context, w io.Writer, indent int) error {
	if indent <= 0 {
		indent = 2
	}

	var b strings.Builder

	for _, e := range p {
		formatNode(&b, e, "", indent, 0)
	}

	_, err := io.WriteString(w, b.String())

	return err
}

func formatNode(b *strings.Builder, e Expr, label string, indent, depth int) {
	b.WriteString(strings.Repeat(" ", indent*depth))

	if label != "" {
		b.WriteString(label)
		b.WriteString(": ")
	}

	switch n := e.(type) {
	case *Literal:
		fmt.Fprintf(b, "Literal %s\n", n.String())

	case *Identifier:
		fmt.Fprintf(b, "Identifier %s\n", n.Name)

	case *Call:
		fmt.Fprintf(b, "CallExpression %s\n", n.Callee)

		for _, a := range n.Args {
			formatNode(b, a, "", indent, depth+1)
		}

	case *Array:
		b.WriteString("ArrayExpression\n")

		for _, el := range n.Elements {
			formatNode(b, el, "", indent, depth+1)
		}

	case *Object:
		b.WriteString("ObjectExpression\n")

		for _, p := range n.Properties {
			formatNode(b, p.Value, p.Key, indent, depth+1)
		}

	case *Template:
		b.WriteString("TemplateLiteral\n")

		for _, part := range n.Parts {
			formatNode(b, part, "", indent, depth+1)
		}

	default:
		fmt.Fprintf(b, "%T\n", e)
	}
}
