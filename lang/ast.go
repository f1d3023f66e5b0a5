package lang

import (
	"iter"
	"slices"
	"strconv"
	"strings"
)

// Expr is a node of a phrase syntax tree.
//
// The set of node types is closed: only the types declared in this package
// implement Expr. Code dispatching on nodes uses an exhaustive type switch.
type Expr interface {
	// String renders the node in phrase expression syntax.
	String() string

	expr()
}

// Literal is a constant value: a string, float64, bool, nil (null) or
// [Undefined].
type Literal struct {
	Value any
}

// Identifier is a reference to a binding in the locals table.
type Identifier struct {
	Name string
}

// Call invokes the callable bound to Callee with the evaluated Args.
type Call struct {
	Callee string
	Args   []Expr
}

// Array is a list literal.
type Array struct {
	Elements []Expr
}

// Property is a single key and value of an [Object].
type Property struct {
	Key   string
	Value Expr
}

// Object is a record literal. Keys are unique and kept in first-insertion
// order.
type Object struct {
	Properties []Property
}

// Template is a backtick string whose parts are concatenated on evaluation.
type Template struct {
	Parts []Expr
}

func (*Literal) expr()    {}
func (*Identifier) expr() {}
func (*Call) expr()       {}
func (*Array) expr()      {}
func (*Object) expr()     {}
func (*Template) expr()   {}

// Set stores value under key. A key already present keeps its position and
// takes the new value.
func (o *Object) Set(key string, value Expr) {
	for i := range o.Properties {
		if o.Properties[i].Key == key {
			o.Properties[i].Value = value

			return
		}
	}

	o.Properties = append(o.Properties, Property{Key: key, Value: value})
}

// Get returns the expression stored under key.
func (o *Object) Get(key string) (Expr, bool) {
	for _, p := range o.Properties {
		if p.Key == key {
			return p.Value, true
		}
	}

	return nil, false
}

// Keys returns the property keys in order.
func (o *Object) Keys() []string {
	keys := make([]string, len(o.Properties))
	for i, p := range o.Properties {
		keys[i] = p.Key
	}

	return keys
}

// Phrase is the parsed form of a phrase: top-level text and interpolations in
// source order.
type Phrase []Expr

// All returns an iterator over every node of the phrase in depth-first
// pre-order.
func (p Phrase) All() iter.Seq[Expr] {
	return func(yield func(Expr) bool) {
		for _, e := range p {
			if !walk(e, yield) {
				return
			}
		}
	}
}

func walk(e Expr, yield func(Expr) bool) bool {
	if !yield(e) {
		return false
	}

	var children []Expr

	switch n := e.(type) {
	case *Call:
		children = n.Args
	case *Array:
		children = n.Elements
	case *Object:
		for _, p := range n.Properties {
			children = append(children, p.Value)
		}
	case *Template:
		children = n.Parts
	}

	for _, c := range children {
		if !walk(c, yield) {
			return false
		}
	}

	return true
}

// Identifiers returns the sorted, distinct names referenced by identifiers and
// calls in the phrase.
func (p Phrase) Identifiers() []string {
	var names []string

	for e := range p.All() {
		switch n := e.(type) {
		case *Identifier:
			names = append(names, n.Name)
		case *Call:
			names = append(names, n.Callee)
		}
	}

	slices.Sort(names)

	return slices.Compact(names)
}

// String renders the phrase back to source form. Parsing the result yields an
// equal phrase.
func (p Phrase) String() string {
	var b strings.Builder

	for _, e := range p {
		if s, ok := rawText(e, false); ok {
			b.WriteString(s)

			continue
		}

		b.WriteString("${")
		b.WriteString(e.String())
		b.WriteString("}")
	}

	return b.String()
}

func (n *Literal) String() string {
	switch v := n.Value.(type) {
	case string:
		return quote(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case nil:
		return "null"
	default:
		if IsUndefined(v) {
			return "undefined"
		}

		return Stringify(v)
	}
}

func (n *Identifier) String() string { return n.Name }

func (n *Call) String() string {
	return n.Callee + "(" + joinExprs(n.Args) + ")"
}

func (n *Array) String() string {
	return "[" + joinExprs(n.Elements) + "]"
}

func (n *Object) String() string {
	var b strings.Builder

	b.WriteByte('{')

	for i, p := range n.Properties {
		if i > 0 {
			b.WriteString(", ")
		}

		b.WriteString(p.Key)
		b.WriteString(": ")
		b.WriteString(p.Value.String())
	}

	b.WriteByte('}')

	return b.String()
}

func (n *Template) String() string {
	var b strings.Builder

	b.WriteByte('`')

	for _, part := range n.Parts {
		if s, ok := rawText(part, true); ok {
			b.WriteString(s)

			continue
		}

		b.WriteString("${")
		b.WriteString(part.String())
		b.WriteByte('}')
	}

	b.WriteByte('`')

	return b.String()
}

// rawText returns the text of a string literal that can be written without
// an enclosing interpolation.
func rawText(e Expr, template bool) (string, bool) {
	lit, ok := e.(*Literal)
	if !ok {
		return "", false
	}

	s, ok := lit.Value.(string)
	if !ok || strings.Contains(s, "${") || strings.HasSuffix(s, "$") ||
		(template && strings.ContainsRune(s, '`')) {
		return "", false
	}

	return s, true
}

func joinExprs(exprs []Expr) string {
	part := make([]string, len(exprs))
	for i, e := range exprs {
		part[i] = e.String()
	}

	return strings.Join(part, ", ")
}

// quote renders s as a double-quoted phrase string using only the escapes
// the tokenizer recognizes.
func quote(s string) string {
	var b strings.Builder

	b.WriteByte('"')

	for i := range len(s) {
		switch c := s[i]; c {
		case '"', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteByte(c)
		}
	}

	b.WriteByte('"')

	return b.String()
}
