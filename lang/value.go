package lang

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"maps"
	"strconv"
	"strings"
)

// undefined is the type of [Undefined].
type undefined struct{}

// Undefined is the value of an elided list element, the undefined keyword and
// an identifier with no binding. It is distinct from nil, which represents
// null.
var Undefined any = undefined{}

func (undefined) String() string { return "undefined" }

func (undefined) MarshalJSON() ([]byte, error) { return []byte("null"), nil }

// IsUndefined reports whether v is [Undefined].
func IsUndefined(v any) bool {
	_, ok := v.(undefined)

	return ok
}

// Func is the native signature of a callable binding.
type Func func(ctx context.Context, args ...any) (any, error)

// Locals maps identifier names to values. Values used as call targets must be
// a [Func] or any other Go function.
type Locals map[string]any

// Merge returns the union of the given tables. Later tables take precedence
// on name collisions. Nil tables are skipped.
func Merge(tables ...Locals) Locals {
	n := 0
	for _, t := range tables {
		n += len(t)
	}

	out := make(Locals, n)
	for _, t := range tables {
		maps.Copy(out, t)
	}

	return out
}

// Record is the value of an evaluated object literal: a string-keyed map that
// remembers insertion order.
type Record struct {
	keys   []string
	values map[string]any
}

// NewRecord returns an empty record.
func NewRecord() *Record {
	return &Record{values: make(map[string]any)}
}

// Set stores v under key, keeping the original position of an existing key.
func (r *Record) Set(key string, v any) {
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}

	r.values[key] = v
}

// Get returns the value stored under key.
func (r *Record) Get(key string) (any, bool) {
	v, ok := r.values[key]

	return v, ok
}

// Keys returns the keys in insertion order.
func (r *Record) Keys() []string { return append([]string(nil), r.keys...) }

// Len returns the number of keys.
func (r *Record) Len() int { return len(r.keys) }

// All returns an iterator over keys and values in insertion order.
func (r *Record) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		for _, k := range r.keys {
			if !yield(k, r.values[k]) {
				return
			}
		}
	}
}

// Map returns the record as an unordered map.
func (r *Record) Map() map[string]any { return maps.Clone(r.values) }

// MarshalJSON encodes the record as a JSON object in key order.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}

		val, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, err
		}

		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// Stringify converts an evaluated value to the text it contributes to a
// rendered phrase.
//
// nil and [Undefined] contribute nothing; numbers use their shortest decimal
// form; lists join their elements with ","; records render as JSON.
func Stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case undefined:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(x)
	case []any:
		part := make([]string, len(x))
		for i, e := range x {
			part[i] = Stringify(e)
		}

		return strings.Join(part, ",")
	case *Record:
		buf, err := x.MarshalJSON()
		if err != nil {
			return fmt.Sprint(x.values)
		}

		return string(buf)
	case fmt.Stringer:
		return x.String()
	case error:
		return x.Error()
	default:
		return fmt.Sprint(x)
	}
}

// Join concatenates the text of evaluated phrase parts.
func Join(parts []any) string {
	var b strings.Builder

	for _, p := range parts {
		b.WriteString(Stringify(p))
	}

	return b.String()
}
