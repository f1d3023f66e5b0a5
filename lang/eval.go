package lang

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"reflect"
	"strings"

	"github.com/ardnew/lingo/log"
)

// Interpret evaluates each top-level node of the phrase against locals and
// returns the values in order.
//
// Interpret keeps no state between calls; the same phrase may be evaluated
// concurrently with different locals.
func Interpret(
	ctx context.Context,
	phrase Phrase,
	locals Locals,
	opts ...Option,
) ([]any, error) {
	ec := &evalContext{
		ctx:    ctx,
		locals: locals,
		logger: makeOptions(opts...).logger,
	}

	parts := make([]any, len(phrase))

	for i, e := range phrase {
		v, err := ec.evaluate(e)
		if err != nil {
			return nil, err
		}

		parts[i] = v
	}

	return parts, nil
}

// Eval evaluates a single expression against locals.
func Eval(ctx context.Context, e Expr, locals Locals, opts ...Option) (any, error) {
	ec := &evalContext{
		ctx:    ctx,
		locals: locals,
		logger: makeOptions(opts...).logger,
	}

	return ec.evaluate(e)
}

// Render evaluates the phrase and joins the text of its parts.
func Render(
	ctx context.Context,
	phrase Phrase,
	locals Locals,
	opts ...Option,
) (string, error) {
	parts, err := Interpret(ctx, phrase, locals, opts...)
	if err != nil {
		return "", err
	}

	return Join(parts), nil
}

// evalContext holds the state for recursive evaluation.
type evalContext struct {
	ctx    context.Context
	locals Locals
	logger log.Logger
}

// evaluate recursively evaluates a node to its Go representation.
func (ec *evalContext) evaluate(e Expr) (any, error) {
	switch n := e.(type) {
	case *Literal:
		return n.Value, nil

	case *Identifier:
		return ec.evaluateIdentifier(n), nil

	case *Call:
		return ec.evaluateCall(n)

	case *Array:
		return ec.evaluateArray(n)

	case *Object:
		return ec.evaluateObject(n)

	case *Template:
		return ec.evaluateTemplate(n)

	default:
		return nil, ErrInternal.With(
			slog.String("reason", "unrecognized node"),
			slog.String("type", fmt.Sprintf("%T", e)),
		)
	}
}

// evaluateIdentifier resolves a name. Unbound names yield [Undefined].
func (ec *evalContext) evaluateIdentifier(n *Identifier) any {
	v, ok := ec.locals[n.Name]
	if !ok {
		ec.logger.TraceContext(ec.ctx, "unbound identifier",
			slog.String("name", n.Name))

		return Undefined
	}

	return v
}

func (ec *evalContext) evaluateCall(n *Call) (any, error) {
	fn, ok := ec.locals[n.Callee]
	if !ok {
		return nil, ErrNotCallable.With(
			slog.String("name", n.Callee),
			slog.String("reason", "unbound"),
		)
	}

	args := make([]any, len(n.Args))

	for i, a := range n.Args {
		v, err := ec.evaluate(a)
		if err != nil {
			return nil, err
		}

		args[i] = v
	}

	ec.logger.TraceContext(ec.ctx, "call",
		slog.String("name", n.Callee),
		slog.Int("arg_count", len(args)))

	return Invoke(ec.ctx, n.Callee, fn, args...)
}

func (ec *evalContext) evaluateArray(n *Array) ([]any, error) {
	out := make([]any, len(n.Elements))

	for i, e := range n.Elements {
		v, err := ec.evaluate(e)
		if err != nil {
			return nil, err
		}

		out[i] = v
	}

	return out, nil
}

func (ec *evalContext) evaluateObject(n *Object) (*Record, error) {
	rec := NewRecord()

	for _, p := range n.Properties {
		v, err := ec.evaluate(p.Value)
		if err != nil {
			return nil, err
		}

		rec.Set(p.Key, v)
	}

	return rec, nil
}

func (ec *evalContext) evaluateTemplate(n *Template) (string, error) {
	var b strings.Builder

	for _, part := range n.Parts {
		v, err := ec.evaluate(part)
		if err != nil {
			return "", err
		}

		b.WriteString(Stringify(v))
	}

	return b.String(), nil
}

var (
	contextType = reflect.TypeFor[context.Context]()
	errorType   = reflect.TypeFor[error]()
)

// Invoke calls fn with args. fn is either a [Func] or an arbitrary Go
// function, which is called through reflection:
//
//   - a leading context.Context parameter receives ctx;
//   - arguments are converted to the parameter types where Go permits
//     (numbers between kinds, for instance), nil and [Undefined] become zero
//     values, and missing trailing arguments are zero;
//   - a trailing error result is returned as the call's error, and a
//     function without other results yields [Undefined].
func Invoke(ctx context.Context, name string, fn any, args ...any) (any, error) {
	switch f := fn.(type) {
	case Func:
		if f == nil {
			return nil, notCallable(name, fn)
		}

		v, err := f(ctx, args...)

		return wrapCallError(name, v, err)

	case func(context.Context, ...any) (any, error):
		if f == nil {
			return nil, notCallable(name, fn)
		}

		v, err := f(ctx, args...)

		return wrapCallError(name, v, err)

	case func(...any) any:
		if f == nil {
			return nil, notCallable(name, fn)
		}

		return f(args...), nil
	}

	fv := reflect.ValueOf(fn)
	if fv.Kind() != reflect.Func || fv.IsNil() {
		return nil, notCallable(name, fn)
	}

	in, err := callArgs(ctx, name, fv.Type(), args)
	if err != nil {
		return nil, err
	}

	out := fv.Call(in)

	if n := len(out); n > 0 && fv.Type().Out(n-1).Implements(errorType) {
		if e := out[n-1].Interface(); e != nil {
			return wrapCallError(name, nil, e.(error))
		}

		out = out[:n-1]
	}

	if len(out) == 0 {
		return Undefined, nil
	}

	return out[0].Interface(), nil
}

func notCallable(name string, fn any) error {
	return ErrNotCallable.With(
		slog.String("name", name),
		slog.String("type", fmt.Sprintf("%T", fn)),
	)
}

func wrapCallError(name string, v any, err error) (any, error) {
	if err != nil {
		return nil, ErrCall.Wrap(err).With(slog.String("name", name))
	}

	return v, nil
}

// callArgs converts evaluated arguments to the parameter list of ft.
func callArgs(
	ctx context.Context,
	name string,
	ft reflect.Type,
	args []any,
) ([]reflect.Value, error) {
	in := make([]reflect.Value, 0, ft.NumIn())
	params := ft.NumIn()
	first := 0

	if params > 0 && ft.In(0) == contextType {
		in = append(in, reflect.ValueOf(ctx))
		first = 1
	}

	fixed := params - first
	if ft.IsVariadic() {
		fixed--
	}

	for i := range fixed {
		pt := ft.In(first + i)

		var arg any = Undefined
		if i < len(args) {
			arg = args[i]
		}

		v, err := convertArg(arg, pt)
		if err != nil {
			return nil, ErrCall.Wrap(err).With(
				slog.String("name", name),
				slog.Int("arg", i),
			)
		}

		in = append(in, v)
	}

	if ft.IsVariadic() {
		et := ft.In(params - 1).Elem()

		for i := fixed; i < len(args); i++ {
			v, err := convertArg(args[i], et)
			if err != nil {
				return nil, ErrCall.Wrap(err).With(
					slog.String("name", name),
					slog.Int("arg", i),
				)
			}

			in = append(in, v)
		}
	}

	return in, nil
}

func convertArg(arg any, t reflect.Type) (reflect.Value, error) {
	if arg == nil {
		return reflect.Zero(t), nil
	}

	v := reflect.ValueOf(arg)

	if IsUndefined(arg) && !v.Type().AssignableTo(t) {
		return reflect.Zero(t), nil
	}

	switch {
	case v.Type().AssignableTo(t):
		return v, nil

	case isNumeric(v.Kind()) && isNumeric(t.Kind()):
		if v.CanFloat() && !isFloat(t.Kind()) {
			if f := v.Float(); f != math.Trunc(f) || math.IsInf(f, 0) {
				return reflect.Value{}, fmt.Errorf("cannot use %v as %s", f, t)
			}
		}

		return v.Convert(t), nil

	case t.Kind() == reflect.String:
		return reflect.ValueOf(Stringify(arg)).Convert(t), nil
	}

	return reflect.Value{}, fmt.Errorf("cannot use %T as %s", arg, t)
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64, reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

func isFloat(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}
