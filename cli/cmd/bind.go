package cmd

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/expr-lang/expr"

	"github.com/ardnew/lingo/lang"
	"github.com/ardnew/lingo/loader"
)

// Bindings are the per-call locals given on the command line.
type Bindings struct {
	Set     []string `help:"Bind name to the value of an expr-lang expression (name=expr)." placeholder:"NAME=EXPR" short:"s"`
	Context string   `help:"Read locals from a JSON, YAML or TOML file."                     placeholder:"FILE"      type:"existingfile"`
}

// locals returns the bindings as locals. The context file is read first;
// each --set expression is then evaluated in order and may refer to the
// names bound before it.
func (b Bindings) locals(ctx context.Context) (lang.Locals, error) {
	locals := lang.Locals{}

	if b.Context != "" {
		data, err := os.ReadFile(b.Context)
		if err != nil {
			return nil, lang.ErrReadInput.Wrap(err).
				With(slog.String("file", b.Context))
		}

		phrases, err := loader.Decode(b.Context, data)
		if err != nil {
			return nil, err
		}

		for k, v := range phrases {
			locals[k] = v
		}
	}

	for _, set := range b.Set {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name, value, err := evalBinding(set, locals)
		if err != nil {
			return nil, err
		}

		locals[name] = value
	}

	return locals, nil
}

// evalBinding evaluates one "name=expr" binding with env as the expression
// environment.
func evalBinding(set string, env lang.Locals) (string, any, error) {
	name, src, ok := strings.Cut(set, "=")
	name = strings.TrimSpace(name)

	if !ok || name == "" {
		return "", nil, ErrInvalidBinding.With(
			slog.String("binding", set),
			slog.String("reason", "expected NAME=EXPR"),
		)
	}

	program, err := expr.Compile(src, expr.Env(map[string]any(env)))
	if err != nil {
		return "", nil, ErrInvalidBinding.Wrap(err).With(slog.String("name", name))
	}

	value, err := expr.Run(program, map[string]any(env))
	if err != nil {
		return "", nil, ErrInvalidBinding.Wrap(err).With(slog.String("name", name))
	}

	return name, value, nil
}
