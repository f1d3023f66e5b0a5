package lang

import (
	"github.com/ardnew/lingo/log"
)

// options configures parsing and evaluation.
type options struct {
	logger log.Logger
}

// Option is a functional option for [Parse] and [Interpret].
type Option func(*options)

// WithLogger sets the logger used for trace output.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func makeOptions(opts ...Option) options {
	var o options

	for _, opt := range opts {
		opt(&o)
	}

	return o
}
