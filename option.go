package slimasync

import (
	"github.com/fxsml/slimasync/fsa"
)

// Conformer decides whether a lifecycle action has the standard shape.
// Non-conforming actions are not dispatched; the original action is
// forwarded to the next middleware instead.
type Conformer func(action any) bool

// Option configures an Async instance.
type Option func(*options)

type options struct {
	logger    Logger
	logConfig LogConfig
	conform   Conformer
}

func parseOptions(opts []Option) options {
	o := options{
		conform: fsa.IsFSA,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger sets the logger. slog.Default() is used by default.
func WithLogger(l Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithLogConfig overrides the default log levels and arguments.
func WithLogConfig(cfg LogConfig) Option {
	return func(o *options) {
		o.logConfig = cfg
	}
}

// WithConformer replaces fsa.IsFSA as the standard shape check.
func WithConformer(c Conformer) Option {
	return func(o *options) {
		if c != nil {
			o.conform = c
		}
	}
}
