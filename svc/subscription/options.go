package subscription

import (
	"log/slog"
	"time"
)

type options struct {
	log *slog.Logger
	now func() time.Time
}

func newOptions(opts []Option) options {
	o := options{
		log: slog.New(slog.DiscardHandler),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Option configures a Synchronizer or a Service.
type Option func(*options)

// WithLogger sets the logger. Events are discarded by default.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}
