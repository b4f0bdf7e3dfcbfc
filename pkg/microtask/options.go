package microtask

import "log/slog"

// Option is a functional option for configuring a queue
type Option func(*options)

type options struct {
	drainLimit int
	logger     *slog.Logger
}

// WithDrainLimit bounds how many tasks a single drain pass executes before it
// yields back to the host. Zero or negative means unbounded.
func WithDrainLimit(n int) Option {
	return func(o *options) {
		o.drainLimit = max(n, 0)
	}
}

// WithLogger sets the logger for the queue
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithConfig applies the settings loaded from the environment
func WithConfig(cfg Config) Option {
	return WithDrainLimit(cfg.DrainLimit)
}
