package eventloop

import "log/slog"

// Option is a functional option for configuring a loop
type Option func(*loopOptions)

type loopOptions struct {
	buffer  int
	logger  *slog.Logger
	onPanic func(recovered any)
}

// WithBuffer sets the initial capacity of the callback queue.
// The queue grows past it; Post never blocks.
func WithBuffer(n int) Option {
	return func(o *loopOptions) {
		if n > 0 {
			o.buffer = n
		}
	}
}

// WithLoopLogger sets the logger for the loop
func WithLoopLogger(logger *slog.Logger) Option {
	return func(o *loopOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithPanicHandler registers a hook called with the value recovered from a
// panicking callback, on the loop goroutine, after the panic has been logged.
func WithPanicHandler(fn func(recovered any)) Option {
	return func(o *loopOptions) {
		o.onPanic = fn
	}
}

// WithConfig applies the settings loaded from the environment
func WithConfig(cfg Config) Option {
	return WithBuffer(cfg.Buffer)
}
