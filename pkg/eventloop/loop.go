package eventloop

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/dmitrymomot/microtask/pkg/logger"
)

const defaultBuffer = 256

// Loop runs posted callbacks one at a time, in posting order, on a single
// goroutine. It is the execution context a microtask.Queue drains on.
type Loop struct {
	mu      sync.Mutex
	id      uuid.UUID
	pending []func()
	wake    chan struct{}
	started bool
	stopped bool
	cancel  context.CancelFunc
	done    chan struct{}

	logger  *slog.Logger
	logCtx  context.Context
	onPanic func(recovered any)
}

// New creates a loop. Callbacks may be posted before Start; they run once the
// loop is started.
func New(opts ...Option) *Loop {
	options := &loopOptions{
		buffer: defaultBuffer,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	id := uuid.New()
	handler := logger.NewLogHandlerDecorator(options.logger.Handler(), logger.LoopIDExtractor)
	return &Loop{
		id:      id,
		pending: make([]func(), 0, options.buffer),
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
		logger:  slog.New(handler).With(logger.Component("eventloop")),
		logCtx:  logger.ContextWithLoopID(context.Background(), id),
		onPanic: options.onPanic,
	}
}

// ID returns the loop identifier used in log records
func (l *Loop) ID() uuid.UUID {
	return l.id
}

// Start begins running callbacks in the background.
// It runs until the provided context is cancelled or Stop is called.
func (l *Loop) Start(ctx context.Context) error {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return ErrLoopStopped
	}
	if l.started {
		l.mu.Unlock()
		return ErrLoopAlreadyStarted
	}
	ctx, l.cancel = context.WithCancel(logger.ContextWithLoopID(ctx, l.id))
	l.started = true
	queued := len(l.pending)
	l.mu.Unlock()

	go l.run(ctx)

	l.logger.InfoContext(ctx, "event loop started", logger.Pending(queued))
	return nil
}

// Stop stops the loop and waits for the callback in progress to return.
// Callbacks that have not started yet are dropped. Stop must not be called
// from a callback running on the loop.
func (l *Loop) Stop() error {
	l.mu.Lock()
	if !l.started {
		l.mu.Unlock()
		return ErrLoopNotStarted
	}
	if l.stopped {
		l.mu.Unlock()
		<-l.done
		return nil
	}
	l.stopped = true
	cancel := l.cancel
	l.mu.Unlock()

	cancel()
	<-l.done

	l.mu.Lock()
	dropped := len(l.pending)
	l.pending = nil
	l.mu.Unlock()

	l.logger.InfoContext(l.logCtx, "event loop stopped", logger.Pending(dropped))
	return nil
}

// Run starts the loop and returns a function suitable for errgroup
func (l *Loop) Run(ctx context.Context) func() error {
	return func() error {
		if err := l.Start(ctx); err != nil {
			return err
		}

		<-ctx.Done()

		return l.Stop()
	}
}

// Post schedules fn to run on the loop after every callback posted before it.
// It never blocks and may be called from any goroutine, including from a
// callback running on the loop. A nil Loop refuses every callback with
// ErrLoopStopped.
func (l *Loop) Post(fn func()) error {
	if fn == nil {
		return ErrNilCallback
	}
	if l == nil {
		return ErrLoopStopped
	}

	l.mu.Lock()
	if l.stopped || l.exited() {
		l.mu.Unlock()
		return ErrLoopStopped
	}
	l.pending = append(l.pending, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return nil
}

// Wait blocks until every callback posted before the call has run.
func (l *Loop) Wait(ctx context.Context) error {
	if l == nil {
		return ErrLoopStopped
	}
	l.mu.Lock()
	started := l.started
	l.mu.Unlock()
	if !started {
		return ErrLoopNotStarted
	}

	reached := make(chan struct{})
	if err := l.Post(func() { close(reached) }); err != nil {
		return err
	}

	select {
	case <-reached:
		return nil
	case <-l.done:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pending returns the number of callbacks waiting to run
func (l *Loop) Pending() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pending)
}

// exited reports whether the loop goroutine has returned
func (l *Loop) exited() bool {
	select {
	case <-l.done:
		return true
	default:
		return false
	}
}

// run is the loop goroutine
func (l *Loop) run(ctx context.Context) {
	defer close(l.done)

	for {
		l.mu.Lock()
		batch := l.pending
		if len(batch) > 0 {
			l.pending = make([]func(), 0, cap(batch))
		}
		l.mu.Unlock()

		for i, fn := range batch {
			if ctx.Err() != nil {
				l.requeue(batch[i:])
				return
			}
			l.execute(ctx, fn)
		}
		if len(batch) > 0 {
			continue
		}

		select {
		case <-ctx.Done():
			return
		case <-l.wake:
		}
	}
}

// requeue puts callbacks that were taken but not run back at the head of the queue
func (l *Loop) requeue(fns []func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pending = append(fns, l.pending...)
}

// execute runs a single callback, recovering a panic so that one failing
// callback does not take the loop down with it.
func (l *Loop) execute(ctx context.Context, fn func()) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		l.logger.ErrorContext(ctx, "callback panicked",
			logger.Error(fmt.Errorf("panic in callback: %v", r)))
		if l.onPanic != nil {
			l.onPanic(r)
		}
	}()

	fn()
}
