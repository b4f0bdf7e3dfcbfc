package eventloop_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/microtask/pkg/eventloop"
	"github.com/dmitrymomot/microtask/pkg/microtask"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startLoop(t *testing.T, opts ...eventloop.Option) *eventloop.Loop {
	t.Helper()

	opts = append([]eventloop.Option{eventloop.WithLoopLogger(quietLogger())}, opts...)
	loop := eventloop.New(opts...)
	require.NoError(t, loop.Start(context.Background()))
	t.Cleanup(func() { _ = loop.Stop() })
	return loop
}

func TestLoop_Lifecycle(t *testing.T) {
	t.Parallel()

	t.Run("start twice", func(t *testing.T) {
		t.Parallel()

		loop := startLoop(t)
		assert.ErrorIs(t, loop.Start(context.Background()), eventloop.ErrLoopAlreadyStarted)
	})

	t.Run("stop before start", func(t *testing.T) {
		t.Parallel()

		loop := eventloop.New(eventloop.WithLoopLogger(quietLogger()))
		assert.ErrorIs(t, loop.Stop(), eventloop.ErrLoopNotStarted)
	})

	t.Run("stop is idempotent and terminal", func(t *testing.T) {
		t.Parallel()

		loop := eventloop.New(eventloop.WithLoopLogger(quietLogger()))
		require.NoError(t, loop.Start(context.Background()))

		require.NoError(t, loop.Stop())
		require.NoError(t, loop.Stop())

		assert.ErrorIs(t, loop.Start(context.Background()), eventloop.ErrLoopStopped)
		assert.ErrorIs(t, loop.Post(func() {}), eventloop.ErrLoopStopped)
		assert.ErrorIs(t, loop.Wait(context.Background()), eventloop.ErrLoopStopped)
	})

	t.Run("cancelled context stops the loop", func(t *testing.T) {
		t.Parallel()

		loop := eventloop.New(eventloop.WithLoopLogger(quietLogger()))
		ctx, cancel := context.WithCancel(context.Background())
		require.NoError(t, loop.Start(ctx))
		cancel()

		require.Eventually(t, func() bool {
			return errors.Is(loop.Post(func() {}), eventloop.ErrLoopStopped)
		}, time.Second, time.Millisecond)
		assert.NoError(t, loop.Stop())
	})

	t.Run("run with errgroup", func(t *testing.T) {
		t.Parallel()

		loop := eventloop.New(eventloop.WithLoopLogger(quietLogger()))
		ctx, cancel := context.WithCancel(context.Background())

		g, gctx := errgroup.WithContext(ctx)
		g.Go(loop.Run(gctx))

		ran := make(chan struct{})
		require.NoError(t, loop.Post(func() { close(ran) }))

		select {
		case <-ran:
		case <-time.After(time.Second):
			t.Fatal("callback did not run")
		}

		cancel()
		assert.NoError(t, g.Wait())
	})
}

func TestLoop_Post(t *testing.T) {
	t.Parallel()

	t.Run("nil callback", func(t *testing.T) {
		t.Parallel()

		loop := startLoop(t)
		assert.ErrorIs(t, loop.Post(nil), eventloop.ErrNilCallback)
	})

	t.Run("runs in posting order", func(t *testing.T) {
		t.Parallel()

		loop := startLoop(t, eventloop.WithBuffer(4))

		var got []int
		for i := range 50 {
			require.NoError(t, loop.Post(func() { got = append(got, i) }))
		}
		require.NoError(t, loop.Wait(context.Background()))

		require.Len(t, got, 50)
		for i, v := range got {
			assert.Equal(t, i, v)
		}
	})

	t.Run("callbacks posted before start run after start", func(t *testing.T) {
		t.Parallel()

		loop := eventloop.New(eventloop.WithLoopLogger(quietLogger()))
		var ran bool
		require.NoError(t, loop.Post(func() { ran = true }))
		assert.Equal(t, 1, loop.Pending())
		assert.ErrorIs(t, loop.Wait(context.Background()), eventloop.ErrLoopNotStarted)

		require.NoError(t, loop.Start(context.Background()))
		defer loop.Stop()

		require.NoError(t, loop.Wait(context.Background()))
		assert.True(t, ran)
	})

	t.Run("callback may post from the loop", func(t *testing.T) {
		t.Parallel()

		loop := startLoop(t, eventloop.WithConfig(eventloop.Config{Buffer: 1}))

		var got []string
		done := make(chan struct{})
		require.NoError(t, loop.Post(func() {
			got = append(got, "outer")
			_ = loop.Post(func() {
				got = append(got, "inner")
				close(done)
			})
		}))

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("nested callback did not run")
		}
		assert.Equal(t, []string{"outer", "inner"}, got)
	})

	t.Run("concurrent posts never overlap", func(t *testing.T) {
		t.Parallel()

		loop := startLoop(t)

		var mu sync.Mutex
		running, overlap, total := 0, 0, 0
		var wg sync.WaitGroup
		for range 100 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = loop.Post(func() {
					mu.Lock()
					running++
					if running > 1 {
						overlap++
					}
					mu.Unlock()

					mu.Lock()
					running--
					total++
					mu.Unlock()
				})
			}()
		}
		wg.Wait()
		require.NoError(t, loop.Wait(context.Background()))

		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, 100, total)
		assert.Zero(t, overlap)
	})
}

func TestLoop_Wait(t *testing.T) {
	t.Parallel()

	loop := startLoop(t)

	release := make(chan struct{})
	require.NoError(t, loop.Post(func() { <-release }))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, loop.Wait(ctx), context.DeadlineExceeded)

	close(release)
	assert.NoError(t, loop.Wait(context.Background()))
}

func TestLoop_RecoversPanics(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	var mu sync.Mutex
	var recovered []any

	log := slog.New(slog.NewJSONHandler(&syncWriter{w: &buf, mu: &mu}, nil))
	loop := eventloop.New(
		eventloop.WithLoopLogger(log),
		eventloop.WithPanicHandler(func(r any) {
			recovered = append(recovered, r)
		}),
	)
	require.NoError(t, loop.Start(context.Background()))
	defer loop.Stop()

	var after bool
	require.NoError(t, loop.Post(func() { panic("boom") }))
	require.NoError(t, loop.Post(func() { after = true }))
	require.NoError(t, loop.Wait(context.Background()))

	assert.True(t, after, "loop keeps running after a panic")
	assert.Equal(t, []any{"boom"}, recovered)

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, buf.String(), "callback panicked")
	assert.Contains(t, buf.String(), "panic in callback: boom")
	assert.Contains(t, buf.String(), `"component":"eventloop"`)
	assert.Contains(t, buf.String(), `"loop_id":"`+loop.ID().String()+`"`)
}

func TestLoop_NilReceiver(t *testing.T) {
	t.Parallel()

	var loop *eventloop.Loop
	assert.NotPanics(t, func() {
		assert.ErrorIs(t, loop.Post(func() {}), eventloop.ErrLoopStopped)
		assert.ErrorIs(t, loop.Post(nil), eventloop.ErrNilCallback)
		assert.ErrorIs(t, loop.Wait(context.Background()), eventloop.ErrLoopStopped)
		assert.Zero(t, loop.Pending())
	})
}

func TestLoop_LogsCarryLoopID(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	var mu sync.Mutex
	log := slog.New(slog.NewJSONHandler(&syncWriter{w: &buf, mu: &mu}, nil))

	loop := eventloop.New(eventloop.WithLoopLogger(log))
	require.NoError(t, loop.Start(context.Background()))
	require.NoError(t, loop.Stop())

	mu.Lock()
	defer mu.Unlock()
	out := buf.String()
	assert.Contains(t, out, "event loop started")
	assert.Contains(t, out, "event loop stopped")
	assert.Equal(t, 2, strings.Count(out, `"loop_id":"`+loop.ID().String()+`"`))
}

func TestLoop_HostsQueue(t *testing.T) {
	t.Parallel()

	loop := startLoop(t)
	q, err := microtask.New[*eventloop.Loop](microtask.FromPoster(loop, quietLogger()),
		microtask.WithLogger(quietLogger()))
	require.NoError(t, err)
	defer q.Dispose()

	var got []string
	record := func(_ *eventloop.Loop, state any) {
		got = append(got, state.(string))
	}

	require.NoError(t, loop.Post(func() {
		q.Enqueue("A", func(l *eventloop.Loop, state any) {
			record(l, state)
			q.Enqueue("C", record, l)
		}, loop)
		q.Enqueue("B", record, loop)
	}))
	settle(t, loop)

	assert.Equal(t, []string{"A", "B", "C"}, got)
	assert.Equal(t, 1, q.Stats().ScheduleRequests)
	assert.False(t, q.IsProcessing())

	t.Run("panicking task aborts one pass only", func(t *testing.T) {
		require.NoError(t, loop.Post(func() {
			q.Enqueue("boom", func(*eventloop.Loop, any) { panic("boom") }, loop)
			q.Enqueue("D", record, loop)
		}))
		settle(t, loop)

		assert.Equal(t, []string{"A", "B", "C"}, got)
		assert.Equal(t, 1, q.Len())

		require.NoError(t, loop.Post(func() { q.Enqueue("E", record, loop) }))
		settle(t, loop)
		assert.Equal(t, 0, q.Len())
		assert.Equal(t, []string{"A", "B", "C", "D", "E"}, got)
	})
}

// settle waits for the posted callbacks and then for the drain pass they requested
func settle(t *testing.T, loop *eventloop.Loop) {
	t.Helper()
	require.NoError(t, loop.Wait(context.Background()))
	require.NoError(t, loop.Wait(context.Background()))
}

type syncWriter struct {
	w  io.Writer
	mu *sync.Mutex
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
