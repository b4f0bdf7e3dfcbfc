// Package microtask provides a coalescing deferred-execution queue: the
// primitive a reactive scheduler uses to run callbacks "soon" without paying
// one asynchronous hop per callback.
//
// Every call to Queue.Enqueue appends a Task to an ordered pending list. The
// first Enqueue after the queue goes idle asks the host, through an injected
// RunSoon strategy, to call back once. When it does, a single drain pass runs
// every pending task in order. Tasks enqueued while the pass is running are
// appended to that same pass instead of triggering another request, so a
// whole cascade of work settles in one turn of the host.
//
// # Architecture
//
// The package has three pieces:
//
//   - RunSoon: the host capability "call this function once, soon". It is
//     chosen once, at construction time. FromPoster runs the pass on a host
//     execution context such as eventloop.Loop, Timer uses time.AfterFunc,
//     and NextTick prefers the former and falls back to the latter.
//   - Task: an immutable record binding Work, its state and the
//     scheduler context. Task.Dispose cancels it if it has not started yet.
//   - Queue: the pending list, the processing and disposed flags, and the
//     drain loop.
//
// The queue guarantees that at most one drain request is outstanding, that
// tasks run in enqueue order, and that nothing runs after Queue.Dispose.
//
// # Usage
//
//	loop := eventloop.New()
//	_ = loop.Start(ctx)
//	defer loop.Stop()
//
//	q, err := microtask.New[*Scheduler](microtask.FromPoster(loop, nil))
//	if err != nil {
//		return err
//	}
//	defer q.Dispose()
//
//	task := q.Enqueue(42, func(s *Scheduler, state any) {
//		s.Notify(state.(int))
//	}, sched)
//
//	// Changed our mind before the host called back:
//	task.Dispose()
//
// # Reentrancy
//
// A pass runs until the pending list is empty, so a task that keeps
// re-enqueueing work keeps the pass alive. WithDrainLimit bounds a pass: once
// the limit is reached the queue requests a new callback and returns control
// to the host, leaving the rest for the next pass.
//
// # Error Handling
//
// Misuse never panics. Dequeueing a task that is not pending, or enqueueing
// on a disposed queue, is a silent no-op. A panic raised by Work is not
// recovered: it aborts the pass and reaches whatever invoked the callback.
// The remaining tasks stay pending and the next Enqueue requests a new pass.
//
// ErrRunSoonNil is the only sentinel error and can be checked with errors.Is.
//
// # Configuration
//
// Config carries the environment driven settings (MICROTASK_DRAIN_LIMIT,
// MICROTASK_FALLBACK_DELAY) and can be loaded with pkg/config:
//
//	var cfg microtask.Config
//	config.MustLoad(&cfg)
//	q, _ := microtask.New[*Scheduler](cfg.RunSoon(loop, nil), microtask.WithConfig(cfg))
package microtask
