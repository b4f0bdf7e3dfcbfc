// Package eventloop provides a minimal single-goroutine host for callbacks.
//
// A Loop runs every posted callback to completion, one at a time and in
// posting order, on its own goroutine. That makes it the "single logical
// execution context" a microtask.Queue expects: pass microtask.FromPoster(loop, log)
// to the queue and every drain pass runs on the loop.
//
// Post never blocks, so callbacks may post further callbacks. A panicking
// callback is recovered, logged and reported to the WithPanicHandler hook;
// the loop keeps running.
//
// The lifecycle mirrors a background worker: Start, Stop, and Run for use
// with errgroup:
//
//	loop := eventloop.New(eventloop.WithLoopLogger(log))
//	g, ctx := errgroup.WithContext(ctx)
//	g.Go(loop.Run(ctx))
//
//	_ = loop.Post(func() { fmt.Println("on the loop") })
//	_ = loop.Wait(ctx)
package eventloop
