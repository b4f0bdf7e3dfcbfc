package microtask

import (
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/microtask/pkg/logger"
)

// Stats is a snapshot of the queue counters
type Stats struct {
	Enqueued         int
	Executed         int
	Cancelled        int
	Passes           int
	ScheduleRequests int
	Yields           int
}

// Queue batches tasks so that any number of Enqueue calls made before the
// host calls back collapse into a single drain pass.
//
// At most one drain request is outstanding at a time. Tasks run in enqueue
// order, one at a time, including tasks enqueued by tasks of the running pass.
// Once disposed the queue never runs anything again.
type Queue[C any] struct {
	mu         sync.Mutex
	id         uuid.UUID
	pending    []*Task[C]
	processing bool
	disposed   bool
	stats      Stats

	runSoon    RunSoon
	flushNext  func()
	drainLimit int
	logger     *slog.Logger
}

// New creates a queue that requests drain passes through runSoon
func New[C any](runSoon RunSoon, opts ...Option) (*Queue[C], error) {
	if runSoon == nil {
		return nil, ErrRunSoonNil
	}

	o := &options{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}

	id := uuid.New()
	q := &Queue[C]{
		id:         id,
		runSoon:    runSoon,
		drainLimit: o.drainLimit,
		logger:     o.logger.With(logger.Component("microtask"), logger.QueueID(id)),
	}
	q.flushNext = q.flush

	return q, nil
}

// Enqueue appends a task running work against state and makes sure a drain
// pass is scheduled. The returned task may be disposed before it runs.
//
// After the queue is disposed Enqueue does nothing and returns a task that is
// already cancelled.
func (q *Queue[C]) Enqueue(state any, work Work[C], sched C) *Task[C] {
	task := &Task[C]{
		id:    uuid.New(),
		queue: q,
		state: state,
		work:  work,
		sched: sched,
	}

	q.mu.Lock()
	if q.disposed {
		task.status = taskCancelled
		q.mu.Unlock()
		q.logger.Debug("enqueue on disposed queue ignored", logger.TaskID(task.id))
		return task
	}
	q.pending = append(q.pending, task)
	q.stats.Enqueued++
	request := q.scheduleFlushLocked()
	q.mu.Unlock()

	if request {
		q.runSoon(q.flushNext)
	}
	return task
}

// Dequeue removes task from the pending list. Tasks that are not pending on
// this queue (already run, already removed, or owned by another queue) are
// left alone and nothing else is touched.
func (q *Queue[C]) Dequeue(task *Task[C]) {
	if task == nil {
		q.logger.Debug("dequeue of nil task ignored")
		return
	}
	if task.queue != q {
		q.logger.Debug("dequeue of foreign task ignored", logger.TaskID(task.id))
		return
	}

	q.mu.Lock()
	idx := slices.Index(q.pending, task)
	if idx < 0 {
		q.mu.Unlock()
		q.logger.Debug("dequeue of non-pending task ignored", logger.TaskID(task.id))
		return
	}
	q.pending = slices.Delete(q.pending, idx, idx+1)
	task.status = taskCancelled
	q.stats.Cancelled++
	q.mu.Unlock()
}

// Dispose drops every pending task and stops the queue for good.
// It is safe to call more than once.
func (q *Queue[C]) Dispose() {
	q.mu.Lock()
	if q.disposed {
		q.mu.Unlock()
		return
	}
	dropped := len(q.pending)
	for _, task := range q.pending {
		task.status = taskCancelled
	}
	q.stats.Cancelled += dropped
	q.pending = nil
	q.processing = false
	q.disposed = true
	q.mu.Unlock()

	q.logger.Debug("queue disposed", logger.Pending(dropped))
}

// ID returns the queue identifier used in log records
func (q *Queue[C]) ID() uuid.UUID {
	return q.id
}

// Len returns the number of pending tasks
func (q *Queue[C]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// IsProcessing reports whether a drain pass is requested or running
func (q *Queue[C]) IsProcessing() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.processing
}

// IsDisposed reports whether Dispose has been called
func (q *Queue[C]) IsDisposed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.disposed
}

// Stats returns a snapshot of the queue counters
func (q *Queue[C]) Stats() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.stats
}

// scheduleFlushLocked marks the queue as processing and reports whether the
// caller must request a drain pass. Must be called with q.mu held; the caller
// invokes runSoon after releasing it, since a host may call back synchronously.
func (q *Queue[C]) scheduleFlushLocked() bool {
	if q.processing || q.disposed {
		return false
	}
	q.processing = true
	q.stats.ScheduleRequests++
	return true
}

// flush is the drain pass. It runs tasks until the pending list is empty,
// re-reading its length after every task so that tasks enqueued meanwhile
// run in this same pass.
//
// A panicking task is not recovered. The pass stops, the remaining tasks stay
// pending and the processing flag is cleared so that the next Enqueue
// requests a fresh pass.
func (q *Queue[C]) flush() {
	q.mu.Lock()
	if q.disposed || !q.processing {
		q.mu.Unlock()
		return
	}
	q.stats.Passes++
	q.mu.Unlock()

	start := time.Now()
	executed := 0
	finished := false
	defer func() {
		if finished {
			return
		}
		q.mu.Lock()
		q.processing = false
		q.mu.Unlock()
	}()

	q.mu.Lock()
	for len(q.pending) > 0 {
		if q.drainLimit > 0 && executed >= q.drainLimit {
			q.stats.Yields++
			q.stats.ScheduleRequests++
			remaining := len(q.pending)
			finished = true
			q.mu.Unlock()

			q.logger.Debug("drain limit reached, yielding to host",
				logger.Count(executed),
				logger.Pending(remaining),
				logger.Duration(time.Since(start)))
			q.runSoon(q.flushNext)
			return
		}

		task := q.pending[0]
		q.pending[0] = nil
		q.pending = q.pending[1:]
		task.status = taskStarted
		q.stats.Executed++
		q.mu.Unlock()

		if task.work != nil {
			task.work(task.sched, task.state)
		}
		executed++

		q.mu.Lock()
	}
	q.processing = false
	finished = true
	q.mu.Unlock()

	q.logger.Debug("drain pass finished",
		logger.Count(executed),
		logger.Duration(time.Since(start)))
}
