package microtask

import "github.com/google/uuid"

// Work is the unit of deferred work. It receives the scheduler context the
// task was enqueued for and the task's state, both passed through unchanged.
type Work[C any] func(sched C, state any)

type taskStatus uint8

const (
	taskPending taskStatus = iota
	taskStarted
	taskCancelled
)

// Task is a single unit of work waiting on a Queue.
// Its fields never change after creation; only the queue tracks whether it
// is still pending.
type Task[C any] struct {
	id     uuid.UUID
	queue  *Queue[C]
	state  any
	work   Work[C]
	sched  C
	status taskStatus // guarded by queue.mu
}

// ID returns the task identifier used in log records
func (t *Task[C]) ID() uuid.UUID {
	return t.id
}

// State returns the state the work runs against
func (t *Task[C]) State() any {
	return t.state
}

// Scheduler returns the scheduler context the task was created for
func (t *Task[C]) Scheduler() C {
	return t.sched
}

// Dispose removes the task from its queue. It has no effect once the task has
// started or finished running, and calling it more than once is safe.
// A zero Task belongs to no queue and Dispose does nothing.
func (t *Task[C]) Dispose() {
	if t == nil || t.queue == nil {
		return
	}
	t.queue.Dequeue(t)
}

// Cancel is an alias of Dispose.
func (t *Task[C]) Cancel() {
	t.Dispose()
}

// Cancelled reports whether the task was removed before it ran.
func (t *Task[C]) Cancelled() bool {
	if t == nil || t.queue == nil {
		return false
	}
	t.queue.mu.Lock()
	defer t.queue.mu.Unlock()
	return t.status == taskCancelled
}

// Done reports whether the drain loop has started the task's work.
func (t *Task[C]) Done() bool {
	if t == nil || t.queue == nil {
		return false
	}
	t.queue.mu.Lock()
	defer t.queue.mu.Unlock()
	return t.status == taskStarted
}
