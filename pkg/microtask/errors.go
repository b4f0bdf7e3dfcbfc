package microtask

import "errors"

var (
	// ErrRunSoonNil is returned when a queue is created without a run-soon strategy
	ErrRunSoonNil = errors.New("microtask: run-soon strategy cannot be nil")
)
