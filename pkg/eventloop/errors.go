package eventloop

import "errors"

var (
	// ErrLoopAlreadyStarted is returned when Start is called on a running loop
	ErrLoopAlreadyStarted = errors.New("eventloop: loop already started")

	// ErrLoopNotStarted is returned when Stop or Wait is called before Start
	ErrLoopNotStarted = errors.New("eventloop: loop not started")

	// ErrLoopStopped is returned when the loop no longer accepts callbacks
	ErrLoopStopped = errors.New("eventloop: loop stopped")

	// ErrNilCallback is returned when a nil callback is posted
	ErrNilCallback = errors.New("eventloop: callback cannot be nil")
)
