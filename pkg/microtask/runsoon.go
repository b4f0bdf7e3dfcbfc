package microtask

import (
	"log/slog"
	"reflect"
	"time"

	"github.com/dmitrymomot/microtask/pkg/logger"
)

// RunSoon arranges for callback to run once, at the next opportunity the host
// allows. A queue calls it at most once per outstanding drain request.
type RunSoon func(callback func())

// Poster is a host execution context that runs callbacks in submission order.
// eventloop.Loop implements it.
type Poster interface {
	Post(fn func()) error
}

// FromPoster runs callbacks on the host's own execution context.
// A request the host refuses (for example because it was stopped) is dropped
// and reported to log at warn level; a torn down host is never expected to
// call back. A nil log means slog.Default().
func FromPoster(p Poster, log *slog.Logger) RunSoon {
	if log == nil {
		log = slog.Default()
	}
	log = log.With(logger.Component("microtask"))

	return func(callback func()) {
		if err := p.Post(callback); err != nil {
			log.Warn("host refused drain request", logger.Error(err))
		}
	}
}

// Timer runs callbacks on a timer goroutine after d.
// Negative delays are treated as zero.
func Timer(d time.Duration) RunSoon {
	if d < 0 {
		d = 0
	}
	return func(callback func()) {
		time.AfterFunc(d, callback)
	}
}

// NextTick prefers the host's immediate opportunity and falls back to a
// minimal-delay timer when no host is available. A typed nil host, such as
// a nil *eventloop.Loop, counts as no host.
func NextTick(p Poster, fallback time.Duration, log *slog.Logger) RunSoon {
	if noHost(p) {
		return Timer(fallback)
	}
	return FromPoster(p, log)
}

func noHost(p Poster) bool {
	if p == nil {
		return true
	}
	v := reflect.ValueOf(p)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.Slice, reflect.Interface:
		return v.IsNil()
	}
	return false
}
