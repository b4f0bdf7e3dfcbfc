package logger

import (
	"log/slog"
	"strconv"

	"github.com/google/uuid"
)

// Group creates a slog group attribute from the provided attributes.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Errors groups multiple non-nil errors under the key "errors".
// If all errors are nil, it returns an empty Attr.
func Errors(errs ...error) slog.Attr {
	as := make([]slog.Attr, 0, len(errs))
	for i, err := range errs {
		if err != nil {
			as = append(as, slog.Any(strconv.Itoa(i), err))
		}
	}
	if len(as) == 0 {
		return slog.Attr{}
	}
	return slog.Attr{Key: "errors", Value: slog.GroupValue(as...)}
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Duration records a duration under the key "duration".
func Duration(d any) slog.Attr {
	return slog.Any("duration", d)
}

// QueueID records the queue identifier under the key "queue_id".
func QueueID(id uuid.UUID) slog.Attr {
	return slog.String("queue_id", id.String())
}

// TaskID records the task identifier under the key "task_id".
func TaskID(id uuid.UUID) slog.Attr {
	return slog.String("task_id", id.String())
}

// LoopID records the event loop identifier under the key "loop_id".
func LoopID(id uuid.UUID) slog.Attr {
	return slog.String("loop_id", id.String())
}

// Pending records how many items are waiting under the key "pending".
func Pending(n int) slog.Attr {
	return slog.Int("pending", n)
}

// Count records how many items were processed under the key "count".
func Count(n int) slog.Attr {
	return slog.Int("count", n)
}
