package logger

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

type loopIDKey struct{}

// ContextWithLoopID returns a copy of ctx carrying the event loop identifier.
func ContextWithLoopID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, loopIDKey{}, id)
}

// LoopIDFromContext returns the event loop identifier stored in ctx, if any.
func LoopIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	if ctx == nil {
		return uuid.Nil, false
	}
	id, ok := ctx.Value(loopIDKey{}).(uuid.UUID)
	return id, ok
}

// LoopIDExtractor is a ContextExtractor that logs the loop identifier under
// the key "loop_id" for records emitted with a loop context.
func LoopIDExtractor(ctx context.Context) (slog.Attr, bool) {
	id, ok := LoopIDFromContext(ctx)
	if !ok {
		return slog.Attr{}, false
	}
	return LoopID(id), true
}
