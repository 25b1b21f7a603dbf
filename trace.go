// FILE: logtide-go/trace.go
package logtide

import (
	"context"

	"github.com/google/uuid"
)

// contextKey is used for storing the trace id in a context.Context
type contextKey int

const traceIDKey contextKey = iota

// WithTraceID returns a context carrying id as the current trace id. Entries
// logged with the returned context are stamped with it. The parent context
// is untouched, so the prior trace id is restored on every exit path simply
// by dropping the derived context.
func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceIDKey, id)
}

// WithNewTraceID behaves like WithTraceID with a freshly generated unique id,
// returning both the derived context and the id.
func WithNewTraceID(ctx context.Context) (context.Context, string) {
	id := uuid.NewString()
	return WithTraceID(ctx, id), id
}

// TraceIDFrom returns the trace id carried by ctx, if any
func TraceIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(traceIDKey).(string)
	return id, ok && id != ""
}

// NewTraceID generates a random, globally unique trace id
func NewTraceID() string {
	return uuid.NewString()
}
