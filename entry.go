// FILE: logtide-go/entry.go
package logtide

import (
	"fmt"
	"runtime/debug"
	"time"
)

// Level is the severity of a log entry
type Level string

const (
	LevelDebug    Level = "debug"
	LevelInfo     Level = "info"
	LevelWarn     Level = "warn"
	LevelError    Level = "error"
	LevelCritical Level = "critical"
)

// Valid reports whether l is one of the defined levels
func (l Level) Valid() bool {
	switch l {
	case LevelDebug, LevelInfo, LevelWarn, LevelError, LevelCritical:
		return true
	}
	return false
}

// Metadata is the free-form key/value payload attached to an entry
type Metadata map[string]any

// Entry is a single log record. It is immutable once enqueued: the client
// stamps time, trace id and merged metadata at creation, and neither the
// buffer nor the delivery pipeline modify it afterwards.
type Entry struct {
	Service  string    `json:"service"`
	Level    Level     `json:"level"`
	Message  string    `json:"message"`
	Time     time.Time `json:"time"`
	Metadata Metadata  `json:"metadata,omitempty"`
	TraceID  string    `json:"trace_id,omitempty"`
}

// ErrorDetail is the structured record attached as metadata["error"] when a
// logging call is given a Go error instead of metadata
type ErrorDetail struct {
	Name    string `json:"name"`
	Message string `json:"message"`
	Stack   string `json:"stack"`
}

// serializeError captures err and the current stack into the metadata shape
// the collector expects
func serializeError(err error) Metadata {
	return Metadata{
		"error": ErrorDetail{
			Name:    fmt.Sprintf("%T", err),
			Message: err.Error(),
			Stack:   string(debug.Stack()),
		},
	}
}

// metadataOrError normalizes the union argument of Error/Critical: a nil, a
// metadata map, or a Go error to serialize. Anything else is a producer
// input error.
func metadataOrError(arg any) (Metadata, error) {
	switch v := arg.(type) {
	case nil:
		return nil, nil
	case Metadata:
		return v, nil
	case map[string]any:
		return v, nil
	case error:
		return serializeError(v), nil
	default:
		return nil, fmt.Errorf("logtide: metadata must be a map or error, got %T", arg)
	}
}

// mergeMetadata merges global metadata under the entry's own; entry keys win
// on collision. Returns nil when both are empty.
func mergeMetadata(global, entry Metadata) Metadata {
	if len(global) == 0 {
		return entry
	}
	merged := make(Metadata, len(global)+len(entry))
	for k, v := range global {
		merged[k] = v
	}
	for k, v := range entry {
		merged[k] = v
	}
	return merged
}
