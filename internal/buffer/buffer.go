// FILE: logtide-go/internal/buffer/buffer.go
package buffer

import (
	"sync"
)

// Policy determines which entry is shed when the buffer is at capacity
type Policy int

const (
	// DropNewest rejects the incoming entry, preserving queued history
	DropNewest Policy = iota
	// DropOldest evicts the oldest queued entry to make room
	DropOldest
)

// Outcome reports what Enqueue did with an entry
type Outcome int

const (
	// Stored means the entry was appended without shedding
	Stored Outcome = iota
	// DroppedNewest means the buffer was full and the incoming entry was discarded
	DroppedNewest
	// EvictedOldest means the oldest entry was discarded and the incoming one appended
	EvictedOldest
	// Rejected means intake is closed
	Rejected
)

// Buffer is a bounded FIFO queue of pending entries.
// Enqueue never blocks; saturation is resolved by the configured policy.
// Safe for concurrent use.
type Buffer[T any] struct {
	mu      sync.Mutex
	entries []T
	max     int
	policy  Policy
	closed  bool
}

// New creates a buffer holding at most max entries
func New[T any](max int, policy Policy) *Buffer[T] {
	return &Buffer[T]{
		entries: make([]T, 0, min(max, 1024)),
		max:     max,
		policy:  policy,
	}
}

// Enqueue appends e and reports the outcome. It never blocks and never
// fails from the producer's perspective; a full buffer sheds load per the
// drop policy instead.
func (b *Buffer[T]) Enqueue(e T) Outcome {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return Rejected
	}

	if len(b.entries) >= b.max {
		if b.policy == DropNewest {
			return DroppedNewest
		}
		// Evict head, keep FIFO order for the rest
		copy(b.entries, b.entries[1:])
		b.entries[len(b.entries)-1] = e
		return EvictedOldest
	}

	b.entries = append(b.entries, e)
	return Stored
}

// Drain atomically removes and returns up to maxN oldest entries in FIFO
// order. Returns nil when the buffer is empty. Draining remains possible
// after CloseIntake.
func (b *Buffer[T]) Drain(maxN int) []T {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.entries) == 0 {
		return nil
	}

	n := maxN
	if n <= 0 || n > len(b.entries) {
		n = len(b.entries)
	}

	batch := make([]T, n)
	copy(batch, b.entries[:n])
	remaining := copy(b.entries, b.entries[n:])
	// Zero the tail so drained entries are collectable
	var zero T
	for i := remaining; i < len(b.entries); i++ {
		b.entries[i] = zero
	}
	b.entries = b.entries[:remaining]
	return batch
}

// Len returns the current number of queued entries
func (b *Buffer[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

// CloseIntake rejects further enqueues. The buffer can still be drained.
// Safe to call multiple times.
func (b *Buffer[T]) CloseIntake() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
}
