// FILE: logtide-go/internal/breaker/breaker.go
package breaker

import (
	"sync"
	"time"
)

// State is the circuit breaker state
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

// String returns the canonical state name
func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

// Breaker sheds delivery attempts during sustained backend failure.
//
// Transitions happen only on delivery outcomes (RecordSuccess/RecordFailure)
// and on the elapsed-time check inside Allow. State is a pure read.
type Breaker struct {
	mu        sync.Mutex
	threshold int
	reset     time.Duration
	state     State
	failures  int
	openedAt  time.Time

	now func() time.Time // test hook
}

// New creates a closed breaker that opens after threshold consecutive
// failures and probes again once reset has elapsed.
func New(threshold int, reset time.Duration) *Breaker {
	return &Breaker{
		threshold: threshold,
		reset:     reset,
		now:       time.Now,
	}
}

// Allow reports whether a delivery attempt may proceed. When the breaker is
// open and the reset period has elapsed it transitions to half-open, letting
// a single trial attempt through.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed, StateHalfOpen:
		return true
	case StateOpen:
		if b.now().Sub(b.openedAt) >= b.reset {
			b.state = StateHalfOpen
			b.failures = 0
			return true
		}
		return false
	}
	return false
}

// RecordSuccess resets the consecutive-failure counter and closes the
// circuit after a successful half-open trial.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures = 0
	if b.state == StateHalfOpen {
		b.state = StateClosed
	}
}

// RecordFailure counts a failed attempt. It returns true when this failure
// tripped the circuit open (from closed via the threshold, or from a failed
// half-open trial).
func (b *Breaker) RecordFailure() (tripped bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures++

	switch b.state {
	case StateHalfOpen:
		b.state = StateOpen
		b.openedAt = b.now()
		return true
	case StateClosed:
		if b.failures >= b.threshold {
			b.state = StateOpen
			b.openedAt = b.now()
			return true
		}
	}
	return false
}

// State returns the current state without mutating it. A breaker whose reset
// period has elapsed still reports OPEN until the next delivery attempt
// performs the half-open transition.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
