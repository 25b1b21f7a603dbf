// FILE: logtide-go/internal/metrics/metrics.go
package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot is a point-in-time copy of the registry counters
type Snapshot struct {
	LogsSent            uint64  `json:"logs_sent"`
	LogsDropped         uint64  `json:"logs_dropped"`
	Errors              uint64  `json:"errors"`
	Retries             uint64  `json:"retries"`
	CircuitBreakerTrips uint64  `json:"circuit_breaker_trips"`
	AvgLatencyMs        float64 `json:"avg_latency_ms"`
}

// Registry holds the client's delivery counters. Writers use atomic
// operations so producers and the delivery worker never contend on a lock.
// A disabled registry is a no-op.
type Registry struct {
	enabled bool

	logsSent    atomic.Uint64
	logsDropped atomic.Uint64
	errors      atomic.Uint64
	retries     atomic.Uint64
	trips       atomic.Uint64

	// Latency is a count+sum pair, not per-sample storage
	latencyCount atomic.Uint64
	latencySumUs atomic.Uint64
}

// New creates a registry. When enabled is false every method is a no-op and
// Snapshot always returns zeroes.
func New(enabled bool) *Registry {
	return &Registry{enabled: enabled}
}

func (r *Registry) AddSent(n int) {
	if r.enabled {
		r.logsSent.Add(uint64(n))
	}
}

func (r *Registry) AddDropped(n int) {
	if r.enabled {
		r.logsDropped.Add(uint64(n))
	}
}

func (r *Registry) AddErrors(n int) {
	if r.enabled {
		r.errors.Add(uint64(n))
	}
}

func (r *Registry) AddRetries(n int) {
	if r.enabled {
		r.retries.Add(uint64(n))
	}
}

func (r *Registry) AddTrips(n int) {
	if r.enabled {
		r.trips.Add(uint64(n))
	}
}

// ObserveLatency folds one delivery latency into the running mean
func (r *Registry) ObserveLatency(d time.Duration) {
	if !r.enabled {
		return
	}
	r.latencyCount.Add(1)
	r.latencySumUs.Add(uint64(d.Microseconds()))
}

// Snapshot returns a non-destructive copy of all counters
func (r *Registry) Snapshot() Snapshot {
	s := Snapshot{
		LogsSent:            r.logsSent.Load(),
		LogsDropped:         r.logsDropped.Load(),
		Errors:              r.errors.Load(),
		Retries:             r.retries.Load(),
		CircuitBreakerTrips: r.trips.Load(),
	}
	if count := r.latencyCount.Load(); count > 0 {
		s.AvgLatencyMs = float64(r.latencySumUs.Load()) / float64(count) / 1000.0
	}
	return s
}

// Reset zeroes all counters and the latency accumulator
func (r *Registry) Reset() {
	r.logsSent.Store(0)
	r.logsDropped.Store(0)
	r.errors.Store(0)
	r.retries.Store(0)
	r.trips.Store(0)
	r.latencyCount.Store(0)
	r.latencySumUs.Store(0)
}
