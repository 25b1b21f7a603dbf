// FILE: logtide-go/internal/breaker/breaker_test.go
package breaker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock lets tests advance the breaker's view of time
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBreaker(threshold int, reset time.Duration) (*Breaker, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	b := New(threshold, reset)
	b.now = clock.now
	return b, clock
}

func TestBreaker_TripsOnThreshold(t *testing.T) {
	b, _ := newTestBreaker(5, 30*time.Second)

	for i := 0; i < 4; i++ {
		assert.False(t, b.RecordFailure(), "failure %d must not trip", i+1)
		assert.Equal(t, StateClosed, b.State())
	}

	assert.True(t, b.RecordFailure(), "5th consecutive failure trips the circuit")
	assert.Equal(t, StateOpen, b.State())
}

func TestBreaker_SuccessResetsFailureCount(t *testing.T) {
	b, _ := newTestBreaker(3, 30*time.Second)

	b.RecordFailure()
	b.RecordFailure()
	b.RecordSuccess()
	b.RecordFailure()
	b.RecordFailure()
	assert.Equal(t, StateClosed, b.State(), "non-consecutive failures must not trip")

	assert.True(t, b.RecordFailure())
	assert.Equal(t, StateOpen, b.State())
}

func TestBreaker_OpenShortCircuits(t *testing.T) {
	b, clock := newTestBreaker(1, 30*time.Second)

	require.True(t, b.RecordFailure())
	assert.False(t, b.Allow())

	clock.advance(29 * time.Second)
	assert.False(t, b.Allow(), "reset period not yet elapsed")

	clock.advance(time.Second)
	assert.True(t, b.Allow(), "elapsed reset moves to half-open trial")
	assert.Equal(t, StateHalfOpen, b.State())
}

func TestBreaker_HalfOpenSuccessCloses(t *testing.T) {
	b, clock := newTestBreaker(1, time.Second)

	b.RecordFailure()
	clock.advance(time.Second)
	require.True(t, b.Allow())
	require.Equal(t, StateHalfOpen, b.State())

	b.RecordSuccess()
	assert.Equal(t, StateClosed, b.State())
	assert.True(t, b.Allow())
}

func TestBreaker_HalfOpenFailureReopens(t *testing.T) {
	b, clock := newTestBreaker(5, time.Second)

	for i := 0; i < 5; i++ {
		b.RecordFailure()
	}
	require.Equal(t, StateOpen, b.State())

	clock.advance(time.Second)
	require.True(t, b.Allow())

	// The single trial fails: straight back to open, counted as a trip,
	// with a fresh reset window
	assert.True(t, b.RecordFailure())
	assert.Equal(t, StateOpen, b.State())
	assert.False(t, b.Allow())

	clock.advance(time.Second)
	assert.True(t, b.Allow())
}

func TestBreaker_StateIsReadOnly(t *testing.T) {
	b, clock := newTestBreaker(1, time.Second)

	b.RecordFailure()
	clock.advance(2 * time.Second)

	// State never performs the half-open transition itself
	assert.Equal(t, StateOpen, b.State())
	assert.Equal(t, StateOpen, b.State())

	// The delivery path's Allow does
	assert.True(t, b.Allow())
	assert.Equal(t, StateHalfOpen, b.State())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "CLOSED", StateClosed.String())
	assert.Equal(t, "OPEN", StateOpen.String())
	assert.Equal(t, "HALF_OPEN", StateHalfOpen.String())
}
