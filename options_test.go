// FILE: logtide-go/options_test.go
package logtide

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions("http://localhost:8080", "key")

	assert.Equal(t, int64(100), opts.BatchSize)
	assert.Equal(t, int64(5000), opts.FlushIntervalMS)
	assert.Equal(t, int64(10000), opts.MaxBufferSize)
	assert.Equal(t, int64(3), opts.MaxRetries)
	assert.Equal(t, int64(1000), opts.RetryDelayMS)
	assert.Equal(t, int64(5), opts.CircuitBreakerThreshold)
	assert.Equal(t, int64(30000), opts.CircuitBreakerResetMS)
	assert.True(t, opts.EnableMetrics)
	assert.Equal(t, DropPolicyNewest, opts.DropPolicy)

	require.NoError(t, opts.validate())
}

func TestOptions_NormalizeFillsZeroFields(t *testing.T) {
	opts := Options{
		APIURL:    "https://logs.example.com",
		APIKey:    "key",
		BatchSize: 50,
	}
	opts.normalize()

	assert.Equal(t, int64(50), opts.BatchSize, "explicit value survives")
	assert.Equal(t, int64(5000), opts.FlushIntervalMS)
	assert.Equal(t, int64(10000), opts.MaxBufferSize)
	assert.Equal(t, int64(1000), opts.RetryDelayMS)
	assert.Equal(t, DropPolicyNewest, opts.DropPolicy)

	require.NoError(t, opts.validate())
}

func TestOptions_NormalizeKeepsZeroRetries(t *testing.T) {
	opts := DefaultOptions("http://localhost:8080", "key")
	opts.MaxRetries = 0
	opts.normalize()

	assert.Zero(t, opts.MaxRetries, "zero retries is a valid choice, not a gap")
}

func TestOptions_RateBurstDefaultsToRate(t *testing.T) {
	opts := DefaultOptions("http://localhost:8080", "key")
	opts.RateLimit = 250
	opts.normalize()

	assert.Equal(t, int64(250), opts.RateBurst)
}

func TestOptions_DurationHelpers(t *testing.T) {
	opts := DefaultOptions("http://localhost:8080", "key")

	assert.Equal(t, 5*time.Second, opts.flushInterval())
	assert.Equal(t, time.Second, opts.retryDelay())
	assert.Equal(t, 30*time.Second, opts.circuitReset())
	assert.Equal(t, 30*time.Second, opts.requestTimeout())
}

func TestOptions_DropPolicyCaseInsensitive(t *testing.T) {
	opts := DefaultOptions("http://localhost:8080", "key")
	opts.DropPolicy = "OLDEST"

	require.NoError(t, opts.validate())
}
