// FILE: logtide-go/options.go
package logtide

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/lixenwraith/log"
)

// Version is the SDK version reported in the User-Agent header
const Version = "1.0.0"

// Drop policy names accepted by Options.DropPolicy
const (
	DropPolicyNewest = "newest"
	DropPolicyOldest = "oldest"
)

// Options configures a Client. Construct it with DefaultOptions and override
// what you need, or load it from file/env/CLI with LoadOptions. Options are
// immutable for the client's lifetime once passed to New.
type Options struct {
	// APIURL is the collector base URL, e.g. "https://logs.example.com"
	APIURL string `toml:"api_url"`
	// APIKey authenticates every request as a bearer token
	APIKey string `toml:"api_key"`

	// BatchSize is the number of buffered entries that triggers a flush
	BatchSize int64 `toml:"batch_size"`
	// FlushIntervalMS is the timer-driven flush period in milliseconds
	FlushIntervalMS int64 `toml:"flush_interval"`
	// MaxBufferSize caps the number of pending entries; beyond it the drop
	// policy applies
	MaxBufferSize int64 `toml:"max_buffer_size"`

	// MaxRetries is the number of additional delivery attempts after the first
	MaxRetries int64 `toml:"max_retries"`
	// RetryDelayMS is the delay before the first retry; each further retry
	// doubles it
	RetryDelayMS int64 `toml:"retry_delay_ms"`

	CircuitBreakerThreshold int64 `toml:"circuit_breaker_threshold"`
	CircuitBreakerResetMS   int64 `toml:"circuit_breaker_reset_ms"`

	// RequestTimeoutMS bounds each individual request attempt
	RequestTimeoutMS int64 `toml:"request_timeout_ms"`

	// EnableMetrics toggles the metrics registry; when false all counters are
	// no-ops. DefaultOptions sets it to true.
	EnableMetrics bool `toml:"enable_metrics"`
	// Debug enables the SDK's own diagnostic logging to stdout
	Debug bool `toml:"debug"`

	// DropPolicy selects which entry is shed on a full buffer: "newest"
	// (reject incoming, the default) or "oldest" (evict queued head)
	DropPolicy string `toml:"drop_policy"`

	// RateLimit caps accepted entries per second; 0 disables. Over-rate
	// entries are counted drops, same as buffer saturation.
	RateLimit float64 `toml:"rate_limit"`
	// RateBurst is the rate limiter burst size; defaults to RateLimit
	RateBurst int64 `toml:"rate_burst"`

	// GlobalMetadata is merged into every entry's metadata; entry keys win
	GlobalMetadata Metadata `toml:"global_metadata"`
	// AutoTraceID generates a trace id for entries that have none in scope
	AutoTraceID bool `toml:"auto_trace_id"`

	// OnError observes batches abandoned after exhausted retries or a shed by
	// the open circuit. Called from the delivery worker; never from producers.
	OnError func(err error, entries int) `toml:"-"`

	// Logger overrides the SDK's internal diagnostic logger
	Logger *log.Logger `toml:"-"`
}

// DefaultOptions returns the documented defaults for the given collector
func DefaultOptions(apiURL, apiKey string) Options {
	return Options{
		APIURL:                  apiURL,
		APIKey:                  apiKey,
		BatchSize:               100,
		FlushIntervalMS:         5000,
		MaxBufferSize:           10000,
		MaxRetries:              3,
		RetryDelayMS:            1000,
		CircuitBreakerThreshold: 5,
		CircuitBreakerResetMS:   30000,
		RequestTimeoutMS:        30000,
		EnableMetrics:           true,
		DropPolicy:              DropPolicyNewest,
	}
}

// validate is the centralized validator for client options
func (o *Options) validate() error {
	if o.APIURL == "" {
		return fmt.Errorf("api_url is required")
	}
	u, err := url.Parse(o.APIURL)
	if err != nil {
		return fmt.Errorf("invalid api_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api_url must use http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("api_url is missing a host")
	}
	if o.APIKey == "" {
		return fmt.Errorf("api_key is required")
	}

	if o.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be positive, got %d", o.BatchSize)
	}
	if o.MaxBufferSize <= 0 {
		return fmt.Errorf("max_buffer_size must be positive, got %d", o.MaxBufferSize)
	}
	if o.BatchSize > o.MaxBufferSize {
		return fmt.Errorf("batch_size (%d) cannot exceed max_buffer_size (%d)", o.BatchSize, o.MaxBufferSize)
	}
	if o.FlushIntervalMS < 0 {
		return fmt.Errorf("flush_interval cannot be negative, got %d", o.FlushIntervalMS)
	}
	if o.MaxRetries < 0 {
		return fmt.Errorf("max_retries cannot be negative, got %d", o.MaxRetries)
	}
	if o.RetryDelayMS <= 0 {
		return fmt.Errorf("retry_delay_ms must be positive, got %d", o.RetryDelayMS)
	}
	if o.CircuitBreakerThreshold <= 0 {
		return fmt.Errorf("circuit_breaker_threshold must be positive, got %d", o.CircuitBreakerThreshold)
	}
	if o.CircuitBreakerResetMS <= 0 {
		return fmt.Errorf("circuit_breaker_reset_ms must be positive, got %d", o.CircuitBreakerResetMS)
	}
	if o.RequestTimeoutMS <= 0 {
		return fmt.Errorf("request_timeout_ms must be positive, got %d", o.RequestTimeoutMS)
	}
	if o.RateLimit < 0 {
		return fmt.Errorf("rate_limit cannot be negative, got %g", o.RateLimit)
	}

	switch strings.ToLower(o.DropPolicy) {
	case DropPolicyNewest, DropPolicyOldest:
	default:
		return fmt.Errorf("invalid drop_policy: %q", o.DropPolicy)
	}

	return nil
}

// normalize fills zero-valued fields with the documented defaults so that a
// hand-written literal only needs the endpoint and credentials
func (o *Options) normalize() {
	def := DefaultOptions(o.APIURL, o.APIKey)
	if o.BatchSize == 0 {
		o.BatchSize = def.BatchSize
	}
	if o.FlushIntervalMS == 0 {
		o.FlushIntervalMS = def.FlushIntervalMS
	}
	if o.MaxBufferSize == 0 {
		o.MaxBufferSize = def.MaxBufferSize
	}
	if o.RetryDelayMS == 0 {
		o.RetryDelayMS = def.RetryDelayMS
	}
	if o.CircuitBreakerThreshold == 0 {
		o.CircuitBreakerThreshold = def.CircuitBreakerThreshold
	}
	if o.CircuitBreakerResetMS == 0 {
		o.CircuitBreakerResetMS = def.CircuitBreakerResetMS
	}
	if o.RequestTimeoutMS == 0 {
		o.RequestTimeoutMS = def.RequestTimeoutMS
	}
	if o.DropPolicy == "" {
		o.DropPolicy = def.DropPolicy
	}
	if o.RateBurst == 0 {
		o.RateBurst = int64(o.RateLimit)
	}
}

func (o *Options) flushInterval() time.Duration {
	return time.Duration(o.FlushIntervalMS) * time.Millisecond
}

func (o *Options) retryDelay() time.Duration {
	return time.Duration(o.RetryDelayMS) * time.Millisecond
}

func (o *Options) circuitReset() time.Duration {
	return time.Duration(o.CircuitBreakerResetMS) * time.Millisecond
}

func (o *Options) requestTimeout() time.Duration {
	return time.Duration(o.RequestTimeoutMS) * time.Millisecond
}
