// FILE: logtide-go/client.go
package logtide

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/logtide/logtide-go/internal/breaker"
	"github.com/logtide/logtide-go/internal/buffer"
	"github.com/logtide/logtide-go/internal/metrics"
	"github.com/logtide/logtide-go/internal/transport"

	"github.com/lixenwraith/log"
	"golang.org/x/time/rate"
)

// ClientMetrics is a point-in-time snapshot of the client's counters
type ClientMetrics = metrics.Snapshot

// CircuitState is the circuit breaker state: CLOSED, OPEN or HALF_OPEN
type CircuitState = breaker.State

const (
	CircuitClosed   = breaker.StateClosed
	CircuitOpen     = breaker.StateOpen
	CircuitHalfOpen = breaker.StateHalfOpen
)

// Client ships log entries to a LogTide collector with batching, retry,
// circuit breaking and bounded buffering. Logging calls are non-blocking and
// never fail because of backend unavailability; delivery runs on a single
// background worker. Create with New, dispose with Close.
type Client struct {
	opts   Options
	logger *log.Logger

	buf       *buffer.Buffer[Entry]
	brk       *breaker.Breaker
	met       *metrics.Registry
	transport *transport.Client
	pipe      *pipeline
	limiter   *rate.Limiter

	traceMu sync.RWMutex
	traceID string

	closed    atomic.Bool
	closeOnce sync.Once
}

// New validates opts, fills unset fields with defaults, and starts the
// delivery worker.
func New(opts Options) (*Client, error) {
	opts.normalize()
	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("logtide: invalid options: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.NewLogger()
		if opts.Debug {
			if err := logger.ApplyConfigString(
				"disable_file=true",
				"enable_console=true",
				"console_target=stdout",
				fmt.Sprintf("level=%d", log.LevelDebug),
			); err != nil {
				return nil, fmt.Errorf("logtide: failed to initialize logger: %w", err)
			}
		} else if err := logger.ApplyConfigString(
			"disable_file=true",
			"enable_console=false",
		); err != nil {
			return nil, fmt.Errorf("logtide: failed to initialize logger: %w", err)
		}
		if err := logger.Start(); err != nil {
			return nil, fmt.Errorf("logtide: failed to initialize logger: %w", err)
		}
	}

	policy := buffer.DropNewest
	if strings.ToLower(opts.DropPolicy) == DropPolicyOldest {
		policy = buffer.DropOldest
	}

	c := &Client{
		opts:   opts,
		logger: logger,
		buf:    buffer.New[Entry](int(opts.MaxBufferSize), policy),
		brk:    breaker.New(int(opts.CircuitBreakerThreshold), opts.circuitReset()),
		met:    metrics.New(opts.EnableMetrics),
		transport: transport.New(transport.Config{
			URL:       opts.APIURL,
			APIKey:    opts.APIKey,
			Timeout:   opts.requestTimeout(),
			UserAgent: "logtide-go/" + Version,
		}),
	}

	if opts.RateLimit > 0 {
		burst := int(opts.RateBurst)
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	c.pipe = newPipeline(&c.opts, c.buf, c.brk, c.met, c.transport, logger)
	c.pipe.start()

	logger.Info("msg", "LogTide client started",
		"component", "client",
		"api_url", opts.APIURL,
		"batch_size", opts.BatchSize,
		"flush_interval_ms", opts.FlushIntervalMS,
		"max_buffer_size", opts.MaxBufferSize)

	return c, nil
}

// Log enqueues a custom entry. It validates producer input, stamps creation
// time, merges global metadata and resolves the trace id, then hands the
// entry to the buffer. It never blocks on the network; a saturated buffer
// sheds load silently per the drop policy.
func (c *Client) Log(ctx context.Context, entry Entry) error {
	if c.closed.Load() {
		return ErrClosed
	}
	if entry.Service == "" {
		return ErrEmptyService
	}
	if !entry.Level.Valid() {
		return ErrInvalidLevel
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if c.limiter != nil && !c.limiter.Allow() {
		c.met.AddDropped(1)
		c.logger.Debug("msg", "Rate limit exceeded, dropping entry",
			"component", "client",
			"service", entry.Service)
		return nil
	}

	if entry.Time.IsZero() {
		entry.Time = time.Now().UTC()
	}
	entry.Metadata = mergeMetadata(c.opts.GlobalMetadata, entry.Metadata)

	if entry.TraceID == "" {
		if id, ok := TraceIDFrom(ctx); ok {
			entry.TraceID = id
		} else if id := c.TraceID(); id != "" {
			entry.TraceID = id
		} else if c.opts.AutoTraceID {
			entry.TraceID = NewTraceID()
		}
	}

	switch c.buf.Enqueue(entry) {
	case buffer.DroppedNewest:
		c.met.AddDropped(1)
		c.logger.Debug("msg", "Buffer full, dropping entry",
			"component", "client",
			"service", entry.Service)
		return nil
	case buffer.EvictedOldest:
		c.met.AddDropped(1)
		c.logger.Debug("msg", "Buffer full, evicted oldest entry",
			"component", "client",
			"service", entry.Service)
	case buffer.Rejected:
		return ErrClosed
	}

	if c.buf.Len() >= int(c.opts.BatchSize) {
		c.pipe.requestDrain()
	}
	return nil
}

// Debug logs a debug-level message
func (c *Client) Debug(ctx context.Context, service, message string, metadata Metadata) error {
	return c.Log(ctx, Entry{Service: service, Level: LevelDebug, Message: message, Metadata: metadata})
}

// Info logs an info-level message
func (c *Client) Info(ctx context.Context, service, message string, metadata Metadata) error {
	return c.Log(ctx, Entry{Service: service, Level: LevelInfo, Message: message, Metadata: metadata})
}

// Warn logs a warn-level message
func (c *Client) Warn(ctx context.Context, service, message string, metadata Metadata) error {
	return c.Log(ctx, Entry{Service: service, Level: LevelWarn, Message: message, Metadata: metadata})
}

// Error logs an error-level message. metadataOrErr may be nil, a metadata
// map, or a Go error; an error is serialized into metadata["error"] with its
// type name, message and stack.
func (c *Client) Error(ctx context.Context, service, message string, metadataOrErr any) error {
	md, err := metadataOrError(metadataOrErr)
	if err != nil {
		return err
	}
	return c.Log(ctx, Entry{Service: service, Level: LevelError, Message: message, Metadata: md})
}

// Critical logs a critical-level message. metadataOrErr follows the same
// rules as Error.
func (c *Client) Critical(ctx context.Context, service, message string, metadataOrErr any) error {
	md, err := metadataOrError(metadataOrErr)
	if err != nil {
		return err
	}
	return c.Log(ctx, Entry{Service: service, Level: LevelCritical, Message: message, Metadata: md})
}

// Flush synchronously drains the buffer and waits until every resulting
// batch has been delivered or abandoned. Delivery failures stay
// observational (metrics, error observer); Flush errors only on lifecycle
// misuse or context cancellation.
func (c *Client) Flush(ctx context.Context) error {
	if c.closed.Load() {
		return ErrClosed
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return c.pipe.flush(ctx)
}

// SetTraceID sets the client-wide default trace id applied to entries that
// carry none from their context. Overwrite semantics; pass "" to clear.
// Context-scoped ids from WithTraceID take precedence.
func (c *Client) SetTraceID(id string) {
	c.traceMu.Lock()
	c.traceID = id
	c.traceMu.Unlock()
}

// TraceID returns the client-wide default trace id, or "" when unset
func (c *Client) TraceID() string {
	c.traceMu.RLock()
	defer c.traceMu.RUnlock()
	return c.traceID
}

// Metrics returns a snapshot of the delivery counters
func (c *Client) Metrics() ClientMetrics {
	return c.met.Snapshot()
}

// ResetMetrics zeroes all counters and the latency accumulator
func (c *Client) ResetMetrics() {
	c.met.Reset()
}

// CircuitBreakerState returns the breaker state without mutating it
func (c *Client) CircuitBreakerState() CircuitState {
	return c.brk.State()
}

// Close performs a final flush, stops the delivery worker and rejects
// further enqueues. Idempotent; no worker activity continues after it
// returns.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.buf.CloseIntake()
		_ = c.pipe.flush(context.Background())
		c.pipe.stop()

		snap := c.met.Snapshot()
		c.logger.Info("msg", "LogTide client closed",
			"component", "client",
			"logs_sent", snap.LogsSent,
			"logs_dropped", snap.LogsDropped,
			"errors", snap.Errors)
	})
	return nil
}
