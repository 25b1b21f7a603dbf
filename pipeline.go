// FILE: logtide-go/pipeline.go
package logtide

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/logtide/logtide-go/internal/breaker"
	"github.com/logtide/logtide-go/internal/buffer"
	"github.com/logtide/logtide-go/internal/metrics"

	"github.com/lixenwraith/log"
	"github.com/valyala/bytebufferpool"
)

// batchSender transmits one encoded batch. Implemented by internal/transport;
// tests substitute their own.
type batchSender interface {
	SendBatch(body []byte) error
}

type flushRequest struct {
	reply chan struct{}
}

// pipeline is the batch scheduler and delivery worker. A single goroutine
// performs every drain and send, which makes drains mutually exclusive and
// keeps delivery in FIFO order. Retry backoff blocks only this worker;
// producers never wait on the network.
type pipeline struct {
	opts   *Options
	buf    *buffer.Buffer[Entry]
	brk    *breaker.Breaker
	met    *metrics.Registry
	sender batchSender
	logger *log.Logger

	notify chan struct{}
	flushc chan flushRequest
	done   chan struct{}
	wg     sync.WaitGroup

	sleep func(time.Duration) // test hook for backoff delays
}

func newPipeline(opts *Options, buf *buffer.Buffer[Entry], brk *breaker.Breaker, met *metrics.Registry, sender batchSender, logger *log.Logger) *pipeline {
	return &pipeline{
		opts:   opts,
		buf:    buf,
		brk:    brk,
		met:    met,
		sender: sender,
		logger: logger,
		notify: make(chan struct{}, 1),
		flushc: make(chan flushRequest),
		done:   make(chan struct{}),
		sleep:  time.Sleep,
	}
}

func (p *pipeline) start() {
	p.wg.Add(1)
	go p.run()
}

// stop terminates the worker and waits for it to finish. Callers flush first.
func (p *pipeline) stop() {
	close(p.done)
	p.wg.Wait()
}

// requestDrain signals the worker that the buffer reached the batch size
// threshold. Non-blocking; coalesces with a pending signal.
func (p *pipeline) requestDrain() {
	select {
	case p.notify <- struct{}{}:
	default:
	}
}

// flush asks the worker to drain the whole buffer and waits until every
// resulting batch's delivery attempt has completed or been abandoned.
func (p *pipeline) flush(ctx context.Context) error {
	req := flushRequest{reply: make(chan struct{})}
	select {
	case p.flushc <- req:
	case <-p.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-req.reply:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *pipeline) run() {
	defer p.wg.Done()

	var tick <-chan time.Time
	if interval := p.opts.flushInterval(); interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	batchSize := int(p.opts.BatchSize)

	for {
		select {
		case <-tick:
			// Empty buffer at a tick produces no batch; the ticker simply
			// fires again next interval.
			if batch := p.buf.Drain(batchSize); len(batch) > 0 {
				p.sendBatch(batch)
			}

		case <-p.notify:
			for p.buf.Len() >= batchSize {
				p.sendBatch(p.buf.Drain(batchSize))
			}

		case req := <-p.flushc:
			p.drainAll(batchSize)
			close(req.reply)

		case <-p.done:
			return
		}
	}
}

func (p *pipeline) drainAll(batchSize int) {
	for {
		batch := p.buf.Drain(batchSize)
		if len(batch) == 0 {
			return
		}
		p.sendBatch(batch)
	}
}

// sendBatch delivers one batch with retry and exponential backoff, gated by
// the circuit breaker before every attempt. An exhausted or shed batch is
// discarded, never re-enqueued: bounded memory wins over completeness.
func (p *pipeline) sendBatch(batch []Entry) {
	if len(batch) == 0 {
		return
	}

	body := bytebufferpool.Get()
	defer bytebufferpool.Put(body)

	if err := json.NewEncoder(body).Encode(batch); err != nil {
		p.logger.Error("msg", "Failed to encode batch",
			"component", "pipeline",
			"error", err,
			"batch_size", len(batch))
		p.met.AddErrors(1)
		p.met.AddDropped(len(batch))
		p.observe(err, len(batch))
		return
	}

	delay := p.opts.retryDelay()
	var lastErr error

	for attempt := int64(0); attempt <= p.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			p.met.AddRetries(1)
			p.logger.Debug("msg", "Retrying batch delivery",
				"component", "pipeline",
				"attempt", attempt+1,
				"delay_ms", delay.Milliseconds())
			p.sleep(delay)
			delay *= 2
		}

		if !p.brk.Allow() {
			// Open circuit: the batch is treated as failed immediately,
			// without invoking the transport.
			p.met.AddErrors(1)
			p.met.AddDropped(len(batch))
			p.logger.Warn("msg", "Circuit breaker open, dropping batch",
				"component", "pipeline",
				"batch_size", len(batch))
			p.observe(ErrCircuitOpen, len(batch))
			return
		}

		start := time.Now()
		err := p.sender.SendBatch(body.B)
		if err == nil {
			p.met.AddSent(len(batch))
			p.met.ObserveLatency(time.Since(start))
			p.brk.RecordSuccess()
			p.logger.Debug("msg", "Batch sent",
				"component", "pipeline",
				"batch_size", len(batch),
				"attempt", attempt+1)
			return
		}

		lastErr = err
		p.met.AddErrors(1)
		if p.brk.RecordFailure() {
			p.met.AddTrips(1)
			p.logger.Warn("msg", "Circuit breaker tripped",
				"component", "pipeline")
		}
		p.logger.Warn("msg", "Batch delivery failed",
			"component", "pipeline",
			"attempt", attempt+1,
			"max_retries", p.opts.MaxRetries,
			"error", err)
	}

	p.met.AddDropped(len(batch))
	p.logger.Error("msg", "Failed to send batch after all retries",
		"component", "pipeline",
		"batch_size", len(batch),
		"retries", p.opts.MaxRetries,
		"last_error", lastErr)
	p.observe(lastErr, len(batch))
}

// observe reports an abandoned batch to the registered error observer. The
// observer runs on the delivery worker and must not block for long.
func (p *pipeline) observe(err error, entries int) {
	if p.opts.OnError != nil {
		p.opts.OnError(err, entries)
	}
}
