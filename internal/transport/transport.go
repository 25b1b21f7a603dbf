// FILE: logtide-go/internal/transport/transport.go
package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/valyala/fasthttp"
)

// Config holds the collector endpoint settings
type Config struct {
	// URL is the collector base URL, e.g. "https://logs.example.com"
	URL string
	// APIKey is sent as a bearer token on every request
	APIKey string
	// Timeout bounds each individual request attempt
	Timeout time.Duration
	// UserAgent identifies the SDK on the wire
	UserAgent string
}

// Client is the HTTP transport for the collector API. It is a thin
// request/response wrapper; batching, retries and failure shedding live in
// the delivery pipeline above it.
type Client struct {
	http      *fasthttp.Client
	streaming *fasthttp.Client
	cfg       Config
}

// StatusError is returned when the collector answers with a non-2xx status
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned status %d: %s", e.StatusCode, e.Body)
}

// New creates a transport client for the given collector
func New(cfg Config) *Client {
	cfg.URL = strings.TrimRight(cfg.URL, "/")
	return &Client{
		cfg: cfg,
		http: &fasthttp.Client{
			MaxConnsPerHost:     10,
			MaxIdleConnDuration: 10 * time.Second,
			ReadTimeout:         cfg.Timeout,
			WriteTimeout:        cfg.Timeout,
		},
		// Separate client for live tail: the response body is unbounded, so
		// it must be streamed and must not carry a read timeout.
		streaming: &fasthttp.Client{
			MaxConnsPerHost:    2,
			WriteTimeout:       cfg.Timeout,
			StreamResponseBody: true,
		},
	}
}

// SendBatch POSTs one encoded batch (a JSON array of entries) to the ingest
// endpoint. A 2xx response is success; anything else is an error.
func (c *Client) SendBatch(body []byte) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()

	req.SetRequestURI(c.cfg.URL + "/api/logs")
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	c.setCommonHeaders(req)
	req.SetBody(body)

	err := c.http.DoTimeout(req, resp, c.cfg.Timeout)

	statusCode := resp.StatusCode()
	var responseBody []byte
	if err == nil && statusCode >= 300 && len(resp.Body()) > 0 {
		responseBody = make([]byte, len(resp.Body()))
		copy(responseBody, resp.Body())
	}

	// Release immediately, not deferred
	fasthttp.ReleaseRequest(req)
	fasthttp.ReleaseResponse(resp)

	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	if statusCode < 200 || statusCode >= 300 {
		return &StatusError{StatusCode: statusCode, Body: responseBody}
	}
	return nil
}

// GetJSON performs a parameterized GET against the collector API and decodes
// the JSON response into out. The context deadline, when set, overrides the
// configured timeout.
func (c *Client) GetJSON(ctx context.Context, path string, params map[string]string, out any) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.cfg.URL + path)
	req.Header.SetMethod(fasthttp.MethodGet)
	c.setCommonHeaders(req)
	for k, v := range params {
		req.URI().QueryArgs().Set(k, v)
	}

	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = c.http.DoDeadline(req, resp, deadline)
	} else {
		err = c.http.DoTimeout(req, resp, c.cfg.Timeout)
	}
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	statusCode := resp.StatusCode()
	if statusCode < 200 || statusCode >= 300 {
		body := make([]byte, len(resp.Body()))
		copy(body, resp.Body())
		return &StatusError{StatusCode: statusCode, Body: body}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// OpenStream opens a long-lived GET whose body is consumed incrementally.
// The returned ReadCloser unblocks pending reads when closed, so a watcher
// goroutine can use Close for cancellation.
func (c *Client) OpenStream(path string, params map[string]string) (io.ReadCloser, error) {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()

	req.SetRequestURI(c.cfg.URL + path)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "text/event-stream")
	c.setCommonHeaders(req)
	for k, v := range params {
		req.URI().QueryArgs().Set(k, v)
	}

	if err := c.streaming.Do(req, resp); err != nil {
		fasthttp.ReleaseResponse(resp)
		return nil, fmt.Errorf("request failed: %w", err)
	}

	statusCode := resp.StatusCode()
	if statusCode < 200 || statusCode >= 300 {
		var body []byte
		if b, err := io.ReadAll(io.LimitReader(resp.BodyStream(), 4096)); err == nil {
			body = b
		}
		resp.CloseBodyStream()
		fasthttp.ReleaseResponse(resp)
		return nil, &StatusError{StatusCode: statusCode, Body: body}
	}

	return &streamBody{resp: resp, r: resp.BodyStream()}, nil
}

func (c *Client) setCommonHeaders(req *fasthttp.Request) {
	req.Header.Set(fasthttp.HeaderAuthorization, "Bearer "+c.cfg.APIKey)
	if c.cfg.UserAgent != "" {
		req.Header.Set(fasthttp.HeaderUserAgent, c.cfg.UserAgent)
	}
}

type streamBody struct {
	resp *fasthttp.Response
	r    io.Reader
	once sync.Once
	err  error
}

func (s *streamBody) Read(p []byte) (int, error) {
	return s.r.Read(p)
}

// Close is idempotent: both the consumer and a cancellation watcher may call
// it, and the pooled response must be released exactly once.
func (s *streamBody) Close() error {
	s.once.Do(func() {
		s.err = s.resp.CloseBodyStream()
		fasthttp.ReleaseResponse(s.resp)
	})
	return s.err
}
