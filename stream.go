// FILE: logtide-go/stream.go
package logtide

import (
	"bufio"
	"context"
	"encoding/json"
	"strings"
)

// StreamOptions filters the live tail. Zero fields tail everything.
type StreamOptions struct {
	Service string
	Level   Level
}

// Stream consumes the collector's server-sent event feed, invoking onLog for
// every received entry until ctx is cancelled or the stream ends. Malformed
// events go to onErr (when non-nil) and do not stop the stream. This is an
// iterator over the feed: it performs no buffering, batching or retrying of its
// own.
func (c *Client) Stream(ctx context.Context, opts StreamOptions, onLog func(map[string]any), onErr func(error)) error {
	if c.closed.Load() {
		return ErrClosed
	}
	if ctx == nil {
		ctx = context.Background()
	}

	params := map[string]string{}
	if opts.Service != "" {
		params["service"] = opts.Service
	}
	if opts.Level != "" {
		params["level"] = string(opts.Level)
	}

	body, err := c.transport.OpenStream("/api/logs/stream", params)
	if err != nil {
		return err
	}
	defer body.Close()

	// Closing the body unblocks the scanner when the context is cancelled
	finished := make(chan struct{})
	defer close(finished)
	go func() {
		select {
		case <-ctx.Done():
			body.Close()
		case <-finished:
		}
	}()

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		data, ok := strings.CutPrefix(line, "data: ")
		if !ok {
			continue
		}

		var event map[string]any
		if err := json.Unmarshal([]byte(data), &event); err != nil {
			if onErr != nil {
				onErr(err)
			}
			continue
		}
		onLog(event)
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err := scanner.Err(); err != nil {
		if onErr != nil {
			onErr(err)
		}
		return err
	}
	return nil
}
