// FILE: logtide-go/query.go
package logtide

import (
	"context"
	"net/url"
	"strconv"
	"time"
)

// QueryOptions filters a log query. Zero fields are omitted from the request.
type QueryOptions struct {
	Service string
	Level   Level
	// Query is a full-text search term
	Query  string
	From   time.Time
	To     time.Time
	Limit  int // defaults to 100
	Offset int
}

// LogsResponse is the result of a log query
type LogsResponse struct {
	Logs  []map[string]any `json:"logs"`
	Total int              `json:"total"`
}

// StatsOptions selects the window and bucketing for aggregated statistics
type StatsOptions struct {
	From     time.Time
	To       time.Time
	Interval string // "1m" | "5m" | "1h" | "1d", defaults to "1h"
	Service  string
}

// StatsResponse is the aggregated-statistics result
type StatsResponse struct {
	Timeseries  []map[string]any `json:"timeseries"`
	TopServices []map[string]any `json:"top_services"`
	TopErrors   []map[string]any `json:"top_errors"`
}

// Query fetches stored logs matching opts. This is a read-side collaborator:
// a plain parameterized GET with no batching or retry of its own.
func (c *Client) Query(ctx context.Context, opts QueryOptions) (*LogsResponse, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}

	params := map[string]string{
		"limit":  strconv.Itoa(limit),
		"offset": strconv.Itoa(opts.Offset),
	}
	if opts.Service != "" {
		params["service"] = opts.Service
	}
	if opts.Level != "" {
		params["level"] = string(opts.Level)
	}
	if opts.Query != "" {
		params["q"] = opts.Query
	}
	if !opts.From.IsZero() {
		params["from"] = opts.From.UTC().Format(time.RFC3339Nano)
	}
	if !opts.To.IsZero() {
		params["to"] = opts.To.UTC().Format(time.RFC3339Nano)
	}

	var out LogsResponse
	if err := c.transport.GetJSON(ctx, "/api/logs", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LogsByTraceID fetches every stored log correlated to one trace id
func (c *Client) LogsByTraceID(ctx context.Context, traceID string) ([]map[string]any, error) {
	var out []map[string]any
	path := "/api/logs/trace/" + url.PathEscape(traceID)
	if err := c.transport.GetJSON(ctx, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AggregatedStats fetches time-bucketed statistics for the given window
func (c *Client) AggregatedStats(ctx context.Context, opts StatsOptions) (*StatsResponse, error) {
	interval := opts.Interval
	if interval == "" {
		interval = "1h"
	}

	params := map[string]string{
		"interval": interval,
	}
	if !opts.From.IsZero() {
		params["from"] = opts.From.UTC().Format(time.RFC3339Nano)
	}
	if !opts.To.IsZero() {
		params["to"] = opts.To.UTC().Format(time.RFC3339Nano)
	}
	if opts.Service != "" {
		params["service"] = opts.Service
	}

	var out StatsResponse
	if err := c.transport.GetJSON(ctx, "/api/logs/stats", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
