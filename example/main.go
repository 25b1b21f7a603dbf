// FILE: logtide-go/example/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	logtide "github.com/logtide/logtide-go"
)

func main() {
	client, err := logtide.New(logtide.Options{
		APIURL: envOr("LOGTIDE_API_URL", "http://localhost:8080"),
		APIKey: envOr("LOGTIDE_API_KEY", "lt_your_api_key_here"),
		Debug:  true,
		GlobalMetadata: logtide.Metadata{
			"env":     "production",
			"version": "1.0.0",
			"region":  "us-east-1",
		},
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to create client:", err)
		os.Exit(1)
	}
	defer client.Close()

	ctx := context.Background()

	// Logging methods
	client.Debug(ctx, "service", "Debug message", nil)
	client.Info(ctx, "service", "Info message", logtide.Metadata{"userId": 123})
	client.Warn(ctx, "service", "Warning message", nil)
	client.Error(ctx, "service", "Error message", logtide.Metadata{"custom": "data"})
	client.Critical(ctx, "service", "Critical message", nil)

	// Error serialization
	client.Error(ctx, "database", "Query failed", errors.New("database timeout"))

	// Client-wide trace id
	client.SetTraceID("request-456")
	client.Info(ctx, "api", "Request received", nil)
	client.SetTraceID("")

	// Scoped trace ids: the inner scope wins, dropping the derived context
	// restores the outer one
	reqCtx := logtide.WithTraceID(ctx, "request-789")
	client.Info(reqCtx, "api", "Handling request", nil)
	jobCtx, jobID := logtide.WithNewTraceID(reqCtx)
	client.Info(jobCtx, "worker", "Background job started", nil)
	fmt.Println("job trace id:", jobID)
	client.Info(reqCtx, "api", "Request done", nil)

	// Synchronous flush: waits for delivery including retries
	if err := client.Flush(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "flush:", err)
	}

	// Query API
	result, err := client.Query(ctx, logtide.QueryOptions{
		Service: "api-gateway",
		Level:   logtide.LevelError,
		From:    time.Now().Add(-24 * time.Hour),
		To:      time.Now(),
		Limit:   100,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "query:", err)
	} else {
		fmt.Printf("found %d logs\n", result.Total)
	}

	// Logs correlated to one trace
	if logs, err := client.LogsByTraceID(ctx, "request-456"); err == nil {
		fmt.Printf("trace has %d logs\n", len(logs))
	}

	// Aggregated statistics
	if stats, err := client.AggregatedStats(ctx, logtide.StatsOptions{
		From:     time.Now().Add(-7 * 24 * time.Hour),
		To:       time.Now(),
		Interval: "1h",
	}); err == nil {
		fmt.Println("top services:", stats.TopServices)
	}

	// Live tail for a few seconds
	streamCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	client.Stream(streamCtx, logtide.StreamOptions{Level: logtide.LevelError},
		func(event map[string]any) {
			fmt.Printf("[%v] %v: %v\n", event["time"], event["level"], event["message"])
		},
		func(err error) {
			fmt.Fprintln(os.Stderr, "stream:", err)
		})

	// Delivery observability
	m := client.Metrics()
	fmt.Printf("sent=%d dropped=%d errors=%d retries=%d trips=%d avg_latency=%.2fms\n",
		m.LogsSent, m.LogsDropped, m.Errors, m.Retries, m.CircuitBreakerTrips, m.AvgLatencyMs)
	fmt.Println("circuit state:", client.CircuitBreakerState())
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
