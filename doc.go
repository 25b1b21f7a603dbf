// FILE: logtide-go/doc.go

// Package logtide is the Go client SDK for the LogTide log ingestion
// service. It accepts discrete log events from concurrent producers,
// batches them in a bounded in-memory buffer, and ships them to the
// collector with retry, exponential backoff and a circuit breaker. Logging
// calls never block on the network and never fail because the backend is
// down; delivery outcomes are observable through client metrics and the
// circuit breaker state.
package logtide
