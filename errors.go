// FILE: logtide-go/errors.go
package logtide

import "errors"

var (
	// ErrClosed is returned by operations on a closed client
	ErrClosed = errors.New("logtide: client is closed")

	// ErrEmptyService is returned when a logging call carries an empty service name
	ErrEmptyService = errors.New("logtide: service name cannot be empty")

	// ErrInvalidLevel is returned when a custom entry carries an unknown level
	ErrInvalidLevel = errors.New("logtide: invalid log level")

	// ErrCircuitOpen is reported to the error observer when a batch is shed
	// because the circuit breaker is open. It is never returned to producers.
	ErrCircuitOpen = errors.New("logtide: circuit breaker is open")
)
