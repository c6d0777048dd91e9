package engine

import "errors"

// Domain-specific errors for the synchronisation engine.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrShutdownTimeout is returned when workers do not finish within the
	// configured shutdown grace period.
	ErrShutdownTimeout = errors.New("engine: workers did not stop within shutdown grace")

	// ErrWriteFailed is returned when an output write exhausts its retries.
	ErrWriteFailed = errors.New("engine: output write failed after retries")
)
