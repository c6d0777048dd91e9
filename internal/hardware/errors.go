package hardware

import "errors"

// Domain-specific errors for hardware operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrUnknownBackend is returned when a configuration names a backend
	// type that was never registered.
	ErrUnknownBackend = errors.New("hardware: unknown backend type")

	// ErrTimeout is returned when a hardware operation exceeds its
	// per-operation deadline. The underlying call is abandoned.
	ErrTimeout = errors.New("hardware: operation timed out")

	// ErrUnsupported is returned when a module is asked for a capability
	// its backend does not implement (e.g. a sensor bound to a
	// digital-only chip).
	ErrUnsupported = errors.New("hardware: capability not supported by backend")
)
