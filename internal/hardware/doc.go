// Package hardware defines the capability abstraction over physical
// device backends.
//
// A backend (one chip or bus) is described by one gpio_modules entry in
// configuration and opened through a factory registry keyed by a type
// identifier string — no reflection, no dynamic loading. Backends register
// themselves from package init; the binary chooses its supported backends
// with blank imports:
//
//	import (
//	    _ "github.com/nerrad567/gpio2mqtt/internal/hardware/mcp23017"
//	    _ "github.com/nerrad567/gpio2mqtt/internal/hardware/mcp3008"
//	    _ "github.com/nerrad567/gpio2mqtt/internal/hardware/raspberrypi"
//	    _ "github.com/nerrad567/gpio2mqtt/internal/hardware/serialport"
//	)
//
// Capabilities are separate interfaces (DigitalIO, AnalogReader,
// StreamReadWriter); a backend implements whichever subset its silicon
// supports, and the module registry type-asserts at startup so a
// misconfigured binding fails fast instead of at first use.
//
// Every driver call may block on device I/O. The *Timeout helpers bound a
// call and abandon it on expiry, converting a wedged device into an
// ordinary transient error at the worker boundary.
package hardware
