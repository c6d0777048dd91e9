package hardware

// PinDirection configures a pin as input or output.
type PinDirection int

// Pin directions.
const (
	DirectionInput PinDirection = iota
	DirectionOutput
)

// Pull configures the internal pull resistor of an input pin.
type Pull int

// Pull resistor modes.
const (
	PullNone Pull = iota
	PullUp
	PullDown
)

// PinOptions carries optional per-pin setup parameters.
type PinOptions struct {
	// Initial drives the pin to a known value during setup.
	// Nil leaves the pin as found.
	Initial *bool
}

// Module is the common surface of every hardware backend instance.
// Capability interfaces (DigitalIO, AnalogReader, StreamReadWriter) are
// discovered by type assertion when the module registry binds configured
// modules to their backends.
type Module interface {
	// Kind returns the backend type identifier (e.g. "raspberrypi").
	Kind() string

	// Close releases the backend's resources. Called at shutdown for
	// backends configured with cleanup enabled.
	Close() error
}

// DigitalIO is implemented by backends that expose digital pins.
//
// Calls may block on device I/O (I2C transactions, register access).
// Workers bound every call with the guarded helpers in this package.
type DigitalIO interface {
	Module

	// SetupPin configures a pin's direction, pull resistor and initial value.
	SetupPin(pin int, dir PinDirection, pull Pull, opts PinOptions) error

	// ReadPin returns the current electrical level of an input pin.
	ReadPin(pin int) (bool, error)

	// WritePin drives an output pin to the given level.
	WritePin(pin int, value bool) error
}

// AnalogReader is implemented by backends that expose analog channels.
type AnalogReader interface {
	Module

	// ReadChannel samples one analog channel.
	ReadChannel(channel int) (float64, error)
}

// StreamReadWriter is implemented by backends that expose a byte stream.
// Units are atomic: a unit returned by ReadUnit is published as exactly one
// broker message, and a WriteUnit call writes exactly one inbound message.
// Framing (line-delimited vs raw chunks) is the backend's concern.
type StreamReadWriter interface {
	Module

	// ReadUnit blocks until one unit is available or the backend's read
	// timeout elapses.
	ReadUnit() ([]byte, error)

	// WriteUnit writes one unit to the device.
	WriteUnit(data []byte) error
}
