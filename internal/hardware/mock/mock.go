// Package mock implements an in-memory hardware backend for tests and
// dry-runs on machines without real buses attached.
//
// The backend implements every capability interface. Digital pins and
// analog channels are plain maps guarded by a mutex; the stream side is a
// pair of channels so tests can inject inbound units and observe outbound
// ones. Optional hook functions let a test inject failures or latency on
// any operation.
package mock

import (
	"errors"
	"sync"

	"github.com/nerrad567/gpio2mqtt/internal/hardware"
	"github.com/nerrad567/gpio2mqtt/internal/infrastructure/config"
)

// Kind is this backend's registry identifier.
const Kind = "mock"

func init() {
	hardware.Register(Kind, func(cfg config.GPIOModuleConfig) (hardware.Module, error) {
		return New(cfg.Name), nil
	})
}

// ErrClosed is returned by stream operations after Close.
var ErrClosed = errors.New("mock: backend closed")

// Backend is an in-memory device. The zero value is not usable; call New.
type Backend struct {
	name string

	mu       sync.Mutex
	pins     map[int]bool
	dirs     map[int]hardware.PinDirection
	channels map[int]float64
	closed   bool

	inbound  chan []byte
	outbound chan []byte

	// Hooks, when set, run before the default behaviour and may return an
	// error to make the operation fail. Guarded by mu so tests can install
	// them while workers are running.
	readPinHook     func(pin int) error
	writePinHook    func(pin int, value bool) error
	readChannelHook func(channel int) error
}

// New returns an empty mock backend.
func New(name string) *Backend {
	return &Backend{
		name:     name,
		pins:     make(map[int]bool),
		dirs:     make(map[int]hardware.PinDirection),
		channels: make(map[int]float64),
		inbound:  make(chan []byte, 64),
		outbound: make(chan []byte, 64),
	}
}

// Kind returns the backend type identifier.
func (b *Backend) Kind() string { return Kind }

// SetupPin records direction and optional initial value.
func (b *Backend) SetupPin(pin int, dir hardware.PinDirection, pull hardware.Pull, opts hardware.PinOptions) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dirs[pin] = dir
	if opts.Initial != nil {
		b.pins[pin] = *opts.Initial
	}
	return nil
}

// SetReadPinHook installs a hook run before every ReadPin.
func (b *Backend) SetReadPinHook(hook func(pin int) error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.readPinHook = hook
}

// SetWritePinHook installs a hook run before every WritePin.
func (b *Backend) SetWritePinHook(hook func(pin int, value bool) error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.writePinHook = hook
}

// SetReadChannelHook installs a hook run before every ReadChannel.
func (b *Backend) SetReadChannelHook(hook func(channel int) error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.readChannelHook = hook
}

// ReadPin returns the stored level for a pin (false if never set).
func (b *Backend) ReadPin(pin int) (bool, error) {
	b.mu.Lock()
	hook := b.readPinHook
	b.mu.Unlock()
	if hook != nil {
		if err := hook(pin); err != nil {
			return false, err
		}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pins[pin], nil
}

// WritePin stores a level for a pin.
func (b *Backend) WritePin(pin int, value bool) error {
	b.mu.Lock()
	hook := b.writePinHook
	b.mu.Unlock()
	if hook != nil {
		if err := hook(pin, value); err != nil {
			return err
		}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pins[pin] = value
	return nil
}

// SetPin sets a pin level from test code, bypassing hooks.
func (b *Backend) SetPin(pin int, value bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pins[pin] = value
}

// ReadChannel returns the stored value for an analog channel.
func (b *Backend) ReadChannel(channel int) (float64, error) {
	b.mu.Lock()
	hook := b.readChannelHook
	b.mu.Unlock()
	if hook != nil {
		if err := hook(channel); err != nil {
			return 0, err
		}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.channels[channel], nil
}

// SetChannel sets an analog channel value from test code.
func (b *Backend) SetChannel(channel int, value float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.channels[channel] = value
}

// ReadUnit blocks until a unit is injected via InjectUnit or the backend
// is closed.
func (b *Backend) ReadUnit() ([]byte, error) {
	unit, ok := <-b.inbound
	if !ok {
		return nil, ErrClosed
	}
	return unit, nil
}

// WriteUnit records an outbound unit, retrievable via Outbound.
func (b *Backend) WriteUnit(data []byte) error {
	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return ErrClosed
	}
	// Copy: callers may reuse the slice.
	unit := make([]byte, len(data))
	copy(unit, data)
	b.outbound <- unit
	return nil
}

// InjectUnit makes a unit available to the next ReadUnit call.
func (b *Backend) InjectUnit(data []byte) {
	unit := make([]byte, len(data))
	copy(unit, data)
	b.inbound <- unit
}

// Outbound exposes units written via WriteUnit.
func (b *Backend) Outbound() <-chan []byte { return b.outbound }

// Close unblocks pending stream reads.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	close(b.inbound)
	return nil
}
