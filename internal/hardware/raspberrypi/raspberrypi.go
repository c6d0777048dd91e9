// Package raspberrypi implements the hardware backend for the Raspberry
// Pi's on-board GPIO header, using memory-mapped register access via
// stianeikeland/go-rpio.
package raspberrypi

import (
	"fmt"
	"sync"

	"github.com/stianeikeland/go-rpio/v4"

	"github.com/nerrad567/gpio2mqtt/internal/hardware"
	"github.com/nerrad567/gpio2mqtt/internal/hardware/rpiomap"
	"github.com/nerrad567/gpio2mqtt/internal/infrastructure/config"
)

// Kind is this backend's registry identifier.
const Kind = "raspberrypi"

func init() {
	hardware.Register(Kind, open)
}

// Backend drives the Raspberry Pi GPIO header. Pin numbers are BCM.
type Backend struct {
	name   string
	closed bool
	mu     sync.Mutex
}

func open(cfg config.GPIOModuleConfig) (hardware.Module, error) {
	if err := rpiomap.Acquire(); err != nil {
		return nil, fmt.Errorf("mapping gpio registers: %w", err)
	}
	return &Backend{name: cfg.Name}, nil
}

// Kind returns the backend type identifier.
func (b *Backend) Kind() string { return Kind }

// SetupPin configures direction, pull resistor and optional initial value.
func (b *Backend) SetupPin(pin int, dir hardware.PinDirection, pull hardware.Pull, opts hardware.PinOptions) error {
	p := rpio.Pin(pin)

	switch dir {
	case hardware.DirectionInput:
		p.Input()
	case hardware.DirectionOutput:
		p.Output()
	}

	switch pull {
	case hardware.PullUp:
		p.PullUp()
	case hardware.PullDown:
		p.PullDown()
	case hardware.PullNone:
		p.PullOff()
	}

	if opts.Initial != nil && dir == hardware.DirectionOutput {
		if *opts.Initial {
			p.High()
		} else {
			p.Low()
		}
	}

	return nil
}

// ReadPin returns the electrical level of a pin.
func (b *Backend) ReadPin(pin int) (bool, error) {
	return rpio.Pin(pin).Read() == rpio.High, nil
}

// WritePin drives a pin to the given level.
func (b *Backend) WritePin(pin int, value bool) error {
	p := rpio.Pin(pin)
	if value {
		p.High()
	} else {
		p.Low()
	}
	return nil
}

// Close releases this instance's hold on the shared register mapping.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	return rpiomap.Release()
}
