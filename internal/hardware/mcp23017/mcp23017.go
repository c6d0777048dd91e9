// Package mcp23017 implements the hardware backend for the Microchip
// MCP23017 16-bit I2C port expander, via racerxdl/go-mcp23017.
package mcp23017

import (
	"fmt"

	mcp "github.com/racerxdl/go-mcp23017"

	"github.com/nerrad567/gpio2mqtt/internal/hardware"
	"github.com/nerrad567/gpio2mqtt/internal/infrastructure/config"
)

// Kind is this backend's registry identifier.
const Kind = "mcp23017"

func init() {
	hardware.Register(Kind, open)
}

// Backend drives one MCP23017 chip. Pins 0-7 map to bank A, 8-15 to bank B.
type Backend struct {
	name   string
	device *mcp.Device
}

func open(cfg config.GPIOModuleConfig) (hardware.Module, error) {
	// chip_addr in config is the full I2C address (0x20-0x27); the driver
	// wants the device number offset from 0x20.
	devNum := cfg.ChipAddr
	if devNum >= 0x20 {
		devNum -= 0x20
	}
	if devNum < 0 || devNum > 7 {
		return nil, fmt.Errorf("chip_addr %#x out of range (0x20-0x27)", cfg.ChipAddr)
	}

	device, err := mcp.Open(uint8(cfg.I2CBusNum), uint8(devNum))
	if err != nil {
		return nil, fmt.Errorf("opening i2c bus %d device %d: %w", cfg.I2CBusNum, devNum, err)
	}

	return &Backend{name: cfg.Name, device: device}, nil
}

// Kind returns the backend type identifier.
func (b *Backend) Kind() string { return Kind }

// SetupPin configures direction, pull-up and optional initial value.
// The chip has no pull-down resistors; requesting one is a config error.
func (b *Backend) SetupPin(pin int, dir hardware.PinDirection, pull hardware.Pull, opts hardware.PinOptions) error {
	switch dir {
	case hardware.DirectionInput:
		if err := b.device.PinMode(uint8(pin), mcp.INPUT); err != nil {
			return fmt.Errorf("pin %d mode: %w", pin, err)
		}
	case hardware.DirectionOutput:
		if err := b.device.PinMode(uint8(pin), mcp.OUTPUT); err != nil {
			return fmt.Errorf("pin %d mode: %w", pin, err)
		}
	}

	switch pull {
	case hardware.PullUp:
		if err := b.device.SetPullUp(uint8(pin), true); err != nil {
			return fmt.Errorf("pin %d pullup: %w", pin, err)
		}
	case hardware.PullDown:
		return fmt.Errorf("%w: mcp23017 has no pull-down resistors", hardware.ErrUnsupported)
	case hardware.PullNone:
		if err := b.device.SetPullUp(uint8(pin), false); err != nil {
			return fmt.Errorf("pin %d pullup: %w", pin, err)
		}
	}

	if opts.Initial != nil && dir == hardware.DirectionOutput {
		if err := b.WritePin(pin, *opts.Initial); err != nil {
			return err
		}
	}

	return nil
}

// ReadPin returns the electrical level of a pin.
func (b *Backend) ReadPin(pin int) (bool, error) {
	level, err := b.device.DigitalRead(uint8(pin))
	if err != nil {
		return false, fmt.Errorf("pin %d read: %w", pin, err)
	}
	return bool(level), nil
}

// WritePin drives a pin to the given level.
func (b *Backend) WritePin(pin int, value bool) error {
	if err := b.device.DigitalWrite(uint8(pin), mcp.PinLevel(value)); err != nil {
		return fmt.Errorf("pin %d write: %w", pin, err)
	}
	return nil
}

// Close releases the I2C handle.
func (b *Backend) Close() error {
	return b.device.Close()
}
