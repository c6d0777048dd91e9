// Package mcp3008 implements the analog hardware backend for the
// Microchip MCP3008 8-channel 10-bit SPI ADC, using the SPI support in
// stianeikeland/go-rpio.
package mcp3008

import (
	"fmt"
	"sync"

	"github.com/stianeikeland/go-rpio/v4"

	"github.com/nerrad567/gpio2mqtt/internal/hardware"
	"github.com/nerrad567/gpio2mqtt/internal/hardware/rpiomap"
	"github.com/nerrad567/gpio2mqtt/internal/infrastructure/config"
)

// Kind is this backend's registry identifier.
const Kind = "mcp3008"

func init() {
	hardware.Register(Kind, open)
}

// spiClockHz is the SPI clock. The datasheet allows up to 1.35 MHz at
// 2.7V supply; staying at that figure is safe across supply voltages.
const spiClockHz = 1350000

const channelCount = 8

// Backend reads one MCP3008 chip. The chip_addr config field selects the
// SPI chip-select line (0 or 1 on the Pi header).
type Backend struct {
	name       string
	chipSelect uint8

	// mu serialises SPI transactions; the bus-global chip select and
	// exchange are not reentrant.
	mu     sync.Mutex
	closed bool
}

func open(cfg config.GPIOModuleConfig) (hardware.Module, error) {
	if cfg.ChipAddr < 0 || cfg.ChipAddr > 1 {
		return nil, fmt.Errorf("chip_addr %d out of range (SPI chip select 0 or 1)", cfg.ChipAddr)
	}

	if err := rpiomap.Acquire(); err != nil {
		return nil, fmt.Errorf("mapping gpio registers: %w", err)
	}
	if err := rpio.SpiBegin(rpio.Spi0); err != nil {
		_ = rpiomap.Release()
		return nil, fmt.Errorf("claiming spi bus: %w", err)
	}

	return &Backend{name: cfg.Name, chipSelect: uint8(cfg.ChipAddr)}, nil
}

// Kind returns the backend type identifier.
func (b *Backend) Kind() string { return Kind }

// ReadChannel samples one channel and returns the raw 10-bit conversion
// (0-1023) as a float.
func (b *Backend) ReadChannel(channel int) (float64, error) {
	if channel < 0 || channel >= channelCount {
		return 0, fmt.Errorf("channel %d out of range (0-%d)", channel, channelCount-1)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return 0, fmt.Errorf("mcp3008 %q: backend closed", b.name)
	}

	rpio.SpiChipSelect(b.chipSelect)
	rpio.SpiSpeed(spiClockHz)

	// Single-ended conversion: start bit, then SGL/DIFF=1 and the channel
	// in the next nibble. The 10-bit result spans the last two bytes.
	buf := []byte{0x01, byte(0x08|channel) << 4, 0x00}
	rpio.SpiExchange(buf)

	raw := (uint16(buf[1]&0x03) << 8) | uint16(buf[2])
	return float64(raw), nil
}

// Close releases the SPI bus and this instance's hold on the shared
// register mapping.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	rpio.SpiEnd(rpio.Spi0)
	return rpiomap.Release()
}
