// Package serialport implements the stream hardware backend for
// serial-attached devices (RS-232/RS-485/USB CDC), via goburrow/serial.
//
// Framing is line-delimited: each unit read from the device is one line
// (stripped of the trailing newline), and each unit written gets a
// trailing newline appended if absent. Devices that speak raw binary
// chunks need a different backend.
package serialport

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goburrow/serial"

	"github.com/nerrad567/gpio2mqtt/internal/hardware"
	"github.com/nerrad567/gpio2mqtt/internal/infrastructure/config"
)

// Kind is this backend's registry identifier.
const Kind = "serial"

func init() {
	hardware.Register(Kind, open)
}

// defaultReadTimeout bounds a single port read when the module config does
// not set read_timeout.
const defaultReadTimeout = time.Second

// Backend relays line-delimited units over one serial port.
type Backend struct {
	name   string
	port   serial.Port
	reader *bufio.Reader

	// pending accumulates a partial line across read timeouts so slow
	// devices are not truncated mid-unit.
	pending []byte

	// writeMu serialises writes; reads are single-consumer by design
	// (one relay pump per stream).
	writeMu sync.Mutex
}

func open(cfg config.GPIOModuleConfig) (hardware.Module, error) {
	if cfg.Device == "" {
		return nil, fmt.Errorf("serial backend %q: device is required", cfg.Name)
	}

	port, err := serial.Open(portConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("opening serial port %s: %w", cfg.Device, err)
	}

	return &Backend{
		name:   cfg.Name,
		port:   port,
		reader: bufio.NewReader(port),
	}, nil
}

// portConfig resolves the port parameters, falling back to 9600 8N1 and the
// default read timeout for anything unset.
func portConfig(cfg config.GPIOModuleConfig) *serial.Config {
	baud := cfg.Baud
	if baud == 0 {
		baud = 9600
	}
	dataBits := cfg.DataBits
	if dataBits == 0 {
		dataBits = 8
	}
	stopBits := cfg.StopBits
	if stopBits == 0 {
		stopBits = 1
	}
	parity := cfg.Parity
	if parity == "" {
		parity = "N"
	}
	timeout := cfg.ReadTimeout
	if timeout <= 0 {
		timeout = defaultReadTimeout
	}

	return &serial.Config{
		Address:  cfg.Device,
		BaudRate: baud,
		DataBits: dataBits,
		StopBits: stopBits,
		Parity:   parity,
		Timeout:  timeout,
	}
}

// Kind returns the backend type identifier.
func (b *Backend) Kind() string { return Kind }

// ReadUnit returns one full line, excluding the terminator. A port read
// timeout is not an error: it returns (nil, nil) so the caller can check
// for cancellation and try again, and any partial line read so far is kept
// for the next call.
func (b *Backend) ReadUnit() ([]byte, error) {
	chunk, err := b.reader.ReadBytes('\n')
	b.pending = append(b.pending, chunk...)

	if err != nil {
		if errors.Is(err, serial.ErrTimeout) {
			return nil, nil
		}
		return nil, err
	}

	unit := bytes.TrimRight(b.pending, "\r\n")
	b.pending = nil
	return unit, nil
}

// WriteUnit writes one unit, appending a newline if the payload lacks one.
func (b *Backend) WriteUnit(data []byte) error {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()

	if _, err := b.port.Write(data); err != nil {
		return err
	}
	if len(data) == 0 || data[len(data)-1] != '\n' {
		if _, err := b.port.Write([]byte{'\n'}); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the port.
func (b *Backend) Close() error {
	return b.port.Close()
}
