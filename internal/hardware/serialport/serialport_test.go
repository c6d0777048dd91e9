package serialport

import (
	"testing"
	"time"

	"github.com/nerrad567/gpio2mqtt/internal/infrastructure/config"
)

func TestPortConfigDefaults(t *testing.T) {
	pc := portConfig(config.GPIOModuleConfig{Name: "rs485", Device: "/dev/ttyUSB0"})

	if pc.Address != "/dev/ttyUSB0" {
		t.Errorf("Address = %q, want /dev/ttyUSB0", pc.Address)
	}
	if pc.BaudRate != 9600 {
		t.Errorf("BaudRate = %d, want 9600", pc.BaudRate)
	}
	if pc.DataBits != 8 {
		t.Errorf("DataBits = %d, want 8", pc.DataBits)
	}
	if pc.StopBits != 1 {
		t.Errorf("StopBits = %d, want 1", pc.StopBits)
	}
	if pc.Parity != "N" {
		t.Errorf("Parity = %q, want N", pc.Parity)
	}
	if pc.Timeout != time.Second {
		t.Errorf("Timeout = %v, want 1s", pc.Timeout)
	}
}

func TestPortConfigOverrides(t *testing.T) {
	pc := portConfig(config.GPIOModuleConfig{
		Name:        "rs485",
		Device:      "/dev/ttyAMA0",
		Baud:        19200,
		DataBits:    7,
		StopBits:    2,
		Parity:      "E",
		ReadTimeout: 250 * time.Millisecond,
	})

	if pc.BaudRate != 19200 || pc.DataBits != 7 || pc.StopBits != 2 || pc.Parity != "E" {
		t.Errorf("framing = %d %d%s%d, want 19200 7E2", pc.BaudRate, pc.DataBits, pc.Parity, pc.StopBits)
	}
	if pc.Timeout != 250*time.Millisecond {
		t.Errorf("Timeout = %v, want configured 250ms", pc.Timeout)
	}
}
