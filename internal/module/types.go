package module

import (
	"github.com/nerrad567/gpio2mqtt/internal/hardware"
	"github.com/nerrad567/gpio2mqtt/internal/infrastructure/config"
)

// DigitalInput is a polled input pin bound to its backend.
type DigitalInput struct {
	Config config.DigitalInputConfig
	IO     hardware.DigitalIO
}

// Logical converts a physical pin level to the input's logical value,
// applying the configured inversion.
func (d DigitalInput) Logical(physical bool) bool {
	if d.Config.Invert {
		return !physical
	}
	return physical
}

// Payload returns the publish payload for a logical value.
func (d DigitalInput) Payload(logical bool) string {
	if logical {
		return d.Config.OnPayload
	}
	return d.Config.OffPayload
}

// DigitalOutput is a commanded output pin bound to its backend.
type DigitalOutput struct {
	Config config.DigitalOutputConfig
	IO     hardware.DigitalIO
}

// Physical converts a logical value to the pin level to drive,
// applying the configured inversion.
func (d DigitalOutput) Physical(logical bool) bool {
	if d.Config.Invert {
		return !logical
	}
	return logical
}

// Logical converts a pin level back to the output's logical value,
// applying the configured inversion.
func (d DigitalOutput) Logical(physical bool) bool {
	if d.Config.Invert {
		return !physical
	}
	return physical
}

// Payload returns the state-topic payload for a logical value.
func (d DigitalOutput) Payload(logical bool) string {
	if logical {
		return d.Config.OnPayload
	}
	return d.Config.OffPayload
}

// ParsePayload maps a command payload to a logical value. Matching is
// case-sensitive and exact; ok is false for anything else.
func (d DigitalOutput) ParsePayload(payload string) (value, ok bool) {
	switch payload {
	case d.Config.OnPayload:
		return true, true
	case d.Config.OffPayload:
		return false, true
	default:
		return false, false
	}
}

// Sensor is a periodically sampled analog channel bound to its backend.
type Sensor struct {
	Config config.SensorConfig
	Reader hardware.AnalogReader
}

// Stream is a bidirectional byte stream bound to its backend.
type Stream struct {
	Config config.StreamConfig
	RW     hardware.StreamReadWriter
}
