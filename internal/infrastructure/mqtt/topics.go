package mqtt

import "fmt"

// Topic suffixes for digital output command topics.
const (
	// SetSuffix commands a plain on/off write.
	SetSuffix = "set"

	// SetOnMSSuffix commands on-for-N-milliseconds (payload is the integer
	// millisecond count); the output reverts to off afterwards.
	SetOnMSSuffix = "set_on_ms"

	// SetOffMSSuffix commands off-for-N-milliseconds; the output reverts
	// to on afterwards.
	SetOffMSSuffix = "set_off_ms"
)

// Topics builds the canonical topic string for each module category.
// Using these helpers ensures consistent topic naming across the codebase;
// the mapping from (module name, category) to topic is bijective within a
// running configuration, which the module registry verifies at startup.
//
//	topics := mqtt.Topics{Prefix: "home/garage"}
//	topics.Input("door")          // home/garage/input/door
//	topics.OutputSet("relay1")    // home/garage/output/relay1/set
//	topics.OutputState("relay1")  // home/garage/output/relay1/state
type Topics struct {
	// Prefix is the configured topic prefix, without a trailing slash.
	Prefix string
}

// Input returns the retained state topic for a digital input.
//
// Example: home/garage/input/door
func (t Topics) Input(name string) string {
	return fmt.Sprintf("%s/input/%s", t.Prefix, name)
}

// OutputSet returns the command topic for a digital output.
//
// Example: home/garage/output/relay1/set
func (t Topics) OutputSet(name string) string {
	return fmt.Sprintf("%s/output/%s/%s", t.Prefix, name, SetSuffix)
}

// OutputSetOnMS returns the timed-on command topic for a digital output.
//
// Example: home/garage/output/relay1/set_on_ms
func (t Topics) OutputSetOnMS(name string) string {
	return fmt.Sprintf("%s/output/%s/%s", t.Prefix, name, SetOnMSSuffix)
}

// OutputSetOffMS returns the timed-off command topic for a digital output.
//
// Example: home/garage/output/relay1/set_off_ms
func (t Topics) OutputSetOffMS(name string) string {
	return fmt.Sprintf("%s/output/%s/%s", t.Prefix, name, SetOffMSSuffix)
}

// OutputState returns the retained state topic for a digital output.
// Published after a confirmed hardware write, so external consumers cannot
// distinguish command-driven from manually-toggled state.
//
// Example: home/garage/output/relay1/state
func (t Topics) OutputState(name string) string {
	return fmt.Sprintf("%s/output/%s/state", t.Prefix, name)
}

// Sensor returns the reading topic for a sensor.
//
// Example: home/garage/sensor/temperature
func (t Topics) Sensor(name string) string {
	return fmt.Sprintf("%s/sensor/%s", t.Prefix, name)
}

// StreamRX returns the topic on which bytes read from the stream hardware
// are published.
//
// Example: home/garage/stream/rs485/rx
func (t Topics) StreamRX(name string) string {
	return fmt.Sprintf("%s/stream/%s/rx", t.Prefix, name)
}

// StreamTX returns the topic subscribed for bytes to write to the stream
// hardware.
//
// Example: home/garage/stream/rs485/tx
func (t Topics) StreamTX(name string) string {
	return fmt.Sprintf("%s/stream/%s/tx", t.Prefix, name)
}

// Status returns the process availability topic.
//
// Example: home/garage/status
func (t Topics) Status(statusTopic string) string {
	return fmt.Sprintf("%s/%s", t.Prefix, statusTopic)
}
