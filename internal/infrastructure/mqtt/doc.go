// Package mqtt provides the broker client for gpio2mqtt.
//
// It wraps eclipse/paho.mqtt.golang with:
//
//   - Connection management with auto-reconnect and exponential backoff
//   - Subscription tracking: every subscription is restored on reconnect,
//     before the OnConnect callback fires, so the engine can rely on
//     command topics being live before it resumes outbound traffic
//   - Availability reporting: a retained status topic carrying "running"
//     on connect, "stopped" on clean shutdown, and a broker-published
//     LWT "dead" payload on ungraceful disconnect
//   - Panic recovery around message handlers
//
// Topic construction lives in Topics, which maps (module name, category)
// to the canonical topic strings:
//
//	<prefix>/input/<name>           retained input state
//	<prefix>/output/<name>/set      output command (subscribed)
//	<prefix>/output/<name>/set_on_ms, .../set_off_ms  timed commands
//	<prefix>/output/<name>/state    retained confirmed output state
//	<prefix>/sensor/<name>          periodic sensor readings
//	<prefix>/stream/<name>/rx|tx    stream relay topics
//	<prefix>/<status_topic>         process availability
package mqtt
