// Package engine runs the synchronisation core: it moves state between
// hardware modules and the MQTT broker while absorbing broker outages.
//
// Architecture is a single control loop plus per-module workers:
//
//   - one poller goroutine per digital input (scan, debounce, edge filter)
//   - one scheduler goroutine per sensor (fixed-interval sampling)
//   - one command worker per digital output (serialised writes, supersede
//     on backlog)
//   - two pump goroutines per stream (device→broker, broker→device)
//
// Workers never touch the broker directly. Every outbound message flows as
// an event into the control loop, which is the only writer of connection
// state, the retained snapshot and the publish buffer — so none of those
// need locking, and the reconnect sequence (snapshot republish, then
// buffer flush) cannot interleave with new traffic.
//
// While the broker is unreachable, retained messages coalesce into a
// per-topic snapshot (only the latest value matters) and non-retained
// messages queue in a bounded buffer that drops its oldest entry on
// overflow. Retained state is therefore never lost to backpressure.
package engine
