package engine

// ConnectionState tracks the engine's view of broker reachability.
// Only the control loop writes it.
type ConnectionState int

// Connection states.
const (
	// Disconnected: no connection and no reconnect in progress (startup
	// and shutdown only).
	Disconnected ConnectionState = iota

	// Connecting: connection lost, automatic reconnection running.
	Connecting

	// Connected: broker reachable, traffic flows directly.
	Connected
)

// String returns the state name for logs.
func (s ConnectionState) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "unknown"
	}
}
