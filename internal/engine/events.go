package engine

// message is one outbound broker publish.
type message struct {
	topic    string
	payload  []byte
	retained bool
}

// event is a unit of work for the control loop. Implementations are the
// conn*Event markers and publishEvent.
type event interface {
	isEvent()
}

// connUpEvent signals that the broker connection was (re)established and
// subscriptions have been restored.
type connUpEvent struct{}

// connDownEvent signals that the broker connection was lost; automatic
// reconnection is already running.
type connDownEvent struct {
	err error
}

// publishEvent carries one outbound message from a worker.
type publishEvent struct {
	msg message
}

func (connUpEvent) isEvent()   {}
func (connDownEvent) isEvent() {}
func (publishEvent) isEvent()  {}
