package engine

// publishBuffer queues non-retained messages while the broker is
// unreachable. It is bounded: pushing onto a full buffer evicts the oldest
// entry. Retained messages never enter the buffer — they coalesce in the
// retainedSnapshot instead, so backpressure can only ever cost transient
// data (sensor readings, stream chunks), never state.
//
// Not safe for concurrent use; only the control loop touches it.
type publishBuffer struct {
	max     int
	entries []message
	dropped uint64
}

func newPublishBuffer(max int) *publishBuffer {
	return &publishBuffer{max: max}
}

// push appends a message, evicting the oldest entry if the buffer is full.
func (b *publishBuffer) push(msg message) {
	if len(b.entries) >= b.max {
		b.entries = b.entries[1:]
		b.dropped++
	}
	b.entries = append(b.entries, msg)
}

// drain removes and returns all buffered messages in arrival order.
func (b *publishBuffer) drain() []message {
	out := b.entries
	b.entries = nil
	return out
}

// len returns the number of buffered messages.
func (b *publishBuffer) len() int { return len(b.entries) }

// retainedSnapshot holds the latest payload per retained topic, in first-
// publish order. On reconnect the whole snapshot is republished so the
// broker's retained state converges with reality even after an outage.
//
// Not safe for concurrent use; only the control loop touches it.
type retainedSnapshot struct {
	order   []string
	entries map[string]message
}

func newRetainedSnapshot() *retainedSnapshot {
	return &retainedSnapshot{entries: make(map[string]message)}
}

// set records the latest payload for a topic.
func (s *retainedSnapshot) set(msg message) {
	if _, seen := s.entries[msg.topic]; !seen {
		s.order = append(s.order, msg.topic)
	}
	s.entries[msg.topic] = msg
}

// all returns every snapshot entry in first-publish order.
func (s *retainedSnapshot) all() []message {
	out := make([]message, 0, len(s.order))
	for _, topic := range s.order {
		out = append(out, s.entries[topic])
	}
	return out
}
