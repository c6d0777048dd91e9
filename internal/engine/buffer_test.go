package engine

import (
	"bytes"
	"testing"
)

func TestPublishBufferDropsOldestOnOverflow(t *testing.T) {
	b := newPublishBuffer(2)

	b.push(message{topic: "a", payload: []byte("1")})
	b.push(message{topic: "b", payload: []byte("2")})
	b.push(message{topic: "c", payload: []byte("3")})

	if b.dropped != 1 {
		t.Errorf("dropped = %d, want 1", b.dropped)
	}

	got := b.drain()
	if len(got) != 2 {
		t.Fatalf("drain() returned %d messages, want 2", len(got))
	}
	if got[0].topic != "b" || got[1].topic != "c" {
		t.Errorf("drain() order = [%s %s], want [b c] (oldest evicted)", got[0].topic, got[1].topic)
	}
	if b.len() != 0 {
		t.Errorf("len() after drain = %d, want 0", b.len())
	}
}

func TestRetainedSnapshotCoalesces(t *testing.T) {
	s := newRetainedSnapshot()

	s.set(message{topic: "x", payload: []byte("1"), retained: true})
	s.set(message{topic: "y", payload: []byte("2"), retained: true})
	s.set(message{topic: "x", payload: []byte("3"), retained: true})

	all := s.all()
	if len(all) != 2 {
		t.Fatalf("all() returned %d entries, want 2", len(all))
	}
	// First-publish order preserved, latest payload wins.
	if all[0].topic != "x" || !bytes.Equal(all[0].payload, []byte("3")) {
		t.Errorf("entry 0 = %s/%s, want x/3", all[0].topic, all[0].payload)
	}
	if all[1].topic != "y" || !bytes.Equal(all[1].payload, []byte("2")) {
		t.Errorf("entry 1 = %s/%s, want y/2", all[1].topic, all[1].payload)
	}
}

func TestConnectionStateString(t *testing.T) {
	tests := []struct {
		state ConnectionState
		want  string
	}{
		{Disconnected, "disconnected"},
		{Connecting, "connecting"},
		{Connected, "connected"},
		{ConnectionState(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
