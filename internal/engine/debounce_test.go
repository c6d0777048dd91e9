package engine

import (
	"testing"
	"time"
)

func TestDebouncerCommitsAfterWindow(t *testing.T) {
	start := time.Now()
	d := newDebouncer(50*time.Millisecond, false)

	// New value appears: pending, not yet committed.
	changed, value := d.observe(true, start)
	if changed || value {
		t.Fatalf("observe() at t=0 = (%v, %v), want pending", changed, value)
	}

	// Still within the window.
	changed, value = d.observe(true, start.Add(30*time.Millisecond))
	if changed || value {
		t.Fatalf("observe() at t=30ms = (%v, %v), want still pending", changed, value)
	}

	// Window elapsed and the value held: commit.
	changed, value = d.observe(true, start.Add(60*time.Millisecond))
	if !changed || !value {
		t.Fatalf("observe() at t=60ms = (%v, %v), want committed true", changed, value)
	}
}

func TestDebouncerRejectsGlitch(t *testing.T) {
	start := time.Now()
	d := newDebouncer(50*time.Millisecond, false)

	d.observe(true, start)
	// Bounces back before the window elapses.
	changed, value := d.observe(false, start.Add(20*time.Millisecond))
	if changed || value {
		t.Fatalf("observe() after bounce = (%v, %v), want stable false", changed, value)
	}

	// Long after: still false, no phantom commit.
	changed, value = d.observe(false, start.Add(200*time.Millisecond))
	if changed || value {
		t.Fatalf("observe() long after bounce = (%v, %v), want stable false", changed, value)
	}
}

func TestDebouncerRepeatedBouncesNeverCommit(t *testing.T) {
	start := time.Now()
	d := newDebouncer(50*time.Millisecond, false)

	// Alternate every 10ms: the candidate never holds for a full window.
	for i := 0; i < 20; i++ {
		sample := i%2 == 0
		changed, _ := d.observe(sample, start.Add(time.Duration(i)*10*time.Millisecond))
		if changed {
			t.Fatalf("observe() committed on bounce iteration %d", i)
		}
	}
}

func TestDebouncerCommitsEachDirection(t *testing.T) {
	start := time.Now()
	d := newDebouncer(10*time.Millisecond, false)

	d.observe(true, start)
	changed, value := d.observe(true, start.Add(15*time.Millisecond))
	if !changed || !value {
		t.Fatal("rising commit missing")
	}

	d.observe(false, start.Add(30*time.Millisecond))
	changed, value = d.observe(false, start.Add(45*time.Millisecond))
	if !changed || value {
		t.Fatal("falling commit missing")
	}
}

func TestEdgeAllows(t *testing.T) {
	tests := []struct {
		edge  string
		value bool
		want  bool
	}{
		{"rising", true, true},
		{"rising", false, false},
		{"falling", true, false},
		{"falling", false, true},
		{"both", true, true},
		{"both", false, true},
		{"none", true, true},
		{"none", false, true},
	}

	for _, tt := range tests {
		if got := edgeAllows(tt.edge, tt.value); got != tt.want {
			t.Errorf("edgeAllows(%q, %v) = %v, want %v", tt.edge, tt.value, got, tt.want)
		}
	}
}
