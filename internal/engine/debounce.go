package engine

import "time"

// debouncer filters contact bounce from a polled digital input.
//
// It is a two-state machine. In the stable state, a sample differing from
// the stable value starts a pending window; in the pending state, a sample
// matching the old stable value cancels the window (bounce), and a sample
// holding the candidate value for the full window commits it. A change is
// reported only on commit, so a glitch shorter than the window never
// produces output.
type debouncer struct {
	window time.Duration

	stable       bool
	pending      bool
	candidate    bool
	pendingSince time.Time
}

func newDebouncer(window time.Duration, initial bool) *debouncer {
	return &debouncer{window: window, stable: initial}
}

// observe feeds one sample taken at the given time.
//
// Returns:
//   - changed: true if the stable value just committed to a new value
//   - value: the current stable value
func (d *debouncer) observe(sample bool, now time.Time) (changed bool, value bool) {
	if !d.pending {
		if sample != d.stable {
			d.pending = true
			d.candidate = sample
			d.pendingSince = now
		}
		return false, d.stable
	}

	if sample == d.stable {
		// Bounced back before the window elapsed.
		d.pending = false
		return false, d.stable
	}

	if now.Sub(d.pendingSince) >= d.window {
		d.stable = d.candidate
		d.pending = false
		return true, d.stable
	}

	return false, d.stable
}

// edgeAllows reports whether a committed transition to newValue passes the
// configured edge filter. "rising" passes only off→on, "falling" only
// on→off; "both" and "none" pass everything.
func edgeAllows(edge string, newValue bool) bool {
	switch edge {
	case "rising":
		return newValue
	case "falling":
		return !newValue
	default:
		return true
	}
}
