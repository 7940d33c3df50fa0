package session

import "time"

// EchoGuard is the playback-side state the transmit gate reads. It is
// owned and mutated by the Scheduler; the gate only observes it.
type EchoGuard interface {
	// ActiveCount is the number of playback items not yet completed or
	// cancelled.
	ActiveCount() int

	// LastPlaybackEnd is when the active set last drained to empty.
	// The zero time means "long ago" and never suppresses.
	LastPlaybackEnd() time.Time
}

// Gate decides, per capture frame, whether outbound audio must be
// suppressed so the remote side does not hear its own voice. It is a pure
// predicate over the echo guard: no side effects, no memory of its own.
type Gate struct {
	guard    EchoGuard
	echoTail time.Duration
}

// NewGate creates a gate over the given guard.
func NewGate(guard EchoGuard, echoTail time.Duration) *Gate {
	return &Gate{guard: guard, echoTail: echoTail}
}

// Suppressed reports whether a frame captured at now must be dropped:
// during playback, and for the echo tail after it ends.
func (g *Gate) Suppressed(now time.Time) bool {
	if g.guard.ActiveCount() > 0 {
		return true
	}
	last := g.guard.LastPlaybackEnd()
	if last.IsZero() {
		return false
	}
	return now.Sub(last) < g.echoTail
}
