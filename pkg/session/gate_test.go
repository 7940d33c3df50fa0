package session

import (
	"testing"
	"time"
)

type fakeGuard struct {
	active  int
	lastEnd time.Time
}

func (f *fakeGuard) ActiveCount() int           { return f.active }
func (f *fakeGuard) LastPlaybackEnd() time.Time { return f.lastEnd }

func TestGateSuppressesDuringPlayback(t *testing.T) {
	guard := &fakeGuard{active: 1}
	gate := NewGate(guard, 600*time.Millisecond)

	if !gate.Suppressed(time.Now()) {
		t.Error("capture must be suppressed while playback is active")
	}
}

func TestGateEchoTail(t *testing.T) {
	now := time.Now()
	guard := &fakeGuard{lastEnd: now}
	gate := NewGate(guard, 600*time.Millisecond)

	cases := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"immediately after end", now, true},
		{"inside tail", now.Add(599 * time.Millisecond), true},
		{"at tail boundary", now.Add(600 * time.Millisecond), false},
		{"well past tail", now.Add(5 * time.Second), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := gate.Suppressed(tc.at); got != tc.want {
				t.Errorf("Suppressed = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestGateClearGuardNeverSuppresses(t *testing.T) {
	gate := NewGate(&fakeGuard{}, 600*time.Millisecond)
	if gate.Suppressed(time.Now()) {
		t.Error("zero guard must not suppress")
	}
}

func TestGateAgainstScheduler(t *testing.T) {
	sched, player := newTestScheduler(t, 200*time.Millisecond)
	gate := NewGate(sched, 600*time.Millisecond)

	sched.Schedule(monoBuf(1.0), sched.Epoch())
	if !gate.Suppressed(time.Now()) {
		t.Error("must suppress while an item is scheduled")
	}

	// Natural completion starts the echo tail.
	player.Advance(2)
	if !gate.Suppressed(time.Now()) {
		t.Error("must suppress inside the echo tail")
	}
	if !gate.Suppressed(sched.LastPlaybackEnd().Add(599 * time.Millisecond)) {
		t.Error("tail must cover its full window")
	}
	if gate.Suppressed(sched.LastPlaybackEnd().Add(601 * time.Millisecond)) {
		t.Error("must release after the tail")
	}

	// Interruption releases the gate immediately.
	sched.Schedule(monoBuf(1.0), sched.Epoch())
	sched.Interrupt()
	if gate.Suppressed(time.Now()) {
		t.Error("interrupt must release the gate at once")
	}
}
