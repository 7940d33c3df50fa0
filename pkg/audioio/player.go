package audioio

import (
	"context"
	"io"
)

// Handle refers to one scheduled buffer. Cancel is cooperative: audio
// already handed to the device may drain for up to one device tick.
type Handle interface {
	// Cancel stops the buffer, whether scheduled or already playing.
	// Safe to call multiple times; after Cancel the ended callback
	// registered at scheduling time does not fire.
	Cancel()
}

// Player owns the output device and its clock. Buffers are scheduled at
// explicit instants on that clock; the scheduler guarantees starts are
// non-decreasing and non-overlapping, so the player only has to honor them.
type Player interface {
	// Start opens the output device.
	Start(ctx context.Context) error

	// Now returns the current output-clock time in seconds.
	// The clock is monotonic for the lifetime of the player.
	Now() float64

	// PlayAt schedules mono samples to begin at the given output-clock
	// instant. onEnded fires exactly once after natural completion and
	// never after Cancel.
	PlayAt(samples []float32, rate int, start float64, onEnded func()) (Handle, error)

	// Stop halts playback and cancels everything scheduled.
	// Safe to call multiple times.
	Stop() error

	// Name returns the backend name (e.g. "exec", "mock").
	Name() string

	// Close releases all resources.
	io.Closer
}
