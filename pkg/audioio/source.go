package audioio

import (
	"context"
	"errors"
	"io"
)

// ErrDeviceUnavailable is returned when the capture device cannot be acquired.
var ErrDeviceUnavailable = errors.New("audioio: capture device unavailable")

// Source captures audio from a microphone or other input device.
// It is push-driven: one Frame per device callback, delivered on Stream.
type Source interface {
	// Start begins audio capture. Failure to acquire the device returns
	// an error wrapping ErrDeviceUnavailable; it is not retried.
	Start(ctx context.Context) error

	// Stop halts audio capture. Safe to call multiple times.
	Stop() error

	// Stream returns the channel of captured frames.
	// The channel is closed when the source is stopped.
	Stream() <-chan Frame

	// Config returns the current audio configuration.
	Config() Config

	// Name returns the backend name (e.g. "exec", "mock").
	Name() string

	// Close releases all resources. After Close, the source cannot restart.
	io.Closer
}
