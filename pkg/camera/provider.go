package camera

import (
	"errors"
	"io"
)

// ErrNoFrame is returned when the device produced no frame.
var ErrNoFrame = errors.New("camera: no frame available")

// Provider produces JPEG snapshots on demand.
type Provider interface {
	// Snapshot grabs one frame, scaled and JPEG-encoded per the config.
	Snapshot() ([]byte, error)

	// Close releases the device.
	io.Closer
}
