// Package audioio provides microphone capture and scheduled audio playback.
//
// Capture produces fixed-size blocks of floating-point samples at the
// device's native rate; playback schedules decoded buffers at explicit
// instants on the output clock so a jitter buffer can keep them gap-free.
//
// Two backends are supported:
//   - exec: pipes raw PCM through arecord/ffplay (no cgo, works anywhere
//     the tools are installed)
//   - mock: synthetic capture and a manually-advanced output clock for tests
package audioio

import (
	"fmt"
)

// Backend represents the audio backend type.
type Backend string

const (
	// BackendAuto selects the best available backend.
	BackendAuto Backend = "auto"
	// BackendExec pipes audio through external capture/playback processes.
	BackendExec Backend = "exec"
	// BackendMock uses a mock implementation for testing.
	BackendMock Backend = "mock"
)

// Config holds audio device configuration.
type Config struct {
	// Backend specifies which audio backend to use.
	// Default: "auto".
	Backend Backend `json:"backend"`

	// CaptureRate is the native capture sample rate in Hz.
	// Default: 48000. Outbound frames are resampled to WireRate by the codec.
	CaptureRate int `json:"capture_rate"`

	// BlockSize is the number of samples per capture callback.
	// Default: 4096.
	BlockSize int `json:"block_size"`

	// PlaybackRate is the output device sample rate in Hz.
	// Default: 24000, matching the inbound stream.
	PlaybackRate int `json:"playback_rate"`

	// Device is the platform-specific capture device identifier
	// (e.g. ALSA "default", "hw:1,0"). Empty selects the system default.
	Device string `json:"device"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Backend:      BackendAuto,
		CaptureRate:  48000,
		BlockSize:    4096,
		PlaybackRate: PlaybackRate,
		Device:       "",
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.CaptureRate <= 0 {
		return fmt.Errorf("capture_rate must be positive, got %d", c.CaptureRate)
	}
	if c.BlockSize <= 0 {
		return fmt.Errorf("block_size must be positive, got %d", c.BlockSize)
	}
	if c.PlaybackRate <= 0 {
		return fmt.Errorf("playback_rate must be positive, got %d", c.PlaybackRate)
	}
	return nil
}
