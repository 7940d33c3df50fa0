package session

import (
	"fmt"
	"time"

	"github.com/yukti-live/yukti/pkg/audioio"
)

// Default tuning. Echo tail and lookahead are deliberately configurable:
// the tail must cover the acoustic echo of the loudspeaker plus scheduling
// slack, and the lookahead trades conversational latency for smoothness
// under bursty generation.
const (
	DefaultEchoTail         = 600 * time.Millisecond
	DefaultLookahead        = 500 * time.Millisecond
	DefaultSnapshotInterval = time.Second
	DefaultGeoTimeout       = 4 * time.Second
)

// Config holds the tunables of one conversation session.
type Config struct {
	// APIKey authenticates against the remote service.
	APIKey string `json:"-"`

	// Model and Voice select the remote model and its output voice.
	// Empty values fall back to the channel defaults.
	Model string `json:"model"`
	Voice string `json:"voice"`

	// SystemInstruction is opaque pass-through prompt text.
	SystemInstruction string `json:"system_instruction"`

	// EchoTail is how long after playback ends outbound capture stays
	// suppressed.
	EchoTail time.Duration `json:"echo_tail"`

	// Lookahead is the safety cushion rebuilt when the jitter buffer
	// underruns.
	Lookahead time.Duration `json:"lookahead"`

	// SnapshotInterval paces the ancillary image stream.
	SnapshotInterval time.Duration `json:"snapshot_interval"`

	// GeoTimeout bounds the best-effort location fix at connect time.
	GeoTimeout time.Duration `json:"geo_timeout"`

	// Audio configures the capture and playback devices.
	Audio audioio.Config `json:"audio"`
}

// DefaultConfig returns a Config with production defaults.
func DefaultConfig() Config {
	return Config{
		EchoTail:         DefaultEchoTail,
		Lookahead:        DefaultLookahead,
		SnapshotInterval: DefaultSnapshotInterval,
		GeoTimeout:       DefaultGeoTimeout,
		Audio:            audioio.DefaultConfig(),
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.EchoTail < 0 {
		return fmt.Errorf("echo_tail must not be negative, got %v", c.EchoTail)
	}
	if c.Lookahead < 0 {
		return fmt.Errorf("lookahead must not be negative, got %v", c.Lookahead)
	}
	if c.SnapshotInterval <= 0 {
		return fmt.Errorf("snapshot_interval must be positive, got %v", c.SnapshotInterval)
	}
	if c.GeoTimeout <= 0 {
		return fmt.Errorf("geo_timeout must be positive, got %v", c.GeoTimeout)
	}
	return c.Audio.Validate()
}

// WithEchoTail returns a copy with the echo tail replaced.
func (c Config) WithEchoTail(d time.Duration) Config {
	c.EchoTail = d
	return c
}

// WithLookahead returns a copy with the lookahead replaced.
func (c Config) WithLookahead(d time.Duration) Config {
	c.Lookahead = d
	return c
}
