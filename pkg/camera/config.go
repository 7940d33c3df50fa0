// Package camera captures JPEG snapshots for the ancillary image stream.
// Frames are scaled down and recompressed before transmission; the remote
// service only needs enough pixels to see the scene.
package camera

import "fmt"

// Config holds camera capture configuration.
type Config struct {
	// Device is the capture device index (0 = default camera).
	Device int `json:"device"`

	// Scale shrinks each frame before encoding. Default 0.5.
	Scale float64 `json:"scale"`

	// Quality is the JPEG quality, 1-100. Default 60.
	Quality int `json:"quality"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		Device:  0,
		Scale:   0.5,
		Quality: 60,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Device < 0 {
		return fmt.Errorf("device must not be negative, got %d", c.Device)
	}
	if c.Scale <= 0 || c.Scale > 1 {
		return fmt.Errorf("scale must be in (0, 1], got %v", c.Scale)
	}
	if c.Quality < 1 || c.Quality > 100 {
		return fmt.Errorf("quality must be 1-100, got %d", c.Quality)
	}
	return nil
}
