package session

import (
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults valid", func(c *Config) {}, false},
		{"zero echo tail valid", func(c *Config) { c.EchoTail = 0 }, false},
		{"negative echo tail", func(c *Config) { c.EchoTail = -time.Second }, true},
		{"negative lookahead", func(c *Config) { c.Lookahead = -1 }, true},
		{"zero snapshot interval", func(c *Config) { c.SnapshotInterval = 0 }, true},
		{"zero geo timeout", func(c *Config) { c.GeoTimeout = 0 }, true},
		{"bad audio config", func(c *Config) { c.Audio.CaptureRate = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigWithCopies(t *testing.T) {
	base := DefaultConfig()

	tuned := base.WithEchoTail(250 * time.Millisecond).WithLookahead(100 * time.Millisecond)
	if tuned.EchoTail != 250*time.Millisecond {
		t.Errorf("echo tail = %v, want 250ms", tuned.EchoTail)
	}
	if tuned.Lookahead != 100*time.Millisecond {
		t.Errorf("lookahead = %v, want 100ms", tuned.Lookahead)
	}

	// The originals are untouched.
	if base.EchoTail != DefaultEchoTail || base.Lookahead != DefaultLookahead {
		t.Errorf("base config mutated: %v / %v", base.EchoTail, base.Lookahead)
	}
}
