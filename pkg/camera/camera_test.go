package camera

import (
	"errors"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"full scale", func(c *Config) { c.Scale = 1 }, false},
		{"zero scale", func(c *Config) { c.Scale = 0 }, true},
		{"upscale", func(c *Config) { c.Scale = 1.5 }, true},
		{"negative device", func(c *Config) { c.Device = -1 }, true},
		{"quality too high", func(c *Config) { c.Quality = 101 }, true},
		{"quality zero", func(c *Config) { c.Quality = 0 }, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestMockProvider(t *testing.T) {
	frame := []byte{0xFF, 0xD8, 0xFF}
	m := NewMockProvider(frame)

	got, err := m.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if string(got) != string(frame) {
		t.Errorf("frame mismatch")
	}

	m.SetError(ErrNoFrame)
	if _, err := m.Snapshot(); !errors.Is(err, ErrNoFrame) {
		t.Errorf("expected ErrNoFrame, got %v", err)
	}
	if m.Calls() != 2 {
		t.Errorf("calls = %d, want 2", m.Calls())
	}
}
