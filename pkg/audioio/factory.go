package audioio

import (
	"fmt"
	"log/slog"
)

// NewSource creates a new audio source with the given configuration.
// If cfg.Backend is BackendAuto, the exec backend is selected.
func NewSource(cfg Config, logger *slog.Logger) (Source, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}

	backend := cfg.Backend
	if backend == BackendAuto {
		backend = BackendExec
	}

	logger.Info("creating audio source",
		"backend", backend,
		"capture_rate", cfg.CaptureRate,
		"block_size", cfg.BlockSize,
	)

	switch backend {
	case BackendMock:
		return NewMockSource(cfg, logger), nil
	case BackendExec:
		return newExecSource(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unsupported backend: %s", backend)
	}
}

// NewPlayer creates a new audio player with the given configuration.
// If cfg.Backend is BackendAuto, the exec backend is selected.
func NewPlayer(cfg Config, logger *slog.Logger) (Player, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}

	backend := cfg.Backend
	if backend == BackendAuto {
		backend = BackendExec
	}

	logger.Info("creating audio player",
		"backend", backend,
		"playback_rate", cfg.PlaybackRate,
	)

	switch backend {
	case BackendMock:
		return NewMockPlayer(cfg, logger), nil
	case BackendExec:
		return newExecPlayer(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unsupported backend: %s", backend)
	}
}
