package audioio

import (
	"context"
	"io"
	"log/slog"
	"math"
	"sync"
	"time"
)

// MockSource is a mock audio source for testing.
// Tests push frames with Emit; optionally it can self-generate a sine wave.
type MockSource struct {
	cfg    Config
	logger *slog.Logger

	mu       sync.Mutex
	running  bool
	closed   bool
	streamCh chan Frame
	stopCh   chan struct{}

	// Synthetic generation (0 frequency = Emit-only)
	phase     float64
	frequency float64
	amplitude float64

	// startErr, if set, is returned by Start to simulate a denied device.
	startErr error
}

// MockSourceOption configures a MockSource.
type MockSourceOption func(*MockSource)

// WithSineWave configures the mock to self-generate a sine wave.
func WithSineWave(frequency, amplitude float64) MockSourceOption {
	return func(m *MockSource) {
		m.frequency = frequency
		m.amplitude = amplitude
	}
}

// WithStartError makes Start fail with the given error.
func WithStartError(err error) MockSourceOption {
	return func(m *MockSource) {
		m.startErr = err
	}
}

// NewMockSource creates a new mock audio source.
func NewMockSource(cfg Config, logger *slog.Logger, opts ...MockSourceOption) *MockSource {
	if logger == nil {
		logger = slog.Default()
	}

	m := &MockSource{
		cfg:       cfg,
		logger:    logger,
		streamCh:  make(chan Frame, 16),
		stopCh:    make(chan struct{}),
		amplitude: 0.5,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Start begins capture.
func (m *MockSource) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return io.ErrClosedPipe
	}
	if m.startErr != nil {
		return m.startErr
	}
	if m.running {
		return nil
	}

	m.running = true
	m.stopCh = make(chan struct{})
	m.streamCh = make(chan Frame, 16)

	if m.frequency > 0 {
		go m.generateLoop(ctx)
	}

	return nil
}

func (m *MockSource) generateLoop(ctx context.Context) {
	interval := time.Duration(float64(m.cfg.BlockSize) / float64(m.cfg.CaptureRate) * float64(time.Second))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.Stop()
			return
		case <-m.stopCh:
			return
		case <-ticker.C:
			m.Emit(m.generateBlock())
		}
	}
}

func (m *MockSource) generateBlock() []float32 {
	samples := make([]float32, m.cfg.BlockSize)
	for i := range samples {
		samples[i] = float32(m.amplitude * math.Sin(2*math.Pi*m.frequency*m.phase/float64(m.cfg.CaptureRate)))
		m.phase++
		if m.phase >= float64(m.cfg.CaptureRate) {
			m.phase = 0
		}
	}
	return samples
}

// Emit delivers one frame to the stream, dropping it if the buffer is full.
// The send stays under the lock so it is ordered with the channel close in
// Stop; the default arm keeps it from blocking.
func (m *MockSource) Emit(samples []float32) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	select {
	case m.streamCh <- Frame{Samples: samples, Rate: m.cfg.CaptureRate}:
	default:
		m.logger.Debug("mock source: buffer full, dropping frame")
	}
}

// Stop halts capture.
func (m *MockSource) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return nil
	}

	m.running = false
	close(m.stopCh)
	close(m.streamCh)

	return nil
}

// Stream returns the frame channel.
func (m *MockSource) Stream() <-chan Frame {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.streamCh
}

// Config returns the audio configuration.
func (m *MockSource) Config() Config {
	return m.cfg
}

// Name returns "mock".
func (m *MockSource) Name() string {
	return "mock"
}

// Close releases resources.
func (m *MockSource) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()

	return m.Stop()
}

var _ Source = (*MockSource)(nil)

// ScheduledItem records one buffer scheduled on a MockPlayer.
type ScheduledItem struct {
	Start     float64
	Duration  float64
	Cancelled bool
	Ended     bool
}

// MockPlayer is a Player whose output clock only moves when the test
// advances it. It records every scheduled buffer for assertions.
type MockPlayer struct {
	cfg    Config
	logger *slog.Logger

	mu     sync.Mutex
	now    float64
	closed bool
	items  []*mockItem
}

type mockItem struct {
	start     float64
	duration  float64
	cancelled bool
	ended     bool
	onEnded   func()
}

type mockHandle struct {
	p    *MockPlayer
	item *mockItem
}

func (h *mockHandle) Cancel() {
	h.p.mu.Lock()
	defer h.p.mu.Unlock()
	if !h.item.ended {
		h.item.cancelled = true
	}
}

// NewMockPlayer creates a new mock player with its clock at zero.
func NewMockPlayer(cfg Config, logger *slog.Logger) *MockPlayer {
	if logger == nil {
		logger = slog.Default()
	}
	return &MockPlayer{cfg: cfg, logger: logger}
}

// Start opens the mock device.
func (p *MockPlayer) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return io.ErrClosedPipe
	}
	return nil
}

// Now returns the manual clock.
func (p *MockPlayer) Now() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.now
}

// SetNow moves the clock to an absolute time without firing completions.
func (p *MockPlayer) SetNow(t float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.now = t
}

// Advance moves the clock forward and fires ended callbacks for every
// uncancelled item whose end time has been reached, in start order.
func (p *MockPlayer) Advance(d float64) {
	p.mu.Lock()
	p.now += d
	var fire []func()
	for _, it := range p.items {
		if !it.ended && !it.cancelled && it.start+it.duration <= p.now {
			it.ended = true
			if it.onEnded != nil {
				fire = append(fire, it.onEnded)
			}
		}
	}
	p.mu.Unlock()

	for _, fn := range fire {
		fn()
	}
}

// PlayAt records the scheduled buffer.
func (p *MockPlayer) PlayAt(samples []float32, rate int, start float64, onEnded func()) (Handle, error) {
	if rate <= 0 {
		rate = p.cfg.PlaybackRate
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, io.ErrClosedPipe
	}

	it := &mockItem{
		start:    start,
		duration: float64(len(samples)) / float64(rate),
		onEnded:  onEnded,
	}
	p.items = append(p.items, it)

	return &mockHandle{p: p, item: it}, nil
}

// Scheduled returns a snapshot of every item scheduled so far.
func (p *MockPlayer) Scheduled() []ScheduledItem {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]ScheduledItem, len(p.items))
	for i, it := range p.items {
		out[i] = ScheduledItem{
			Start:     it.start,
			Duration:  it.duration,
			Cancelled: it.cancelled,
			Ended:     it.ended,
		}
	}
	return out
}

// Stop cancels everything scheduled.
func (p *MockPlayer) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, it := range p.items {
		if !it.ended {
			it.cancelled = true
		}
	}
	return nil
}

// Name returns "mock".
func (p *MockPlayer) Name() string {
	return "mock"
}

// Close releases resources.
func (p *MockPlayer) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	return p.Stop()
}

var _ Player = (*MockPlayer)(nil)
