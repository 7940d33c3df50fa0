package audioio

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strconv"
	"sync"
	"time"
)

// execSource captures microphone audio by piping raw PCM16 from arecord.
type execSource struct {
	cfg    Config
	logger *slog.Logger

	mu       sync.Mutex
	running  bool
	closed   bool
	cmd      *exec.Cmd
	stdout   io.ReadCloser
	streamCh chan Frame
}

func newExecSource(cfg Config, logger *slog.Logger) *execSource {
	return &execSource{
		cfg:      cfg,
		logger:   logger,
		streamCh: make(chan Frame, 16),
	}
}

func (s *execSource) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return io.ErrClosedPipe
	}
	if s.running {
		return nil
	}

	args := []string{
		"-q",
		"-t", "raw",
		"-f", "S16_LE",
		"-c", "1",
		"-r", strconv.Itoa(s.cfg.CaptureRate),
	}
	if s.cfg.Device != "" {
		args = append(args, "-D", s.cfg.Device)
	}

	cmd := exec.CommandContext(ctx, "arecord", args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("%w: stdout pipe: %v", ErrDeviceUnavailable, err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}

	s.cmd = cmd
	s.stdout = stdout
	s.running = true
	s.streamCh = make(chan Frame, 16)

	go s.readLoop(stdout)

	s.logger.Info("capture started", "backend", "exec", "rate", s.cfg.CaptureRate)
	return nil
}

func (s *execSource) readLoop(r io.Reader) {
	blockBytes := s.cfg.BlockSize * 2
	buf := make([]byte, blockBytes)

	for {
		if _, err := io.ReadFull(r, buf); err != nil {
			s.mu.Lock()
			running := s.running
			s.mu.Unlock()
			if running {
				s.logger.Warn("capture stream ended", "err", err)
				s.Stop()
			}
			return
		}

		samples := make([]float32, s.cfg.BlockSize)
		for i := range samples {
			v := int16(buf[i*2]) | int16(buf[i*2+1])<<8
			samples[i] = float32(v) / 32768.0
		}

		// Sending under the lock orders the send with the channel close
		// in Stop; the default arm keeps the lock hold bounded.
		s.mu.Lock()
		if !s.running {
			s.mu.Unlock()
			return
		}
		select {
		case s.streamCh <- Frame{Samples: samples, Rate: s.cfg.CaptureRate}:
			s.mu.Unlock()
		default:
			s.mu.Unlock()
			s.logger.Debug("capture buffer full, dropping frame")
		}
	}
}

func (s *execSource) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.running = false

	if s.stdout != nil {
		s.stdout.Close()
	}
	if s.cmd != nil && s.cmd.Process != nil {
		s.cmd.Process.Kill()
		s.cmd.Wait()
	}
	s.cmd = nil
	close(s.streamCh)

	return nil
}

func (s *execSource) Stream() <-chan Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.streamCh
}

func (s *execSource) Config() Config { return s.cfg }
func (s *execSource) Name() string   { return "exec" }

func (s *execSource) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()
	return s.Stop()
}

var _ Source = (*execSource)(nil)

// execPlayer plays scheduled buffers by piping PCM16 into ffplay.
// The output clock is wall time since Start. Writes are paced in small
// ticks so a Cancel takes effect within one tick.
type execPlayer struct {
	cfg    Config
	logger *slog.Logger
	tick   time.Duration

	mu      sync.Mutex
	started bool
	closed  bool
	epoch   time.Time
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	writeMu sync.Mutex
}

type execHandle struct {
	mu        sync.Mutex
	cancelled bool
}

func (h *execHandle) Cancel() {
	h.mu.Lock()
	h.cancelled = true
	h.mu.Unlock()
}

func (h *execHandle) isCancelled() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cancelled
}

func newExecPlayer(cfg Config, logger *slog.Logger) *execPlayer {
	return &execPlayer{
		cfg:    cfg,
		logger: logger,
		tick:   20 * time.Millisecond,
	}
}

func (p *execPlayer) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return io.ErrClosedPipe
	}
	if p.started {
		return nil
	}

	cmd := exec.CommandContext(ctx, "ffplay",
		"-hide_banner",
		"-loglevel", "error",
		"-nodisp",
		"-f", "s16le",
		"-ar", strconv.Itoa(p.cfg.PlaybackRate),
		"-ch_layout", "mono",
		"-i", "pipe:0",
	)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("audioio: playback stdin pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("audioio: start playback process: %w", err)
	}

	p.cmd = cmd
	p.stdin = stdin
	p.epoch = time.Now()
	p.started = true

	p.logger.Info("playback started", "backend", "exec", "rate", p.cfg.PlaybackRate)
	return nil
}

func (p *execPlayer) Now() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.started {
		return 0
	}
	return time.Since(p.epoch).Seconds()
}

func (p *execPlayer) PlayAt(samples []float32, rate int, start float64, onEnded func()) (Handle, error) {
	p.mu.Lock()
	if !p.started || p.closed {
		p.mu.Unlock()
		return nil, io.ErrClosedPipe
	}
	epoch := p.epoch
	stdin := p.stdin
	p.mu.Unlock()

	if rate <= 0 {
		rate = p.cfg.PlaybackRate
	}

	h := &execHandle{}
	go p.playItem(h, samples, rate, epoch, start, stdin, onEnded)
	return h, nil
}

func (p *execPlayer) playItem(h *execHandle, samples []float32, rate int, epoch time.Time, start float64, stdin io.Writer, onEnded func()) {
	startAt := epoch.Add(time.Duration(start * float64(time.Second)))
	if d := time.Until(startAt); d > 0 {
		time.Sleep(d)
	}

	samplesPerTick := int(float64(rate) * p.tick.Seconds())
	if samplesPerTick <= 0 {
		samplesPerTick = len(samples)
	}

	for off := 0; off < len(samples); off += samplesPerTick {
		if h.isCancelled() {
			return
		}

		end := off + samplesPerTick
		if end > len(samples) {
			end = len(samples)
		}

		p.writeMu.Lock()
		_, err := stdin.Write(SamplesToPCM16(samples[off:end]))
		p.writeMu.Unlock()
		if err != nil {
			p.logger.Warn("playback write failed", "err", err)
			return
		}

		// Pace to the output clock so cancellation stays responsive.
		chunkEnd := startAt.Add(time.Duration(float64(end) / float64(rate) * float64(time.Second)))
		if d := time.Until(chunkEnd); d > 0 {
			time.Sleep(d)
		}
	}

	if !h.isCancelled() && onEnded != nil {
		onEnded()
	}
}

func (p *execPlayer) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return nil
	}
	p.started = false

	if p.stdin != nil {
		p.stdin.Close()
		p.stdin = nil
	}
	if p.cmd != nil && p.cmd.Process != nil {
		p.cmd.Process.Kill()
		p.cmd.Wait()
	}
	p.cmd = nil

	return nil
}

func (p *execPlayer) Name() string { return "exec" }

func (p *execPlayer) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()
	return p.Stop()
}

var _ Player = (*execPlayer)(nil)
