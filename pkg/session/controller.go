// Package session implements the real-time duplex conversation engine:
// capture, transmit gating, jitter-buffered playback, interruption, tool
// dispatch, and the connection lifecycle that bounds them.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/yukti-live/yukti/pkg/audioio"
	"github.com/yukti-live/yukti/pkg/avatar"
	"github.com/yukti-live/yukti/pkg/live"
)

// State is the lifecycle state of the controller.
type State string

const (
	StateIdle       State = "idle"
	StateConnecting State = "connecting"
	StateOpen       State = "open"
	StateClosing    State = "closing"
)

// ErrSessionInProgress is returned by Connect while a previous session has
// not reached Idle yet.
var ErrSessionInProgress = errors.New("session: already in progress")

// SnapshotSource supplies ancillary JPEG frames, typically a camera.
type SnapshotSource interface {
	Snapshot() ([]byte, error)
}

// Callbacks are presentation-layer notifications. All fields are optional
// and are invoked from the controller's event loop; they must not block.
type Callbacks struct {
	OnState      func(State)
	OnTranscript func(role live.Role, text string)
	OnExpression func(avatar.Expression)
	OnLevel      func(input, output float64)
	OnSnapshot   func(jpeg []byte)
	OnError      func(error)
}

// DialFunc opens the duplex channel.
type DialFunc func(ctx context.Context, cfg live.Config, logger *slog.Logger) (live.Channel, error)

// Deps are the controller's external collaborators. Zero-value fields fall
// back to production implementations; tests inject mocks.
type Deps struct {
	Dial   DialFunc
	Source audioio.Source
	Player audioio.Player
	Camera SnapshotSource
	Locate func(ctx context.Context) (GeoFix, bool)
}

// Controller owns at most one live session at a time and walks it through
// Idle, Connecting, Open, Closing and back to Idle. Every external callback
// source posts into one event queue; the run loop is the only goroutine
// that touches session state after open.
type Controller struct {
	cfg       Config
	deps      Deps
	callbacks Callbacks
	logger    *slog.Logger

	mu       sync.Mutex
	state    State
	lastErr  error
	cameraOn bool
	rt       *runtime
}

// runtime holds everything owned by one session between open and teardown.
type runtime struct {
	id     string
	active atomic.Bool

	channel live.Channel
	source  audioio.Source
	player  audioio.Player
	sched   *Scheduler
	gate    *Gate
	tools   *Dispatcher

	events  chan event
	stopped chan struct{}
	done    chan struct{}
	ctx     context.Context
	cancel  context.CancelFunc

	teardownOnce sync.Once

	outLevel float64
}

// NewController creates a controller. cfg must validate; nil dep fields get
// production defaults at connect time.
func NewController(cfg Config, deps Deps, callbacks Callbacks, logger *slog.Logger) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("session: invalid config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	if deps.Dial == nil {
		deps.Dial = func(ctx context.Context, lc live.Config, l *slog.Logger) (live.Channel, error) {
			return live.Dial(ctx, lc, l)
		}
	}
	if deps.Locate == nil {
		deps.Locate = Locate
	}

	return &Controller{
		cfg:       cfg,
		deps:      deps,
		callbacks: callbacks,
		logger:    logger,
		state:     StateIdle,
	}, nil
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LastError returns the error of the most recent failed session, if any.
func (c *Controller) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// CameraOn reports whether the ancillary image stream is enabled.
func (c *Controller) CameraOn() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cameraOn
}

// ToggleCamera flips the ancillary image stream and returns the new value.
// Without a camera it stays off.
func (c *Controller) ToggleCamera() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.deps.Camera == nil {
		c.cameraOn = false
		return false
	}
	c.cameraOn = !c.cameraOn
	return c.cameraOn
}

// Connect opens a new session: microphone first, then a best-effort
// location fix, then the duplex channel. It returns once the channel is
// acknowledged open and the audio graphs are wired, or with a typed error
// after reverting to Idle.
func (c *Controller) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return ErrSessionInProgress
	}
	c.state = StateConnecting
	c.lastErr = nil
	c.mu.Unlock()
	c.notifyState(StateConnecting)

	source := c.deps.Source
	if source == nil {
		var err error
		source, err = audioio.NewSource(c.cfg.Audio, c.logger)
		if err != nil {
			return c.failConnect(&PermissionError{Resource: "microphone", Err: err})
		}
	}
	if err := source.Start(ctx); err != nil {
		source.Close()
		return c.failConnect(&PermissionError{Resource: "microphone", Err: err})
	}

	// Location is best-effort with a hard deadline; absence never aborts.
	geoCtx, cancelGeo := context.WithTimeout(ctx, c.cfg.GeoTimeout)
	fix, haveFix := c.deps.Locate(geoCtx)
	cancelGeo()
	if haveFix {
		c.logger.Info("location fix acquired", "fix", fix.String())
	} else {
		c.logger.Info("no location fix, continuing without")
	}

	channel, err := c.deps.Dial(ctx, live.Config{
		APIKey:            c.cfg.APIKey,
		Model:             c.cfg.Model,
		Voice:             c.cfg.Voice,
		SystemInstruction: c.cfg.SystemInstruction,
		Tools:             ToolDeclarations(),
	}, c.logger)
	if err != nil {
		source.Stop()
		source.Close()
		return c.failConnect(&ConnectionSetupError{Err: err})
	}

	player := c.deps.Player
	if player == nil {
		player, err = audioio.NewPlayer(c.cfg.Audio, c.logger)
		if err != nil {
			channel.Close()
			source.Stop()
			source.Close()
			return c.failConnect(&ConnectionSetupError{Err: err})
		}
	}
	if err := player.Start(ctx); err != nil {
		channel.Close()
		source.Stop()
		source.Close()
		player.Close()
		return c.failConnect(&ConnectionSetupError{Err: err})
	}

	sched := NewScheduler(player, c.cfg.Lookahead, c.logger)

	tools := NewDispatcher(c.logger)
	tools.Register("set_expression", ExpressionHandler(func(e avatar.Expression) {
		if c.callbacks.OnExpression != nil {
			c.callbacks.OnExpression(e)
		}
	}))
	tools.Register("get_weather", WeatherHandler(fix, haveFix))

	rtCtx, cancel := context.WithCancel(context.Background())
	rt := &runtime{
		id:      uuid.NewString(),
		channel: channel,
		source:  source,
		player:  player,
		sched:   sched,
		gate:    NewGate(sched, c.cfg.EchoTail),
		tools:   tools,
		events:  make(chan event, 128),
		stopped: make(chan struct{}),
		done:    make(chan struct{}),
		ctx:     rtCtx,
		cancel:  cancel,
	}
	rt.active.Store(true)

	c.mu.Lock()
	c.rt = rt
	c.state = StateOpen
	c.mu.Unlock()
	c.notifyState(StateOpen)

	// The microphone has been live since before the dial; frames buffered
	// during the handshake predate the open channel and must not be sent.
	drainFrames(source)

	go c.capturePump(rt)
	go c.channelPump(rt)
	go c.snapshotLoop(rt)
	go c.run(rt)

	c.logger.Info("session open", "session_id", rt.id)
	return nil
}

// SessionID returns the id of the open session, or "" when idle.
func (c *Controller) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rt == nil {
		return ""
	}
	return c.rt.id
}

// Disconnect tears the current session down. The active flag drops
// synchronously before anything else so in-flight callbacks become no-ops;
// teardown itself is idempotent and tolerates a failing channel close.
func (c *Controller) Disconnect() error {
	c.mu.Lock()
	rt := c.rt
	c.mu.Unlock()
	if rt == nil {
		return nil
	}

	rt.active.Store(false)
	c.teardown(rt, nil)
	<-rt.done
	return nil
}

func (c *Controller) failConnect(err error) error {
	c.mu.Lock()
	c.state = StateIdle
	c.lastErr = err
	c.mu.Unlock()
	c.notifyState(StateIdle)
	if c.callbacks.OnError != nil {
		c.callbacks.OnError(err)
	}
	c.logger.Error("connect failed", "err", err)
	return err
}

func (c *Controller) notifyState(s State) {
	if c.callbacks.OnState != nil {
		c.callbacks.OnState(s)
	}
}

// post delivers one event unless the session is already shutting down.
func (rt *runtime) post(ev event) {
	select {
	case rt.events <- ev:
	case <-rt.stopped:
	}
}

func (c *Controller) channelPump(rt *runtime) {
	for ev := range rt.channel.Events() {
		rt.post(channelEvent{ev: ev})
	}
}

// run is the single consumer of the event queue. Ordering across callback
// sources is whatever order events landed in the queue; within one source
// it matches arrival order.
func (c *Controller) run(rt *runtime) {
	for {
		select {
		case ev := <-rt.events:
			switch e := ev.(type) {
			case captureEvent:
				c.handleCapture(rt, e.frame)
			case channelEvent:
				if done := c.handleChannelEvent(rt, e.ev); done {
					return
				}
			case snapshotEvent:
				c.handleSnapshot(rt)
			}
		case <-rt.stopped:
			return
		}
	}
}

func (c *Controller) handleChannelEvent(rt *runtime, ev live.ServerEvent) bool {
	if !rt.active.Load() {
		if _, ok := ev.(live.ClosedEvent); ok {
			return true
		}
		return false
	}

	switch e := ev.(type) {
	case live.AudioChunkEvent:
		c.handleAudioChunk(rt, e)
	case live.InterruptedEvent:
		rt.sched.Interrupt()
		rt.outLevel = 0
	case live.TranscriptEvent:
		if c.callbacks.OnTranscript != nil {
			c.callbacks.OnTranscript(e.Role, e.Text)
		}
	case live.ToolCallEvent:
		c.handleToolCalls(rt, e.Calls)
	case live.TurnCompleteEvent:
		c.logger.Debug("turn complete")
	case live.ErrorEvent:
		err := &RuntimeProtocolError{Err: e.Err}
		if c.callbacks.OnError != nil {
			c.callbacks.OnError(err)
		}
		c.teardown(rt, err)
		return true
	case live.ClosedEvent:
		c.teardown(rt, &RuntimeProtocolError{Err: errors.New("channel closed by remote")})
		return true
	}
	return false
}

func (c *Controller) handleAudioChunk(rt *runtime, chunk live.AudioChunkEvent) {
	// The epoch is captured before decode; an interruption advancing it
	// while this chunk is in flight keeps the stale buffer off the
	// timeline.
	epoch := rt.sched.Epoch()

	buf, err := audioio.Decode(chunk.PCM, chunk.Rate, chunk.Channels)
	if err != nil {
		c.logger.Warn("dropping malformed audio chunk", "err", err)
		return
	}

	if err := rt.sched.Schedule(buf, epoch); err != nil {
		if errors.Is(err, ErrStaleEpoch) {
			c.logger.Debug("discarding stale buffer after interruption")
		} else {
			c.logger.Warn("failed to schedule playback", "err", err)
		}
		return
	}

	rt.outLevel = audioio.RMS(buf.Mono())
}

func (c *Controller) handleToolCalls(rt *runtime, calls []live.ToolCall) {
	responses := rt.tools.Dispatch(rt.ctx, calls)
	if err := rt.channel.SendToolResponses(responses); err != nil {
		c.logger.Warn("dropping tool responses", "count", len(responses), "err", err)
	}
}

// teardown releases everything exactly once. Order matters: the active flag
// drops first, then the channel closes best-effort, then local resources
// are released unconditionally so a failing remote close can never leak the
// microphone or output device.
func (c *Controller) teardown(rt *runtime, reason error) {
	rt.teardownOnce.Do(func() {
		rt.active.Store(false)

		c.mu.Lock()
		c.state = StateClosing
		if reason != nil {
			c.lastErr = reason
		}
		c.mu.Unlock()
		c.notifyState(StateClosing)

		close(rt.stopped)
		rt.cancel()

		if err := rt.channel.Close(); err != nil {
			c.logger.Warn("channel close failed", "err", err)
		}

		rt.sched.Stop()
		if err := rt.player.Stop(); err != nil {
			c.logger.Warn("player stop failed", "err", err)
		}
		rt.player.Close()
		if err := rt.source.Stop(); err != nil {
			c.logger.Warn("source stop failed", "err", err)
		}
		rt.source.Close()

		c.mu.Lock()
		c.rt = nil
		c.state = StateIdle
		c.mu.Unlock()
		c.notifyState(StateIdle)

		if reason != nil {
			c.logger.Warn("session closed", "session_id", rt.id, "reason", reason)
		} else {
			c.logger.Info("session closed", "session_id", rt.id)
		}

		close(rt.done)
	})
}
