package session

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/yukti-live/yukti/pkg/audioio"
)

// ErrStaleEpoch is returned when a decoded buffer arrives for scheduling
// after an interruption has advanced the session epoch.
var ErrStaleEpoch = errors.New("session: buffer belongs to an interrupted turn")

// Scheduler is the jitter buffer. It turns an arbitrarily jittery arrival
// sequence of decoded buffers into gap-free, non-overlapping playback on the
// output clock, and tracks when the remote side finished speaking so the
// transmit gate can stop suppressing capture.
//
// Invariants it maintains for the life of a session:
//   - scheduled start times are non-decreasing
//   - item i+1 never starts before item i ends
//   - the active count equals the number of items neither completed nor
//     cancelled
type Scheduler struct {
	player    audioio.Player
	lookahead float64
	logger    *slog.Logger

	mu            sync.Mutex
	nextStartTime float64
	epoch         uint64
	nextID        uint64
	active        map[uint64]audioio.Handle
	lastEnd       time.Time
}

// NewScheduler creates a scheduler over the given player. The lookahead is
// the cushion rebuilt whenever the buffer underruns.
func NewScheduler(player audioio.Player, lookahead time.Duration, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		player:    player,
		lookahead: lookahead.Seconds(),
		logger:    logger,
		active:    make(map[uint64]audioio.Handle),
	}
}

// Epoch returns the current session epoch. Callers capture it when an
// inbound chunk arrives and pass it back to Schedule; a buffer whose decode
// straddled an interruption is rejected instead of played.
func (s *Scheduler) Epoch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch
}

// Schedule places one decoded buffer on the output timeline.
//
// If the timeline has starved (nextStartTime behind the clock — first buffer
// of the session or a stall) the buffer starts at now+lookahead to rebuild
// the cushion; otherwise it starts exactly where the previous one ends.
func (s *Scheduler) Schedule(buf audioio.Buffer, epoch uint64) error {
	samples := buf.Mono()
	d := buf.Duration()
	if len(samples) == 0 || d == 0 {
		return nil
	}

	s.mu.Lock()

	if epoch != s.epoch {
		s.mu.Unlock()
		return ErrStaleEpoch
	}

	now := s.player.Now()
	if s.nextStartTime <= now {
		// Starved: first buffer of the session or a stall. Rebuild the
		// cushion instead of playing immediately.
		s.nextStartTime = now + s.lookahead
	}
	start := s.nextStartTime
	s.nextStartTime += d

	id := s.nextID
	s.nextID++

	s.mu.Unlock()

	handle, err := s.player.PlayAt(samples, buf.Rate, start, func() {
		s.onEnded(id)
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	if epoch != s.epoch {
		// Interrupted between PlayAt and registration.
		s.mu.Unlock()
		handle.Cancel()
		return ErrStaleEpoch
	}
	s.active[id] = handle
	s.mu.Unlock()

	s.logger.Debug("scheduled playback", "start", start, "duration", d)
	return nil
}

func (s *Scheduler) onEnded(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.active[id]; !ok {
		return
	}
	delete(s.active, id)
	if len(s.active) == 0 {
		s.lastEnd = time.Now()
	}
}

// Interrupt hard-cancels everything scheduled or playing, resets the
// timeline to the clock's current instant, and clears the echo guard so
// capture resumes immediately. The epoch advances so in-flight decodes
// cannot schedule afterward.
func (s *Scheduler) Interrupt() {
	s.mu.Lock()
	s.epoch++
	handles := make([]audioio.Handle, 0, len(s.active))
	for _, h := range s.active {
		handles = append(handles, h)
	}
	s.active = make(map[uint64]audioio.Handle)
	s.nextStartTime = s.player.Now()
	s.lastEnd = time.Time{}
	s.mu.Unlock()

	for _, h := range handles {
		h.Cancel()
	}

	s.logger.Debug("playback interrupted", "cancelled", len(handles))
}

// ActiveCount returns the number of items neither completed nor cancelled.
func (s *Scheduler) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active)
}

// LastPlaybackEnd returns when the active set last drained to empty, or the
// zero time if playback is active or was interrupted.
func (s *Scheduler) LastPlaybackEnd() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastEnd
}

// NextStartTime returns the output-clock instant the next buffer would
// begin, for inspection.
func (s *Scheduler) NextStartTime() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextStartTime
}

// Stop cancels everything without advancing the epoch. Used at teardown.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	handles := make([]audioio.Handle, 0, len(s.active))
	for _, h := range s.active {
		handles = append(handles, h)
	}
	s.active = make(map[uint64]audioio.Handle)
	s.mu.Unlock()

	for _, h := range handles {
		h.Cancel()
	}
}
