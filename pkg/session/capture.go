package session

import (
	"time"

	"github.com/yukti-live/yukti/pkg/audioio"
)

// drainFrames discards whatever the source buffered so far. Connect uses
// it so audio recorded while the handshake was still in flight is never
// transmitted on the freshly opened channel.
func drainFrames(source audioio.Source) {
	for {
		select {
		case _, ok := <-source.Stream():
			if !ok {
				return
			}
		default:
			return
		}
	}
}

// capturePump forwards device callbacks into the event queue; it exits
// when the source's stream closes at teardown.
func (c *Controller) capturePump(rt *runtime) {
	for frame := range rt.source.Stream() {
		rt.post(captureEvent{frame: frame})
	}
}

// handleCapture processes one microphone frame: meter it, consult the gate,
// and if capture is not suppressed encode and transmit fire-and-forget.
// Each frame is independent; no state is carried between callbacks beyond
// what the gate reads from the scheduler.
func (c *Controller) handleCapture(rt *runtime, frame audioio.Frame) {
	if !rt.active.Load() {
		return
	}

	if c.callbacks.OnLevel != nil {
		c.callbacks.OnLevel(audioio.RMS(frame.Samples), rt.outLevel)
	}

	if rt.gate.Suppressed(time.Now()) {
		return
	}

	if err := rt.channel.SendAudio(audioio.Encode(frame)); err != nil {
		// Stale audio has no value by the time a retry would land.
		c.logger.Debug("dropping outbound frame", "err", err)
	}
}
