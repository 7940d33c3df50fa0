package session

import (
	"github.com/yukti-live/yukti/pkg/audioio"
	"github.com/yukti-live/yukti/pkg/live"
)

// Every external callback source posts a typed event into one queue
// consumed by the controller's run loop, so cross-source ordering is
// explicit instead of emergent.
type event interface {
	isEvent()
}

// captureEvent carries one microphone frame.
type captureEvent struct {
	frame audioio.Frame
}

func (captureEvent) isEvent() {}

// channelEvent carries one inbound event from the duplex channel.
type channelEvent struct {
	ev live.ServerEvent
}

func (channelEvent) isEvent() {}

// snapshotEvent is one tick of the ancillary image stream.
type snapshotEvent struct{}

func (snapshotEvent) isEvent() {}
