// Package live provides the duplex channel to the remote conversational
// service. The transport is a persistent websocket speaking the Gemini Live
// BidiGenerateContent vocabulary; callers treat it as an opaque stream of
// typed events in and media/tool frames out.
package live

import (
	"errors"

	"github.com/yukti-live/yukti/pkg/audioio"
)

// Common errors returned by channels.
var (
	ErrNotConnected = errors.New("live: channel not connected")
	ErrClosed       = errors.New("live: channel closed")
)

// FunctionDeclaration describes one tool offered to the model.
type FunctionDeclaration struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// Config configures a channel at open time. The system instruction and tool
// schema are opaque pass-through content supplied by the caller.
type Config struct {
	APIKey            string
	Model             string
	SystemInstruction string
	Voice             string
	Tools             []FunctionDeclaration
}

// ToolResponse is one correlated reply to a ToolCall.
type ToolResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Result string `json:"result"`
}

// Channel is a duplex stream to the remote service. All sends are
// fire-and-forget from the caller's point of view: an error means the frame
// was dropped, never that it will be retried.
type Channel interface {
	// SendAudio transmits one encoded outbound audio frame.
	SendAudio(frame audioio.EncodedFrame) error

	// SendToolResponses transmits a complete batch of tool responses.
	SendToolResponses(responses []ToolResponse) error

	// SendImage transmits one ancillary JPEG frame.
	SendImage(jpeg []byte) error

	// Events returns the inbound event stream. The channel closes it
	// after emitting ClosedEvent.
	Events() <-chan ServerEvent

	// Close tears the channel down. Safe to call on an already-closed
	// channel.
	Close() error
}
