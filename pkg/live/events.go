package live

import "encoding/json"

// Role identifies the speaker of a transcript chunk.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ServerEvent is one inbound event from the remote service.
type ServerEvent interface {
	eventType() string
}

// AudioChunkEvent carries decoded PCM16LE payload bytes for playback.
type AudioChunkEvent struct {
	// PCM is raw PCM16LE, already base64-decoded.
	PCM []byte
	// Rate is the declared sample rate, 24000 in practice.
	Rate int
	// Channels is the channel count, 1 in practice.
	Channels int
}

func (AudioChunkEvent) eventType() string { return "audio_chunk" }

// TranscriptEvent carries a transcript fragment for one role.
type TranscriptEvent struct {
	Role Role
	Text string
}

func (TranscriptEvent) eventType() string { return "transcript" }

// ToolCall is one function-call request from the model.
type ToolCall struct {
	ID   string
	Name string
	Args json.RawMessage
}

// ToolCallEvent carries a batch of tool calls that must be answered
// together.
type ToolCallEvent struct {
	Calls []ToolCall
}

func (ToolCallEvent) eventType() string { return "tool_call" }

// InterruptedEvent signals that the user barged in and the current model
// turn was cancelled.
type InterruptedEvent struct{}

func (InterruptedEvent) eventType() string { return "interrupted" }

// TurnCompleteEvent signals the end of a model turn.
type TurnCompleteEvent struct{}

func (TurnCompleteEvent) eventType() string { return "turn_complete" }

// ErrorEvent carries a channel-level error after which the session must
// tear down.
type ErrorEvent struct {
	Err error
}

func (ErrorEvent) eventType() string { return "error" }

// ClosedEvent is the final event on the stream.
type ClosedEvent struct{}

func (ClosedEvent) eventType() string { return "closed" }
