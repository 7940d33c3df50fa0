package live

import (
	"sync"

	"github.com/yukti-live/yukti/pkg/audioio"
)

// MockChannel is a scripted Channel for tests. Inbound events are pushed
// with the Emit helpers; outbound sends are recorded for assertions.
type MockChannel struct {
	mu sync.Mutex

	events chan ServerEvent
	closed bool

	sendErr error

	audioSent   []audioio.EncodedFrame
	imagesSent  [][]byte
	toolBatches [][]ToolResponse

	closeErr   error
	closeCalls int
}

// NewMockChannel creates a MockChannel with a buffered event stream.
func NewMockChannel() *MockChannel {
	return &MockChannel{events: make(chan ServerEvent, 64)}
}

// SetSendError makes every subsequent send fail with err.
func (m *MockChannel) SetSendError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sendErr = err
}

// SetCloseError makes Close return err (after recording the call).
func (m *MockChannel) SetCloseError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeErr = err
}

// SendAudio records the outbound frame.
func (m *MockChannel) SendAudio(frame audioio.EncodedFrame) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if m.sendErr != nil {
		return m.sendErr
	}
	m.audioSent = append(m.audioSent, frame)
	return nil
}

// SendToolResponses records the batch.
func (m *MockChannel) SendToolResponses(responses []ToolResponse) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if m.sendErr != nil {
		return m.sendErr
	}
	batch := make([]ToolResponse, len(responses))
	copy(batch, responses)
	m.toolBatches = append(m.toolBatches, batch)
	return nil
}

// SendImage records the frame.
func (m *MockChannel) SendImage(jpeg []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if m.sendErr != nil {
		return m.sendErr
	}
	m.imagesSent = append(m.imagesSent, jpeg)
	return nil
}

// Events returns the scripted event stream.
func (m *MockChannel) Events() <-chan ServerEvent {
	return m.events
}

// Close records the call and closes the event stream.
func (m *MockChannel) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeCalls++
	if m.closed {
		return nil
	}
	m.closed = true
	close(m.events)
	return m.closeErr
}

// Emit pushes one inbound event.
func (m *MockChannel) Emit(ev ServerEvent) {
	m.events <- ev
}

// AudioSent returns the recorded outbound audio frames.
func (m *MockChannel) AudioSent() []audioio.EncodedFrame {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]audioio.EncodedFrame, len(m.audioSent))
	copy(out, m.audioSent)
	return out
}

// ImagesSent returns the recorded ancillary frames.
func (m *MockChannel) ImagesSent() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.imagesSent))
	copy(out, m.imagesSent)
	return out
}

// ToolBatches returns every recorded tool-response batch.
func (m *MockChannel) ToolBatches() [][]ToolResponse {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]ToolResponse, len(m.toolBatches))
	copy(out, m.toolBatches)
	return out
}

// CloseCalls returns how many times Close was invoked.
func (m *MockChannel) CloseCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closeCalls
}

var _ Channel = (*MockChannel)(nil)
