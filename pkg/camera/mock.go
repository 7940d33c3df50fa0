package camera

import "sync"

// MockProvider returns a canned frame for tests.
type MockProvider struct {
	mu    sync.Mutex
	frame []byte
	err   error
	calls int
}

// NewMockProvider creates a provider serving the given frame.
func NewMockProvider(frame []byte) *MockProvider {
	return &MockProvider{frame: frame}
}

// SetError makes subsequent snapshots fail.
func (m *MockProvider) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Snapshot returns the canned frame.
func (m *MockProvider) Snapshot() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.frame, nil
}

// Calls returns how many snapshots were requested.
func (m *MockProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Close is a no-op.
func (m *MockProvider) Close() error { return nil }

var _ Provider = (*MockProvider)(nil)
