package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yukti-live/yukti/pkg/live"
	"github.com/yukti-live/yukti/pkg/session"
)

type fakeConversation struct {
	state      session.State
	cameraOn   bool
	lastErr    error
	connectErr error
}

func (f *fakeConversation) Connect(ctx context.Context) error {
	if f.connectErr != nil {
		return f.connectErr
	}
	f.state = session.StateOpen
	return nil
}

func (f *fakeConversation) Disconnect() error {
	f.state = session.StateIdle
	return nil
}

func (f *fakeConversation) ToggleCamera() bool {
	f.cameraOn = !f.cameraOn
	return f.cameraOn
}

func (f *fakeConversation) State() session.State { return f.state }
func (f *fakeConversation) LastError() error     { return f.lastErr }
func (f *fakeConversation) CameraOn() bool       { return f.cameraOn }

func newTestServer(conv Conversation) *Server {
	s := NewServer("0", nil)
	if conv != nil {
		s.Bind(conv)
	}
	return s
}

func TestStatusEndpoint(t *testing.T) {
	s := newTestServer(&fakeConversation{state: session.StateIdle})

	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, "/api/status", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var st Status
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if st.State != session.StateIdle {
		t.Errorf("state = %v, want idle", st.State)
	}
}

func TestConnectDisconnectEndpoints(t *testing.T) {
	conv := &fakeConversation{state: session.StateIdle}
	s := newTestServer(conv)

	resp, err := s.app.Test(httptest.NewRequest(http.MethodPost, "/api/connect", nil))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("connect status = %d", resp.StatusCode)
	}
	if conv.state != session.StateOpen {
		t.Error("connect did not reach the controller")
	}

	resp, err = s.app.Test(httptest.NewRequest(http.MethodPost, "/api/disconnect", nil))
	if err != nil {
		t.Fatalf("disconnect: %v", err)
	}
	resp.Body.Close()
	if conv.state != session.StateIdle {
		t.Error("disconnect did not reach the controller")
	}
}

func TestConnectErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"in progress", session.ErrSessionInProgress, http.StatusConflict},
		{"permission", &session.PermissionError{Resource: "microphone", Err: errors.New("denied")}, http.StatusForbidden},
		{"setup", &session.ConnectionSetupError{Err: errors.New("rejected")}, http.StatusBadGateway},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestServer(&fakeConversation{connectErr: tc.err})
			resp, err := s.app.Test(httptest.NewRequest(http.MethodPost, "/api/connect", nil))
			if err != nil {
				t.Fatalf("request: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != tc.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tc.want)
			}
		})
	}
}

func TestEndpointsWithoutConversation(t *testing.T) {
	s := newTestServer(nil)
	resp, err := s.app.Test(httptest.NewRequest(http.MethodPost, "/api/connect", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}
}

func TestToggleCameraEndpoint(t *testing.T) {
	conv := &fakeConversation{}
	s := newTestServer(conv)

	resp, err := s.app.Test(httptest.NewRequest(http.MethodPost, "/api/camera/toggle", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()

	var body struct {
		CameraOn bool `json:"camera_on"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.CameraOn {
		t.Error("camera should be on after first toggle")
	}
}

func TestSnapshotCallbackMirrorsToHub(t *testing.T) {
	s := newTestServer(&fakeConversation{})
	go s.eventHub.Run()
	defer s.eventHub.Stop()

	cb := s.Callbacks()
	if cb.OnSnapshot == nil {
		t.Fatal("snapshot callback not wired")
	}
	// No clients connected: the frame drains through the hub loop.
	cb.OnSnapshot([]byte{0xFF, 0xD8})
	if s.eventHub.ClientCount() != 0 {
		t.Errorf("client count = %d, want 0", s.eventHub.ClientCount())
	}
}

func TestTranscriptBuffer(t *testing.T) {
	s := newTestServer(&fakeConversation{})

	cb := s.Callbacks()
	cb.OnTranscript(live.RoleUser, "hello")
	cb.OnTranscript(live.RoleAssistant, "hi")

	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, "/api/transcript", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()

	var entries []TranscriptEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].Role != "user" || entries[0].Text != "hello" {
		t.Errorf("first entry = %+v", entries[0])
	}
}
