package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/yukti-live/yukti/pkg/camera"
)

func TestSnapshotStreamGatedByCameraToggle(t *testing.T) {
	rig := newTestRig(t)
	cam := camera.NewMockProvider([]byte{0xFF, 0xD8, 0xFF, 0xD9})
	rig.ctrl.deps.Camera = cam
	rig.ctrl.cfg.SnapshotInterval = 10 * time.Millisecond

	var mirrorMu sync.Mutex
	mirrored := 0
	rig.ctrl.callbacks.OnSnapshot = func(jpeg []byte) {
		mirrorMu.Lock()
		mirrored++
		mirrorMu.Unlock()
	}

	if err := rig.ctrl.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer rig.ctrl.Disconnect()

	// Camera off: ticks fire but nothing is grabbed or sent.
	time.Sleep(50 * time.Millisecond)
	if got := len(rig.channel.ImagesSent()); got != 0 {
		t.Fatalf("%d frames sent with camera off, want 0", got)
	}
	if cam.Calls() != 0 {
		t.Fatalf("camera grabbed %d times with toggle off", cam.Calls())
	}

	if !rig.ctrl.ToggleCamera() {
		t.Fatal("toggle did not enable the camera")
	}
	waitFor(t, "snapshot transmitted", func() bool {
		return len(rig.channel.ImagesSent()) >= 1
	})
	mirrorMu.Lock()
	if mirrored == 0 {
		t.Error("snapshot callback never invoked")
	}
	mirrorMu.Unlock()

	// Toggling off stops the stream again.
	rig.ctrl.ToggleCamera()
	sent := len(rig.channel.ImagesSent())
	time.Sleep(50 * time.Millisecond)
	if got := len(rig.channel.ImagesSent()); got > sent+1 {
		t.Errorf("stream kept flowing after toggle off: %d -> %d", sent, got)
	}
}

func TestSnapshotStopsAtTeardown(t *testing.T) {
	rig := newTestRig(t)
	cam := camera.NewMockProvider([]byte{0xFF, 0xD8})
	rig.ctrl.deps.Camera = cam
	rig.ctrl.cfg.SnapshotInterval = 10 * time.Millisecond

	if err := rig.ctrl.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	rig.ctrl.ToggleCamera()
	waitFor(t, "stream flowing", func() bool {
		return len(rig.channel.ImagesSent()) >= 1
	})

	if err := rig.ctrl.Disconnect(); err != nil {
		t.Fatalf("disconnect: %v", err)
	}

	sent := len(rig.channel.ImagesSent())
	time.Sleep(50 * time.Millisecond)
	if got := len(rig.channel.ImagesSent()); got != sent {
		t.Errorf("frames sent after teardown: %d -> %d", sent, got)
	}
}
