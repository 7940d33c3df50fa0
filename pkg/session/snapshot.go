package session

import "time"

// snapshotLoop ticks the ancillary image stream at the configured interval
// (1 Hz by default). The tick only posts an event; liveness and camera
// checks happen in the run loop like every other callback.
func (c *Controller) snapshotLoop(rt *runtime) {
	ticker := time.NewTicker(c.cfg.SnapshotInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rt.post(snapshotEvent{})
		case <-rt.stopped:
			return
		}
	}
}

// handleSnapshot grabs one frame and sends it fire-and-forget. Gated purely
// by session liveness and the camera toggle; a failed grab or send drops
// that frame only.
func (c *Controller) handleSnapshot(rt *runtime) {
	if !rt.active.Load() {
		return
	}
	c.mu.Lock()
	on := c.cameraOn
	camera := c.deps.Camera
	c.mu.Unlock()
	if !on || camera == nil {
		return
	}

	jpeg, err := camera.Snapshot()
	if err != nil {
		c.logger.Debug("snapshot failed", "err", err)
		return
	}
	if c.callbacks.OnSnapshot != nil {
		c.callbacks.OnSnapshot(jpeg)
	}
	if err := rt.channel.SendImage(jpeg); err != nil {
		c.logger.Debug("dropping snapshot", "err", err)
	}
}
