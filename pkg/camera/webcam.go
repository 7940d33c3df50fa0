package camera

import (
	"fmt"
	"image"
	"log/slog"
	"sync"

	"gocv.io/x/gocv"
)

// Webcam is a Provider over a local video capture device.
type Webcam struct {
	cfg    Config
	logger *slog.Logger

	mu     sync.Mutex
	cap    *gocv.VideoCapture
	closed bool
}

// OpenWebcam acquires the capture device.
func OpenWebcam(cfg Config, logger *slog.Logger) (*Webcam, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("camera: invalid config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	cap, err := gocv.OpenVideoCapture(cfg.Device)
	if err != nil {
		return nil, fmt.Errorf("camera: failed to open device %d: %w", cfg.Device, err)
	}

	logger.Info("camera open", "device", cfg.Device, "scale", cfg.Scale, "quality", cfg.Quality)
	return &Webcam{cfg: cfg, logger: logger, cap: cap}, nil
}

// Snapshot grabs one frame, scales it down, and encodes it as JPEG.
func (w *Webcam) Snapshot() ([]byte, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil, ErrNoFrame
	}

	img := gocv.NewMat()
	defer img.Close()

	if ok := w.cap.Read(&img); !ok || img.Empty() {
		return nil, ErrNoFrame
	}

	frame := img
	if w.cfg.Scale != 1 {
		scaled := gocv.NewMat()
		defer scaled.Close()
		gocv.Resize(img, &scaled, image.Point{}, w.cfg.Scale, w.cfg.Scale, gocv.InterpolationLinear)
		frame = scaled
	}

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, frame,
		[]int{gocv.IMWriteJpegQuality, w.cfg.Quality})
	if err != nil {
		return nil, fmt.Errorf("camera: jpeg encode failed: %w", err)
	}
	defer buf.Close()

	// The native buffer is freed on Close; hand back a copy.
	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out, nil
}

// Close releases the device.
func (w *Webcam) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	return w.cap.Close()
}

var _ Provider = (*Webcam)(nil)
