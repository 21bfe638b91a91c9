package camera

import (
	"errors"
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// Source provides JPEG frames on demand, one per tick.
type Source interface {
	CaptureJPEG() ([]byte, error)
}

// ErrNoFrame is returned when the device delivered an empty frame.
var ErrNoFrame = errors.New("camera: no frame available")

// Webcam captures frames from a local video device.
type Webcam struct {
	cap    *gocv.VideoCapture
	config Config
	frame  gocv.Mat
	mu     sync.Mutex
}

// Open opens the device described by cfg.
func Open(cfg Config) (*Webcam, error) {
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("invalid camera config: %v", errs)
	}

	vc, err := gocv.OpenVideoCapture(cfg.Device)
	if err != nil {
		return nil, fmt.Errorf("open camera %d: %w", cfg.Device, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("open camera %d: device not available", cfg.Device)
	}

	vc.Set(gocv.VideoCaptureFrameWidth, float64(cfg.Width))
	vc.Set(gocv.VideoCaptureFrameHeight, float64(cfg.Height))

	return &Webcam{
		cap:    vc,
		config: cfg,
		frame:  gocv.NewMat(),
	}, nil
}

// Config returns the capture settings.
func (w *Webcam) Config() Config {
	return w.config
}

// CaptureJPEG reads the next frame and encodes it as JPEG.
func (w *Webcam) CaptureJPEG() ([]byte, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if ok := w.cap.Read(&w.frame); !ok || w.frame.Empty() {
		return nil, ErrNoFrame
	}

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, w.frame, []int{int(gocv.IMWriteJpegQuality), w.config.Quality})
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	// The native buffer is freed on Close, so copy out.
	data := make([]byte, buf.Len())
	copy(data, buf.GetBytes())
	return data, nil
}

// Close releases the device.
func (w *Webcam) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.frame.Close()
	return w.cap.Close()
}

var _ Source = (*Webcam)(nil)
