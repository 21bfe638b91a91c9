package detection

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"
)

func newTestYuNet(t *testing.T) *YuNetDetector {
	t.Helper()

	modelPath := findModelPath()
	if modelPath == "" {
		t.Skip("YuNet model not found, skipping test")
	}

	cfg := DefaultConfig()
	cfg.ModelPath = modelPath

	detector, err := NewYuNet(cfg)
	if err != nil {
		t.Fatalf("NewYuNet failed: %v", err)
	}
	t.Cleanup(func() { detector.Close() })
	return detector
}

// TestYuNetNewInvalidPath tests error handling for missing model
func TestYuNetNewInvalidPath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ModelPath = "/nonexistent/path/model.onnx"

	if _, err := NewYuNet(cfg); err == nil {
		t.Error("Expected error for invalid model path")
	}
}

func TestYuNetDetect_InvalidImage(t *testing.T) {
	detector := newTestYuNet(t)

	if _, err := detector.Detect([]byte{}); err == nil {
		t.Error("Expected error for empty image")
	}
	if _, err := detector.Detect([]byte("not a jpeg")); err == nil {
		t.Error("Expected error for invalid JPEG")
	}
}

// A solid colour frame has no face, which the monitor turns into an
// undetected tick.
func TestYuNetDetect_SolidImage(t *testing.T) {
	detector := newTestYuNet(t)

	detections, err := detector.Detect(createSolidJPEG(640, 480, color.RGBA{0, 0, 255, 255}))
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(detections) > 0 {
		t.Errorf("Expected no detections in solid color image, got %d", len(detections))
	}
	if s := SampleOf(SelectBest(detections)); s.Detected {
		t.Errorf("Expected not-detected sample, got %+v", s)
	}
}

func TestYuNetConcurrency(t *testing.T) {
	detector := newTestYuNet(t)
	frame := createSolidJPEG(320, 240, color.RGBA{100, 100, 100, 255})

	done := make(chan error, 10)
	for i := 0; i < 10; i++ {
		go func() {
			_, err := detector.Detect(frame)
			done <- err
		}()
	}

	for i := 0; i < 10; i++ {
		if err := <-done; err != nil {
			t.Errorf("Concurrent detection failed: %v", err)
		}
	}
}

func findModelPath() string {
	if p := os.Getenv("POSTURE_MODEL"); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	// Walk up to find models directory
	for dir := cwd; dir != filepath.Dir(dir); dir = filepath.Dir(dir) {
		modelPath := filepath.Join(dir, "models", "face_detection_yunet.onnx")
		if _, err := os.Stat(modelPath); err == nil {
			return modelPath
		}
	}
	return ""
}

func createSolidJPEG(width, height int, c color.Color) []byte {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}

	var buf bytes.Buffer
	jpeg.Encode(&buf, img, nil)
	return buf.Bytes()
}
