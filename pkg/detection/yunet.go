package detection

import (
	"fmt"
	"image"
	"os"
	"sync"

	"github.com/teslashibe/go-posture/pkg/debug"
	"gocv.io/x/gocv"
)

// YuNetDetector uses OpenCV's FaceDetectorYN for face detection
type YuNetDetector struct {
	detector gocv.FaceDetectorYN
	config   Config
	mu       sync.Mutex // Protects inference
}

// NewYuNet creates a new YuNet face detector using GoCV's built-in FaceDetectorYN
func NewYuNet(cfg Config) (*YuNetDetector, error) {
	// Check if model file exists first
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, fmt.Errorf("model file not found: %s: %w", cfg.ModelPath, err)
	}

	// Create FaceDetectorYN with the capture size (updated per frame in Detect)
	detector := gocv.NewFaceDetectorYNWithParams(
		cfg.ModelPath,
		"", // No config file needed for ONNX
		image.Pt(cfg.InputWidth, cfg.InputHeight), // Initial input size
		float32(cfg.ConfidenceThresh),             // Score threshold
		0.3,                                       // NMS threshold
		5000,                                      // Top K
		int(gocv.NetBackendDefault),               // Backend
		int(gocv.NetTargetCPU),                    // Target
	)

	return &YuNetDetector{
		detector: detector,
		config:   cfg,
	}, nil
}

// Detect finds faces in the JPEG image. Boxes are in frame pixels.
func (d *YuNetDetector) Detect(jpeg []byte) ([]Detection, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	// Decode JPEG to Mat
	img, err := gocv.IMDecode(jpeg, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	defer img.Close()

	if img.Empty() {
		return nil, fmt.Errorf("empty image")
	}

	// Update detector input size to match image
	d.detector.SetInputSize(image.Pt(img.Cols(), img.Rows()))

	// Prepare output matrix for faces
	faces := gocv.NewMat()
	defer faces.Close()

	// Run detection
	d.detector.Detect(img, &faces)

	// Parse results, one face per row
	var detections []Detection
	for r := 0; r < faces.Rows(); r++ {
		// YuNet output format (15 columns):
		// 0-3: x, y, w, h (bounding box in pixels)
		// 4-13: 5 facial landmarks (x,y pairs)
		// 14: face score
		detections = append(detections, Detection{
			X:          float64(faces.GetFloatAt(r, 0)),
			Y:          float64(faces.GetFloatAt(r, 1)),
			W:          float64(faces.GetFloatAt(r, 2)),
			H:          float64(faces.GetFloatAt(r, 3)),
			Confidence: float64(faces.GetFloatAt(r, 14)),
		})
	}

	// Log only when faces were found
	if len(detections) > 0 {
		debug.TrackLog("yunet detections", "faces", len(detections))
	}

	return detections, nil
}

// Close releases the detector resources
func (d *YuNetDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.detector.Close()
	return nil
}
