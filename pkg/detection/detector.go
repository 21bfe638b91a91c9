// Package detection provides face detection using computer vision
package detection

import "github.com/teslashibe/go-posture/pkg/stillness"

// Detection represents a detected face
type Detection struct {
	X          float64 `json:"x"` // Top-left corner in frame pixels
	Y          float64 `json:"y"`
	W          float64 `json:"w"` // Width and height in frame pixels
	H          float64 `json:"h"`
	Confidence float64 `json:"confidence"` // Detection confidence (0-1)
}

// Center returns the center point of the detection
func (d Detection) Center() (x, y float64) {
	return d.X + d.W/2, d.Y + d.H/2
}

// Area returns the area of the bounding box
func (d Detection) Area() float64 {
	return d.W * d.H
}

// Detector is the interface for face detection backends
type Detector interface {
	// Detect finds faces in the image and returns their positions
	Detect(jpeg []byte) ([]Detection, error)

	// Close releases resources
	Close() error
}

// Config holds detector configuration
type Config struct {
	ModelPath        string  // Path to ONNX model
	ConfidenceThresh float64 // Minimum confidence (default 0.6)
	InputWidth       int     // Model input width
	InputHeight      int     // Model input height
}

// DefaultConfig returns production defaults for YuNet
func DefaultConfig() Config {
	return Config{
		ModelPath:        "models/face_detection_yunet.onnx",
		ConfidenceThresh: 0.6,
		InputWidth:       640,
		InputHeight:      480,
	}
}

// SelectBest picks the single face to follow from multiple detections.
// Priority: confidence * 0.7 + area * 0.3
func SelectBest(dets []Detection) *Detection {
	if len(dets) == 0 {
		return nil
	}

	if len(dets) == 1 {
		return &dets[0]
	}

	// Find max area for normalization
	maxArea := 0.0
	for _, d := range dets {
		if d.Area() > maxArea {
			maxArea = d.Area()
		}
	}

	bestScore := -1.0
	var best *Detection

	for i := range dets {
		score := dets[i].Confidence * 0.7
		if maxArea > 0 {
			score += (dets[i].Area() / maxArea) * 0.3
		}
		if score > bestScore {
			bestScore = score
			best = &dets[i]
		}
	}

	return best
}

// SampleOf turns the chosen face into a tracker sample.
// A nil detection means no face this tick.
func SampleOf(d *Detection) stillness.Sample {
	if d == nil {
		return stillness.NotDetected()
	}
	x, y := d.Center()
	return stillness.Detected(stillness.Point{X: x, Y: y})
}
