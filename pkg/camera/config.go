// Package camera captures frames from a local webcam.
package camera

import "fmt"

// Config holds the capture settings, fixed for the life of a session.
// The movement threshold is measured in pixels of this frame, so the
// resolution is not changed while running.
type Config struct {
	Device  int `json:"device"`  // Video device index (0 = default webcam)
	Width   int `json:"width"`   // Frame width in pixels
	Height  int `json:"height"`  // Frame height in pixels
	Quality int `json:"quality"` // JPEG quality 1-100
}

// Limits for accepted values.
const (
	MinWidth  = 160
	MinHeight = 120
	MaxWidth  = 3840
	MaxHeight = 2160
)

// DefaultConfig returns a 640x480 user-facing webcam configuration.
func DefaultConfig() Config {
	return Config{
		Device:  0,
		Width:   640,
		Height:  480,
		Quality: 80,
	}
}

// Validate checks if the config values are within valid ranges.
// Returns a list of validation errors, or nil if valid.
func (c *Config) Validate() []string {
	var errors []string

	if c.Device < 0 {
		errors = append(errors, "device must not be negative")
	}
	if c.Width < MinWidth || c.Width > MaxWidth {
		errors = append(errors, fmt.Sprintf("width must be between %d and %d", MinWidth, MaxWidth))
	}
	if c.Height < MinHeight || c.Height > MaxHeight {
		errors = append(errors, fmt.Sprintf("height must be between %d and %d", MinHeight, MaxHeight))
	}
	if c.Quality < 1 || c.Quality > 100 {
		errors = append(errors, "quality must be between 1 and 100")
	}

	return errors
}
