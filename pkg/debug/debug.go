// Package debug provides global debug logging flags
package debug

import "github.com/teslashibe/go-posture/internal/log"

// Enabled controls whether debug logging is active
var Enabled bool

// Tracking controls whether per-tick tracking logs are shown (samples,
// detections, classifications). Use --debug-tracking to enable these
// very verbose logs.
var Tracking bool

// Log emits a debug record only if debug mode is enabled
func Log(msg string, args ...any) {
	if Enabled {
		log.Info(msg, args...)
	}
}

// TrackLog emits a record only if tracking debug mode is enabled
func TrackLog(msg string, args ...any) {
	if Tracking {
		log.Info(msg, args...)
	}
}
