package web

import (
	"fmt"
	"time"

	"github.com/teslashibe/go-posture/pkg/monitor"
	"github.com/teslashibe/go-posture/pkg/stillness"
)

// View is a Status decorated with the user-facing text.
type View struct {
	monitor.Status
	Message      string  `json:"message"`
	Movement     string  `json:"movement"`
	StillSeconds float64 `json:"still_seconds"`
}

// NewView builds the dashboard view of s.
func NewView(s monitor.Status, interval time.Duration) View {
	still := time.Duration(s.StillCount) * interval
	return View{
		Status:       s,
		Message:      StatusText(s, interval),
		Movement:     MovementText(s.StillCount),
		StillSeconds: still.Seconds(),
	}
}

// StatusText is the one-line status shown above the camera feed.
func StatusText(s monitor.Status, interval time.Duration) string {
	if s.Dismissed {
		return "Starting detection again"
	}

	switch s.Classification.Kind {
	case stillness.ReminderDue:
		return "Time for a break"
	case stillness.Still:
		return fmt.Sprintf("Still for %s", time.Duration(s.Classification.Count)*interval)
	case stillness.Moving:
		return "Face detected"
	default:
		if s.Tick == 0 {
			return "Ready, starting detection"
		}
		return "Looking for a face"
	}
}

// MovementText summarizes the still counter.
func MovementText(stillCount int) string {
	if stillCount > 0 {
		return "Still"
	}
	return "Movement detected"
}
