// Package stillness detects a user sitting still in front of the camera.
//
// A Tracker consumes one face position per tick and classifies the tick
// as undetected, moving, still or reminder-due. The tracker holds no
// state of its own: callers own a State value and pass it through
// Observe and Dismiss, which makes every transition a pure function.
package stillness

import (
	"fmt"
	"math"
)

// Point is a position in frame pixel coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Distance returns the Euclidean distance between p and q.
func (p Point) Distance(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Sample is the detector output for one tick.
type Sample struct {
	Position Point
	Detected bool
}

// Detected returns a sample for a face centred at p.
func Detected(p Point) Sample {
	return Sample{Position: p, Detected: true}
}

// NotDetected returns a sample for a tick without a face.
func NotDetected() Sample {
	return Sample{}
}

// State is the tracker state carried between ticks.
// The zero value is the initial state.
type State struct {
	LastPosition *Point `json:"last_position,omitempty"`
	StillCount   int    `json:"still_count"`
}

// Kind is the classification of a single tick.
type Kind int

const (
	Undetected Kind = iota
	Moving
	Still
	ReminderDue
)

func (k Kind) String() string {
	switch k {
	case Moving:
		return "moving"
	case Still:
		return "still"
	case ReminderDue:
		return "reminder_due"
	default:
		return "undetected"
	}
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Classification is the result of observing one sample.
// Count is the still count for Still and ReminderDue, zero otherwise.
type Classification struct {
	Kind  Kind `json:"kind"`
	Count int  `json:"count"`
}

// Reminder reports whether the reminder should be shown.
func (c Classification) Reminder() bool {
	return c.Kind == ReminderDue
}

func (c Classification) String() string {
	switch c.Kind {
	case Still, ReminderDue:
		return fmt.Sprintf("%s(%d)", c.Kind, c.Count)
	default:
		return c.Kind.String()
	}
}

// Tracker applies the stillness rules for a fixed Config.
type Tracker struct {
	config Config
}

// New creates a tracker.
func New(config Config) *Tracker {
	return &Tracker{config: config}
}

// Config returns the tracker parameters.
func (t *Tracker) Config() Config {
	return t.config
}

// Observe advances state by one tick.
//
// A missing face resets to the initial state. A face closer than
// MovementEpsilon to the previous one extends the still run; anything
// else (including NaN coordinates, whose distance never compares less
// than epsilon) starts a new run at zero.
func (t *Tracker) Observe(sample Sample, state State) (State, Classification) {
	if !sample.Detected {
		return State{}, Classification{Kind: Undetected}
	}

	p := sample.Position
	next := State{LastPosition: &p}
	if state.LastPosition != nil && p.Distance(*state.LastPosition) < t.config.MovementEpsilon {
		next.StillCount = state.StillCount + 1
	}

	switch {
	case next.StillCount > t.config.StillThreshold:
		return next, Classification{Kind: ReminderDue, Count: next.StillCount}
	case next.StillCount > 0:
		return next, Classification{Kind: Still, Count: next.StillCount}
	default:
		return next, Classification{Kind: Moving}
	}
}

// Dismiss clears an acknowledged reminder by returning the initial state.
func (t *Tracker) Dismiss(State) State {
	return State{}
}
