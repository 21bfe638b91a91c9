package stillness

import (
	"fmt"
	"time"
)

// Default tracker parameters.
const (
	DefaultMovementEpsilon = 10.0 // pixels
	DefaultStillThreshold  = 15   // ticks
	DefaultTickInterval    = time.Second
)

// Config holds the fixed parameters of the tracker.
// They are set once at startup and never changed while running.
type Config struct {
	// MovementEpsilon is the pixel distance below which two positions
	// count as the same place.
	MovementEpsilon float64

	// StillThreshold is the number of consecutive still ticks tolerated
	// before the reminder fires.
	StillThreshold int

	// TickInterval is the wall-clock spacing between samples.
	TickInterval time.Duration
}

// DefaultConfig returns the standard reminder configuration:
// 10 px epsilon, 15 ticks, one tick per second.
func DefaultConfig() Config {
	return Config{
		MovementEpsilon: DefaultMovementEpsilon,
		StillThreshold:  DefaultStillThreshold,
		TickInterval:    DefaultTickInterval,
	}
}

// Validate checks the configuration for values the tracker cannot use.
func (c Config) Validate() error {
	if !(c.MovementEpsilon > 0) {
		return fmt.Errorf("movement epsilon must be positive, got %v", c.MovementEpsilon)
	}
	if c.StillThreshold < 0 {
		return fmt.Errorf("still threshold must not be negative, got %d", c.StillThreshold)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("tick interval must be positive, got %v", c.TickInterval)
	}
	return nil
}

// Alert is a coarse severity derived from the still count, used to pick
// overlay and status colours.
type Alert int

const (
	Calm     Alert = iota // still for at most half the threshold
	Warning               // past half the threshold
	Critical              // past the threshold, reminder due
)

func (a Alert) String() string {
	switch a {
	case Warning:
		return "warning"
	case Critical:
		return "critical"
	default:
		return "calm"
	}
}

// Alert maps a still count to its severity tier.
func (c Config) Alert(stillCount int) Alert {
	switch {
	case stillCount > c.StillThreshold:
		return Critical
	case float64(stillCount) > float64(c.StillThreshold)/2:
		return Warning
	default:
		return Calm
	}
}
