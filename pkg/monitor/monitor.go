// Package monitor drives the stillness tracker from a camera.
//
// A Monitor owns the tracker state. Every tick it captures a frame,
// detects the face, advances the tracker and hands the resulting Status
// to its presenters. Dismiss requests are queued and applied by the same
// goroutine, so they never interleave with an observation.
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/teslashibe/go-posture/internal/log"
	"github.com/teslashibe/go-posture/pkg/debug"
	"github.com/teslashibe/go-posture/pkg/detection"
	"github.com/teslashibe/go-posture/pkg/stillness"
)

// Status is the outcome of one tick, as shown to the user.
type Status struct {
	Session        string                   `json:"session"`
	Tick           uint64                   `json:"tick"`
	Time           time.Time                `json:"time"`
	Classification stillness.Classification `json:"classification"`
	StillCount     int                      `json:"still_count"`
	Alert          string                   `json:"alert"`
	Reminder       bool                     `json:"reminder"`
	Dismissed      bool                     `json:"dismissed"`
	Face           *detection.Detection     `json:"face,omitempty"`

	// Frame is the JPEG the face was detected in, if any.
	Frame []byte `json:"-"`
}

// Presenter receives every published Status. Present is called from the
// monitor goroutine and must not block.
type Presenter interface {
	Present(Status)
}

// PresenterFunc adapts a function to Presenter.
type PresenterFunc func(Status)

// Present calls f(s).
func (f PresenterFunc) Present(s Status) { f(s) }

// FrameSource provides one JPEG frame per tick.
type FrameSource interface {
	CaptureJPEG() ([]byte, error)
}

// Monitor runs the capture, detect, observe loop.
type Monitor struct {
	tracker    *stillness.Tracker
	source     FrameSource
	detector   detection.Detector
	presenters []Presenter
	logger     *slog.Logger
	session    string
	now        func() time.Time

	// Owned by the loop goroutine
	state     stillness.State
	tick      uint64
	reminding bool

	dismiss chan struct{}

	mu   sync.RWMutex
	last Status
}

// New creates a monitor. source and detector may be nil, in which case
// every tick is undetected.
func New(cfg stillness.Config, source FrameSource, detector detection.Detector, presenters ...Presenter) *Monitor {
	session := uuid.NewString()
	return &Monitor{
		tracker:    stillness.New(cfg),
		source:     source,
		detector:   detector,
		presenters: presenters,
		logger:     log.With("component", "monitor", "session", session),
		session:    session,
		now:        time.Now,
		dismiss:    make(chan struct{}, 1),
		last:       Status{Session: session, Alert: stillness.Calm.String()},
	}
}

// AddPresenter registers another presenter. Call before Run.
func (m *Monitor) AddPresenter(p Presenter) {
	m.presenters = append(m.presenters, p)
}

// Session returns the unique id of this monitoring session.
func (m *Monitor) Session() string {
	return m.session
}

// Config returns the fixed tracker parameters.
func (m *Monitor) Config() stillness.Config {
	return m.tracker.Config()
}

// Snapshot returns the most recently published status.
func (m *Monitor) Snapshot() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.last
}

// Dismiss asks the loop to clear the reminder. It never blocks; repeated
// requests before the loop gets to them collapse into one.
func (m *Monitor) Dismiss() {
	select {
	case m.dismiss <- struct{}{}:
	default:
	}
}

// Run ticks every TickInterval until ctx is cancelled.
// It fails immediately when the tracker configuration is invalid.
func (m *Monitor) Run(ctx context.Context) error {
	cfg := m.tracker.Config()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("monitor: %w", err)
	}
	ticker := time.NewTicker(cfg.TickInterval)
	defer ticker.Stop()

	m.logger.Info("stillness monitor started",
		"interval", cfg.TickInterval,
		"epsilon_px", cfg.MovementEpsilon,
		"threshold_ticks", cfg.StillThreshold)

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("stillness monitor stopped", "ticks", m.tick)
			return ctx.Err()

		case <-m.dismiss:
			m.applyDismiss()

		case <-ticker.C:
			m.Step()
		}
	}
}

// Step runs one tick synchronously and returns the published status.
// A dismiss still pending from before the tick is applied first.
func (m *Monitor) Step() Status {
	select {
	case <-m.dismiss:
		m.applyDismiss()
	default:
	}

	frame, face := m.detect()
	sample := detection.SampleOf(face)

	var c stillness.Classification
	m.state, c = m.tracker.Observe(sample, m.state)
	m.tick++

	debug.TrackLog("tick",
		"tick", m.tick,
		"detected", sample.Detected,
		"x", sample.Position.X,
		"y", sample.Position.Y,
		"class", c.String())

	m.logReminderEdge(c)

	s := m.status(c)
	s.Face = face
	s.Frame = frame
	m.publish(s)
	return s
}

// detect captures and detects one frame. Collaborator failures become a
// tick without a face.
func (m *Monitor) detect() ([]byte, *detection.Detection) {
	if m.source == nil || m.detector == nil {
		return nil, nil
	}

	frame, err := m.source.CaptureJPEG()
	if err != nil {
		m.logger.Warn("frame capture failed", "error", err)
		return nil, nil
	}

	dets, err := m.detector.Detect(frame)
	if err != nil {
		m.logger.Warn("face detection failed", "error", err)
		return frame, nil
	}

	best := detection.SelectBest(dets)
	if best == nil {
		return frame, nil
	}
	face := *best
	return frame, &face
}

func (m *Monitor) applyDismiss() {
	m.state = m.tracker.Dismiss(m.state)
	if m.reminding {
		m.logger.Info("reminder dismissed")
	}
	m.reminding = false

	s := m.status(stillness.Classification{Kind: stillness.Undetected})
	s.Dismissed = true
	m.publish(s)
}

func (m *Monitor) logReminderEdge(c stillness.Classification) {
	switch {
	case c.Reminder() && !m.reminding:
		m.logger.Info("reminder due", "still_ticks", c.Count)
	case !c.Reminder() && m.reminding:
		m.logger.Info("reminder cleared", "class", c.String())
	}
	m.reminding = c.Reminder()
}

func (m *Monitor) status(c stillness.Classification) Status {
	return Status{
		Session:        m.session,
		Tick:           m.tick,
		Time:           m.now(),
		Classification: c,
		StillCount:     m.state.StillCount,
		Alert:          m.tracker.Config().Alert(m.state.StillCount).String(),
		Reminder:       c.Reminder(),
	}
}

func (m *Monitor) publish(s Status) {
	m.mu.Lock()
	m.last = s
	m.mu.Unlock()

	for _, p := range m.presenters {
		p.Present(s)
	}
}
