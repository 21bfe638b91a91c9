package monitor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/teslashibe/go-posture/pkg/detection"
	"github.com/teslashibe/go-posture/pkg/stillness"
)

// fakeSource returns a fixed frame or an error
type fakeSource struct {
	err error
}

func (f *fakeSource) CaptureJPEG() ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []byte{0xFF, 0xD8, 0xFF}, nil
}

// scriptedDetector replays one result per call, repeating the last
type scriptedDetector struct {
	mu    sync.Mutex
	steps []step
	calls int
}

type step struct {
	dets []detection.Detection
	err  error
}

func face(cx, cy float64) step {
	return step{dets: []detection.Detection{{X: cx - 50, Y: cy - 50, W: 100, H: 100, Confidence: 0.9}}}
}

func noFace() step {
	return step{}
}

func (d *scriptedDetector) Detect([]byte) ([]detection.Detection, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	i := d.calls
	if i >= len(d.steps) {
		i = len(d.steps) - 1
	}
	d.calls++
	return d.steps[i].dets, d.steps[i].err
}

func (d *scriptedDetector) Close() error { return nil }

// recorder collects presented statuses
type recorder struct {
	mu       sync.Mutex
	statuses []Status
}

func (r *recorder) Present(s Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, s)
}

func (r *recorder) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.statuses)
}

func repeat(s step, n int) []step {
	out := make([]step, n)
	for i := range out {
		out[i] = s
	}
	return out
}

func TestMonitor_ReminderAfterThreshold(t *testing.T) {
	det := &scriptedDetector{steps: repeat(face(320, 240), 1)}
	rec := &recorder{}
	m := New(stillness.DefaultConfig(), &fakeSource{}, det, rec)

	first := m.Step()
	if first.Classification.Kind != stillness.Moving {
		t.Fatalf("first tick: got %v, want moving", first.Classification)
	}

	for i := 1; i <= 15; i++ {
		s := m.Step()
		if s.Classification.Kind != stillness.Still || s.StillCount != i {
			t.Fatalf("tick %d: got %v count %d", i, s.Classification, s.StillCount)
		}
		if s.Reminder {
			t.Fatalf("tick %d: reminder too early", i)
		}
	}

	s := m.Step()
	if !s.Reminder || s.Classification.Kind != stillness.ReminderDue {
		t.Errorf("tick 16: got %v, want reminder", s.Classification)
	}
	if s.Alert != "critical" {
		t.Errorf("Alert = %q, want critical", s.Alert)
	}
	if s.Face == nil || s.Frame == nil {
		t.Error("expected face and frame on a detected tick")
	}

	if rec.len() != 17 {
		t.Errorf("presenter got %d statuses, want 17", rec.len())
	}
	if got := m.Snapshot(); got.Tick != 17 {
		t.Errorf("Snapshot tick = %d, want 17", got.Tick)
	}
}

func TestMonitor_DismissBeforeNextTick(t *testing.T) {
	det := &scriptedDetector{steps: repeat(face(100, 100), 1)}
	rec := &recorder{}
	m := New(stillness.DefaultConfig(), &fakeSource{}, det, rec)

	for i := 0; i < 20; i++ {
		m.Step()
	}
	if !m.Snapshot().Reminder {
		t.Fatal("expected reminder before dismiss")
	}

	m.Dismiss()
	m.Dismiss() // coalesced

	s := m.Step()
	if s.Classification.Kind != stillness.Moving || s.StillCount != 0 {
		t.Errorf("after dismiss: got %v count %d, want moving 0", s.Classification, s.StillCount)
	}

	var dismissed int
	for _, st := range rec.statuses {
		if st.Dismissed {
			dismissed++
			if st.StillCount != 0 || st.Reminder {
				t.Errorf("dismiss status should be cleared, got %+v", st)
			}
		}
	}
	if dismissed != 1 {
		t.Errorf("got %d dismiss statuses, want 1", dismissed)
	}
}

func TestMonitor_CollaboratorErrorsAreUndetected(t *testing.T) {
	tests := []struct {
		name   string
		source *fakeSource
		steps  []step
	}{
		{"capture error", &fakeSource{err: errors.New("camera unplugged")}, []step{face(10, 10)}},
		{"detector error", &fakeSource{}, []step{{err: errors.New("inference failed")}}},
		{"no face", &fakeSource{}, []step{noFace()}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := New(stillness.DefaultConfig(), tc.source, &scriptedDetector{steps: tc.steps})
			m.state = stillness.State{LastPosition: &stillness.Point{X: 10, Y: 10}, StillCount: 9}

			s := m.Step()
			if s.Classification.Kind != stillness.Undetected || s.StillCount != 0 {
				t.Errorf("got %v count %d, want undetected 0", s.Classification, s.StillCount)
			}
			if s.Face != nil {
				t.Errorf("expected no face, got %+v", s.Face)
			}
		})
	}
}

func TestMonitor_NilCollaborators(t *testing.T) {
	m := New(stillness.DefaultConfig(), nil, nil)
	if s := m.Step(); s.Classification.Kind != stillness.Undetected {
		t.Errorf("got %v, want undetected", s.Classification)
	}
}

func TestMonitor_MovementResetsRun(t *testing.T) {
	steps := append(repeat(face(100, 100), 5), face(200, 200), face(203, 200))
	m := New(stillness.DefaultConfig(), &fakeSource{}, &scriptedDetector{steps: steps})

	var got []stillness.Classification
	for range steps {
		got = append(got, m.Step().Classification)
	}

	if got[4].Kind != stillness.Still || got[4].Count != 4 {
		t.Errorf("tick 5: got %v, want still(4)", got[4])
	}
	if got[5].Kind != stillness.Moving {
		t.Errorf("tick 6: got %v, want moving", got[5])
	}
	if got[6].Kind != stillness.Still || got[6].Count != 1 {
		t.Errorf("tick 7: got %v, want still(1)", got[6])
	}
}

func TestMonitor_ReminderEdges(t *testing.T) {
	cfg := stillness.DefaultConfig()
	cfg.StillThreshold = 2
	steps := append(repeat(face(50, 50), 5), noFace())
	m := New(cfg, &fakeSource{}, &scriptedDetector{steps: steps})

	var reminding []bool
	for range steps {
		m.Step()
		reminding = append(reminding, m.reminding)
	}

	want := []bool{false, false, false, true, true, false}
	for i := range want {
		if reminding[i] != want[i] {
			t.Errorf("tick %d: reminding=%v, want %v", i+1, reminding[i], want[i])
		}
	}
}

func TestMonitor_RunTicksAndStops(t *testing.T) {
	cfg := stillness.DefaultConfig()
	cfg.TickInterval = 5 * time.Millisecond

	rec := &recorder{}
	m := New(cfg, &fakeSource{}, &scriptedDetector{steps: repeat(face(1, 1), 1)}, rec)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for rec.len() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}

	if rec.len() < 3 {
		t.Errorf("expected at least 3 ticks, got %d", rec.len())
	}
}

func TestMonitor_SessionIsUnique(t *testing.T) {
	a := New(stillness.DefaultConfig(), nil, nil)
	b := New(stillness.DefaultConfig(), nil, nil)
	if a.Session() == "" || a.Session() == b.Session() {
		t.Errorf("expected distinct sessions, got %q and %q", a.Session(), b.Session())
	}
}

func TestMonitor_RunRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*stillness.Config)
	}{
		{"zero interval", func(c *stillness.Config) { c.TickInterval = 0 }},
		{"negative interval", func(c *stillness.Config) { c.TickInterval = -time.Second }},
		{"zero epsilon", func(c *stillness.Config) { c.MovementEpsilon = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := stillness.DefaultConfig()
			tt.modify(&cfg)

			rec := &recorder{}
			m := New(cfg, &fakeSource{}, &scriptedDetector{}, rec)
			if err := m.Run(context.Background()); err == nil {
				t.Fatal("expected error from Run")
			}
			if rec.len() != 0 {
				t.Errorf("expected no ticks, got %d", rec.len())
			}
		})
	}
}
