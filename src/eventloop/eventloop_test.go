package eventloop

import (
	"context"
	"sync"
	"testing"
	"time"

	"crosshair-overlay/src/backend"
	"crosshair-overlay/src/draw"
	"crosshair-overlay/src/geom"
	"crosshair-overlay/src/overlay"
	"crosshair-overlay/src/settings"
)

// fakeBackend records every call and lets tests feed input events.
type fakeBackend struct {
	mu           sync.Mutex
	frames       [][]draw.Command
	clickThrough []bool
	cursors      []backend.Cursor
	focusCount   int
	captures     int
	releases     int

	events  chan backend.Event
	present chan struct{}
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		events:  make(chan backend.Event, 16),
		present: make(chan struct{}, 64),
	}
}

func (f *fakeBackend) Bounds() backend.Bounds {
	return backend.Bounds{X: 0, Y: 0, W: 800, H: 600}
}

func (f *fakeBackend) Present(frame []draw.Command) {
	f.mu.Lock()
	f.frames = append(f.frames, frame)
	f.mu.Unlock()
	f.present <- struct{}{}
}

func (f *fakeBackend) SetClickThrough(enabled bool) {
	f.mu.Lock()
	f.clickThrough = append(f.clickThrough, enabled)
	f.mu.Unlock()
}

func (f *fakeBackend) SetCursor(c backend.Cursor) {
	f.mu.Lock()
	f.cursors = append(f.cursors, c)
	f.mu.Unlock()
}

func (f *fakeBackend) RequestFocus() {
	f.mu.Lock()
	f.focusCount++
	f.mu.Unlock()
}

func (f *fakeBackend) CapturePointer() {
	f.mu.Lock()
	f.captures++
	f.mu.Unlock()
}

func (f *fakeBackend) ReleasePointer() {
	f.mu.Lock()
	f.releases++
	f.mu.Unlock()
}

func (f *fakeBackend) Events() <-chan backend.Event { return f.events }

func (f *fakeBackend) MeasureText(text string, size float64, bold bool) (float64, float64) {
	return float64(len(text)) * 6, size
}

func (f *fakeBackend) Close() {}

func (f *fakeBackend) waitPresent(t *testing.T) []draw.Command {
	t.Helper()
	select {
	case <-f.present:
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for a presented frame")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.frames[len(f.frames)-1]
}

func startLoop(t *testing.T, f *fakeBackend) (*Loop, context.CancelFunc) {
	t.Helper()
	l := New(f, settings.Defaults())
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = l.Run(ctx) }()
	f.waitPresent(t) // initial frame
	return l, cancel
}

func TestModeSwitchDrivesBackend(t *testing.T) {
	f := newFakeBackend()
	l, cancel := startLoop(t, f)
	defer cancel()

	var gotMode overlay.Mode
	modeSeen := make(chan struct{}, 4)
	l.SetModeListener(func(m overlay.Mode) {
		gotMode = m
		modeSeen <- struct{}{}
	})

	l.RequestMode(overlay.ModeMeasure)
	select {
	case <-modeSeen:
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for mode change")
	}
	f.waitPresent(t)

	if gotMode != overlay.ModeMeasure {
		t.Errorf("Listener saw mode %v, want measure", gotMode)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.clickThrough) == 0 || f.clickThrough[len(f.clickThrough)-1] != false {
		t.Errorf("Expected click-through disabled, got %v", f.clickThrough)
	}
	if f.focusCount != 1 {
		t.Errorf("Expected 1 focus request, got %d", f.focusCount)
	}
	if len(f.cursors) == 0 || f.cursors[len(f.cursors)-1] != backend.CursorCrosshair {
		t.Errorf("Expected crosshair cursor, got %v", f.cursors)
	}
}

func TestMeasurementCopiesToClipboard(t *testing.T) {
	f := newFakeBackend()
	l, cancel := startLoop(t, f)
	defer cancel()

	copied := make(chan string, 1)
	l.SetCopyFunc(func(s string) { copied <- s })

	l.RequestMode(overlay.ModeMeasure)
	f.waitPresent(t)

	f.events <- backend.Event{Kind: backend.EventButtonDown, Pos: geom.Point{X: 0, Y: 0}}
	f.waitPresent(t)
	f.events <- backend.Event{Kind: backend.EventButtonUp, Pos: geom.Point{X: 30, Y: 40}}
	f.waitPresent(t)

	select {
	case got := <-copied:
		if got != "50.0 px (30, -40)" {
			t.Errorf("Copied %q, want %q", got, "50.0 px (30, -40)")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for clipboard copy")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.captures != 1 || f.releases != 1 {
		t.Errorf("Expected 1 capture and 1 release, got %d/%d", f.captures, f.releases)
	}
}

func TestSettingsApplyRerenders(t *testing.T) {
	f := newFakeBackend()
	l, cancel := startLoop(t, f)
	defer cancel()

	l.PostPointer(geom.Point{X: 100, Y: 100})
	f.waitPresent(t)

	cfg := settings.Defaults()
	cfg.CrosshairFullscreen = false
	cfg.CrosshairRadius = 10
	cfg.TickEnabled = false
	cfg.DotEnabled = false
	l.ApplySettings(cfg)
	frame := f.waitPresent(t)

	var lines []draw.Line
	for _, c := range frame {
		if ln, ok := c.(draw.Line); ok {
			lines = append(lines, ln)
		}
	}
	if len(lines) != 2 {
		t.Fatalf("Expected 2 crosshair lines, got %d", len(lines))
	}
	if lines[0].X1 != 90 || lines[0].X2 != 110 {
		t.Errorf("Horizontal extent [%v,%v], want radius 10 around x=100", lines[0].X1, lines[0].X2)
	}
}

func TestApplySettingsNeverBlocksWhenLoopStopped(t *testing.T) {
	f := newFakeBackend()
	l := New(f, settings.Defaults())
	// No Run goroutine: nothing drains the channel, as after shutdown.

	done := make(chan struct{})
	go func() {
		for i := 0; i < 50; i++ {
			cfg := settings.Defaults()
			cfg.CrosshairRadius = float64(i)
			l.ApplySettings(cfg)
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("ApplySettings blocked with nobody draining the loop")
	}

	// The newest snapshot must still be queued; older ones may be gone.
	var last settings.Settings
	for {
		select {
		case s := <-l.settingsCh:
			last = s
			continue
		default:
		}
		break
	}
	if last.CrosshairRadius != 49 {
		t.Errorf("Last queued radius %v, want 49", last.CrosshairRadius)
	}
}

func TestToggleClearsFrame(t *testing.T) {
	f := newFakeBackend()
	l, cancel := startLoop(t, f)
	defer cancel()

	l.ToggleOverlay()
	frame := f.waitPresent(t)
	if len(frame) != 0 {
		t.Errorf("Expected empty frame after toggling off, got %d commands", len(frame))
	}

	l.ToggleOverlay()
	frame = f.waitPresent(t)
	if len(frame) == 0 {
		t.Error("Expected crosshair back after toggling on")
	}
}

func TestEscapeReturnsToCrosshair(t *testing.T) {
	f := newFakeBackend()
	l, cancel := startLoop(t, f)
	defer cancel()

	modes := make(chan overlay.Mode, 4)
	l.SetModeListener(func(m overlay.Mode) { modes <- m })

	l.RequestMode(overlay.ModeMeasure)
	f.waitPresent(t)
	f.events <- backend.Event{Kind: backend.EventEscape}
	f.waitPresent(t)

	var last overlay.Mode
	for {
		select {
		case m := <-modes:
			last = m
			continue
		case <-time.After(100 * time.Millisecond):
		}
		break
	}
	if last != overlay.ModeCrosshair {
		t.Errorf("Mode %v after escape, want crosshair", last)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.clickThrough) == 0 || f.clickThrough[len(f.clickThrough)-1] != true {
		t.Errorf("Expected click-through restored, got %v", f.clickThrough)
	}
}
