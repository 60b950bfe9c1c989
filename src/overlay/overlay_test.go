package overlay

import (
	"math"
	"testing"

	"crosshair-overlay/src/geom"
)

func testBounds() Bounds {
	return Bounds{X: 0, Y: 0, W: 1920, H: 1080}
}

func kinds(effects []Effect) []EffectKind {
	out := make([]EffectKind, len(effects))
	for i, e := range effects {
		out[i] = e.Kind
	}
	return out
}

func countKind(effects []Effect, kind EffectKind) int {
	n := 0
	for _, e := range effects {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

func TestSetModeEnterMeasure(t *testing.T) {
	m := New(testBounds())
	effects := m.SetMode(ModeMeasure)

	for _, want := range []EffectKind{
		EffectDisableClickThrough,
		EffectRequestFocus,
		EffectSetCrosshairCursor,
		EffectModeChanged,
		EffectRender,
	} {
		if countKind(effects, want) != 1 {
			t.Errorf("Expected exactly one %v effect, got %v", want, kinds(effects))
		}
	}
	if m.Mode() != ModeMeasure {
		t.Errorf("Mode=%v, want measure", m.Mode())
	}
}

func TestSetModeSameModeIsNoOp(t *testing.T) {
	m := New(testBounds())
	m.SetMode(ModeMeasure)
	if effects := m.SetMode(ModeMeasure); effects != nil {
		t.Errorf("Expected no effects for repeated SetMode, got %v", kinds(effects))
	}
	if effects := m.SetMode(ModeCrosshair); effects == nil {
		t.Error("Expected effects when actually changing mode")
	}
	if effects := m.SetMode(ModeCrosshair); effects != nil {
		t.Errorf("Expected no effects for repeated SetMode, got %v", kinds(effects))
	}
}

func TestSetModeLeaveMeasureClearsEndpoints(t *testing.T) {
	m := New(testBounds())
	m.SetMode(ModeMeasure)
	m.ButtonDown(geom.Point{X: 10, Y: 10})
	m.PointerDrag(geom.Point{X: 50, Y: 50}, false)

	effects := m.SetMode(ModeCrosshair)
	if countKind(effects, EffectReleasePointer) != 1 {
		t.Errorf("Expected capture released when leaving measure mid-drag, got %v", kinds(effects))
	}
	if countKind(effects, EffectEnableClickThrough) != 1 {
		t.Errorf("Expected click-through re-enabled, got %v", kinds(effects))
	}

	s := m.State()
	if s.Start != nil || s.End != nil || s.Measuring {
		t.Errorf("Expected measurement state cleared, got %+v", s)
	}
}

func TestMeasurementDragLifecycle(t *testing.T) {
	m := New(testBounds())
	m.SetMode(ModeMeasure)

	down := m.ButtonDown(geom.Point{X: 100, Y: 100})
	if countKind(down, EffectCapturePointer) != 1 {
		t.Errorf("Expected pointer capture on button down, got %v", kinds(down))
	}
	s := m.State()
	if s.Start == nil || s.End == nil || *s.Start != *s.End || !s.Measuring {
		t.Fatalf("Bad drag start state: %+v", s)
	}

	m.PointerDrag(geom.Point{X: 200, Y: 150}, false)
	if got := *m.State().End; got != (geom.Point{X: 200, Y: 150}) {
		t.Errorf("End=%+v after drag, want (200,150)", got)
	}

	up := m.ButtonUp(geom.Point{X: 200, Y: 100}, false)
	if countKind(up, EffectReleasePointer) != 1 {
		t.Errorf("Expected exactly one capture release on button up, got %v", kinds(up))
	}
	if m.State().Measuring {
		t.Error("Expected measuring cleared after button up")
	}
}

func TestButtonUpCopiesMeasurementLabel(t *testing.T) {
	m := New(testBounds())
	m.SetMode(ModeMeasure)
	m.ButtonDown(geom.Point{X: 0, Y: 0})
	effects := m.ButtonUp(geom.Point{X: 30, Y: 40}, false)

	var copied string
	for _, e := range effects {
		if e.Kind == EffectCopyText {
			copied = e.Text
		}
	}
	// dy is negated in the label: screen +40 down reads as -40.
	if copied != "50.0 px (30, -40)" {
		t.Errorf("Copied label %q, want %q", copied, "50.0 px (30, -40)")
	}
}

func TestDragSnapToAngle(t *testing.T) {
	m := New(testBounds())
	m.SetMode(ModeMeasure)
	m.ButtonDown(geom.Point{X: 0, Y: 0})

	// 4° off horizontal snaps to 0° with the modifier held.
	m.PointerDrag(geom.Point{X: 100, Y: 7}, true)
	end := *m.State().End
	if math.Abs(end.Y) > 1e-9 {
		t.Errorf("Expected snapped endpoint on the horizontal, got %+v", end)
	}
	wantLen := math.Hypot(100, 7)
	if math.Abs(end.X-wantLen) > 1e-9 {
		t.Errorf("Expected snapped distance %v preserved, got %v", wantLen, end.X)
	}

	// Without the modifier the raw position is used.
	m.PointerDrag(geom.Point{X: 100, Y: 7}, false)
	if got := *m.State().End; got != (geom.Point{X: 100, Y: 7}) {
		t.Errorf("End=%+v without snap, want raw (100,7)", got)
	}
}

func TestEscapeLeavesMeasureMode(t *testing.T) {
	m := New(testBounds())

	if effects := m.Escape(); effects != nil {
		t.Errorf("Escape in crosshair mode should be a no-op, got %v", kinds(effects))
	}

	m.SetMode(ModeMeasure)
	m.ButtonDown(geom.Point{X: 5, Y: 5})
	effects := m.Escape()
	if m.Mode() != ModeCrosshair {
		t.Errorf("Mode=%v after escape, want crosshair", m.Mode())
	}
	if countKind(effects, EffectReleasePointer) != 1 {
		t.Errorf("Expected capture release on escape mid-drag, got %v", kinds(effects))
	}
}

func TestPointerTick(t *testing.T) {
	m := New(testBounds())

	effects := m.PointerTick(geom.Point{X: 10, Y: 20})
	if countKind(effects, EffectRender) != 1 {
		t.Errorf("Expected render on pointer move, got %v", kinds(effects))
	}

	if effects := m.PointerTick(geom.Point{X: 10, Y: 20}); effects != nil {
		t.Errorf("Expected no effects for unchanged position, got %v", kinds(effects))
	}

	m.SetMode(ModeMeasure)
	if effects := m.PointerTick(geom.Point{X: 99, Y: 99}); effects != nil {
		t.Errorf("Expected pointer poll ignored in measure mode, got %v", kinds(effects))
	}
}

func TestButtonEventsIgnoredInCrosshairMode(t *testing.T) {
	m := New(testBounds())
	if effects := m.ButtonDown(geom.Point{X: 1, Y: 1}); effects != nil {
		t.Errorf("ButtonDown in crosshair mode: got %v", kinds(effects))
	}
	if effects := m.ButtonUp(geom.Point{X: 1, Y: 1}, false); effects != nil {
		t.Errorf("ButtonUp in crosshair mode: got %v", kinds(effects))
	}
}

func TestToggleActive(t *testing.T) {
	m := New(testBounds())
	m.ToggleActive()
	if m.Active() {
		t.Error("Expected inactive after toggle")
	}
	m.ToggleActive()
	if !m.Active() {
		t.Error("Expected active after second toggle")
	}
}
