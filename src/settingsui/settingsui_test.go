package settingsui

import (
	"math"
	"testing"

	"crosshair-overlay/src/settings"
)

func TestColorRoundTrip(t *testing.T) {
	rgb := [3]float64{0.9, 0.3, 0.1}
	got := fromColor(toColor(rgb))
	for i := range rgb {
		if math.Abs(got[i]-rgb[i]) > 1.0/255 {
			t.Errorf("Channel %d: %v, want %v within 1/255", i, got[i], rgb[i])
		}
	}
}

func TestColorClampsOutOfRange(t *testing.T) {
	c := toColor([3]float64{1.5, -0.2, 0.5})
	r, g, _, _ := c.RGBA()
	if r != 0xFFFF {
		t.Errorf("Over-range red %v, want full", r)
	}
	if g != 0 {
		t.Errorf("Under-range green %v, want zero", g)
	}
}

func TestChangedClampsAndPushes(t *testing.T) {
	var pushed []settings.Settings
	p := &Panel{
		current: settings.Defaults(),
		apply:   func(s settings.Settings) { pushed = append(pushed, s) },
	}

	p.changed(func(s *settings.Settings) { s.LineOpacity = 3.0 })
	if len(pushed) != 1 {
		t.Fatalf("Expected 1 push, got %d", len(pushed))
	}
	if pushed[0].LineOpacity != 1.0 {
		t.Errorf("Pushed LineOpacity=%v, want clamped 1.0", pushed[0].LineOpacity)
	}
}

func TestChangedSuppressedDuringRebuild(t *testing.T) {
	pushes := 0
	p := &Panel{
		current: settings.Defaults(),
		apply:   func(settings.Settings) { pushes++ },
	}
	p.rebuilding = true
	p.changed(func(s *settings.Settings) { s.LineWidth = 5 })
	if pushes != 0 {
		t.Errorf("Expected no push while rebuilding, got %d", pushes)
	}
	if p.current.LineWidth == 5 {
		t.Error("Expected state untouched while rebuilding")
	}
}
