// Package overlay holds the overlay state machine: pointer tracking, the
// crosshair/measure mode switch, and per-frame rendering to draw
// commands. It is free of windowing dependencies; transitions return the
// side effects the event loop must execute against the backend, instead
// of calling into UI code directly.
package overlay

import (
	"fmt"

	"crosshair-overlay/src/geom"
)

// Mode selects what the overlay draws and how it treats input.
type Mode int

const (
	// ModeCrosshair follows the pointer and keeps the window
	// click-through.
	ModeCrosshair Mode = iota
	// ModeMeasure intercepts clicks so the user can drag a ruler.
	ModeMeasure
)

func (m Mode) String() string {
	switch m {
	case ModeCrosshair:
		return "crosshair"
	case ModeMeasure:
		return "measure"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// EffectKind enumerates the backend side effects a transition can demand.
type EffectKind int

const (
	EffectRender EffectKind = iota
	EffectEnableClickThrough
	EffectDisableClickThrough
	EffectRequestFocus
	EffectSetCrosshairCursor
	EffectSetDefaultCursor
	EffectCapturePointer
	EffectReleasePointer
	EffectModeChanged
	EffectCopyText
)

// Effect is one side effect. Text is set for EffectCopyText only.
type Effect struct {
	Kind EffectKind
	Text string
}

// Bounds is the virtual-screen rectangle the overlay covers.
type Bounds struct {
	X, Y, W, H float64
}

// State is the mutable overlay state. Single writer: the event loop
// goroutine.
type State struct {
	Pointer   geom.Point
	Active    bool
	Mode      Mode
	Start     *geom.Point
	End       *geom.Point
	Measuring bool
}

// Machine owns the overlay state and mediates every mutation.
type Machine struct {
	state  State
	bounds Bounds
}

// New creates a machine covering the given virtual-screen bounds, active,
// in crosshair mode, with the pointer parked at the center.
func New(bounds Bounds) *Machine {
	return &Machine{
		bounds: bounds,
		state: State{
			Pointer: geom.Point{X: bounds.X + bounds.W/2, Y: bounds.Y + bounds.H/2},
			Active:  true,
			Mode:    ModeCrosshair,
		},
	}
}

// State returns a copy of the current state. Endpoint pointers are
// duplicated so callers cannot mutate machine internals.
func (m *Machine) State() State {
	s := m.state
	if s.Start != nil {
		p := *s.Start
		s.Start = &p
	}
	if s.End != nil {
		p := *s.End
		s.End = &p
	}
	return s
}

// Mode returns the current mode.
func (m *Machine) Mode() Mode { return m.state.Mode }

// Active reports whether the overlay is drawn at all.
func (m *Machine) Active() bool { return m.state.Active }

// SetMode switches between crosshair and measure mode. Re-entering the
// current mode is a strict no-op: no focus request, no state reset, no
// notification.
func (m *Machine) SetMode(mode Mode) []Effect {
	if m.state.Mode == mode {
		return nil
	}
	var effects []Effect
	if m.state.Measuring {
		// Leaving measure mid-drag: the capture taken on button-down
		// must be released on this exit path too.
		effects = append(effects, Effect{Kind: EffectReleasePointer})
	}
	m.state.Mode = mode
	m.state.Start = nil
	m.state.End = nil
	m.state.Measuring = false
	if mode == ModeMeasure {
		effects = append(effects,
			Effect{Kind: EffectDisableClickThrough},
			Effect{Kind: EffectRequestFocus},
			Effect{Kind: EffectSetCrosshairCursor},
		)
	} else {
		effects = append(effects,
			Effect{Kind: EffectEnableClickThrough},
			Effect{Kind: EffectSetDefaultCursor},
		)
	}
	return append(effects,
		Effect{Kind: EffectModeChanged},
		Effect{Kind: EffectRender},
	)
}

// ToggleActive flips overlay visibility.
func (m *Machine) ToggleActive() []Effect {
	m.state.Active = !m.state.Active
	return []Effect{{Kind: EffectRender}}
}

// PointerTick records a polled pointer position. Only meaningful in
// crosshair mode; measure mode tracks the pointer through drag events.
func (m *Machine) PointerTick(p geom.Point) []Effect {
	if m.state.Mode != ModeCrosshair {
		return nil
	}
	if p == m.state.Pointer {
		return nil
	}
	m.state.Pointer = p
	return []Effect{{Kind: EffectRender}}
}

// ButtonDown starts a measurement drag at p.
func (m *Machine) ButtonDown(p geom.Point) []Effect {
	if m.state.Mode != ModeMeasure {
		return nil
	}
	start := p
	end := p
	m.state.Start = &start
	m.state.End = &end
	m.state.Measuring = true
	return []Effect{
		{Kind: EffectCapturePointer},
		{Kind: EffectRender},
	}
}

// PointerDrag moves the free endpoint during a drag. With snap set, the
// endpoint snaps to 15° increments around the anchor.
func (m *Machine) PointerDrag(p geom.Point, snap bool) []Effect {
	if m.state.Mode != ModeMeasure || !m.state.Measuring {
		return nil
	}
	end := m.snapped(p, snap)
	m.state.End = &end
	return []Effect{{Kind: EffectRender}}
}

// ButtonUp finalizes the drag. The finished measurement label is offered
// to the clipboard through EffectCopyText.
func (m *Machine) ButtonUp(p geom.Point, snap bool) []Effect {
	if m.state.Mode != ModeMeasure || !m.state.Measuring {
		return nil
	}
	end := m.snapped(p, snap)
	m.state.End = &end
	m.state.Measuring = false
	effects := []Effect{{Kind: EffectReleasePointer}}
	if label := m.measureLabel(); label != "" {
		effects = append(effects, Effect{Kind: EffectCopyText, Text: label})
	}
	return append(effects, Effect{Kind: EffectRender})
}

// Escape leaves measure mode regardless of drag state.
func (m *Machine) Escape() []Effect {
	if m.state.Mode != ModeMeasure {
		return nil
	}
	return m.SetMode(ModeCrosshair)
}

func (m *Machine) snapped(p geom.Point, snap bool) geom.Point {
	if snap && m.state.Start != nil {
		return geom.SnapAngle(*m.state.Start, p, snapStepDegrees)
	}
	return p
}

// snapStepDegrees is the angle increment used while the snap modifier is
// held during a measurement drag.
const snapStepDegrees = 15

// measureLabel formats the distance label for the current measurement.
// The vertical delta is negated so the label reads up-positive, matching
// ruler conventions rather than screen coordinates.
func (m *Machine) measureLabel() string {
	if m.state.Start == nil || m.state.End == nil {
		return ""
	}
	dx := m.state.End.X - m.state.Start.X
	dy := m.state.End.Y - m.state.Start.Y
	dist := geom.Distance(*m.state.Start, *m.state.End)
	return fmt.Sprintf("%.1f px (%d, %d)", dist, int(dx), int(-dy))
}
