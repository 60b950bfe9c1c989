// Package backend abstracts the overlay window: presenting frames,
// click-through toggling, cursor shape, pointer capture, and the input
// events the window receives while interactive. The event loop drives a
// Backend; platform files provide the implementation.
package backend

import (
	"crosshair-overlay/src/draw"
	"crosshair-overlay/src/geom"
)

// Cursor selects the pointer shape over the overlay window.
type Cursor int

const (
	CursorDefault Cursor = iota
	CursorCrosshair
)

// EventKind tags input events originating from the overlay window.
type EventKind int

const (
	// EventButtonDown and EventButtonUp are left-button transitions.
	EventButtonDown EventKind = iota
	EventButtonUp
	// EventPointerMove is reported only while the window is interactive
	// (measure mode); click-through frames never see pointer input.
	EventPointerMove
	// EventEscape is the escape key going down in the overlay window.
	EventEscape
)

// Event is one input event. Pos is in virtual-screen coordinates. Snap
// reports whether the angle-snap modifier was held when the event fired.
type Event struct {
	Kind EventKind
	Pos  geom.Point
	Snap bool
}

// Bounds is the virtual-screen rectangle the overlay window covers.
type Bounds struct {
	X, Y, W, H float64
}

// Backend is the overlay window surface. Present and the setters may be
// called from the event loop goroutine only; implementations marshal
// onto their own UI thread internally.
type Backend interface {
	// Bounds reports the virtual-screen rectangle the window covers.
	Bounds() Bounds

	// Present replaces the displayed frame. An empty frame clears the
	// overlay.
	Present(frame []draw.Command)

	// SetClickThrough controls whether pointer input passes through the
	// window to whatever is underneath.
	SetClickThrough(enabled bool)

	SetCursor(c Cursor)
	RequestFocus()

	// CapturePointer routes all pointer input to the window until
	// ReleasePointer, so drags survive leaving the window area.
	CapturePointer()
	ReleasePointer()

	// Events delivers input received while the window is interactive.
	// The channel closes when the backend shuts down.
	Events() <-chan Event

	// MeasureText reports the rendered extent of a label, used for
	// centering text before the frame is built.
	MeasureText(text string, size float64, bold bool) (w, h float64)

	Close()
}
