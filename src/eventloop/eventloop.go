// Package eventloop runs the single goroutine that owns the overlay
// state machine. Every input source posts into the loop through a
// channel; the loop applies transitions and executes the resulting
// effects against the window backend.
package eventloop

import (
	"context"
	"log"

	"crosshair-overlay/src/backend"
	"crosshair-overlay/src/geom"
	"crosshair-overlay/src/overlay"
	"crosshair-overlay/src/settings"
)

// Loop is the single-threaded coordinator. All overlay state mutations
// happen on the Run goroutine.
type Loop struct {
	machine *overlay.Machine
	backend backend.Backend
	cfg     settings.Settings

	settingsCh chan settings.Settings
	modeCh     chan overlay.Mode
	toggleCh   chan struct{}
	pointerCh  chan geom.Point

	onMode   func(overlay.Mode)
	copyText func(string)
}

// New creates a loop driving the given backend, starting from the given
// settings snapshot.
func New(b backend.Backend, cfg settings.Settings) *Loop {
	bb := b.Bounds()
	return &Loop{
		machine: overlay.New(overlay.Bounds{X: bb.X, Y: bb.Y, W: bb.W, H: bb.H}),
		backend: b,
		cfg:     cfg.Clone(),

		settingsCh: make(chan settings.Settings, 16),
		modeCh:     make(chan overlay.Mode, 4),
		toggleCh:   make(chan struct{}, 4),
		pointerCh:  make(chan geom.Point, 1),
	}
}

// SetModeListener registers a callback invoked on the loop goroutine
// whenever the overlay mode changes. Used to keep menu checkmarks in
// step; the callback must not post back into the loop synchronously.
func (l *Loop) SetModeListener(fn func(overlay.Mode)) { l.onMode = fn }

// SetCopyFunc registers the clipboard sink for finished measurements.
func (l *Loop) SetCopyFunc(fn func(string)) { l.copyText = fn }

// ApplySettings posts a settings snapshot to the loop. The next frame
// renders with it. Latest snapshot wins; if the loop is not draining,
// older queued snapshots are discarded instead of blocking the caller.
func (l *Loop) ApplySettings(s settings.Settings) {
	for {
		select {
		case l.settingsCh <- s:
			return
		default:
			select {
			case <-l.settingsCh:
			default:
			}
		}
	}
}

// RequestMode posts a mode switch.
func (l *Loop) RequestMode(mode overlay.Mode) {
	select {
	case l.modeCh <- mode:
	default:
		log.Printf("eventloop: mode request dropped")
	}
}

// ToggleOverlay posts a visibility toggle.
func (l *Loop) ToggleOverlay() {
	select {
	case l.toggleCh <- struct{}{}:
	default:
	}
}

// PostPointer posts a polled pointer position. Latest position wins;
// stale ticks are dropped rather than queued.
func (l *Loop) PostPointer(p geom.Point) {
	for {
		select {
		case l.pointerCh <- p:
			return
		default:
			select {
			case <-l.pointerCh:
			default:
			}
		}
	}
}

// Run processes events until ctx is cancelled. It blocks; callers run
// it on a dedicated goroutine.
func (l *Loop) Run(ctx context.Context) error {
	// Initial frame so the crosshair appears before the first pointer
	// tick arrives.
	l.present()

	for {
		select {
		case <-ctx.Done():
			l.backend.Present(nil)
			return ctx.Err()

		case p := <-l.pointerCh:
			l.apply(l.machine.PointerTick(p))

		case ev, ok := <-l.backend.Events():
			if !ok {
				return nil
			}
			l.handleInput(ev)

		case s := <-l.settingsCh:
			l.cfg = s
			l.present()

		case mode := <-l.modeCh:
			l.apply(l.machine.SetMode(mode))

		case <-l.toggleCh:
			l.apply(l.machine.ToggleActive())
		}
	}
}

func (l *Loop) handleInput(ev backend.Event) {
	switch ev.Kind {
	case backend.EventButtonDown:
		l.apply(l.machine.ButtonDown(ev.Pos))
	case backend.EventPointerMove:
		l.apply(l.machine.PointerDrag(ev.Pos, ev.Snap))
	case backend.EventButtonUp:
		l.apply(l.machine.ButtonUp(ev.Pos, ev.Snap))
	case backend.EventEscape:
		l.apply(l.machine.Escape())
	}
}

func (l *Loop) apply(effects []overlay.Effect) {
	for _, e := range effects {
		switch e.Kind {
		case overlay.EffectRender:
			l.present()
		case overlay.EffectEnableClickThrough:
			l.backend.SetClickThrough(true)
		case overlay.EffectDisableClickThrough:
			l.backend.SetClickThrough(false)
		case overlay.EffectRequestFocus:
			l.backend.RequestFocus()
		case overlay.EffectSetCrosshairCursor:
			l.backend.SetCursor(backend.CursorCrosshair)
		case overlay.EffectSetDefaultCursor:
			l.backend.SetCursor(backend.CursorDefault)
		case overlay.EffectCapturePointer:
			l.backend.CapturePointer()
		case overlay.EffectReleasePointer:
			l.backend.ReleasePointer()
		case overlay.EffectModeChanged:
			log.Printf("eventloop: mode is now %v", l.machine.Mode())
			if l.onMode != nil {
				l.onMode(l.machine.Mode())
			}
		case overlay.EffectCopyText:
			if l.copyText != nil {
				l.copyText(e.Text)
			}
		}
	}
}

func (l *Loop) present() {
	l.backend.Present(l.machine.Render(&l.cfg, l.backend))
}
