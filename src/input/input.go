// Package input owns the global input hook. gohook's event pump can be
// started once per process, so pointer tracking and the toggle hotkey
// both hang off the single Hook here.
package input

import (
	"log"
	"strings"
	"sync"
	"time"

	gohook "github.com/robotn/gohook"

	"crosshair-overlay/src/geom"
)

// Hook fans the global event stream out to registered consumers.
// Register everything before calling Start.
type Hook struct {
	mu       sync.Mutex
	hotkeys  []*hotkeyBinding
	moveCb   func(geom.Point)
	moveMin  time.Duration
	lastMove time.Time
	started  bool
}

type hotkeyBinding struct {
	combo    string
	keys     []*keyState
	callback func()
}

type keyState struct {
	name     string
	rawcodes []uint16
	pressed  bool
}

func New() *Hook {
	return &Hook{}
}

// ListenHotkey registers a combination like "Ctrl+Alt+X". The callback
// fires on the hook goroutine; it must hand off quickly.
func (h *Hook) ListenHotkey(combo string, callback func()) {
	if combo == "" {
		return
	}
	names := parseHotkey(combo)
	binding := &hotkeyBinding{combo: combo, callback: callback}
	for _, name := range names {
		rawcodes := keyNameToRawcodes(name)
		if len(rawcodes) == 0 {
			log.Printf("input: cannot map key %q, hotkey %q may not work", name, combo)
			continue
		}
		binding.keys = append(binding.keys, &keyState{name: name, rawcodes: rawcodes})
	}
	if len(binding.keys) == 0 {
		log.Printf("input: no valid keys in hotkey %q", combo)
		return
	}
	h.mu.Lock()
	h.hotkeys = append(h.hotkeys, binding)
	h.mu.Unlock()
	log.Printf("input: hotkey registered: %s", combo)
}

// OnPointerMove registers the pointer callback. Moves arriving faster
// than minInterval are dropped; the overlay only needs poll-rate
// positions.
func (h *Hook) OnPointerMove(minInterval time.Duration, callback func(geom.Point)) {
	h.mu.Lock()
	h.moveCb = callback
	h.moveMin = minInterval
	h.mu.Unlock()
}

// Start launches the event pump on its own goroutine.
func (h *Hook) Start() {
	h.mu.Lock()
	if h.started {
		h.mu.Unlock()
		return
	}
	h.started = true
	h.mu.Unlock()

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("input: panic in hook goroutine: %v", r)
			}
		}()
		evChan := gohook.Start()
		if evChan == nil {
			log.Printf("input: gohook.Start() returned nil channel")
			return
		}
		for ev := range evChan {
			h.dispatch(ev)
		}
		log.Printf("input: event channel closed")
	}()
}

// Stop shuts down the event pump.
func (h *Hook) Stop() {
	gohook.End()
}

func (h *Hook) dispatch(ev gohook.Event) {
	switch ev.Kind {
	case gohook.MouseMove, gohook.MouseDrag:
		h.handleMove(float64(ev.X), float64(ev.Y))
	case gohook.KeyDown:
		h.handleKeyDown(ev.Rawcode)
	case gohook.KeyUp:
		h.handleKeyUp(ev.Rawcode)
	}
}

func (h *Hook) handleMove(x, y float64) {
	h.mu.Lock()
	cb := h.moveCb
	if cb == nil {
		h.mu.Unlock()
		return
	}
	now := time.Now()
	if now.Sub(h.lastMove) < h.moveMin {
		h.mu.Unlock()
		return
	}
	h.lastMove = now
	h.mu.Unlock()
	cb(geom.Point{X: x, Y: y})
}

func (h *Hook) handleKeyDown(rawcode uint16) {
	var fired []func()
	h.mu.Lock()
	for _, binding := range h.hotkeys {
		matched := false
		allPressed := true
		for _, ks := range binding.keys {
			for _, rc := range ks.rawcodes {
				if rawcode == rc {
					ks.pressed = true
					matched = true
					break
				}
			}
			if !ks.pressed {
				allPressed = false
			}
		}
		if matched && allPressed {
			log.Printf("input: hotkey combination detected: %s", binding.combo)
			for _, ks := range binding.keys {
				ks.pressed = false
			}
			fired = append(fired, binding.callback)
		}
	}
	h.mu.Unlock()
	for _, cb := range fired {
		if cb != nil {
			cb()
		}
	}
}

func (h *Hook) handleKeyUp(rawcode uint16) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, binding := range h.hotkeys {
		for _, ks := range binding.keys {
			for _, rc := range ks.rawcodes {
				if rawcode == rc {
					ks.pressed = false
					break
				}
			}
		}
	}
}

// parseHotkey converts a combination like "Ctrl+Alt+X" to normalized
// key names.
func parseHotkey(combo string) []string {
	parts := strings.Split(strings.ToLower(combo), "+")
	var keys []string
	for _, part := range parts {
		part = strings.TrimSpace(part)
		switch part {
		case "":
		case "win", "cmd", "super":
			keys = append(keys, "cmd")
		default:
			keys = append(keys, part)
		}
	}
	return keys
}

// rawcodeTable maps key names to Windows virtual key codes. Modifiers
// list both their left and right variants.
var rawcodeTable = map[string][]uint16{
	"ctrl":  {162, 163},
	"alt":   {164, 165},
	"shift": {160, 161},
	"cmd":   {91, 92},

	"space":     {32},
	"enter":     {13},
	"return":    {13},
	"esc":       {27},
	"escape":    {27},
	"tab":       {9},
	"backspace": {8},
	"delete":    {46},
	"del":       {46},
	"insert":    {45},
	"ins":       {45},
	"home":      {36},
	"end":       {35},
	"pageup":    {33},
	"pgup":      {33},
	"pagedown":  {34},
	"pgdn":      {34},
	"left":      {37},
	"up":        {38},
	"right":     {39},
	"down":      {40},
}

// keyNameToRawcodes maps a key name to its virtual key codes.
func keyNameToRawcodes(keyName string) []uint16 {
	keyName = strings.ToLower(strings.TrimSpace(keyName))
	if codes, ok := rawcodeTable[keyName]; ok {
		return codes
	}
	if len(keyName) == 1 {
		c := keyName[0]
		if c >= 'a' && c <= 'z' {
			return []uint16{uint16(c - 'a' + 'A')}
		}
		if c >= '0' && c <= '9' {
			return []uint16{uint16(c)}
		}
	}
	// F1..F24 are VK 112..135.
	if strings.HasPrefix(keyName, "f") {
		n := 0
		for _, r := range keyName[1:] {
			if r < '0' || r > '9' {
				n = 0
				break
			}
			n = n*10 + int(r-'0')
		}
		if n >= 1 && n <= 24 {
			return []uint16{uint16(111 + n)}
		}
	}
	log.Printf("input: unknown key name %q", keyName)
	return nil
}
