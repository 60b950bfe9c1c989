// Package pipeline propagates settings edits: every change goes to the
// overlay immediately for the next frame, while disk persistence is
// debounced so slider drags don't hammer the config file.
package pipeline

import (
	"log"
	"sync"
	"time"

	"crosshair-overlay/src/settings"
)

// DefaultDebounce is the quiet period before an edited settings record is
// written to disk.
const DefaultDebounce = 500 * time.Millisecond

// Pipeline owns the debounce timer. Apply may be called from the settings
// UI goroutine; the overlay push function must itself marshal onto the
// overlay's event loop (it posts to a channel), so no overlay state is
// touched from here.
type Pipeline struct {
	mu      sync.Mutex
	timer   *time.Timer
	pending bool
	last    settings.Settings

	debounce time.Duration
	push     func(settings.Settings)
	persist  func(settings.Settings) error
}

// New creates a pipeline. push forwards a settings snapshot to the
// overlay event loop; persist writes it to disk. debounce <= 0 selects
// DefaultDebounce.
func New(debounce time.Duration, push func(settings.Settings), persist func(settings.Settings) error) *Pipeline {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Pipeline{
		debounce: debounce,
		push:     push,
		persist:  persist,
	}
}

// Apply pushes the updated record to the overlay now and (re)starts the
// debounce timer for persistence. Rapid successive calls keep deferring
// the write; only the final state lands on disk.
func (p *Pipeline) Apply(s settings.Settings) {
	snap := s.Clone()
	p.push(snap)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.last = snap
	p.pending = true
	if p.timer != nil {
		p.timer.Stop()
	}
	p.timer = time.AfterFunc(p.debounce, p.fire)
}

func (p *Pipeline) fire() {
	p.mu.Lock()
	if !p.pending {
		p.mu.Unlock()
		return
	}
	p.pending = false
	snap := p.last
	p.mu.Unlock()

	if err := p.persist(snap); err != nil {
		log.Printf("pipeline: persist failed: %v", err)
	}
}

// Flush cancels any pending timer and, if a save was outstanding,
// persists synchronously. Must be called before the owning goroutine
// tears down, so the timer callback cannot fire into a dead process.
func (p *Pipeline) Flush() {
	p.mu.Lock()
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	wasPending := p.pending
	p.pending = false
	snap := p.last
	p.mu.Unlock()

	if !wasPending {
		return
	}
	if err := p.persist(snap); err != nil {
		log.Printf("pipeline: flush persist failed: %v", err)
	}
}
