// Package tray owns the system tray icon and menu. Menu clicks are
// forwarded through the configured callbacks; the tray never touches
// overlay state directly.
package tray

import (
	"log"
	"sync"

	"github.com/getlantern/systray"

	"crosshair-overlay/src/overlay"
)

// Config wires the tray menu to the rest of the application. Callbacks
// run on tray goroutines and must hand off quickly.
type Config struct {
	Title   string
	Tooltip string

	OnToggle       func()
	OnMode         func(mode overlay.Mode)
	OnSettings     func()
	OnLoadFavorite func(name string)
	// FavoriteNames supplies the current preset names for the submenu.
	FavoriteNames    func() []string
	AutostartEnabled func() bool
	OnAutostart      func(enable bool) error
	OnExit           func()
}

// Tray is the running tray icon.
type Tray struct {
	cfg Config

	mu        sync.Mutex
	ready     bool
	mCross    *systray.MenuItem
	mMeasure  *systray.MenuItem
	mAuto     *systray.MenuItem
	mFavorite *systray.MenuItem
	favPool   []*favoriteItem
	mFavNone  *systray.MenuItem

	pendingMode overlay.Mode
}

// favoriteItem is one reusable submenu slot. systray cannot remove menu
// items, so stale slots are hidden and re-titled on the next refresh.
type favoriteItem struct {
	item *systray.MenuItem
	name string
}

// New creates the tray. Call Run (blocking) afterwards.
func New(cfg Config) *Tray {
	return &Tray{cfg: cfg, pendingMode: overlay.ModeCrosshair}
}

// Run starts the tray loop. Blocks until Destroy or Quit.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Destroy tears the tray down.
func (t *Tray) Destroy() {
	systray.Quit()
}

// SetMode updates the mode checkmarks. Safe to call from any goroutine.
func (t *Tray) SetMode(mode overlay.Mode) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pendingMode = mode
	if !t.ready {
		return
	}
	if mode == overlay.ModeMeasure {
		t.mCross.Uncheck()
		t.mMeasure.Check()
	} else {
		t.mCross.Check()
		t.mMeasure.Uncheck()
	}
}

// RefreshFavorites rebuilds the favorites submenu from FavoriteNames.
func (t *Tray) RefreshFavorites() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.ready {
		return
	}
	t.rebuildFavoritesLocked()
}

func (t *Tray) onReady() {
	systray.SetIcon(getIcon())
	systray.SetTitle(t.cfg.Title)
	systray.SetTooltip(t.cfg.Tooltip)

	mToggle := systray.AddMenuItem("Toggle Crosshair", "Show or hide the overlay")
	systray.AddSeparator()
	t.mCross = systray.AddMenuItemCheckbox("Crosshair Mode", "Follow the pointer", true)
	t.mMeasure = systray.AddMenuItemCheckbox("Measure Mode", "Drag to measure a distance", false)
	systray.AddSeparator()
	mSettings := systray.AddMenuItem("Settings...", "Open the settings panel")
	t.mFavorite = systray.AddMenuItem("Favorites", "Load a saved preset")
	t.mFavNone = t.mFavorite.AddSubMenuItem("(none saved)", "")
	t.mFavNone.Disable()
	systray.AddSeparator()
	t.mAuto = systray.AddMenuItemCheckbox("Start at Login", "Run when you log in", false)
	systray.AddSeparator()
	mQuit := systray.AddMenuItem("Quit", "Exit the application")

	t.mu.Lock()
	t.ready = true
	if t.cfg.AutostartEnabled != nil && t.cfg.AutostartEnabled() {
		t.mAuto.Check()
	}
	t.rebuildFavoritesLocked()
	mode := t.pendingMode
	t.mu.Unlock()
	t.SetMode(mode)

	go func() {
		for {
			select {
			case <-mToggle.ClickedCh:
				if t.cfg.OnToggle != nil {
					t.cfg.OnToggle()
				}
			case <-t.mCross.ClickedCh:
				if t.cfg.OnMode != nil {
					t.cfg.OnMode(overlay.ModeCrosshair)
				}
			case <-t.mMeasure.ClickedCh:
				if t.cfg.OnMode != nil {
					t.cfg.OnMode(overlay.ModeMeasure)
				}
			case <-mSettings.ClickedCh:
				if t.cfg.OnSettings != nil {
					t.cfg.OnSettings()
				}
			case <-t.mAuto.ClickedCh:
				t.handleAutostartClick()
			case <-mQuit.ClickedCh:
				systray.Quit()
			}
		}
	}()
}

func (t *Tray) handleAutostartClick() {
	if t.cfg.OnAutostart == nil {
		return
	}
	enable := !t.mAuto.Checked()
	if err := t.cfg.OnAutostart(enable); err != nil {
		log.Printf("tray: autostart change failed: %v", err)
		return
	}
	if enable {
		t.mAuto.Check()
	} else {
		t.mAuto.Uncheck()
	}
}

func (t *Tray) rebuildFavoritesLocked() {
	var names []string
	if t.cfg.FavoriteNames != nil {
		names = t.cfg.FavoriteNames()
	}

	if len(names) == 0 {
		t.mFavNone.Show()
	} else {
		t.mFavNone.Hide()
	}

	for i, name := range names {
		if i < len(t.favPool) {
			slot := t.favPool[i]
			slot.name = name
			slot.item.SetTitle(name)
			slot.item.Show()
			continue
		}
		slot := &favoriteItem{
			item: t.mFavorite.AddSubMenuItem(name, "Load this preset"),
			name: name,
		}
		t.favPool = append(t.favPool, slot)
		go t.watchFavorite(slot)
	}
	for i := len(names); i < len(t.favPool); i++ {
		t.favPool[i].item.Hide()
	}
}

func (t *Tray) watchFavorite(slot *favoriteItem) {
	for range slot.item.ClickedCh {
		t.mu.Lock()
		name := slot.name
		t.mu.Unlock()
		if t.cfg.OnLoadFavorite != nil {
			t.cfg.OnLoadFavorite(name)
		}
	}
}

func (t *Tray) onExit() {
	if t.cfg.OnExit != nil {
		t.cfg.OnExit()
	}
}
