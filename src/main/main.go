package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"crosshair-overlay/src/autostart"
	"crosshair-overlay/src/backend"
	"crosshair-overlay/src/clipboard"
	"crosshair-overlay/src/config"
	"crosshair-overlay/src/eventloop"
	"crosshair-overlay/src/favorites"
	"crosshair-overlay/src/input"
	"crosshair-overlay/src/logutil"
	"crosshair-overlay/src/overlay"
	"crosshair-overlay/src/pipeline"
	"crosshair-overlay/src/screeninfo"
	"crosshair-overlay/src/settings"
	"crosshair-overlay/src/settingsui"
	"crosshair-overlay/src/tray"
)

// enableDPIAwareness attempts to set per-monitor DPI awareness on Windows
// so virtual-screen metrics and pointer coordinates agree.
func enableDPIAwareness() {
	if runtime.GOOS != "windows" {
		return
	}
	shcore := syscall.NewLazyDLL("Shcore.dll")
	setProcessDpiAwareness := shcore.NewProc("SetProcessDpiAwareness")
	const PROCESS_PER_MONITOR_DPI_AWARE = 2
	if err := setProcessDpiAwareness.Find(); err == nil {
		_, _, _ = setProcessDpiAwareness.Call(uintptr(PROCESS_PER_MONITOR_DPI_AWARE))
		return
	}
	user32 := syscall.NewLazyDLL("user32.dll")
	setProcessDPIAware := user32.NewProc("SetProcessDPIAware")
	if err := setProcessDPIAware.Find(); err == nil {
		_, _, _ = setProcessDPIAware.Call()
	}
}

func main() {
	enableDPIAwareness()

	// The Fyne main loop runs on the main goroutine; keep it on one thread.
	runtime.LockOSThread()

	opts := config.LoadOptions()
	logutil.Setup(opts.EnableFileLogging)

	configPath := config.ConfigPath(opts)
	favoritesPath := config.FavoritesPath(opts)
	cfg := config.LoadSettings(configPath)
	// Write back at startup so newly introduced keys land in the file.
	if err := config.SaveSettings(configPath, cfg); err != nil {
		log.Printf("Failed to write back settings: %v", err)
	}

	if err := clipboard.Init(); err != nil {
		log.Printf("Clipboard unavailable, measurements will not be copied: %v", err)
	}

	rect, err := screeninfo.VirtualBounds()
	if err != nil {
		log.Fatalf("Failed to query displays: %v", err)
	}
	be, err := backend.New(backend.Bounds{
		X: float64(rect.Min.X), Y: float64(rect.Min.Y),
		W: float64(rect.Dx()), H: float64(rect.Dy()),
	})
	if err != nil {
		log.Fatalf("Failed to create overlay window: %v", err)
	}

	log.Printf("Crosshair Overlay initialized")
	log.Printf("Config: %s", configPath)
	log.Printf("Toggle hotkey: %s", opts.Hotkey)

	loop := eventloop.New(be, cfg)
	loop.SetCopyFunc(func(text string) {
		if err := clipboard.Write(text); err != nil {
			log.Printf("Clipboard write failed: %v", err)
		}
	})

	pipe := pipeline.New(pipeline.DefaultDebounce, loop.ApplySettings, func(s settings.Settings) error {
		return config.SaveSettings(configPath, s)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	favs := favorites.Load(favoritesPath)
	panel := settingsui.New(cfg, pipe.Apply, favs)

	trayIcon := tray.New(tray.Config{
		Title:   "Crosshair Overlay",
		Tooltip: "Crosshair Overlay - " + opts.Hotkey + " toggles",
		OnToggle: func() {
			loop.ToggleOverlay()
		},
		OnMode: func(mode overlay.Mode) {
			loop.RequestMode(mode)
		},
		OnSettings: panel.Show,
		OnLoadFavorite: func(name string) {
			if snap, ok := favs.Get(name); ok {
				panel.ApplySnapshot(snap)
			}
		},
		FavoriteNames:    favs.Names,
		AutostartEnabled: autostart.Enabled,
		OnAutostart: func(enable bool) error {
			if enable {
				return autostart.Enable()
			}
			return autostart.Disable()
		},
		OnExit: func() { cancel() },
	})
	favs.OnChange(func() {
		trayIcon.RefreshFavorites()
		panel.RefreshFavorites()
	})
	loop.SetModeListener(trayIcon.SetMode)

	hook := input.New()
	hook.ListenHotkey(opts.Hotkey, loop.ToggleOverlay)
	hook.OnPointerMove(time.Duration(opts.PollIntervalMs)*time.Millisecond, loop.PostPointer)
	hook.Start()

	go trayIcon.Run()
	defer trayIcon.Destroy()

	// Handle SIGINT/SIGTERM
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		<-ch
		cancel()
	}()

	go func() {
		if err := loop.Run(ctx); err != nil && err != context.Canceled {
			log.Printf("event loop stopped: %v", err)
		}
	}()

	// Shut the settings panel down when the rest of the app stops.
	go func() {
		<-ctx.Done()
		panel.Quit()
	}()

	panel.Run()
	cancel()

	// Persist any edit still sitting in the debounce window.
	pipe.Flush()
	hook.Stop()
	be.Close()
}
