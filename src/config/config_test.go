package config

import (
	"os"
	"path/filepath"
	"testing"

	"crosshair-overlay/src/settings"
)

func TestLoadOptions(t *testing.T) {
	os.Setenv("TOGGLE_HOTKEY", "Ctrl+Shift+C")
	os.Setenv("ENABLE_FILE_LOGGING", "true")
	os.Setenv("POLL_INTERVAL_MS", "25")
	defer func() {
		os.Unsetenv("TOGGLE_HOTKEY")
		os.Unsetenv("ENABLE_FILE_LOGGING")
		os.Unsetenv("POLL_INTERVAL_MS")
	}()

	opts := LoadOptions()
	if opts.Hotkey != "Ctrl+Shift+C" {
		t.Errorf("Expected Hotkey 'Ctrl+Shift+C', got '%s'", opts.Hotkey)
	}
	if !opts.EnableFileLogging {
		t.Error("Expected EnableFileLogging to be true")
	}
	if opts.PollIntervalMs != 25 {
		t.Errorf("Expected PollIntervalMs 25, got %d", opts.PollIntervalMs)
	}
}

func TestLoadOptionsDefaults(t *testing.T) {
	os.Unsetenv("TOGGLE_HOTKEY")
	os.Unsetenv("POLL_INTERVAL_MS")

	opts := LoadOptions()
	if opts.Hotkey != DefaultHotkey {
		t.Errorf("Expected default hotkey '%s', got '%s'", DefaultHotkey, opts.Hotkey)
	}
	if opts.PollIntervalMs != DefaultPollInterval {
		t.Errorf("Expected default poll interval %d, got %d", DefaultPollInterval, opts.PollIntervalMs)
	}
}

func TestSettingsRoundTripThroughFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	s := settings.Defaults()
	s.LineWidth = 3.5
	s.TickEnabled = true
	if err := SaveSettings(path, s); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}

	loaded := LoadSettings(path)
	if loaded.LineWidth != 3.5 || !loaded.TickEnabled {
		t.Errorf("Round trip mismatch: %+v", loaded)
	}
}

func TestLoadSettingsMissingFile(t *testing.T) {
	loaded := LoadSettings(filepath.Join(t.TempDir(), "nope.json"))
	if loaded.LineWidth != settings.Defaults().LineWidth {
		t.Errorf("Expected defaults for missing file, got %+v", loaded)
	}
}

func TestLoadSettingsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	loaded := LoadSettings(path)
	d := settings.Defaults()
	if loaded.LineColor != d.LineColor || loaded.TickSpacing != d.TickSpacing {
		t.Errorf("Expected defaults for malformed file, got %+v", loaded)
	}
}

func TestSaveSettingsUsesTwoSpaceIndent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := SaveSettings(path, settings.Defaults()); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) < 4 || string(data[:4]) != "{\n  " {
		t.Errorf("Expected 2-space indented JSON, got prefix %q", string(data[:min(16, len(data))]))
	}
}
