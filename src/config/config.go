package config

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"crosshair-overlay/src/settings"

	"github.com/joho/godotenv"
)

const (
	appDirName    = "crosshair-overlay"
	configFile    = "config.json"
	favoritesFile = "favorites.json"

	DefaultHotkey       = "Ctrl+Alt+X"
	DefaultPollInterval = 10 // milliseconds
)

// Options are process-level knobs resolved from the environment and an
// optional .env next to the executable. They are distinct from the user's
// appearance settings, which live in config.json.
type Options struct {
	Hotkey            string
	EnableFileLogging bool
	PollIntervalMs    int
	DirOverride       string
}

// LoadOptions reads options from .env (executable directory) and the
// process environment, environment winning.
func LoadOptions() *Options {
	if envPath := resolveEnvPath(); envPath != "" {
		_ = godotenv.Load(envPath)
	}

	pollMs := DefaultPollInterval
	if v := os.Getenv("POLL_INTERVAL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			pollMs = n
		}
	}

	return &Options{
		Hotkey:            getEnvWithDefault("TOGGLE_HOTKEY", DefaultHotkey),
		EnableFileLogging: strings.ToLower(os.Getenv("ENABLE_FILE_LOGGING")) == "true",
		PollIntervalMs:    pollMs,
		DirOverride:       os.Getenv("CROSSHAIR_CONFIG_DIR"),
	}
}

func resolveEnvPath() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}
	exeEnv := filepath.Join(filepath.Dir(execPath), ".env")
	if _, err := os.Stat(exeEnv); err == nil {
		return exeEnv
	}
	return ""
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Dir returns the per-user directory holding config.json and
// favorites.json, creating it if needed. opts may be nil.
func Dir(opts *Options) string {
	if opts != nil && opts.DirOverride != "" {
		_ = os.MkdirAll(opts.DirOverride, 0o755)
		return opts.DirOverride
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	dir := filepath.Join(configDir, appDirName)
	_ = os.MkdirAll(dir, 0o755)
	return dir
}

// ConfigPath returns the settings file path.
func ConfigPath(opts *Options) string {
	return filepath.Join(Dir(opts), configFile)
}

// FavoritesPath returns the favorites file path.
func FavoritesPath(opts *Options) string {
	return filepath.Join(Dir(opts), favoritesFile)
}

// LoadSettings reads the settings file, merging it over built-in
// defaults. A missing or malformed file silently yields the defaults;
// startup must never fail on bad persisted state.
func LoadSettings(path string) settings.Settings {
	s := settings.Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		return s
	}
	if err := json.Unmarshal(data, &s); err != nil {
		log.Printf("config: ignoring malformed %s: %v", filepath.Base(path), err)
		return settings.Defaults()
	}
	s.Clamp()
	return s
}

// SaveSettings writes the settings file with stable 2-space indentation.
func SaveSettings(path string, s settings.Settings) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
