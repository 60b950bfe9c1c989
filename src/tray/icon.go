package tray

import (
	_ "embed"
)

// Embedded tray icon: light crosshair with a red center dot.
//
//go:embed icon.ico
var iconICO []byte

func getIcon() []byte {
	return iconICO
}
