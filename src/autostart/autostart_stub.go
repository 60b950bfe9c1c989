//go:build !windows && !linux

package autostart

import "fmt"

func enable() error {
	return fmt.Errorf("autostart not implemented for this platform")
}

func disable() error {
	return fmt.Errorf("autostart not implemented for this platform")
}

func enabled() bool { return false }
