// Package autostart registers the application to run at login.
package autostart

const appName = "CrosshairOverlay"

// Enable registers the current executable to start at login.
func Enable() error { return enable() }

// Disable removes the login registration.
func Disable() error { return disable() }

// Enabled reports whether a login registration exists.
func Enabled() bool { return enabled() }
