//go:build !windows

package backend

import "fmt"

// New is a stub for non-Windows platforms.
func New(b Bounds) (Backend, error) {
	return nil, fmt.Errorf("overlay window not implemented for this platform")
}
