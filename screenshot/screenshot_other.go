//go:build !darwin

package screenshot

import "errors"

// HasPermission reports whether the screen recording permission has been
// granted. Non-macOS platforms have no such gate.
func HasPermission() bool { return true }

// RequestPermission asks the system for screen recording access.
func RequestPermission() {}

func captureInteractive() (string, error) {
	return "", errors.New("interactive capture not supported on this platform")
}
