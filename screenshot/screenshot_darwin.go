//go:build darwin

package screenshot

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework CoreGraphics -framework Foundation
#import <CoreGraphics/CoreGraphics.h>
#import <Foundation/Foundation.h>

bool hasScreenRecordingPermission() {
    if (@available(macOS 11.0, *)) {
        return CGPreflightScreenCaptureAccess();
    }
    return true;
}

void requestScreenRecordingPermission() {
    if (@available(macOS 11.0, *)) {
        CGRequestScreenCaptureAccess();
    }
}
*/
import "C"
import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// HasPermission reports whether the screen recording permission has been
// granted.
func HasPermission() bool {
	return bool(C.hasScreenRecordingPermission())
}

// RequestPermission asks the system for screen recording access. macOS
// shows the prompt at most once; afterwards the user has to flip the
// privacy setting by hand.
func RequestPermission() {
	C.requestScreenRecordingPermission()
}

// captureInteractive launches the system region-selection capture and
// returns the path of the saved image.
func captureInteractive() (string, error) {
	filePath := filepath.Join(os.TempDir(), fmt.Sprintf("qspeak_screenshot_%d.png", time.Now().UnixNano()))

	// -i: interactive selection, -x: no shutter sound.
	cmd := exec.Command("screencapture", "-i", "-x", filePath)
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("screencapture failed: %w", err)
	}

	// The file is missing when the user hit Escape.
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return "", fmt.Errorf("screenshot cancelled")
	}
	return filePath, nil
}
