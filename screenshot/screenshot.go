// Package screenshot captures a user-selected screen region for attaching
// images to a conversation.
package screenshot

import (
	"fmt"
	"os"
)

// Capturer runs interactive region captures. It implements the screenshot
// surface of the conversation pipeline.
type Capturer struct{}

func New() *Capturer { return &Capturer{} }

// Capture lets the user select a region and returns the PNG bytes. The
// temporary capture file is removed before returning.
func (c *Capturer) Capture() ([]byte, error) {
	if !HasPermission() {
		RequestPermission()
		return nil, fmt.Errorf("screen recording permission required")
	}

	path, err := captureInteractive()
	if err != nil {
		return nil, err
	}
	defer os.Remove(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read screenshot: %w", err)
	}
	return data, nil
}
