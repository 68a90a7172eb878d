// Package clipboard wraps the system pasteboard and the synthetic paste
// keystroke used to insert dictated text into the focused application.
package clipboard

import (
	"time"
)

// copySettle is how long the frontmost application gets to service a
// synthetic copy keystroke before the pasteboard is read back.
const copySettle = 150 * time.Millisecond

// Manager implements the clipboard surface the conversation pipeline
// needs. All methods hit the real system pasteboard.
type Manager struct{}

func New() *Manager { return &Manager{} }

// SetText replaces the pasteboard content.
func (m *Manager) SetText(text string) error {
	return setClipboardContent(text)
}

// SetTextAndPaste replaces the pasteboard content and sends the platform
// paste keystroke to the focused application. Requires the accessibility
// permission on macOS.
func (m *Manager) SetTextAndPaste(text string) error {
	if err := setClipboardContent(text); err != nil {
		return err
	}
	return sendPasteKeystroke()
}

// SelectedText copies the current selection in the focused application
// and returns it. The previous pasteboard content is restored afterwards.
func (m *Manager) SelectedText() (string, error) {
	previous, _ := getClipboardContent()

	if err := sendCopyKeystroke(); err != nil {
		return "", err
	}
	time.Sleep(copySettle)

	text, err := getClipboardContent()
	if err != nil {
		return "", err
	}
	if previous != "" {
		defer setClipboardContent(previous)
	}
	return text, nil
}
