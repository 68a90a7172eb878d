//go:build !darwin

package clipboard

import "errors"

var errUnsupported = errors.New("clipboard access not supported on this platform")

func getClipboardContent() (string, error) { return "", errUnsupported }

func setClipboardContent(string) error { return errUnsupported }

func sendPasteKeystroke() error { return errUnsupported }

func sendCopyKeystroke() error { return errUnsupported }
