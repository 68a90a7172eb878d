//go:build !darwin

package audiocapture

// New returns ErrUnsupported on non-macOS platforms.
func New(source Source, device *string) (Capturer, error) {
	return nil, ErrUnsupported
}

// InputDevices returns ErrUnsupported on non-macOS platforms.
func InputDevices() ([]string, error) {
	return nil, ErrUnsupported
}
