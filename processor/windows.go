package processor

// Windows abstracts the desktop window shell so processors can drive it
// without depending on the UI toolkit. Implementations must tolerate calls
// for windows that do not exist yet.
type Windows interface {
	ShowRecordingWindow()
	HideRecordingWindow()
	CenterRecordingWindow()
	ResizeRecordingWindow(minimized bool)

	ShowSettingsWindow()
	CloseSettingsWindow()
	MinimizeSettingsWindow()

	ShowOnboardingWindow()
	CloseOnboardingWindow()
}

// NopWindows is a Windows implementation that does nothing, used when the
// core runs headless.
type NopWindows struct{}

func (NopWindows) ShowRecordingWindow()       {}
func (NopWindows) HideRecordingWindow()       {}
func (NopWindows) CenterRecordingWindow()     {}
func (NopWindows) ResizeRecordingWindow(bool) {}
func (NopWindows) ShowSettingsWindow()        {}
func (NopWindows) CloseSettingsWindow()       {}
func (NopWindows) MinimizeSettingsWindow()    {}
func (NopWindows) ShowOnboardingWindow()      {}
func (NopWindows) CloseOnboardingWindow()     {}
