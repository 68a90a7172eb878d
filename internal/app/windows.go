package app

import (
	"sync"

	"github.com/wailsapp/wails/v3/pkg/application"
	"github.com/wailsapp/wails/v3/pkg/events"
)

// Recording window geometry. The minimized form is a thin pill that stays
// out of the way while dictation runs.
const (
	recordingWindowWidth  = 360
	recordingWindowHeight = 120

	recordingWindowMinWidth  = 160
	recordingWindowMinHeight = 44
)

// windowShell implements processor.Windows on top of Wails webview
// windows. Windows are created lazily on first show and hidden instead of
// destroyed, so reopening them is cheap.
type windowShell struct {
	app *application.App

	mu         sync.Mutex
	recording  *application.WebviewWindow
	settings   *application.WebviewWindow
	onboarding *application.WebviewWindow
}

func newWindowShell(app *application.App) *windowShell {
	return &windowShell{app: app}
}

func (w *windowShell) recordingWindow() *application.WebviewWindow {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.recording == nil {
		w.recording = w.app.Window.NewWithOptions(application.WebviewWindowOptions{
			Title:         "qSpeak",
			Width:         recordingWindowWidth,
			Height:        recordingWindowHeight,
			URL:           "/#/recording",
			Frameless:     true,
			AlwaysOnTop:   true,
			DisableResize: true,
			Hidden:        true,
			Mac: application.MacWindow{
				Backdrop: application.MacBackdropTranslucent,
			},
		})
		w.hideOnClose(w.recording)
	}
	return w.recording
}

func (w *windowShell) settingsWindow() *application.WebviewWindow {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.settings == nil {
		w.settings = w.app.Window.NewWithOptions(application.WebviewWindowOptions{
			Title:  "qSpeak Settings",
			Width:  1100,
			Height: 750,
			URL:    "/#/settings",
			Hidden: true,
			Mac: application.MacWindow{
				TitleBar:                application.MacTitleBarHiddenInsetUnified,
				InvisibleTitleBarHeight: 38,
			},
		})
		w.hideOnClose(w.settings)
	}
	return w.settings
}

func (w *windowShell) onboardingWindow() *application.WebviewWindow {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.onboarding == nil {
		w.onboarding = w.app.Window.NewWithOptions(application.WebviewWindowOptions{
			Title:         "Welcome to qSpeak",
			Width:         820,
			Height:        620,
			URL:           "/#/onboarding",
			DisableResize: true,
			Hidden:        true,
		})
		w.hideOnClose(w.onboarding)
	}
	return w.onboarding
}

// hideOnClose keeps the window alive behind the close button so the tray
// can bring it back.
func (w *windowShell) hideOnClose(win *application.WebviewWindow) {
	win.RegisterHook(events.Common.WindowClosing, func(e *application.WindowEvent) {
		e.Cancel()
		win.Hide()
	})
}

func (w *windowShell) ShowRecordingWindow() {
	win := w.recordingWindow()
	win.Show()
}

func (w *windowShell) HideRecordingWindow() {
	w.mu.Lock()
	win := w.recording
	w.mu.Unlock()
	if win != nil {
		win.Hide()
	}
}

func (w *windowShell) CenterRecordingWindow() {
	win := w.recordingWindow()
	win.Center()
}

func (w *windowShell) ResizeRecordingWindow(minimized bool) {
	win := w.recordingWindow()
	if minimized {
		win.SetSize(recordingWindowMinWidth, recordingWindowMinHeight)
	} else {
		win.SetSize(recordingWindowWidth, recordingWindowHeight)
	}
}

func (w *windowShell) ShowSettingsWindow() {
	win := w.settingsWindow()
	win.Show()
	win.Focus()
}

func (w *windowShell) CloseSettingsWindow() {
	w.mu.Lock()
	win := w.settings
	w.mu.Unlock()
	if win != nil {
		win.Hide()
	}
}

func (w *windowShell) MinimizeSettingsWindow() {
	w.mu.Lock()
	win := w.settings
	w.mu.Unlock()
	if win != nil {
		win.Minimise()
	}
}

func (w *windowShell) ShowOnboardingWindow() {
	win := w.onboardingWindow()
	win.Show()
	win.Focus()
}

func (w *windowShell) CloseOnboardingWindow() {
	w.mu.Lock()
	win := w.onboarding
	w.mu.Unlock()
	if win != nil {
		win.Hide()
	}
}
