package processor

import (
	"sync"
	"testing"

	"go.qspeak.app/qspeak/event"
	"go.qspeak.app/qspeak/state"
)

// fakeWindows records every window call.
type fakeWindows struct {
	mu    sync.Mutex
	calls []string
}

func (w *fakeWindows) record(call string) {
	w.mu.Lock()
	w.calls = append(w.calls, call)
	w.mu.Unlock()
}

func (w *fakeWindows) ShowRecordingWindow()   { w.record("ShowRecording") }
func (w *fakeWindows) HideRecordingWindow()   { w.record("HideRecording") }
func (w *fakeWindows) CenterRecordingWindow() { w.record("CenterRecording") }
func (w *fakeWindows) ResizeRecordingWindow(minimized bool) {
	if minimized {
		w.record("ResizeMinimized")
	} else {
		w.record("ResizeMaximized")
	}
}
func (w *fakeWindows) ShowSettingsWindow()     { w.record("ShowSettings") }
func (w *fakeWindows) CloseSettingsWindow()    { w.record("CloseSettings") }
func (w *fakeWindows) MinimizeSettingsWindow() { w.record("MinimizeSettings") }
func (w *fakeWindows) ShowOnboardingWindow()   { w.record("ShowOnboarding") }
func (w *fakeWindows) CloseOnboardingWindow()  { w.record("CloseOnboarding") }

func (w *fakeWindows) saw(call string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, c := range w.calls {
		if c == call {
			return true
		}
	}
	return false
}

func TestSettingsWindowOpenClose(t *testing.T) {
	store := newTestStore(t)
	windows := &fakeWindows{}
	p := NewSettingsWindowProcessor(store, newTestBus(t), windows)

	p.handle(event.OpenSettings{})
	if got := store.Context().SettingsWindow.State; got != state.WindowOpen {
		t.Fatalf("settings window state = %q, want open", got)
	}
	if !windows.saw("ShowSettings") {
		t.Fatal("settings window was not shown")
	}

	p.handle(event.CloseSettings{})
	if got := store.Context().SettingsWindow.State; got != state.WindowClosed {
		t.Fatalf("settings window state = %q, want closed", got)
	}
	if !windows.saw("CloseSettings") {
		t.Fatal("settings window was not closed")
	}
}

func TestSettingsWindowOpenOnStartFlag(t *testing.T) {
	store := newTestStore(t)
	p := NewSettingsWindowProcessor(store, newTestBus(t), NopWindows{})

	p.handle(event.ActionChangeOpenSettingsOnStart{Enabled: true})
	if !store.Context().SettingsWindow.OpenSettingsOnStart {
		t.Fatal("OpenSettingsOnStart not set")
	}
}

func TestOnboardingOpensOnlyWhenClosed(t *testing.T) {
	store := newTestStore(t)
	windows := &fakeWindows{}
	p := NewOnboardingWindowProcessor(store, newTestBus(t), windows)

	p.handle(event.OpenOnboarding{})
	if got := store.Context().OnboardingWindow.State; got != state.WindowOpen {
		t.Fatalf("onboarding state = %q, want open", got)
	}

	windows.mu.Lock()
	calls := len(windows.calls)
	windows.mu.Unlock()
	p.handle(event.OpenOnboarding{})
	windows.mu.Lock()
	after := len(windows.calls)
	windows.mu.Unlock()
	if after != calls {
		t.Fatal("second OpenOnboarding touched the window again")
	}
}

func TestFinishOnboardingHandsOverToSettings(t *testing.T) {
	store := newTestStore(t)
	bus := newRunningBus(t)
	rec := recordEvents(bus)
	windows := &fakeWindows{}
	p := NewOnboardingWindowProcessor(store, bus, windows)
	p.Register()

	bus.Dispatch(event.OpenOnboarding{})
	waitFor(t, "onboarding window did not open", func() bool {
		return store.Context().OnboardingWindow.State == state.WindowOpen
	})

	bus.Dispatch(event.FinishOnboarding{})
	waitFor(t, "OpenSettings was not dispatched", func() bool {
		return rec.seen("OpenSettings")
	})
	if got := store.Context().OnboardingWindow.State; got != state.WindowClosed {
		t.Fatalf("onboarding state = %q, want closed", got)
	}
	if !windows.saw("CloseOnboarding") {
		t.Fatal("onboarding window was not closed")
	}
}
