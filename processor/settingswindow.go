package processor

import (
	"go.qspeak.app/qspeak/event"
	"go.qspeak.app/qspeak/state"
)

// SettingsWindowProcessor keeps the settings window state in sync with the
// shell window it drives.
type SettingsWindowProcessor struct {
	store   *state.Store
	bus     *Processor
	windows Windows
}

func NewSettingsWindowProcessor(store *state.Store, bus *Processor, windows Windows) *SettingsWindowProcessor {
	return &SettingsWindowProcessor{store: store, bus: bus, windows: windows}
}

func (p *SettingsWindowProcessor) Register() {
	p.bus.RegisterEventListener("settings_window", p.handle)
}

func (p *SettingsWindowProcessor) handle(e event.Event) error {
	switch ev := e.(type) {
	case event.OpenSettings:
		p.windows.ShowSettingsWindow()
		p.store.Update(func(c *state.AppStateContext) {
			c.SettingsWindow.State = state.WindowOpen
		})
	case event.CloseSettings:
		p.windows.CloseSettingsWindow()
		p.store.Update(func(c *state.AppStateContext) {
			c.SettingsWindow.State = state.WindowClosed
		})
	case event.MinimizeSettings:
		p.windows.MinimizeSettingsWindow()
	case event.ActionChangeOpenSettingsOnStart:
		p.store.Update(func(c *state.AppStateContext) {
			c.SettingsWindow.OpenSettingsOnStart = ev.Enabled
		})
	}
	return nil
}
