package processor

import (
	"go.qspeak.app/qspeak/event"
	"go.qspeak.app/qspeak/state"
)

// RecordingWindowProcessor drives the floating recording window: opening,
// closing, the minimized toggle and the persona picker overlay with its
// cycling order.
type RecordingWindowProcessor struct {
	store   *state.Store
	bus     *Processor
	windows Windows
}

func NewRecordingWindowProcessor(store *state.Store, bus *Processor, windows Windows) *RecordingWindowProcessor {
	return &RecordingWindowProcessor{store: store, bus: bus, windows: windows}
}

func (p *RecordingWindowProcessor) Register() {
	p.bus.RegisterEventListener("recording_window", p.handle)
}

func (p *RecordingWindowProcessor) handle(e event.Event) error {
	ctx := p.store.Context()
	window := ctx.RecordingWindow

	switch ev := e.(type) {
	case event.ActionCenterWindow:
		p.store.Update(func(c *state.AppStateContext) {
			c.RecordingWindow.State = state.WindowOpen
			c.RecordingWindow.View = state.ViewRecording
		})
		p.windows.ShowRecordingWindow()
		p.windows.CenterRecordingWindow()

	case event.ActionOpenRecordingWindow:
		if window.State != state.WindowClosed {
			return nil
		}
		p.store.Update(func(c *state.AppStateContext) {
			c.RecordingWindow.State = state.WindowOpen
			c.RecordingWindow.View = state.ViewRecording
		})
		p.windows.ShowRecordingWindow()

	case event.ActionToggleRecordingWindowMinimized:
		if window.State != state.WindowOpen {
			return nil
		}
		minimized := !window.Minimized
		p.store.Update(func(c *state.AppStateContext) {
			c.RecordingWindow.Minimized = minimized
		})
		p.windows.ShowRecordingWindow()
		p.windows.ResizeRecordingWindow(minimized)

	case event.ActionRecording:
		if window.State == state.WindowClosed {
			p.store.Update(func(c *state.AppStateContext) {
				c.RecordingWindow.State = state.WindowOpen
				c.RecordingWindow.View = state.ViewRecording
			})
			p.windows.ShowRecordingWindow()
			return nil
		}
		p.windows.ShowRecordingWindow()
		p.store.Update(func(c *state.AppStateContext) {
			c.RecordingWindow.View = state.ViewRecording
		})

	case event.ActionPersona:
		switch {
		case window.State == state.WindowClosed:
			p.store.Update(func(c *state.AppStateContext) {
				previous := state.WindowClosed
				c.Utils.RecordingWindowPreviousState = &previous
				c.RecordingWindow.State = state.WindowOpen
				c.RecordingWindow.View = state.ViewPersona
			})
			p.windows.ShowRecordingWindow()
		case window.View == state.ViewPersona:
			p.bus.Dispatch(event.ActionPersonaCycleNext{})
		default:
			p.store.Update(func(c *state.AppStateContext) {
				previous := state.WindowOpen
				c.Utils.RecordingWindowPreviousState = &previous
				c.RecordingWindow.View = state.ViewPersona
			})
			p.bus.Dispatch(event.ActionPersonaCycleNext{})
		}

	case event.ActionPersonaCycleNext:
		if window.State != state.WindowOpen {
			return nil
		}
		p.cycleToNextPersona()

	case event.ActionPersonaCycleEnd:
		previous := ctx.Utils.RecordingWindowPreviousState
		if previous == nil {
			return nil
		}
		if *previous == state.WindowClosed {
			p.bus.Dispatch(event.ActionCloseRecordingWindow{})
			return nil
		}
		p.store.Update(func(c *state.AppStateContext) {
			c.RecordingWindow.View = state.ViewRecording
		})

	case event.ActionCloseRecordingWindow:
		if window.State != state.WindowOpen {
			return nil
		}
		p.store.Update(func(c *state.AppStateContext) {
			c.Utils.RecordingWindowPreviousState = nil
			c.RecordingWindow.State = state.WindowClosed
		})
		p.windows.HideRecordingWindow()

	case event.ActionChangeTheme:
		if ev.Theme == nil {
			return nil
		}
		p.store.Update(func(c *state.AppStateContext) {
			c.RecordingWindow.Theme = *ev.Theme
		})
	}
	return nil
}

// cycleToNextPersona advances the active persona through the list and back
// to none after the last one.
func (p *RecordingWindowProcessor) cycleToNextPersona() {
	p.store.Update(func(c *state.AppStateContext) {
		personas := c.Personas.Personas
		if len(personas) == 0 {
			return
		}
		if c.ActivePersona == nil {
			first := personas[0].Clone()
			c.UpdateActivePersona(&first)
			return
		}
		current := 0
		for i, persona := range personas {
			if persona.ID == c.ActivePersona.ID {
				current = i
				break
			}
		}
		if current == len(personas)-1 {
			c.UpdateActivePersona(nil)
			return
		}
		next := personas[current+1].Clone()
		c.UpdateActivePersona(&next)
	})
}
