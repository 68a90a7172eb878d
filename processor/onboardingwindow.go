package processor

import (
	"go.qspeak.app/qspeak/event"
	"go.qspeak.app/qspeak/state"
)

// OnboardingWindowProcessor manages the first-run onboarding window.
// Finishing onboarding hands the user over to the settings window.
type OnboardingWindowProcessor struct {
	store   *state.Store
	bus     *Processor
	windows Windows
}

func NewOnboardingWindowProcessor(store *state.Store, bus *Processor, windows Windows) *OnboardingWindowProcessor {
	return &OnboardingWindowProcessor{store: store, bus: bus, windows: windows}
}

func (p *OnboardingWindowProcessor) Register() {
	p.bus.RegisterEventListener("onboarding_window", p.handle)
}

func (p *OnboardingWindowProcessor) handle(e event.Event) error {
	ctx := p.store.Context()
	switch e.(type) {
	case event.OpenOnboarding:
		if ctx.OnboardingWindow.State != state.WindowClosed {
			return nil
		}
		p.windows.ShowOnboardingWindow()
		p.store.Update(func(c *state.AppStateContext) {
			c.OnboardingWindow.State = state.WindowOpen
		})
	case event.CloseOnboarding:
		if ctx.OnboardingWindow.State != state.WindowOpen {
			return nil
		}
		p.windows.CloseOnboardingWindow()
		p.store.Update(func(c *state.AppStateContext) {
			c.OnboardingWindow.State = state.WindowClosed
		})
	case event.FinishOnboarding:
		if ctx.OnboardingWindow.State != state.WindowOpen {
			return nil
		}
		p.windows.CloseOnboardingWindow()
		p.store.Update(func(c *state.AppStateContext) {
			c.OnboardingWindow.State = state.WindowClosed
		})
		p.bus.Dispatch(event.OpenSettings{})
	}
	return nil
}
