package processor

import (
	"go.qspeak.app/qspeak/event"
	"go.qspeak.app/qspeak/state"
)

// AppProcessor handles the settings that do not belong to any other
// domain: languages, input device, model selection, theme-independent
// websocket settings, active persona and error dismissal.
type AppProcessor struct {
	store *state.Store
	bus   *Processor
}

func NewAppProcessor(store *state.Store, bus *Processor) *AppProcessor {
	return &AppProcessor{store: store, bus: bus}
}

// Register attaches the listener and opens onboarding when the install is
// not yet configured.
func (p *AppProcessor) Register() {
	p.bus.RegisterEventListener("app", p.handle)

	ctx := p.store.Context()
	if ctx.InputDevice == nil || ctx.TranscriptionModel == nil || ctx.ConversationModel == nil {
		p.bus.Dispatch(event.OpenOnboarding{})
	}
}

func (p *AppProcessor) handle(e event.Event) error {
	switch ev := e.(type) {
	case event.ActionChangeTranscriptionLanguage:
		p.store.Update(func(c *state.AppStateContext) {
			c.Language = ev.Language
		})
	case event.ActionSwitchToNextPreferredLanguage:
		p.store.Update(func(c *state.AppStateContext) {
			c.SwitchToNextPreferredLanguage()
		})
	case event.ActionUpdatePreferredLanguages:
		p.store.Update(func(c *state.AppStateContext) {
			c.PreferredLanguages = append([]state.Language(nil), ev.Languages...)
		})
	case event.ActionChangeInterfaceLanguage:
		p.store.Update(func(c *state.AppStateContext) {
			c.InterfaceLanguage = ev.Language
		})
	case event.ActionChangeInputDevice:
		p.store.Update(func(c *state.AppStateContext) {
			c.InputDevice = ev.Device
		})
	case event.ActionChangeTranscriptionModel:
		p.store.Update(func(c *state.AppStateContext) {
			c.TranscriptionModel = ev.Model
		})
	case event.ActionChangeConversationModel:
		p.store.Update(func(c *state.AppStateContext) {
			c.ConversationModel = ev.Model
		})
	case event.ActionUpdateWebsocketServerSettings:
		p.store.Update(func(c *state.AppStateContext) {
			c.UpdateWebsocketServerSettings(ev.Enabled, ev.Port, ev.Password)
		})
	case event.ActionChangePersona:
		p.store.Update(func(c *state.AppStateContext) {
			c.UpdateActivePersona(ev.Persona)
		})
	case event.ActionRemoveError:
		p.store.Update(func(c *state.AppStateContext) {
			kept := c.Errors[:0]
			for _, appErr := range c.Errors {
				if appErr.ID != ev.ID {
					kept = append(kept, appErr)
				}
			}
			c.Errors = kept
		})
	}
	return nil
}
