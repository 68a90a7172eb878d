package processor

import (
	"github.com/google/uuid"

	"go.qspeak.app/qspeak/event"
	"go.qspeak.app/qspeak/state"
)

// PersonasProcessor maintains the persona list.
type PersonasProcessor struct {
	store *state.Store
	bus   *Processor
}

func NewPersonasProcessor(store *state.Store, bus *Processor) *PersonasProcessor {
	return &PersonasProcessor{store: store, bus: bus}
}

func (p *PersonasProcessor) Register() {
	p.bus.RegisterEventListener("personas", p.handle)
}

func (p *PersonasProcessor) handle(e event.Event) error {
	switch ev := e.(type) {
	case event.ActionAddPersona:
		p.store.Update(func(c *state.AppStateContext) {
			c.Personas.Personas = append(c.Personas.Personas, state.Persona{
				ID:                uuid.NewString(),
				Name:              ev.Name,
				SystemPrompt:      ev.SystemPrompt,
				Description:       ev.Description,
				VoiceCommand:      ev.VoiceCommand,
				PasteOnFinish:     ev.PasteOnFinish,
				Icon:              ev.Icon,
				RecordOutputAudio: ev.RecordOutputAudio,
				Examples:          ev.Examples,
			})
		})
	case event.ActionUpdatePersona:
		p.store.Update(func(c *state.AppStateContext) {
			for i, persona := range c.Personas.Personas {
				if persona.ID == ev.ID {
					c.Personas.Personas[i] = ev.Persona.Clone()
					return
				}
			}
		})
	case event.ActionDeletePersona:
		p.store.Update(func(c *state.AppStateContext) {
			kept := c.Personas.Personas[:0]
			for _, persona := range c.Personas.Personas {
				if persona.ID != ev.ID {
					kept = append(kept, persona)
				}
			}
			c.Personas.Personas = kept
		})
	case event.ActionDuplicatePersona:
		p.store.Update(func(c *state.AppStateContext) {
			dup := ev.Persona.Clone()
			dup.ID = uuid.NewString()
			dup.Name = ev.Name + " (Copy)"
			c.Personas.Personas = append(c.Personas.Personas, dup)
		})
	}
	return nil
}
