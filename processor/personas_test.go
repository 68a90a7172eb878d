package processor

import (
	"testing"

	"go.qspeak.app/qspeak/event"
	"go.qspeak.app/qspeak/state"
)

func TestAddPersona(t *testing.T) {
	store := newTestStore(t)
	p := NewPersonasProcessor(store, newTestBus(t))

	before := len(store.Context().Personas.Personas)
	p.handle(event.ActionAddPersona{NewPersona: event.NewPersona{
		Name:          "Note Taker",
		SystemPrompt:  "Turn dictation into bullet notes.",
		VoiceCommand:  "take notes",
		PasteOnFinish: true,
	}})

	personas := store.Context().Personas.Personas
	if len(personas) != before+1 {
		t.Fatalf("got %d personas, want %d", len(personas), before+1)
	}
	added := personas[len(personas)-1]
	if added.ID == "" {
		t.Fatal("added persona has no id")
	}
	if added.Name != "Note Taker" || !added.PasteOnFinish {
		t.Fatalf("added persona = %+v", added)
	}
}

func TestUpdatePersonaReplacesByID(t *testing.T) {
	store := newTestStore(t)
	store.Update(func(c *state.AppStateContext) {
		c.Personas.Personas = testPersonas()
	})
	p := NewPersonasProcessor(store, newTestBus(t))

	p.handle(event.ActionUpdatePersona{Persona: state.Persona{ID: "p2", Name: "Renamed", VoiceCommand: "rename it"}})
	for _, persona := range store.Context().Personas.Personas {
		if persona.ID == "p2" {
			if persona.Name != "Renamed" || persona.VoiceCommand != "rename it" {
				t.Fatalf("updated persona = %+v", persona)
			}
			return
		}
	}
	t.Fatal("persona p2 disappeared")
}

func TestDeletePersona(t *testing.T) {
	store := newTestStore(t)
	store.Update(func(c *state.AppStateContext) {
		c.Personas.Personas = testPersonas()
	})
	p := NewPersonasProcessor(store, newTestBus(t))

	p.handle(event.ActionDeletePersona{ID: "p2"})
	personas := store.Context().Personas.Personas
	if len(personas) != 2 {
		t.Fatalf("got %d personas, want 2", len(personas))
	}
	for _, persona := range personas {
		if persona.ID == "p2" {
			t.Fatal("persona p2 still present")
		}
	}
}

func TestDuplicatePersonaGetsNewIDAndCopySuffix(t *testing.T) {
	store := newTestStore(t)
	store.Update(func(c *state.AppStateContext) {
		c.Personas.Personas = testPersonas()
	})
	p := NewPersonasProcessor(store, newTestBus(t))

	p.handle(event.ActionDuplicatePersona{Persona: state.Persona{ID: "p1", Name: "Dictation", SystemPrompt: "prompt"}})
	personas := store.Context().Personas.Personas
	dup := personas[len(personas)-1]
	if dup.ID == "p1" || dup.ID == "" {
		t.Fatalf("duplicate id = %q, want a fresh id", dup.ID)
	}
	if dup.Name != "Dictation (Copy)" {
		t.Fatalf("duplicate name = %q", dup.Name)
	}
	if dup.SystemPrompt != "prompt" {
		t.Fatalf("duplicate prompt = %q, want copied prompt", dup.SystemPrompt)
	}
}
