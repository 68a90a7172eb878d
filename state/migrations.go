package state

import (
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

// Migration adjusts a freshly loaded context from an older app version.
// Apply reports whether it changed anything.
type Migration interface {
	Name() string
	Apply(c *AppStateContext) bool
}

// Migrations returns all migrations in the order they must run.
func Migrations() []Migration {
	return []Migration{
		addCustomizeShortcutsChallenge{},
		migrateSinglePersonaShortcut{},
		migratePersonasDuplicatedID{},
		migrateTranscriptionModelIDs{},
	}
}

// RunMigrations applies every migration that has something to do and logs
// the ones that fired.
func RunMigrations(c *AppStateContext) {
	for _, m := range Migrations() {
		if m.Apply(c) {
			slog.Info("Applied migration", "name", m.Name())
		}
	}
}

type addCustomizeShortcutsChallenge struct{}

func (addCustomizeShortcutsChallenge) Name() string {
	return "Add customize shortcuts challenge to the user's challenges"
}

func (addCustomizeShortcutsChallenge) Apply(c *AppStateContext) bool {
	for _, ch := range c.Challenges.Challenges {
		if ch.ID == ChallengeCustomizeShortcuts {
			return false
		}
	}
	c.Challenges.Challenges = append(c.Challenges.Challenges, CustomizeShortcutsChallenge())
	return true
}

type migrateSinglePersonaShortcut struct{}

func (migrateSinglePersonaShortcut) Name() string {
	return "Migrate persona shortcut to shortcut that has at least one modifier and one character"
}

func (migrateSinglePersonaShortcut) Apply(c *AppStateContext) bool {
	if len(c.Shortcuts.Personas) != 1 {
		return false
	}
	c.Shortcuts.Personas = DefaultShortcuts().Personas
	return true
}

type migratePersonasDuplicatedID struct{}

func (migratePersonasDuplicatedID) Name() string {
	return "Migrate personas with duplicated IDs"
}

func (migratePersonasDuplicatedID) Apply(c *AppStateContext) bool {
	seen := make(map[string]bool, len(c.Personas.Personas))
	changed := false
	for i := range c.Personas.Personas {
		id := c.Personas.Personas[i].ID
		if seen[id] {
			c.Personas.Personas[i].ID = uuid.NewString()
			changed = true
			continue
		}
		seen[id] = true
	}
	return changed
}

type migrateTranscriptionModelIDs struct{}

func (migrateTranscriptionModelIDs) Name() string {
	return "Migrate old transcription model IDs (use_openai, use_mistral) to new API model IDs"
}

func (migrateTranscriptionModelIDs) Apply(c *AppStateContext) bool {
	changed := false
	if c.TranscriptionModel != nil {
		switch *c.TranscriptionModel {
		case "use_openai":
			id := "whisper-1"
			c.TranscriptionModel = &id
			changed = true
		case "use_mistral":
			id := "voxtral-mini-2507"
			c.TranscriptionModel = &id
			changed = true
		}
	}
	for i := range c.Models.TranscriptionModels {
		m := &c.Models.TranscriptionModels[i]
		if m.IsLocal {
			continue
		}
		want := m.Provider
		switch {
		case m.Model == "whisper-1":
			want = ProviderOpenAI
		case strings.Contains(m.Model, "voxtral"):
			want = ProviderMistral
		case strings.HasSuffix(m.Model, ".bin"):
			want = ProviderWhisperLocal
		default:
			want = ProviderOpenAI
		}
		if m.Provider != want {
			m.Provider = want
			changed = true
		}
	}
	return changed
}
