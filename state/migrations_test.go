package state

import (
	"encoding/json"
	"testing"
)

func TestMigrationAddsCustomizeShortcutsChallenge(t *testing.T) {
	c := DefaultContext()
	kept := c.Challenges.Challenges[:0]
	for _, ch := range c.Challenges.Challenges {
		if ch.ID != ChallengeCustomizeShortcuts {
			kept = append(kept, ch)
		}
	}
	c.Challenges.Challenges = kept

	m := addCustomizeShortcutsChallenge{}
	if !m.Apply(&c) {
		t.Fatal("expected migration to apply")
	}
	if m.Apply(&c) {
		t.Fatal("expected migration to be idempotent")
	}

	found := false
	for _, ch := range c.Challenges.Challenges {
		if ch.ID == ChallengeCustomizeShortcuts {
			found = true
		}
	}
	if !found {
		t.Fatal("customize shortcuts challenge missing after migration")
	}
}

func TestMigrationReplacesSingleKeyPersonaShortcut(t *testing.T) {
	c := DefaultContext()
	c.Shortcuts.Personas = []string{"F9"}

	if !(migrateSinglePersonaShortcut{}).Apply(&c) {
		t.Fatal("expected migration to apply")
	}
	want := DefaultShortcuts().Personas
	if len(c.Shortcuts.Personas) != len(want) {
		t.Fatalf("expected default personas shortcut, got %v", c.Shortcuts.Personas)
	}
	if (migrateSinglePersonaShortcut{}).Apply(&c) {
		t.Fatal("expected migration to be idempotent")
	}
}

func TestMigrationDeduplicatesPersonaIDs(t *testing.T) {
	c := DefaultContext()
	dup := c.Personas.Personas[0].Clone()
	c.Personas.Personas = append(c.Personas.Personas, dup)

	if !(migratePersonasDuplicatedID{}).Apply(&c) {
		t.Fatal("expected migration to apply")
	}
	seen := map[string]bool{}
	for _, p := range c.Personas.Personas {
		if seen[p.ID] {
			t.Fatalf("duplicated persona id survived migration: %s", p.ID)
		}
		seen[p.ID] = true
	}
}

func TestMigrationRewritesLegacyTranscriptionModelIDs(t *testing.T) {
	tests := []struct {
		old  string
		want string
	}{
		{old: "use_openai", want: "whisper-1"},
		{old: "use_mistral", want: "voxtral-mini-2507"},
	}
	for _, tt := range tests {
		t.Run(tt.old, func(t *testing.T) {
			c := DefaultContext()
			old := tt.old
			c.TranscriptionModel = &old

			if !(migrateTranscriptionModelIDs{}).Apply(&c) {
				t.Fatal("expected migration to apply")
			}
			if got := *c.TranscriptionModel; got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestMigrationFixesCloudModelProviders(t *testing.T) {
	c := DefaultContext()
	c.Models.TranscriptionModels = append(c.Models.TranscriptionModels,
		TranscriptionModel{Name: "Whisper", Model: "whisper-1", Provider: ProviderMistral},
		TranscriptionModel{Name: "Voxtral", Model: "voxtral-mini-2507", Provider: ProviderOpenAI},
		TranscriptionModel{Name: "Mystery", Model: "new-cloud-model", Provider: ProviderWhisperLocal},
	)

	if !(migrateTranscriptionModelIDs{}).Apply(&c) {
		t.Fatal("expected migration to apply")
	}
	models := c.Models.TranscriptionModels
	byModel := func(id string) TranscriptionModel {
		for _, m := range models {
			if m.Model == id {
				return m
			}
		}
		t.Fatalf("model %q not found", id)
		return TranscriptionModel{}
	}
	if got := byModel("whisper-1").Provider; got != ProviderOpenAI {
		t.Errorf("whisper-1 provider = %q, want openai", got)
	}
	if got := byModel("voxtral-mini-2507").Provider; got != ProviderMistral {
		t.Errorf("voxtral provider = %q, want mistral", got)
	}
	if got := byModel("new-cloud-model").Provider; got != ProviderOpenAI {
		t.Errorf("unknown cloud model provider = %q, want openai", got)
	}
}

func TestRunMigrationsTwiceIsNoop(t *testing.T) {
	c := DefaultContext()
	kept := c.Challenges.Challenges[:0]
	for _, ch := range c.Challenges.Challenges {
		if ch.ID != ChallengeCustomizeShortcuts {
			kept = append(kept, ch)
		}
	}
	c.Challenges.Challenges = kept
	c.Shortcuts.Personas = []string{"F9"}
	dup := c.Personas.Personas[0].Clone()
	c.Personas.Personas = append(c.Personas.Personas, dup)
	legacy := "use_openai"
	c.TranscriptionModel = &legacy
	c.Models.TranscriptionModels = append(c.Models.TranscriptionModels,
		TranscriptionModel{Name: "Whisper", Model: "whisper-1", Provider: ProviderMistral},
	)

	for _, m := range Migrations() {
		if !m.Apply(&c) {
			t.Fatalf("migration %q did not apply on first pass", m.Name())
		}
	}
	before, err := json.Marshal(c)
	if err != nil {
		t.Fatal(err)
	}
	for _, m := range Migrations() {
		if m.Apply(&c) {
			t.Errorf("migration %q applied again on second pass", m.Name())
		}
	}
	after, err := json.Marshal(c)
	if err != nil {
		t.Fatal(err)
	}
	if string(before) != string(after) {
		t.Fatal("second migration pass changed the context")
	}
}

func TestRunMigrationsOnFreshContextIsNoop(t *testing.T) {
	c := DefaultContext()
	for _, m := range Migrations() {
		if m.Apply(&c) {
			t.Errorf("migration %q applied to a fresh context", m.Name())
		}
	}
}
