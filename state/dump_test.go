package state

import (
	"encoding/json"
	"testing"
)

func TestDumpLoadRoundTripKeepsSettings(t *testing.T) {
	c := DefaultContext()
	c.Language = LanguageFrench
	c.InterfaceLanguage = LanguagePolish
	device := "USB Microphone"
	c.InputDevice = &device
	c.Conversation.Dictionary = []string{"qSpeak", "Voxtral"}
	c.Conversation.Replacements = []Replacement{{From: "tbh", To: "to be honest"}}
	persona := c.Personas.Personas[0].Clone()
	c.ActivePersona = &persona
	c.RecordingWindow.Minimized = false
	c.RecordingWindow.Theme = ThemeLight
	c.SettingsWindow.OpenSettingsOnStart = false

	data, err := json.Marshal(DumpFromContext(c))
	if err != nil {
		t.Fatal(err)
	}
	var dump Dump
	if err := json.Unmarshal(data, &dump); err != nil {
		t.Fatal(err)
	}
	loaded := dump.Load()

	if loaded.Language != LanguageFrench || loaded.InterfaceLanguage != LanguagePolish {
		t.Fatalf("languages not preserved: %q / %q", loaded.Language, loaded.InterfaceLanguage)
	}
	if loaded.InputDevice == nil || *loaded.InputDevice != device {
		t.Fatal("input device not preserved")
	}
	if len(loaded.Conversation.Dictionary) != 2 || len(loaded.Conversation.Replacements) != 1 {
		t.Fatal("dictionary and replacements not preserved")
	}
	if loaded.ActivePersona == nil || loaded.ActivePersona.ID != persona.ID {
		t.Fatal("active persona not preserved")
	}
	if loaded.RecordingWindow.Minimized {
		t.Fatal("minimized flag not preserved")
	}
	if loaded.RecordingWindow.Theme != ThemeLight {
		t.Fatal("theme not preserved")
	}
	if loaded.SettingsWindow.OpenSettingsOnStart {
		t.Fatal("open settings on start not preserved")
	}
}

func TestDumpLoadResetsVolatileState(t *testing.T) {
	c := DefaultContext()
	c.Errors = append(c.Errors, NewAppError("boom"))
	c.Conversation.State = ConversationTransforming
	c.Conversation.Conversation = append(c.Conversation.Conversation, ConversationMessage{
		Role:    "user",
		Content: []MessageContent{TextContent("hi")},
	})
	historyID := "some-history-id"
	c.History.CurrentHistoryID = &historyID
	step := LoginStepLoginVerify
	c.Account.LoginState.Step = &step
	c.SettingsWindow.State = WindowOpen
	c.OnboardingWindow.State = WindowOpen
	model := "gemma-3n.gguf"
	c.Kobold.State = KoboldServerState{Phase: KoboldRunning, Model: &model}

	loaded := DumpFromContext(c).Load()

	if len(loaded.Errors) != 0 {
		t.Fatal("errors should not survive a restart")
	}
	if loaded.Conversation.State != ConversationIdle || len(loaded.Conversation.Conversation) != 0 {
		t.Fatal("conversation should reset to idle")
	}
	if loaded.History.CurrentHistoryID != nil {
		t.Fatal("current history id should reset")
	}
	if loaded.Account.LoginState.Step != nil || loaded.Account.LoginState.State != nil {
		t.Fatal("login state should reset")
	}
	if loaded.SettingsWindow.State != WindowClosed || loaded.OnboardingWindow.State != WindowClosed {
		t.Fatal("windows should load closed")
	}
	if loaded.Kobold.State.Phase != KoboldIdle {
		t.Fatal("kobold server should load idle")
	}
}

func TestDumpLoadDerivesLastPersona(t *testing.T) {
	c := DefaultContext()
	persona := c.Personas.Personas[1].Clone()
	c.ActivePersona = &persona

	loaded := DumpFromContext(c).Load()

	if loaded.History.LastPersona == nil {
		t.Fatal("expected last persona to be derived from the active persona")
	}
	if loaded.History.LastPersona.ID != persona.ID || loaded.History.LastPersona.Name != persona.Name {
		t.Fatalf("unexpected last persona: %+v", loaded.History.LastPersona)
	}
}

func TestDumpResetsTranscriptionModels(t *testing.T) {
	c := DefaultContext()
	c.Models.TranscriptionModels = append(c.Models.TranscriptionModels, TranscriptionModel{
		Name: "Stale", Model: "stale.bin", Provider: ProviderWhisperLocal, IsLocal: true,
	})
	c.Models.ConversationModels = append(c.Models.ConversationModels, ConversationModel{
		Name: "Custom", Model: "my-model", Config: QSpeakModelConfig("my-model"),
	})

	loaded := DumpFromContext(c).Load()

	if len(loaded.Models.TranscriptionModels) != len(DefaultModelsContext().TranscriptionModels) {
		t.Fatal("transcription models should reset to the built-in catalog")
	}
	if len(loaded.Models.ConversationModels) != 1 {
		t.Fatal("conversation models should be preserved")
	}
}

func TestDumpLoadRestoresWebsocketServer(t *testing.T) {
	c := DefaultContext()
	password := "hunter2"
	c.WebsocketServer = WebsocketServerContext{Enabled: true, Port: 9123, Password: &password}

	data, err := json.Marshal(DumpFromContext(c))
	if err != nil {
		t.Fatal(err)
	}
	var dump Dump
	if err := json.Unmarshal(data, &dump); err != nil {
		t.Fatal(err)
	}
	loaded := dump.Load()

	if !loaded.WebsocketServer.Enabled {
		t.Fatal("enabled websocket server should come back enabled")
	}
	if loaded.WebsocketServer.Port != 9123 {
		t.Fatalf("unexpected websocket port: %d", loaded.WebsocketServer.Port)
	}
	if loaded.WebsocketServer.Password == nil || *loaded.WebsocketServer.Password != password {
		t.Fatal("websocket password not preserved")
	}
}

func TestDumpLoadMissingConversationModelsKeepsDefaults(t *testing.T) {
	var dump Dump
	if err := json.Unmarshal([]byte(`{"language":"en"}`), &dump); err != nil {
		t.Fatal(err)
	}
	loaded := dump.Load()

	if loaded.Models.ConversationModels == nil {
		t.Fatal("conversation model catalog should not be wiped by an old dump")
	}
	if len(loaded.Models.ConversationModels) != len(DefaultModelsContext().ConversationModels) {
		t.Fatal("conversation model catalog should match the built-in defaults")
	}
}
