package event

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"go.qspeak.app/qspeak/state"
)

func TestMarshalOmitsEmptyPayload(t *testing.T) {
	data, err := Marshal(ActionRecording{})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"name":"ActionRecording"}` {
		t.Fatalf("unexpected envelope: %s", data)
	}
}

func TestMarshalIncludesPayload(t *testing.T) {
	data, err := Marshal(ActionTranscriptionSuccess{Text: "hello world"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"payload":{"text":"hello world"}`) {
		t.Fatalf("unexpected envelope: %s", data)
	}
}

func TestRoundTrip(t *testing.T) {
	password := "secret"
	device := "Built-in Microphone"
	events := []Event{
		ActionRecording{},
		ActionTranscriptionSuccess{Text: "bonjour"},
		ActionChangeTranscriptionLanguage{Language: state.LanguageFrench},
		ActionChangePersona{Persona: nil},
		ActionUpdateWebsocketServerSettings{WebsocketServerSettings{
			Enabled:  true,
			Port:     4456,
			Password: &password,
		}},
		ActionChangeInputDevice{Device: &device},
		DownloadTranscriptionModelError{Model: "ggml-tiny.bin", Error: "disk full"},
		ActionTransformationToolCall{ChunkToolCall{
			Index:     0,
			ID:        "call_1",
			Name:      "weather--current",
			Arguments: `{"city":"Warsaw"}`,
		}},
		ShortcutUpdate{state.DefaultShortcuts()},
		ActionChallengeCompleted{Challenge: state.ChallengeChangePersona},
		KoboldServerStateChange{State: state.KoboldServerState{Phase: state.KoboldIdle}},
	}
	for _, e := range events {
		t.Run(e.Name(), func(t *testing.T) {
			data, err := Marshal(e)
			if err != nil {
				t.Fatal(err)
			}
			got, err := Unmarshal(data)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(got, e) {
				t.Fatalf("round trip mismatch:\n got %#v\nwant %#v", got, e)
			}
		})
	}
}

func TestUnmarshalUnknownEvent(t *testing.T) {
	if _, err := Unmarshal([]byte(`{"name":"NoSuchEvent"}`)); err == nil {
		t.Fatal("expected error for unknown event")
	}
}

func TestUnmarshalBadPayload(t *testing.T) {
	if _, err := Unmarshal([]byte(`{"name":"ActionTranscriptionSuccess","payload":42}`)); err == nil {
		t.Fatal("expected error for payload type mismatch")
	}
}

func TestEveryVariantIsRegistered(t *testing.T) {
	if len(decoders) < 100 {
		t.Fatalf("expected the full event vocabulary registered, got %d", len(decoders))
	}
	for name, decode := range decoders {
		e, err := decode(nil)
		if err != nil {
			t.Fatalf("decoding empty payload for %s: %v", name, err)
		}
		if e.Name() != name {
			t.Fatalf("decoder registered under %q produced %q", name, e.Name())
		}
	}
}

func TestEmbeddedPayloadFlattens(t *testing.T) {
	data, err := Marshal(ActionLoginVerify{LoginVerifyPayload{Email: "a@b.c", Code: "123456"}})
	if err != nil {
		t.Fatal(err)
	}
	var env struct {
		Payload map[string]json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatal(err)
	}
	if _, ok := env.Payload["email"]; !ok {
		t.Fatalf("embedded payload fields should flatten, got %s", data)
	}
}
