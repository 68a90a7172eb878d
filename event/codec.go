package event

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// envelope is the wire form of an event. Variants without fields omit the
// payload entirely.
type envelope struct {
	Name    string          `json:"name"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

var decoders = map[string]func(json.RawMessage) (Event, error){}

func register[E Event]() {
	var zero E
	name := zero.Name()
	if _, ok := decoders[name]; ok {
		panic(fmt.Sprintf("event: duplicate registration for %q", name))
	}
	decoders[name] = func(raw json.RawMessage) (Event, error) {
		var e E
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &e); err != nil {
				return nil, fmt.Errorf("decode %s payload: %w", name, err)
			}
		}
		return e, nil
	}
}

// Marshal wraps an event in its envelope.
func Marshal(e Event) ([]byte, error) {
	env := envelope{Name: e.Name()}
	t := reflect.TypeOf(e)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() == reflect.Struct && t.NumField() > 0 {
		raw, err := json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("encode %s payload: %w", e.Name(), err)
		}
		env.Payload = raw
	}
	return json.Marshal(env)
}

// Unmarshal decodes an envelope back into its typed variant.
func Unmarshal(data []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode event envelope: %w", err)
	}
	decode, ok := decoders[env.Name]
	if !ok {
		return nil, fmt.Errorf("unknown event %q", env.Name)
	}
	return decode(env.Payload)
}

func init() {
	register[ActionCenterWindow]()
	register[ActionPersona]()
	register[ActionPersonaCycleEnd]()
	register[ActionPersonaCycleNext]()
	register[ActionScreenshot]()
	register[ActionCopyText]()
	register[ActionRecording]()
	register[ActionToggleRecordingWindowMinimized]()
	register[ActionOpenRecordingWindow]()
	register[ActionCloseRecordingWindow]()
	register[ActionChangeTranscriptionLanguage]()
	register[ActionSwitchToNextPreferredLanguage]()
	register[ActionUpdatePreferredLanguages]()
	register[ActionChangeInterfaceLanguage]()
	register[ActionDownloadTranscriptionModel]()
	register[ActionDownloadConversationModel]()
	register[ActionCancelDownloadTranscriptionModel]()
	register[ActionCancelDownloadConversationModel]()
	register[ActionDeleteTranscriptionModel]()
	register[ActionDeleteConversationModel]()
	register[DownloadTranscriptionModelSuccess]()
	register[DownloadTranscriptionModelError]()
	register[DownloadConversationModelSuccess]()
	register[ActionAddConversationModel]()
	register[ActionUpdateConversationModel]()
	register[ActionDeleteCustomConversationModel]()
	register[ActionRefetchConversationModels]()
	register[ActionChangeTranscriptionModel]()
	register[ActionChangeConversationModel]()
	register[ActionChangePersona]()
	register[ActionAddPersona]()
	register[ActionDuplicatePersona]()
	register[ActionUpdatePersona]()
	register[ActionDeletePersona]()
	register[ActionTranscriptionNoAudioData]()
	register[ActionTranscriptionSuccess]()
	register[ActionTranscriptionError]()
	register[ActionTransformationChunk]()
	register[ActionTransformationToolCall]()
	register[ActionTransformationToolCallResult]()
	register[ActionTransformationError]()
	register[ActionTransformationSuccess]()
	register[ActionTextMessage]()
	register[ActionAddImage]()
	register[ActionAddFile]()
	register[ActionAddText]()
	register[ActionStartNewConversation]()
	register[ActionAddDictionaryItem]()
	register[ActionDeleteDictionaryItem]()
	register[ActionLoadHistoryConversation]()
	register[ActionUpdateOrCreateHistory]()
	register[ActionGenerateHistoryTitle]()
	register[ActionDeleteHistory]()
	register[ActionClearHistory]()
	register[ActionLogin]()
	register[ActionLoginSuccess]()
	register[ActionLoginError]()
	register[ActionLoginVerify]()
	register[ActionLoginVerifySuccess]()
	register[ActionLoginVerifyError]()
	register[ActionAddTool]()
	register[ActionDeleteTool]()
	register[ActionEnableTool]()
	register[ActionDisableTool]()
	register[ActionUpdateTool]()
	register[StartListening]()
	register[StopListening]()
	register[PauseTranscription]()
	register[ResumeTranscription]()
	register[ResetTranscription]()
	register[TranscriptionError]()
	register[ActionUpdateWebsocketServerSettings]()
	register[ActionChangeTheme]()
	register[ActionChangeOpenSettingsOnStart]()
	register[OpenSettings]()
	register[CloseSettings]()
	register[MinimizeSettings]()
	register[OpenOnboarding]()
	register[CloseOnboarding]()
	register[FinishOnboarding]()
	register[ActionResetRecordingShortcutTimer]()
	register[ShortcutUpdate]()
	register[ShortcutPressed]()
	register[ActionChangeInputDevice]()
	register[KoboldServerStateChange]()
	register[ActionRemoveError]()
	register[ActionCheckForUpdates]()
	register[ActionUpdateAndRestart]()
	register[ActionCheckAccessibilityPermission]()
	register[ActionCheckAndRequestAccessibilityPermission]()
	register[ActionRequestAccessibilityPermission]()
	register[ActionCheckMicrophonePermission]()
	register[ActionCheckAndRequestMicrophonePermission]()
	register[ActionRequestMicrophonePermission]()
	register[ActionChallengeCompleted]()
	register[ActionChangePersonaByVoice]()
	register[ActionOpenSettingsFromTray]()
	register[ActionGetReleases]()
	register[ActionGetReleasesSuccess]()
	register[ActionGetReleasesError]()
}
