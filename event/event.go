// Package event defines the application event vocabulary. Every user
// action, shortcut press, worker result and window transition is one of
// these values, dispatched onto the processor bus and consumed by the
// registered listeners.
package event

import (
	"time"

	"go.qspeak.app/qspeak/state"
)

// Event is implemented by every variant. Name identifies the variant on
// the wire and in listener dispatch tables.
type Event interface {
	Name() string
}

// NewPersona carries the user-entered fields for a persona to be created.
type NewPersona struct {
	Name              string                 `json:"name"`
	Description       string                 `json:"description"`
	SystemPrompt      string                 `json:"system_prompt"`
	VoiceCommand      string                 `json:"voice_command"`
	PasteOnFinish     bool                   `json:"paste_on_finish"`
	Icon              string                 `json:"icon"`
	RecordOutputAudio bool                   `json:"record_output_audio"`
	Examples          []state.PersonaExample `json:"examples"`
}

// NewConversationModel describes a custom OpenAI-compatible model endpoint.
type NewConversationModel struct {
	Model          string  `json:"model"`
	URL            string  `json:"url"`
	APIKey         *string `json:"api_key"`
	SupportsTools  bool    `json:"supports_tools"`
	SupportsVision bool    `json:"supports_vision"`
}

// UpdateConversationModel edits a custom model. OriginalModel locates the
// entry to replace.
type UpdateConversationModel struct {
	OriginalModel  string  `json:"original_model"`
	Model          string  `json:"model"`
	URL            string  `json:"url"`
	APIKey         *string `json:"api_key"`
	SupportsTools  bool    `json:"supports_tools"`
	SupportsVision bool    `json:"supports_vision"`
}

// WebsocketServerSettings configures the remote control server.
type WebsocketServerSettings struct {
	Enabled  bool    `json:"enabled"`
	Port     uint16  `json:"port"`
	Password *string `json:"password"`
}

// LoginVerifyPayload carries the emailed one-time code back to the API.
type LoginVerifyPayload struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// LoginVerifyResponse is the account API's answer to a successful verify.
type LoginVerifyResponse struct {
	Token string `json:"token"`
	Email string `json:"email"`
}

// ToolCallResult is the outcome of one MCP tool invocation.
type ToolCallResult struct {
	ToolCallID string    `json:"tool_call_id"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

// ChunkToolCall is one streamed tool call delta. The model sends the id
// and name on the first delta for an index and argument fragments after.
type ChunkToolCall struct {
	Index     int    `json:"index"`
	ID        string `json:"id,omitempty"`
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments"`
}

// Window and tray actions.
type (
	ActionCenterWindow                   struct{}
	ActionPersona                        struct{}
	ActionPersonaCycleEnd                struct{}
	ActionPersonaCycleNext               struct{}
	ActionScreenshot                     struct{}
	ActionCopyText                       struct{}
	ActionRecording                      struct{}
	ActionToggleRecordingWindowMinimized struct{}
	ActionOpenRecordingWindow            struct{}
	ActionCloseRecordingWindow           struct{}
)

func (ActionCenterWindow) Name() string { return "ActionCenterWindow" }
func (ActionPersona) Name() string { return "ActionPersona" }
func (ActionPersonaCycleEnd) Name() string { return "ActionPersonaCycleEnd" }
func (ActionPersonaCycleNext) Name() string { return "ActionPersonaCycleNext" }
func (ActionScreenshot) Name() string { return "ActionScreenshot" }
func (ActionCopyText) Name() string { return "ActionCopyText" }
func (ActionRecording) Name() string { return "ActionRecording" }
func (ActionToggleRecordingWindowMinimized) Name() string {
	return "ActionToggleRecordingWindowMinimized"
}
func (ActionOpenRecordingWindow) Name() string { return "ActionOpenRecordingWindow" }
func (ActionCloseRecordingWindow) Name() string { return "ActionCloseRecordingWindow" }

// Language selection.
type ActionChangeTranscriptionLanguage struct {
	Language state.Language `json:"language"`
}

type ActionSwitchToNextPreferredLanguage struct{}

type ActionUpdatePreferredLanguages struct {
	Languages []state.Language `json:"languages"`
}

type ActionChangeInterfaceLanguage struct {
	Language state.Language `json:"language"`
}

func (ActionChangeTranscriptionLanguage) Name() string { return "ActionChangeTranscriptionLanguage" }
func (ActionSwitchToNextPreferredLanguage) Name() string {
	return "ActionSwitchToNextPreferredLanguage"
}
func (ActionUpdatePreferredLanguages) Name() string { return "ActionUpdatePreferredLanguages" }
func (ActionChangeInterfaceLanguage) Name() string { return "ActionChangeInterfaceLanguage" }

// Model catalog and downloads.
type ActionDownloadTranscriptionModel struct {
	Model string `json:"model"`
}

type ActionDownloadConversationModel struct {
	Model string `json:"model"`
}

type ActionCancelDownloadTranscriptionModel struct {
	Model string `json:"model"`
}

type ActionCancelDownloadConversationModel struct {
	Model string `json:"model"`
}

type ActionDeleteTranscriptionModel struct {
	Model string `json:"model"`
}

type ActionDeleteConversationModel struct {
	Model string `json:"model"`
}

type DownloadTranscriptionModelSuccess struct {
	Model string `json:"model"`
}

type DownloadTranscriptionModelError struct {
	Model string `json:"model"`
	Error string `json:"error"`
}

type DownloadConversationModelSuccess struct {
	Model string `json:"model"`
}

type ActionAddConversationModel struct {
	NewConversationModel
}

type ActionUpdateConversationModel struct {
	UpdateConversationModel
}

type ActionDeleteCustomConversationModel struct {
	Model string `json:"model"`
}

type ActionRefetchConversationModels struct{}

type ActionChangeTranscriptionModel struct {
	Model *string `json:"model"`
}

type ActionChangeConversationModel struct {
	Model *string `json:"model"`
}

func (ActionDownloadTranscriptionModel) Name() string { return "ActionDownloadTranscriptionModel" }
func (ActionDownloadConversationModel) Name() string { return "ActionDownloadConversationModel" }
func (ActionCancelDownloadTranscriptionModel) Name() string {
	return "ActionCancelDownloadTranscriptionModel"
}
func (ActionCancelDownloadConversationModel) Name() string {
	return "ActionCancelDownloadConversationModel"
}
func (ActionDeleteTranscriptionModel) Name() string { return "ActionDeleteTranscriptionModel" }
func (ActionDeleteConversationModel) Name() string { return "ActionDeleteConversationModel" }
func (DownloadTranscriptionModelSuccess) Name() string { return "DownloadTranscriptionModelSuccess" }
func (DownloadTranscriptionModelError) Name() string { return "DownloadTranscriptionModelError" }
func (DownloadConversationModelSuccess) Name() string { return "DownloadConversationModelSuccess" }
func (ActionAddConversationModel) Name() string { return "ActionAddConversationModel" }
func (ActionUpdateConversationModel) Name() string { return "ActionUpdateConversationModel" }
func (ActionDeleteCustomConversationModel) Name() string {
	return "ActionDeleteCustomConversationModel"
}
func (ActionRefetchConversationModels) Name() string { return "ActionRefetchConversationModels" }
func (ActionChangeTranscriptionModel) Name() string { return "ActionChangeTranscriptionModel" }
func (ActionChangeConversationModel) Name() string { return "ActionChangeConversationModel" }

// Personas.
type ActionChangePersona struct {
	Persona *state.Persona `json:"persona"`
}

type ActionAddPersona struct {
	NewPersona
}

type ActionDuplicatePersona struct {
	state.Persona
}

type ActionUpdatePersona struct {
	state.Persona
}

type ActionDeletePersona struct {
	ID string `json:"id"`
}

func (ActionChangePersona) Name() string { return "ActionChangePersona" }
func (ActionAddPersona) Name() string { return "ActionAddPersona" }
func (ActionDuplicatePersona) Name() string { return "ActionDuplicatePersona" }
func (ActionUpdatePersona) Name() string { return "ActionUpdatePersona" }
func (ActionDeletePersona) Name() string { return "ActionDeletePersona" }

// Conversation flow.
type ActionTranscriptionNoAudioData struct{}

type ActionTranscriptionSuccess struct {
	Text string `json:"text"`
}

type ActionTranscriptionError struct {
	Error string `json:"error"`
}

type ActionTransformationChunk struct {
	Chunk string `json:"chunk"`
}

type ActionTransformationToolCall struct {
	ChunkToolCall
}

type ActionTransformationToolCallResult struct {
	ToolCallResult
}

type ActionTransformationError struct {
	Error string `json:"error"`
}

type ActionTransformationSuccess struct{}

type ActionTextMessage struct {
	Text string `json:"text"`
}

type ActionAddImage struct {
	Image string `json:"image"`
}

type ActionAddFile struct {
	Data []byte `json:"data"`
}

type ActionAddText struct {
	Text string `json:"text"`
}

type ActionStartNewConversation struct{}

type ActionAddDictionaryItem struct {
	Item string `json:"item"`
}

type ActionDeleteDictionaryItem struct {
	Item string `json:"item"`
}

func (ActionTranscriptionNoAudioData) Name() string { return "ActionTranscriptionNoAudioData" }
func (ActionTranscriptionSuccess) Name() string { return "ActionTranscriptionSuccess" }
func (ActionTranscriptionError) Name() string { return "ActionTranscriptionError" }
func (ActionTransformationChunk) Name() string { return "ActionTransformationChunk" }
func (ActionTransformationToolCall) Name() string { return "ActionTransformationToolCall" }
func (ActionTransformationToolCallResult) Name() string {
	return "ActionTransformationToolCallResult"
}
func (ActionTransformationError) Name() string { return "ActionTransformationError" }
func (ActionTransformationSuccess) Name() string { return "ActionTransformationSuccess" }
func (ActionTextMessage) Name() string { return "ActionTextMessage" }
func (ActionAddImage) Name() string { return "ActionAddImage" }
func (ActionAddFile) Name() string { return "ActionAddFile" }
func (ActionAddText) Name() string { return "ActionAddText" }
func (ActionStartNewConversation) Name() string { return "ActionStartNewConversation" }
func (ActionAddDictionaryItem) Name() string { return "ActionAddDictionaryItem" }
func (ActionDeleteDictionaryItem) Name() string { return "ActionDeleteDictionaryItem" }

// History.
type ActionLoadHistoryConversation struct {
	HistoryID string `json:"history_id"`
}

type ActionUpdateOrCreateHistory struct {
	Persona      *state.Persona              `json:"persona"`
	Conversation []state.ConversationMessage `json:"conversation"`
}

type ActionGenerateHistoryTitle struct {
	HistoryID string `json:"history_id"`
}

type ActionDeleteHistory struct {
	HistoryID string `json:"history_id"`
}

type ActionClearHistory struct{}

func (ActionLoadHistoryConversation) Name() string { return "ActionLoadHistoryConversation" }
func (ActionUpdateOrCreateHistory) Name() string { return "ActionUpdateOrCreateHistory" }
func (ActionGenerateHistoryTitle) Name() string { return "ActionGenerateHistoryTitle" }
func (ActionDeleteHistory) Name() string { return "ActionDeleteHistory" }
func (ActionClearHistory) Name() string { return "ActionClearHistory" }

// Account.
type ActionLogin struct {
	Email string `json:"email"`
}

type ActionLoginSuccess struct {
	Email string `json:"email"`
}

type ActionLoginError struct {
	Error string `json:"error"`
}

type ActionLoginVerify struct {
	LoginVerifyPayload
}

type ActionLoginVerifySuccess struct {
	LoginVerifyResponse
}

type ActionLoginVerifyError struct {
	Error string `json:"error"`
}

func (ActionLogin) Name() string { return "ActionLogin" }
func (ActionLoginSuccess) Name() string { return "ActionLoginSuccess" }
func (ActionLoginError) Name() string { return "ActionLoginError" }
func (ActionLoginVerify) Name() string { return "ActionLoginVerify" }
func (ActionLoginVerifySuccess) Name() string { return "ActionLoginVerifySuccess" }
func (ActionLoginVerifyError) Name() string { return "ActionLoginVerifyError" }

// MCP tools.
type ActionAddTool struct {
	state.MCPServerConfig
}

type ActionDeleteTool struct {
	Key string `json:"key"`
}

type ActionEnableTool struct {
	Key string `json:"key"`
}

type ActionDisableTool struct {
	Key string `json:"key"`
}

type ActionUpdateTool struct {
	state.MCPServerConfig
}

func (ActionAddTool) Name() string { return "ActionAddTool" }
func (ActionDeleteTool) Name() string { return "ActionDeleteTool" }
func (ActionEnableTool) Name() string { return "ActionEnableTool" }
func (ActionDisableTool) Name() string { return "ActionDisableTool" }
func (ActionUpdateTool) Name() string { return "ActionUpdateTool" }

// Recording pipeline control.
type (
	StartListening      struct{}
	StopListening       struct{}
	PauseTranscription  struct{}
	ResumeTranscription struct{}
	ResetTranscription  struct{}
)

type TranscriptionError struct {
	Error string `json:"error"`
}

func (StartListening) Name() string { return "StartListening" }
func (StopListening) Name() string { return "StopListening" }
func (PauseTranscription) Name() string { return "PauseTranscription" }
func (ResumeTranscription) Name() string { return "ResumeTranscription" }
func (ResetTranscription) Name() string { return "ResetTranscription" }
func (TranscriptionError) Name() string { return "TranscriptionError" }

// Settings, onboarding and theming.
type ActionUpdateWebsocketServerSettings struct {
	WebsocketServerSettings
}

type ActionChangeTheme struct {
	Theme *state.InterfaceTheme `json:"theme"`
}

type ActionChangeOpenSettingsOnStart struct {
	Enabled bool `json:"enabled"`
}

type (
	OpenSettings     struct{}
	CloseSettings    struct{}
	MinimizeSettings struct{}
	OpenOnboarding   struct{}
	CloseOnboarding  struct{}
	FinishOnboarding struct{}
)

func (ActionUpdateWebsocketServerSettings) Name() string {
	return "ActionUpdateWebsocketServerSettings"
}
func (ActionChangeTheme) Name() string { return "ActionChangeTheme" }
func (ActionChangeOpenSettingsOnStart) Name() string { return "ActionChangeOpenSettingsOnStart" }
func (OpenSettings) Name() string { return "OpenSettings" }
func (CloseSettings) Name() string { return "CloseSettings" }
func (MinimizeSettings) Name() string { return "MinimizeSettings" }
func (OpenOnboarding) Name() string { return "OpenOnboarding" }
func (CloseOnboarding) Name() string { return "CloseOnboarding" }
func (FinishOnboarding) Name() string { return "FinishOnboarding" }

// Shortcuts and input devices.
type ActionResetRecordingShortcutTimer struct{}

type ShortcutUpdate struct {
	state.Shortcuts
}

type ShortcutPressed struct {
	Shortcut string `json:"shortcut"`
}

type ActionChangeInputDevice struct {
	Device *string `json:"device"`
}

func (ActionResetRecordingShortcutTimer) Name() string { return "ActionResetRecordingShortcutTimer" }
func (ShortcutUpdate) Name() string { return "ShortcutUpdate" }
func (ShortcutPressed) Name() string { return "ShortcutPressed" }
func (ActionChangeInputDevice) Name() string { return "ActionChangeInputDevice" }

// Local model server.
type KoboldServerStateChange struct {
	State state.KoboldServerState `json:"state"`
}

func (KoboldServerStateChange) Name() string { return "KoboldServerStateChange" }

// Errors and self-update.
type ActionRemoveError struct {
	ID string `json:"id"`
}

type (
	ActionCheckForUpdates  struct{}
	ActionUpdateAndRestart struct{}
)

func (ActionRemoveError) Name() string { return "ActionRemoveError" }
func (ActionCheckForUpdates) Name() string { return "ActionCheckForUpdates" }
func (ActionUpdateAndRestart) Name() string { return "ActionUpdateAndRestart" }

// Permissions.
type (
	ActionCheckAccessibilityPermission           struct{}
	ActionCheckAndRequestAccessibilityPermission struct{}
	ActionRequestAccessibilityPermission         struct{}
	ActionCheckMicrophonePermission              struct{}
	ActionCheckAndRequestMicrophonePermission    struct{}
	ActionRequestMicrophonePermission            struct{}
)

func (ActionCheckAccessibilityPermission) Name() string { return "ActionCheckAccessibilityPermission" }
func (ActionCheckAndRequestAccessibilityPermission) Name() string {
	return "ActionCheckAndRequestAccessibilityPermission"
}
func (ActionRequestAccessibilityPermission) Name() string {
	return "ActionRequestAccessibilityPermission"
}
func (ActionCheckMicrophonePermission) Name() string { return "ActionCheckMicrophonePermission" }
func (ActionCheckAndRequestMicrophonePermission) Name() string {
	return "ActionCheckAndRequestMicrophonePermission"
}
func (ActionRequestMicrophonePermission) Name() string { return "ActionRequestMicrophonePermission" }

// Challenges.
type ActionChallengeCompleted struct {
	Challenge state.ChallengeName `json:"challenge"`
}

type (
	ActionChangePersonaByVoice struct{}
	ActionOpenSettingsFromTray struct{}
)

func (ActionChallengeCompleted) Name() string { return "ActionChallengeCompleted" }
func (ActionChangePersonaByVoice) Name() string { return "ActionChangePersonaByVoice" }
func (ActionOpenSettingsFromTray) Name() string { return "ActionOpenSettingsFromTray" }

// Releases.
type ActionGetReleases struct{}

type ActionGetReleasesSuccess struct {
	Releases []state.Release `json:"releases"`
}

type ActionGetReleasesError struct {
	Error string `json:"error"`
}

func (ActionGetReleases) Name() string { return "ActionGetReleases" }
func (ActionGetReleasesSuccess) Name() string { return "ActionGetReleasesSuccess" }
func (ActionGetReleasesError) Name() string { return "ActionGetReleasesError" }
