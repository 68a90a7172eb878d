package state

// UpdateStatus is the lifecycle of the self-updater.
type UpdateStatus string

const (
	UpdateIdle        UpdateStatus = "Idle"
	UpdateChecking    UpdateStatus = "CheckingForUpdates"
	UpdateAvailable   UpdateStatus = "UpdateAvailable"
	UpdateNotFound    UpdateStatus = "NoUpdateAvailable"
	UpdateDownloading UpdateStatus = "DownloadingUpdate"
	UpdateDownloaded  UpdateStatus = "UpdateDownloaded"
	UpdateError       UpdateStatus = "Error"
)

type UpdateContext struct {
	Status          UpdateStatus `json:"status"`
	DownloadedBytes uint64       `json:"downloaded_bytes,omitempty"`
	Error           string       `json:"error,omitempty"`
}

// WindowState says whether a window is shown.
type WindowState string

const (
	WindowClosed WindowState = "Closed"
	WindowOpen   WindowState = "Open"
)

// RecordingWindowView selects what the open recording window shows.
type RecordingWindowView string

const (
	ViewRecording RecordingWindowView = "Recording"
	ViewPersona   RecordingWindowView = "Persona"
)

type WindowPosition struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type RecordingWindowContext struct {
	State             WindowState         `json:"state"`
	View              RecordingWindowView `json:"view"`
	Minimized         bool                `json:"minimized"`
	MinimizedPosition *WindowPosition     `json:"minimized_position"`
	MaximizedPosition *WindowPosition     `json:"maximized_position"`
	Theme             InterfaceTheme      `json:"theme"`
}

func (c RecordingWindowContext) clone() RecordingWindowContext {
	out := c
	if c.MinimizedPosition != nil {
		p := *c.MinimizedPosition
		out.MinimizedPosition = &p
	}
	if c.MaximizedPosition != nil {
		p := *c.MaximizedPosition
		out.MaximizedPosition = &p
	}
	return out
}

type SettingsWindowContext struct {
	State               WindowState `json:"state"`
	OpenSettingsOnStart bool        `json:"open_settings_on_start"`
}

type OnboardingWindowContext struct {
	State WindowState `json:"state"`
}

// KoboldServerPhase is the lifecycle of the bundled local model server.
type KoboldServerPhase string

const (
	KoboldIdle    KoboldServerPhase = "Idle"
	KoboldRunning KoboldServerPhase = "Running"
	KoboldError   KoboldServerPhase = "Error"
)

// KoboldServerState tags the phase with the loaded model paths while
// running, or the failure message on error.
type KoboldServerState struct {
	Phase       KoboldServerPhase `json:"phase"`
	Model       *string           `json:"model,omitempty"`
	VisionModel *string           `json:"vision_model,omitempty"`
	Error       string            `json:"error,omitempty"`
}

func (s KoboldServerState) clone() KoboldServerState {
	out := s
	if s.Model != nil {
		m := *s.Model
		out.Model = &m
	}
	if s.VisionModel != nil {
		v := *s.VisionModel
		out.VisionModel = &v
	}
	return out
}

type KoboldServerContext struct {
	State KoboldServerState `json:"state"`
}

func (c KoboldServerContext) clone() KoboldServerContext {
	return KoboldServerContext{State: c.State.clone()}
}

type WebsocketServerContext struct {
	Enabled  bool    `json:"enabled"`
	Port     uint16  `json:"port"`
	Password *string `json:"password"`
}

func (c WebsocketServerContext) clone() WebsocketServerContext {
	out := c
	if c.Password != nil {
		p := *c.Password
		out.Password = &p
	}
	return out
}

// DefaultWebsocketPort is used whenever settings arrive without a port.
const DefaultWebsocketPort uint16 = 4456

type PermissionsContext struct {
	Accessibility bool `json:"accessibility"`
	Microphone    bool `json:"microphone"`
}

// Release is one published app version shown on the what's-new screen.
// Field names follow the releases API payload.
type Release struct {
	ID          string `json:"id"`
	Version     string `json:"version"`
	Description string `json:"description"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

type ReleasesContext struct {
	Releases []Release `json:"releases"`
	Error    *string   `json:"error"`
}

func (c ReleasesContext) clone() ReleasesContext {
	out := ReleasesContext{Releases: append([]Release(nil), c.Releases...)}
	if c.Error != nil {
		e := *c.Error
		out.Error = &e
	}
	return out
}

// UtilsContext carries scratch values that several processors share.
type UtilsContext struct {
	RecordingTimer               *int64       `json:"recording_timer"`
	RecordingWindowPreviousState *WindowState `json:"recording_window_previous_state"`
}

func (c UtilsContext) clone() UtilsContext {
	out := c
	if c.RecordingTimer != nil {
		t := *c.RecordingTimer
		out.RecordingTimer = &t
	}
	if c.RecordingWindowPreviousState != nil {
		s := *c.RecordingWindowPreviousState
		out.RecordingWindowPreviousState = &s
	}
	return out
}

// AppStateContext is the whole application state tree. It must stay JSON
// serializable so the store can diff snapshots and persist dumps.
type AppStateContext struct {
	Update             UpdateContext           `json:"update_context"`
	Errors             []AppError              `json:"errors"`
	Utils              UtilsContext            `json:"utils"`
	Shortcuts          Shortcuts               `json:"shortcuts"`
	DefaultShortcuts   Shortcuts               `json:"default_shortcuts"`
	Language           Language                `json:"language"`
	InterfaceLanguage  Language                `json:"interface_language"`
	PreferredLanguages []Language              `json:"preferred_languages"`
	InputDevice        *string                 `json:"input_device"`
	TranscriptionModel *string                 `json:"transcription_model"`
	ConversationModel  *string                 `json:"conversation_model"`
	ActivePersona      *Persona                `json:"active_persona"`
	RecordingWindow    RecordingWindowContext  `json:"recording_window_context"`
	SettingsWindow     SettingsWindowContext   `json:"settings_window_context"`
	OnboardingWindow   OnboardingWindowContext `json:"onboarding_window_context"`
	Models             ModelsContext           `json:"models_context"`
	Personas           PersonasContext         `json:"personas_context"`
	DefaultPersonas    []Persona               `json:"default_personas"`
	Conversation       ConversationContext     `json:"conversation_context"`
	Kobold             KoboldServerContext     `json:"kobold_server_context"`
	History            HistoryContext          `json:"history_context"`
	Account            AccountContext          `json:"account_context"`
	Permissions        PermissionsContext      `json:"permissions_context"`
	Challenges         ChallengeContext        `json:"challenge_context"`
	WebsocketServer    WebsocketServerContext  `json:"websocket_server_context"`
	MCP                MCPContext              `json:"mcp_context"`
	Releases           ReleasesContext         `json:"releases_context"`
}

// DefaultTranscriptionModelID and DefaultConversationModelID seed a fresh
// install with cloud models that work out of the box once signed in.
const (
	DefaultTranscriptionModelID = "whisper-1"
	DefaultConversationModelID  = "gpt-4.1-mini"
)

func DefaultContext() AppStateContext {
	transcription := DefaultTranscriptionModelID
	conversation := DefaultConversationModelID
	return AppStateContext{
		Update:             UpdateContext{Status: UpdateIdle},
		Errors:             []AppError{},
		Shortcuts:          DefaultShortcuts(),
		DefaultShortcuts:   DefaultShortcuts(),
		Language:           LanguageEnglish,
		InterfaceLanguage:  LanguageEnglish,
		PreferredLanguages: []Language{LanguageEnglish, LanguageAuto},
		TranscriptionModel: &transcription,
		ConversationModel:  &conversation,
		RecordingWindow: RecordingWindowContext{
			State:     WindowClosed,
			View:      ViewRecording,
			Minimized: true,
			Theme:     ThemeDark,
		},
		SettingsWindow: SettingsWindowContext{
			State:               WindowClosed,
			OpenSettingsOnStart: true,
		},
		OnboardingWindow: OnboardingWindowContext{State: WindowClosed},
		Models:           DefaultModelsContext(),
		Personas:         PersonasContext{Personas: DefaultPersonas()},
		DefaultPersonas:  DefaultPersonas(),
		Conversation:     DefaultConversationContext(),
		Kobold:           KoboldServerContext{State: KoboldServerState{Phase: KoboldIdle}},
		Permissions:      PermissionsContext{Accessibility: true, Microphone: true},
		WebsocketServer:  WebsocketServerContext{Enabled: false, Port: DefaultWebsocketPort},
		Challenges:       ChallengeContext{Challenges: DefaultChallenges()},
		MCP:              MCPContext{},
		Releases:         ReleasesContext{Releases: []Release{}},
	}
}

// Clone returns a deep copy so callers can mutate freely without racing the
// store's own copy.
func (c AppStateContext) Clone() AppStateContext {
	out := c
	out.Errors = append([]AppError(nil), c.Errors...)
	out.Utils = c.Utils.clone()
	out.Shortcuts = c.Shortcuts.Clone()
	out.DefaultShortcuts = c.DefaultShortcuts.Clone()
	out.PreferredLanguages = append([]Language(nil), c.PreferredLanguages...)
	if c.InputDevice != nil {
		d := *c.InputDevice
		out.InputDevice = &d
	}
	if c.TranscriptionModel != nil {
		m := *c.TranscriptionModel
		out.TranscriptionModel = &m
	}
	if c.ConversationModel != nil {
		m := *c.ConversationModel
		out.ConversationModel = &m
	}
	if c.ActivePersona != nil {
		p := c.ActivePersona.Clone()
		out.ActivePersona = &p
	}
	out.RecordingWindow = c.RecordingWindow.clone()
	out.Models = c.Models.clone()
	out.Personas = c.Personas.clone()
	out.DefaultPersonas = make([]Persona, len(c.DefaultPersonas))
	for i, p := range c.DefaultPersonas {
		out.DefaultPersonas[i] = p.Clone()
	}
	out.Conversation = c.Conversation.clone()
	out.Kobold = c.Kobold.clone()
	out.History = c.History.clone()
	out.Account = c.Account.clone()
	out.Challenges = c.Challenges.clone()
	out.WebsocketServer = c.WebsocketServer.clone()
	out.MCP = c.MCP.clone()
	out.Releases = c.Releases.clone()
	return out
}

// ResetStateWithError records the error and drops the conversation back to
// idle so the user can retry.
func (c *AppStateContext) ResetStateWithError(message string) {
	c.Errors = append(c.Errors, NewAppError(message))
	c.Conversation.SetIdle()
}

// UpdateActivePersona switches persona and starts a fresh conversation.
func (c *AppStateContext) UpdateActivePersona(p *Persona) {
	if p != nil {
		clone := p.Clone()
		c.ActivePersona = &clone
	} else {
		c.ActivePersona = nil
	}
	c.History.CurrentHistoryID = nil
	c.Conversation.State = ConversationIdle
	c.Conversation.Conversation = []ConversationMessage{}
	c.Conversation.PendingToolCallIDs = []string{}
}

// SwitchToNextPreferredLanguage cycles the dictation language through the
// user's preferred list. Unknown current language restarts at the front.
func (c *AppStateContext) SwitchToNextPreferredLanguage() {
	if len(c.PreferredLanguages) == 0 {
		return
	}
	next := c.PreferredLanguages[0]
	for i, lang := range c.PreferredLanguages {
		if lang == c.Language {
			next = c.PreferredLanguages[(i+1)%len(c.PreferredLanguages)]
			break
		}
	}
	c.Language = next
}

// UpdateWebsocketServerSettings applies remote control settings. A zero port
// falls back to the default and a blank password keeps remote access open.
func (c *AppStateContext) UpdateWebsocketServerSettings(enabled bool, port uint16, password *string) {
	if port == 0 {
		port = DefaultWebsocketPort
	}
	if password != nil && *password == "" {
		password = nil
	}
	c.WebsocketServer = WebsocketServerContext{Enabled: enabled, Port: port, Password: password}.clone()
}
