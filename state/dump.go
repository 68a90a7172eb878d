package state

// Dump is the subset of the state tree that survives a restart. Volatile
// pieces like the conversation in flight, window open states, login state
// and surfaced errors are rebuilt from defaults on load. Optional fields
// are pointers so a dump written by an older version falls back to the
// current defaults instead of a zero value.
type Dump struct {
	Shortcuts                *Shortcuts              `json:"shortcuts"`
	Language                 Language                `json:"language"`
	InterfaceLanguage        Language                `json:"interface_language"`
	PreferredLanguages       []Language              `json:"preferred_languages"`
	InputDevice              *string                 `json:"input_device"`
	TranscriptionModel       *string                 `json:"transcription_model"`
	ConversationModel        *string                 `json:"conversation_model"`
	ActivePersona            *Persona                `json:"active_persona"`
	RecordingWindowMinimized *bool                   `json:"recording_window_minimized"`
	MinimizedPosition        *WindowPosition         `json:"recording_window_minimized_position"`
	MaximizedPosition        *WindowPosition         `json:"recording_window_maximized_position"`
	Theme                    InterfaceTheme          `json:"recording_window_theme"`
	ConversationModels       []ConversationModel     `json:"conversation_models"`
	OpenSettingsOnStart      *bool                   `json:"open_settings_on_start"`
	Personas                 []Persona               `json:"personas"`
	Dictionary               []string                `json:"dictionary"`
	Replacements             []Replacement           `json:"replacements"`
	Kobold                   *KoboldServerContext    `json:"kobold_server_context"`
	History                  []History               `json:"history"`
	CurrentHistoryID         *string                 `json:"current_history_id"`
	Account                  Account                 `json:"account"`
	Permissions              *PermissionsContext     `json:"permissions"`
	Challenges               []Challenge             `json:"challenges"`
	WebsocketServer          *WebsocketServerContext `json:"websocket_server"`
	MCPServerConfigs         []MCPServerConfig       `json:"mcp_server_configs"`
}

// DumpFromContext captures everything worth persisting. The current history
// id is always dumped as nil so a restart begins a new conversation.
func DumpFromContext(c AppStateContext) Dump {
	c = c.Clone()
	shortcuts := c.Shortcuts
	minimized := c.RecordingWindow.Minimized
	openOnStart := c.SettingsWindow.OpenSettingsOnStart
	kobold := c.Kobold
	kobold.State = KoboldServerState{Phase: KoboldIdle}
	permissions := c.Permissions
	websocket := c.WebsocketServer
	return Dump{
		Shortcuts:                &shortcuts,
		Language:                 c.Language,
		InterfaceLanguage:        c.InterfaceLanguage,
		PreferredLanguages:       c.PreferredLanguages,
		InputDevice:              c.InputDevice,
		TranscriptionModel:       c.TranscriptionModel,
		ConversationModel:        c.ConversationModel,
		ActivePersona:            c.ActivePersona,
		RecordingWindowMinimized: &minimized,
		MinimizedPosition:        c.RecordingWindow.MinimizedPosition,
		MaximizedPosition:        c.RecordingWindow.MaximizedPosition,
		Theme:                    c.RecordingWindow.Theme,
		ConversationModels:       c.Models.ConversationModels,
		OpenSettingsOnStart:      &openOnStart,
		Personas:                 c.Personas.Personas,
		Dictionary:               c.Conversation.Dictionary,
		Replacements:             c.Conversation.Replacements,
		Kobold:                   &kobold,
		History:                  c.History.History,
		CurrentHistoryID:         nil,
		Account:                  c.Account.Account,
		Permissions:              &permissions,
		Challenges:               c.Challenges.Challenges,
		WebsocketServer:          &websocket,
		MCPServerConfigs:         c.MCP.ServerConfigs,
	}
}

// Load rebuilds a full context from a dump. Anything the dump does not
// carry comes from DefaultContext, and transcription models are always
// reset to the built-in catalog so stale local entries disappear.
func (d Dump) Load() AppStateContext {
	c := DefaultContext()

	if d.Shortcuts != nil {
		c.Shortcuts = d.Shortcuts.Clone()
	}
	if d.Language != "" {
		c.Language = d.Language
	}
	if d.InterfaceLanguage != "" {
		c.InterfaceLanguage = d.InterfaceLanguage
	}
	if len(d.PreferredLanguages) > 0 {
		c.PreferredLanguages = append([]Language(nil), d.PreferredLanguages...)
	}
	c.InputDevice = d.InputDevice
	if d.TranscriptionModel != nil {
		c.TranscriptionModel = d.TranscriptionModel
	}
	if d.ConversationModel != nil {
		c.ConversationModel = d.ConversationModel
	}
	if d.ActivePersona != nil {
		persona := d.ActivePersona.Clone()
		c.ActivePersona = &persona
		c.History.LastPersona = &PersonaHistory{ID: persona.ID, Name: persona.Name}
	}
	if d.RecordingWindowMinimized != nil {
		c.RecordingWindow.Minimized = *d.RecordingWindowMinimized
	}
	c.RecordingWindow.MinimizedPosition = d.MinimizedPosition
	c.RecordingWindow.MaximizedPosition = d.MaximizedPosition
	if d.Theme != "" {
		c.RecordingWindow.Theme = d.Theme
	}
	if d.ConversationModels != nil {
		c.Models.ConversationModels = append([]ConversationModel(nil), d.ConversationModels...)
	}
	if d.OpenSettingsOnStart != nil {
		c.SettingsWindow.OpenSettingsOnStart = *d.OpenSettingsOnStart
	}
	if d.Personas != nil {
		c.Personas = PersonasContext{Personas: append([]Persona(nil), d.Personas...)}
	}
	if d.Dictionary != nil {
		c.Conversation.Dictionary = append([]string(nil), d.Dictionary...)
	}
	if d.Replacements != nil {
		c.Conversation.Replacements = append([]Replacement(nil), d.Replacements...)
	}
	if d.Kobold != nil {
		c.Kobold = d.Kobold.clone()
		c.Kobold.State = KoboldServerState{Phase: KoboldIdle}
	}
	if d.History != nil {
		c.History.History = append([]History(nil), d.History...)
	}
	c.History.CurrentHistoryID = nil
	c.Account.Account = d.Account
	c.Account.LoginState = LoginState{}
	if d.Permissions != nil {
		c.Permissions = *d.Permissions
	}
	if d.Challenges != nil {
		c.Challenges = ChallengeContext{Challenges: append([]Challenge(nil), d.Challenges...)}
	}
	if d.WebsocketServer != nil {
		ws := d.WebsocketServer.clone()
		if ws.Port == 0 {
			ws.Port = DefaultWebsocketPort
		}
		c.WebsocketServer = ws
	}
	if d.MCPServerConfigs != nil {
		c.MCP = MCPContext{ServerConfigs: append([]MCPServerConfig(nil), d.MCPServerConfigs...)}
	}
	return c.Clone()
}
